package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// fakeUserStore keeps user documents in memory and mimics the update
// semantics of the Mongo-backed repository.
type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (s *fakeUserStore) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	result := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (s *fakeUserStore) PullFriendRequest(_ context.Context, userID, fromUserID primitive.ObjectID) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	kept := user.FriendRequests[:0]
	for _, req := range user.FriendRequests {
		if req.FromUserID != fromUserID {
			kept = append(kept, req)
		}
	}
	user.FriendRequests = kept
	return nil
}

func (s *fakeUserStore) PushFriendRequest(_ context.Context, userID primitive.ObjectID, req models.FriendRequest) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	user.FriendRequests = append(user.FriendRequests, req)
	return nil
}

func (s *fakeUserStore) SetFriendRequestStatus(_ context.Context, userID, fromUserID primitive.ObjectID, status string) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	idx := user.RequestFrom(fromUserID)
	if idx == -1 {
		return fmt.Errorf("friend request not found")
	}
	user.FriendRequests[idx].Status = status
	return nil
}

func (s *fakeUserStore) AddFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	if !user.HasFriend(friendID) {
		user.Friends = append(user.Friends, friendID)
	}
	return nil
}

func (s *fakeUserStore) RemoveFriend(_ context.Context, userID1, userID2 primitive.ObjectID) error {
	for _, pair := range [][2]primitive.ObjectID{{userID1, userID2}, {userID2, userID1}} {
		user, ok := s.users[pair[0]]
		if !ok {
			continue
		}
		kept := user.Friends[:0]
		for _, id := range user.Friends {
			if id != pair[1] {
				kept = append(kept, id)
			}
		}
		user.Friends = kept
	}
	return nil
}

func TestRespondToRequestAcceptIsSymmetric(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), FullName: "Alice"}
	bob := &models.User{ID: primitive.NewObjectID(), FullName: "Bob"}
	store := newFakeUserStore(alice, bob)
	service := NewFriendService(store)
	ctx := context.Background()

	require.NoError(t, service.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, service.RespondToRequest(ctx, bob.ID, alice.ID, true))

	// Both friends lists mirror each other.
	assert.True(t, bob.HasFriend(alice.ID))
	assert.True(t, alice.HasFriend(bob.ID))

	// Both sides carry an accepted request record.
	idx := bob.RequestFrom(alice.ID)
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "accepted", bob.FriendRequests[idx].Status)

	idx = alice.RequestFrom(bob.ID)
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "accepted", alice.FriendRequests[idx].Status)
}

func TestRespondToRequestDeclineLeavesNoTrace(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), FullName: "Alice"}
	bob := &models.User{ID: primitive.NewObjectID(), FullName: "Bob"}
	store := newFakeUserStore(alice, bob)
	service := NewFriendService(store)
	ctx := context.Background()

	require.NoError(t, service.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, service.RespondToRequest(ctx, bob.ID, alice.ID, false))

	assert.Equal(t, -1, bob.RequestFrom(alice.ID))
	assert.Equal(t, -1, alice.RequestFrom(bob.ID))
	assert.Empty(t, bob.Friends)
	assert.Empty(t, alice.Friends)

	// A declined sender can try again.
	require.NoError(t, service.SendFriendRequest(ctx, alice.ID, bob.ID))
	idx := bob.RequestFrom(alice.ID)
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "pending", bob.FriendRequests[idx].Status)
}

func TestSendFriendRequestIsIdempotentReset(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), FullName: "Alice"}
	bob := &models.User{ID: primitive.NewObjectID(), FullName: "Bob"}
	store := newFakeUserStore(alice, bob)
	service := NewFriendService(store)
	ctx := context.Background()

	require.NoError(t, service.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, service.SendFriendRequest(ctx, alice.ID, bob.ID))

	assert.Len(t, bob.FriendRequests, 1)
	assert.Equal(t, "pending", bob.FriendRequests[0].Status)
}

func TestSendFriendRequestToSelfRejected(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), FullName: "Alice"}
	service := NewFriendService(newFakeUserStore(alice))

	err := service.SendFriendRequest(context.Background(), alice.ID, alice.ID)
	assert.Error(t, err)
}

package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// fakeGroupStore keeps group documents in memory and mimics the update
// semantics of the Mongo-backed repository.
type fakeGroupStore struct {
	groups map[primitive.ObjectID]*models.StudyGroup
}

func newFakeGroupStore(groups ...*models.StudyGroup) *fakeGroupStore {
	s := &fakeGroupStore{groups: make(map[primitive.ObjectID]*models.StudyGroup)}
	for _, g := range groups {
		s.groups[g.ID] = g
	}
	return s
}

func (s *fakeGroupStore) CreateGroup(_ context.Context, group *models.StudyGroup) (*models.StudyGroup, error) {
	group.ID = primitive.NewObjectID()
	group.CreatedAt = time.Now()
	s.groups[group.ID] = group
	return group, nil
}

func (s *fakeGroupStore) GetGroupByID(_ context.Context, id primitive.ObjectID) (*models.StudyGroup, error) {
	group, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group not found")
	}
	return group, nil
}

func (s *fakeGroupStore) GetActiveGroups(_ context.Context) ([]models.StudyGroup, error) {
	result := make([]models.StudyGroup, 0, len(s.groups))
	for _, g := range s.groups {
		if g.IsActive {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (s *fakeGroupStore) AddMember(_ context.Context, groupID, userID primitive.ObjectID) error {
	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group not found")
	}
	if !group.IsMember(userID) {
		group.Members = append(group.Members, userID)
	}
	return nil
}

func (s *fakeGroupStore) RemoveMember(_ context.Context, groupID, userID primitive.ObjectID) error {
	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group not found")
	}
	kept := group.Members[:0]
	for _, id := range group.Members {
		if id != userID {
			kept = append(kept, id)
		}
	}
	group.Members = kept
	return nil
}

func (s *fakeGroupStore) AddPendingRequest(_ context.Context, groupID primitive.ObjectID, req models.JoinRequest) error {
	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group not found")
	}
	group.PendingRequests = append(group.PendingRequests, req)
	return nil
}

func (s *fakeGroupStore) RemovePendingRequest(_ context.Context, groupID, userID primitive.ObjectID) error {
	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group not found")
	}
	kept := group.PendingRequests[:0]
	for _, req := range group.PendingRequests {
		if req.UserID != userID {
			kept = append(kept, req)
		}
	}
	group.PendingRequests = kept
	return nil
}

func (s *fakeGroupStore) SetPendingRequestStatus(_ context.Context, groupID, userID primitive.ObjectID, status string) error {
	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group not found")
	}
	idx := group.PendingRequestFrom(userID)
	if idx == -1 {
		return fmt.Errorf("join request not found")
	}
	group.PendingRequests[idx].Status = status
	return nil
}

// fakeGroupMessageStore records every created message.
type fakeGroupMessageStore struct {
	created []*models.GroupMessage
}

func (s *fakeGroupMessageStore) CreateMessage(_ context.Context, msg *models.GroupMessage) (*models.GroupMessage, error) {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	s.created = append(s.created, msg)
	return msg, nil
}

func TestLeaveGroupAdminRejected(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), FullName: "Admin"}
	group := &models.StudyGroup{
		ID:         primitive.NewObjectID(),
		Name:       "JEE prep",
		Admin:      admin.ID,
		Members:    []primitive.ObjectID{admin.ID},
		MaxMembers: 10,
		IsActive:   true,
	}
	groupStore := newFakeGroupStore(group)
	msgStore := &fakeGroupMessageStore{}
	service := NewGroupService(groupStore, msgStore, newFakeUserStore(admin))

	_, err := service.LeaveGroup(context.Background(), group.ID, admin.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin cannot leave")
	assert.Len(t, group.Members, 1)
	assert.Empty(t, msgStore.created)
}

func TestLeaveGroupMemberRecordsOneSystemMessage(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), FullName: "Admin"}
	member := &models.User{ID: primitive.NewObjectID(), FullName: "Bob"}
	group := &models.StudyGroup{
		ID:         primitive.NewObjectID(),
		Name:       "JEE prep",
		Admin:      admin.ID,
		Members:    []primitive.ObjectID{admin.ID, member.ID},
		MaxMembers: 10,
		IsActive:   true,
	}
	groupStore := newFakeGroupStore(group)
	msgStore := &fakeGroupMessageStore{}
	service := NewGroupService(groupStore, msgStore, newFakeUserStore(admin, member))

	sysMsg, err := service.LeaveGroup(context.Background(), group.ID, member.ID)

	require.NoError(t, err)
	assert.False(t, group.IsMember(member.ID))
	require.Len(t, msgStore.created, 1)
	assert.True(t, sysMsg.IsSystemMessage)
	assert.Equal(t, "Bob left the group", sysMsg.Text)
	assert.Equal(t, group.ID, sysMsg.GroupID)
}

func TestLeaveGroupNonMemberRejected(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), FullName: "Admin"}
	stranger := &models.User{ID: primitive.NewObjectID(), FullName: "Eve"}
	group := &models.StudyGroup{
		ID:         primitive.NewObjectID(),
		Name:       "JEE prep",
		Admin:      admin.ID,
		Members:    []primitive.ObjectID{admin.ID},
		MaxMembers: 10,
		IsActive:   true,
	}
	msgStore := &fakeGroupMessageStore{}
	service := NewGroupService(newFakeGroupStore(group), msgStore, newFakeUserStore(admin, stranger))

	_, err := service.LeaveGroup(context.Background(), group.ID, stranger.ID)

	require.Error(t, err)
	assert.Empty(t, msgStore.created)
}

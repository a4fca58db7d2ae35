package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// UserStore is the slice of user persistence the friend and group flows need.
// Satisfied by *repository.UserRepository.
type UserStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	PullFriendRequest(ctx context.Context, userID, fromUserID primitive.ObjectID) error
	PushFriendRequest(ctx context.Context, userID primitive.ObjectID, req models.FriendRequest) error
	SetFriendRequestStatus(ctx context.Context, userID, fromUserID primitive.ObjectID, status string) error
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, userID1, userID2 primitive.ObjectID) error
}

// FriendService handles the friend-request lifecycle. Requests are embedded in
// the receiving user's document; the friends list on each side is denormalized
// and maintained independently, so every accept must touch both documents.
type FriendService struct {
	userRepo UserStore
}

// NewFriendService creates a new FriendService.
func NewFriendService(userRepo UserStore) *FriendService {
	return &FriendService{userRepo: userRepo}
}

// PendingRequest is a pending friend request enriched with the sender's profile.
type PendingRequest struct {
	FromUser  models.PublicUser `json:"fromUser"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SendFriendRequest resets any existing request between the pair in both
// directions, then records a fresh pending request on the recipient.
func (s *FriendService) SendFriendRequest(ctx context.Context, fromUserID, toUserID primitive.ObjectID) error {
	if fromUserID == toUserID {
		return fmt.Errorf("cannot send a friend request to yourself")
	}

	// Both users must exist.
	if _, err := s.userRepo.GetUserByID(ctx, toUserID); err != nil {
		return fmt.Errorf("recipient not found")
	}
	if _, err := s.userRepo.GetUserByID(ctx, fromUserID); err != nil {
		return fmt.Errorf("sender not found")
	}

	// Idempotent reset: drop any existing request in either direction.
	if err := s.userRepo.PullFriendRequest(ctx, toUserID, fromUserID); err != nil {
		return err
	}
	if err := s.userRepo.PullFriendRequest(ctx, fromUserID, toUserID); err != nil {
		return err
	}

	return s.userRepo.PushFriendRequest(ctx, toUserID, models.FriendRequest{
		FromUserID: fromUserID,
		Status:     "pending",
		CreatedAt:  time.Now(),
	})
}

// GetPendingRequests returns the user's incoming pending requests with sender profiles.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID primitive.ObjectID) ([]PendingRequest, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending := user.PendingRequests()
	if len(pending) == 0 {
		return []PendingRequest{}, nil
	}

	senderIDs := make([]primitive.ObjectID, 0, len(pending))
	for _, req := range pending {
		senderIDs = append(senderIDs, req.FromUserID)
	}

	senders, err := s.userRepo.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(senders))
	for _, sender := range senders {
		byID[sender.ID] = sender
	}

	result := make([]PendingRequest, 0, len(pending))
	for _, req := range pending {
		sender, ok := byID[req.FromUserID]
		if !ok {
			continue
		}
		result = append(result, PendingRequest{
			FromUser:  sender.Public(),
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
		})
	}
	return result, nil
}

// RespondToRequest accepts or declines the request from fromUserID.
// On accept both friends lists gain the other user and the requester gets a
// mirrored accepted record; on decline the request is removed without trace.
func (s *FriendService) RespondToRequest(ctx context.Context, userID, fromUserID primitive.ObjectID, accept bool) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found")
	}
	if _, err := s.userRepo.GetUserByID(ctx, fromUserID); err != nil {
		return fmt.Errorf("requesting user not found")
	}

	idx := user.RequestFrom(fromUserID)
	if idx == -1 {
		return fmt.Errorf("friend request not found")
	}
	if user.FriendRequests[idx].Status != "pending" {
		return fmt.Errorf("request already responded to")
	}

	if !accept {
		// Declined requests leave no trace on either side.
		return s.userRepo.PullFriendRequest(ctx, userID, fromUserID)
	}

	if err := s.userRepo.SetFriendRequestStatus(ctx, userID, fromUserID, "accepted"); err != nil {
		return err
	}
	if err := s.userRepo.PushFriendRequest(ctx, fromUserID, models.FriendRequest{
		FromUserID: userID,
		Status:     "accepted",
		CreatedAt:  time.Now(),
	}); err != nil {
		return err
	}

	// Mirror the denormalized friends lists on both sides.
	if err := s.userRepo.AddFriend(ctx, userID, fromUserID); err != nil {
		return fmt.Errorf("failed to add friend to receiver: %v", err)
	}
	if err := s.userRepo.AddFriend(ctx, fromUserID, userID); err != nil {
		return fmt.Errorf("failed to add friend to sender: %v", err)
	}

	return nil
}

// GetFriends resolves the user's friends list into public profiles.
func (s *FriendService) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(user.Friends) == 0 {
		return []models.PublicUser{}, nil
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %v", err)
	}

	friends := make([]models.PublicUser, 0, len(users))
	for _, friend := range users {
		friends = append(friends, friend.Public())
	}
	return friends, nil
}

// RemoveFriend drops the friendship from both sides.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	if err := s.userRepo.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.userRepo.PullFriendRequest(ctx, userID, friendID); err != nil {
		return err
	}
	return s.userRepo.PullFriendRequest(ctx, friendID, userID)
}

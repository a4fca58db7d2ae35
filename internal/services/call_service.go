package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// CallStore persists ephemeral call sessions.
// Satisfied by *repository.CallRepository.
type CallStore interface {
	CreateCall(ctx context.Context, call *models.CallSession) (*models.CallSession, error)
	GetCallByID(ctx context.Context, id primitive.ObjectID) (*models.CallSession, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	DeleteExpiredCalls(ctx context.Context) (int64, error)
}

// CallService handles ephemeral video-call sessions.
type CallService struct {
	repo CallStore
}

// NewCallService creates a new CallService.
func NewCallService(repo CallStore) *CallService {
	return &CallService{repo: repo}
}

// InitiateCall creates a pending call session with a fresh room id.
func (s *CallService) InitiateCall(ctx context.Context, initiatorID, recipientID primitive.ObjectID) (*models.CallSession, error) {
	if initiatorID == recipientID {
		return nil, fmt.Errorf("cannot call yourself")
	}

	return s.repo.CreateCall(ctx, &models.CallSession{
		RoomID:      uuid.NewString(),
		InitiatorID: initiatorID,
		RecipientID: recipientID,
		Status:      "pending",
	})
}

// RespondToCall records the recipient's answer on the call session.
func (s *CallService) RespondToCall(ctx context.Context, callID primitive.ObjectID, response string) (*models.CallSession, error) {
	switch response {
	case "accepted", "declined", "ended":
	default:
		return nil, fmt.Errorf("invalid call response %q", response)
	}

	call, err := s.repo.GetCallByID(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("call session not found")
	}

	if err := s.repo.UpdateStatus(ctx, callID, response); err != nil {
		return nil, err
	}
	call.Status = response
	return call, nil
}

// PurgeExpiredCalls deletes call sessions past their TTL.
func (s *CallService) PurgeExpiredCalls(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredCalls(ctx)
}

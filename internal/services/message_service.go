package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/repository"
)

// MessageService handles direct chat between two users.
type MessageService struct {
	Repo *repository.MessageRepository
}

func NewMessageService(repo *repository.MessageRepository) *MessageService {
	return &MessageService{Repo: repo}
}

func (s *MessageService) SendMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.Text == "" && msg.Image == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}
	return s.Repo.SendMessage(ctx, msg)
}

func (s *MessageService) GetChat(ctx context.Context, userID, friendID string) ([]models.Message, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	fid, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return nil, fmt.Errorf("invalid friend ID: %v", err)
	}
	return s.Repo.GetChat(ctx, uid, fid)
}

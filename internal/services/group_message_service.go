package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/repository"
)

// GroupMessageService handles group chat messages.
type GroupMessageService struct {
	msgRepo   *repository.GroupMessageRepository
	groupRepo *repository.GroupRepository
}

// NewGroupMessageService creates a new GroupMessageService.
func NewGroupMessageService(msgRepo *repository.GroupMessageRepository, groupRepo *repository.GroupRepository) *GroupMessageService {
	return &GroupMessageService{
		msgRepo:   msgRepo,
		groupRepo: groupRepo,
	}
}

// MessagePage is one page of a group's chat history.
type MessagePage struct {
	Messages    []models.GroupMessage `json:"messages"`
	TotalPages  int64                 `json:"totalPages"`
	CurrentPage int64                 `json:"currentPage"`
}

// GetMessages returns a page of group messages. The caller must be a member.
func (s *GroupMessageService) GetMessages(ctx context.Context, groupID, userID primitive.ObjectID, page, limit int64) (*MessagePage, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found")
	}
	if !group.IsMember(userID) {
		return nil, fmt.Errorf("not a group member")
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	messages, err := s.msgRepo.GetMessages(ctx, groupID, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.msgRepo.CountMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &MessagePage{
		Messages:    messages,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// SendMessage persists a message to the group chat. The caller must be a
// member, and the message needs at least text or an image.
func (s *GroupMessageService) SendMessage(ctx context.Context, groupID, senderID primitive.ObjectID, text, image string) (*models.GroupMessage, error) {
	if text == "" && image == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}

	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found")
	}
	if !group.IsMember(senderID) {
		return nil, fmt.Errorf("not a group member")
	}

	return s.msgRepo.CreateMessage(ctx, &models.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Text:     text,
		Image:    image,
	})
}

// DeleteMessage removes a message. Only the sender may delete it.
func (s *GroupMessageService) DeleteMessage(ctx context.Context, messageID, senderID primitive.ObjectID) error {
	msg, err := s.msgRepo.GetMessageBySender(ctx, messageID, senderID)
	if err != nil {
		return fmt.Errorf("message not found or unauthorized")
	}
	return s.msgRepo.DeleteMessage(ctx, msg.ID)
}

// MarkRead records that the user has seen the message.
func (s *GroupMessageService) MarkRead(ctx context.Context, messageID, userID primitive.ObjectID) error {
	return s.msgRepo.MarkRead(ctx, messageID, userID)
}

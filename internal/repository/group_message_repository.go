package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studybuddy-app/backend/internal/models"
)

// GroupMessageRepository handles database operations for group chat messages.
type GroupMessageRepository struct {
	collection *mongo.Collection
}

func NewGroupMessageRepository(db *mongo.Database) *GroupMessageRepository {
	return &GroupMessageRepository{
		collection: db.Collection("group_messages"),
	}
}

// CreateMessage inserts a group message.
func (r *GroupMessageRepository) CreateMessage(ctx context.Context, msg *models.GroupMessage) (*models.GroupMessage, error) {
	msg.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to insert group message: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	msg.ID = insertedID

	return msg, nil
}

// GetMessages returns one page of a group's messages in chronological order.
func (r *GroupMessageRepository) GetMessages(ctx context.Context, groupID primitive.ObjectID, page, limit int64) ([]models.GroupMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []models.GroupMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode group messages: %v", err)
	}

	// Newest page first, but chronological within the page.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CountMessages returns the total number of messages in a group.
func (r *GroupMessageRepository) CountMessages(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, fmt.Errorf("failed to count group messages: %v", err)
	}
	return count, nil
}

// GetMessageBySender fetches a message only if it belongs to the sender.
func (r *GroupMessageRepository) GetMessageBySender(ctx context.Context, messageID, senderID primitive.ObjectID) (*models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.collection.FindOne(ctx, bson.M{"_id": messageID, "sender_id": senderID}).Decode(&msg)
	if err != nil {
		return nil, fmt.Errorf("failed to find group message: %v", err)
	}
	return &msg, nil
}

// DeleteMessage removes a message document.
func (r *GroupMessageRepository) DeleteMessage(ctx context.Context, messageID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": messageID})
	if err != nil {
		return fmt.Errorf("failed to delete group message: %v", err)
	}
	return nil
}

// MarkRead appends a read receipt for userID if one is not already present.
func (r *GroupMessageRepository) MarkRead(ctx context.Context, messageID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": messageID, "read_by.user_id": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"read_by": models.ReadReceipt{UserID: userID, ReadAt: time.Now()}}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %v", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studybuddy-app/backend/internal/models"
)

// CallRepository handles ephemeral call session documents.
type CallRepository struct {
	collection *mongo.Collection
}

func NewCallRepository(db *mongo.Database) *CallRepository {
	r := &CallRepository{
		collection: db.Collection("call_sessions"),
	}

	// TTL index: Mongo expires call sessions an hour after creation.
	_, err := r.collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(models.CallSessionTTL.Seconds())),
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to create TTL index on call_sessions")
	}

	return r
}

// CreateCall inserts a new call session.
func (r *CallRepository) CreateCall(ctx context.Context, call *models.CallSession) (*models.CallSession, error) {
	call.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("failed to insert call session: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	call.ID = insertedID

	return call, nil
}

// GetCallByID retrieves a call session.
func (r *CallRepository) GetCallByID(ctx context.Context, id primitive.ObjectID) (*models.CallSession, error) {
	var call models.CallSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&call)
	if err != nil {
		return nil, fmt.Errorf("failed to find call session: %v", err)
	}
	return &call, nil
}

// UpdateStatus sets the call session status.
func (r *CallRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update call status: %v", err)
	}
	return nil
}

// DeleteExpiredCalls removes call sessions past their TTL. Belt and braces on
// top of the TTL index, which Mongo only services periodically.
func (r *CallRepository) DeleteExpiredCalls(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-models.CallSessionTTL)
	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired call sessions: %v", err)
	}
	return result.DeletedCount, nil
}

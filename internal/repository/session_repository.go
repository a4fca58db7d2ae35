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

// SessionRepository handles database operations for study sessions.
type SessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{
		collection: db.Collection("study_sessions"),
	}
}

// CreateSession inserts a new study session.
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.StudySession) (*models.StudySession, error) {
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to insert study session: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	session.ID = insertedID

	return session, nil
}

// GetSessionByID retrieves a single session.
func (r *SessionRepository) GetSessionByID(ctx context.Context, id primitive.ObjectID) (*models.StudySession, error) {
	var session models.StudySession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		return nil, fmt.Errorf("failed to find study session: %v", err)
	}
	return &session, nil
}

// GetSessionsForUser returns sessions the user organizes or participates in,
// ordered by start time.
func (r *SessionRepository) GetSessionsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.StudySession, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"organizer": userID},
			{"participants": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch study sessions: %v", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.StudySession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode study sessions: %v", err)
	}
	return sessions, nil
}

// UpdateStatus sets the session status.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update session status: %v", err)
	}
	return nil
}

// SetNotificationFlags overrides the one-shot reminder flags directly.
func (r *SessionRepository) SetNotificationFlags(ctx context.Context, id primitive.ObjectID, flags bson.M) error {
	flags["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": flags})
	if err != nil {
		return fmt.Errorf("failed to update notification flags: %v", err)
	}
	return nil
}

// DeleteSession removes a session document.
func (r *SessionRepository) DeleteSession(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete study session: %v", err)
	}
	return nil
}

// GetUpcomingUnnotified returns scheduled sessions starting within the reminder
// window whose upcoming reminder has not fired yet.
func (r *SessionRepository) GetUpcomingUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error) {
	filter := bson.M{
		"date_time":         bson.M{"$gte": now, "$lte": now.Add(models.ReminderWindow)},
		"status":            "scheduled",
		"notification_sent": false,
	}
	return r.findSessions(ctx, filter)
}

// GetStartedUnnotified returns scheduled sessions currently in progress whose
// started reminder has not fired yet.
func (r *SessionRepository) GetStartedUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error) {
	filter := bson.M{
		"date_time":                 bson.M{"$lte": now},
		"end_time":                  bson.M{"$gte": now},
		"status":                    "scheduled",
		"started_notification_sent": bson.M{"$ne": true},
	}
	return r.findSessions(ctx, filter)
}

// ClaimUpcomingReminder flips the upcoming one-shot flag with a conditional
// update. Returns false when another sweep already claimed it.
func (r *SessionRepository) ClaimUpcomingReminder(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "notification_sent": false},
		bson.M{"$set": bson.M{"notification_sent": true}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim upcoming reminder: %v", err)
	}
	return result.ModifiedCount == 1, nil
}

// ClaimStartedReminder flips the started one-shot flag with a conditional update.
func (r *SessionRepository) ClaimStartedReminder(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "started_notification_sent": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"started_notification_sent": true}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim started reminder: %v", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *SessionRepository) findSessions(ctx context.Context, filter bson.M) ([]models.StudySession, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch study sessions: %v", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.StudySession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode study sessions: %v", err)
	}
	return sessions, nil
}

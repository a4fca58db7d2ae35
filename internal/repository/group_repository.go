package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/studybuddy-app/backend/internal/models"
)

// GroupRepository handles database operations for study groups.
type GroupRepository struct {
	collection *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{
		collection: db.Collection("study_groups"),
	}
}

// CreateGroup inserts a new study group.
func (r *GroupRepository) CreateGroup(ctx context.Context, group *models.StudyGroup) (*models.StudyGroup, error) {
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to insert study group: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	group.ID = insertedID

	return group, nil
}

// GetGroupByID retrieves a single group.
func (r *GroupRepository) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.StudyGroup, error) {
	var group models.StudyGroup
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err != nil {
		return nil, fmt.Errorf("failed to find study group: %v", err)
	}
	return &group, nil
}

// GetActiveGroups returns all groups that have not been deactivated.
func (r *GroupRepository) GetActiveGroups(ctx context.Context) ([]models.StudyGroup, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch study groups: %v", err)
	}
	defer cursor.Close(ctx)

	var groups []models.StudyGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode study groups: %v", err)
	}
	return groups, nil
}

// AddMember appends userID to the member list.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %v", err)
	}
	return nil
}

// RemoveMember pulls userID from the member list.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{
			"$pull": bson.M{"members": userID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %v", err)
	}
	return nil
}

// AddPendingRequest appends a join request to a closed group.
func (r *GroupRepository) AddPendingRequest(ctx context.Context, groupID primitive.ObjectID, req models.JoinRequest) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$push": bson.M{"pending_requests": req}},
	)
	if err != nil {
		return fmt.Errorf("failed to add pending request: %v", err)
	}
	return nil
}

// RemovePendingRequest pulls userID's join request from the group.
func (r *GroupRepository) RemovePendingRequest(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$pull": bson.M{"pending_requests": bson.M{"user_id": userID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove pending request: %v", err)
	}
	return nil
}

// SetPendingRequestStatus marks userID's join request with the given status.
func (r *GroupRepository) SetPendingRequestStatus(ctx context.Context, groupID, userID primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID, "pending_requests.user_id": userID},
		bson.M{"$set": bson.M{"pending_requests.$.status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update pending request status: %v", err)
	}
	return nil
}

// PurgeStalePendingRequests drops pending join requests older than cutoff.
func (r *GroupRepository) PurgeStalePendingRequests(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{},
		bson.M{"$pull": bson.M{"pending_requests": bson.M{
			"status":       "pending",
			"requested_at": bson.M{"$lt": cutoff},
		}}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale pending requests: %v", err)
	}
	return result.ModifiedCount, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one user's rating of a study partner.
type Review struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reviewer     primitive.ObjectID `bson:"reviewer" json:"reviewer"`
	ReviewedUser primitive.ObjectID `bson:"reviewed_user" json:"reviewedUser"`
	Rating       float64            `bson:"rating" json:"rating"` // 0..5
	ReviewText   string             `bson:"review_text,omitempty" json:"reviewText,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

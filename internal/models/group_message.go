package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReadReceipt records that one user has seen a message.
type ReadReceipt struct {
	UserID primitive.ObjectID `bson:"user_id" json:"userId"`
	ReadAt time.Time          `bson:"read_at" json:"readAt"`
}

// GroupMessage is a message posted to a study group's chat.
// Either Text or Image must be set.
type GroupMessage struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID         primitive.ObjectID `bson:"group_id" json:"groupId"`
	SenderID        primitive.ObjectID `bson:"sender_id" json:"senderId"`
	Text            string             `bson:"text,omitempty" json:"text,omitempty"`
	Image           string             `bson:"image,omitempty" json:"image,omitempty"`
	IsSystemMessage bool               `bson:"is_system_message" json:"isSystemMessage"`
	ReadBy          []ReadReceipt      `bson:"read_by,omitempty" json:"readBy,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}

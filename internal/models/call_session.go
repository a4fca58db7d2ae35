package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CallSessionTTL is how long a call session document lives before Mongo expires it.
const CallSessionTTL = time.Hour

// CallSession is an ephemeral video-call record between two users.
type CallSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID      string             `bson:"room_id" json:"roomId"`
	InitiatorID primitive.ObjectID `bson:"initiator_id" json:"initiatorId"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipientId"`
	Status      string             `bson:"status" json:"status"` // "pending", "accepted", "declined", "ended"
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

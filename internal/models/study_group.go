package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JoinRequest is a pending membership request embedded in the group document.
type JoinRequest struct {
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Status      string             `bson:"status" json:"status"` // "pending", "accepted", "rejected"
	RequestedAt time.Time          `bson:"requested_at" json:"requestedAt"`
}

// StudyGroup is a named group of users studying for the same exam.
type StudyGroup struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Admin           primitive.ObjectID   `bson:"admin" json:"admin"`
	Members         []primitive.ObjectID `bson:"members,omitempty" json:"members,omitempty"`
	PendingRequests []JoinRequest        `bson:"pending_requests,omitempty" json:"pendingRequests,omitempty"`
	Exam            string               `bson:"exam" json:"exam"`
	Subjects        []string             `bson:"subjects,omitempty" json:"subjects,omitempty"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	MaxMembers      int                  `bson:"max_members" json:"maxMembers"`
	IsOpen          bool                 `bson:"is_open" json:"isOpen"`
	IsActive        bool                 `bson:"is_active" json:"isActive"`
	CreatedAt       time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Room returns the broadcast room name for the group's chat.
func (g *StudyGroup) Room() string {
	return "group:" + g.ID.Hex()
}

// IsAdmin reports whether userID administers the group.
func (g *StudyGroup) IsAdmin(userID primitive.ObjectID) bool {
	return g.Admin == userID
}

// IsMember reports whether userID is in the member list.
func (g *StudyGroup) IsMember(userID primitive.ObjectID) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the group has reached its member cap.
func (g *StudyGroup) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

// PendingRequestFrom returns the index of userID's pending join request, or -1.
func (g *StudyGroup) PendingRequestFrom(userID primitive.ObjectID) int {
	for i, req := range g.PendingRequests {
		if req.UserID == userID {
			return i
		}
	}
	return -1
}

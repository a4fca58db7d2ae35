package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendRequest is a directional request embedded in the receiving user's document.
type FriendRequest struct {
	FromUserID primitive.ObjectID `bson:"from_user_id" json:"fromUserId"`
	Status     string             `bson:"status" json:"status"` // "pending", "accepted", "declined"
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

// User represents a user account in the StudyBuddy system.
type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email             string               `bson:"email" json:"email"`
	FullName          string               `bson:"full_name" json:"fullName"`
	HashedPassword    string               `bson:"hashed_password" json:"-"`
	ProfilePic        string               `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
	Class             string               `bson:"class,omitempty" json:"class,omitempty"`
	Exam              string               `bson:"exam,omitempty" json:"exam,omitempty"` // "JEE", "NEET", "UPSC", "Other"
	Subjects          []string             `bson:"subjects,omitempty" json:"subjects,omitempty"`
	StudyPreferences  string               `bson:"study_preferences,omitempty" json:"studyPreferences,omitempty"` // "Group", "One-on-One", "Either"
	Availability      string               `bson:"availability,omitempty" json:"availability,omitempty"`
	Rating            float64              `bson:"rating" json:"rating"`
	IsProfileComplete bool                 `bson:"is_profile_complete" json:"isProfileComplete"`
	Role              string               `bson:"role" json:"role"`
	Friends           []primitive.ObjectID `bson:"friends,omitempty" json:"friends,omitempty"`
	FriendRequests    []FriendRequest      `bson:"friend_requests,omitempty" json:"friendRequests,omitempty"`
	CreatedAt         time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the subset of a profile exposed to other users.
type PublicUser struct {
	ID         primitive.ObjectID `json:"id"`
	FullName   string             `json:"fullName"`
	Email      string             `json:"email"`
	ProfilePic string             `json:"profilePic,omitempty"`
	Rating     float64            `json:"rating"`
}

// Public strips a user down to the fields other users may see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		Rating:     u.Rating,
	}
}

// RequestFrom returns the index of the friend request sent by fromUserID, or -1.
func (u *User) RequestFrom(fromUserID primitive.ObjectID) int {
	for i, req := range u.FriendRequests {
		if req.FromUserID == fromUserID {
			return i
		}
	}
	return -1
}

// PendingRequests filters the embedded requests down to the pending ones.
func (u *User) PendingRequests() []FriendRequest {
	pending := make([]FriendRequest, 0)
	for _, req := range u.FriendRequests {
		if req.Status == "pending" {
			pending = append(pending, req)
		}
	}
	return pending
}

// AcceptedRequests filters the embedded requests down to the accepted ones.
func (u *User) AcceptedRequests() []FriendRequest {
	accepted := make([]FriendRequest, 0)
	for _, req := range u.FriendRequests {
		if req.Status == "accepted" {
			accepted = append(accepted, req)
		}
	}
	return accepted
}

// HasFriend reports whether friendID is already in the user's friends list.
func (u *User) HasFriend(friendID primitive.ObjectID) bool {
	for _, id := range u.Friends {
		if id == friendID {
			return true
		}
	}
	return false
}

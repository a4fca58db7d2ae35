package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderWindow is how far ahead of the start time the upcoming reminder fires.
const ReminderWindow = 15 * time.Minute

// StudySession is a scheduled study meeting between an organizer and participants.
type StudySession struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Organizer    primitive.ObjectID   `bson:"organizer" json:"organizer"`
	Participants []primitive.ObjectID `bson:"participants,omitempty" json:"participants,omitempty"`
	DateTime     time.Time            `bson:"date_time" json:"dateTime"`
	EndTime      time.Time            `bson:"end_time" json:"endTime"`
	Duration     int                  `bson:"duration" json:"duration"` // minutes
	Agenda       string               `bson:"agenda,omitempty" json:"agenda,omitempty"`
	Status       string               `bson:"status" json:"status"` // "scheduled", "completed", "cancelled"

	// One-shot reminder flags, claimed atomically by the reminder sweeper.
	NotificationSent        bool `bson:"notification_sent" json:"notificationSent"`
	StartedNotificationSent bool `bson:"started_notification_sent" json:"startedNotificationSent"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Everyone returns the organizer plus all participants.
func (s *StudySession) Everyone() []primitive.ObjectID {
	all := make([]primitive.ObjectID, 0, len(s.Participants)+1)
	all = append(all, s.Organizer)
	all = append(all, s.Participants...)
	return all
}

// IsOrganizer reports whether userID created the session.
func (s *StudySession) IsOrganizer(userID primitive.ObjectID) bool {
	return s.Organizer == userID
}

// Category classifies the session relative to now: "upcoming", "ongoing" or "past".
func (s *StudySession) Category(now time.Time) string {
	switch {
	case now.Before(s.DateTime):
		return "upcoming"
	case now.After(s.EndTime):
		return "past"
	default:
		return "ongoing"
	}
}

// InReminderWindow reports whether now falls inside [start-15m, start].
func (s *StudySession) InReminderWindow(now time.Time) bool {
	return !now.After(s.DateTime) && !now.Before(s.DateTime.Add(-ReminderWindow))
}

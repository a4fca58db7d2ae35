package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSessionCategory(t *testing.T) {
	now := time.Now()

	// Started 20 minutes ago with a 30 minute duration: still ongoing.
	ongoing := StudySession{
		DateTime: now.Add(-20 * time.Minute),
		EndTime:  now.Add(10 * time.Minute),
		Duration: 30,
	}
	assert.Equal(t, "ongoing", ongoing.Category(now))

	upcoming := StudySession{
		DateTime: now.Add(time.Hour),
		EndTime:  now.Add(2 * time.Hour),
	}
	assert.Equal(t, "upcoming", upcoming.Category(now))

	past := StudySession{
		DateTime: now.Add(-2 * time.Hour),
		EndTime:  now.Add(-time.Hour),
	}
	assert.Equal(t, "past", past.Category(now))
}

func TestSessionInReminderWindow(t *testing.T) {
	now := time.Now()

	assert.True(t, (&StudySession{DateTime: now.Add(10 * time.Minute)}).InReminderWindow(now))
	assert.True(t, (&StudySession{DateTime: now}).InReminderWindow(now))
	assert.True(t, (&StudySession{DateTime: now.Add(ReminderWindow)}).InReminderWindow(now))
	assert.False(t, (&StudySession{DateTime: now.Add(16 * time.Minute)}).InReminderWindow(now))
	assert.False(t, (&StudySession{DateTime: now.Add(-time.Minute)}).InReminderWindow(now))
}

func TestSessionEveryone(t *testing.T) {
	organizer := primitive.NewObjectID()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	session := StudySession{
		Organizer:    organizer,
		Participants: []primitive.ObjectID{p1, p2},
	}

	assert.Equal(t, []primitive.ObjectID{organizer, p1, p2}, session.Everyone())
}

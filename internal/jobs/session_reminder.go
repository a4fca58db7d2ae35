package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// SweepInterval is the fixed period between reminder sweeps.
const SweepInterval = 60 * time.Second

// SessionSource supplies sessions due for a reminder and claims their one-shot
// flags. A claim is an atomic conditional update: it returns false when another
// sweep already fired the reminder.
type SessionSource interface {
	UpcomingUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error)
	StartedUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error)
	ClaimUpcomingReminder(ctx context.Context, id primitive.ObjectID) (bool, error)
	ClaimStartedReminder(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// EventRelay pushes events to live connections. Offline users are silently skipped.
type EventRelay interface {
	EmitToUser(userID, event string, payload interface{})
}

// ReminderPayload is the body of every sessionReminder event.
type ReminderPayload struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
	Type      string `json:"type"` // "upcoming" or "started"
}

// SessionReminder periodically scans for sessions that are about to start or
// have just started and pushes reminders to their participants.
type SessionReminder struct {
	Sessions SessionSource
	Relay    EventRelay
}

// NewSessionReminder creates a new instance of SessionReminder.
func NewSessionReminder(sessions SessionSource, relay EventRelay) *SessionReminder {
	return &SessionReminder{
		Sessions: sessions,
		Relay:    relay,
	}
}

// Start runs the sweep loop until ctx is cancelled. Errors inside a sweep are
// logged and swallowed; the next cycle proceeds regardless.
func (j *SessionReminder) Start(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Session reminder sweeper stopped")
			return
		case <-ticker.C:
			if err := j.Sweep(ctx, time.Now()); err != nil {
				logrus.WithError(err).Error("Session reminder sweep failed")
			}
		}
	}
}

// Sweep runs one reminder pass for both time windows.
func (j *SessionReminder) Sweep(ctx context.Context, now time.Time) error {
	upcoming, err := j.Sessions.UpcomingUnnotified(ctx, now)
	if err != nil {
		return err
	}
	for _, session := range upcoming {
		claimed, err := j.Sessions.ClaimUpcomingReminder(ctx, session.ID)
		if err != nil {
			logrus.WithError(err).Warnf("Failed to claim upcoming reminder for session %s", session.ID.Hex())
			continue
		}
		if !claimed {
			continue // another sweep got there first
		}
		j.notify(session, "upcoming")
	}

	started, err := j.Sessions.StartedUnnotified(ctx, now)
	if err != nil {
		return err
	}
	for _, session := range started {
		claimed, err := j.Sessions.ClaimStartedReminder(ctx, session.ID)
		if err != nil {
			logrus.WithError(err).Warnf("Failed to claim started reminder for session %s", session.ID.Hex())
			continue
		}
		if !claimed {
			continue
		}
		j.notify(session, "started")
	}

	return nil
}

func (j *SessionReminder) notify(session models.StudySession, reminderType string) {
	payload := ReminderPayload{
		SessionID: session.ID.Hex(),
		Title:     session.Title,
		Type:      reminderType,
	}
	for _, userID := range session.Everyone() {
		j.Relay.EmitToUser(userID.Hex(), "sessionReminder", payload)
	}
	logrus.WithFields(logrus.Fields{
		"sessionID": session.ID.Hex(),
		"type":      reminderType,
	}).Info("Session reminder sent")
}

package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// SessionStore is the session persistence surface the service needs.
// Satisfied by *repository.SessionRepository.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.StudySession) (*models.StudySession, error)
	GetSessionByID(ctx context.Context, id primitive.ObjectID) (*models.StudySession, error)
	GetSessionsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.StudySession, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	SetNotificationFlags(ctx context.Context, id primitive.ObjectID, flags bson.M) error
	DeleteSession(ctx context.Context, id primitive.ObjectID) error
	GetUpcomingUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error)
	GetStartedUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error)
	ClaimUpcomingReminder(ctx context.Context, id primitive.ObjectID) (bool, error)
	ClaimStartedReminder(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// SessionService handles business logic for study sessions.
type SessionService struct {
	repo SessionStore
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo SessionStore) *SessionService {
	return &SessionService{repo: repo}
}

// CreateSession schedules a new study session. The end time is derived from
// the start time plus the duration in minutes.
func (s *SessionService) CreateSession(ctx context.Context, session *models.StudySession) (*models.StudySession, error) {
	if session.Title == "" {
		return nil, fmt.Errorf("session title is required")
	}
	if session.DateTime.IsZero() {
		return nil, fmt.Errorf("session start time is required")
	}
	if session.Duration <= 0 {
		return nil, fmt.Errorf("session duration must be positive")
	}

	session.EndTime = session.DateTime.Add(time.Duration(session.Duration) * time.Minute)
	session.Status = "scheduled"
	session.NotificationSent = false
	session.StartedNotificationSent = false

	return s.repo.CreateSession(ctx, session)
}

// GetSessionsForUser returns the sessions the user organizes or attends.
func (s *SessionService) GetSessionsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.StudySession, error) {
	return s.repo.GetSessionsForUser(ctx, userID)
}

// UpdateStatus changes a session's status. Only the organizer may do this.
func (s *SessionService) UpdateStatus(ctx context.Context, sessionID, userID primitive.ObjectID, status string) (*models.StudySession, error) {
	switch status {
	case "scheduled", "completed", "cancelled":
	default:
		return nil, fmt.Errorf("invalid session status %q", status)
	}

	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found")
	}
	if !session.IsOrganizer(userID) {
		return nil, fmt.Errorf("only the organizer can update the session")
	}

	if err := s.repo.UpdateStatus(ctx, sessionID, status); err != nil {
		return nil, err
	}
	session.Status = status
	return session, nil
}

// DeleteSession removes a session. Only the organizer may do this.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID, userID primitive.ObjectID) error {
	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session not found")
	}
	if !session.IsOrganizer(userID) {
		return fmt.Errorf("only the organizer can delete the session")
	}
	return s.repo.DeleteSession(ctx, sessionID)
}

// OverrideNotificationFlags lets a client force the one-shot reminder flags.
func (s *SessionService) OverrideNotificationFlags(ctx context.Context, sessionID primitive.ObjectID, notificationSent, startedNotificationSent *bool) (*models.StudySession, error) {
	flags := bson.M{}
	if notificationSent != nil {
		flags["notification_sent"] = *notificationSent
	}
	if startedNotificationSent != nil {
		flags["started_notification_sent"] = *startedNotificationSent
	}
	if len(flags) == 0 {
		return nil, fmt.Errorf("no notification flags provided")
	}

	if err := s.repo.SetNotificationFlags(ctx, sessionID, flags); err != nil {
		return nil, err
	}
	return s.repo.GetSessionByID(ctx, sessionID)
}

// UpcomingUnnotified lists sessions due for an upcoming reminder.
func (s *SessionService) UpcomingUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error) {
	return s.repo.GetUpcomingUnnotified(ctx, now)
}

// StartedUnnotified lists sessions due for a started reminder.
func (s *SessionService) StartedUnnotified(ctx context.Context, now time.Time) ([]models.StudySession, error) {
	return s.repo.GetStartedUnnotified(ctx, now)
}

// ClaimUpcomingReminder atomically claims the upcoming one-shot flag.
func (s *SessionService) ClaimUpcomingReminder(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.repo.ClaimUpcomingReminder(ctx, id)
}

// ClaimStartedReminder atomically claims the started one-shot flag.
func (s *SessionService) ClaimStartedReminder(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.repo.ClaimStartedReminder(ctx, id)
}

package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// fakeSource serves sessions from memory and claims flags like the repository
// does: conditionally, so a second claim on the same session fails.
type fakeSource struct {
	sessions map[primitive.ObjectID]*models.StudySession
	failWith error

	// afterQuery runs between the window query and the claim, simulating a
	// concurrent sweep racing on the same sessions.
	afterQuery func()
}

func newFakeSource(sessions ...*models.StudySession) *fakeSource {
	src := &fakeSource{sessions: make(map[primitive.ObjectID]*models.StudySession)}
	for _, s := range sessions {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		src.sessions[s.ID] = s
	}
	return src
}

func (f *fakeSource) UpcomingUnnotified(_ context.Context, now time.Time) ([]models.StudySession, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var due []models.StudySession
	for _, s := range f.sessions {
		if s.Status == "scheduled" && !s.NotificationSent && s.InReminderWindow(now) {
			due = append(due, *s)
		}
	}
	if f.afterQuery != nil {
		f.afterQuery()
	}
	return due, nil
}

func (f *fakeSource) StartedUnnotified(_ context.Context, now time.Time) ([]models.StudySession, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var due []models.StudySession
	for _, s := range f.sessions {
		if s.Status == "scheduled" && !s.StartedNotificationSent &&
			!now.Before(s.DateTime) && !now.After(s.EndTime) {
			due = append(due, *s)
		}
	}
	return due, nil
}

func (f *fakeSource) ClaimUpcomingReminder(_ context.Context, id primitive.ObjectID) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.NotificationSent {
		return false, nil
	}
	s.NotificationSent = true
	return true, nil
}

func (f *fakeSource) ClaimStartedReminder(_ context.Context, id primitive.ObjectID) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.StartedNotificationSent {
		return false, nil
	}
	s.StartedNotificationSent = true
	return true, nil
}

// fakeRelay records every emitted event per user.
type fakeRelay struct {
	emitted []emittedEvent
}

type emittedEvent struct {
	userID  string
	event   string
	payload ReminderPayload
}

func (r *fakeRelay) EmitToUser(userID, event string, payload interface{}) {
	r.emitted = append(r.emitted, emittedEvent{userID, event, payload.(ReminderPayload)})
}

func TestSweepFiresUpcomingReminderOnce(t *testing.T) {
	now := time.Now()
	organizer := primitive.NewObjectID()
	participant := primitive.NewObjectID()

	session := &models.StudySession{
		Title:        "Algebra revision",
		Organizer:    organizer,
		Participants: []primitive.ObjectID{participant},
		DateTime:     now.Add(10 * time.Minute),
		EndTime:      now.Add(70 * time.Minute),
		Status:       "scheduled",
	}
	source := newFakeSource(session)
	relay := &fakeRelay{}
	job := NewSessionReminder(source, relay)

	require.NoError(t, job.Sweep(context.Background(), now))

	// Organizer and participant each got one upcoming reminder.
	require.Len(t, relay.emitted, 2)
	assert.Equal(t, "sessionReminder", relay.emitted[0].event)
	assert.Equal(t, "upcoming", relay.emitted[0].payload.Type)
	assert.Equal(t, "Algebra revision", relay.emitted[0].payload.Title)
	assert.ElementsMatch(t,
		[]string{organizer.Hex(), participant.Hex()},
		[]string{relay.emitted[0].userID, relay.emitted[1].userID})

	// Session stays in the window across later sweeps: the flag gates re-firing.
	require.NoError(t, job.Sweep(context.Background(), now.Add(time.Minute)))
	require.NoError(t, job.Sweep(context.Background(), now.Add(2*time.Minute)))
	assert.Len(t, relay.emitted, 2)
}

func TestSweepFiresStartedReminderIndependently(t *testing.T) {
	now := time.Now()
	organizer := primitive.NewObjectID()

	session := &models.StudySession{
		Title:     "Mock test",
		Organizer: organizer,
		DateTime:  now.Add(-5 * time.Minute),
		EndTime:   now.Add(25 * time.Minute),
		Status:    "scheduled",
		// Upcoming reminder already fired in an earlier window.
		NotificationSent: true,
	}
	source := newFakeSource(session)
	relay := &fakeRelay{}
	job := NewSessionReminder(source, relay)

	require.NoError(t, job.Sweep(context.Background(), now))

	require.Len(t, relay.emitted, 1)
	assert.Equal(t, "started", relay.emitted[0].payload.Type)

	require.NoError(t, job.Sweep(context.Background(), now.Add(time.Minute)))
	assert.Len(t, relay.emitted, 1)
}

func TestSweepSkipsCancelledSessions(t *testing.T) {
	now := time.Now()
	session := &models.StudySession{
		Organizer: primitive.NewObjectID(),
		DateTime:  now.Add(5 * time.Minute),
		EndTime:   now.Add(35 * time.Minute),
		Status:    "cancelled",
	}
	source := newFakeSource(session)
	relay := &fakeRelay{}

	require.NoError(t, NewSessionReminder(source, relay).Sweep(context.Background(), now))
	assert.Empty(t, relay.emitted)
}

func TestSweepSkipsWhenClaimLost(t *testing.T) {
	now := time.Now()
	session := &models.StudySession{
		Organizer: primitive.NewObjectID(),
		DateTime:  now.Add(5 * time.Minute),
		EndTime:   now.Add(35 * time.Minute),
		Status:    "scheduled",
	}
	source := newFakeSource(session)
	relay := &fakeRelay{}
	job := NewSessionReminder(source, relay)

	// A concurrent sweep claims the flag between our query and our claim.
	source.afterQuery = func() {
		claimed, err := source.ClaimUpcomingReminder(context.Background(), session.ID)
		require.NoError(t, err)
		require.True(t, claimed)
	}

	require.NoError(t, job.Sweep(context.Background(), now))
	assert.Empty(t, relay.emitted)
}

func TestSweepReturnsErrorButDoesNotPanic(t *testing.T) {
	source := newFakeSource()
	source.failWith = errors.New("database unavailable")

	err := NewSessionReminder(source, &fakeRelay{}).Sweep(context.Background(), time.Now())
	assert.Error(t, err)
}

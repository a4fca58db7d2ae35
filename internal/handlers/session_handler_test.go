package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/services"
)

// sessionStoreStub serves one session; unused methods come from the embedded
// interface and are never called in these tests.
type sessionStoreStub struct {
	services.SessionStore
	session *models.StudySession
}

func (s *sessionStoreStub) GetSessionByID(_ context.Context, id primitive.ObjectID) (*models.StudySession, error) {
	if s.session == nil || s.session.ID != id {
		return nil, fmt.Errorf("session not found")
	}
	return s.session, nil
}

func (s *sessionStoreStub) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	if s.session == nil || s.session.ID != id {
		return fmt.Errorf("session not found")
	}
	s.session.Status = status
	return nil
}

func TestCancelSessionNotifiesParticipantsNotOrganizer(t *testing.T) {
	organizer := primitive.NewObjectID()
	attendee := primitive.NewObjectID()
	offline := primitive.NewObjectID()

	session := &models.StudySession{
		ID:           primitive.NewObjectID(),
		Title:        "Thermodynamics revision",
		Organizer:    organizer,
		Participants: []primitive.ObjectID{attendee, offline},
		DateTime:     time.Now().Add(time.Hour),
		EndTime:      time.Now().Add(2 * time.Hour),
		Status:       "scheduled",
	}
	store := &sessionStoreStub{session: session}

	registry := realtime.NewRegistry()
	organizerConn := &recorderConn{}
	attendeeConn := &recorderConn{}
	registry.Register(organizer.Hex(), organizerConn)
	registry.Register(attendee.Hex(), attendeeConn)

	relay := realtime.NewRelay(registry, realtime.NewRooms())
	handler := NewSessionHandler(services.NewSessionService(store), relay)

	body, _ := json.Marshal(map[string]string{"status": "cancelled"})
	req := authedRequest(http.MethodPut, "/study-sessions/"+session.ID.Hex()+"/status", body, organizer)
	req = mux.SetURLVars(req, map[string]string{"id": session.ID.Hex()})
	rr := httptest.NewRecorder()
	handler.UpdateSessionStatusHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "cancelled", session.Status)

	// The online attendee hears about it exactly once.
	require.Len(t, attendeeConn.events, 1)
	assert.Equal(t, "sessionCancelled", attendeeConn.events[0].Event)

	// The organizer initiated the cancellation and gets no echo.
	assert.Empty(t, organizerConn.events)
}

func TestCancelSessionNonOrganizerForbidden(t *testing.T) {
	organizer := primitive.NewObjectID()
	attendee := primitive.NewObjectID()

	session := &models.StudySession{
		ID:           primitive.NewObjectID(),
		Title:        "Thermodynamics revision",
		Organizer:    organizer,
		Participants: []primitive.ObjectID{attendee},
		Status:       "scheduled",
	}
	store := &sessionStoreStub{session: session}
	relay := realtime.NewRelay(realtime.NewRegistry(), realtime.NewRooms())
	handler := NewSessionHandler(services.NewSessionService(store), relay)

	body, _ := json.Marshal(map[string]string{"status": "cancelled"})
	req := authedRequest(http.MethodPut, "/study-sessions/"+session.ID.Hex()+"/status", body, attendee)
	req = mux.SetURLVars(req, map[string]string{"id": session.ID.Hex()})
	rr := httptest.NewRecorder()
	handler.UpdateSessionStatusHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "scheduled", session.Status)
}

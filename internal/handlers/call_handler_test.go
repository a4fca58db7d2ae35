package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/config"
	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/services"
	jwtutil "github.com/studybuddy-app/backend/pkg/jwt"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

// recorderConn captures everything pushed over a connection.
type recorderConn struct {
	events []realtime.Event
}

func (c *recorderConn) WriteJSON(v interface{}) error {
	c.events = append(c.events, v.(realtime.Event))
	return nil
}

// callStoreStub records created calls; unused methods come from the embedded
// interface and are never called in these tests.
type callStoreStub struct {
	services.CallStore
	created []*models.CallSession
}

func (s *callStoreStub) CreateCall(_ context.Context, call *models.CallSession) (*models.CallSession, error) {
	call.ID = primitive.NewObjectID()
	call.CreatedAt = time.Now()
	s.created = append(s.created, call)
	return call, nil
}

type userSourceStub struct {
	users map[string]*models.User
}

func (s *userSourceStub) GetUser(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func authedRequest(method, target string, body []byte, userID primitive.ObjectID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &jwtutil.Claims{UserID: userID.Hex(), Email: "caller@test.dev"}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func newCallHandler(store *callStoreStub, users *userSourceStub, registry *realtime.Registry) *CallHandler {
	rooms := realtime.NewRooms()
	return NewCallHandler(
		services.NewCallService(store),
		users,
		realtime.NewRelay(registry, rooms),
		&config.Config{},
	)
}

func TestInitiateCallOfflineRecipientPersistsWithoutDelivery(t *testing.T) {
	initiator := primitive.NewObjectID()
	recipient := primitive.NewObjectID()
	bystander := primitive.NewObjectID()

	store := &callStoreStub{}
	users := &userSourceStub{users: map[string]*models.User{
		initiator.Hex(): {ID: initiator, FullName: "Alice"},
	}}

	// Only a bystander is online; the recipient is not.
	registry := realtime.NewRegistry()
	bystanderConn := &recorderConn{}
	registry.Register(bystander.Hex(), bystanderConn)

	handler := newCallHandler(store, users, registry)

	body, _ := json.Marshal(map[string]string{"recipientId": recipient.Hex()})
	rr := httptest.NewRecorder()
	handler.InitiateCallHandler(rr, authedRequest(http.MethodPost, "/calls/initiate", body, initiator))

	require.Equal(t, http.StatusCreated, rr.Code)

	// The call session is persisted even though nobody was notified.
	require.Len(t, store.created, 1)
	call := store.created[0]
	assert.Equal(t, "pending", call.Status)
	assert.Equal(t, initiator, call.InitiatorID)
	assert.Equal(t, recipient, call.RecipientID)
	assert.NotEmpty(t, call.RoomID)

	assert.Empty(t, bystanderConn.events)
}

func TestInitiateCallOnlineRecipientGetsRequest(t *testing.T) {
	initiator := primitive.NewObjectID()
	recipient := primitive.NewObjectID()

	store := &callStoreStub{}
	users := &userSourceStub{users: map[string]*models.User{
		initiator.Hex(): {ID: initiator, FullName: "Alice"},
	}}

	registry := realtime.NewRegistry()
	recipientConn := &recorderConn{}
	registry.Register(recipient.Hex(), recipientConn)

	handler := newCallHandler(store, users, registry)

	body, _ := json.Marshal(map[string]string{"recipientId": recipient.Hex()})
	rr := httptest.NewRecorder()
	handler.InitiateCallHandler(rr, authedRequest(http.MethodPost, "/calls/initiate", body, initiator))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, recipientConn.events, 1)
	assert.Equal(t, "videoCallRequest", recipientConn.events[0].Event)

	payload, ok := recipientConn.events[0].Data.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Alice", payload["callerName"])
	assert.Equal(t, initiator.Hex(), payload["callerId"])
}

func TestInitiateCallSelfRejected(t *testing.T) {
	user := primitive.NewObjectID()
	store := &callStoreStub{}
	handler := newCallHandler(store, &userSourceStub{}, realtime.NewRegistry())

	body, _ := json.Marshal(map[string]string{"recipientId": user.Hex()})
	rr := httptest.NewRecorder()
	handler.InitiateCallHandler(rr, authedRequest(http.MethodPost, "/calls/initiate", body, user))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, store.created)
}

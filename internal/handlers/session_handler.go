package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/services"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

// SessionHandler handles study session endpoints.
type SessionHandler struct {
	Service *services.SessionService
	Relay   *realtime.Relay
}

// NewSessionHandler creates a new instance of SessionHandler.
func NewSessionHandler(service *services.SessionService, relay *realtime.Relay) *SessionHandler {
	return &SessionHandler{
		Service: service,
		Relay:   relay,
	}
}

// CreateSessionHandler schedules a new study session and notifies
// invited participants who are currently online.
func (h *SessionHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var session models.StudySession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	session.Organizer = userID
	created, err := h.Service.CreateSession(r.Context(), &session)
	if err != nil {
		log.WithError(err).Warn("Failed to create study session")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, participantID := range created.Participants {
		if participantID == userID {
			continue
		}
		h.Relay.EmitToUser(participantID.Hex(), "studySessionInvite", map[string]string{
			"sessionId": created.ID.Hex(),
			"title":     created.Title,
			"organizer": claims.UserID,
		})
	}

	log.WithField("sessionID", created.ID.Hex()).Info("Study session created")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetSessionsHandler lists the caller's sessions, each annotated with
// its time category.
func (h *SessionHandler) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	sessions, err := h.Service.GetSessionsForUser(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch study sessions")
		http.Error(w, "Failed to fetch sessions", http.StatusInternalServerError)
		return
	}

	type sessionWithCategory struct {
		models.StudySession
		Category string `json:"category"`
	}
	now := time.Now()
	out := make([]sessionWithCategory, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionWithCategory{StudySession: s, Category: s.Category(now)})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// UpdateSessionStatusHandler changes a session's status. A cancellation
// is pushed to every participant who is online.
func (h *SessionHandler) UpdateSessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	session, err := h.Service.UpdateStatus(r.Context(), sessionID, userID, req.Status)
	if err != nil {
		log.WithError(err).Warn("Failed to update session status")
		http.Error(w, err.Error(), sessionErrorStatus(err))
		return
	}

	if req.Status == "cancelled" {
		for _, id := range session.Participants {
			if id == userID {
				continue
			}
			h.Relay.EmitToUser(id.Hex(), "sessionCancelled", map[string]string{
				"sessionId": session.ID.Hex(),
				"title":     session.Title,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// DeleteSessionHandler deletes a session. Only the organizer may do this.
func (h *SessionHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteSession(r.Context(), sessionID, userID); err != nil {
		log.WithError(err).Warn("Failed to delete study session")
		http.Error(w, err.Error(), sessionErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Session deleted"})
}

// UpdateNotificationFlagsHandler lets a client override the one-shot
// reminder flags on a session.
func (h *SessionHandler) UpdateNotificationFlagsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	var req struct {
		NotificationSent        *bool `json:"notificationSent"`
		StartedNotificationSent *bool `json:"startedNotificationSent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	session, err := h.Service.OverrideNotificationFlags(r.Context(), sessionID, req.NotificationSent, req.StartedNotificationSent)
	if err != nil {
		log.WithError(err).Warn("Failed to update notification flags")
		http.Error(w, err.Error(), sessionErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func sessionErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "only the organizer"):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

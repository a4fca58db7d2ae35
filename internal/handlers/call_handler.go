package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/config"
	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/services"
	jwtutil "github.com/studybuddy-app/backend/pkg/jwt"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

// UserSource resolves user profiles for event enrichment.
// Satisfied by *services.UserService.
type UserSource interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// CallHandler handles video call signalling endpoints.
type CallHandler struct {
	Service *services.CallService
	Users   UserSource
	Relay   *realtime.Relay
	Config  *config.Config
}

// NewCallHandler creates a new instance of CallHandler.
func NewCallHandler(service *services.CallService, users UserSource, relay *realtime.Relay, cfg *config.Config) *CallHandler {
	return &CallHandler{
		Service: service,
		Users:   users,
		Relay:   relay,
		Config:  cfg,
	}
}

// InitiateCallHandler starts a call session and pushes a request to the
// recipient if they are online.
func (h *CallHandler) InitiateCallHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	initiatorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		RecipientID string `json:"recipientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		http.Error(w, "Invalid recipient ID", http.StatusBadRequest)
		return
	}

	call, err := h.Service.InitiateCall(r.Context(), initiatorID, recipientID)
	if err != nil {
		log.WithError(err).Warn("Failed to initiate call")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	callerName := claims.Email
	if caller, err := h.Users.GetUser(r.Context(), claims.UserID); err == nil {
		callerName = caller.FullName
	}

	h.Relay.EmitToUser(recipientID.Hex(), "videoCallRequest", map[string]string{
		"callId":     call.ID.Hex(),
		"roomId":     call.RoomID,
		"callerId":   claims.UserID,
		"callerName": callerName,
	})

	log.WithFields(log.Fields{
		"callID": call.ID.Hex(),
		"roomID": call.RoomID,
	}).Info("Call initiated")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(call)
}

// RespondToCallHandler records the recipient's answer and relays it back
// to the initiator.
func (h *CallHandler) RespondToCallHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CallID   string `json:"callId"`
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	callID, err := primitive.ObjectIDFromHex(req.CallID)
	if err != nil {
		http.Error(w, "Invalid call ID", http.StatusBadRequest)
		return
	}

	call, err := h.Service.RespondToCall(r.Context(), callID, req.Response)
	if err != nil {
		log.WithError(err).Warn("Failed to respond to call")
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.Relay.EmitToUser(call.InitiatorID.Hex(), "videoCallResponse", map[string]string{
		"callId":   call.ID.Hex(),
		"roomId":   call.RoomID,
		"response": call.Status,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(call)
}

// GetRoomTokenHandler issues a signed token for joining a video room.
func (h *CallHandler) GetRoomTokenHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		http.Error(w, "roomId query parameter is required", http.StatusBadRequest)
		return
	}

	token, err := jwtutil.GenerateRoomToken(claims.UserID, roomID, h.Config.VideoAppID, h.Config.VideoServerSecret)
	if err != nil {
		log.WithError(err).Error("Failed to generate room token")
		http.Error(w, "Failed to generate room token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token":  token,
		"roomId": roomID,
		"appId":  h.Config.VideoAppID,
	})
}

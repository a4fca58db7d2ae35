package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/services"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

// GroupMessageHandler handles group chat message endpoints.
type GroupMessageHandler struct {
	Service *services.GroupMessageService
	Relay   *realtime.Relay
}

// NewGroupMessageHandler creates a new instance of GroupMessageHandler.
func NewGroupMessageHandler(service *services.GroupMessageService, relay *realtime.Relay) *GroupMessageHandler {
	return &GroupMessageHandler{
		Service: service,
		Relay:   relay,
	}
}

// GetMessagesHandler returns a page of a group's chat history.
// Supports ?page= and ?limit= query parameters.
func (h *GroupMessageHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
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
	groupID, err := primitive.ObjectIDFromHex(mux.Vars(r)["groupId"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	result, err := h.Service.GetMessages(r.Context(), groupID, userID, page, limit)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch group messages")
		http.Error(w, err.Error(), messageErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// SendMessageHandler posts a message to a group chat and broadcasts it
// to the group's room.
func (h *GroupMessageHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	senderID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	groupID, err := primitive.ObjectIDFromHex(mux.Vars(r)["groupId"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	msg, err := h.Service.SendMessage(r.Context(), groupID, senderID, req.Text, req.Image)
	if err != nil {
		log.WithError(err).Warn("Failed to send group message")
		http.Error(w, err.Error(), messageErrorStatus(err))
		return
	}

	h.Relay.EmitToRoom("group:"+groupID.Hex(), "groupMessage", msg)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// DeleteMessageHandler deletes a message the caller sent.
func (h *GroupMessageHandler) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	senderID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	messageID, err := primitive.ObjectIDFromHex(mux.Vars(r)["messageId"])
	if err != nil {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteMessage(r.Context(), messageID, senderID); err != nil {
		log.WithError(err).Warn("Failed to delete group message")
		http.Error(w, err.Error(), messageErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Message deleted"})
}

// MarkReadHandler records a read receipt on a group message.
func (h *GroupMessageHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
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
	messageID, err := primitive.ObjectIDFromHex(mux.Vars(r)["messageId"])
	if err != nil {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkRead(r.Context(), messageID, userID); err != nil {
		log.WithError(err).Warn("Failed to mark message read")
		http.Error(w, err.Error(), messageErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Marked as read"})
}

func messageErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "not a group member"), strings.Contains(msg, "own messages"):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

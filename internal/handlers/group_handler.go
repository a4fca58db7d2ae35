package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/services"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

// GroupHandler handles study group endpoints.
type GroupHandler struct {
	Service *services.GroupService
	Relay   *realtime.Relay
}

// NewGroupHandler creates a new instance of GroupHandler.
func NewGroupHandler(service *services.GroupService, relay *realtime.Relay) *GroupHandler {
	return &GroupHandler{
		Service: service,
		Relay:   relay,
	}
}

// CreateGroupHandler creates a new study group with the caller as admin.
func (h *GroupHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
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

	var group models.StudyGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateGroup(r.Context(), &group, userID)
	if err != nil {
		log.WithError(err).Warn("Failed to create study group")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.WithFields(log.Fields{
		"groupID": created.ID.Hex(),
		"admin":   claims.UserID,
	}).Info("Study group created")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetGroupsHandler lists all active study groups.
func (h *GroupHandler) GetGroupsHandler(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.GetActiveGroups(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to fetch study groups")
		http.Error(w, "Failed to fetch groups", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(groups)
}

// GetGroupHandler returns a single study group by ID.
func (h *GroupHandler) GetGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	group, err := h.Service.GetGroup(r.Context(), groupID)
	if err != nil {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(group)
}

// JoinGroupHandler joins an open group directly or queues a join request
// for a closed group.
func (h *GroupHandler) JoinGroupHandler(w http.ResponseWriter, r *http.Request) {
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
	groupID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	result, err := h.Service.JoinGroup(r.Context(), groupID, userID)
	if err != nil {
		log.WithError(err).Warn("Failed to join study group")
		http.Error(w, err.Error(), groupErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Joined {
		h.Relay.EmitToRoom(result.Group.Room(), "groupMemberJoined", map[string]string{
			"groupId": groupID.Hex(),
			"userId":  claims.UserID,
		})
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Joined group",
			"group":   result.Group,
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Join request sent"})
}

// HandleJoinRequestHandler lets the group admin accept or reject a
// pending join request.
func (h *GroupHandler) HandleJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	groupID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	requesterID, err := primitive.ObjectIDFromHex(vars["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	group, err := h.Service.HandleJoinRequest(r.Context(), groupID, adminID, requesterID, req.Accept)
	if err != nil {
		log.WithError(err).Warn("Failed to handle join request")
		http.Error(w, err.Error(), groupErrorStatus(err))
		return
	}

	if req.Accept {
		h.Relay.EmitToRoom(group.Room(), "groupMemberJoined", map[string]string{
			"groupId": groupID.Hex(),
			"userId":  requesterID.Hex(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(group)
}

// LeaveGroupHandler removes the caller from a group and posts a system
// message into the group chat.
func (h *GroupHandler) LeaveGroupHandler(w http.ResponseWriter, r *http.Request) {
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
	groupID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	systemMsg, err := h.Service.LeaveGroup(r.Context(), groupID, userID)
	if err != nil {
		log.WithError(err).Warn("Failed to leave study group")
		http.Error(w, err.Error(), groupErrorStatus(err))
		return
	}

	room := "group:" + groupID.Hex()
	h.Relay.EmitToRoom(room, "memberLeft", map[string]string{
		"groupId": groupID.Hex(),
		"userId":  claims.UserID,
	})
	if systemMsg != nil {
		h.Relay.EmitToRoom(room, "groupMessage", systemMsg)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Left group"})
}

func groupErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "only the group admin"):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

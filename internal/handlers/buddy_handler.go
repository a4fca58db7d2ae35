package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/services"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

// BuddyHandler handles study buddy discovery endpoints.
type BuddyHandler struct {
	Service *services.BuddyService
}

// NewBuddyHandler creates a new instance of BuddyHandler.
func NewBuddyHandler(service *services.BuddyService) *BuddyHandler {
	return &BuddyHandler{Service: service}
}

// SearchHandler returns candidate study buddies for the caller, ranked
// by the matching service when it is available.
func (h *BuddyHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
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

	candidates, err := h.Service.Search(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to search study buddies")
		http.Error(w, "Failed to search study buddies", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(candidates)
}

// GetUserDetailHandler returns a candidate's profile with a freshly
// computed rating.
func (h *BuddyHandler) GetUserDetailHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.Service.GetUserDetail(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/services"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

// ReviewHandler handles peer review endpoints.
type ReviewHandler struct {
	Service *services.ReviewService
}

// NewReviewHandler creates a new instance of ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: service}
}

// SubmitReviewHandler records a review and refreshes the reviewed
// user's aggregate rating.
func (h *ReviewHandler) SubmitReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	reviewerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		ReviewedUser string  `json:"reviewedUser"`
		Rating       float64 `json:"rating"`
		ReviewText   string  `json:"reviewText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	reviewedID, err := primitive.ObjectIDFromHex(req.ReviewedUser)
	if err != nil {
		http.Error(w, "Invalid reviewed user ID", http.StatusBadRequest)
		return
	}

	review := &models.Review{
		Reviewer:     reviewerID,
		ReviewedUser: reviewedID,
		Rating:       req.Rating,
		ReviewText:   req.ReviewText,
	}
	created, err := h.Service.SubmitReview(r.Context(), review)
	if err != nil {
		log.WithError(err).Warn("Failed to submit review")
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	log.WithFields(log.Fields{
		"reviewer": claims.UserID,
		"reviewed": req.ReviewedUser,
	}).Info("Review submitted")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetUserReviewsHandler lists the reviews received by a user.
func (h *ReviewHandler) GetUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	reviews, err := h.Service.GetReviewsForUser(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch reviews")
		http.Error(w, "Failed to fetch reviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}

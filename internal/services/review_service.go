package services

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/repository"
)

// ReviewService handles peer reviews and the aggregate rating on user profiles.
type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	userRepo   *repository.UserRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo *repository.ReviewRepository, userRepo *repository.UserRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
	}
}

// SubmitReview stores a review and recomputes the reviewed user's average
// rating over all their reviews. The full-scan recompute is intentional:
// incremental averaging drifts under concurrent writes.
func (s *ReviewService) SubmitReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Rating < 0 || review.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 0 and 5")
	}
	if review.Reviewer == review.ReviewedUser {
		return nil, fmt.Errorf("cannot review yourself")
	}
	if _, err := s.userRepo.GetUserByID(ctx, review.ReviewedUser); err != nil {
		return nil, fmt.Errorf("reviewed user not found")
	}

	created, err := s.reviewRepo.CreateReview(ctx, review)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.GetReviewsForUser(ctx, review.ReviewedUser)
	if err != nil {
		return nil, err
	}

	avg := AverageRating(reviews)
	if err := s.userRepo.UpdateRating(ctx, review.ReviewedUser, avg); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID": review.ReviewedUser.Hex(),
		"rating": avg,
	}).Info("Recomputed user rating")

	return created, nil
}

// GetReviewsForUser returns all reviews of a user, newest first.
func (s *ReviewService) GetReviewsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	return s.reviewRepo.GetReviewsForUser(ctx, userID)
}

// AverageRating computes the mean rating rounded to one decimal place.
// Returns 0 for an empty slice.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(sum/float64(len(reviews))*10) / 10
}

package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/repository"
)

// BuddyService finds potential study partners for a user.
type BuddyService struct {
	userRepo   *repository.UserRepository
	reviewRepo *repository.ReviewRepository
	matcher    *MatchClient
}

// NewBuddyService creates a new BuddyService.
func NewBuddyService(userRepo *repository.UserRepository, reviewRepo *repository.ReviewRepository, matcher *MatchClient) *BuddyService {
	return &BuddyService{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		matcher:    matcher,
	}
}

// Candidate is a potential study partner with the current user's friend-request
// status toward them.
type Candidate struct {
	ID                  primitive.ObjectID `json:"id"`
	FullName            string             `json:"fullName"`
	ProfilePic          string             `json:"profilePic,omitempty"`
	Class               string             `json:"class,omitempty"`
	Exam                string             `json:"exam,omitempty"`
	Subjects            []string           `json:"subjects,omitempty"`
	StudyPreferences    string             `json:"studyPreferences,omitempty"`
	Availability        string             `json:"availability,omitempty"`
	Rating              float64            `json:"rating"`
	FriendRequestStatus string             `json:"friendRequestStatus,omitempty"`
}

// Search lists everyone except the current user and their accepted friends,
// ranked by the matching service when it is reachable.
func (s *BuddyService) Search(ctx context.Context, currentUserID primitive.ObjectID) ([]Candidate, error) {
	users, err := s.userRepo.GetAllUsersExcept(ctx, currentUserID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.User, 0, len(users))
	statuses := make(map[primitive.ObjectID]string, len(users))
	for _, user := range users {
		status := ""
		if idx := user.RequestFrom(currentUserID); idx != -1 {
			status = user.FriendRequests[idx].Status
		}
		if status == "accepted" {
			continue // already friends
		}
		statuses[user.ID] = status
		filtered = append(filtered, user)
	}

	ordered := filtered
	if ranked, err := s.matcher.RankCandidates(ctx, currentUserID.Hex(), filtered); err == nil {
		ordered = reorderByIDs(filtered, ranked)
	} else {
		logrus.WithError(err).Warn("Match service unavailable, returning unranked candidates")
	}

	candidates := make([]Candidate, 0, len(ordered))
	for _, user := range ordered {
		candidates = append(candidates, Candidate{
			ID:                  user.ID,
			FullName:            user.FullName,
			ProfilePic:          user.ProfilePic,
			Class:               user.Class,
			Exam:                user.Exam,
			Subjects:            user.Subjects,
			StudyPreferences:    user.StudyPreferences,
			Availability:        user.Availability,
			Rating:              user.Rating,
			FriendRequestStatus: statuses[user.ID],
		})
	}
	return candidates, nil
}

// GetUserDetail returns a user's profile with the rating recomputed from their
// reviews rather than trusting the stored aggregate.
func (s *BuddyService) GetUserDetail(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.GetReviewsForUser(ctx, userID)
	if err == nil {
		user.Rating = AverageRating(reviews)
	} else {
		logrus.WithError(err).Warn("Failed to recompute rating from reviews")
	}
	return user, nil
}

// reorderByIDs sorts users into the order given by rankedIDs; users the ranker
// did not mention keep their original relative order at the end.
func reorderByIDs(users []models.User, rankedIDs []string) []models.User {
	position := make(map[string]int, len(rankedIDs))
	for i, id := range rankedIDs {
		position[id] = i
	}

	ranked := make([]models.User, 0, len(users))
	unranked := make([]models.User, 0)
	for _, user := range users {
		if _, ok := position[user.ID.Hex()]; ok {
			ranked = append(ranked, user)
		} else {
			unranked = append(unranked, user)
		}
	}

	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			if position[ranked[j].ID.Hex()] < position[ranked[i].ID.Hex()] {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			}
		}
	}

	return append(ranked, unranked...)
}

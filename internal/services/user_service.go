package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/repository"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user accounts and profiles.
type UserService struct {
	repo *repository.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	logrus.Info("Registering new user")

	if user.Email == "" || user.FullName == "" || user.HashedPassword == "" {
		return nil, fmt.Errorf("missing required user fields")
	}

	if !emailRegex.MatchString(user.Email) {
		logrus.WithField("email", user.Email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	if len(user.HashedPassword) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	// Check if the email is already registered
	existingUser, _ := s.repo.GetUserByEmail(ctx, user.Email)
	if existingUser != nil {
		logrus.WithField("email", user.Email).Warn("Email already in use")
		return nil, fmt.Errorf("email already in use")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(user.HashedPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user.HashedPassword = string(hashedPwd)
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if user.Role == "" {
		user.Role = "user"
	}
	if user.Exam == "" {
		user.Exam = "Other"
	}
	if user.StudyPreferences == "" {
		user.StudyPreferences = "Either"
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	logrus.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	return createdUser, nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logrus.WithField("email", email).Warn("User not found")
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their hex ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	return s.repo.GetUserByID(ctx, objID)
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FullName         string   `json:"fullName"`
	ProfilePic       string   `json:"profilePic"`
	Class            string   `json:"class"`
	Exam             string   `json:"exam"`
	Subjects         []string `json:"subjects"`
	StudyPreferences string   `json:"studyPreferences"`
	Availability     string   `json:"availability"`
}

// UpdateProfile applies a partial profile update and recomputes profile completeness.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd *ProfileUpdate) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	update := bson.M{}
	if upd.FullName != "" {
		update["full_name"] = upd.FullName
	}
	if upd.ProfilePic != "" {
		update["profile_pic"] = upd.ProfilePic
	}
	if upd.Class != "" {
		update["class"] = upd.Class
	}
	if upd.Exam != "" {
		update["exam"] = upd.Exam
	}
	if upd.Subjects != nil {
		update["subjects"] = upd.Subjects
	}
	if upd.StudyPreferences != "" {
		update["study_preferences"] = upd.StudyPreferences
	}
	if upd.Availability != "" {
		update["availability"] = upd.Availability
	}

	if err := s.repo.UpdateUser(ctx, objID, update); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	complete := user.Class != "" && user.Exam != "" && len(user.Subjects) > 0 && user.Availability != ""
	if complete != user.IsProfileComplete {
		if err := s.repo.UpdateUser(ctx, objID, bson.M{"is_profile_complete": complete}); err != nil {
			return nil, err
		}
		user.IsProfileComplete = complete
	}

	return user, nil
}

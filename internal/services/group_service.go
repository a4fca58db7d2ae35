package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

// GroupStore is the group persistence surface the service needs.
// Satisfied by *repository.GroupRepository.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.StudyGroup) (*models.StudyGroup, error)
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.StudyGroup, error)
	GetActiveGroups(ctx context.Context) ([]models.StudyGroup, error)
	AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	AddPendingRequest(ctx context.Context, groupID primitive.ObjectID, req models.JoinRequest) error
	RemovePendingRequest(ctx context.Context, groupID, userID primitive.ObjectID) error
	SetPendingRequestStatus(ctx context.Context, groupID, userID primitive.ObjectID, status string) error
}

// GroupMessageStore records group chat messages.
// Satisfied by *repository.GroupMessageRepository.
type GroupMessageStore interface {
	CreateMessage(ctx context.Context, msg *models.GroupMessage) (*models.GroupMessage, error)
}

// GroupService handles business logic for study groups and their membership.
type GroupService struct {
	groupRepo GroupStore
	msgRepo   GroupMessageStore
	userRepo  UserStore
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupRepo GroupStore, msgRepo GroupMessageStore, userRepo UserStore) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		msgRepo:   msgRepo,
		userRepo:  userRepo,
	}
}

// CreateGroup creates a study group with the creator as admin and first member.
func (s *GroupService) CreateGroup(ctx context.Context, group *models.StudyGroup, creatorID primitive.ObjectID) (*models.StudyGroup, error) {
	if group.Name == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if group.Exam == "" {
		return nil, fmt.Errorf("group exam is required")
	}
	if group.MaxMembers <= 0 {
		group.MaxMembers = 10
	}

	group.Admin = creatorID
	group.Members = []primitive.ObjectID{creatorID}
	group.PendingRequests = nil
	group.IsActive = true

	return s.groupRepo.CreateGroup(ctx, group)
}

// GetActiveGroups lists all active groups.
func (s *GroupService) GetActiveGroups(ctx context.Context) ([]models.StudyGroup, error) {
	return s.groupRepo.GetActiveGroups(ctx)
}

// GetGroup fetches a single group.
func (s *GroupService) GetGroup(ctx context.Context, groupID primitive.ObjectID) (*models.StudyGroup, error) {
	return s.groupRepo.GetGroupByID(ctx, groupID)
}

// JoinResult reports what happened on a join attempt: either the user became a
// member immediately (open group) or a join request was queued (closed group).
type JoinResult struct {
	Joined bool
	Group  *models.StudyGroup
}

// JoinGroup adds the user to an open group or queues a request on a closed one.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID primitive.ObjectID) (*JoinResult, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found")
	}

	if group.IsMember(userID) {
		return nil, fmt.Errorf("already a member")
	}
	if group.IsFull() {
		return nil, fmt.Errorf("group is full")
	}

	if group.IsOpen {
		if err := s.groupRepo.AddMember(ctx, groupID, userID); err != nil {
			return nil, err
		}
		group.Members = append(group.Members, userID)
		return &JoinResult{Joined: true, Group: group}, nil
	}

	// Closed group: queue a request unless one is already pending.
	if group.PendingRequestFrom(userID) == -1 {
		err := s.groupRepo.AddPendingRequest(ctx, groupID, models.JoinRequest{
			UserID:      userID,
			Status:      "pending",
			RequestedAt: time.Now(),
		})
		if err != nil {
			return nil, err
		}
	}
	return &JoinResult{Joined: false, Group: group}, nil
}

// HandleJoinRequest lets the group admin accept or reject a pending request.
func (s *GroupService) HandleJoinRequest(ctx context.Context, groupID, adminID, userID primitive.ObjectID, accept bool) (*models.StudyGroup, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found")
	}
	if !group.IsAdmin(adminID) {
		return nil, fmt.Errorf("only the group admin can handle join requests")
	}
	if group.PendingRequestFrom(userID) == -1 {
		return nil, fmt.Errorf("join request not found")
	}

	if accept {
		if group.IsFull() {
			return nil, fmt.Errorf("group is full")
		}
		if err := s.groupRepo.AddMember(ctx, groupID, userID); err != nil {
			return nil, err
		}
		if err := s.groupRepo.RemovePendingRequest(ctx, groupID, userID); err != nil {
			return nil, err
		}
	} else {
		if err := s.groupRepo.SetPendingRequestStatus(ctx, groupID, userID, "rejected"); err != nil {
			return nil, err
		}
	}

	return s.groupRepo.GetGroupByID(ctx, groupID)
}

// LeaveGroup removes a non-admin member and records a system message about it.
// The system message is returned so the caller can broadcast it to the room.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupMessage, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found")
	}
	if group.IsAdmin(userID) {
		return nil, fmt.Errorf("admin cannot leave the group")
	}
	if !group.IsMember(userID) {
		return nil, fmt.Errorf("not a group member")
	}

	if err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sysMsg := &models.GroupMessage{
		GroupID:         groupID,
		SenderID:        userID,
		Text:            fmt.Sprintf("%s left the group", user.FullName),
		IsSystemMessage: true,
	}
	return s.msgRepo.CreateMessage(ctx, sysMsg)
}

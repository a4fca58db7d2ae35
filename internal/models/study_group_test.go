package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGroupIsFull(t *testing.T) {
	admin := primitive.NewObjectID()
	group := StudyGroup{
		Admin:      admin,
		Members:    []primitive.ObjectID{admin},
		MaxMembers: 2,
	}

	assert.False(t, group.IsFull())

	group.Members = append(group.Members, primitive.NewObjectID())
	assert.True(t, group.IsFull())
}

func TestGroupMembership(t *testing.T) {
	admin := primitive.NewObjectID()
	member := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	group := StudyGroup{
		Admin:   admin,
		Members: []primitive.ObjectID{admin, member},
	}

	assert.True(t, group.IsAdmin(admin))
	assert.False(t, group.IsAdmin(member))
	assert.True(t, group.IsMember(member))
	assert.False(t, group.IsMember(outsider))
}

func TestGroupRoomName(t *testing.T) {
	group := StudyGroup{ID: primitive.NewObjectID()}
	assert.Equal(t, "group:"+group.ID.Hex(), group.Room())
}

func TestGroupPendingRequestFrom(t *testing.T) {
	user := primitive.NewObjectID()
	group := StudyGroup{
		PendingRequests: []JoinRequest{{UserID: user, Status: "pending"}},
	}

	assert.Equal(t, 0, group.PendingRequestFrom(user))
	assert.Equal(t, -1, group.PendingRequestFrom(primitive.NewObjectID()))
}

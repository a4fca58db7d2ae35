package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
)

func TestReorderByIDs(t *testing.T) {
	a := models.User{ID: primitive.NewObjectID(), FullName: "a"}
	b := models.User{ID: primitive.NewObjectID(), FullName: "b"}
	c := models.User{ID: primitive.NewObjectID(), FullName: "c"}

	got := reorderByIDs([]models.User{a, b, c}, []string{c.ID.Hex(), a.ID.Hex()})

	// Ranked users first in ranker order, unmentioned ones after.
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].FullName, got[1].FullName, got[2].FullName})
}

func TestReorderByIDsEmptyRanking(t *testing.T) {
	a := models.User{ID: primitive.NewObjectID(), FullName: "a"}
	b := models.User{ID: primitive.NewObjectID(), FullName: "b"}

	got := reorderByIDs([]models.User{a, b}, nil)

	assert.Equal(t, "a", got[0].FullName)
	assert.Equal(t, "b", got[1].FullName)
}

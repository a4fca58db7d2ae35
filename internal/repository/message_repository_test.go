package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/studybuddy-app/backend/internal/models"
)

func TestSendMessageAssignsID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert ok", func(mt *mtest.T) {
		repo := &MessageRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		msg, err := repo.SendMessage(context.Background(), &models.Message{
			SenderID:   primitive.NewObjectID(),
			ReceiverID: primitive.NewObjectID(),
			Text:       "hey, free to study tonight?",
		})

		require.NoError(mt, err)
		assert.False(mt, msg.ID.IsZero())
		assert.False(mt, msg.CreatedAt.IsZero())
	})
}

func TestSendMessageWrapsInsertError(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert fails", func(mt *mtest.T) {
		repo := &MessageRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "write failed",
		}))

		_, err := repo.SendMessage(context.Background(), &models.Message{
			SenderID:   primitive.NewObjectID(),
			ReceiverID: primitive.NewObjectID(),
			Text:       "hey",
		})

		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to insert message")
	})
}

func TestGetChatReturnsBothDirections(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("chat history", func(mt *mtest.T) {
		repo := &MessageRepository{collection: mt.Coll}
		userID := primitive.NewObjectID()
		friendID := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()

		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "sender_id", Value: userID},
			{Key: "receiver_id", Value: friendID},
			{Key: "text", Value: "hello"},
			{Key: "created_at", Value: time.Now().Add(-time.Minute)},
		})
		second := mtest.CreateCursorResponse(0, ns, mtest.NextBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "sender_id", Value: friendID},
			{Key: "receiver_id", Value: userID},
			{Key: "text", Value: "hi back"},
			{Key: "created_at", Value: time.Now()},
		})
		mt.AddMockResponses(first, second)

		messages, err := repo.GetChat(context.Background(), userID, friendID)

		require.NoError(mt, err)
		require.Len(mt, messages, 2)
		assert.Equal(mt, "hello", messages[0].Text)
		assert.Equal(mt, "hi back", messages[1].Text)
	})
}

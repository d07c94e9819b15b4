// AngelaMos | 2026
// mongo_repository_test.go

package claim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/carterperez-dev/perkhub/internal/core"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "perkhub.claims"

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c := &Claim{
			ID:        repo.NewID(),
			UserID:    primitive.NewObjectID().Hex(),
			DealID:    primitive.NewObjectID().Hex(),
			Status:    StatusPending,
			ClaimedAt: time.Now(),
		}
		require.NoError(t, repo.Create(context.Background(), c))
		assert.False(t, c.CreatedAt.IsZero())
	})

	mt.Run("create duplicate pair", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: perkhub.claims index: user_deal_unique",
		}))

		err := repo.Create(context.Background(), &Claim{
			ID:     repo.NewID(),
			UserID: primitive.NewObjectID().Hex(),
			DealID: primitive.NewObjectID().Hex(),
			Status: StatusPending,
		})
		assert.ErrorIs(t, err, core.ErrDuplicateKey)
	})

	mt.Run("create rejects malformed ids", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)

		err := repo.Create(context.Background(), &Claim{ID: repo.NewID(), UserID: "x", DealID: "y"})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	mt.Run("find by user and deal", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		id, uid, did := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		claimedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: uid},
			{Key: "dealId", Value: did},
			{Key: "status", Value: "pending"},
			{Key: "claimedAt", Value: claimedAt},
		}))

		c, err := repo.FindByUserAndDeal(context.Background(), uid.Hex(), did.Hex())
		require.NoError(t, err)
		assert.Equal(t, id.Hex(), c.ID)
		assert.Equal(t, StatusPending, c.Status)
		assert.True(t, claimedAt.Equal(c.ClaimedAt))
	})

	mt.Run("list by user", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		uid := primitive.NewObjectID()
		doc := func(status string) bson.D {
			return bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "userId", Value: uid},
				{Key: "dealId", Value: primitive.NewObjectID()},
				{Key: "status", Value: status},
			}
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, doc("approved"), doc("pending")),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		claims, err := repo.ListByUser(context.Background(), uid.Hex())
		require.NoError(t, err)
		require.Len(t, claims, 2)
		assert.Equal(t, Stats{Total: 2, Pending: 1, Approved: 1}, Tally(claims))
	})

	mt.Run("update status lost race", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), StatusPending, StatusApproved)
		assert.ErrorIs(t, err, core.ErrConflict)
	})
}

// AngelaMos | 2026
// store_test.go

package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/carterperez-dev/perkhub/internal/config"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite"}}

	_, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("all collections indexed", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("index failure surfaces", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    85,
				Message: "index options conflict",
				Name:    "IndexOptionsConflict",
			}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		assert.Error(mt, EnsureIndexes(context.Background(), mt.DB))
	})
}

func TestDBStatsOnlyForPostgres(t *testing.T) {
	s := &Store{Driver: config.DriverMongo}

	_, ok := s.DBStats()
	assert.False(t, ok)
}

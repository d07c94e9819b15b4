// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/middleware"
)

type fakeCounter struct {
	stats claim.Stats
	err   error
}

func (f fakeCounter) CountByStatus(context.Context) (claim.Stats, error) {
	return f.stats, f.err
}

func passthrough(next http.Handler) http.Handler { return next }

func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
		UserID: "admin-1",
		Role:   "admin",
	}))
}

func newRouter(cfg HandlerConfig) http.Handler {
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r, passthrough, middleware.RequireAdmin)
	return r
}

func TestSystemStatsPostgres(t *testing.T) {
	h := newRouter(HandlerConfig{
		Driver: "postgres",
		DBStats: func() (sql.DBStats, bool) {
			return sql.DBStats{MaxOpenConnections: 25, InUse: 3}, true
		},
		StoragePing: func(context.Context) error { return nil },
		RedisStats:  func() *redis.PoolStats { return &redis.PoolStats{TotalConns: 4} },
		RedisPing:   func(context.Context) error { return errors.New("down") },
		Claims:      fakeCounter{stats: claim.Stats{Total: 3, Pending: 2, Approved: 1}},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/admin/stats", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "postgres", resp.Storage.Driver)
	assert.True(t, resp.Storage.Healthy)
	require.NotNil(t, resp.Storage.Pool)
	assert.Equal(t, 25, resp.Storage.Pool.MaxOpenConnections)
	assert.False(t, resp.Redis.Healthy)
	assert.Equal(t, uint32(4), resp.Redis.Stats.TotalConns)
	require.NotNil(t, resp.Claims)
	assert.Equal(t, 2, resp.Claims.Pending)
}

func TestSystemStatsMongoHasNoPool(t *testing.T) {
	h := newRouter(HandlerConfig{
		Driver:  "mongo",
		DBStats: func() (sql.DBStats, bool) { return sql.DBStats{}, false },
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/admin/stats", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "mongo", resp.Storage.Driver)
	assert.Nil(t, resp.Storage.Pool)
	assert.Nil(t, resp.Claims)
}

func TestClaimStatsFailureIsInternal(t *testing.T) {
	h := newRouter(HandlerConfig{Claims: fakeCounter{err: errors.New("boom")}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/admin/stats/claims", nil)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, core.CodeInternal, resp.Error.Code)
}

func TestStatsRequireAdmin(t *testing.T) {
	h := newRouter(HandlerConfig{})

	r := httptest.NewRequest(http.MethodGet, "/admin/stats/runtime", nil)
	r = r.WithContext(middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: "u1"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/core"
)

type ClaimCounter interface {
	CountByStatus(ctx context.Context) (claim.Stats, error)
}

type Handler struct {
	driver      string
	dbStats     func() (sql.DBStats, bool)
	storagePing func(ctx context.Context) error
	redisStats  func() *redis.PoolStats
	redisPing   func(ctx context.Context) error
	claims      ClaimCounter
}

type HandlerConfig struct {
	Driver      string
	DBStats     func() (sql.DBStats, bool)
	StoragePing func(ctx context.Context) error
	RedisStats  func() *redis.PoolStats
	RedisPing   func(ctx context.Context) error
	Claims      ClaimCounter
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		driver:      cfg.Driver,
		dbStats:     cfg.DBStats,
		storagePing: cfg.StoragePing,
		redisStats:  cfg.RedisStats,
		redisPing:   cfg.RedisPing,
		claims:      cfg.Claims,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.GetSystemStats)
		r.Get("/db", h.GetDatabaseStats)
		r.Get("/redis", h.GetRedisStats)
		r.Get("/runtime", h.GetRuntimeStats)
		r.Get("/claims", h.GetClaimStats)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	var (
		storageHealthy = true
		redisHealthy   = true
		claimStats     *claim.Stats
	)

	g, ctx := errgroup.WithContext(r.Context())
	if h.storagePing != nil {
		g.Go(func() error {
			storageHealthy = h.storagePing(ctx) == nil
			return nil
		})
	}
	if h.redisPing != nil {
		g.Go(func() error {
			redisHealthy = h.redisPing(ctx) == nil
			return nil
		})
	}
	if h.claims != nil {
		g.Go(func() error {
			stats, err := h.claims.CountByStatus(ctx)
			if err != nil {
				return err
			}
			claimStats = &stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, SystemStatsResponse{
		Storage: StorageStatus{
			Driver:  h.driver,
			Healthy: storageHealthy,
			Pool:    h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: redisHealthy,
			Stats:   h.getRedisStats(),
		},
		Claims:  claimStats,
		Runtime: readRuntimeStats(),
	})
}

func (h *Handler) GetClaimStats(w http.ResponseWriter, r *http.Request) {
	if h.claims == nil {
		core.OK(w, claim.Stats{})
		return
	}

	stats, err := h.claims.CountByStatus(r.Context())
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats, ok := h.dbStats()
	if !ok {
		return nil
	}
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type SystemStatsResponse struct {
	Storage StorageStatus `json:"storage"`
	Redis   RedisStatus   `json:"redis"`
	Claims  *claim.Stats  `json:"claims,omitempty"`
	Runtime RuntimeStats  `json:"runtime"`
}

// StorageStatus carries pool stats only for the postgres driver.
type StorageStatus struct {
	Driver  string       `json:"driver"`
	Healthy bool         `json:"healthy"`
	Pool    *DBPoolStats `json:"pool,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64  `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/perkhub/internal/core"
)

// LimitRecorder counts rejected requests per limiter scope.
type LimitRecorder interface {
	ObserveRateLimited(scope string)
}

type RateLimitConfig struct {
	// Scope separates limiters that share a key function, so the general
	// and the auth limiter never share a bucket.
	Scope      string
	Limit      redis_rate.Limit
	KeyFunc    func(*http.Request) string
	BypassFunc func(*http.Request) bool
	Recorder   LimitRecorder
	Logger     *slog.Logger
}

// RateLimiter keeps its buckets in redis and drops to per-process buckets
// while redis is unreachable, so a redis outage loosens limits to one
// instance's view instead of rejecting traffic.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
	degraded atomic.Bool
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)
		if rl.config.Scope != "" {
			key = rl.config.Scope + ":" + key
		}
		res := rl.allow(r.Context(), key)

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			if rl.config.Recorder != nil {
				rl.config.Recorder.ObserveRateLimited(rl.config.Scope)
			}
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Degraded reports whether the last decision came from the local fallback.
func (rl *RateLimiter) Degraded() bool {
	return rl.degraded.Load()
}

func (rl *RateLimiter) allow(ctx context.Context, key string) *redis_rate.Result {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		if !rl.degraded.Swap(true) {
			rl.config.Logger.WarnContext(ctx, "rate limiter using local buckets",
				"scope", rl.config.Scope,
				"error", err,
			)
		}
		return rl.fallback.allow(key, rl.config.Limit)
	}

	if rl.degraded.Swap(false) {
		rl.config.Logger.InfoContext(ctx, "rate limiter back on redis",
			"scope", rl.config.Scope,
		)
	}
	return res
}

// SkipPaths bypasses limiting for exact request paths such as probes.
func SkipPaths(paths ...string) func(*http.Request) bool {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := skip[r.URL.Path]
		return ok
	}
}

func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		ip := strings.TrimSpace(ips[len(ips)-1])
		return "ratelimit:ip:" + ip
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ratelimit:ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	return "ratelimit:ip:" + ip
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	windowSecs := int(limit.Period.Seconds())
	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, windowSecs))
	h.Set(
		"RateLimit",
		fmt.Sprintf(`%d;t=%d`, res.Remaining, int(res.ResetAfter.Seconds())),
	)
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		core.ErrRateLimited,
		fmt.Sprintf("Too many requests. Retry after %d seconds.", retryAfter),
		http.StatusTooManyRequests,
		core.CodeRateLimited,
	).WithDetails(map[string]int{"retryAfter": retryAfter}))
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

type localLimiter struct {
	limiters sync.Map
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.cleanup()
	return l
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL).Unix()
		l.limiters.Range(func(key, value any) bool {
			entry, ok := value.(*limiterEntry)
			if ok && entry.lastAccess.Load() < cutoff {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	ratePerSec := float64(limit.Rate) / limit.Period.Seconds()

	entryI, loaded := l.limiters.Load(key)
	if !loaded {
		entryI, _ = l.limiters.LoadOrStore(key, &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(ratePerSec), limit.Burst),
		})
	}
	entry := entryI.(*limiterEntry) //nolint:forcetypeassert // only *limiterEntry is stored
	entry.lastAccess.Store(time.Now().Unix())

	allowed := entry.limiter.Allow()
	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(entry.limiter.Tokens()), 0),
		RetryAfter: -1,
		ResetAfter: time.Duration(float64(time.Second) / ratePerSec),
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = res.ResetAfter
	}
	return res
}

// PerWindow builds a limit of rate requests per period. Burst defaults to
// rate so a fresh client can spend the whole window at once.
func PerWindow(rate, burst int, period time.Duration) redis_rate.Limit {
	if burst <= 0 {
		burst = rate
	}
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: period,
	}
}

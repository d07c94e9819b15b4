// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterperez-dev/perkhub/internal/admin"
	"github.com/carterperez-dev/perkhub/internal/app"
	"github.com/carterperez-dev/perkhub/internal/auth"
	"github.com/carterperez-dev/perkhub/internal/config"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/health"
	"github.com/carterperez-dev/perkhub/internal/middleware"
	"github.com/carterperez-dev/perkhub/internal/server"
	"github.com/carterperez-dev/perkhub/internal/store"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"driver", cfg.Database.Driver,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if telemetry.Exporting() {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	var cleanup closers
	defer cleanup.run()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	cleanup.add(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("storage close error", "error", err)
		}
	})

	redis, err := core.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	cleanup.add(func() {
		if err := redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	})

	if err := redis.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, rate limits use local buckets",
			"addr", redis.Addr(),
			"error", err,
		)
	} else {
		logger.Info("redis connected",
			"addr", redis.Addr(),
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	metrics := core.NewMetrics()
	hasher := core.NewPasswordHasher(core.DefaultPasswordParams)
	svcs := app.NewServices(st, jwtManager, hasher, metrics, logger)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "storage", Checker: st},
		health.Dependency{Name: "redis", Checker: redis, Optional: true},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Driver:      st.Driver,
		DBStats:     st.DBStats,
		StoragePing: st.Ping,
		RedisStats:  redis.PoolStats,
		RedisPing:   redis.Ping,
		Claims:      svcs.Claims,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Tracing(cfg.Otel.ServiceName))
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics(metrics))
	}
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Scope: "api",
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			BypassFunc: middleware.SkipPaths(
				"/healthz", "/livez", "/readyz", cfg.Metrics.Path,
			),
			Recorder: metrics,
			Logger:   logger,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Scope: "auth",
		Limit: middleware.PerWindow(
			cfg.RateLimit.AuthRequests,
			0,
			cfg.RateLimit.AuthWindow,
		),
		Recorder: metrics,
		Logger:   logger,
	})

	if cfg.Metrics.Enabled {
		router.Method("GET", cfg.Metrics.Path, metrics.Handler())
	}

	app.Mount(router, app.RouterDeps{
		Services:    svcs,
		Verifier:    jwtManager,
		JWKS:        jwtManager.GetJWKSHandler(),
		Health:      healthHandler,
		Admin:       adminHandler,
		AuthLimiter: authLimiter.Handler,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

// closers runs shutdown steps in reverse registration order, so every
// early return in run releases what was opened before it.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// AngelaMos | 2026
// store.go

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/config"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/deal"
	"github.com/carterperez-dev/perkhub/internal/user"
)

// Store bundles the three repositories for whichever backend
// database.driver selects. Callers never see the driver beyond Driver.
type Store struct {
	Driver string
	Users  user.Repository
	Deals  deal.Repository
	Claims claim.Repository

	ping    func(ctx context.Context) error
	close   func(ctx context.Context) error
	dbStats func() sql.DBStats
}

func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Database, logger)
	case config.DriverMongo:
		return openMongo(ctx, cfg.Mongo, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openPostgres(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*Store, error) {
	db, err := core.NewDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ApplySchema {
		if err := db.ApplySchema(ctx); err != nil {
			_ = db.Close() //nolint:errcheck // cleanup on startup failure
			return nil, err
		}
		logger.Info("database schema applied")
	}

	logger.Info("database connected",
		"driver", config.DriverPostgres,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)

	return &Store{
		Driver:  config.DriverPostgres,
		Users:   user.NewRepository(db.DB),
		Deals:   deal.NewRepository(db.DB),
		Claims:  claim.NewRepository(db.DB),
		ping:    db.Ping,
		close:   func(context.Context) error { return db.Close() },
		dbStats: db.Stats,
	}, nil
}

func openMongo(
	ctx context.Context,
	cfg config.MongoConfig,
	logger *slog.Logger,
) (*Store, error) {
	m, err := core.NewMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := EnsureIndexes(ctx, m.DB); err != nil {
		_ = m.Close(context.Background()) //nolint:errcheck // cleanup on startup failure
		return nil, err
	}

	logger.Info("database connected",
		"driver", config.DriverMongo,
		"database", cfg.Database,
		"max_pool_size", cfg.MaxPoolSize,
	)

	return &Store{
		Driver: config.DriverMongo,
		Users:  user.NewMongoRepository(m.DB),
		Deals:  deal.NewMongoRepository(m.DB),
		Claims: claim.NewMongoRepository(m.DB),
		ping:   m.Ping,
		close:  m.Close,
	}, nil
}

// EnsureIndexes creates the unique indexes the document backend depends
// on, including the one-claim-per-user-and-deal constraint.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return user.EnsureUserIndexes(gctx, db) })
	g.Go(func() error { return deal.EnsureDealIndexes(gctx, db) })
	g.Go(func() error { return claim.EnsureClaimIndexes(gctx, db) })
	return g.Wait()
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// DBStats reports connection pool stats. Only the postgres backend has a
// database/sql pool, so ok is false for mongo.
func (s *Store) DBStats() (stats sql.DBStats, ok bool) {
	if s.dbStats == nil {
		return sql.DBStats{}, false
	}
	return s.dbStats(), true
}

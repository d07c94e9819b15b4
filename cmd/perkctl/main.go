// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/perkhub/internal/app"
	"github.com/carterperez-dev/perkhub/internal/config"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/store"
)

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perkctl",
		Short: "Operator tooling for the perkhub API",
		Long: `perkctl runs the out-of-band tasks the API does not expose publicly:
schema migration, demo data seeding, signing key generation, member
verification and claim review.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(seedCmd())
	cmd.AddCommand(keygenCmd())
	cmd.AddCommand(verifyUserCmd())
	cmd.AddCommand(claimStatusCmd())
	cmd.AddCommand(statsCmd())

	return cmd
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// env is what every storage-backed command needs.
type env struct {
	cfg      *config.Config
	store    *store.Store
	services *app.Services
	hasher   *core.PasswordHasher
	logger   *slog.Logger
}

func openEnv(ctx context.Context, applySchema bool) (*env, error) {
	logger := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if applySchema {
		cfg.Database.ApplySchema = true
	}

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hasher := core.NewPasswordHasher(core.DefaultPasswordParams)

	return &env{
		cfg:      cfg,
		store:    st,
		services: app.NewServices(st, nil, hasher, nil, logger),
		hasher:   hasher,
		logger:   logger,
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(context.Background()); err != nil {
		e.logger.Error("failed to close store", "error", err)
	}
}

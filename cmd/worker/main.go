package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/driftwoodhq/ledgersync/internal/config"
	connStore "github.com/driftwoodhq/ledgersync/internal/connection/store"
	"github.com/driftwoodhq/ledgersync/internal/database"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/provider/paypal"
	"github.com/driftwoodhq/ledgersync/internal/provider/stripe"
	"github.com/driftwoodhq/ledgersync/internal/provider/wise"
	"github.com/driftwoodhq/ledgersync/internal/sync"
	syncStore "github.com/driftwoodhq/ledgersync/internal/sync/store"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
	txStore "github.com/driftwoodhq/ledgersync/internal/transaction/store"
)

// Headless variant of the scheduler for deployments that split the HTTP
// surface from the sync workers. Any number of workers can run concurrently;
// the queue's atomic claim keeps their work disjoint.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	registry := provider.NewRegistry()
	registry.Register(provider.Stripe, stripe.New())
	registry.Register(provider.PayPal, paypal.New())
	registry.Register(provider.Wise, wise.New())

	connections := connStore.New(db)
	writerService := transaction.NewServiceWithBatchSize(txStore.New(db), cfg.Sync.WriteBatchSize)

	syncService := sync.NewService(syncStore.New(db), connections, writerService, registry, sync.Config{
		ChunkDays:               cfg.Sync.ChunkDays,
		MaxAttempts:             cfg.Sync.MaxAttempts,
		LeaseTimeout:            cfg.Sync.LeaseTimeout,
		FailSessionOnJobFailure: cfg.Sync.FailSessionOnJobFailure,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := sync.NewScheduler(syncService, connections, cfg.Sync.PollInterval, cfg.Sync.IncrementalInterval)

	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
}

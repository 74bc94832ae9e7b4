package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/driftwoodhq/ledgersync/internal/config"
	connStore "github.com/driftwoodhq/ledgersync/internal/connection/store"
	"github.com/driftwoodhq/ledgersync/internal/database"
	ledgersyncHttp "github.com/driftwoodhq/ledgersync/internal/http"
	syncHandler "github.com/driftwoodhq/ledgersync/internal/http/sync"
	txHandler "github.com/driftwoodhq/ledgersync/internal/http/transaction"
	webhookHandler "github.com/driftwoodhq/ledgersync/internal/http/webhook"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/provider/paypal"
	"github.com/driftwoodhq/ledgersync/internal/provider/stripe"
	"github.com/driftwoodhq/ledgersync/internal/provider/wise"
	"github.com/driftwoodhq/ledgersync/internal/sync"
	syncStore "github.com/driftwoodhq/ledgersync/internal/sync/store"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
	txStore "github.com/driftwoodhq/ledgersync/internal/transaction/store"
	"github.com/driftwoodhq/ledgersync/internal/webhook"
	webhookStore "github.com/driftwoodhq/ledgersync/internal/webhook/store"
)

// webhookRetention keeps ledger rows well past any provider retry horizon.
const webhookRetention = 30 * 24 * time.Hour

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

	var (
		writerService = transaction.NewServiceWithBatchSize(txStore.New(db), cfg.Sync.WriteBatchSize)
		syncService   = sync.NewService(syncStore.New(db), connections, writerService, registry, sync.Config{
			ChunkDays:               cfg.Sync.ChunkDays,
			MaxAttempts:             cfg.Sync.MaxAttempts,
			LeaseTimeout:            cfg.Sync.LeaseTimeout,
			FailSessionOnJobFailure: cfg.Sync.FailSessionOnJobFailure,
		})
		webhookService = webhook.NewService(webhookStore.New(db), syncService, connections, webhook.Secrets{
			Stripe: cfg.Stripe.WebhookSecret,
			PayPal: cfg.PayPal.WebhookSecret,
			Wise:   cfg.Wise.WebhookSecret,
		})
	)

	var (
		syncH    = syncHandler.NewHandler(syncService)
		webhookH = webhookHandler.NewHandler(webhookService)
		txH      = txHandler.NewHandler(writerService)
	)

	router := ledgersyncHttp.New(syncH, webhookH, txH, cfg.Server.CORSOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := sync.NewScheduler(syncService, connections, cfg.Sync.PollInterval, cfg.Sync.IncrementalInterval)

	go func() {
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("scheduler stopped", "error", err)
		}
	}()

	go pruneLoop(ctx, webhookService)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.App.Port)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func pruneLoop(ctx context.Context, svc *webhook.Service) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.PruneOldEvents(ctx, webhookRetention); err != nil {
				slog.Error("webhook ledger prune failed", "error", err)
			}
		}
	}
}

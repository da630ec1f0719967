package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mochi/internal/amqp"
	"mochi/internal/config"
	"mochi/internal/log"
	"mochi/internal/notify"
	"mochi/internal/storage"
	"mochi/internal/widget"
	"mochi/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting mochi-worker")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads the shared SQLite ledger directly
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize AMQP client for consuming triggers
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	appearance := widget.Appearance{
		CurrencySymbol: cfg.CurrencySymbol,
		ColorTheme:     cfg.ColorTheme,
		ThemeMode:      cfg.ThemeMode,
	}
	renderer := notify.NewRenderer(cfg.CurrencySymbol, cfg.WeekStart, cfg.RollingWindowDays)
	summaryWorker := worker.NewSummaryWorker(repo, renderer, nil, widget.NewWriter(cfg.WidgetPayloadPath), appearance)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Rebuild the widget payload on startup so a fresh worker never leaves a
	// stale file behind
	if err := summaryWorker.RefreshWidget(ctx); err != nil {
		logger.Error("Startup widget refresh failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, ctx := errgroup.WithContext(ctx)

	// Consume summary triggers and widget refresh requests
	g.Go(func() error {
		err := amqpClient.ConsumeMessages(ctx,
			func(msg *amqp.SummaryMessage) error {
				return summaryWorker.HandleSummaryMessage(ctx, msg)
			},
			func(msg *amqp.WidgetRefreshMessage) error {
				return summaryWorker.HandleWidgetRefresh(ctx, msg)
			},
		)
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	// Periodic widget refresh as a backup in case refresh messages are lost
	g.Go(func() error {
		ticker := time.NewTicker(cfg.WidgetRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := summaryWorker.RefreshWidget(ctx); err != nil {
					logger.Error("Periodic widget refresh failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"widget_path", cfg.WidgetPayloadPath,
		"refresh_interval", cfg.WidgetRefreshInterval)

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mochi/internal/amqp"
	"mochi/internal/backend"
	"mochi/internal/config"
	apphttp "mochi/internal/http"
	"mochi/internal/log"
	"mochi/internal/services"
	"mochi/internal/undo"
	"mochi/internal/widget"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting mochi server")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Select the data backend
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// Initialize AMQP client for publishing triggers (optional)
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without background triggers", "error", err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized - summaries and widget refreshes will run via mochi-worker")
		}
	} else {
		logger.Info("AMQP disabled - summaries and widget refreshes will not be triggered")
	}

	// Undo windows expire on the manager's sweeper
	undoMgr := undo.NewManager()
	undoMgr.StartSweeper()

	svc := services.NewLedgerService(result.Backend, undoMgr, amqpClient, services.GracePeriods{
		SingleDelete: cfg.UndoSingleDelete,
		BulkDelete:   cfg.UndoBulkDelete,
		UndoLastAdd:  cfg.UndoLastAdd,
	})
	defer svc.Close()

	// SQLite backends expose a ping for the readiness probe
	var pinger apphttp.Pinger
	if p, ok := result.Backend.(apphttp.Pinger); ok {
		pinger = p
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:       ":" + cfg.Port,
		Service:    svc,
		WeekStart:  cfg.WeekStart,
		WindowDays: cfg.RollingWindowDays,
		Appearance: widget.Appearance{
			CurrencySymbol: cfg.CurrencySymbol,
			ColorTheme:     cfg.ColorTheme,
			ThemeMode:      cfg.ThemeMode,
		},
		Pinger: pinger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting mochi server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database"
	"github.com/hugh/hr-manager/internal/mail"
	"github.com/hugh/hr-manager/internal/tasks"
	"github.com/hugh/hr-manager/pkg/config"
	"github.com/hugh/hr-manager/pkg/crypto"
	"github.com/hugh/hr-manager/pkg/queue"
	"github.com/hugh/hr-manager/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env, "worker")
	slog.SetDefault(logger)

	logger.Info("starting HR-Management worker")

	if cfg.Encryption.Key == "" {
		logger.Warn("ENCRYPTION_KEY not set, queued reset mail cannot be opened")
	}
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10, logger)

	// Create task handler
	handler := tasks.NewHandler(
		auth.NewResetTokenStore(db),
		mail.NewSMTPSender(&cfg.Mail, cfg.Reset.TTL(), logger),
		encryptor,
		logger,
	)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Periodic sweep of expired reset tokens
	scheduler := queue.NewScheduler(&cfg.Redis)
	entryID, err := scheduler.Register(cfg.Reset.SweepCron, tasks.NewResetSweepTask(), asynq.Queue(queue.QueueLow))
	if err != nil {
		logger.Error("failed to register reset sweep", "error", err)
		os.Exit(1)
	}
	if next, err := util.NextCronTime(cfg.Reset.SweepCron, time.Now().UTC()); err == nil {
		logger.Info("reset sweep scheduled", "entry_id", entryID, "cron", cfg.Reset.SweepCron, "next_run", next)
	}

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Start the server
	if err := srv.Start(mux); err != nil {
		logger.Error("worker error", "error", err)
		scheduler.Shutdown()
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()

	if err := database.Close(db); err != nil {
		logger.Error("closing database", "error", err)
	}

	logger.Info("worker stopped")
}

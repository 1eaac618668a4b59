package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/hr-manager/internal/api"
	"github.com/hugh/hr-manager/internal/api/handlers"
	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database"
	"github.com/hugh/hr-manager/internal/mail"
	"github.com/hugh/hr-manager/internal/partners"
	"github.com/hugh/hr-manager/internal/users"
	"github.com/hugh/hr-manager/pkg/config"
	"github.com/hugh/hr-manager/pkg/crypto"
	"github.com/hugh/hr-manager/pkg/queue"
	"github.com/hugh/hr-manager/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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
	logger := util.NewLogger(cfg.Server.Env, "api")
	slog.SetDefault(logger)

	logger.Info("starting HR-Management server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	// Reset links go through the worker when Redis and a shared key are
	// available; otherwise they are sent inline.
	var mailer mail.Sender
	var asynqClient *asynq.Client
	if redisClient != nil && cfg.Encryption.Key != "" {
		encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
		if err != nil {
			logger.Error("failed to create encryptor", "error", err)
			os.Exit(1)
		}
		asynqClient = queue.NewClient(&cfg.Redis)
		mailer = mail.NewQueueSender(asynqClient, encryptor)
		logger.Info("password reset mail queued for worker delivery")
	} else {
		if cfg.Encryption.Key == "" {
			logger.Warn("ENCRYPTION_KEY not set, sending reset mail inline")
		}
		mailer = mail.NewSMTPSender(&cfg.Mail, cfg.Reset.TTL(), logger)
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, mailer, logger, auth.ServiceConfig{
		FrontendURL: cfg.App.FrontendURL,
		ResetTTL:    cfg.Reset.TTL(),
	})

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		AuthService: authService,
		Users:       users.NewService(db, authService, logger),
		Partners:    partners.NewService(db, logger),
		Cookie: handlers.CookieConfig{
			Name:   cfg.Cookie.Name,
			Domain: cfg.Cookie.Domain,
			Secure: cfg.Cookie.Secure,
		},
		AllowedOrigins: cfg.App.AllowedOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
		CSRFEnabled:    cfg.App.CSRFEnabled,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}

	if redisClient != nil {
		redisClient.Close()
	}

	if err := database.Close(db); err != nil {
		logger.Error("closing database", "error", err)
	}

	logger.Info("server stopped")
}

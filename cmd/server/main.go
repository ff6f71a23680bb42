package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/castqueue/castqueue/internal/config"
	"github.com/castqueue/castqueue/internal/database"
	"github.com/castqueue/castqueue/internal/handlers"
	"github.com/castqueue/castqueue/internal/neynar"
	"github.com/castqueue/castqueue/internal/repositories"
	"github.com/castqueue/castqueue/internal/services"
	"github.com/castqueue/castqueue/migrations"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer postgresPool.Close()

	if err := database.Migrate(ctx, postgresPool, migrations.FS); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it notification details live in memory.
	var notificationStore repositories.NotificationStore
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to create redis client", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		notificationStore = repositories.NewRedisNotificationStore(redisClient)
	} else {
		logger.Info("no REDIS_URL configured, using in-memory notification store")
		notificationStore = repositories.NewMemoryNotificationStore()
	}

	ethClient, err := ethclient.DialContext(ctx, cfg.EthRPCEndpoint)
	if err != nil {
		logger.Error("failed to connect eth rpc", "error", err)
		os.Exit(1)
	}
	defer ethClient.Close()

	// Repositories
	userRepo := repositories.NewPostgresUserRepository(postgresPool)
	castRepo := repositories.NewPostgresCastRepository(postgresPool)
	paymentRepo := repositories.NewPostgresPaymentRepository(postgresPool)

	// Services
	neynarClient := neynar.NewClient(cfg.NeynarBaseURL, cfg.NeynarAPIKey)
	signerService := services.NewSignerService(neynarClient, userRepo, services.SignerServiceConfig{
		SeedPhrase:     cfg.SeedPhrase,
		DeveloperFid:   cfg.DeveloperFid,
		SponsorSigner:  cfg.SponsorSigner,
		SignerDeadline: cfg.SignerDeadline,
	}, logger)
	sessionService := services.NewSessionService(neynarClient, cfg.SessionSecret, cfg.SessionExpiry)
	castService := services.NewCastService(castRepo, userRepo)
	dispatchService := services.NewDispatchService(castRepo, userRepo, neynarClient, cfg.DispatchBatchSize, cfg.DispatchWorkers, logger)
	paymentService := services.NewPaymentService(paymentRepo, userRepo, ethClient, logger)

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:       handlers.NewAuthHandler(signerService, sessionService, logger),
		Casts:      handlers.NewCastHandler(castService, logger),
		Cron:       handlers.NewCronHandler(dispatchService, logger),
		Users:      handlers.NewUserHandler(userRepo, logger),
		Payments:   handlers.NewPaymentHandler(paymentService, logger),
		Webhook:    handlers.NewWebhookHandler(notificationStore, logger),
		Sessions:   sessionService,
		CronSecret: cfg.CronSecret,
		Logger:     logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	// Optional in-process dispatch ticker for deployments without an
	// external cron.
	if cfg.DispatchInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.DispatchInterval)
			defer ticker.Stop()
			for {
				select {
				case <-runCtx.Done():
					return
				case <-ticker.C:
					if _, err := dispatchService.Run(runCtx); err != nil {
						logger.Error("scheduled dispatch run failed", "error", err)
					}
				}
			}
		}()
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/otalvarodev/liga-live/config"
	"github.com/otalvarodev/liga-live/db"
	"github.com/otalvarodev/liga-live/handlers"
	"github.com/otalvarodev/liga-live/realtime"
	"github.com/otalvarodev/liga-live/repositories"
	api "github.com/otalvarodev/liga-live/routes"
	"github.com/otalvarodev/liga-live/services"
	"github.com/otalvarodev/liga-live/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err := db.RunMigrations(dbConn, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	quota := realtime.NewOriginQuota(cfg.QuotaLimit, cfg.QuotaWindow)
	hub := realtime.NewHub(quota, logger)
	logger.Info("realtime hub initialized")

	txRunner := repositories.NewSQLTxRunner(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	eventRepo := repositories.NewPostgresMatchEventRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn, txRunner)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	logger.Info("repositories initialized")

	var archiver *services.LedgerArchiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = services.NewLedgerArchiver(uploader, eventRepo, logger)
		logger.Info("ledger archiver enabled")
	} else {
		logger.Info("ledger archiver disabled: R2 configuration incomplete")
	}

	matchService := services.NewMatchService(
		txRunner, matchRepo, eventRepo, bracketRepo, rosterRepo, standingRepo,
		hub, archiver, logger,
	)
	scheduleService := services.NewScheduleService(
		txRunner, matchRepo, bracketRepo, standingRepo, categoryRepo,
		cfg.FixtureInterval, logger,
	)
	logger.Info("services initialized")

	matchHandler := handlers.NewMatchHandler(matchService, logger)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.JWTSecretKey, matchHandler, scheduleHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}

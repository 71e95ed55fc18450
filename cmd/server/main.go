package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/config"
	"github.com/kachele/neuralsync-backend/internal/database"
	"github.com/kachele/neuralsync-backend/internal/handler"
	"github.com/kachele/neuralsync-backend/internal/logger"
	"github.com/kachele/neuralsync-backend/internal/router"
	"github.com/kachele/neuralsync-backend/internal/service"
	"github.com/kachele/neuralsync-backend/internal/stream"
	"github.com/kachele/neuralsync-backend/internal/tutor"
	"github.com/kachele/neuralsync-backend/internal/validator"
	"github.com/kachele/neuralsync-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting NeuralSync Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Initialize Event Feed ─────────────────────────────────────────
	feed := stream.NewFeed(log)
	defer feed.Close()

	// ─── Initialize Tutor Client ───────────────────────────────────────
	tutorClient := tutor.NewClient(cfg, log)

	// ─── Initialize Services ──────────────────────────────────────────
	workspaceService := service.NewWorkspaceService(tutorClient, feed, log)
	uploadService := service.NewUploadService(workspaceService, tutorClient, feed, cfg, log)
	dialogueService := service.NewDialogueService(workspaceService, tutorClient, feed, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Workspace: handler.NewWorkspaceHandler(workspaceService),
		Upload:    handler.NewUploadHandler(uploadService, workspaceService),
		Chat:      handler.NewChatHandler(dialogueService, workspaceService),
		WS:        handler.NewWSHandler(workspaceService, feed, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	syncWorker := worker.NewSyncWorker(workspaceService, dialogueService, cfg, log)
	go syncWorker.Start(workerCtx)

	// Transcript archiving is optional: it only runs when Redis is
	// configured.
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		transcriptWorker := worker.NewTranscriptWorker(feed, rdb, cfg, log)
		go transcriptWorker.Start(workerCtx)
	} else {
		log.Info().Msg("REDIS_URL not set, transcript archiving disabled")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for in-flight messages.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/birdtalk/internal/api"
	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/config"
	"github.com/vytor/birdtalk/internal/db"
	"github.com/vytor/birdtalk/internal/jobs"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/repository/sqlite"
	"github.com/vytor/birdtalk/internal/rotation"
	"github.com/vytor/birdtalk/internal/services"
	"github.com/vytor/birdtalk/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	defer log.Sync()

	log.Info("===========================================")
	log.Info("BirdTalk Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("media_base_url=%s", cfg.MediaBaseURL)
	log.Debug("stats_worker_count=%d", cfg.StatsWorkerCount)
	log.Debug("stats_queue_size=%d", cfg.StatsQueueSize)
	log.Debug("session_ttl=%s", cfg.SessionTTL)
	log.Debug("rate_limit_per_minute=%d", cfg.RateLimitPerMinute)
	log.Debug("daily_pack_size=%d", cfg.DailyPackSize)
	log.Debug("daily_rotation_at=%s", cfg.DailyRotationAt)
	log.Debug("shuffle_packs=%t", cfg.ShufflePacks)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize repositories
	sx := database.Sqlx()
	profileRepo := sqlite.NewProfileRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)
	birdRepo := sqlite.NewBirdRepository(sx)
	packRepo := sqlite.NewPackRepository(sx)

	// Initialize worker pools
	statsPool := worker.NewPool("stats", cfg.StatsWorkerCount, cfg.StatsQueueSize)
	jobQueue := jobs.NewWorkerQueue(statsPool, statsRepo)

	// Initialize services
	today := clock.Local{}
	progressService := services.NewProgressService(statsRepo, jobQueue, today)
	catalogService := services.NewCatalogService(birdRepo, packRepo)
	profileService := services.NewProfileService(profileRepo, progressService)
	dailyPackService := services.NewDailyPackService(birdRepo, packRepo, cfg.DailyPackSize)
	playService := services.NewPlayService(catalogService, progressService, today, services.PlayConfig{
		Shuffle:      cfg.ShufflePacks,
		SessionTTL:   cfg.SessionTTL,
		MediaBaseURL: cfg.MediaBaseURL,
	})

	srv := &api.Server{
		ProfileService:     profileService,
		CatalogService:     catalogService,
		PlayService:        playService,
		ProgressService:    progressService,
		DB:                 database,
		MediaBaseURL:       cfg.MediaBaseURL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Clock:              today,
	}

	ctx, cancel := context.WithCancel(context.Background())
	statsPool.Start(ctx)

	scheduler := rotation.New(dailyPackService, playService, today, cfg.DailyRotationAt, time.Local)
	if err := scheduler.Start(); err != nil {
		log.Error("failed to start scheduler: %v", err)
		os.Exit(1)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping scheduler")
	scheduler.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Pending stats saves are drained before the database closes.
	log.Debug("stopping stats pool")
	statsPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("BirdTalk Server Stopped")
	log.Info("===========================================")
}

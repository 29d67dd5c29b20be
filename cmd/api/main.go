// Package main is the entry point for the feed-ranking-service API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"feed-ranking-service/internal/app/service"
	"feed-ranking-service/internal/config"
	"feed-ranking-service/internal/domain"
	"feed-ranking-service/internal/infra/postgres"
	"feed-ranking-service/internal/infra/postgres/migrations"
	rediscache "feed-ranking-service/internal/infra/redis"
	"feed-ranking-service/internal/infra/reputation"
	"feed-ranking-service/internal/job"
	"feed-ranking-service/internal/logger"
	"feed-ranking-service/internal/transport/httpserver"
	"feed-ranking-service/internal/transport/httpserver/handler"
	"feed-ranking-service/internal/validator"
	"feed-ranking-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting feed-ranking-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := postgres.NewConnection(
		postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	// Run migrations
	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	// Create repository
	repo := postgres.NewRepository(db)

	// Create reputation client (optional, based on config)
	var reputationProvider domain.ReputationProvider
	if cfg.Reputation.Enabled {
		reputationProvider = reputation.NewClient(
			reputation.ClientConfig{
				BaseURL: cfg.Reputation.BaseURL,
				Timeout: cfg.Reputation.Timeout,
				Retry: reputation.RetryConfig{
					MaxAttempts: cfg.Reputation.Retry.MaxAttempts,
					WaitTime:    cfg.Reputation.Retry.WaitTime,
					MaxWaitTime: cfg.Reputation.Retry.MaxWaitTime,
				},
				CB: reputation.CBConfig{
					MaxRequests:  cfg.Reputation.CB.MaxRequests,
					Interval:     cfg.Reputation.CB.Interval,
					Timeout:      cfg.Reputation.CB.Timeout,
					FailureRatio: cfg.Reputation.CB.FailureRatio,
				},
			},
			log.Logger,
		)
		log.Info("reputation lookups enabled", zap.String("base_url", cfg.Reputation.BaseURL))
	} else {
		log.Info("reputation lookups disabled, using default reputation")
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Ping Redis to verify connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
	)

	// Create feed session cache (optional, based on config)
	var cache domain.Cache
	var sessions handler.SessionStore
	if cfg.Cache.Enabled {
		redisCache := rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		cache = redisCache
		sessions = redisCache
		log.Info("feed session cache enabled",
			zap.Duration("session_ttl", cfg.Feed.SessionTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("feed session cache disabled, pagination stability degraded")
	}

	// Boot the scoring engine with the configured preset
	initial, err := domain.Preset(domain.Algorithm(cfg.Scoring.InitialPreset))
	if err != nil {
		log.Fatal("invalid initial scoring preset",
			zap.String("preset", cfg.Scoring.InitialPreset),
			zap.Error(err),
		)
	}

	// Create services
	scoringSvc := service.NewScoringService(initial, log.Logger)
	feedSvc := service.NewFeedService(
		repo,
		reputationProvider,
		scoringSvc,
		cache,
		service.FeedConfig{
			TrendingWindow:   cfg.Feed.TrendingWindow,
			TrendingPoolSize: cfg.Feed.TrendingPoolSize,
			PoolBuffer:       cfg.Feed.PoolBuffer,
			SessionTTL:       cfg.Feed.SessionTTL,
		},
		log.Logger,
	)
	rescoreSvc := service.NewRescoreService(repo, scoringSvc, cfg.Rescore.Window, cfg.Rescore.BatchSize, log.Logger)

	// Create distributed locker
	distLocker := locker.NewRedisLocker(redisClient, log.Logger)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		feedSvc,
		scoringSvc,
		rescoreSvc,
		repo,
		sessions,
		db,
		v,
		log.Logger,
	)

	// Start rescore scheduler with distributed locking
	scheduler := job.NewRescoreScheduler(
		rescoreSvc,
		job.RescoreConfig{
			Interval:  cfg.Rescore.Interval,
			Timeout:   cfg.Rescore.Timeout,
			OnStartup: cfg.Rescore.OnStartup,
		},
		log.Logger,
		distLocker,
	)
	scheduler.Start()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		// Stop scheduler
		scheduler.Stop()

		// Shutdown server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

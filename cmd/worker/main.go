// Package main is the entry point for the achievement evaluation worker.
//
// The worker subscribes to quiz activity events, runs the award flow for
// each one, persists progress, and serves the read-only catalog/progress
// API. Quiz delivery and statistics aggregation live upstream; this process
// only reacts to what they publish.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cidumitru/quiz-achievements/config"
	"github.com/cidumitru/quiz-achievements/internal/application/eventhandler"
	"github.com/cidumitru/quiz-achievements/internal/application/query"
	"github.com/cidumitru/quiz-achievements/internal/application/saga"
	"github.com/cidumitru/quiz-achievements/internal/domain/achievement"
	"github.com/cidumitru/quiz-achievements/internal/domain/shared"
	"github.com/cidumitru/quiz-achievements/internal/infrastructure/messaging"
	"github.com/cidumitru/quiz-achievements/internal/infrastructure/persistence/postgres"
	"github.com/cidumitru/quiz-achievements/internal/infrastructure/persistence/redis"
	"github.com/cidumitru/quiz-achievements/internal/infrastructure/service"
	httpiface "github.com/cidumitru/quiz-achievements/internal/interface/http"
	"github.com/cidumitru/quiz-achievements/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting achievement worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// The event bus logs through slog; keep its output consistent.
	slogLevel := slog.LevelInfo
	if cfg.App.Debug {
		slogLevel = slog.LevelDebug
	}
	busLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))

	// ─────────────────────────────────────────────────────────────────────────
	// Achievement registry (fatal on a malformed catalog)
	// ─────────────────────────────────────────────────────────────────────────
	registry, err := achievement.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to build achievement registry: %w", err)
	}
	log.Info("achievement registry loaded", logger.Int("achievements", len(registry.All())))

	// ─────────────────────────────────────────────────────────────────────────
	// PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	log.Info("running database migrations")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var progressRepo achievement.ProgressRepository = postgres.NewProgressRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// Redis: progress cache, statistics snapshots, distributed event bus
	// ─────────────────────────────────────────────────────────────────────────
	var statsProvider achievement.StatisticsProvider = nullStatsProvider{}
	var eventBus shared.EventBus
	var busCloser func() error
	healthCheckers := []httpiface.HealthChecker{pingChecker{"postgres", dbConn.Ping}}

	if !cfg.Redis.Disabled {
		log.Info("connecting to redis")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cache.Close()

		progressRepo = redis.NewProgressCache(cache, progressRepo)
		statsProvider = redis.NewStatsProvider(cache)
		healthCheckers = append(healthCheckers, pingChecker{"redis", cache.Ping})

		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:      cache.Client(),
			ChannelName: cfg.Engine.EventBusChannel,
			Logger:      busLog,
			LocalBusConfig: messaging.InMemoryEventBusConfig{
				AsyncMode:      true,
				WorkerPoolSize: cfg.Engine.WorkerPoolSize,
				Logger:         busLog,
				EnableMetrics:  true,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		eventBus = redisBus
		busCloser = redisBus.Close
	} else {
		log.Warn("redis disabled: using in-memory event bus, no progress cache")
		memBus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
			AsyncMode:      true,
			WorkerPoolSize: cfg.Engine.WorkerPoolSize,
			Logger:         busLog,
			EnableMetrics:  true,
		})
		eventBus = memBus
		busCloser = memBus.Close
	}
	defer func() {
		log.Info("closing event bus")
		_ = busCloser()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// Award flow saga and event subscription
	// ─────────────────────────────────────────────────────────────────────────
	notifier := service.NewAchievementNotifier(service.NewLoggingSender(log), log)

	awardFlow, err := saga.NewAwardFlowSagaBuilder().
		WithRegistry(registry).
		WithProgressRepo(progressRepo).
		WithStatisticsProvider(statsProvider).
		WithNotifier(notifier).
		WithEventBus(eventBus).
		WithIDGenerator(service.NewIDGenerator()).
		WithLogger(log).
		WithConfig(saga.AwardFlowConfig{
			EnableNotifications:         cfg.Features.IsEnabled(config.FeatureNotifyUnlocked, ""),
			NotifyOnSignificantProgress: cfg.Features.IsEnabled(config.FeatureNotifyProgress, ""),
			MaxUnlocksPerRun:            cfg.Engine.MaxUnlocksPerRun,
			RecentEventLimit:            cfg.Engine.RecentEventLimit,
		}).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build award flow: %w", err)
	}

	quizHandler := eventhandler.NewOnQuizEventHandler(awardFlow, log, eventhandler.QuizEventConfig{
		EvaluationTimeout: cfg.Engine.EvaluationTimeout,
	})
	if err := quizHandler.Register(eventBus); err != nil {
		return fmt.Errorf("failed to subscribe quiz handler: %w", err)
	}
	log.Info("quiz event handler subscribed")

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP interface
	// ─────────────────────────────────────────────────────────────────────────
	var httpServer *httpiface.Server
	var httpErrCh <-chan error

	if cfg.HTTP.Enabled {
		deps := httpiface.Dependencies{
			GetCatalogHandler: query.NewGetCatalogHandler(registry),
			Logger:            log,
			HealthCheckers:    healthCheckers,
		}
		if cfg.Features.IsEnabled(config.FeatureHTTPProgressAPI, "") {
			deps.GetUserProgressHandler = query.NewGetUserProgressHandler(registry, progressRepo)
		}

		httpServer = httpiface.NewServer(httpiface.Config{
			Host:               cfg.HTTP.Host,
			Port:               cfg.HTTP.Port,
			ReadTimeout:        cfg.HTTP.ReadTimeout,
			WriteTimeout:       cfg.HTTP.WriteTimeout,
			IdleTimeout:        httpiface.DefaultConfig().IdleTimeout,
			MaxHeaderBytes:     httpiface.DefaultConfig().MaxHeaderBytes,
			EnableCORS:         true,
			AllowedOrigins:     []string{"*"},
			RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		}, deps)

		httpErrCh = httpServer.StartAsync()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("achievement worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-httpErrCh:
		if err != nil {
			log.Error("http server failed", logger.Err(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown error", logger.Err(err))
		}
	}

	log.Info("shutdown completed")
	return nil
}

// pingChecker adapts a Ping func to the HTTP health surface.
type pingChecker struct {
	name string
	ping func(ctx context.Context) error
}

func (c pingChecker) Name() string                    { return c.name }
func (c pingChecker) Check(ctx context.Context) error { return c.ping(ctx) }

// nullStatsProvider serves zero statistics when Redis is disabled. Rules
// that only read event data (comparative achievements) still work.
type nullStatsProvider struct{}

func (nullStatsProvider) UserStatistics(context.Context, string) (achievement.UserStatistics, error) {
	return achievement.UserStatistics{}, nil
}

func (nullStatsProvider) SessionStatistics(context.Context, string) (*achievement.SessionStatistics, error) {
	return nil, nil
}

func (nullStatsProvider) RecentEvents(context.Context, string, int) ([]achievement.EventData, error) {
	return nil, nil
}

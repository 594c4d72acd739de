package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/trackmyhand/internal/api"
	"github.com/mcoot/trackmyhand/internal/api/stream"
	"github.com/mcoot/trackmyhand/internal/config"
	"github.com/mcoot/trackmyhand/internal/factory"
	"github.com/mcoot/trackmyhand/internal/services/game"
	"github.com/mcoot/trackmyhand/internal/services/tracker"
	redisstorage "github.com/mcoot/trackmyhand/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Build factory config from the environment config
	buyIn, _ := cfg.BuyIn()
	trackerCfg := tracker.DefaultConfig()
	trackerCfg.TickInterval = cfg.TickInterval
	factoryCfg := factory.Config{
		Logger:        logger,
		StorageType:   cfg.Storage,
		SQLitePath:    cfg.SQLitePath,
		GameConfig:    game.Config{DefaultBuyIn: buyIn},
		TrackerConfig: trackerCfg,
	}
	if cfg.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Create API router
	streams := stream.NewManager(app.Metrics, logger)
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Metrics:        app.Metrics,
		Profiles:       app.Profiles,
		Aggregator:     app.Aggregator,
		Predictions:    app.Predictions,
		GameController: app.GameController,
		Trackers:       app.Trackers,
		Streams:        streams,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Event streams never end on their own
		streams.CloseAll()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	// Running clocks write their last checkpoint before storage closes
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Trackers.StopAll(stopCtx); err != nil {
		logger.Error("clocks did not stop cleanly", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

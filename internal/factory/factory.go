package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/trackmyhand/internal/dependencies/clock"
	"github.com/mcoot/trackmyhand/internal/dependencies/random"
	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/services/game"
	"github.com/mcoot/trackmyhand/internal/services/prediction"
	"github.com/mcoot/trackmyhand/internal/services/profile"
	"github.com/mcoot/trackmyhand/internal/services/stats"
	"github.com/mcoot/trackmyhand/internal/services/tracker"
	"github.com/mcoot/trackmyhand/internal/storage"
	"github.com/mcoot/trackmyhand/internal/storage/memory"
	redisstorage "github.com/mcoot/trackmyhand/internal/storage/redis"
	"github.com/mcoot/trackmyhand/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Metrics *metrics.Metrics

	// Services
	Profiles       *profile.Service
	Aggregator     *stats.Aggregator
	Predictions    *prediction.Service
	GameController *game.Controller
	Trackers       *tracker.Manager

	closer io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// GameConfig and TrackerConfig fall back to their defaults when zero
	GameConfig    game.Config
	TrackerConfig tracker.Config
	ProfileConfig profile.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	var closer io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store, closer = redisStore, redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store, closer = sqliteStore, sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	profileCfg := cfg.ProfileConfig
	if profileCfg.MaxPINLength == 0 {
		profileCfg = profile.DefaultConfig()
	}
	trackerCfg := cfg.TrackerConfig
	if trackerCfg.TickInterval == 0 {
		trackerCfg = tracker.DefaultConfig()
	}

	app := newWithDependencies(store, clock.New(), random.New(), prediction.NewLinearPredictor(), metrics.New(), logger, cfg.GameConfig, profileCfg, trackerCfg)
	app.closer = closer
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	predictor prediction.Predictor,
	m *metrics.Metrics,
	logger *slog.Logger,
	gameCfg game.Config,
	profileCfg profile.Config,
	trackerCfg tracker.Config,
) *App {
	profiles := profile.New(store, clk, logger, profileCfg)
	aggregator := stats.NewAggregator(store, clk, m, logger)
	predictions := prediction.New(predictor, logger)
	gameController := game.NewController(store, profiles, aggregator, clk, rnd, m, logger, gameCfg)
	trackers := tracker.NewManager(clk, gameController, m, logger, trackerCfg)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Metrics:        m,
		Profiles:       profiles,
		Aggregator:     aggregator,
		Predictions:    predictions,
		GameController: gameController,
		Trackers:       trackers,
	}
}

// Close releases the storage backend's connections, if it holds any
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

package factory

import (
	"errors"
	"log/slog"

	"github.com/tileduel/tileduel/internal/dependencies/clock"
	"github.com/tileduel/tileduel/internal/dependencies/random"
	"github.com/tileduel/tileduel/internal/services/auth"
	"github.com/tileduel/tileduel/internal/services/leaderboard"
	"github.com/tileduel/tileduel/internal/services/match"
	"github.com/tileduel/tileduel/internal/storage"
	"github.com/tileduel/tileduel/internal/storage/memory"
	redisstorage "github.com/tileduel/tileduel/internal/storage/redis"
	"github.com/tileduel/tileduel/internal/testutil"
	"github.com/tileduel/tileduel/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService        *auth.Service
	LeaderboardService *leaderboard.Service
	Coordinator        *match.Coordinator
	WSHandler          *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// MatchConfig holds configuration for the match engine (optional)
	// If zero value, defaults to match.DefaultConfig()
	MatchConfig match.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = testutil.NopLogger()
	}

	// Create storage based on type
	var store storage.Storage
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
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	matchCfg := cfg.MatchConfig
	if matchCfg.MatchDuration == 0 {
		matchCfg = match.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, matchCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	matchCfg match.Config,
	logger *slog.Logger,
) *App {
	authService := auth.New(store, clk, authCfg)
	leaderboardService := leaderboard.New(store, clk, rnd, logger)
	coordinator := match.NewCoordinator(
		match.NewRegistry(), leaderboardService, clk, rnd, matchCfg, logger)
	wsHandler := ws.NewHandler(authService, coordinator, logger)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		AuthService:        authService,
		LeaderboardService: leaderboardService,
		Coordinator:        coordinator,
		WSHandler:          wsHandler,
	}
}

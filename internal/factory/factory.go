package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Jirawatp058/random-buddy/internal/dependencies/clock"
	"github.com/Jirawatp058/random-buddy/internal/dependencies/random"
	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/credential"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
	"github.com/Jirawatp058/random-buddy/internal/services/matching"
	"github.com/Jirawatp058/random-buddy/internal/storage"
	"github.com/Jirawatp058/random-buddy/internal/storage/dynamo"
	"github.com/Jirawatp058/random-buddy/internal/storage/memory"
	redisstorage "github.com/Jirawatp058/random-buddy/internal/storage/redis"
	"github.com/Jirawatp058/random-buddy/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypeDynamoDB = "dynamodb"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Hasher             *credential.Hasher
	MatchingService    *matching.Service
	ExchangeController *exchange.Controller
	AuthService        *auth.Service
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis", "sqlite" or "dynamodb")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// DynamoConfig holds DynamoDB settings (required if StorageType is "dynamodb")
	DynamoConfig *dynamo.Config
	// AuthConfig holds configuration for the admin auth service
	AuthConfig auth.Config
	// MatchingConfig tunes the matching engine (optional)
	// If zero value, defaults to matching.DefaultConfig()
	MatchingConfig matching.Config
	// ResetPolicy selects what a reset keeps (optional)
	ResetPolicy model.ResetPolicy
	// BcryptCost is the cost for new credentials (optional)
	BcryptCost int
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", slog.String("type", storageType(cfg)))

	matchingCfg := cfg.MatchingConfig
	if matchingCfg.MaxAttempts == 0 {
		matchingCfg = matching.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), dependencyConfig{
		auth:     cfg.AuthConfig,
		matching: matchingCfg,
		exchange: exchange.Config{ResetPolicy: cfg.ResetPolicy},
		cost:     cfg.BcryptCost,
		logger:   logger,
	}), nil
}

func storageType(cfg Config) string {
	if cfg.StorageType == "" {
		return StorageTypeMemory
	}
	return cfg.StorageType
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	switch storageType(cfg) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.New(ctx, cfg.SQLitePath)
	case StorageTypeDynamoDB:
		if cfg.DynamoConfig == nil {
			return nil, errors.New("DynamoConfig required when StorageType is dynamodb")
		}
		return dynamo.New(ctx, *cfg.DynamoConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis', 'sqlite' or 'dynamodb'", cfg.StorageType)
	}
}

type dependencyConfig struct {
	auth     auth.Config
	matching matching.Config
	exchange exchange.Config
	cost     int
	logger   *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg dependencyConfig) *App {
	hasher := credential.New(cfg.cost)
	matcher := matching.New(rnd, cfg.matching, cfg.logger)
	controller := exchange.NewController(store, matcher, hasher, clk, cfg.exchange, cfg.logger)
	authService := auth.New(clk, cfg.auth)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Hasher:             hasher,
		MatchingService:    matcher,
		ExchangeController: controller,
		AuthService:        authService,
	}
}

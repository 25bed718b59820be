package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/conquest-go/internal/api/stream"
	"github.com/mcoot/conquest-go/internal/dependencies/clock"
	"github.com/mcoot/conquest-go/internal/dependencies/random"
	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/auth"
	"github.com/mcoot/conquest-go/internal/services/bot"
	"github.com/mcoot/conquest-go/internal/services/combat"
	"github.com/mcoot/conquest-go/internal/services/economy"
	"github.com/mcoot/conquest-go/internal/services/game"
	"github.com/mcoot/conquest-go/internal/services/mapgen"
	"github.com/mcoot/conquest-go/internal/services/registry"
	"github.com/mcoot/conquest-go/internal/services/turn"
	"github.com/mcoot/conquest-go/internal/storage"
	"github.com/mcoot/conquest-go/internal/storage/memory"
	redisstorage "github.com/mcoot/conquest-go/internal/storage/redis"
	"github.com/mcoot/conquest-go/internal/storage/sqlite"
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
	Clock  clock.Clock
	Random random.Random

	// Engine
	Generator *mapgen.Generator
	Resolver  *combat.Resolver
	Ledger    *economy.Ledger
	Bots      *bot.Service
	Turns     *turn.Controller

	// Services
	RegistryService *registry.Service
	AuthService     *auth.Service
	GameController  *game.Controller
	Hubs            *stream.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
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
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), authCfg, logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "", StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis or sqlite", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	generator := mapgen.New()
	resolver := combat.New()
	ledger := economy.New()
	bots := bot.NewService(map[string]bot.Strategy{
		model.BotStrategyHeuristic: bot.NewHeuristicStrategy(),
		model.BotStrategyRandom:    bot.NewRandomStrategy(rnd),
	}, resolver, ledger)
	turns := turn.NewController(ledger, bots)
	hubs := stream.NewHubManager(logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Generator:       generator,
		Resolver:        resolver,
		Ledger:          ledger,
		Bots:            bots,
		Turns:           turns,
		RegistryService: registry.NewService(store, clk, logger),
		AuthService:     auth.New(store, clk, authCfg, logger),
		GameController:  game.NewController(store, generator, resolver, ledger, turns, bots, hubs, clk, logger),
		Hubs:            hubs,
	}
}

// Close disconnects stream clients and releases the storage backend
func (a *App) Close() error {
	a.Hubs.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getter matches Get on both the client and a watched transaction
type getter func(ctx context.Context, key string) *redis.StringCmd

// getJSON loads and decodes a record, mapping a missing key to notFound
func getJSON[T any](ctx context.Context, get getter, key string, notFound error) (*T, error) {
	data, err := get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}
	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client.Get, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, credentialsKey(rp.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	return getJSON[model.RegisteredPlayer](ctx, s.client.Get, credentialsKey(playerID), model.ErrPlayerNotFound)
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	// Look up player ID from username index
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Registry operations

func (s *Storage) CreateRegistry(ctx context.Context, registry *model.Registry) error {
	data, err := json.Marshal(registry)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, superKey(), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrAlreadyInitialized
	}
	return nil
}

func (s *Storage) GetRegistry(ctx context.Context) (*model.Registry, error) {
	return getJSON[model.Registry](ctx, s.client.Get, superKey(), model.ErrNotInitialized)
}

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, profile *model.PlayerProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, profileKey(profile.Player), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrProfileAlreadyExists
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, player model.PlayerID) (*model.PlayerProfile, error) {
	return getJSON[model.PlayerProfile](ctx, s.client.Get, profileKey(player), model.ErrProfileNotFound)
}

// Game operations

// CreateGame watches the registry and the creator's profile, so a concurrent
// creation makes EXEC fail and the whole step is retried with fresh reads.
func (s *Storage) CreateGame(ctx context.Context, creator model.PlayerID, build storage.GameBuilder) (*model.Game, error) {
	var created *model.Game

	txf := func(tx *redis.Tx) error {
		reg, err := getJSON[model.Registry](ctx, tx.Get, superKey(), model.ErrNotInitialized)
		if err != nil {
			return err
		}
		profile, err := getJSON[model.PlayerProfile](ctx, tx.Get, profileKey(creator), model.ErrProfileNotFound)
		if err != nil {
			return err
		}

		game, err := build(model.GameID(reg.GameCount), profile)
		if err != nil {
			return err
		}
		reg.GameCount++
		reg.UpdatedAt = game.CreatedAt

		regData, err := json.Marshal(reg)
		if err != nil {
			return err
		}
		gameData, err := json.Marshal(game)
		if err != nil {
			return err
		}
		profileData, err := json.Marshal(profile)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, superKey(), regData, 0)
			pipe.Set(ctx, gameKey(game.ID), gameData, 0)
			pipe.Set(ctx, profileKey(creator), profileData, 0)
			return nil
		})
		if err == nil {
			created = game
		}
		return err
	}

	for range max(s.cfg.MaxTxRetries, 1) {
		err := s.client.Watch(ctx, txf, superKey(), profileKey(creator))
		if err == nil {
			return created, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, storage.ErrConflict
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game, profiles ...*model.PlayerProfile) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, 0)
	for _, p := range profiles {
		pdata, err := json.Marshal(p)
		if err != nil {
			return err
		}
		pipe.Set(ctx, profileKey(p.Player), pdata, 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return getJSON[model.Game](ctx, s.client.Get, gameKey(id), model.ErrGameNotFound)
}

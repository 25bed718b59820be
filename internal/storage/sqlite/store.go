// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/storage"
	"github.com/mcoot/conquest-go/internal/storage/sqlite/migrations"
)

// Store persists registry, profiles and games in SQLite. Game state is kept
// as a JSON document next to the columns used for lookups.
type Store struct {
	sqlDB *sql.DB
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time keeps the read-then-write transactions below free of
	// SQLITE_BUSY upgrades.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// Player operations

func (s *Store) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO players (id, display_name, is_guest, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, is_guest = excluded.is_guest`,
		string(player.ID), player.DisplayName, player.IsGuest, toMillis(player.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		p         model.Player
		rawID     string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, display_name, is_guest, created_at FROM players WHERE id = ?`, string(id),
	).Scan(&rawID, &p.DisplayName, &p.IsGuest, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	p.ID = model.PlayerID(rawID)
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

// Registered player operations

func (s *Store) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO credentials (player_id, username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at`,
		string(rp.PlayerID), rp.Username, rp.PasswordHash, toMillis(rp.CreatedAt), toMillis(rp.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameTaken
		}
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *Store) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	return s.getCredentials(ctx, `WHERE player_id = ?`, string(playerID))
}

func (s *Store) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	return s.getCredentials(ctx, `WHERE username = ?`, username)
}

func (s *Store) getCredentials(ctx context.Context, where string, arg string) (*model.RegisteredPlayer, error) {
	var (
		rp                   model.RegisteredPlayer
		playerID             string
		createdAt, updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT player_id, username, password_hash, created_at, updated_at FROM credentials `+where, arg,
	).Scan(&playerID, &rp.Username, &rp.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	rp.PlayerID = model.PlayerID(playerID)
	rp.CreatedAt = fromMillis(createdAt)
	rp.UpdatedAt = fromMillis(updatedAt)
	return &rp, nil
}

// Registry operations

func (s *Store) CreateRegistry(ctx context.Context, registry *model.Registry) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO registry (id, game_count, created_at, updated_at) VALUES (1, ?, ?, ?)`,
		registry.GameCount, toMillis(registry.CreatedAt), toMillis(registry.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyInitialized
		}
		return fmt.Errorf("create registry: %w", err)
	}
	return nil
}

func (s *Store) GetRegistry(ctx context.Context) (*model.Registry, error) {
	return getRegistry(ctx, s.sqlDB)
}

func getRegistry(ctx context.Context, q queryer) (*model.Registry, error) {
	var (
		reg                  model.Registry
		createdAt, updatedAt int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT game_count, created_at, updated_at FROM registry WHERE id = 1`,
	).Scan(&reg.GameCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotInitialized
		}
		return nil, fmt.Errorf("get registry: %w", err)
	}
	reg.CreatedAt = fromMillis(createdAt)
	reg.UpdatedAt = fromMillis(updatedAt)
	return &reg, nil
}

// Profile operations

func (s *Store) CreateProfile(ctx context.Context, profile *model.PlayerProfile) error {
	active, err := json.Marshal(activeGames(profile))
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO profiles (player_id, experience, completed_games, active_games, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(profile.Player), profile.Experience, profile.CompletedGames, string(active),
		toMillis(profile.CreatedAt), toMillis(profile.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrProfileAlreadyExists
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, player model.PlayerID) (*model.PlayerProfile, error) {
	return getProfile(ctx, s.sqlDB, player)
}

func getProfile(ctx context.Context, q queryer, player model.PlayerID) (*model.PlayerProfile, error) {
	var (
		p                    model.PlayerProfile
		playerID, active     string
		createdAt, updatedAt int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT player_id, experience, completed_games, active_games, created_at, updated_at
		 FROM profiles WHERE player_id = ?`, string(player),
	).Scan(&playerID, &p.Experience, &p.CompletedGames, &active, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := json.Unmarshal([]byte(active), &p.ActiveGames); err != nil {
		return nil, fmt.Errorf("decode active games of %s: %w", playerID, err)
	}
	if len(p.ActiveGames) == 0 {
		p.ActiveGames = nil
	}
	p.Player = model.PlayerID(playerID)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

func saveProfile(ctx context.Context, q queryer, profile *model.PlayerProfile) error {
	active, err := json.Marshal(activeGames(profile))
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE profiles SET experience = ?, completed_games = ?, active_games = ?, updated_at = ?
		 WHERE player_id = ?`,
		profile.Experience, profile.CompletedGames, string(active), toMillis(profile.UpdatedAt),
		string(profile.Player),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func activeGames(profile *model.PlayerProfile) []model.GameID {
	if profile.ActiveGames == nil {
		return []model.GameID{}
	}
	return profile.ActiveGames
}

// Game operations

func (s *Store) CreateGame(ctx context.Context, creator model.PlayerID, build storage.GameBuilder) (*model.Game, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create game: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	reg, err := getRegistry(ctx, tx)
	if err != nil {
		return nil, err
	}
	profile, err := getProfile(ctx, tx, creator)
	if err != nil {
		return nil, err
	}

	game, err := build(model.GameID(reg.GameCount), profile)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE registry SET game_count = game_count + 1, updated_at = ? WHERE id = 1`,
		toMillis(game.CreatedAt),
	); err != nil {
		return nil, fmt.Errorf("advance game count: %w", err)
	}
	if err := insertGame(ctx, tx, game); err != nil {
		return nil, err
	}
	if err := saveProfile(ctx, tx, profile); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create game: %w", err)
	}
	return game, nil
}

func insertGame(ctx context.Context, q queryer, game *model.Game) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO games (id, creator, status, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uint32(game.ID), string(game.Creator), string(game.Status), string(state),
		toMillis(game.CreatedAt), toMillis(game.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *Store) SaveGame(ctx context.Context, game *model.Game, profiles ...*model.PlayerProfile) error {
	state, err := json.Marshal(game)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save game: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, creator, status, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, state = excluded.state, updated_at = excluded.updated_at`,
		uint32(game.ID), string(game.Creator), string(game.Status), string(state),
		toMillis(game.CreatedAt), toMillis(game.UpdatedAt),
	); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	for _, p := range profiles {
		if err := saveProfile(ctx, tx, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save game: %w", err)
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var state string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT state FROM games WHERE id = ?`, uint32(id)).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	var game model.Game
	if err := json.Unmarshal([]byte(state), &game); err != nil {
		return nil, fmt.Errorf("decode game %d: %w", id, err)
	}
	return &game, nil
}

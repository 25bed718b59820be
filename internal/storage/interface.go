package storage

import (
	"context"
	"errors"

	"github.com/mcoot/conquest-go/internal/model"
)

// ErrConflict is returned when a transaction kept losing to concurrent writers
var ErrConflict = errors.New("storage: too many concurrent updates")

// GameBuilder builds a new game for the id the registry hands out. It may
// update the creator's profile, which is persisted together with the game.
// Returning an error aborts the creation and leaves the registry untouched.
type GameBuilder func(id model.GameID, creator *model.PlayerProfile) (*model.Game, error)

// Storage defines the interface for data persistence.
// Every getter returns a copy the caller is free to mutate.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Registry operations
	CreateRegistry(ctx context.Context, registry *model.Registry) error
	GetRegistry(ctx context.Context) (*model.Registry, error)

	// Profile operations
	CreateProfile(ctx context.Context, profile *model.PlayerProfile) error
	GetProfile(ctx context.Context, player model.PlayerID) (*model.PlayerProfile, error)

	// Game operations

	// CreateGame allocates the next game id, builds the game and stores it with
	// the creator's profile, all in one step.
	CreateGame(ctx context.Context, creator model.PlayerID, build GameBuilder) (*model.Game, error)
	// SaveGame stores a game together with any profiles the change touched
	SaveGame(ctx context.Context, game *model.Game, profiles ...*model.PlayerProfile) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
}

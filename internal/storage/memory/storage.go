package memory

import (
	"context"
	"sync"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and on the way out.
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	registry          *model.Registry
	profiles          map[model.PlayerID]*model.PlayerProfile
	games             map[model.GameID]*model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		profiles:          make(map[model.PlayerID]*model.PlayerProfile),
		games:             make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *rp
	s.registeredPlayers[rp.PlayerID] = &c
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	c := *rp
	return &c, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	playerID, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetRegisteredPlayer(ctx, playerID)
}

// Registry operations

func (s *Storage) CreateRegistry(ctx context.Context, registry *model.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry != nil {
		return model.ErrAlreadyInitialized
	}
	r := *registry
	s.registry = &r
	return nil
}

func (s *Storage) GetRegistry(ctx context.Context) (*model.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return nil, model.ErrNotInitialized
	}
	r := *s.registry
	return &r, nil
}

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, profile *model.PlayerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.Player]; ok {
		return model.ErrProfileAlreadyExists
	}
	s.profiles[profile.Player] = profile.Clone()
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, player model.PlayerID) (*model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[player]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, creator model.PlayerID, build storage.GameBuilder) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry == nil {
		return nil, model.ErrNotInitialized
	}
	profile, ok := s.profiles[creator]
	if !ok {
		return nil, model.ErrProfileNotFound
	}

	id := model.GameID(s.registry.GameCount)
	updated := profile.Clone()
	game, err := build(id, updated)
	if err != nil {
		return nil, err
	}

	s.registry.GameCount++
	s.registry.UpdatedAt = game.CreatedAt
	s.games[id] = game.Clone()
	s.profiles[creator] = updated.Clone()
	return game, nil
}

func (s *Storage) SaveGame(ctx context.Context, game *model.Game, profiles ...*model.PlayerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	for _, p := range profiles {
		s.profiles[p.Player] = p.Clone()
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

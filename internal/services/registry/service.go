package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/conquest-go/internal/dependencies/clock"
	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/storage"
)

// Service owns the program-wide registry and the per-player profiles
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewService creates a new registry Service
func NewService(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// InitializeProgram creates the registry. It succeeds exactly once; later
// calls return model.ErrAlreadyInitialized.
func (s *Service) InitializeProgram(ctx context.Context) (*model.Registry, error) {
	now := s.clock.Now()
	registry := &model.Registry{
		GameCount: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreateRegistry(ctx, registry); err != nil {
		return nil, err
	}

	s.logger.Info("program initialized")
	return registry, nil
}

// EnsureInitialized creates the registry if it does not exist yet
func (s *Service) EnsureInitialized(ctx context.Context) (*model.Registry, error) {
	registry, err := s.InitializeProgram(ctx)
	if errors.Is(err, model.ErrAlreadyInitialized) {
		return s.storage.GetRegistry(ctx)
	}
	return registry, err
}

// GetRegistry returns the registry
func (s *Service) GetRegistry(ctx context.Context) (*model.Registry, error) {
	return s.storage.GetRegistry(ctx)
}

// CreatePlayerProfile creates the profile for a player. A second call fails
// with model.ErrProfileAlreadyExists and leaves the stored profile untouched.
func (s *Service) CreatePlayerProfile(ctx context.Context, player model.PlayerID) (*model.PlayerProfile, error) {
	if player == "" {
		return nil, model.ErrPlayerNotFound
	}

	now := s.clock.Now()
	profile := &model.PlayerProfile{
		Player:    player,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile created", slog.String("player_id", string(player)))
	return profile, nil
}

// GetProfile returns a player's profile
func (s *Service) GetProfile(ctx context.Context, player model.PlayerID) (*model.PlayerProfile, error) {
	return s.storage.GetProfile(ctx, player)
}

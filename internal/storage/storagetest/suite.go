// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite and supply a constructor.
package storagetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/storage"
)

var errBuildRejected = errors.New("build rejected")

// Suite runs the shared storage tests against the Storage returned by New
type Suite struct {
	suite.Suite
	New     func() storage.Storage
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Storage = s.New()
	s.Ctx = context.Background()
}

var created = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) initialize() {
	s.Require().NoError(s.Storage.CreateRegistry(s.Ctx, &model.Registry{CreatedAt: created, UpdatedAt: created}))
}

func (s *Suite) createProfile(id model.PlayerID) {
	s.Require().NoError(s.Storage.CreateProfile(s.Ctx, &model.PlayerProfile{Player: id, CreatedAt: created, UpdatedAt: created}))
}

// newGame builds a small game with one tile, enough to check round trips
func newGame(id model.GameID, creator model.PlayerID) *model.Game {
	g := &model.Game{
		ID:          id,
		Creator:     creator,
		Status:      model.GameStatusLive,
		MaxPlayers:  1,
		MapSize:     model.MapSmall,
		BotStrategy: model.BotStrategyHeuristic,
		Round:       1,
		CreatedAt:   created,
		UpdatedAt:   created,
		Tiles: [][]*model.Tile{{{
			Owner:    creator,
			Level:    1,
			Units:    &model.Units{Type: model.UnitInfantry, Quantity: 5, Stamina: 1},
			Building: &model.Building{Type: model.BuildingBase, Level: 1},
		}}},
	}
	g.Players[0] = &model.PlayerSlot{
		Player:       creator,
		IsAlive:      true,
		Balance:      model.StartingBalance,
		AttackPoints: model.StartingAttackPoints,
	}
	return g
}

func (s *Suite) createGame(creator model.PlayerID) *model.Game {
	game, err := s.Storage.CreateGame(s.Ctx, creator, func(id model.GameID, p *model.PlayerProfile) (*model.Game, error) {
		p.AddActiveGame(id)
		return newGame(id, creator), nil
	})
	s.Require().NoError(err)
	return game
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice", CreatedAt: created}

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(player.DisplayName, retrieved.DisplayName)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayer() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "player-1", DisplayName: "Alice"}))

	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "player-1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Registered player tests

func (s *Suite) TestGetRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{PlayerID: "player-1", Username: "alice", PasswordHash: "hash123", CreatedAt: created}
	s.Require().NoError(s.Storage.SaveRegisteredPlayer(s.Ctx, rp))

	retrieved, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)
	s.Equal("hash123", retrieved.PasswordHash)

	_, err = s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.Storage.GetRegisteredPlayer(s.Ctx, "player-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Registry tests

func (s *Suite) TestRegistryCreatedOnce() {
	_, err := s.Storage.GetRegistry(s.Ctx)
	s.ErrorIs(err, model.ErrNotInitialized)

	s.initialize()

	err = s.Storage.CreateRegistry(s.Ctx, &model.Registry{GameCount: 99})
	s.ErrorIs(err, model.ErrAlreadyInitialized)

	reg, err := s.Storage.GetRegistry(s.Ctx)
	s.Require().NoError(err)
	s.Equal(uint32(0), reg.GameCount)
}

// Profile tests

func (s *Suite) TestProfileCreatedOnce() {
	_, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrProfileNotFound)

	s.createProfile("alice")

	err = s.Storage.CreateProfile(s.Ctx, &model.PlayerProfile{Player: "alice", Experience: 50})
	s.ErrorIs(err, model.ErrProfileAlreadyExists)

	profile, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(uint32(0), profile.Experience)
	s.Equal(uint32(0), profile.CompletedGames)
}

// Game tests

func (s *Suite) TestCreateGameAllocatesSequentialIDs() {
	s.initialize()
	s.createProfile("alice")

	first := s.createGame("alice")
	second := s.createGame("alice")

	s.Equal(model.GameID(0), first.ID)
	s.Equal(model.GameID(1), second.ID)

	reg, err := s.Storage.GetRegistry(s.Ctx)
	s.Require().NoError(err)
	s.Equal(uint32(2), reg.GameCount)

	profile, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]model.GameID{0, 1}, profile.ActiveGames)
}

func (s *Suite) TestCreateGameRequiresRegistryAndProfile() {
	build := func(id model.GameID, _ *model.PlayerProfile) (*model.Game, error) {
		return newGame(id, "alice"), nil
	}

	_, err := s.Storage.CreateGame(s.Ctx, "alice", build)
	s.ErrorIs(err, model.ErrNotInitialized)

	s.initialize()
	_, err = s.Storage.CreateGame(s.Ctx, "alice", build)
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestCreateGameBuildFailureChangesNothing() {
	s.initialize()
	s.createProfile("alice")

	_, err := s.Storage.CreateGame(s.Ctx, "alice", func(id model.GameID, p *model.PlayerProfile) (*model.Game, error) {
		p.AddActiveGame(id)
		return nil, errBuildRejected
	})
	s.ErrorIs(err, errBuildRejected)

	reg, err := s.Storage.GetRegistry(s.Ctx)
	s.Require().NoError(err)
	s.Equal(uint32(0), reg.GameCount)

	profile, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Empty(profile.ActiveGames)

	_, err = s.Storage.GetGame(s.Ctx, 0)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGameRoundTrip() {
	s.initialize()
	s.createProfile("alice")
	game := s.createGame("alice")

	retrieved, err := s.Storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.Creator, retrieved.Creator)
	s.Equal(game.Status, retrieved.Status)
	s.Equal(*game.Players[0], *retrieved.Players[0])
	s.Nil(retrieved.Players[1])
	s.Equal(game.Tiles[0][0].Units, retrieved.Tiles[0][0].Units)
	s.Equal(game.Tiles[0][0].Building, retrieved.Tiles[0][0].Building)
	s.True(game.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetGameReturnsCopy() {
	s.initialize()
	s.createProfile("alice")
	game := s.createGame("alice")

	first, err := s.Storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	first.Players[0].Balance = 0
	first.Tiles[0][0].Units.Quantity = 1

	second, err := s.Storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.StartingBalance, second.Players[0].Balance)
	s.Equal(uint16(5), second.Tiles[0][0].Units.Quantity)
}

func (s *Suite) TestSaveGameWithProfiles() {
	s.initialize()
	s.createProfile("alice")
	game := s.createGame("alice")

	game.Status = model.GameStatusFinished
	game.Winner = "alice"
	profile, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	profile.CompleteGame(game.ID, 100)

	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game, profile))

	retrieved, err := s.Storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.GameStatusFinished, retrieved.Status)
	s.Equal(model.PlayerID("alice"), retrieved.Winner)

	profile, err = s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Empty(profile.ActiveGames)
	s.Equal(uint32(1), profile.CompletedGames)
	s.Equal(uint32(100), profile.Experience)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, 42)
	s.ErrorIs(err, model.ErrGameNotFound)
}

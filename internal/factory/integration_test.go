package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/game"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.Initialize(s.ctx, "alice", "bob"))
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

// Test: two humans trade turns and collect income
func (s *IntegrationSuite) TestMultiplayerRounds() {
	g, err := s.app.GameController.CreateGame(s.ctx, "alice", game.CreateOptions{
		MaxPlayers:    2,
		IsMultiplayer: true,
		MapSize:       model.MapSmall,
	})
	s.Require().NoError(err)
	s.Equal(model.GameStatusNotStarted, g.Status)

	g, err = s.app.GameController.JoinGame(s.ctx, g.ID, "bob")
	s.Require().NoError(err)
	s.Equal(model.GameStatusLive, g.Status)

	// Alice and Bob trade turns for a few rounds
	for round := uint32(1); round <= 3; round++ {
		s.app.MockClock.Advance(time.Second)
		_, err = s.app.GameController.EndTurn(s.ctx, g.ID, "alice")
		s.Require().NoError(err)
		_, err = s.app.GameController.EndTurn(s.ctx, g.ID, "bob")
		s.Require().NoError(err)
	}

	g, err = s.app.GameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(uint32(4), g.Round)
	s.Equal(0, g.CurrentPlayerIndex)

	// Each turn boundary paid base income to the ending player
	s.Equal(model.StartingBalance+3*3, g.Players[0].Balance)
	s.Equal(model.StartingBalance+3*3, g.Players[1].Balance)
	s.Equal(model.MaxAttackPoints, g.Players[0].AttackPoints)

	alice, err := s.app.RegistryService.GetProfile(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]model.GameID{g.ID}, alice.ActiveGames)
}

// Test: single player game against bots keeps the turn with the human
func (s *IntegrationSuite) TestSinglePlayerAgainstBots() {
	g, err := s.app.GameController.CreateGame(s.ctx, "alice", game.CreateOptions{
		MaxPlayers:  4,
		MapSize:     model.MapMedium,
		BotStrategy: model.BotStrategyRandom,
	})
	s.Require().NoError(err)
	s.Equal(model.GameStatusLive, g.Status)
	s.Equal(4, g.OccupiedSlots())

	for range 5 {
		res, err := s.app.GameController.EndTurn(s.ctx, g.ID, "alice")
		if err != nil {
			s.ErrorIs(err, model.ErrNotYourTurn)
			break
		}
		s.True(res.Wrapped)
		if res.Finished {
			break
		}
		s.LessOrEqual(len(res.BotTurns), 3)
	}

	g, err = s.app.GameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.NoError(g.CheckInvariants())
}

// Test: the registry counter survives across many games
func (s *IntegrationSuite) TestGameIDsAreSequential() {
	for i := range 3 {
		g, err := s.app.GameController.CreateGame(s.ctx, "bob", game.CreateOptions{MaxPlayers: 1, MapSize: model.MapLarge})
		s.Require().NoError(err)
		s.Equal(model.GameID(i), g.ID)
	}

	reg, err := s.app.RegistryService.GetRegistry(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint32(3), reg.GameCount)
}

func TestNewWithSQLiteStorage(t *testing.T) {
	app, err := New(Config{
		StorageType: StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "conquest.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	ctx := t.Context()
	_, err = app.RegistryService.InitializeProgram(ctx)
	require.NoError(t, err)
	_, err = app.RegistryService.CreatePlayerProfile(ctx, "alice")
	require.NoError(t, err)

	g, err := app.GameController.CreateGame(ctx, "alice", game.CreateOptions{MaxPlayers: 1, MapSize: model.MapSmall})
	require.NoError(t, err)

	stored, err := app.GameController.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.TileCount(), stored.TileCount())
	assert.Equal(t, model.GameStatusLive, stored.Status)
}

func TestNewRejectsBadStorageConfig(t *testing.T) {
	_, err := New(Config{StorageType: "postgres"})
	assert.ErrorContains(t, err, "invalid StorageType")

	_, err = New(Config{StorageType: StorageTypeRedis})
	assert.ErrorContains(t, err, "RedisConfig")

	_, err = New(Config{StorageType: StorageTypeSQLite})
	assert.ErrorContains(t, err, "SQLitePath")
}

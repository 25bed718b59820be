package turn

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/bot"
	"github.com/mcoot/conquest-go/internal/services/combat"
	"github.com/mcoot/conquest-go/internal/services/economy"
	"github.com/mcoot/conquest-go/internal/services/mapgen"
)

type ControllerSuite struct {
	suite.Suite
	gen        *mapgen.Generator
	controller *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.gen = mapgen.New()
	ledger := economy.New()
	bots := bot.NewService(map[string]bot.Strategy{
		model.BotStrategyHeuristic: bot.NewHeuristicStrategy(),
	}, combat.New(), ledger)
	s.controller = NewController(ledger, bots)
}

// newGame seats the given players (empty string leaves a slot free) with bases
func (s *ControllerSuite) newGame(multiplayer bool, players ...model.PlayerID) *model.Game {
	tiles, err := s.gen.Generate(model.MapSmall, 3)
	s.Require().NoError(err)
	g := &model.Game{
		ID:            1,
		Status:        model.GameStatusLive,
		IsMultiplayer: multiplayer,
		MaxPlayers:    len(players),
		MapSize:       model.MapSmall,
		BotStrategy:   model.BotStrategyHeuristic,
		Round:         1,
		TurnTimestamp: 1000,
		Tiles:         tiles,
	}
	for i, p := range players {
		if p == "" {
			continue
		}
		g.Players[i] = &model.PlayerSlot{
			Player:       p,
			IsBot:        p == model.BotPlayerID(1, i),
			IsAlive:      true,
			Balance:      model.StartingBalance,
			AttackPoints: model.StartingAttackPoints,
			SlotIndex:    i,
		}
		_, err := s.gen.PlaceBase(g, i, p)
		s.Require().NoError(err)
	}
	return g
}

func (s *ControllerSuite) TestAuthorizeRequiresLiveGame() {
	g := s.newGame(true, "alice", "bob")
	g.Status = model.GameStatusNotStarted

	_, err := s.controller.Authorize(g, "alice")
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ControllerSuite) TestAuthorizeRequiresCurrentPlayer() {
	g := s.newGame(true, "alice", "bob")

	slot, err := s.controller.Authorize(g, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), slot.Player)

	_, err = s.controller.Authorize(g, "bob")
	s.ErrorIs(err, model.ErrNotYourTurn)
	_, err = s.controller.Authorize(g, "mallory")
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ControllerSuite) TestMultiplayerRotation() {
	g := s.newGame(true, "alice", "bob")

	res, err := s.controller.EndTurn(g, "alice", 2000)
	s.Require().NoError(err)
	s.False(res.Wrapped)
	s.Equal(1, g.CurrentPlayerIndex)
	s.Equal(uint32(1), g.Round)

	before := g.Clone()
	_, err = s.controller.EndTurn(g, "alice", 3000)
	s.ErrorIs(err, model.ErrNotYourTurn)
	s.Equal(before, g)

	res, err = s.controller.EndTurn(g, "bob", 3000)
	s.Require().NoError(err)
	s.True(res.Wrapped)
	s.Equal(0, g.CurrentPlayerIndex)
	s.Equal(uint32(2), g.Round)
}

func (s *ControllerSuite) TestSkipsEmptySlots() {
	g := s.newGame(true, "alice", "", "carol")

	_, err := s.controller.EndTurn(g, "alice", 2000)
	s.Require().NoError(err)
	s.Equal(2, g.CurrentPlayerIndex)

	_, err = s.controller.EndTurn(g, "carol", 2001)
	s.Require().NoError(err)
	s.Equal(0, g.CurrentPlayerIndex)
	s.Equal(uint32(2), g.Round)
}

func (s *ControllerSuite) TestSinglePlayerWrapsEveryTurn() {
	g := s.newGame(false, "alice")

	for round := uint32(2); round <= 4; round++ {
		res, err := s.controller.EndTurn(g, "alice", 0)
		s.Require().NoError(err)
		s.True(res.Wrapped)
		s.Equal(0, g.CurrentPlayerIndex)
		s.Equal(round, g.Round)
	}
}

func (s *ControllerSuite) TestTimestampStrictlyIncreases() {
	g := s.newGame(false, "alice")

	_, err := s.controller.EndTurn(g, "alice", 500)
	s.Require().NoError(err)
	s.Equal(int64(1001), g.TurnTimestamp)

	_, err = s.controller.EndTurn(g, "alice", 5000)
	s.Require().NoError(err)
	s.Equal(int64(5000), g.TurnTimestamp)

	_, err = s.controller.EndTurn(g, "alice", 5000)
	s.Require().NoError(err)
	s.Equal(int64(5001), g.TurnTimestamp)
}

func (s *ControllerSuite) TestEndTurnRestoresStaminaAndPaysIncome() {
	g := s.newGame(false, "alice")
	base, _ := g.Tile(model.Position{Row: 1, Col: 1})
	base.Units.Stamina = 0
	g.Players[0].AttackPoints = 1

	res, err := s.controller.EndTurn(g, "alice", 2000)
	s.Require().NoError(err)

	s.Equal(uint32(3), res.Income)
	s.Equal(uint8(1), base.Units.Stamina)
	s.Equal(model.StartingBalance+3, g.Players[0].Balance)
	s.Equal(uint8(2), g.Players[0].AttackPoints)
}

func (s *ControllerSuite) TestBotsPlayOnWrap() {
	g := s.newGame(false, "alice", model.BotPlayerID(1, 1))

	res, err := s.controller.EndTurn(g, "alice", 2000)
	s.Require().NoError(err)

	s.Require().Len(res.BotTurns, 1)
	s.Equal(1, res.BotTurns[0].SlotIndex)
	s.NotEmpty(res.BotTurns[0].Actions)
	s.Equal(0, g.CurrentPlayerIndex)
	s.NoError(g.CheckInvariants())
}

func (s *ControllerSuite) TestLosingBaseFinishesGame() {
	g := s.newGame(true, "alice", "bob")
	bobBase, _ := g.Tile(model.Position{Row: 5, Col: 3})
	bobBase.Owner = "alice"
	bobBase.Building = nil

	res, err := s.controller.EndTurn(g, "alice", 2000)
	s.Require().NoError(err)

	s.Equal([]model.PlayerID{"bob"}, res.Eliminated)
	s.True(res.Finished)
	s.Equal(model.GameStatusFinished, g.Status)
	s.Equal(model.PlayerID("alice"), g.Winner)
	s.False(g.Players[1].IsAlive)

	_, err = s.controller.EndTurn(g, "alice", 3000)
	s.ErrorIs(err, model.ErrNotYourTurn)
}

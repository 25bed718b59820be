package combat

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/mapgen"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
	game     *model.Game
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

var (
	aliceBase = model.Position{Row: 1, Col: 1}
	below     = model.Position{Row: 2, Col: 1}
	diagonal  = model.Position{Row: 2, Col: 2}
	bobBase   = model.Position{Row: 5, Col: 3}
)

func (s *ResolverSuite) SetupTest() {
	s.resolver = New()

	gen := mapgen.New()
	tiles, err := gen.Generate(model.MapSmall, 5)
	s.Require().NoError(err)
	s.game = &model.Game{
		MapSize:    model.MapSmall,
		MaxPlayers: 2,
		Status:     model.GameStatusLive,
		Round:      1,
		Tiles:      tiles,
	}
	s.game.Players[0] = &model.PlayerSlot{Player: "alice", IsAlive: true, Balance: 10, AttackPoints: 3}
	s.game.Players[1] = &model.PlayerSlot{Player: "bob", IsAlive: true, Balance: 10, AttackPoints: 3, SlotIndex: 1}
	_, err = gen.PlaceBase(s.game, 0, "alice")
	s.Require().NoError(err)
	_, err = gen.PlaceBase(s.game, 1, "bob")
	s.Require().NoError(err)
}

func (s *ResolverSuite) tile(pos model.Position) *model.Tile {
	t, err := s.game.Tile(pos)
	s.Require().NoError(err)
	return t
}

func (s *ResolverSuite) TestMoveCost() {
	cases := []struct {
		to   model.Position
		cost uint8
		err  error
	}{
		{model.Position{Row: 2, Col: 1}, 1, nil},
		{model.Position{Row: 1, Col: 2}, 1, nil},
		{model.Position{Row: 0, Col: 0}, 2, nil},
		{model.Position{Row: 2, Col: 2}, 2, nil},
		{model.Position{Row: 1, Col: 1}, 0, model.ErrInvalidMovement},
		{model.Position{Row: 3, Col: 1}, 0, model.ErrInvalidMovement},
		{model.Position{Row: 1, Col: 3}, 0, model.ErrInvalidMovement},
	}
	for _, tc := range cases {
		cost, err := MoveCost(aliceBase, tc.to)
		if tc.err != nil {
			s.ErrorIs(err, tc.err, tc.to.String())
			continue
		}
		s.Require().NoError(err)
		s.Equal(tc.cost, cost, tc.to.String())
	}
}

func (s *ResolverSuite) TestDiagonalWithoutStaminaLeavesTilesUnchanged() {
	before := s.game.Clone()

	_, err := s.resolver.Move(s.game, "alice", aliceBase, diagonal)
	s.ErrorIs(err, model.ErrNotEnoughStamina)
	s.Equal(before, s.game)
}

func (s *ResolverSuite) TestAttackNeutralGarrison() {
	garrison := s.tile(below).Units.Quantity

	out, err := s.resolver.Move(s.game, "alice", aliceBase, below)
	s.Require().NoError(err)

	s.Equal(OutcomeCaptured, out.Kind)
	s.True(out.Combat)
	s.Equal(uint16(5)-garrison, s.tile(below).Units.Quantity)
	s.Equal(model.PlayerID("alice"), s.tile(below).Owner)
	s.Equal(model.UnitInfantry, s.tile(below).Units.Type)
	s.Equal(uint8(0), s.tile(below).Units.Stamina)
	s.Nil(s.tile(aliceBase).Units)
	s.Equal(model.PlayerID("alice"), s.tile(aliceBase).Owner)
	s.Equal(uint8(2), s.game.Players[0].AttackPoints)
}

func (s *ResolverSuite) TestRelocateOntoEmptyTile() {
	s.tile(below).Units = nil

	out, err := s.resolver.Move(s.game, "alice", aliceBase, below)
	s.Require().NoError(err)

	s.Equal(OutcomeRelocated, out.Kind)
	s.False(out.Combat)
	s.Equal(&model.Units{Type: model.UnitInfantry, Quantity: 5}, s.tile(below).Units)
	s.Equal(model.PlayerID("alice"), s.tile(below).Owner)
	s.Nil(s.tile(aliceBase).Units)
	s.Equal(uint8(3), s.game.Players[0].AttackPoints)
}

func (s *ResolverSuite) TestRepelledAttackerIsAnnihilated() {
	s.tile(below).Units.Quantity = 5
	s.tile(below).Level = 2

	out, err := s.resolver.Move(s.game, "alice", aliceBase, below)
	s.Require().NoError(err)

	s.Equal(OutcomeRepelled, out.Kind)
	s.Nil(s.tile(aliceBase).Units)
	s.Equal(&model.Units{Type: model.UnitMutants, Quantity: 5}, s.tile(below).Units)
	s.True(s.tile(below).IsNeutral())
	s.Equal(uint8(2), s.game.Players[0].AttackPoints)
}

func (s *ResolverSuite) TestAttackRequiresAttackPoints() {
	s.game.Players[0].AttackPoints = 0

	_, err := s.resolver.Move(s.game, "alice", aliceBase, below)
	s.ErrorIs(err, model.ErrNotEnoughAttackPoints)
	s.NotNil(s.tile(aliceBase).Units)
}

func (s *ResolverSuite) TestSourceMustBeOwnedAndOccupied() {
	_, err := s.resolver.Move(s.game, "alice", below, aliceBase)
	s.ErrorIs(err, model.ErrNotYourUnits)

	s.tile(aliceBase).Units = nil
	_, err = s.resolver.Move(s.game, "alice", aliceBase, below)
	s.ErrorIs(err, model.ErrNoUnitsToMove)
}

func (s *ResolverSuite) TestOutOfBounds() {
	_, err := s.resolver.Move(s.game, "alice", aliceBase, model.Position{Row: 0, Col: 3})
	s.ErrorIs(err, model.ErrOutOfBounds)
}

func (s *ResolverSuite) TestMergeWithOwnStack() {
	t := s.tile(below)
	t.Owner = "alice"
	t.Units = &model.Units{Type: model.UnitInfantry, Quantity: 2, Stamina: 1}

	out, err := s.resolver.Move(s.game, "alice", aliceBase, below)
	s.Require().NoError(err)

	s.Equal(OutcomeMerged, out.Kind)
	s.Equal(&model.Units{Type: model.UnitInfantry, Quantity: 7}, t.Units)

	t.Units.Type = model.UnitTank
	t.Units.Quantity = 1
	s.tile(aliceBase).Units = &model.Units{Type: model.UnitInfantry, Quantity: 1, Stamina: 1}
	_, err = s.resolver.Move(s.game, "alice", aliceBase, below)
	s.ErrorIs(err, model.ErrTileOccupiedByOtherUnitType)
}

func (s *ResolverSuite) TestCapturingBaseDestroysIt() {
	next := model.Position{Row: 5, Col: 2}
	t := s.tile(next)
	t.Owner = "alice"
	t.Units = &model.Units{Type: model.UnitInfantry, Quantity: 9, Stamina: 1}

	out, err := s.resolver.Move(s.game, "alice", next, bobBase)
	s.Require().NoError(err)

	s.True(out.BaseDestroyed)
	s.Equal(model.PlayerID("bob"), out.DestroyedOwner)
	s.Equal(model.PlayerID("bob"), out.Defender)
	s.Equal(uint16(4), s.tile(bobBase).Units.Quantity)
	s.Nil(s.tile(bobBase).Building)
	s.False(s.game.OwnsBase("bob"))
}

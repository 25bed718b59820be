package economy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/mapgen"
)

type LedgerSuite struct {
	suite.Suite
	ledger *Ledger
	game   *model.Game
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

var (
	base    = model.Position{Row: 1, Col: 1}
	plain   = model.Position{Row: 2, Col: 1}
	faraway = model.Position{Row: 3, Col: 3}
)

func (s *LedgerSuite) SetupTest() {
	s.ledger = New()

	gen := mapgen.New()
	tiles, err := gen.Generate(model.MapSmall, 1)
	s.Require().NoError(err)
	s.game = &model.Game{
		MapSize:    model.MapSmall,
		MaxPlayers: 1,
		Status:     model.GameStatusLive,
		Round:      1,
		Tiles:      tiles,
	}
	s.game.Players[0] = &model.PlayerSlot{Player: "alice", IsAlive: true, Balance: 10, AttackPoints: 3}
	_, err = gen.PlaceBase(s.game, 0, "alice")
	s.Require().NoError(err)

	// hand alice an empty plain tile
	t, _ := s.game.Tile(plain)
	t.Owner = "alice"
	t.Units = nil
}

func (s *LedgerSuite) balance() uint32 {
	return s.game.Players[0].Balance
}

func (s *LedgerSuite) tile(pos model.Position) *model.Tile {
	t, err := s.game.Tile(pos)
	s.Require().NoError(err)
	return t
}

// Recruit tests

func (s *LedgerSuite) TestRecruitCreatesFullStaminaStack() {
	res, err := s.ledger.Recruit(s.game, "alice", model.UnitInfantry, 2, plain)
	s.Require().NoError(err)

	s.Equal(uint32(2), res.Cost)
	s.Equal(uint32(8), s.balance())
	s.Equal(&model.Units{Type: model.UnitInfantry, Quantity: 2, Stamina: 1}, s.tile(plain).Units)
}

func (s *LedgerSuite) TestRecruitAddsToExistingStack() {
	s.tile(base).Units.Stamina = 0

	res, err := s.ledger.Recruit(s.game, "alice", model.UnitInfantry, 3, base)
	s.Require().NoError(err)

	s.Equal(uint16(8), res.Quantity)
	s.Equal(uint16(8), s.tile(base).Units.Quantity)
	s.Equal(uint8(0), s.tile(base).Units.Stamina)
}

func (s *LedgerSuite) TestRecruitOnUnownedTileFailsRegardlessOfFunds() {
	s.game.Players[0].Balance = 1000

	_, err := s.ledger.Recruit(s.game, "alice", model.UnitInfantry, 1, faraway)
	s.ErrorIs(err, model.ErrTileNotOwned)
	s.Equal(uint32(1000), s.balance())
}

func (s *LedgerSuite) TestRecruitInsufficientFundsLeavesBalance() {
	_, err := s.ledger.Recruit(s.game, "alice", model.UnitInfantry, 100, plain)
	s.ErrorIs(err, model.ErrInsufficientFunds)
	s.Equal(uint32(10), s.balance())
	s.Nil(s.tile(plain).Units)
}

func (s *LedgerSuite) TestRecruitCostWrappingPastUint64IsInsufficientFunds() {
	s.tile(plain).Building = &model.Building{Type: model.BuildingTankFactory, Level: 1}

	// 3 * 6148914691236517206 = 2^64 + 2
	_, err := s.ledger.Recruit(s.game, "alice", model.UnitTank, 6148914691236517206, plain)
	s.ErrorIs(err, model.ErrInsufficientFunds)
	s.Equal(uint32(10), s.balance())
	s.Nil(s.tile(plain).Units)
}

func (s *LedgerSuite) TestRecruitRejectsDifferentUnitType() {
	s.tile(base).Building = &model.Building{Type: model.BuildingTankFactory, Level: 1}

	_, err := s.ledger.Recruit(s.game, "alice", model.UnitTank, 1, base)
	s.ErrorIs(err, model.ErrDifferentUnitTypeOnTile)
}

func (s *LedgerSuite) TestRecruitTankRequiresFactory() {
	_, err := s.ledger.Recruit(s.game, "alice", model.UnitTank, 1, plain)
	s.ErrorIs(err, model.ErrRequiresTankFactory)

	_, err = s.ledger.Recruit(s.game, "alice", model.UnitPlane, 1, plain)
	s.ErrorIs(err, model.ErrRequiresPlaneFactory)

	s.tile(plain).Building = &model.Building{Type: model.BuildingTankFactory, Level: 1}
	res, err := s.ledger.Recruit(s.game, "alice", model.UnitTank, 2, plain)
	s.Require().NoError(err)
	s.Equal(uint32(6), res.Cost)
	s.Equal(uint8(3), s.tile(plain).Units.Stamina)
}

func (s *LedgerSuite) TestRecruitRejectsMutantsAndBadQuantity() {
	_, err := s.ledger.Recruit(s.game, "alice", model.UnitMutants, 1, plain)
	s.ErrorIs(err, model.ErrInvalidUnitType)

	_, err = s.ledger.Recruit(s.game, "alice", model.UnitInfantry, 0, plain)
	s.ErrorIs(err, model.ErrInvalidQuantity)
}

func (s *LedgerSuite) TestRecruitOverflowIsTooManyUnits() {
	s.game.Players[0].Balance = math.MaxUint32
	s.tile(base).Units.Quantity = math.MaxUint16 - 1

	_, err := s.ledger.Recruit(s.game, "alice", model.UnitInfantry, 2, base)
	s.ErrorIs(err, model.ErrTooManyUnits)
	s.Equal(uint32(math.MaxUint32), s.balance())
}

func (s *LedgerSuite) TestRecruitByOutsiderIsInvalidPlayer() {
	_, err := s.ledger.Recruit(s.game, "mallory", model.UnitInfantry, 1, base)
	s.ErrorIs(err, model.ErrInvalidPlayer)
}

// Build tests

func (s *LedgerSuite) TestBuildGasPlantOnBaseIsMismatch() {
	s.game.Players[0].Balance = 100

	_, err := s.ledger.Build(s.game, "alice", base, model.BuildingGasPlant)
	s.ErrorIs(err, model.ErrBuildingTypeMismatch)
	s.Equal(uint32(100), s.balance())
}

func (s *LedgerSuite) TestBuildOnForeignTileIsNotYourTile() {
	_, err := s.ledger.Build(s.game, "alice", faraway, model.BuildingGasPlant)
	s.ErrorIs(err, model.ErrNotYourTile)
}

func (s *LedgerSuite) TestBuildWithoutFunds() {
	_, err := s.ledger.Build(s.game, "alice", plain, model.BuildingGasPlant)
	s.ErrorIs(err, model.ErrNotEnoughFunds)
	s.Nil(s.tile(plain).Building)
}

func (s *LedgerSuite) TestBuildGasPlantDeductsTwelve() {
	s.game.Players[0].Balance = 15

	res, err := s.ledger.Build(s.game, "alice", plain, model.BuildingGasPlant)
	s.Require().NoError(err)

	s.Equal(uint32(12), res.Cost)
	s.Equal(uint32(3), s.balance())
	s.Equal(&model.Building{Type: model.BuildingGasPlant, Level: 1}, s.tile(plain).Building)
}

func (s *LedgerSuite) TestBuildBaseIsRejected() {
	s.game.Players[0].Balance = 100

	_, err := s.ledger.Build(s.game, "alice", plain, model.BuildingBase)
	s.ErrorIs(err, model.ErrCannotBuildBase)
}

func (s *LedgerSuite) TestUpgradeBaseUntilMaxLevel() {
	s.game.Players[0].Balance = 40

	res, err := s.ledger.Build(s.game, "alice", base, model.BuildingBase)
	s.Require().NoError(err)
	s.True(res.Upgraded)
	s.Equal(uint8(2), res.Level)
	s.Equal(uint32(12), res.Cost)

	res, err = s.ledger.Build(s.game, "alice", base, model.BuildingBase)
	s.Require().NoError(err)
	s.Equal(uint8(3), res.Level)
	s.Equal(uint32(22), res.Cost)
	s.Equal(uint32(6), s.balance())

	_, err = s.ledger.Build(s.game, "alice", base, model.BuildingBase)
	s.ErrorIs(err, model.ErrMaxLevelReached)
}

// Income tests

func (s *LedgerSuite) TestIncomeCountsBaseAndTileLevels() {
	s.Equal(uint32(3), s.ledger.Income(s.game, "alice"))

	s.tile(plain).Level = 3
	s.tile(plain).Building = &model.Building{Type: model.BuildingGasPlant, Level: 2}
	s.Equal(uint32(6), s.ledger.Income(s.game, "alice"))
}

func (s *LedgerSuite) TestCloseTurnRestoresStaminaAndPays() {
	s.tile(base).Units.Stamina = 0
	s.game.Players[0].AttackPoints = model.MaxAttackPoints

	income := s.ledger.CloseTurn(s.game, s.game.Players[0])

	s.Equal(uint32(3), income)
	s.Equal(uint32(13), s.balance())
	s.Equal(uint8(1), s.tile(base).Units.Stamina)
	s.Equal(model.MaxAttackPoints, s.game.Players[0].AttackPoints)
}

func (s *LedgerSuite) TestCloseTurnSaturatesBalance() {
	s.game.Players[0].Balance = math.MaxUint32 - 1

	s.ledger.CloseTurn(s.game, s.game.Players[0])
	s.Equal(uint32(math.MaxUint32), s.balance())
}

package economy

import (
	"math"
	"math/bits"

	"github.com/mcoot/conquest-go/internal/model"
)

// RecruitResult describes a successful recruitment
type RecruitResult struct {
	Cost     uint32
	Quantity uint16 // stack size after recruiting
}

// BuildResult describes a successful construction or upgrade
type BuildResult struct {
	Cost     uint32
	Level    uint8
	Upgraded bool
}

// Ledger applies recruitment, construction and income to a game.
// Every method validates fully before touching the game.
type Ledger struct{}

// New creates a new Ledger
func New() *Ledger {
	return &Ledger{}
}

// Recruit buys quantity units of unitType onto a tile the player owns
func (l *Ledger) Recruit(g *model.Game, player model.PlayerID, unitType model.UnitType, quantity int, pos model.Position) (*RecruitResult, error) {
	_, slot := g.SlotOf(player)
	if slot == nil {
		return nil, model.ErrInvalidPlayer
	}
	tile, err := g.Tile(pos)
	if err != nil {
		return nil, err
	}
	if tile.Owner != player {
		return nil, model.ErrTileNotOwned
	}
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	switch unitType {
	case model.UnitTank:
		if !tile.HasBuilding(model.BuildingTankFactory) {
			return nil, model.ErrRequiresTankFactory
		}
	case model.UnitPlane:
		if !tile.HasBuilding(model.BuildingPlaneFactory) {
			return nil, model.ErrRequiresPlaneFactory
		}
	case model.UnitInfantry:
	default:
		return nil, model.ErrInvalidUnitType
	}
	if tile.Units != nil && tile.Units.Type != unitType {
		return nil, model.ErrDifferentUnitTypeOnTile
	}

	price, _ := unitType.Cost()
	hi, cost := bits.Mul64(uint64(quantity), uint64(price))
	if hi > 0 || cost > uint64(slot.Balance) {
		return nil, model.ErrInsufficientFunds
	}

	existing := 0
	if tile.Units != nil {
		existing = int(tile.Units.Quantity)
	}
	if existing+quantity > math.MaxUint16 {
		return nil, model.ErrTooManyUnits
	}

	slot.Balance -= uint32(cost)
	if tile.Units == nil {
		tile.Units = &model.Units{Type: unitType, Stamina: unitType.MaxStamina()}
	}
	tile.Units.Quantity = uint16(existing + quantity)

	return &RecruitResult{Cost: uint32(cost), Quantity: tile.Units.Quantity}, nil
}

// Build constructs a new building, or upgrades the existing one of the same type
func (l *Ledger) Build(g *model.Game, player model.PlayerID, pos model.Position, buildingType model.BuildingType) (*BuildResult, error) {
	_, slot := g.SlotOf(player)
	if slot == nil {
		return nil, model.ErrInvalidPlayer
	}
	tile, err := g.Tile(pos)
	if err != nil {
		return nil, err
	}
	if tile.Owner != player {
		return nil, model.ErrNotYourTile
	}
	if _, err := model.ParseBuildingType(string(buildingType)); err != nil {
		return nil, err
	}

	if existing := tile.Building; existing != nil {
		if existing.Type != buildingType {
			return nil, model.ErrBuildingTypeMismatch
		}
		if existing.Level >= existing.Type.MaxLevel() {
			return nil, model.ErrMaxLevelReached
		}
		cost := existing.UpgradeCost()
		if slot.Balance < cost {
			return nil, model.ErrNotEnoughFunds
		}
		slot.Balance -= cost
		existing.Level++
		return &BuildResult{Cost: cost, Level: existing.Level, Upgraded: true}, nil
	}

	cost, buildable := buildingType.ConstructionCost()
	if !buildable {
		return nil, model.ErrCannotBuildBase
	}
	if slot.Balance < cost {
		return nil, model.ErrNotEnoughFunds
	}
	slot.Balance -= cost
	tile.Building = &model.Building{Type: buildingType, Level: 1}
	return &BuildResult{Cost: cost, Level: 1}, nil
}

// Income returns what the player's tiles and buildings yield per turn
func (l *Ledger) Income(g *model.Game, player model.PlayerID) uint32 {
	var total uint32
	g.EachTile(func(_ model.Position, t *model.Tile) {
		if t.Owner == player {
			total = saturatingAdd(total, t.Yield())
		}
	})
	return total
}

// CloseTurn runs the turn boundary for one player: their stacks are restored to
// full stamina, their income is paid and they gain an attack point.
func (l *Ledger) CloseTurn(g *model.Game, slot *model.PlayerSlot) uint32 {
	g.EachTile(func(_ model.Position, t *model.Tile) {
		if t.Owner == slot.Player && t.Units != nil {
			t.Units.Stamina = t.Units.Type.MaxStamina()
		}
	})

	income := l.Income(g, slot.Player)
	slot.Balance = saturatingAdd(slot.Balance, income)
	if slot.AttackPoints < model.MaxAttackPoints {
		slot.AttackPoints++
	}
	return income
}

func saturatingAdd(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

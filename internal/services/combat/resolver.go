package combat

import (
	"github.com/mcoot/conquest-go/internal/model"
)

// OutcomeKind classifies how a move ended
type OutcomeKind string

const (
	OutcomeRelocated OutcomeKind = "relocated" // moved onto a tile with no stack
	OutcomeMerged    OutcomeKind = "merged"    // joined an own stack of the same type
	OutcomeCaptured  OutcomeKind = "captured"  // won a fight and took the tile
	OutcomeRepelled  OutcomeKind = "repelled"  // lost a fight and was wiped out
)

const (
	OrthogonalCost uint8 = 1
	DiagonalCost   uint8 = 2
)

// Outcome describes the full effect of a move, computed before anything is applied
type Outcome struct {
	Kind             OutcomeKind
	From             model.Position
	To               model.Position
	UnitType         model.UnitType
	Cost             uint8
	Combat           bool
	Defender         model.PlayerID // empty for neutral garrisons
	AttackerQuantity uint16
	DefenderQuantity uint16
	Survivors        uint16 // stack now on the destination, zero when repelled
	BaseDestroyed    bool
	DestroyedOwner   model.PlayerID
}

// Resolver moves stacks and resolves the fights that follow
type Resolver struct{}

// New creates a new Resolver
func New() *Resolver {
	return &Resolver{}
}

// MoveCost returns the stamina needed to step from one tile to another.
// Orthogonal steps cost 1, diagonal steps cost 2, anything else is not a step.
func MoveCost(from, to model.Position) (uint8, error) {
	dr := abs(from.Row - to.Row)
	dc := abs(from.Col - to.Col)
	switch {
	case dr+dc == 1:
		return OrthogonalCost, nil
	case dr == 1 && dc == 1:
		return DiagonalCost, nil
	default:
		return 0, model.ErrInvalidMovement
	}
}

// Plan validates a move and computes its outcome without changing the game
func (r *Resolver) Plan(g *model.Game, player model.PlayerID, from, to model.Position) (*Outcome, error) {
	_, slot := g.SlotOf(player)
	if slot == nil {
		return nil, model.ErrInvalidPlayer
	}
	src, err := g.Tile(from)
	if err != nil {
		return nil, err
	}
	dst, err := g.Tile(to)
	if err != nil {
		return nil, err
	}
	if src.Owner != player {
		return nil, model.ErrNotYourUnits
	}
	if src.Units == nil {
		return nil, model.ErrNoUnitsToMove
	}
	cost, err := MoveCost(from, to)
	if err != nil {
		return nil, err
	}
	if src.Units.Stamina < cost {
		return nil, model.ErrNotEnoughStamina
	}

	out := &Outcome{
		From:             from,
		To:               to,
		UnitType:         src.Units.Type,
		Cost:             cost,
		AttackerQuantity: src.Units.Quantity,
	}

	switch {
	case dst.Units == nil:
		out.Kind = OutcomeRelocated
		out.Survivors = src.Units.Quantity
	case dst.Owner == player:
		if dst.Units.Type != src.Units.Type {
			return nil, model.ErrTileOccupiedByOtherUnitType
		}
		if int(dst.Units.Quantity)+int(src.Units.Quantity) > int(^uint16(0)) {
			return nil, model.ErrTooManyUnits
		}
		out.Kind = OutcomeMerged
		out.Survivors = dst.Units.Quantity + src.Units.Quantity
	default:
		if slot.AttackPoints == 0 {
			return nil, model.ErrNotEnoughAttackPoints
		}
		out.Combat = true
		out.Defender = dst.Owner
		out.DefenderQuantity = dst.Units.Quantity
		if src.Units.Quantity > dst.Units.Quantity {
			out.Kind = OutcomeCaptured
			out.Survivors = src.Units.Quantity - dst.Units.Quantity
		} else {
			out.Kind = OutcomeRepelled
		}
	}

	if out.Kind != OutcomeRepelled && out.Kind != OutcomeMerged &&
		dst.Owner != player && dst.HasBuilding(model.BuildingBase) {
		out.BaseDestroyed = true
		out.DestroyedOwner = dst.Owner
	}
	return out, nil
}

// Apply commits a planned outcome to the game
func (r *Resolver) Apply(g *model.Game, player model.PlayerID, out *Outcome) {
	_, slot := g.SlotOf(player)
	src, _ := g.Tile(out.From)
	dst, _ := g.Tile(out.To)

	src.Units = nil
	if out.Combat {
		slot.AttackPoints--
	}
	if out.Kind == OutcomeRepelled {
		return
	}

	dst.Owner = player
	dst.Units = &model.Units{Type: out.UnitType, Quantity: out.Survivors, Stamina: 0}
	if out.BaseDestroyed {
		dst.Building = nil
	}
}

// Move validates and applies a move in one step
func (r *Resolver) Move(g *model.Game, player model.PlayerID, from, to model.Position) (*Outcome, error) {
	out, err := r.Plan(g, player, from, to)
	if err != nil {
		return nil, err
	}
	r.Apply(g, player, out)
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package bot

import "github.com/mcoot/conquest-go/internal/model"

// DesiredGarrison is how many infantry a heuristic bot keeps recruiting towards
const DesiredGarrison = 30

// HeuristicStrategy grows its economy first and only attacks fights it wins
type HeuristicStrategy struct{}

// NewHeuristicStrategy creates a new HeuristicStrategy
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

// PlanEconomy upgrades the base once the army is big enough, then adds a gas
// plant, and otherwise recruits infantry on the base
func (s *HeuristicStrategy) PlanEconomy(game *model.Game, slotIdx int) (Action, bool) {
	slot := game.Players[slotIdx]
	base, baseLevel, ok := findBase(game, slot.Player)
	if !ok {
		return Action{}, false
	}

	units := 0
	hasGasPlant := false
	var freeTile *model.Position
	game.EachTile(func(pos model.Position, t *model.Tile) {
		if t.Owner != slot.Player {
			return
		}
		if t.Units != nil {
			units += int(t.Units.Quantity)
		}
		if t.HasBuilding(model.BuildingGasPlant) {
			hasGasPlant = true
		}
		if t.Building == nil && freeTile == nil {
			p := pos
			freeTile = &p
		}
	})

	switch {
	case (baseLevel == 1 && units >= 5) || (baseLevel == 2 && units >= 20):
		cost := model.Building{Type: model.BuildingBase, Level: baseLevel}.UpgradeCost()
		if slot.Balance < cost {
			return Action{}, false
		}
		return Action{Type: ActionBuild, At: base, BuildingType: model.BuildingBase}, true

	case baseLevel >= 2 && units > 10 && !hasGasPlant:
		cost, _ := model.BuildingGasPlant.ConstructionCost()
		if freeTile == nil || slot.Balance < cost {
			return Action{}, false
		}
		return Action{Type: ActionBuild, At: *freeTile, BuildingType: model.BuildingGasPlant}, true

	default:
		return recruitOnBase(game, slot, base, DesiredGarrison)
	}
}

// NextMove sends the first stack that has a winnable orthogonal target at it
func (s *HeuristicStrategy) NextMove(game *model.Game, slotIdx int) (Action, bool) {
	slot := game.Players[slotIdx]
	for _, from := range ownStacks(game, slot.Player) {
		src, _ := game.Tile(from)
		for _, to := range orthogonalNeighbours(game, from) {
			dst, _ := game.Tile(to)
			if dst.Owner == slot.Player {
				continue
			}
			if dst.Units == nil {
				return Action{Type: ActionMove, From: from, To: to}, true
			}
			if slot.AttackPoints > 0 && src.Units.Quantity > dst.Units.Quantity {
				return Action{Type: ActionMove, From: from, To: to}, true
			}
		}
	}
	return Action{}, false
}

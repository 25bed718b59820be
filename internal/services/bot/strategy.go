package bot

import "github.com/mcoot/conquest-go/internal/model"

// ActionType represents the type of action a bot takes
type ActionType string

const (
	ActionRecruit ActionType = "recruit"
	ActionBuild   ActionType = "build"
	ActionMove    ActionType = "move"
)

// Action is a single decision made by a bot. Recruit and build use At;
// moves use From and To.
type Action struct {
	Type         ActionType
	At           model.Position
	From         model.Position
	To           model.Position
	UnitType     model.UnitType
	Quantity     int
	BuildingType model.BuildingType
}

// Strategy defines how a bot spends its turn
type Strategy interface {
	// PlanEconomy picks the single recruit or build action taken at the start of the turn
	PlanEconomy(game *model.Game, slot int) (Action, bool)
	// NextMove picks the next stack movement, or reports false when the bot is done
	NextMove(game *model.Game, slot int) (Action, bool)
}

// ownStacks lists the bot's tiles holding a stack that can still move
func ownStacks(game *model.Game, player model.PlayerID) []model.Position {
	var out []model.Position
	game.EachTile(func(pos model.Position, t *model.Tile) {
		if t.Owner == player && t.Units != nil && t.Units.Stamina > 0 {
			out = append(out, pos)
		}
	})
	return out
}

// orthogonalNeighbours returns the in-bounds tiles one step up, down, left and right
func orthogonalNeighbours(game *model.Game, pos model.Position) []model.Position {
	candidates := []model.Position{
		{Row: pos.Row - 1, Col: pos.Col},
		{Row: pos.Row + 1, Col: pos.Col},
		{Row: pos.Row, Col: pos.Col - 1},
		{Row: pos.Row, Col: pos.Col + 1},
	}
	out := candidates[:0]
	for _, c := range candidates {
		if game.InBounds(c) {
			out = append(out, c)
		}
	}
	return out
}

// findBase returns the position and level of the player's first base
func findBase(game *model.Game, player model.PlayerID) (model.Position, uint8, bool) {
	var (
		pos   model.Position
		level uint8
		found bool
	)
	game.EachTile(func(p model.Position, t *model.Tile) {
		if !found && t.Owner == player && t.HasBuilding(model.BuildingBase) {
			pos, level, found = p, t.Building.Level, true
		}
	})
	return pos, level, found
}

// recruitOnBase tops up the base stack with up to want infantry the bot can afford
func recruitOnBase(game *model.Game, slot *model.PlayerSlot, base model.Position, want int) (Action, bool) {
	tile, _ := game.Tile(base)
	if tile.Units != nil && tile.Units.Type != model.UnitInfantry {
		return Action{}, false
	}
	current := 0
	if tile.Units != nil {
		current = int(tile.Units.Quantity)
	}
	price, _ := model.UnitInfantry.Cost()
	quantity := min(want-current, int(slot.Balance/price))
	if quantity <= 0 {
		return Action{}, false
	}
	return Action{Type: ActionRecruit, At: base, UnitType: model.UnitInfantry, Quantity: quantity}, true
}

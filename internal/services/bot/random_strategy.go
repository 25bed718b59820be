package bot

import (
	"github.com/mcoot/conquest-go/internal/dependencies/random"
	"github.com/mcoot/conquest-go/internal/model"
)

// RandomStrategy recruits a random amount and wanders its stacks around
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// PlanEconomy recruits between zero and everything the bot can afford on its base
func (s *RandomStrategy) PlanEconomy(game *model.Game, slotIdx int) (Action, bool) {
	slot := game.Players[slotIdx]
	base, _, ok := findBase(game, slot.Player)
	if !ok {
		return Action{}, false
	}
	tile, _ := game.Tile(base)
	current := 0
	if tile.Units != nil {
		current = int(tile.Units.Quantity)
	}
	want := current + s.random.Intn(int(slot.Balance)+1)
	return recruitOnBase(game, slot, base, want)
}

// NextMove picks uniformly among the legal orthogonal moves plus stopping
func (s *RandomStrategy) NextMove(game *model.Game, slotIdx int) (Action, bool) {
	slot := game.Players[slotIdx]

	var moves []Action
	for _, from := range ownStacks(game, slot.Player) {
		src, _ := game.Tile(from)
		for _, to := range orthogonalNeighbours(game, from) {
			dst, _ := game.Tile(to)
			switch {
			case dst.Units == nil:
			case dst.Owner == slot.Player:
				if dst.Units.Type != src.Units.Type {
					continue
				}
			case slot.AttackPoints == 0:
				continue
			}
			moves = append(moves, Action{Type: ActionMove, From: from, To: to})
		}
	}
	if len(moves) == 0 {
		return Action{}, false
	}

	pick := s.random.Intn(len(moves) + 1)
	if pick >= len(moves) {
		return Action{}, false
	}
	return moves[pick], true
}

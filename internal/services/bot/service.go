package bot

import (
	"fmt"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/combat"
	"github.com/mcoot/conquest-go/internal/services/economy"
)

const (
	// MaxBotActions is a safety limit on the actions a bot takes in one turn
	MaxBotActions = 64
)

// Service plays the turns of bot-occupied slots using the same rules as humans
type Service struct {
	strategies map[string]Strategy
	resolver   *combat.Resolver
	ledger     *economy.Ledger
}

// NewService creates a new bot Service
func NewService(strategies map[string]Strategy, resolver *combat.Resolver, ledger *economy.Ledger) *Service {
	return &Service{
		strategies: strategies,
		resolver:   resolver,
		ledger:     ledger,
	}
}

// HasStrategy reports whether a strategy name is registered
func (s *Service) HasStrategy(name string) bool {
	_, ok := s.strategies[name]
	return ok
}

// PlayTurn runs one bot turn for the given slot and returns the actions applied.
// An action the rules reject ends the turn early and leaves the game unchanged.
func (s *Service) PlayTurn(game *model.Game, slotIdx int) []Action {
	slot := game.Players[slotIdx]
	if slot == nil || !slot.IsBot || !slot.IsAlive {
		return nil
	}
	strategy, ok := s.strategies[game.BotStrategy]
	if !ok {
		strategy, ok = s.strategies[model.BotStrategyHeuristic]
		if !ok {
			return nil
		}
	}

	var taken []Action
	if action, ok := strategy.PlanEconomy(game, slotIdx); ok {
		if err := s.apply(game, slot.Player, action); err == nil {
			taken = append(taken, action)
		}
	}

	for len(taken) < MaxBotActions {
		action, ok := strategy.NextMove(game, slotIdx)
		if !ok {
			break
		}
		if err := s.apply(game, slot.Player, action); err != nil {
			break
		}
		taken = append(taken, action)
	}
	return taken
}

func (s *Service) apply(game *model.Game, player model.PlayerID, action Action) error {
	switch action.Type {
	case ActionRecruit:
		_, err := s.ledger.Recruit(game, player, action.UnitType, action.Quantity, action.At)
		return err
	case ActionBuild:
		_, err := s.ledger.Build(game, player, action.At, action.BuildingType)
		return err
	case ActionMove:
		_, err := s.resolver.Move(game, player, action.From, action.To)
		return err
	default:
		return fmt.Errorf("unknown bot action %q", action.Type)
	}
}

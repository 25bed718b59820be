package model

import "fmt"

// Bot strategy constants
const (
	BotStrategyHeuristic = "heuristic"
	BotStrategyRandom    = "random"
)

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyHeuristic:
		return "Heuristic"
	case BotStrategyRandom:
		return "Random"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid bot strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyHeuristic, BotStrategyRandom}
}

// BotPlayerID returns the identity seated in a bot slot
func BotPlayerID(gameID GameID, slot int) PlayerID {
	return PlayerID(fmt.Sprintf("bot-%d-%d", gameID, slot))
}

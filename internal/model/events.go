package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Session events
	EventGameCreated  EventType = "game_created"
	EventPlayerJoined EventType = "player_joined"
	EventGameStarted  EventType = "game_started"
	EventGameFinished EventType = "game_finished"

	// Turn events
	EventUnitMoved         EventType = "unit_moved"
	EventCombatResolved    EventType = "combat_resolved"
	EventUnitsRecruited    EventType = "units_recruited"
	EventConstructionBuilt EventType = "construction_built"
	EventTurnEnded         EventType = "turn_ended"
	EventBotActed          EventType = "bot_acted"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	PlayerID  PlayerID // The player who triggered or is affected
	Payload   any      // Type-specific data
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	SlotIndex int
	Base      Position
}

// UnitMovedPayload contains data for movement events
type UnitMovedPayload struct {
	From     Position
	To       Position
	UnitType UnitType
	Quantity uint16
}

// CombatResolvedPayload contains data for combat events
type CombatResolvedPayload struct {
	From             Position
	To               Position
	Defender         PlayerID // empty for neutral garrisons
	AttackerQuantity uint16
	DefenderQuantity uint16
	Survivors        uint16
	Captured         bool
	BaseDestroyed    bool
}

// UnitsRecruitedPayload contains data for recruitment events
type UnitsRecruitedPayload struct {
	Position Position
	UnitType UnitType
	Quantity uint16
	Cost     uint32
}

// ConstructionBuiltPayload contains data for construction events
type ConstructionBuiltPayload struct {
	Position     Position
	BuildingType BuildingType
	Level        uint8
	Cost         uint32
}

// TurnEndedPayload contains data for turn ended events
type TurnEndedPayload struct {
	Round              uint32
	CurrentPlayerIndex int
	NextPlayer         PlayerID
	Income             uint32
	TurnTimestamp      int64
}

// BotActedPayload summarises the actions a bot took during a round
type BotActedPayload struct {
	SlotIndex int
	Actions   int
}

// GameFinishedPayload contains data for game finished events
type GameFinishedPayload struct {
	Winner PlayerID // Empty if nobody survived
	Round  uint32
}

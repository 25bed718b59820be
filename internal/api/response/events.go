package response

import (
	"time"

	"github.com/mcoot/conquest-go/internal/model"
)

// Event is a game event as pushed over the event stream
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    uint32    `json:"game_id"`
	PlayerID  string    `json:"player_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// PlayerJoined is the payload of player_joined
type PlayerJoined struct {
	SlotIndex int      `json:"slot_index"`
	Base      Position `json:"base"`
}

// UnitMoved is the payload of unit_moved
type UnitMoved struct {
	From     Position `json:"from"`
	To       Position `json:"to"`
	UnitType string   `json:"unit_type"`
	Quantity uint16   `json:"quantity"`
}

// CombatResolved is the payload of combat_resolved
type CombatResolved struct {
	From             Position `json:"from"`
	To               Position `json:"to"`
	Defender         string   `json:"defender,omitempty"`
	AttackerQuantity uint16   `json:"attacker_quantity"`
	DefenderQuantity uint16   `json:"defender_quantity"`
	Survivors        uint16   `json:"survivors"`
	Captured         bool     `json:"captured"`
	BaseDestroyed    bool     `json:"base_destroyed"`
}

// UnitsRecruited is the payload of units_recruited
type UnitsRecruited struct {
	Position Position `json:"position"`
	UnitType string   `json:"unit_type"`
	Quantity uint16   `json:"quantity"`
	Cost     uint32   `json:"cost"`
}

// ConstructionBuilt is the payload of construction_built
type ConstructionBuilt struct {
	Position     Position `json:"position"`
	BuildingType string   `json:"building_type"`
	Level        uint8    `json:"level"`
	Cost         uint32   `json:"cost"`
}

// TurnEnded is the payload of turn_ended
type TurnEnded struct {
	Round              uint32 `json:"round"`
	CurrentPlayerIndex int    `json:"current_player_index"`
	NextPlayer         string `json:"next_player"`
	Income             uint32 `json:"income"`
	TurnTimestamp      int64  `json:"turn_timestamp"`
}

// BotActed is the payload of bot_acted
type BotActed struct {
	SlotIndex int `json:"slot_index"`
	Actions   int `json:"actions"`
}

// GameFinished is the payload of game_finished
type GameFinished struct {
	Winner string `json:"winner,omitempty"`
	Round  uint32 `json:"round"`
}

// EventFromModel converts model.Event, translating its payload
func EventFromModel(e model.Event) Event {
	return Event{
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
		GameID:    uint32(e.GameID),
		PlayerID:  string(e.PlayerID),
		Payload:   payloadFromModel(e.Payload),
	}
}

func payloadFromModel(payload any) any {
	switch p := payload.(type) {
	case model.PlayerJoinedPayload:
		return PlayerJoined{SlotIndex: p.SlotIndex, Base: positionFromModel(p.Base)}
	case model.UnitMovedPayload:
		return UnitMoved{
			From:     positionFromModel(p.From),
			To:       positionFromModel(p.To),
			UnitType: string(p.UnitType),
			Quantity: p.Quantity,
		}
	case model.CombatResolvedPayload:
		return CombatResolved{
			From:             positionFromModel(p.From),
			To:               positionFromModel(p.To),
			Defender:         string(p.Defender),
			AttackerQuantity: p.AttackerQuantity,
			DefenderQuantity: p.DefenderQuantity,
			Survivors:        p.Survivors,
			Captured:         p.Captured,
			BaseDestroyed:    p.BaseDestroyed,
		}
	case model.UnitsRecruitedPayload:
		return UnitsRecruited{
			Position: positionFromModel(p.Position),
			UnitType: string(p.UnitType),
			Quantity: p.Quantity,
			Cost:     p.Cost,
		}
	case model.ConstructionBuiltPayload:
		return ConstructionBuilt{
			Position:     positionFromModel(p.Position),
			BuildingType: string(p.BuildingType),
			Level:        p.Level,
			Cost:         p.Cost,
		}
	case model.TurnEndedPayload:
		return TurnEnded{
			Round:              p.Round,
			CurrentPlayerIndex: p.CurrentPlayerIndex,
			NextPlayer:         string(p.NextPlayer),
			Income:             p.Income,
			TurnTimestamp:      p.TurnTimestamp,
		}
	case model.BotActedPayload:
		return BotActed{SlotIndex: p.SlotIndex, Actions: p.Actions}
	case model.GameFinishedPayload:
		return GameFinished{Winner: string(p.Winner), Round: p.Round}
	default:
		return nil
	}
}

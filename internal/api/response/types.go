package response

import (
	"time"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/auth"
	"github.com/mcoot/conquest-go/internal/services/combat"
	"github.com/mcoot/conquest-go/internal/services/economy"
	"github.com/mcoot/conquest-go/internal/services/turn"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// Registry is the program-wide record
type Registry struct {
	GameCount uint32    `json:"game_count"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistryFromModel converts model.Registry
func RegistryFromModel(r *model.Registry) Registry {
	return Registry{GameCount: r.GameCount, CreatedAt: r.CreatedAt}
}

// Profile is a player's long-lived game record
type Profile struct {
	Player         string   `json:"player"`
	Experience     uint32   `json:"experience"`
	CompletedGames uint32   `json:"completed_games"`
	ActiveGames    []uint32 `json:"active_games"`
}

// ProfileFromModel converts model.PlayerProfile
func ProfileFromModel(p *model.PlayerProfile) Profile {
	active := make([]uint32, len(p.ActiveGames))
	for i, id := range p.ActiveGames {
		active[i] = uint32(id)
	}
	return Profile{
		Player:         string(p.Player),
		Experience:     p.Experience,
		CompletedGames: p.CompletedGames,
		ActiveGames:    active,
	}
}

// Position addresses a tile
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func positionFromModel(p model.Position) Position {
	return Position{Row: p.Row, Col: p.Col}
}

// Units is the stack on a tile
type Units struct {
	Type     string `json:"type"`
	Quantity uint16 `json:"quantity"`
	Stamina  uint8  `json:"stamina"`
}

// Building is the structure on a tile
type Building struct {
	Type  string `json:"type"`
	Level uint8  `json:"level"`
}

// Tile is one cell of the map
type Tile struct {
	Owner    string    `json:"owner,omitempty"`
	Level    uint8     `json:"level"`
	Units    *Units    `json:"units,omitempty"`
	Building *Building `json:"building,omitempty"`
}

// TileFromModel converts model.Tile
func TileFromModel(t *model.Tile) Tile {
	out := Tile{Owner: string(t.Owner), Level: t.Level}
	if t.Units != nil {
		out.Units = &Units{Type: string(t.Units.Type), Quantity: t.Units.Quantity, Stamina: t.Units.Stamina}
	}
	if t.Building != nil {
		out.Building = &Building{Type: string(t.Building.Type), Level: t.Building.Level}
	}
	return out
}

// PlayerSlot is an occupied seat in a game
type PlayerSlot struct {
	Player       string `json:"player"`
	IsBot        bool   `json:"is_bot"`
	IsAlive      bool   `json:"is_alive"`
	Balance      uint32 `json:"balance"`
	AttackPoints uint8  `json:"attack_points"`
	SlotIndex    int    `json:"slot_index"`
}

// Game is the full state of a game session
type Game struct {
	ID                 uint32        `json:"id"`
	Creator            string        `json:"creator"`
	Status             string        `json:"status"`
	IsMultiplayer      bool          `json:"is_multiplayer"`
	MaxPlayers         int           `json:"max_players"`
	MapSize            string        `json:"map_size"`
	BotStrategy        string        `json:"bot_strategy"`
	Players            []*PlayerSlot `json:"players"`
	CurrentPlayerIndex int           `json:"current_player_index"`
	Round              uint32        `json:"round"`
	TurnTimestamp      int64         `json:"turn_timestamp"`
	Winner             string        `json:"winner,omitempty"`
	Tiles              [][]Tile      `json:"tiles"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// GameFromModel converts model.Game; empty slots are null
func GameFromModel(g *model.Game) Game {
	players := make([]*PlayerSlot, len(g.Players))
	for i, p := range g.Players {
		if p == nil {
			continue
		}
		players[i] = &PlayerSlot{
			Player:       string(p.Player),
			IsBot:        p.IsBot,
			IsAlive:      p.IsAlive,
			Balance:      p.Balance,
			AttackPoints: p.AttackPoints,
			SlotIndex:    p.SlotIndex,
		}
	}

	tiles := make([][]Tile, len(g.Tiles))
	for r, row := range g.Tiles {
		tiles[r] = make([]Tile, len(row))
		for c, t := range row {
			tiles[r][c] = TileFromModel(t)
		}
	}

	return Game{
		ID:                 uint32(g.ID),
		Creator:            string(g.Creator),
		Status:             string(g.Status),
		IsMultiplayer:      g.IsMultiplayer,
		MaxPlayers:         g.MaxPlayers,
		MapSize:            string(g.MapSize),
		BotStrategy:        g.BotStrategy,
		Players:            players,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		Round:              g.Round,
		TurnTimestamp:      g.TurnTimestamp,
		Winner:             string(g.Winner),
		Tiles:              tiles,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

// MoveResponse is the result of a move
type MoveResponse struct {
	Outcome          string   `json:"outcome"`
	From             Position `json:"from"`
	To               Position `json:"to"`
	Cost             uint8    `json:"cost"`
	Combat           bool     `json:"combat"`
	Defender         string   `json:"defender,omitempty"`
	AttackerQuantity uint16   `json:"attacker_quantity"`
	DefenderQuantity uint16   `json:"defender_quantity,omitempty"`
	Survivors        uint16   `json:"survivors"`
	BaseDestroyed    bool     `json:"base_destroyed,omitempty"`
}

// MoveResponseFromOutcome converts a combat outcome
func MoveResponseFromOutcome(o *combat.Outcome) MoveResponse {
	return MoveResponse{
		Outcome:          string(o.Kind),
		From:             positionFromModel(o.From),
		To:               positionFromModel(o.To),
		Cost:             o.Cost,
		Combat:           o.Combat,
		Defender:         string(o.Defender),
		AttackerQuantity: o.AttackerQuantity,
		DefenderQuantity: o.DefenderQuantity,
		Survivors:        o.Survivors,
		BaseDestroyed:    o.BaseDestroyed,
	}
}

// RecruitResponse is the result of a recruitment
type RecruitResponse struct {
	Cost     uint32 `json:"cost"`
	Quantity uint16 `json:"quantity"`
}

// RecruitResponseFromResult converts economy.RecruitResult
func RecruitResponseFromResult(r *economy.RecruitResult) RecruitResponse {
	return RecruitResponse{Cost: r.Cost, Quantity: r.Quantity}
}

// BuildResponse is the result of a construction
type BuildResponse struct {
	Cost     uint32 `json:"cost"`
	Level    uint8  `json:"level"`
	Upgraded bool   `json:"upgraded"`
}

// BuildResponseFromResult converts economy.BuildResult
func BuildResponseFromResult(r *economy.BuildResult) BuildResponse {
	return BuildResponse{Cost: r.Cost, Level: r.Level, Upgraded: r.Upgraded}
}

// BotTurn summarises one bot's round
type BotTurn struct {
	SlotIndex int `json:"slot_index"`
	Actions   int `json:"actions"`
}

// EndTurnResponse is the result of ending a turn
type EndTurnResponse struct {
	Income     uint32    `json:"income"`
	Wrapped    bool      `json:"wrapped"`
	BotTurns   []BotTurn `json:"bot_turns,omitempty"`
	Eliminated []string  `json:"eliminated,omitempty"`
	Finished   bool      `json:"finished"`
	Game       Game      `json:"game"`
}

// EndTurnResponseFromResult converts turn.Result together with the stored game
func EndTurnResponseFromResult(r *turn.Result, g *model.Game) EndTurnResponse {
	resp := EndTurnResponse{
		Income:   r.Income,
		Wrapped:  r.Wrapped,
		Finished: r.Finished,
		Game:     GameFromModel(g),
	}
	for _, bt := range r.BotTurns {
		resp.BotTurns = append(resp.BotTurns, BotTurn{SlotIndex: bt.SlotIndex, Actions: len(bt.Actions)})
	}
	for _, p := range r.Eliminated {
		resp.Eliminated = append(resp.Eliminated, string(p))
	}
	return resp
}

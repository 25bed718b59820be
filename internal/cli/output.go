package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Registry:
		fmt.Fprintf(o.w, "Games created: %d\n", v.GameCount)
	case Profile:
		o.printProfile(v)
	case Game:
		o.printGame(v)
	case MoveResult:
		o.printMoveResult(v)
	case RecruitResult:
		fmt.Fprintf(o.w, "Recruited for %d; stack is now %d\n", v.Cost, v.Quantity)
	case BuildResult:
		o.printBuildResult(v)
	case EndTurnResult:
		o.printEndTurnResult(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// Registry response type
type Registry struct {
	GameCount uint32 `json:"game_count"`
}

// Profile response type
type Profile struct {
	Player         string   `json:"player"`
	Experience     uint32   `json:"experience"`
	CompletedGames uint32   `json:"completed_games"`
	ActiveGames    []uint32 `json:"active_games"`
}

// Position response type
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Units response type
type Units struct {
	Type     string `json:"type"`
	Quantity uint16 `json:"quantity"`
	Stamina  uint8  `json:"stamina"`
}

// Building response type
type Building struct {
	Type  string `json:"type"`
	Level uint8  `json:"level"`
}

// Tile response type
type Tile struct {
	Owner    string    `json:"owner,omitempty"`
	Level    uint8     `json:"level"`
	Units    *Units    `json:"units,omitempty"`
	Building *Building `json:"building,omitempty"`
}

// PlayerSlot response type
type PlayerSlot struct {
	Player       string `json:"player"`
	IsBot        bool   `json:"is_bot"`
	IsAlive      bool   `json:"is_alive"`
	Balance      uint32 `json:"balance"`
	AttackPoints uint8  `json:"attack_points"`
	SlotIndex    int    `json:"slot_index"`
}

// Game response type
type Game struct {
	ID                 uint32        `json:"id"`
	Creator            string        `json:"creator"`
	Status             string        `json:"status"`
	IsMultiplayer      bool          `json:"is_multiplayer"`
	MaxPlayers         int           `json:"max_players"`
	MapSize            string        `json:"map_size"`
	Players            []*PlayerSlot `json:"players"`
	CurrentPlayerIndex int           `json:"current_player_index"`
	Round              uint32        `json:"round"`
	Winner             string        `json:"winner,omitempty"`
	Tiles              [][]Tile      `json:"tiles"`
}

// MoveResult response type
type MoveResult struct {
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

// RecruitResult response type
type RecruitResult struct {
	Cost     uint32 `json:"cost"`
	Quantity uint16 `json:"quantity"`
}

// BuildResult response type
type BuildResult struct {
	Cost     uint32 `json:"cost"`
	Level    uint8  `json:"level"`
	Upgraded bool   `json:"upgraded"`
}

// BotTurn response type
type BotTurn struct {
	SlotIndex int `json:"slot_index"`
	Actions   int `json:"actions"`
}

// EndTurnResult response type
type EndTurnResult struct {
	Income     uint32    `json:"income"`
	Wrapped    bool      `json:"wrapped"`
	BotTurns   []BotTurn `json:"bot_turns,omitempty"`
	Eliminated []string  `json:"eliminated,omitempty"`
	Finished   bool      `json:"finished"`
	Game       Game      `json:"game"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printProfile(p Profile) {
	fmt.Fprintf(o.w, "Profile: %s\n", p.Player)
	fmt.Fprintf(o.w, "Experience: %d\n", p.Experience)
	fmt.Fprintf(o.w, "Completed games: %d\n", p.CompletedGames)
	if len(p.ActiveGames) > 0 {
		ids := make([]string, len(p.ActiveGames))
		for i, id := range p.ActiveGames {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(o.w, "Active games: %s\n", strings.Join(ids, ", "))
	}
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %d (%s map)\n", g.ID, g.MapSize)
	fmt.Fprintf(o.w, "Status: %s\n", g.Status)
	fmt.Fprintf(o.w, "Round: %d\n", g.Round)

	fmt.Fprintln(o.w, "Players:")
	for i, p := range g.Players {
		if p == nil {
			fmt.Fprintf(o.w, "  %d: (empty)\n", i)
			continue
		}
		var tags []string
		if p.IsBot {
			tags = append(tags, "bot")
		}
		if !p.IsAlive {
			tags = append(tags, "eliminated")
		}
		if i == g.CurrentPlayerIndex && g.Status == "live" {
			tags = append(tags, "to move")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(o.w, "  %d: %s balance=%d ap=%d%s\n", i, p.Player, p.Balance, p.AttackPoints, tagStr)
	}

	if g.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", g.Winner)
	}

	fmt.Fprintln(o.w)
	o.printMap(g)
}

// printMap draws one cell per tile: owner slot, building initial and stack size
func (o *Output) printMap(g Game) {
	slots := make(map[string]int)
	for i, p := range g.Players {
		if p != nil {
			slots[p.Player] = i
		}
	}

	for r, row := range g.Tiles {
		var b strings.Builder
		fmt.Fprintf(&b, "%2d ", r)
		for _, t := range row {
			b.WriteString(cell(t, slots))
		}
		fmt.Fprintln(o.w, b.String())
	}
}

func cell(t Tile, slots map[string]int) string {
	owner := "."
	if t.Owner != "" {
		owner = fmt.Sprint(slots[t.Owner])
	}
	building := " "
	if t.Building != nil {
		building = strings.ToUpper(t.Building.Type[:1])
	}
	units := "   "
	if t.Units != nil {
		units = fmt.Sprintf("%-3d", min(int(t.Units.Quantity), 999))
	}
	return "[" + owner + building + units + "]"
}

func (o *Output) printMoveResult(m MoveResult) {
	fmt.Fprintf(o.w, "Moved (%d,%d) -> (%d,%d) for %d stamina: %s\n",
		m.From.Row, m.From.Col, m.To.Row, m.To.Col, m.Cost, m.Outcome)
	if m.Combat {
		defender := m.Defender
		if defender == "" {
			defender = "neutral"
		}
		fmt.Fprintf(o.w, "Combat: %d vs %d (%s), %d survived\n",
			m.AttackerQuantity, m.DefenderQuantity, defender, m.Survivors)
	}
	if m.BaseDestroyed {
		fmt.Fprintln(o.w, "Enemy base destroyed!")
	}
}

func (o *Output) printBuildResult(b BuildResult) {
	verb := "Built"
	if b.Upgraded {
		verb = "Upgraded"
	}
	fmt.Fprintf(o.w, "%s for %d; level is now %d\n", verb, b.Cost, b.Level)
}

func (o *Output) printEndTurnResult(e EndTurnResult) {
	fmt.Fprintf(o.w, "Turn ended, income %d\n", e.Income)
	for _, bt := range e.BotTurns {
		fmt.Fprintf(o.w, "Bot in slot %d took %d actions\n", bt.SlotIndex, bt.Actions)
	}
	if len(e.Eliminated) > 0 {
		fmt.Fprintf(o.w, "Eliminated: %s\n", strings.Join(e.Eliminated, ", "))
	}
	if e.Finished {
		fmt.Fprintln(o.w, "Game over!")
	}
	o.printGame(e.Game)
}

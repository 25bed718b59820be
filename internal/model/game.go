package model

import (
	"fmt"
	"strconv"
	"time"
)

// MaxPlayers is the fixed number of player slots in every game
const MaxPlayers = 4

const (
	StartingBalance      uint32 = 10
	StartingAttackPoints uint8  = 3
	MaxAttackPoints      uint8  = 5
)

// GameID uniquely identifies a game; ids are handed out by the registry counter
type GameID uint32

func (id GameID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseGameID parses the decimal form of a game id
func ParseGameID(s string) (GameID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, ErrGameNotFound
	}
	return GameID(v), nil
}

// GameStatus represents the lifecycle phase of a game
type GameStatus string

const (
	GameStatusNotStarted GameStatus = "not_started" // Waiting for the second player
	GameStatusLive       GameStatus = "live"        // Turns are being played
	GameStatusFinished   GameStatus = "finished"    // Terminal
)

// rank orders statuses so transitions can be checked for going forward
func (s GameStatus) rank() int {
	switch s {
	case GameStatusNotStarted:
		return 0
	case GameStatusLive:
		return 1
	case GameStatusFinished:
		return 2
	default:
		panic(fmt.Sprintf("unknown game status %q", string(s)))
	}
}

// CanTransitionTo reports whether moving to next keeps status monotonic
func (s GameStatus) CanTransitionTo(next GameStatus) bool {
	return next.rank() >= s.rank()
}

// MapSize selects the layout produced by the map generator
type MapSize string

const (
	MapSmall  MapSize = "small"
	MapMedium MapSize = "medium"
	MapLarge  MapSize = "large"
)

// ParseMapSize validates a map size name
func ParseMapSize(s string) (MapSize, error) {
	switch m := MapSize(s); m {
	case MapSmall, MapMedium, MapLarge:
		return m, nil
	default:
		return "", ErrInvalidMapSize
	}
}

// PlayerSlot is an occupied position in a game's player list
type PlayerSlot struct {
	Player       PlayerID
	IsBot        bool
	IsAlive      bool
	Balance      uint32
	AttackPoints uint8
	SlotIndex    int
}

// Game is a single session: its map, its players and its turn state
type Game struct {
	ID            GameID
	Creator       PlayerID
	Status        GameStatus
	IsMultiplayer bool
	MaxPlayers    int
	MapSize       MapSize
	BotStrategy   string

	Players            [MaxPlayers]*PlayerSlot
	CurrentPlayerIndex int
	Round              uint32
	TurnTimestamp      int64 // unix millis, strictly increasing per EndTurn
	Winner             PlayerID

	Tiles [][]*Tile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequiredHumans returns how many human players must be seated before play starts
func (g *Game) RequiredHumans() int {
	if g.IsMultiplayer {
		return 2
	}
	return 1
}

// Humans returns the number of seated human players
func (g *Game) Humans() int {
	n := 0
	for _, p := range g.Players {
		if p != nil && !p.IsBot {
			n++
		}
	}
	return n
}

// OccupiedSlots returns the number of non-empty player slots
func (g *Game) OccupiedSlots() int {
	n := 0
	for _, p := range g.Players {
		if p != nil {
			n++
		}
	}
	return n
}

// SlotOf returns the slot index and slot for a player, or -1 and nil
func (g *Game) SlotOf(player PlayerID) (int, *PlayerSlot) {
	if player == "" {
		return -1, nil
	}
	for i, p := range g.Players {
		if p != nil && p.Player == player {
			return i, p
		}
	}
	return -1, nil
}

// CurrentPlayer returns the slot whose turn it is
func (g *Game) CurrentPlayer() *PlayerSlot {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= MaxPlayers {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// InBounds reports whether pos addresses a tile
func (g *Game) InBounds(pos Position) bool {
	if pos.Row < 0 || pos.Row >= len(g.Tiles) {
		return false
	}
	return pos.Col >= 0 && pos.Col < len(g.Tiles[pos.Row])
}

// Tile returns the tile at pos
func (g *Game) Tile(pos Position) (*Tile, error) {
	if !g.InBounds(pos) {
		return nil, ErrOutOfBounds
	}
	return g.Tiles[pos.Row][pos.Col], nil
}

// TileCount returns the total number of tiles on the map
func (g *Game) TileCount() int {
	n := 0
	for _, row := range g.Tiles {
		n += len(row)
	}
	return n
}

// EachTile calls fn for every tile in row-major order
func (g *Game) EachTile(fn func(pos Position, t *Tile)) {
	for r, row := range g.Tiles {
		for c, t := range row {
			fn(Position{Row: r, Col: c}, t)
		}
	}
}

// OwnsBase reports whether the player still holds a base tile
func (g *Game) OwnsBase(player PlayerID) bool {
	found := false
	g.EachTile(func(_ Position, t *Tile) {
		if t.Owner == player && t.HasBuilding(BuildingBase) {
			found = true
		}
	})
	return found
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	for i, p := range g.Players {
		if p != nil {
			slot := *p
			c.Players[i] = &slot
		}
	}
	c.Tiles = make([][]*Tile, len(g.Tiles))
	for r, row := range g.Tiles {
		c.Tiles[r] = make([]*Tile, len(row))
		for col, t := range row {
			c.Tiles[r][col] = t.Clone()
		}
	}
	return &c
}

// CheckInvariants verifies the structural rules every stored game must obey
func (g *Game) CheckInvariants() error {
	occupied := g.OccupiedSlots()
	if occupied > g.MaxPlayers || g.MaxPlayers > MaxPlayers {
		return fmt.Errorf("game %d: %d occupied slots exceeds max %d", g.ID, occupied, g.MaxPlayers)
	}
	if g.CurrentPlayer() == nil {
		return fmt.Errorf("game %d: current player index %d is not an occupied slot", g.ID, g.CurrentPlayerIndex)
	}
	if g.Round < 1 {
		return fmt.Errorf("game %d: round %d", g.ID, g.Round)
	}
	for i, p := range g.Players {
		if p != nil && p.SlotIndex != i {
			return fmt.Errorf("game %d: slot %d records index %d", g.ID, i, p.SlotIndex)
		}
	}
	var err error
	g.EachTile(func(pos Position, t *Tile) {
		if err != nil {
			return
		}
		if t == nil {
			err = fmt.Errorf("game %d: missing tile at %s", g.ID, pos)
			return
		}
		if t.Units != nil {
			if t.Units.Quantity == 0 {
				err = fmt.Errorf("game %d: empty stack at %s", g.ID, pos)
				return
			}
			if t.Units.Stamina > t.Units.Type.MaxStamina() {
				err = fmt.Errorf("game %d: stamina %d above max at %s", g.ID, t.Units.Stamina, pos)
				return
			}
		}
		if !t.IsNeutral() {
			if _, slot := g.SlotOf(t.Owner); slot == nil {
				err = fmt.Errorf("game %d: tile %s owned by non-player %s", g.ID, pos, t.Owner)
			}
		}
	})
	return err
}

// MustHoldInvariants panics when CheckInvariants fails. A failure here is a
// bug in the engine, never a caller error.
func (g *Game) MustHoldInvariants() {
	if err := g.CheckInvariants(); err != nil {
		panic("invariant violated: " + err.Error())
	}
}

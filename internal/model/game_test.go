package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGame() *Game {
	rows := []int{3, 5, 3}
	tiles := make([][]*Tile, len(rows))
	for r, n := range rows {
		tiles[r] = make([]*Tile, n)
		for c := range tiles[r] {
			tiles[r][c] = &Tile{Level: 1}
		}
	}
	tiles[1][1] = &Tile{
		Owner:    "alice",
		Level:    1,
		Units:    &Units{Type: UnitInfantry, Quantity: 5, Stamina: 1},
		Building: &Building{Type: BuildingBase, Level: 1},
	}

	g := &Game{
		ID:         3,
		Creator:    "alice",
		Status:     GameStatusLive,
		MaxPlayers: 2,
		MapSize:    MapSmall,
		Round:      1,
		Tiles:      tiles,
	}
	g.Players[0] = &PlayerSlot{Player: "alice", IsAlive: true, Balance: StartingBalance, SlotIndex: 0}
	g.Players[1] = &PlayerSlot{Player: "bot-3-1", IsBot: true, IsAlive: true, SlotIndex: 1}
	return g
}

func TestStatusOnlyMovesForward(t *testing.T) {
	assert.True(t, GameStatusNotStarted.CanTransitionTo(GameStatusLive))
	assert.True(t, GameStatusLive.CanTransitionTo(GameStatusFinished))
	assert.True(t, GameStatusLive.CanTransitionTo(GameStatusLive))
	assert.False(t, GameStatusFinished.CanTransitionTo(GameStatusLive))
	assert.False(t, GameStatusLive.CanTransitionTo(GameStatusNotStarted))
}

func TestParseGameID(t *testing.T) {
	id, err := ParseGameID("42")
	require.NoError(t, err)
	assert.Equal(t, GameID(42), id)
	assert.Equal(t, "42", id.String())

	for _, s := range []string{"", "-1", "abc", "4294967296"} {
		_, err := ParseGameID(s)
		assert.ErrorIs(t, err, ErrGameNotFound, s)
	}
}

func TestParseMapSize(t *testing.T) {
	size, err := ParseMapSize("large")
	require.NoError(t, err)
	assert.Equal(t, MapLarge, size)

	_, err = ParseMapSize("huge")
	assert.ErrorIs(t, err, ErrInvalidMapSize)
}

func TestSeatCounts(t *testing.T) {
	g := testGame()
	assert.Equal(t, 2, g.OccupiedSlots())
	assert.Equal(t, 1, g.Humans())
	assert.Equal(t, 1, g.RequiredHumans())

	g.IsMultiplayer = true
	assert.Equal(t, 2, g.RequiredHumans())

	idx, slot := g.SlotOf("bot-3-1")
	assert.Equal(t, 1, idx)
	require.NotNil(t, slot)
	assert.True(t, slot.IsBot)

	idx, slot = g.SlotOf("")
	assert.Equal(t, -1, idx)
	assert.Nil(t, slot)
}

func TestTileAddressing(t *testing.T) {
	g := testGame()
	assert.Equal(t, 11, g.TileCount())

	_, err := g.Tile(Position{Row: 1, Col: 4})
	assert.NoError(t, err)

	for _, pos := range []Position{{-1, 0}, {0, 3}, {3, 0}, {2, -1}} {
		_, err := g.Tile(pos)
		assert.ErrorIs(t, err, ErrOutOfBounds, pos.String())
	}
}

func TestOwnsBase(t *testing.T) {
	g := testGame()
	assert.True(t, g.OwnsBase("alice"))
	assert.False(t, g.OwnsBase("bot-3-1"))

	g.Tiles[1][1].Building = nil
	assert.False(t, g.OwnsBase("alice"))
}

func TestCloneIsDeep(t *testing.T) {
	g := testGame()
	c := g.Clone()
	require.Equal(t, g, c)

	c.Players[0].Balance = 99
	c.Tiles[1][1].Units.Quantity = 1
	c.Tiles[1][1].Building.Level = 3
	c.Tiles[0][0].Owner = "alice"

	assert.Equal(t, StartingBalance, g.Players[0].Balance)
	assert.Equal(t, uint16(5), g.Tiles[1][1].Units.Quantity)
	assert.Equal(t, uint8(1), g.Tiles[1][1].Building.Level)
	assert.True(t, g.Tiles[0][0].IsNeutral())
}

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Game)
	}{
		{"current player empty", func(g *Game) { g.CurrentPlayerIndex = 2 }},
		{"round zero", func(g *Game) { g.Round = 0 }},
		{"slot index mismatch", func(g *Game) { g.Players[1].SlotIndex = 3 }},
		{"too many players", func(g *Game) { g.MaxPlayers = 1 }},
		{"empty stack", func(g *Game) { g.Tiles[1][1].Units.Quantity = 0 }},
		{"stamina above max", func(g *Game) { g.Tiles[1][1].Units.Stamina = 2 }},
		{"owner not seated", func(g *Game) { g.Tiles[0][0].Owner = "mallory" }},
		{"missing tile", func(g *Game) { g.Tiles[2][2] = nil }},
	}

	require.NoError(t, testGame().CheckInvariants())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame()
			tt.mutate(g)
			assert.Error(t, g.CheckInvariants())
			assert.Panics(t, g.MustHoldInvariants)
		})
	}
}

func TestProfileGames(t *testing.T) {
	p := &PlayerProfile{Player: "alice"}
	p.AddActiveGame(1)
	p.AddActiveGame(1)
	p.AddActiveGame(2)
	assert.Equal(t, []GameID{1, 2}, p.ActiveGames)

	c := p.Clone()
	c.AddActiveGame(3)
	assert.Len(t, p.ActiveGames, 2)

	p.CompleteGame(1, 100)
	p.CompleteGame(7, 100)
	assert.Equal(t, []GameID{2}, p.ActiveGames)
	assert.Equal(t, uint32(1), p.CompletedGames)
	assert.Equal(t, uint32(100), p.Experience)

	for i := range MaxActiveGames - 1 {
		p.AddActiveGame(GameID(10 + i))
	}
	assert.False(t, p.CanJoinAnotherGame())
}

package mapgen

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/mcoot/conquest-go/internal/model"
)

const (
	// BaseGarrison is the infantry stack placed on every new base
	BaseGarrison = 5
)

// RowLengths returns the number of tiles in each row for a map size
func RowLengths(size model.MapSize) ([]int, error) {
	switch size {
	case model.MapSmall:
		return []int{3, 5, 7, 7, 7, 5, 3}, nil
	case model.MapMedium:
		return []int{3, 5, 7, 9, 9, 7, 5, 3}, nil
	case model.MapLarge:
		return []int{3, 5, 7, 9, 9, 9, 7, 5, 3}, nil
	default:
		return nil, model.ErrInvalidMapSize
	}
}

// Garrison returns the neutral mutant stack size for a tile level
func Garrison(level uint8) uint16 {
	switch level {
	case 1:
		return 1
	case 2:
		return 3
	default:
		return 8
	}
}

// Seed derives the generation seed of a game from its id and creation time
func Seed(id model.GameID, createdAt time.Time) uint64 {
	h := fnv.New64a()
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(id))
	binary.LittleEndian.PutUint64(buf[4:], uint64(createdAt.UnixMilli()))
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// Generator builds initial map layouts
type Generator struct{}

// New creates a new Generator
func New() *Generator {
	return &Generator{}
}

// Generate builds the tile layout for a map size. The same size and seed always
// produce the same layout. No bases are placed; see PlaceBase.
func (g *Generator) Generate(size model.MapSize, seed uint64) ([][]*model.Tile, error) {
	lengths, err := RowLengths(size)
	if err != nil {
		return nil, err
	}

	safe := make(map[model.Position]bool)
	for slot := 0; slot < model.MaxPlayers; slot++ {
		base := basePosition(lengths, slot)
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				safe[model.Position{Row: base.Row + dr, Col: base.Col + dc}] = true
			}
		}
	}

	tiles := make([][]*model.Tile, len(lengths))
	index := 0
	for r, n := range lengths {
		tiles[r] = make([]*model.Tile, n)
		for c := 0; c < n; c++ {
			level := rollLevel(seed, index)
			if safe[model.Position{Row: r, Col: c}] {
				level = 1
			}
			tiles[r][c] = &model.Tile{
				Level: level,
				Units: &model.Units{
					Type:     model.UnitMutants,
					Quantity: Garrison(level),
				},
			}
			index++
		}
	}
	return tiles, nil
}

// BasePosition returns where the base for a player slot sits on a map size
func BasePosition(size model.MapSize, slot int) (model.Position, error) {
	lengths, err := RowLengths(size)
	if err != nil {
		return model.Position{}, err
	}
	if slot < 0 || slot >= model.MaxPlayers {
		return model.Position{}, fmt.Errorf("slot %d: %w", slot, model.ErrInvalidPlayer)
	}
	return basePosition(lengths, slot), nil
}

// PlaceBase hands the base tile of a slot to its owner with a starting garrison
func (g *Generator) PlaceBase(game *model.Game, slot int, owner model.PlayerID) (model.Position, error) {
	pos, err := BasePosition(game.MapSize, slot)
	if err != nil {
		return model.Position{}, err
	}
	tile, err := game.Tile(pos)
	if err != nil {
		return model.Position{}, err
	}
	tile.Owner = owner
	tile.Level = 1
	tile.Building = &model.Building{Type: model.BuildingBase, Level: 1}
	tile.Units = &model.Units{
		Type:     model.UnitInfantry,
		Quantity: BaseGarrison,
		Stamina:  model.UnitInfantry.MaxStamina(),
	}
	return pos, nil
}

// basePosition spreads the four slots over the corners of the second and
// second-to-last rows
func basePosition(lengths []int, slot int) model.Position {
	top, bottom := 1, len(lengths)-2
	switch slot {
	case 0:
		return model.Position{Row: top, Col: 1}
	case 1:
		return model.Position{Row: bottom, Col: lengths[bottom] - 2}
	case 2:
		return model.Position{Row: top, Col: lengths[top] - 2}
	default:
		return model.Position{Row: bottom, Col: 1}
	}
}

// rollLevel gives level 1, 2 or 3 with weights 40/40/20
func rollLevel(seed uint64, index int) uint8 {
	h := fnv.New64a()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(index))
	_, _ = h.Write(buf[:])

	switch roll := h.Sum64() % 100; {
	case roll < 40:
		return 1
	case roll < 80:
		return 2
	default:
		return 3
	}
}

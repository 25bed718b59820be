package mapgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/conquest-go/internal/model"
)

type GeneratorSuite struct {
	suite.Suite
	gen *Generator
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) SetupTest() {
	s.gen = New()
}

func (s *GeneratorSuite) newGame(size model.MapSize, seed uint64) *model.Game {
	tiles, err := s.gen.Generate(size, seed)
	s.Require().NoError(err)
	return &model.Game{MapSize: size, Tiles: tiles}
}

func (s *GeneratorSuite) TestSmallMapHasSevenRowsAndThirtySevenTiles() {
	g := s.newGame(model.MapSmall, 1)

	s.Len(g.Tiles, 7)
	s.Equal(37, g.TileCount())
	s.Len(g.Tiles[0], 3)
	s.Len(g.Tiles[3], 7)
}

func (s *GeneratorSuite) TestTileCountsPerSize() {
	cases := map[model.MapSize]int{
		model.MapSmall:  37,
		model.MapMedium: 48,
		model.MapLarge:  57,
	}
	for size, want := range cases {
		s.Equal(want, s.newGame(size, 7).TileCount(), string(size))
	}
}

func (s *GeneratorSuite) TestInvalidSizeRejected() {
	_, err := s.gen.Generate(model.MapSize("huge"), 1)
	s.ErrorIs(err, model.ErrInvalidMapSize)
}

func (s *GeneratorSuite) TestGenerationIsDeterministic() {
	a := s.newGame(model.MapLarge, 42)
	b := s.newGame(model.MapLarge, 42)
	s.Equal(a.Tiles, b.Tiles)
}

func (s *GeneratorSuite) TestAllTilesStartNeutralWithGarrison() {
	g := s.newGame(model.MapMedium, 3)

	g.EachTile(func(pos model.Position, t *model.Tile) {
		s.True(t.IsNeutral(), pos.String())
		s.Nil(t.Building)
		s.Require().NotNil(t.Units, pos.String())
		s.Equal(model.UnitMutants, t.Units.Type)
		s.Equal(Garrison(t.Level), t.Units.Quantity)
		s.GreaterOrEqual(t.Level, uint8(1))
		s.LessOrEqual(t.Level, uint8(3))
	})
}

func (s *GeneratorSuite) TestTilesAroundBasesAreLevelOne() {
	for seed := uint64(0); seed < 20; seed++ {
		g := s.newGame(model.MapSmall, seed)
		for _, pos := range []model.Position{{Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 1, Col: 0}, {Row: 0, Col: 1}} {
			t, err := g.Tile(pos)
			s.Require().NoError(err)
			s.Equal(uint8(1), t.Level)
			s.Equal(uint16(1), t.Units.Quantity)
		}
	}
}

func (s *GeneratorSuite) TestBasePositions() {
	cases := []struct {
		size model.MapSize
		slot int
		want model.Position
	}{
		{model.MapSmall, 0, model.Position{Row: 1, Col: 1}},
		{model.MapSmall, 1, model.Position{Row: 5, Col: 3}},
		{model.MapSmall, 2, model.Position{Row: 1, Col: 3}},
		{model.MapSmall, 3, model.Position{Row: 5, Col: 1}},
		{model.MapLarge, 1, model.Position{Row: 7, Col: 3}},
	}
	for _, tc := range cases {
		got, err := BasePosition(tc.size, tc.slot)
		s.Require().NoError(err)
		s.Equal(tc.want, got)
	}

	_, err := BasePosition(model.MapSmall, model.MaxPlayers)
	s.ErrorIs(err, model.ErrInvalidPlayer)
}

func (s *GeneratorSuite) TestPlaceBase() {
	g := s.newGame(model.MapSmall, 9)

	pos, err := s.gen.PlaceBase(g, 0, "alice")
	s.Require().NoError(err)
	s.Equal(model.Position{Row: 1, Col: 1}, pos)

	tile, _ := g.Tile(pos)
	s.Equal(model.PlayerID("alice"), tile.Owner)
	s.Equal(uint8(1), tile.Level)
	s.True(tile.HasBuilding(model.BuildingBase))
	s.Equal(&model.Units{Type: model.UnitInfantry, Quantity: BaseGarrison, Stamina: 1}, tile.Units)
}

func (s *GeneratorSuite) TestSeedDependsOnIDAndTime() {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s.Equal(Seed(1, at), Seed(1, at))
	s.NotEqual(Seed(1, at), Seed(2, at))
	s.NotEqual(Seed(1, at), Seed(1, at.Add(time.Millisecond)))
}

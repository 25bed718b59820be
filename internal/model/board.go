package model

import "fmt"

// Position identifies a tile on the map
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left within the row
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// UnitType is the kind of unit in a stack
type UnitType string

const (
	UnitInfantry UnitType = "infantry"
	UnitTank     UnitType = "tank"
	UnitPlane    UnitType = "plane"
	UnitMutants  UnitType = "mutants" // neutral garrisons only
)

// ParseUnitType validates a unit type name
func ParseUnitType(s string) (UnitType, error) {
	switch t := UnitType(s); t {
	case UnitInfantry, UnitTank, UnitPlane, UnitMutants:
		return t, nil
	default:
		return "", ErrInvalidUnitType
	}
}

// MaxStamina returns the stamina a stack of this type is restored to
func (t UnitType) MaxStamina() uint8 {
	switch t {
	case UnitInfantry:
		return 1
	case UnitTank:
		return 3
	case UnitPlane:
		return 5
	case UnitMutants:
		return 0
	default:
		panic(fmt.Sprintf("unknown unit type %q", string(t)))
	}
}

// Cost returns the price of one unit and whether the type can be recruited
func (t UnitType) Cost() (uint32, bool) {
	switch t {
	case UnitInfantry:
		return 1, true
	case UnitTank:
		return 3, true
	case UnitPlane:
		return 5, true
	case UnitMutants:
		return 0, false
	default:
		panic(fmt.Sprintf("unknown unit type %q", string(t)))
	}
}

// BuildingType is the kind of building on a tile
type BuildingType string

const (
	BuildingBase         BuildingType = "base"
	BuildingGasPlant     BuildingType = "gas_plant"
	BuildingTankFactory  BuildingType = "tank_factory"
	BuildingPlaneFactory BuildingType = "plane_factory"
)

// ParseBuildingType validates a building type name
func ParseBuildingType(s string) (BuildingType, error) {
	switch t := BuildingType(s); t {
	case BuildingBase, BuildingGasPlant, BuildingTankFactory, BuildingPlaneFactory:
		return t, nil
	default:
		return "", ErrInvalidBuildingType
	}
}

// MaxLevel returns the highest level the building can be upgraded to
func (t BuildingType) MaxLevel() uint8 {
	switch t {
	case BuildingBase, BuildingGasPlant:
		return 3
	case BuildingTankFactory, BuildingPlaneFactory:
		return 1
	default:
		panic(fmt.Sprintf("unknown building type %q", string(t)))
	}
}

// ConstructionCost returns the price of a new level 1 building.
// Bases are placed by the map generator and cannot be constructed.
func (t BuildingType) ConstructionCost() (uint32, bool) {
	switch t {
	case BuildingBase:
		return 0, false
	case BuildingGasPlant:
		return 12, true
	case BuildingTankFactory:
		return 15, true
	case BuildingPlaneFactory:
		return 20, true
	default:
		panic(fmt.Sprintf("unknown building type %q", string(t)))
	}
}

// Units is the single stack of units occupying a tile
type Units struct {
	Type     UnitType
	Quantity uint16
	Stamina  uint8
}

// Building is a structure on a tile
type Building struct {
	Type  BuildingType
	Level uint8
}

// UpgradeCost returns the price of raising the building one level
func (b Building) UpgradeCost() uint32 {
	switch b.Type {
	case BuildingBase:
		return [...]uint32{0, 12, 22}[min(int(b.Level), 2)]
	case BuildingGasPlant:
		return [...]uint32{0, 8, 12}[min(int(b.Level), 2)]
	case BuildingTankFactory, BuildingPlaneFactory:
		return 0
	default:
		panic(fmt.Sprintf("unknown building type %q", string(b.Type)))
	}
}

// Yield returns the income the building produces each turn
func (b Building) Yield() uint32 {
	switch b.Type {
	case BuildingBase:
		return [...]uint32{0, 3, 4, 6}[min(int(b.Level), 3)]
	case BuildingGasPlant:
		return uint32(b.Level)
	case BuildingTankFactory, BuildingPlaneFactory:
		return 0
	default:
		panic(fmt.Sprintf("unknown building type %q", string(b.Type)))
	}
}

// Tile is one addressable cell of the map
type Tile struct {
	Owner    PlayerID // empty for neutral tiles
	Level    uint8    // 1..3
	Units    *Units
	Building *Building
}

// IsNeutral reports whether nobody owns the tile
func (t *Tile) IsNeutral() bool {
	return t.Owner == ""
}

// HasBuilding reports whether the tile hosts a building of the given type
func (t *Tile) HasBuilding(bt BuildingType) bool {
	return t.Building != nil && t.Building.Type == bt
}

// Yield returns the income the tile and its building produce each turn
func (t *Tile) Yield() uint32 {
	var y uint32
	if t.Level >= 3 {
		y = 1
	}
	if t.Building != nil {
		y += t.Building.Yield()
	}
	return y
}

// Clone returns a deep copy of the tile
func (t *Tile) Clone() *Tile {
	c := *t
	if t.Units != nil {
		u := *t.Units
		c.Units = &u
	}
	if t.Building != nil {
		b := *t.Building
		c.Building = &b
	}
	return &c
}

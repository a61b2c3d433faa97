package world

import "fmt"

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainOcean         Terrain = iota // Impassable open water
	TerrainCoast                        // Land bordering the ocean
	TerrainIce                          // Glacier and pack ice
	TerrainPlains                       // Open grassland
	TerrainMeadow                       // Flowering lowland
	TerrainHills                        // Rolling uplands
	TerrainMountainRange                // High peaks
	TerrainTundra                       // Frozen flats
	TerrainDesert                       // Arid sand and rock
)

// AllTerrains lists every terrain in declaration order.
var AllTerrains = [...]Terrain{
	TerrainOcean,
	TerrainCoast,
	TerrainIce,
	TerrainPlains,
	TerrainMeadow,
	TerrainHills,
	TerrainMountainRange,
	TerrainTundra,
	TerrainDesert,
}

var terrainNames = map[Terrain]string{
	TerrainOcean:         "ocean",
	TerrainCoast:         "coast",
	TerrainIce:           "ice",
	TerrainPlains:        "plains",
	TerrainMeadow:        "meadow",
	TerrainHills:         "hills",
	TerrainMountainRange: "mountain_range",
	TerrainTundra:        "tundra",
	TerrainDesert:        "desert",
}

// String returns the snake_case name of the terrain.
func (t Terrain) String() string {
	if name, ok := terrainNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTerrain resolves a terrain from its snake_case name.
func ParseTerrain(name string) (Terrain, error) {
	for t, n := range terrainNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", name)
}

// MarshalText encodes the terrain by name so JSON maps keyed by Terrain stay readable.
func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a terrain name.
func (t *Terrain) UnmarshalText(b []byte) error {
	parsed, err := ParseTerrain(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Feature is an overlay tag on a tile such as vegetation or a river.
// Unrecognized tags are allowed and carry no movement penalty.
type Feature string

const (
	FeatureForest       Feature = "forest"
	FeatureJungle       Feature = "jungle"
	FeatureBorealForest Feature = "boreal_forest"
	FeatureRiver        Feature = "river"
)

// Hex represents a single tile on the world map.
type Hex struct {
	Coord    HexCoord  `json:"coord"`
	Terrain  Terrain   `json:"terrain"`
	Features []Feature `json:"features,omitempty"`

	// Elevation and climate data (set during world generation).
	Elevation   float64 `json:"elevation"`   // 0.0 (sea level) to 1.0 (peak)
	Rainfall    float64 `json:"rainfall"`    // 0.0 (arid) to 1.0 (tropical)
	Temperature float64 `json:"temperature"` // 0.0 (frozen) to 1.0 (hot)
}

// HasFeature reports whether the tile carries the given overlay.
func (h *Hex) HasFeature(f Feature) bool {
	for _, have := range h.Features {
		if have == f {
			return true
		}
	}
	return false
}

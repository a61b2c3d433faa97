package world

import (
	"fmt"
	"math"
)

// Map holds the hex tiles of a world, keyed by coordinate.
// Tiles are looked up, never iterated, by the pathfinders.
type Map struct {
	Hexes  map[HexCoord]*Hex `json:"-"`      // All hexes keyed by coordinate
	Radius int               `json:"radius"` // Generation radius, 0 when unknown
	Width  int               `json:"width"`  // East–west wrap width, 0 disables wrapping
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	m := &Map{
		Hexes:  make(map[HexCoord]*Hex),
		Radius: radius,
	}
	return m
}

// FromKeys builds a map from a collection keyed by HexCoord.Key.
// The tile's own coordinate is taken from the key.
func FromKeys(tiles map[string]*Hex) (*Map, error) {
	m := NewMap(0)
	for key, hex := range tiles {
		coord, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		if hex == nil {
			return nil, fmt.Errorf("tile %s is nil", key)
		}
		hex.Coord = coord
		m.Set(hex)
	}
	return m, nil
}

// Keyed returns the tiles keyed by HexCoord.Key.
func (m *Map) Keyed() map[string]*Hex {
	out := make(map[string]*Hex, len(m.Hexes))
	for coord, hex := range m.Hexes {
		out[coord.Key()] = hex
	}
	return out
}

// Normalize wraps the coordinate into the map's east–west range.
func (m *Map) Normalize(coord HexCoord) HexCoord {
	if m.Width <= 0 {
		return coord
	}
	return HexCoord{Q: WrapHorizontal(coord.Q, m.Width), R: coord.R}
}

// Get returns the hex at the given coordinate, or nil if absent.
func (m *Map) Get(coord HexCoord) *Hex {
	return m.Hexes[m.Normalize(coord)]
}

// Tile returns the hex at the given coordinate and whether it exists.
func (m *Map) Tile(coord HexCoord) (*Hex, bool) {
	hex, ok := m.Hexes[m.Normalize(coord)]
	return hex, ok && hex != nil
}

// Set places a hex at its (normalized) coordinate.
func (m *Map) Set(hex *Hex) {
	hex.Coord = m.Normalize(hex.Coord)
	m.Hexes[hex.Coord] = hex
}

// Neighbors returns the six adjacent coordinates, wrapped across the seam.
func (m *Map) Neighbors(coord HexCoord) [6]HexCoord {
	result := coord.Neighbors()
	for i := range result {
		result[i] = m.Normalize(result[i])
	}
	return result
}

// Distance returns the hex distance between a and b, taking the shorter way
// around the seam when the map wraps.
func (m *Map) Distance(a, b HexCoord) int {
	if m.Width <= 0 {
		return Distance(a, b)
	}
	a = m.Normalize(a)
	b = m.Normalize(b)
	dq := a.Q - b.Q
	dr := a.R - b.R
	// Distance is convex in dq and smallest near dq = -dr/2.
	center := int(math.Round((float64(dq) + float64(dr)/2) / float64(m.Width)))
	best := math.MaxInt
	for k := center - 1; k <= center+1; k++ {
		shifted := dq - k*m.Width
		if d := (abs(shifted) + abs(shifted+dr) + abs(dr)) / 2; d < best {
			best = d
		}
	}
	return best
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	q := abs(coord.Q)
	r := abs(coord.R)
	s := abs(coord.S())
	return max(q, r, s) <= m.Radius
}

// HexCount returns the total number of hexes in the map.
func (m *Map) HexCount() int {
	return len(m.Hexes)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, width=%d, hexes=%d)", m.Radius, m.Width, m.HexCount())
}

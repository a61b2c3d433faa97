// Package world provides the hex grid, terrain, and spatial data structures.
// Uses axial coordinates (q, r) for the hex grid with a flat-top layout.
package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// X is the display-name alias for Q.
func (h HexCoord) X() int { return h.Q }

// Y is the display-name alias for R.
func (h HexCoord) Y() int { return h.R }

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// String returns the coordinate in "(q,r)" form.
func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// IsNeighbor reports whether a and b are adjacent on an unwrapped grid.
func IsNeighbor(a, b HexCoord) bool {
	return Distance(a, b) == 1
}

// Distance returns the hex distance between two coordinates: the minimum
// number of neighbor steps on an unobstructed grid.
func Distance(a, b HexCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (abs(dq) + abs(dq+dr) + abs(dr)) / 2
}

// AxialRound snaps fractional axial coordinates to the containing hex.
// All three cube components are rounded and the one with the largest
// rounding error is rebuilt from the other two so q+r+s stays zero.
func AxialRound(fq, fr float64) HexCoord {
	fs := -fq - fr

	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}
	return HexCoord{Q: int(q), R: int(r)}
}

// Layout describes the pixel projection of a flat-top hex grid.
// Size is the distance from a hex center to any corner.
type Layout struct {
	Size    float64
	OriginX float64
	OriginY float64
}

// AxialToPixel returns the pixel center of a hex.
func (l Layout) AxialToPixel(h HexCoord) (x, y float64) {
	q := float64(h.Q)
	r := float64(h.R)
	x = l.Size*(1.5*q) + l.OriginX
	y = l.Size*(math.Sqrt(3)/2*q+math.Sqrt(3)*r) + l.OriginY
	return x, y
}

// PixelToAxial returns the hex containing the given pixel position.
func (l Layout) PixelToAxial(x, y float64) HexCoord {
	px := (x - l.OriginX) / l.Size
	py := (y - l.OriginY) / l.Size
	fq := 2.0 / 3.0 * px
	fr := -1.0/3.0*px + math.Sqrt(3)/3*py
	return AxialRound(fq, fr)
}

// Key returns the map lookup key "q,r" for the coordinate.
func (h HexCoord) Key() string {
	return strconv.Itoa(h.Q) + "," + strconv.Itoa(h.R)
}

// ParseKey is the inverse of HexCoord.Key.
func ParseKey(key string) (HexCoord, error) {
	qs, rs, ok := strings.Cut(key, ",")
	if !ok {
		return HexCoord{}, fmt.Errorf("parse hex key %q: missing separator", key)
	}
	q, err := strconv.Atoi(strings.TrimSpace(qs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("parse hex key %q: %w", key, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("parse hex key %q: %w", key, err)
	}
	return HexCoord{Q: q, R: r}, nil
}

// WrapHorizontal maps q into [-width/2, width - width/2) so the world is
// cylindrical east–west. A non-positive width disables wrapping.
func WrapHorizontal(q, width int) int {
	if width <= 0 {
		return q
	}
	half := width / 2
	w := (q + half) % width
	if w < 0 {
		w += width
	}
	return w - half
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

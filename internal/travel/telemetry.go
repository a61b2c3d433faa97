// Package travel derives travel time and progress figures from a computed route.
//
// Durations are measured in abstract time units: a route's cost divided by
// the traveler's speed in cost units per time unit. Callers pick the
// wall-clock length of one unit when they need timestamps.
package travel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexroute/internal/movement"
	"github.com/talgya/hexroute/internal/world"
)

var (
	ErrInvalidSpeed = errors.New("speed must be a positive finite number")
	ErrEmptyRoute   = errors.New("route is empty")
	ErrUnknownTile  = errors.New("route crosses a hex missing from the map")
	ErrImpassable   = errors.New("route crosses an impassable hex")
	ErrOverflow     = errors.New("travel duration out of range")
)

// Tiles looks up hexes by coordinate. *world.Map satisfies it.
type Tiles interface {
	Tile(world.HexCoord) (*world.Hex, bool)
}

// Progress is a snapshot of an in-progress traversal.
type Progress struct {
	Percent        float64 `json:"percent"`
	RemainingHexes int     `json:"remaining_hexes"`
	Remaining      float64 `json:"remaining"`
}

// ValidateSpeed rejects zero, negative and non-finite speeds.
func ValidateSpeed(speed float64) error {
	if !(speed > 0) || math.IsInf(speed, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	return nil
}

// StepCosts returns the cost of entering each route hex. Index 0 is the
// start and is never charged.
func StepCosts(route []world.HexCoord, tiles Tiles) ([]float64, error) {
	if len(route) == 0 {
		return nil, ErrEmptyRoute
	}
	costs := make([]float64, len(route))
	for i := 1; i < len(route); i++ {
		hex, ok := tiles.Tile(route[i])
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTile, route[i])
		}
		c := movement.Cost(hex)
		if movement.IsImpassable(c) {
			return nil, fmt.Errorf("%w: %s", ErrImpassable, route[i])
		}
		costs[i] = c
	}
	return costs, nil
}

// TotalDuration returns the time needed to walk the route at the given speed.
// Cost is incurred entering a tile, so the start tile is free.
func TotalDuration(route []world.HexCoord, tiles Tiles, speed float64) (float64, error) {
	if err := ValidateSpeed(speed); err != nil {
		return 0, err
	}
	costs, err := StepCosts(route, tiles)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, c := range costs {
		total += c
	}
	d := total / speed
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, fmt.Errorf("%w: cost %v at speed %v", ErrOverflow, total, speed)
	}
	return d, nil
}

// TerrainSummary counts the terrain of every route hex, start included.
// Hexes missing from the map are not counted.
func TerrainSummary(route []world.HexCoord, tiles Tiles) map[world.Terrain]int {
	summary := make(map[world.Terrain]int)
	for _, c := range route {
		if hex, ok := tiles.Tile(c); ok {
			summary[hex.Terrain]++
		}
	}
	return summary
}

// ProgressOf computes progress figures from caller-supplied elapsed and total
// durations and the index of the current hex within a route of routeLen hexes.
func ProgressOf(elapsed, total float64, currentIndex, routeLen int) Progress {
	var pct float64
	switch {
	case total <= 0:
		pct = 100
	default:
		pct = math.Max(0, math.Min(100, elapsed/total*100))
	}
	return Progress{
		Percent:        pct,
		RemainingHexes: max(routeLen-1-currentIndex, 0),
		Remaining:      math.Max(0, total-elapsed),
	}
}

// UnitsToDuration converts time units to wall-clock time. The caller must
// know the result fits; see WallClock.
func UnitsToDuration(units float64, unit time.Duration) time.Duration {
	return time.Duration(units * float64(unit))
}

// WallClock converts time units to wall-clock time, failing with ErrOverflow
// when the result is not representable as a time.Duration.
func WallClock(units float64, unit time.Duration) (time.Duration, error) {
	ns := units * float64(unit)
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
	if math.IsNaN(ns) || ns >= float64(math.MaxInt64) || ns < float64(math.MinInt64) {
		return 0, fmt.Errorf("%w: %v units of %s", ErrOverflow, units, unit)
	}
	return time.Duration(ns), nil
}

// ETA returns the arrival time of a traversal that started at start.
func ETA(start time.Time, total float64, unit time.Duration) time.Time {
	return start.Add(UnitsToDuration(total, unit))
}

// FormatETA renders an arrival time relative to now, e.g. "3 minutes from now".
func FormatETA(eta, now time.Time) string {
	if !eta.After(now) {
		return "arrived"
	}
	return humanize.RelTime(eta, now, "ago", "from now")
}

// FormatDuration renders a remaining duration as "1h02m" or "4m05s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

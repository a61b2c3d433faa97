package travel

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexroute/internal/world"
)

// Traversal is an agent's journey along a computed route.
// Durations are in time units; Unit is the wall-clock length of one unit.
// The caller owns the clock and calls Advance as time passes.
type Traversal struct {
	ID          uuid.UUID        `json:"id"`
	Origin      world.HexCoord   `json:"origin"`
	Destination world.HexCoord   `json:"destination"`
	Route       []world.HexCoord `json:"route"`
	Speed       float64          `json:"speed"`
	Unit        time.Duration    `json:"unit"`

	CurrentIndex   int           `json:"current_index"`
	CurrentTerrain world.Terrain `json:"current_terrain"`
	Elapsed        float64       `json:"elapsed"`
	Total          float64       `json:"total"`
	StartedAt      time.Time     `json:"started_at"`
	ETA            time.Time     `json:"eta"`

	// Arrivals[i] is the elapsed time at which route hex i is entered.
	Arrivals []float64 `json:"arrivals"`
	// Terrains[i] is the terrain of route hex i.
	Terrains []world.Terrain `json:"terrains"`
}

// NewTraversal prepares a traversal of the route starting at now.
func NewTraversal(route []world.HexCoord, tiles Tiles, speed float64, unit time.Duration, now time.Time) (*Traversal, error) {
	if err := ValidateSpeed(speed); err != nil {
		return nil, err
	}
	if unit <= 0 {
		return nil, fmt.Errorf("time unit must be positive, got %s", unit)
	}
	costs, err := StepCosts(route, tiles)
	if err != nil {
		return nil, err
	}

	arrivals := make([]float64, len(route))
	terrains := make([]world.Terrain, len(route))
	for i, c := range route {
		if i > 0 {
			arrivals[i] = arrivals[i-1] + costs[i]/speed
		}
		if hex, ok := tiles.Tile(c); ok {
			terrains[i] = hex.Terrain
		}
	}
	total := arrivals[len(arrivals)-1]
	if math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: route at speed %v", ErrOverflow, speed)
	}
	if _, err := WallClock(total, unit); err != nil {
		return nil, err
	}

	return &Traversal{
		ID:             uuid.New(),
		Origin:         route[0],
		Destination:    route[len(route)-1],
		Route:          append([]world.HexCoord(nil), route...),
		Speed:          speed,
		Unit:           unit,
		CurrentTerrain: terrains[0],
		Total:          total,
		StartedAt:      now,
		ETA:            ETA(now, total, unit),
		Arrivals:       arrivals,
		Terrains:       terrains,
	}, nil
}

// Advance records the elapsed time and moves the traveler to the last hex
// entered by then. Elapsed is clamped to [0, Total].
func (t *Traversal) Advance(elapsed float64) {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > t.Total {
		elapsed = t.Total
	}
	t.Elapsed = elapsed
	// First hex not yet entered, minus one.
	idx := sort.Search(len(t.Arrivals), func(i int) bool {
		return t.Arrivals[i] > elapsed
	}) - 1
	if idx < 0 {
		idx = 0
	}
	t.CurrentIndex = idx
	if idx < len(t.Terrains) {
		t.CurrentTerrain = t.Terrains[idx]
	}
}

// AdvanceTo advances to the wall-clock time now.
func (t *Traversal) AdvanceTo(now time.Time) {
	t.Advance(float64(now.Sub(t.StartedAt)) / float64(t.Unit))
}

// Position returns the hex the traveler currently occupies.
func (t *Traversal) Position() world.HexCoord {
	return t.Route[t.CurrentIndex]
}

// Arrived reports whether the destination has been entered.
func (t *Traversal) Arrived() bool {
	return t.CurrentIndex >= len(t.Route)-1
}

// Progress returns the current progress figures.
func (t *Traversal) Progress() Progress {
	return ProgressOf(t.Elapsed, t.Total, t.CurrentIndex, len(t.Route))
}

// Remaining returns the wall-clock time left until arrival.
func (t *Traversal) Remaining() time.Duration {
	return UnitsToDuration(t.Progress().Remaining, t.Unit)
}

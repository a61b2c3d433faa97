package travel

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexroute/internal/world"
)

func lineMap(terrains ...world.Terrain) (*world.Map, []world.HexCoord) {
	m := world.NewMap(0)
	route := make([]world.HexCoord, len(terrains))
	for i, terrain := range terrains {
		c := world.HexCoord{Q: i, R: 0}
		m.Set(&world.Hex{Coord: c, Terrain: terrain})
		route[i] = c
	}
	return m, route
}

func TestTotalDuration_SkipsStartTile(t *testing.T) {
	m, route := lineMap(world.TerrainPlains, world.TerrainPlains, world.TerrainPlains)

	d, err := TotalDuration(route, m, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, d)

	// An expensive start tile is still free.
	m, route = lineMap(world.TerrainMountainRange, world.TerrainPlains, world.TerrainHills)
	d, err = TotalDuration(route, m, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.5, d)
}

func TestTotalDuration_SingleHexRoute(t *testing.T) {
	m, route := lineMap(world.TerrainDesert)
	d, err := TotalDuration(route, m, 3)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestTotalDuration_RejectsInvalidInput(t *testing.T) {
	m, route := lineMap(world.TerrainPlains, world.TerrainPlains)

	for _, speed := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := TotalDuration(route, m, speed)
		assert.ErrorIs(t, err, ErrInvalidSpeed, "speed %v", speed)
	}

	_, err := TotalDuration(nil, m, 1)
	assert.ErrorIs(t, err, ErrEmptyRoute)

	_, err = TotalDuration(append(route, world.HexCoord{Q: 9, R: 9}), m, 1)
	assert.ErrorIs(t, err, ErrUnknownTile)

	m.Set(&world.Hex{Coord: world.HexCoord{Q: 2, R: 0}, Terrain: world.TerrainOcean})
	_, err = TotalDuration(append(route, world.HexCoord{Q: 2, R: 0}), m, 1)
	assert.ErrorIs(t, err, ErrImpassable)
}

func TestTotalDuration_RejectsOverflow(t *testing.T) {
	m, route := lineMap(world.TerrainPlains, world.TerrainHills)

	d, err := TotalDuration(route, m, 1e-320)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Zero(t, d)

	// Finite in units, but far beyond what a time.Duration holds.
	d, err = TotalDuration(route, m, 1e-9)
	require.NoError(t, err)
	_, err = WallClock(d, time.Minute)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestWallClock(t *testing.T) {
	d, err := WallClock(2.5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 150*time.Second, d)

	for _, units := range []float64{math.Inf(1), math.NaN(), float64(math.MaxInt64)} {
		_, err := WallClock(units, time.Nanosecond)
		assert.ErrorIs(t, err, ErrOverflow, "units %v", units)
	}
}

func TestTerrainSummary_IncludesStart(t *testing.T) {
	m, route := lineMap(world.TerrainCoast, world.TerrainPlains, world.TerrainPlains, world.TerrainHills)
	summary := TerrainSummary(route, m)
	assert.Equal(t, map[world.Terrain]int{
		world.TerrainCoast:  1,
		world.TerrainPlains: 2,
		world.TerrainHills:  1,
	}, summary)
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		name            string
		elapsed, total  float64
		index, routeLen int
		want            Progress
	}{
		{"not started", 0, 4, 0, 5, Progress{Percent: 0, RemainingHexes: 4, Remaining: 4}},
		{"halfway", 2, 4, 2, 5, Progress{Percent: 50, RemainingHexes: 2, Remaining: 2}},
		{"arrived", 4, 4, 4, 5, Progress{Percent: 100, RemainingHexes: 0, Remaining: 0}},
		{"overrun", 6, 4, 4, 5, Progress{Percent: 100, RemainingHexes: 0, Remaining: 0}},
		{"zero length", 0, 0, 0, 1, Progress{Percent: 100, RemainingHexes: 0, Remaining: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressOf(tt.elapsed, tt.total, tt.index, tt.routeLen))
		})
	}
}

func TestETAAndFormatting(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eta := ETA(start, 2.5, time.Hour)
	assert.Equal(t, start.Add(150*time.Minute), eta)

	assert.Equal(t, "2 hours from now", FormatETA(eta, start))
	assert.Equal(t, "arrived", FormatETA(start, eta))

	assert.Equal(t, "2h30m", FormatDuration(150*time.Minute))
	assert.Equal(t, "4m05s", FormatDuration(245*time.Second))
	assert.Equal(t, "0m00s", FormatDuration(-time.Second))
}

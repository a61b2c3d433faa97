package travel

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexroute/internal/world"
)

func TestNewTraversal(t *testing.T) {
	m, route := lineMap(world.TerrainPlains, world.TerrainHills, world.TerrainPlains, world.TerrainDesert)
	now := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

	tr, err := NewTraversal(route, m, 2, time.Minute, now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, tr.ID)
	assert.Equal(t, route[0], tr.Origin)
	assert.Equal(t, route[3], tr.Destination)
	// (2 + 1 + 1.5) / 2
	assert.Equal(t, 2.25, tr.Total)
	assert.Equal(t, []float64{0, 1, 1.5, 2.25}, tr.Arrivals)
	assert.Equal(t, now.Add(135*time.Second), tr.ETA)
	assert.Equal(t, world.TerrainPlains, tr.CurrentTerrain)
	assert.Equal(t, 0, tr.CurrentIndex)
}

func TestNewTraversal_RejectsBadInput(t *testing.T) {
	m, route := lineMap(world.TerrainPlains, world.TerrainPlains)
	now := time.Now()

	_, err := NewTraversal(route, m, 0, time.Minute, now)
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	_, err = NewTraversal(route, m, 1, 0, now)
	assert.Error(t, err)

	_, err = NewTraversal(nil, m, 1, time.Minute, now)
	assert.ErrorIs(t, err, ErrEmptyRoute)

	for _, speed := range []float64{1e-320, 1e-9} {
		tr, err := NewTraversal(route, m, speed, time.Minute, now)
		assert.ErrorIs(t, err, ErrOverflow, "speed %v", speed)
		assert.Nil(t, tr)
	}
}

func TestTraversal_Advance(t *testing.T) {
	m, route := lineMap(world.TerrainPlains, world.TerrainHills, world.TerrainPlains, world.TerrainDesert)
	tr, err := NewTraversal(route, m, 1, time.Minute, time.Now())
	require.NoError(t, err)
	require.Equal(t, 4.5, tr.Total)

	tests := []struct {
		elapsed   float64
		wantIndex int
		wantTerr  world.Terrain
	}{
		{0, 0, world.TerrainPlains},
		{1.9, 0, world.TerrainPlains},
		{2, 1, world.TerrainHills},
		{3.2, 2, world.TerrainPlains},
		{4.5, 3, world.TerrainDesert},
		{99, 3, world.TerrainDesert},
		{-5, 0, world.TerrainPlains},
	}
	for _, tt := range tests {
		tr.Advance(tt.elapsed)
		assert.Equal(t, tt.wantIndex, tr.CurrentIndex, "elapsed %v", tt.elapsed)
		assert.Equal(t, tt.wantTerr, tr.CurrentTerrain, "elapsed %v", tt.elapsed)
		assert.Equal(t, route[tt.wantIndex], tr.Position())
	}

	tr.Advance(2)
	p := tr.Progress()
	assert.InDelta(t, 44.444, p.Percent, 1e-3)
	assert.Equal(t, 2, p.RemainingHexes)
	assert.Equal(t, 2.5, p.Remaining)
	assert.Equal(t, 150*time.Second, tr.Remaining())
	assert.False(t, tr.Arrived())

	tr.Advance(tr.Total)
	assert.True(t, tr.Arrived())
}

func TestTraversal_AdvanceTo(t *testing.T) {
	m, route := lineMap(world.TerrainPlains, world.TerrainPlains, world.TerrainPlains)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr, err := NewTraversal(route, m, 1, time.Hour, start)
	require.NoError(t, err)

	tr.AdvanceTo(start.Add(90 * time.Minute))
	assert.Equal(t, 1.5, tr.Elapsed)
	assert.Equal(t, 1, tr.CurrentIndex)
	assert.Equal(t, 75.0, tr.Progress().Percent)
}

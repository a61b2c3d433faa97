package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/hexroute/internal/world"
)

func TestCost_TerrainBase(t *testing.T) {
	tests := []struct {
		terrain world.Terrain
		want    float64
	}{
		{world.TerrainPlains, 1},
		{world.TerrainMeadow, 1},
		{world.TerrainCoast, 1},
		{world.TerrainDesert, 1.5},
		{world.TerrainTundra, 1.5},
		{world.TerrainHills, 2},
		{world.TerrainIce, 2.5},
		{world.TerrainMountainRange, 3},
	}
	for _, tt := range tests {
		t.Run(tt.terrain.String(), func(t *testing.T) {
			hex := &world.Hex{Terrain: tt.terrain}
			assert.Equal(t, tt.want, Cost(hex))
			assert.True(t, IsTraversable(hex))
		})
	}
}

func TestCost_FeaturesCompound(t *testing.T) {
	hex := &world.Hex{
		Terrain:  world.TerrainHills,
		Features: []world.Feature{world.FeatureForest, world.FeatureRiver},
	}
	assert.InDelta(t, 2*1.5*1.25, Cost(hex), 1e-12)

	reordered := &world.Hex{
		Terrain:  world.TerrainHills,
		Features: []world.Feature{world.FeatureRiver, world.FeatureForest},
	}
	assert.InDelta(t, Cost(hex), Cost(reordered), 1e-12)

	jungle := &world.Hex{Terrain: world.TerrainPlains, Features: []world.Feature{world.FeatureJungle}}
	assert.Equal(t, 2.0, Cost(jungle))
}

func TestCost_UnknownFeatureIsNeutral(t *testing.T) {
	hex := &world.Hex{Terrain: world.TerrainDesert, Features: []world.Feature{"oasis"}}
	assert.Equal(t, 1.5, Cost(hex))
	assert.Equal(t, 1.0, FeatureMultiplier("oasis"))
}

func TestCost_OceanIsImpassableRegardlessOfFeatures(t *testing.T) {
	ocean := &world.Hex{Terrain: world.TerrainOcean, Features: []world.Feature{world.FeatureRiver, "bridge"}}
	assert.True(t, IsImpassable(Cost(ocean)))
	assert.False(t, IsTraversable(ocean))

	assert.False(t, IsTraversable(nil))
	assert.True(t, IsImpassable(TerrainCost(world.Terrain(200))))
}

func TestCost_EveryPassableTerrainCostsAtLeastOne(t *testing.T) {
	for _, terrain := range world.AllTerrains {
		c := TerrainCost(terrain)
		if IsImpassable(c) {
			continue
		}
		assert.GreaterOrEqual(t, c, 1.0, terrain.String())
	}
}

// Package movement maps hex tiles to traversal costs.
//
// Terrain supplies a base cost and every feature overlay multiplies it.
// Every finite cost is at least 1 so hex distance stays an admissible
// heuristic for the route search.
package movement

import (
	"math"

	"github.com/talgya/hexroute/internal/world"
)

// Impassable is the cost of a tile that can never be entered.
var Impassable = math.Inf(1)

// terrainCost is the base cost of entering a tile of each terrain.
var terrainCost = map[world.Terrain]float64{
	world.TerrainOcean:         Impassable,
	world.TerrainCoast:         1.0,
	world.TerrainIce:           2.5,
	world.TerrainPlains:        1.0,
	world.TerrainMeadow:        1.0,
	world.TerrainHills:         2.0,
	world.TerrainMountainRange: 3.0,
	world.TerrainTundra:        1.5,
	world.TerrainDesert:        1.5,
}

// featureMultiplier scales the base cost per overlay. Missing tags multiply by 1.
var featureMultiplier = map[world.Feature]float64{
	world.FeatureForest:       1.5,
	world.FeatureJungle:       2.0,
	world.FeatureBorealForest: 1.5,
	world.FeatureRiver:        1.25,
}

// TerrainCost returns the base cost of a terrain. Unknown terrains are impassable.
func TerrainCost(t world.Terrain) float64 {
	if c, ok := terrainCost[t]; ok {
		return c
	}
	return Impassable
}

// FeatureMultiplier returns the penalty for a feature, 1.0 for unrecognized tags.
func FeatureMultiplier(f world.Feature) float64 {
	if m, ok := featureMultiplier[f]; ok {
		return m
	}
	return 1.0
}

// Cost returns the cost of entering the tile. Features never make an
// impassable tile passable. A nil tile is impassable.
func Cost(hex *world.Hex) float64 {
	if hex == nil {
		return Impassable
	}
	base := TerrainCost(hex.Terrain)
	if IsImpassable(base) {
		return Impassable
	}
	for _, f := range hex.Features {
		base *= FeatureMultiplier(f)
	}
	return base
}

// IsTraversable reports whether the tile can be entered.
func IsTraversable(hex *world.Hex) bool {
	return !IsImpassable(Cost(hex))
}

// IsImpassable reports whether a cost value is the impassable sentinel.
func IsImpassable(cost float64) bool {
	return math.IsInf(cost, 1) || math.IsNaN(cost)
}

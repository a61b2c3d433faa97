package pathfind

import (
	"container/heap"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexroute/internal/movement"
	"github.com/talgya/hexroute/internal/world"
)

// gridMap builds a cols×rows parallelogram of plains starting at (0,0).
func gridMap(cols, rows int) *world.Map {
	m := world.NewMap(0)
	for q := 0; q < cols; q++ {
		for r := 0; r < rows; r++ {
			m.Set(&world.Hex{Coord: world.HexCoord{Q: q, R: r}, Terrain: world.TerrainPlains})
		}
	}
	return m
}

func tiles(m *world.Map, terrain world.Terrain, coords ...world.HexCoord) {
	for _, c := range coords {
		m.Set(&world.Hex{Coord: c, Terrain: terrain})
	}
}

func assertWellFormed(t *testing.T, route Route, start, goal world.HexCoord, m *world.Map) {
	t.Helper()
	require.NotEmpty(t, route)
	assert.Equal(t, start, route.Start())
	assert.Equal(t, goal, route.Goal())
	for i := 1; i < len(route); i++ {
		assert.Equal(t, 1, m.Distance(route[i-1], route[i]), "step %d: %v -> %v", i, route[i-1], route[i])
		assert.True(t, movement.IsTraversable(m.Get(route[i])), "step %d enters %v", i, route[i])
	}
}

func TestFindRoute_OpenPlains(t *testing.T) {
	m := gridMap(5, 5)
	start := world.HexCoord{Q: 0, R: 0}
	goal := world.HexCoord{Q: 2, R: 0}

	route, ok := FindRoute(start, goal, m)
	require.True(t, ok)
	assert.Len(t, route, 3)
	assert.Equal(t, 2.0, route.Cost(m))
	assert.Equal(t, 2, route.Steps())
	assertWellFormed(t, route, start, goal, m)
}

func TestFindRoute_StartEqualsGoal(t *testing.T) {
	m := gridMap(3, 3)
	c := world.HexCoord{Q: 1, R: 1}
	route, ok := FindRoute(c, c, m)
	require.True(t, ok)
	assert.Equal(t, Route{c}, route)
	assert.Equal(t, 0.0, route.Cost(m))
}

func TestFindRoute_OceanGoal(t *testing.T) {
	m := gridMap(5, 5)
	goal := world.HexCoord{Q: 3, R: 3}
	tiles(m, world.TerrainOcean, goal)

	route, ok := FindRoute(world.HexCoord{}, goal, m)
	assert.False(t, ok)
	assert.Nil(t, route)
}

func TestFindRoute_MissingEndpoints(t *testing.T) {
	m := gridMap(5, 5)

	_, ok := FindRoute(world.HexCoord{Q: -7, R: 0}, world.HexCoord{Q: 2, R: 2}, m)
	assert.False(t, ok, "start absent")

	_, ok = FindRoute(world.HexCoord{}, world.HexCoord{Q: 9, R: 9}, m)
	assert.False(t, ok, "goal absent")
}

func TestFindRoute_GoalEnclosedByOcean(t *testing.T) {
	m := gridMap(7, 7)
	goal := world.HexCoord{Q: 4, R: 4}
	for _, nb := range goal.Neighbors() {
		tiles(m, world.TerrainOcean, nb)
	}

	_, ok := FindRoute(world.HexCoord{}, goal, m)
	assert.False(t, ok)
}

// mountainGap lays out start (0,0), a mountain at (1,0), goal (2,0) and a
// two-hex bypass (0,1),(1,1) of the given terrain.
func mountainGap(bypass world.Terrain) *world.Map {
	m := world.NewMap(0)
	tiles(m, world.TerrainPlains, world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 2, R: 0})
	tiles(m, world.TerrainMountainRange, world.HexCoord{Q: 1, R: 0})
	tiles(m, bypass, world.HexCoord{Q: 0, R: 1}, world.HexCoord{Q: 1, R: 1})
	return m
}

func TestFindRoute_DetoursAroundMountainWhenCheaper(t *testing.T) {
	// Direct: mountain 3 + plains 1 = 4. Bypass: 1 + 1 + 1 = 3.
	m := mountainGap(world.TerrainPlains)
	route, ok := FindRoute(world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 2, R: 0}, m)
	require.True(t, ok)
	assert.Equal(t, Route{{Q: 0, R: 0}, {Q: 0, R: 1}, {Q: 1, R: 1}, {Q: 2, R: 0}}, route)
	assert.Equal(t, 3.0, route.Cost(m))
}

func TestFindRoute_CrossesMountainWhenCheaper(t *testing.T) {
	// Direct: mountain 3 + plains 1 = 4. Bypass: hills 2 + hills 2 + plains 1 = 5.
	m := mountainGap(world.TerrainHills)
	route, ok := FindRoute(world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 2, R: 0}, m)
	require.True(t, ok)
	assert.Equal(t, Route{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 2, R: 0}}, route)
	assert.Equal(t, 4.0, route.Cost(m))
}

func TestFindRoute_LongDetourAroundRidge(t *testing.T) {
	// Two mountains on the straight line cost 3+3+1 = 7; the plains row above costs 4.
	m := world.NewMap(0)
	tiles(m, world.TerrainPlains,
		world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 3, R: 0},
		world.HexCoord{Q: 1, R: -1}, world.HexCoord{Q: 2, R: -1}, world.HexCoord{Q: 3, R: -1})
	tiles(m, world.TerrainMountainRange, world.HexCoord{Q: 1, R: 0}, world.HexCoord{Q: 2, R: 0})

	route, ok := FindRoute(world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 3, R: 0}, m)
	require.True(t, ok)
	assert.Equal(t, Route{{Q: 0, R: 0}, {Q: 1, R: -1}, {Q: 2, R: -1}, {Q: 3, R: -1}, {Q: 3, R: 0}}, route)
	assert.Equal(t, 4.0, route.Cost(m))
}

func TestFindRoute_WrapsAcrossSeam(t *testing.T) {
	m := world.NewMap(0)
	m.Width = 10
	for q := -5; q < 5; q++ {
		tiles(m, world.TerrainPlains, world.HexCoord{Q: q, R: 0})
	}

	route, ok := FindRoute(world.HexCoord{Q: -5, R: 0}, world.HexCoord{Q: 4, R: 0}, m)
	require.True(t, ok)
	assert.Equal(t, Route{{Q: -5, R: 0}, {Q: 4, R: 0}}, route)
}

func TestFindRoute_IterationCapYieldsNoRoute(t *testing.T) {
	m := world.Generate(world.GenConfig{Radius: 10, Seed: 1, SeaLevel: -1, HillLvl: 2, MountainLvl: 2})
	for _, hex := range m.Hexes {
		hex.Terrain = world.TerrainPlains
		hex.Features = nil
	}
	start := world.HexCoord{Q: -10, R: 0}
	goal := world.HexCoord{Q: 10, R: 0}

	_, ok := findRoute(start, goal, m, 5)
	assert.False(t, ok)

	route, ok := FindRoute(start, goal, m)
	require.True(t, ok)
	assert.Len(t, route, 21)
}

func TestFindRoute_Deterministic(t *testing.T) {
	m := gridMap(8, 8)
	first, ok := FindRoute(world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 5, R: 6}, m)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := FindRoute(world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 5, R: 6}, m)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

// randomMap scatters terrains and features over a hexagon of the given radius.
func randomMap(rng *rand.Rand, radius int) *world.Map {
	features := []world.Feature{world.FeatureForest, world.FeatureJungle, world.FeatureBorealForest, world.FeatureRiver, "ruins"}
	m := world.NewMap(radius)
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			c := world.HexCoord{Q: q, R: r}
			if !m.InBounds(c) {
				continue
			}
			hex := &world.Hex{Coord: c, Terrain: world.AllTerrains[rng.Intn(len(world.AllTerrains))]}
			if rng.Intn(4) == 0 {
				hex.Features = []world.Feature{features[rng.Intn(len(features))]}
			}
			m.Set(hex)
		}
	}
	return m
}

// dijkstra is a brute-force reference for the cheapest route cost.
func dijkstra(m *world.Map, start, goal world.HexCoord) float64 {
	dist := map[world.HexCoord]float64{start: 0}
	done := map[world.HexCoord]bool{}
	for {
		best, bestCost := world.HexCoord{}, math.Inf(1)
		for c, d := range dist {
			if !done[c] && d < bestCost {
				best, bestCost = c, d
			}
		}
		if math.IsInf(bestCost, 1) {
			return bestCost
		}
		if best == goal {
			return bestCost
		}
		done[best] = true
		for _, nb := range m.Neighbors(best) {
			hex, ok := m.Tile(nb)
			if !ok || !movement.IsTraversable(hex) {
				continue
			}
			nd := bestCost + movement.Cost(hex)
			if d, seen := dist[nb]; !seen || nd < d {
				dist[nb] = nd
			}
		}
	}
}

func TestFindRoute_RandomMapsAreWellFormedAndOptimal(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	for trial := 0; trial < 40; trial++ {
		m := randomMap(rng, 6)
		coords := make([]world.HexCoord, 0, len(m.Hexes))
		for q := -6; q <= 6; q++ {
			for r := -6; r <= 6; r++ {
				if c := (world.HexCoord{Q: q, R: r}); m.InBounds(c) {
					coords = append(coords, c)
				}
			}
		}
		start := coords[rng.Intn(len(coords))]
		goal := coords[rng.Intn(len(coords))]

		route, ok := FindRoute(start, goal, m)
		want := dijkstra(m, start, goal)
		if !movement.IsTraversable(m.Get(goal)) {
			assert.False(t, ok, "trial %d: impassable goal %v", trial, goal)
			continue
		}
		if math.IsInf(want, 1) {
			assert.False(t, ok, "trial %d: unreachable goal %v", trial, goal)
			continue
		}
		require.True(t, ok, "trial %d: %v -> %v", trial, start, goal)
		assertWellFormed(t, route, start, goal, m)
		assert.InDelta(t, want, route.Cost(m), 1e-9, "trial %d", trial)
	}
}

func TestSearch_GenericNodes(t *testing.T) {
	// A number line where multiples of 3 are walls.
	route, ok := Search(Problem[int]{
		Start:     1,
		Goal:      8,
		Neighbors: func(n int) []int { return []int{n - 1, n + 1} },
		StepCost: func(n int) (float64, bool) {
			return 1, n%3 != 0
		},
		Heuristic: func(n int) float64 { return math.Abs(float64(8 - n)) },
	})
	assert.False(t, ok)
	assert.Nil(t, route)

	route, ok = Search(Problem[int]{
		Start:     1,
		Goal:      5,
		Neighbors: func(n int) []int { return []int{n - 1, n + 1} },
		StepCost: func(n int) (float64, bool) {
			return 1, n > -10 && n < 10
		},
		Heuristic:     func(n int) float64 { return math.Abs(float64(5 - n)) },
		MaxIterations: 100,
	})
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, route)
}

func TestFrontier_OrdersByEstimateThenHeuristicThenDiscovery(t *testing.T) {
	arena := []node[int]{
		{coord: 0, f: 5, h: 2, seq: 0},
		{coord: 1, f: 4, h: 3, seq: 1},
		{coord: 2, f: 4, h: 1, seq: 2},
		{coord: 3, f: 4, h: 1, seq: 3},
	}
	fr := &frontier[int]{arena: &arena}
	for i := range arena {
		heap.Push(fr, i)
	}
	var order []int
	for fr.Len() > 0 {
		order = append(order, heap.Pop(fr).(int))
	}
	assert.Equal(t, []int{2, 3, 1, 0}, order)
}

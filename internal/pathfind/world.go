package pathfind

import (
	"github.com/talgya/hexroute/internal/movement"
	"github.com/talgya/hexroute/internal/world"
)

// MaxWorldIterations caps a world route search.
const MaxWorldIterations = 10000

// Route is an ordered list of adjacent hexes from start to goal inclusive.
type Route []world.HexCoord

// Start returns the first hex of the route.
func (r Route) Start() world.HexCoord { return r[0] }

// Goal returns the last hex of the route.
func (r Route) Goal() world.HexCoord { return r[len(r)-1] }

// Steps returns the number of moves, one less than the number of hexes.
func (r Route) Steps() int {
	if len(r) == 0 {
		return 0
	}
	return len(r) - 1
}

// FindRoute returns the least-cost route from start to goal over the map's
// tiles. ok is false when either endpoint is missing, the goal cannot be
// entered, no route exists, or the search cap is reached.
func FindRoute(start, goal world.HexCoord, m *world.Map) (Route, bool) {
	return findRoute(start, goal, m, MaxWorldIterations)
}

func findRoute(start, goal world.HexCoord, m *world.Map, limit int) (Route, bool) {
	if _, ok := m.Tile(start); !ok {
		return nil, false
	}
	goalHex, ok := m.Tile(goal)
	if !ok || !movement.IsTraversable(goalHex) {
		return nil, false
	}
	start = m.Normalize(start)
	goal = m.Normalize(goal)

	route, ok := Search(Problem[world.HexCoord]{
		Start: start,
		Goal:  goal,
		Neighbors: func(c world.HexCoord) []world.HexCoord {
			nbs := m.Neighbors(c)
			return nbs[:]
		},
		StepCost: func(c world.HexCoord) (float64, bool) {
			hex, ok := m.Tile(c)
			if !ok {
				return 0, false
			}
			cost := movement.Cost(hex)
			return cost, !movement.IsImpassable(cost)
		},
		Heuristic: func(c world.HexCoord) float64 {
			return float64(m.Distance(c, goal))
		},
		MaxIterations: limit,
	})
	if !ok {
		return nil, false
	}
	return Route(route), true
}

// Cost returns the movement cost of the route over the map, excluding the
// start tile. Missing or impassable tiles make the cost impassable.
func (r Route) Cost(m *world.Map) float64 {
	return RouteCost(r, func(c world.HexCoord) float64 {
		return movement.Cost(m.Get(c))
	})
}

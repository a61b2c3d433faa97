package pathfind

import "github.com/talgya/hexroute/internal/world"

const (
	// LocalRadius bounds a local region: q² + qr + r² <= LocalRadius².
	LocalRadius = 10

	// MaxLocalIterations caps a local route search.
	MaxLocalIterations = 1000
)

// InLocalBounds reports whether the hex lies inside the circular local region.
// q² + qr + r² is the squared Euclidean distance of the hex center from the
// origin, in units of the center-to-center spacing.
func InLocalBounds(c world.HexCoord) bool {
	return c.Q*c.Q+c.Q*c.R+c.R*c.R <= LocalRadius*LocalRadius
}

// FindLocalRoute returns the shortest route between two hexes of a local
// region, where every in-bounds hex costs one step. ok is false when either
// endpoint is out of bounds or the search cap is reached.
func FindLocalRoute(start, goal world.HexCoord) (Route, bool) {
	return findLocalRoute(start, goal, MaxLocalIterations)
}

func findLocalRoute(start, goal world.HexCoord, limit int) (Route, bool) {
	if !InLocalBounds(start) || !InLocalBounds(goal) {
		return nil, false
	}
	route, ok := Search(Problem[world.HexCoord]{
		Start: start,
		Goal:  goal,
		Neighbors: func(c world.HexCoord) []world.HexCoord {
			out := make([]world.HexCoord, 0, 6)
			for _, nb := range c.Neighbors() {
				if InLocalBounds(nb) {
					out = append(out, nb)
				}
			}
			return out
		},
		StepCost: func(world.HexCoord) (float64, bool) {
			return 1, true
		},
		Heuristic: func(c world.HexCoord) float64 {
			return float64(world.Distance(c, goal))
		},
		MaxIterations: limit,
	})
	if !ok {
		return nil, false
	}
	return Route(route), true
}

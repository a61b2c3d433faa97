// Package pathfind computes least-cost routes across hex grids.
//
// Both the world-scale and the local-region pathfinders are thin
// instantiations of Search, an A* core parameterized by neighbor
// enumeration, step cost and heuristic.
package pathfind

import (
	"container/heap"
	"log/slog"
	"math"
)

// DefaultMaxIterations bounds a search when a Problem does not set its own cap.
const DefaultMaxIterations = 10000

// Problem describes one best-cost search.
type Problem[N comparable] struct {
	Start N
	Goal  N

	// Neighbors enumerates candidate successors of a node in a fixed order.
	Neighbors func(N) []N

	// StepCost is the cost of entering a node. ok is false when the node
	// cannot be entered (missing, impassable or out of bounds).
	StepCost func(N) (cost float64, ok bool)

	// Heuristic estimates the remaining cost from a node to Goal.
	// It must never overestimate for the result to be optimal.
	Heuristic func(N) float64

	// MaxIterations caps the number of finalized nodes. Zero means DefaultMaxIterations.
	MaxIterations int
}

// node is an arena entry. parent is an arena index, -1 for the start.
type node[N comparable] struct {
	coord  N
	g      float64 // cost from start
	h      float64 // heuristic estimate to goal
	f      float64 // g + h
	parent int
	seq    int // discovery order, the final tie-breaker
	pos    int // position in the frontier heap, -1 once finalized
	closed bool
}

// frontier is a min-heap of arena indices ordered by f, then h, then discovery.
type frontier[N comparable] struct {
	arena *[]node[N]
	items []int
}

func (fr *frontier[N]) Len() int { return len(fr.items) }

func (fr *frontier[N]) Less(i, j int) bool {
	a := &(*fr.arena)[fr.items[i]]
	b := &(*fr.arena)[fr.items[j]]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (fr *frontier[N]) Swap(i, j int) {
	fr.items[i], fr.items[j] = fr.items[j], fr.items[i]
	(*fr.arena)[fr.items[i]].pos = i
	(*fr.arena)[fr.items[j]].pos = j
}

func (fr *frontier[N]) Push(x any) {
	idx := x.(int)
	(*fr.arena)[idx].pos = len(fr.items)
	fr.items = append(fr.items, idx)
}

func (fr *frontier[N]) Pop() any {
	n := len(fr.items)
	idx := fr.items[n-1]
	fr.items = fr.items[:n-1]
	(*fr.arena)[idx].pos = -1
	return idx
}

// Search runs A* over the problem and returns the route from Start to Goal
// inclusive. ok is false when the goal is unreachable or the iteration cap
// is exhausted first; no partial route is ever returned.
func Search[N comparable](p Problem[N]) (route []N, ok bool) {
	limit := p.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}

	arena := make([]node[N], 0, 64)
	byCoord := make(map[N]int)
	open := &frontier[N]{arena: &arena}

	discover := func(coord N, g float64, parent int) {
		h := p.Heuristic(coord)
		arena = append(arena, node[N]{
			coord:  coord,
			g:      g,
			h:      h,
			f:      g + h,
			parent: parent,
			seq:    len(arena),
		})
		idx := len(arena) - 1
		byCoord[coord] = idx
		heap.Push(open, idx)
	}

	discover(p.Start, 0, -1)

	for iterations := 0; open.Len() > 0; iterations++ {
		if iterations >= limit {
			slog.Debug("route search exhausted", "iterations", iterations, "frontier", open.Len())
			return nil, false
		}

		cur := heap.Pop(open).(int)
		arena[cur].closed = true
		if arena[cur].coord == p.Goal {
			return reconstruct(arena, cur), true
		}

		g := arena[cur].g
		for _, nb := range p.Neighbors(arena[cur].coord) {
			idx, seen := byCoord[nb]
			if seen && arena[idx].closed {
				continue
			}
			cost, passable := p.StepCost(nb)
			if !passable || cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
				continue
			}
			tentative := g + cost
			if !seen {
				discover(nb, tentative, cur)
				continue
			}
			if tentative < arena[idx].g {
				n := &arena[idx]
				n.g = tentative
				n.f = tentative + n.h
				n.parent = cur
				heap.Fix(open, n.pos)
			}
		}
	}
	return nil, false
}

// reconstruct walks parent links from the goal back to the start.
func reconstruct[N comparable](arena []node[N], goal int) []N {
	var route []N
	for i := goal; i >= 0; i = arena[i].parent {
		route = append(route, arena[i].coord)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// RouteCost sums the cost of entering every node after the first.
func RouteCost[N comparable](route []N, cost func(N) float64) float64 {
	total := 0.0
	for i := 1; i < len(route); i++ {
		total += cost(route[i])
	}
	return total
}

// Package search holds the grid pathfinding primitives the strategies share:
// breadth-first search, A*, and a capped flood fill.
//
// All of them read passability from a *game.World and expand neighbours in
// game.Directions order, so results are reproducible for a given snapshot.
package search

import "github.com/brensch/snekduel/game"

// Path is an ordered run of cells from start to goal, both included.
type Path []game.Point

// Next returns the first step after the start, if there is one.
func (p Path) Next() (game.Point, bool) {
	if len(p) < 2 {
		return game.Point{}, false
	}
	return p[1], true
}

// Cost is the number of moves along the path.
func (p Path) Cost() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Manhattan is |dx| + |dy|, the only heuristic used on this grid.
func Manhattan(a, b game.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Neighbors returns the passable orthogonal neighbours of p in
// game.Directions order.
func Neighbors(w *game.World, p game.Point) []game.Point {
	out := make([]game.Point, 0, 4)
	for _, d := range game.Directions {
		n := p.Add(d)
		if w.IsPassable(n) {
			out = append(out, n)
		}
	}
	return out
}

// CountNeighbors is len(Neighbors(w, p)) without the allocation.
func CountNeighbors(w *game.World, p game.Point) int {
	n := 0
	for _, d := range game.Directions {
		if w.IsPassable(p.Add(d)) {
			n++
		}
	}
	return n
}

// StepDirection converts a single step from a to b into a direction.
func StepDirection(a, b game.Point) game.Direction {
	return game.Direction{X: b.X - a.X, Y: b.Y - a.Y}
}

func reconstruct(parent map[game.Point]game.Point, start, goal game.Point) Path {
	path := Path{goal}
	for cur := goal; cur != start; {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

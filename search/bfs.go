package search

import "github.com/brensch/snekduel/game"

// BFS finds a shortest path by edge count from start to goal.
//
// The start cell is usually the snake's own head and so is not passable; it
// is expanded anyway. Cells are marked visited when enqueued. ok is false when
// goal cannot be reached.
func BFS(w *game.World, start, goal game.Point) (Path, bool) {
	if start == goal {
		return Path{start}, true
	}

	parent := map[game.Point]game.Point{start: start}
	queue := []game.Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			return reconstruct(parent, start, goal), true
		}
		for _, d := range game.Directions {
			n := cur.Add(d)
			if _, seen := parent[n]; seen {
				continue
			}
			if !w.IsPassable(n) {
				continue
			}
			parent[n] = cur
			queue = append(queue, n)
		}
	}
	return nil, false
}

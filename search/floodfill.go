package search

import "github.com/brensch/snekduel/game"

// FloodFill counts the cells reachable from start through passable cells,
// start included. Counting stops once limit cells have been seen; limit <= 0
// means no limit.
func FloodFill(w *game.World, start game.Point, limit int) int {
	seen := map[game.Point]struct{}{start: {}}
	queue := []game.Point{start}
	area := 0
	for len(queue) > 0 {
		if limit > 0 && area >= limit {
			break
		}
		cur := queue[0]
		queue = queue[1:]
		area++
		for _, d := range game.Directions {
			n := cur.Add(d)
			if _, ok := seen[n]; ok {
				continue
			}
			if !w.IsPassable(n) {
				continue
			}
			seen[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return area
}

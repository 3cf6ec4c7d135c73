package search

import (
	"container/heap"

	"github.com/brensch/snekduel/game"
)

type frontierItem struct {
	p    game.Point
	g    int
	f    int
	seq  int
	heap int
}

// frontier orders by f, then lower g, then insertion order.
type frontier []*frontierItem

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].g != q[j].g {
		return q[i].g < q[j].g
	}
	return q[i].seq < q[j].seq
}
func (q frontier) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].heap = i
	q[j].heap = j
}
func (q *frontier) Push(x any) {
	it := x.(*frontierItem)
	it.heap = len(*q)
	*q = append(*q, it)
}
func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// AStar finds an optimal path from start to goal using the Manhattan
// heuristic. When several optimal paths exist which one comes back is an
// implementation detail; only its length is guaranteed. ok is false when goal
// cannot be reached.
func AStar(w *game.World, start, goal game.Point) (Path, bool) {
	if start == goal {
		return Path{start}, true
	}

	parent := map[game.Point]game.Point{start: start}
	cost := map[game.Point]int{start: 0}
	closed := make(map[game.Point]struct{})

	q := &frontier{}
	seq := 0
	heap.Push(q, &frontierItem{p: start, g: 0, f: Manhattan(start, goal), seq: seq})

	for q.Len() > 0 {
		cur := heap.Pop(q).(*frontierItem)
		if cur.p == goal {
			return reconstruct(parent, start, goal), true
		}
		if _, done := closed[cur.p]; done {
			continue
		}
		closed[cur.p] = struct{}{}

		for _, d := range game.Directions {
			n := cur.p.Add(d)
			if !w.IsPassable(n) {
				continue
			}
			if _, done := closed[n]; done {
				continue
			}
			g := cur.g + 1
			if old, seen := cost[n]; seen && g >= old {
				continue
			}
			cost[n] = g
			parent[n] = cur.p
			seq++
			heap.Push(q, &frontierItem{p: n, g: g, f: g + Manhattan(n, goal), seq: seq})
		}
	}
	return nil, false
}

package search

import (
	"testing"

	"github.com/brensch/snekduel/game"
)

func emptyWorld(width, height int, head game.Point) *game.World {
	return game.NewWorld(game.NewSnake(head), nil, game.Point{}, width, height)
}

func TestBFS_StraightLine(t *testing.T) {
	w := game.NewWorld(game.NewSnake(game.Point{X: 5, Y: 5}), nil, game.Point{X: 8, Y: 5}, 12, 10)

	got, ok := BFS(w, game.Point{X: 5, Y: 5}, game.Point{X: 8, Y: 5})
	if !ok {
		t.Fatalf("expected a path")
	}
	want := Path{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 7, Y: 5}, {X: 8, Y: 5}}
	if len(got) != len(want) {
		t.Fatalf("path=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path[%d]=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestBFS_StartIsGoal(t *testing.T) {
	w := emptyWorld(4, 4, game.Point{X: 1, Y: 1})
	p, ok := BFS(w, game.Point{X: 1, Y: 1}, game.Point{X: 1, Y: 1})
	if !ok || len(p) != 1 || p.Cost() != 0 {
		t.Fatalf("path=%v ok=%v", p, ok)
	}
	if _, ok := p.Next(); ok {
		t.Fatalf("single-cell path has no next step")
	}
}

func TestBFSAndAStar_OptimalOnEmptyGrid(t *testing.T) {
	const width, height = 7, 6
	start := game.Point{X: 2, Y: 3}
	w := emptyWorld(width, height, start)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			goal := game.Point{X: x, Y: y}
			if goal == start {
				continue
			}
			bp, bok := BFS(w, start, goal)
			ap, aok := AStar(w, start, goal)
			if !bok || !aok {
				t.Fatalf("goal %v unreachable: bfs=%v astar=%v", goal, bok, aok)
			}
			md := Manhattan(start, goal)
			if bp.Cost() != md {
				t.Fatalf("bfs cost to %v = %d want %d", goal, bp.Cost(), md)
			}
			if ap.Cost() != md || ap.Cost() > bp.Cost() {
				t.Fatalf("astar cost to %v = %d, bfs %d, manhattan %d", goal, ap.Cost(), bp.Cost(), md)
			}
			assertContiguous(t, ap, start, goal)
			assertContiguous(t, bp, start, goal)
		}
	}
}

func TestAStar_RoutesAroundWall(t *testing.T) {
	// Opponent body forms a vertical wall at x=3 from y=0..3.
	you := game.NewSnake(game.Point{X: 1, Y: 0})
	opp := &game.Snake{Body: []game.Point{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 3}}}
	w := game.NewWorld(you, opp, game.Point{X: 5, Y: 0}, 7, 5)

	bp, ok := BFS(w, you.Head(), game.Point{X: 5, Y: 0})
	if !ok {
		t.Fatalf("bfs: expected a path")
	}
	ap, ok := AStar(w, you.Head(), game.Point{X: 5, Y: 0})
	if !ok {
		t.Fatalf("astar: expected a path")
	}
	// Down to y=4, across, and back up: 4 + 4 + 4 = 12 moves.
	if bp.Cost() != 12 || ap.Cost() != 12 {
		t.Fatalf("bfs=%d astar=%d want 12", bp.Cost(), ap.Cost())
	}
	for _, p := range ap[1:] {
		if !w.IsPassable(p) {
			t.Fatalf("astar walked through %v", p)
		}
	}
}

func TestSearch_Unreachable(t *testing.T) {
	// Goal (0,0) sealed off by the opponent.
	you := game.NewSnake(game.Point{X: 3, Y: 3})
	opp := &game.Snake{Body: []game.Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	w := game.NewWorld(you, opp, game.Point{}, 5, 5)

	if p, ok := BFS(w, you.Head(), game.Point{}); ok || p != nil {
		t.Fatalf("bfs found %v", p)
	}
	if p, ok := AStar(w, you.Head(), game.Point{}); ok || p != nil {
		t.Fatalf("astar found %v", p)
	}
}

func TestFloodFill_ExactBelowCap(t *testing.T) {
	// A 3x3 pocket in the top-left corner bounded by the opponent.
	you := game.NewSnake(game.Point{X: 6, Y: 6})
	opp := &game.Snake{Body: []game.Point{
		{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 3},
		{X: 2, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 3},
	}}
	w := game.NewWorld(you, opp, game.Point{}, 8, 8)

	if got := FloodFill(w, game.Point{X: 1, Y: 1}, 100); got != 9 {
		t.Fatalf("pocket area=%d want=9", got)
	}
	if got := FloodFill(w, game.Point{X: 1, Y: 1}, 0); got != 9 {
		t.Fatalf("uncapped pocket area=%d want=9", got)
	}
	if got := FloodFill(w, game.Point{X: 1, Y: 1}, 4); got != 4 {
		t.Fatalf("capped pocket area=%d want=4", got)
	}
}

func TestFloodFill_NeverExceedsCap(t *testing.T) {
	w := emptyWorld(10, 10, game.Point{X: 0, Y: 0})
	// 100 cells minus the head; the start is free.
	total := FloodFill(w, game.Point{X: 5, Y: 5}, 0)
	if total != 99 {
		t.Fatalf("open board area=%d want=99", total)
	}
	for _, limit := range []int{1, 2, 15, 50, 99, 100, 200} {
		got := FloodFill(w, game.Point{X: 5, Y: 5}, limit)
		if got > limit {
			t.Fatalf("limit %d: got %d", limit, got)
		}
		if total < limit && got != total {
			t.Fatalf("limit %d: got %d want exact %d", limit, got, total)
		}
	}
}

func TestNeighbors_FixedOrder(t *testing.T) {
	w := emptyWorld(5, 5, game.Point{X: 4, Y: 4})
	got := Neighbors(w, game.Point{X: 2, Y: 2})
	want := []game.Point{{X: 2, Y: 1}, {X: 2, Y: 3}, {X: 1, Y: 2}, {X: 3, Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("neighbors=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("neighbors[%d]=%v want=%v", i, got[i], want[i])
		}
	}
	if CountNeighbors(w, game.Point{X: 0, Y: 0}) != 2 {
		t.Fatalf("corner should have two neighbours")
	}
	// (4,3) is next to the head at (4,4).
	if CountNeighbors(w, game.Point{X: 4, Y: 3}) != 2 {
		t.Fatalf("cell next to head: got %d", CountNeighbors(w, game.Point{X: 4, Y: 3}))
	}
}

func assertContiguous(t *testing.T, p Path, start, goal game.Point) {
	t.Helper()
	if p[0] != start || p[len(p)-1] != goal {
		t.Fatalf("path %v does not run %v..%v", p, start, goal)
	}
	for i := 1; i < len(p); i++ {
		if Manhattan(p[i-1], p[i]) != 1 {
			t.Fatalf("path %v jumps at %d", p, i)
		}
	}
}

func BenchmarkFloodFill(b *testing.B) {
	w := emptyWorld(40, 30, game.Point{X: 0, Y: 0})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FloodFill(w, game.Point{X: 20, Y: 15}, 200)
	}
}

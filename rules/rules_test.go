package rules

import (
	"math/rand"
	"testing"

	"github.com/brensch/snekduel/game"
)

func TestSafeMoves_NeverCollides(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 300; trial++ {
		width, height := 4+rng.Intn(6), 4+rng.Intn(6)
		you := randomSnake(rng, width, height, 1+rng.Intn(6))
		opp := randomSnake(rng, width, height, 1+rng.Intn(6))
		w := game.NewWorld(you, opp, game.Point{}, width, height)

		for _, d := range SafeMoves(w) {
			next := you.Head().Add(d)
			if next.X < 0 || next.X >= width || next.Y < 0 || next.Y >= height {
				t.Fatalf("safe move %v leaves board to %v", d, next)
			}
			for _, p := range append(append([]game.Point{}, you.Body...), opp.Body...) {
				if p == next {
					t.Fatalf("safe move %v hits body at %v", d, next)
				}
			}
			if !IsMoveSafe(w, d) {
				t.Fatalf("IsMoveSafe disagrees for %v", d)
			}
		}
	}
}

func TestSafeMove_NoneLeftKeepsDirection(t *testing.T) {
	// Head at (0,0) boxed in by its own body and the wall.
	you := &game.Snake{Body: []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, Direction: game.Up}
	w := game.NewWorld(you, nil, game.Point{X: 3, Y: 3}, 5, 5)

	if moves := SafeMoves(w); len(moves) != 0 {
		t.Fatalf("expected no safe moves, got %v", moves)
	}
	if got := SafeMove(w, rand.New(rand.NewSource(1))); got != game.Up {
		t.Fatalf("SafeMove=%v want current direction up", got)
	}
}

func TestSafeMove_PicksOnlySafe(t *testing.T) {
	// Only Down is free from (0,0).
	you := &game.Snake{Body: []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, Direction: game.Left}
	w := game.NewWorld(you, nil, game.Point{X: 3, Y: 3}, 5, 5)
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 20; i++ {
		if got := SafeMove(w, rng); got != game.Down {
			t.Fatalf("SafeMove=%v want down", got)
		}
	}
	if got := SafeMove(w, nil); got != game.Down {
		t.Fatalf("SafeMove(nil rng)=%v want down", got)
	}
}

func TestGreedyDirection(t *testing.T) {
	cases := []struct {
		from, to game.Point
		want     game.Direction
	}{
		{game.Point{X: 5, Y: 5}, game.Point{X: 8, Y: 5}, game.Right},
		{game.Point{X: 5, Y: 5}, game.Point{X: 1, Y: 6}, game.Left},
		{game.Point{X: 5, Y: 5}, game.Point{X: 6, Y: 1}, game.Up},
		{game.Point{X: 5, Y: 5}, game.Point{X: 7, Y: 7}, game.Down},
		{game.Point{X: 5, Y: 5}, game.Point{X: 5, Y: 5}, game.Left},
	}
	for _, c := range cases {
		if got := GreedyDirection(c.from, c.to, game.Left); got != c.want {
			t.Fatalf("GreedyDirection(%v,%v)=%v want %v", c.from, c.to, got, c.want)
		}
	}
	if d, ok := SecondaryDirection(game.Point{X: 5, Y: 5}, game.Point{X: 8, Y: 4}); !ok || d != game.Up {
		t.Fatalf("SecondaryDirection=%v ok=%v want up", d, ok)
	}
	if _, ok := SecondaryDirection(game.Point{X: 5, Y: 5}, game.Point{X: 8, Y: 5}); ok {
		t.Fatalf("no secondary axis when level")
	}
}

func TestCollided(t *testing.T) {
	cases := []struct {
		name  string
		s     *game.Snake
		other *game.Snake
		want  bool
	}{
		{"free", &game.Snake{Body: []game.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}}, nil, false},
		{"wall left", &game.Snake{Body: []game.Point{{X: -1, Y: 2}}}, nil, true},
		{"wall bottom", &game.Snake{Body: []game.Point{{X: 2, Y: 5}}}, nil, true},
		{"self", &game.Snake{Body: []game.Point{{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 2}, {X: 2, Y: 2}}}, nil, true},
		{"opponent body", &game.Snake{Body: []game.Point{{X: 2, Y: 2}}}, &game.Snake{Body: []game.Point{{X: 3, Y: 2}, {X: 2, Y: 2}}}, true},
		{"head on", &game.Snake{Body: []game.Point{{X: 2, Y: 2}}}, &game.Snake{Body: []game.Point{{X: 2, Y: 2}}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Collided(c.s, c.other, 5, 5); got != c.want {
				t.Fatalf("Collided=%v want %v", got, c.want)
			}
		})
	}
}

// randomSnake builds a contiguous self-avoiding body by random walk.
func randomSnake(rng *rand.Rand, width, height, length int) *game.Snake {
	head := game.Point{X: rng.Intn(width), Y: rng.Intn(height)}
	s := &game.Snake{Body: []game.Point{head}, Direction: game.Right}
	seen := map[game.Point]bool{head: true}
	cur := head
	for len(s.Body) < length {
		moved := false
		for _, i := range rng.Perm(4) {
			n := cur.Add(game.Directions[i])
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height || seen[n] {
				continue
			}
			seen[n] = true
			s.Body = append(s.Body, n)
			cur = n
			moved = true
			break
		}
		if !moved {
			break
		}
	}
	return s
}

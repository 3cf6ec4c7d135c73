package strategy

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/search"
)

func allStrategies(opts Options) []Strategy {
	out := make([]Strategy, 0, len(registry))
	for _, name := range Names() {
		s, err := New(name, opts)
		if err != nil {
			panic(err)
		}
		out = append(out, s)
	}
	return out
}

// pocketWorld puts food in a three-cell pocket on the top row that the
// opponent walls off from below. The only way in is a step Left from (3,0).
func pocketWorld() *game.World {
	you := &game.Snake{Body: []game.Point{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}}, Direction: game.Up}
	opp := &game.Snake{Body: []game.Point{{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 1}}, Direction: game.Right}
	return game.NewWorld(you, opp, game.Point{X: 0, Y: 0}, 10, 10)
}

func TestEasy_NoRandomChasesFood(t *testing.T) {
	you := &game.Snake{Body: []game.Point{{X: 5, Y: 5}}, Direction: game.Right}
	w := game.NewWorld(you, nil, game.Point{X: 8, Y: 5}, 12, 10)

	s := NewTiered(Easy, Options{Rng: rand.New(rand.NewSource(1)), NoRandom: true})
	if got := s.Decide(w); got != game.Right {
		t.Fatalf("easy=%v want right", got)
	}
}

func TestEasy_RandomMovesAreSafe(t *testing.T) {
	w := pocketWorld()
	s := NewTiered(Easy, Options{Rng: rand.New(rand.NewSource(5))})
	for i := 0; i < 200; i++ {
		d := s.Decide(w)
		if !rules.IsMoveSafe(w, d) {
			t.Fatalf("easy picked unsafe %v", d)
		}
	}
}

func TestMedium_DeterministicWithoutJitter(t *testing.T) {
	you := &game.Snake{Body: []game.Point{{X: 5, Y: 5}, {X: 4, Y: 5}}, Direction: game.Right}
	w := game.NewWorld(you, nil, game.Point{X: 5, Y: 1}, 12, 10)
	s := NewTiered(Medium, Options{NoRandom: true})
	// Up: -2*3 + 6 + 2*3 = 6. Right and Down: -2*5 + 6 + 2*3 = 2.
	if got := s.Decide(w); got != game.Up {
		t.Fatalf("medium=%v want up", got)
	}
}

func TestHard_EquidistantIsDeterministic(t *testing.T) {
	you := &game.Snake{Body: []game.Point{{X: 2, Y: 5}}, Direction: game.Right}
	opp := &game.Snake{Body: []game.Point{{X: 8, Y: 5}}, Direction: game.Left}
	w := game.NewWorld(you, opp, game.Point{X: 5, Y: 5}, 11, 11)

	first := NewTiered(Hard, Options{Rng: rand.New(rand.NewSource(1))}).Decide(w)
	second := NewTiered(Hard, Options{Rng: rand.New(rand.NewSource(2))}).Decide(w)
	if first != second {
		t.Fatalf("hard tier differs across runs: %v vs %v", first, second)
	}
	// Right scores -4 + 50 + 5*3 = 61; every other move is far below.
	if first != game.Right {
		t.Fatalf("hard=%v want right", first)
	}
	if got := EvaluateMove(w, game.Point{X: 3, Y: 5}); got != 61 {
		t.Fatalf("EvaluateMove(right)=%d want 61", got)
	}
}

func TestHard_TieKeepsEnumerationOrder(t *testing.T) {
	// Food level with the head: Up and Down score the same, Left beats both.
	you := &game.Snake{Body: []game.Point{{X: 5, Y: 5}, {X: 6, Y: 5}}, Direction: game.Left}
	w := game.NewWorld(you, nil, game.Point{X: 2, Y: 5}, 11, 11)
	up := EvaluateMove(w, game.Point{X: 5, Y: 4})
	down := EvaluateMove(w, game.Point{X: 5, Y: 6})
	if up != down {
		t.Fatalf("expected a tie, up=%d down=%d", up, down)
	}
	if got := NewTiered(Hard, Options{}).Decide(w); got != game.Left {
		t.Fatalf("hard=%v want left", got)
	}

	// Wall off Left with the opponent: Up and Down now tie for best.
	opp := &game.Snake{Body: []game.Point{{X: 4, Y: 5}, {X: 3, Y: 5}}, Direction: game.Right}
	w = game.NewWorld(you, opp, game.Point{X: 2, Y: 5}, 11, 11)
	if got := NewTiered(Hard, Options{}).Decide(w); got != game.Up {
		t.Fatalf("hard=%v want up on tie", got)
	}
}

func TestEvaluateMove_Terms(t *testing.T) {
	if !IsBlocking(game.Point{X: 5, Y: 4}, game.Point{X: 5, Y: 1}, game.Point{X: 5, Y: 8}) {
		t.Fatalf("cell on the opponent's line should block")
	}
	if !IsBlocking(game.Point{X: 6, Y: 4}, game.Point{X: 5, Y: 1}, game.Point{X: 5, Y: 8}) {
		t.Fatalf("cell one off the line should block")
	}
	if IsBlocking(game.Point{X: 9, Y: 4}, game.Point{X: 5, Y: 1}, game.Point{X: 5, Y: 8}) {
		t.Fatalf("far cell should not block")
	}

	// Opponent head in the corner with its body along the top row: taking
	// (0,1) leaves it no free neighbour at all.
	you := &game.Snake{Body: []game.Point{{X: 1, Y: 1}}, Direction: game.Left}
	opp := &game.Snake{Body: []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, Direction: game.Left}
	w := game.NewWorld(you, opp, game.Point{X: 4, Y: 4}, 6, 6)
	// dist 7 -> -14; 7 < 8 -> +50; blocking 1+7 <= 8+1 -> +30; opp boxed -> +20;
	// (0,1) neighbours: (0,2) only -> +5.
	if got := EvaluateMove(w, game.Point{X: 0, Y: 1}); got != 91 {
		t.Fatalf("EvaluateMove=%d want 91", got)
	}
}

func TestPocket_EachStrategyReactsDifferently(t *testing.T) {
	cases := []struct {
		name string
		want game.Direction
	}{
		// BFS step into the pocket is safe, so it is taken.
		{NamePathfindingStrategic, game.Left},
		// Pocket area 3 < 15: go where the space is.
		{NameSmartSurvivor, game.Right},
		// Area 3 is not more than 1.1 * 3: follow the tail around the right.
		{NameUltimateHybrid, game.Right},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := New(c.name, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if got := s.Decide(pocketWorld()); got != c.want {
				t.Fatalf("%s=%v want %v", c.name, got, c.want)
			}
		})
	}
}

func TestCycleSafeAStar_FirstMoveFacesFood(t *testing.T) {
	w := pocketWorld()
	s := NewCycleSafeAStar(Options{})
	// Food is up-left; |dx| = 3 > |dy| = 0 so the opening faces left.
	if got := s.Decide(w); got != game.Left {
		t.Fatalf("first move=%v want left", got)
	}
	// Area 3 >= body length 3, so the A* step is accepted on later calls.
	if got := s.Decide(w); got != game.Left {
		t.Fatalf("second move=%v want left", got)
	}
}

func TestCycleSafeAStar_FollowsTailWhenFoodSealed(t *testing.T) {
	you := &game.Snake{Body: []game.Point{{X: 4, Y: 4}, {X: 4, Y: 5}, {X: 4, Y: 6}}, Direction: game.Up}
	opp := &game.Snake{Body: []game.Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, Direction: game.Up}
	w := game.NewWorld(you, opp, game.Point{X: 0, Y: 0}, 8, 8)

	s := NewCycleSafeAStar(Options{})
	s.Decide(w)
	got := s.Decide(w)
	if got != game.Left && got != game.Right {
		t.Fatalf("tail chase=%v want left or right", got)
	}
	if !rules.IsMoveSafe(w, got) {
		t.Fatalf("tail chase picked unsafe %v", got)
	}
}

func TestCycleSafeAStar_Resume(t *testing.T) {
	you := &game.Snake{Body: []game.Point{{X: 4, Y: 4}, {X: 4, Y: 5}, {X: 4, Y: 6}}, Direction: game.Up}
	opp := &game.Snake{Body: []game.Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, Direction: game.Up}
	w := game.NewWorld(you, opp, game.Point{X: 0, Y: 0}, 8, 8)

	var r Resumer = NewCycleSafeAStar(Options{})
	r.Resume(0)
	// Diagonal food: the opening ties and goes vertical.
	if got := r.(Strategy).Decide(w); got != game.Up {
		t.Fatalf("opening=%v want up", got)
	}

	s := NewCycleSafeAStar(Options{})
	s.Resume(7)
	if got := s.Decide(w); got != game.Left && got != game.Right {
		t.Fatalf("resumed=%v want the tail chase", got)
	}
}

func TestBoxedIn_EveryStrategyReturnsADirection(t *testing.T) {
	// Head at (0,0), wall on two sides and its own growing body on the rest.
	you := &game.Snake{
		Body:      []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Direction: game.Up,
		Growing:   true,
	}
	w := game.NewWorld(you, nil, game.Point{X: 4, Y: 4}, 6, 6)
	if len(rules.SafeMoves(w)) != 0 {
		t.Fatalf("setup: expected no safe moves")
	}

	for _, s := range allStrategies(Options{Rng: rand.New(rand.NewSource(3))}) {
		if cs, ok := s.(*CycleSafeAStar); ok {
			cs.hasMovedOnce = true
		}
		got := s.Decide(w)
		if got != game.Up {
			t.Fatalf("%s returned %v want current direction up", s.Name(), got)
		}
	}
}

func TestBoxedIn_TailFollowersSlideOntoTail(t *testing.T) {
	// Same box, but the tail will move away, so stepping onto it is fine.
	you := &game.Snake{
		Body:      []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Direction: game.Left,
	}
	w := game.NewWorld(you, nil, game.Point{X: 4, Y: 4}, 6, 6)
	for _, s := range []Strategy{NewUltimateHybrid(Options{}), &CycleSafeAStar{hasMovedOnce: true}} {
		if got := s.Decide(w); got != game.Down {
			t.Fatalf("%s=%v want down onto tail", s.Name(), got)
		}
	}
}

func TestDecide_DoesNotMutateSnapshot(t *testing.T) {
	w := pocketWorld()
	before := w.Clone()
	for _, s := range allStrategies(Options{Rng: rand.New(rand.NewSource(11))}) {
		s.Decide(w)
	}
	for i := range before.You.Body {
		if w.You.Body[i] != before.You.Body[i] {
			t.Fatalf("own body mutated at %d", i)
		}
	}
	for i := range before.Opponent.Body {
		if w.Opponent.Body[i] != before.Opponent.Body[i] {
			t.Fatalf("opponent body mutated at %d", i)
		}
	}
	if w.Food != before.Food {
		t.Fatalf("food mutated")
	}
}

func TestDecide_PanicsOnEmptyBody(t *testing.T) {
	for _, s := range allStrategies(Options{}) {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%s: expected panic on empty body", s.Name())
				}
			}()
			s.Decide(&game.World{Width: 5, Height: 5})
		}()
	}
}

func TestRegistry(t *testing.T) {
	names := Names()
	if len(names) != 7 {
		t.Fatalf("names=%v", names)
	}
	for _, name := range names {
		s, err := New(name, Options{})
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if s.Name() != name {
			t.Fatalf("New(%q).Name()=%q", name, s.Name())
		}
	}
	if _, err := New("nope", Options{}); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("err=%v want ErrUnknownStrategy", err)
	}
}

// neckWorld is a two-cell snake facing the right wall of a 6x6 board. Its
// tail is its neck, and the food at (0,0) is walled in by the opponent.
func neckWorld() *game.World {
	you := &game.Snake{Body: []game.Point{{X: 5, Y: 3}, {X: 4, Y: 3}}, Direction: game.Right}
	opp := &game.Snake{Body: []game.Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, Direction: game.Up}
	return game.NewWorld(you, opp, game.Point{X: 0, Y: 0}, 6, 6)
}

func TestTailFollowers_TwoCellSnakeNeverReverses(t *testing.T) {
	w := neckWorld()
	for _, s := range []Strategy{NewUltimateHybrid(Options{}), &CycleSafeAStar{hasMovedOnce: true}} {
		got := s.Decide(w)
		if got != game.Up {
			t.Fatalf("%s=%v want up", s.Name(), got)
		}

		// Apply it the way the arena does and make sure the snake survives.
		you := w.You.Clone()
		you.ChangeDirection(got)
		you.Move()
		if rules.Collided(you, w.Opponent, w.Width, w.Height) {
			t.Fatalf("%s: heading %v ran into %v", s.Name(), you.Direction, you.Head())
		}
	}
}

func TestTailStep_RefusesNeck(t *testing.T) {
	if d, ok := tailStep(neckWorld()); ok {
		t.Fatalf("tailStep=%v, want refused", d)
	}

	// Longer snakes keep following the tail.
	you := &game.Snake{Body: []game.Point{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}, {X: 2, Y: 3}}, Direction: game.Left}
	w := game.NewWorld(you, nil, game.Point{X: 0, Y: 0}, 6, 6)
	if d, ok := tailStep(w); !ok || d != game.Down {
		t.Fatalf("tailStep=%v,%v want down", d, ok)
	}
}

// sealedRing blocks every neighbour of p that lies on a width x height board.
func sealedRing(p game.Point, width, height int) *game.Snake {
	body := []game.Point{{X: p.X, Y: p.Y - 1}, {X: p.X + 1, Y: p.Y - 1}, {X: p.X + 1, Y: p.Y}, {X: p.X + 1, Y: p.Y + 1}, {X: p.X, Y: p.Y + 1}}
	out := &game.Snake{Direction: game.Up}
	for _, c := range body {
		if c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height {
			out.Body = append(out.Body, c)
		}
	}
	return out
}

func TestPathfindingStrategic_MobilityFallback(t *testing.T) {
	cases := []struct {
		name string
		you  *game.Snake
		want game.Direction
	}{
		// Down and Right both keep three exits; Right is closer to (4,4).
		// Down: 3 - 0.3 - 0.1 = 2.6. Right: 3 - 0.2 = 2.8. Left: 2 - 0.4.
		{
			name: "centre breaks a tie",
			you:  &game.Snake{Body: []game.Point{{X: 1, Y: 4}, {X: 1, Y: 3}}, Direction: game.Down},
			want: game.Right,
		},
		// Up: 3 - 0.1 = 2.9. Right: 3 - 0.3 = 2.7. Down hugs the wall: 2 - 0.3.
		{
			name: "wall costs an exit",
			you:  &game.Snake{Body: []game.Point{{X: 4, Y: 6}, {X: 3, Y: 6}}, Direction: game.Right},
			want: game.Up,
		},
	}
	food := game.Point{X: 0, Y: 0}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := game.NewWorld(c.you, sealedRing(food, 8, 8), food, 8, 8)
			if _, ok := search.BFS(w, w.You.Head(), w.Food); ok {
				t.Fatalf("setup: food should be unreachable")
			}
			got := NewPathfindingStrategic(Options{}).Decide(w)
			if got != c.want {
				t.Fatalf("decided %v want %v", got, c.want)
			}
			if !rules.IsMoveSafe(w, got) {
				t.Fatalf("decided unsafe %v", got)
			}
		})
	}
}

func TestUltimateHybrid_GreedyChain(t *testing.T) {
	cases := []struct {
		name string
		you  *game.Snake
		food game.Point
		want game.Direction
	}{
		// Left is the neck, so the secondary axis toward the food is used
		// even though Up comes first among the safe moves.
		{
			name: "secondary down",
			you:  &game.Snake{Body: []game.Point{{X: 5, Y: 2}, {X: 4, Y: 2}}, Direction: game.Right},
			food: game.Point{X: 0, Y: 5},
			want: game.Down,
		},
		{
			name: "secondary up",
			you:  &game.Snake{Body: []game.Point{{X: 5, Y: 3}, {X: 4, Y: 3}}, Direction: game.Right},
			food: game.Point{X: 0, Y: 0},
			want: game.Up,
		},
		// Food level with the head has no secondary axis; the first safe
		// move is taken.
		{
			name: "level food falls back to a safe move",
			you:  &game.Snake{Body: []game.Point{{X: 5, Y: 3}, {X: 4, Y: 3}}, Direction: game.Right},
			food: game.Point{X: 0, Y: 3},
			want: game.Up,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := game.NewWorld(c.you, sealedRing(c.food, 6, 6), c.food, 6, 6)
			if got := NewUltimateHybrid(Options{}).Decide(w); got != c.want {
				t.Fatalf("decided %v want %v", got, c.want)
			}
		})
	}
}

func TestMedium_JitterStaysSafe(t *testing.T) {
	worlds := []struct {
		name string
		w    *game.World
	}{
		{"pocket", pocketWorld()},
		{"neck", neckWorld()},
		{"open", game.NewWorld(&game.Snake{Body: []game.Point{{X: 5, Y: 5}, {X: 4, Y: 5}}, Direction: game.Right}, nil, game.Point{X: 5, Y: 1}, 12, 10)},
	}
	for _, c := range worlds {
		t.Run(c.name, func(t *testing.T) {
			s := NewTiered(Medium, Options{Rng: rand.New(rand.NewSource(9))})
			for i := 0; i < 200; i++ {
				if d := s.Decide(c.w); !rules.IsMoveSafe(c.w, d) {
					t.Fatalf("medium picked unsafe %v on call %d", d, i)
				}
			}
		})
	}
}

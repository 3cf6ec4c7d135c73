// Package strategy holds the interchangeable move-decision policies.
//
// Every policy maps one game.World snapshot to one game.Direction. The
// pathfinding helpers they share live in package search and the safety
// checks in package rules; strategies do not embed one another.
package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/search"
)

// Strategy picks a snake's next direction.
//
// Decide must not keep w after returning. It always returns a concrete
// direction; when nothing is safe that is the snake's current direction.
// Decide panics if w breaks the snapshot contract (for example an empty body).
type Strategy interface {
	Name() string
	Decide(w *game.World) game.Direction
}

// Resumer is implemented by strategies that carry state across the ticks
// of a round. Resume puts a fresh instance into the state it would have at
// tick turn, as far as that state can be rebuilt from the board alone.
type Resumer interface {
	Resume(turn int)
}

// Options configures a strategy instance.
type Options struct {
	// Rng drives every random choice the strategy makes. A nil Rng makes the
	// strategy fully deterministic: random branches are skipped and random
	// fallbacks take the first safe move.
	Rng *rand.Rand
	// NoRandom disables the easy tier's random moves and the medium tier's
	// jitter even when Rng is set.
	NoRandom bool
}

// Factory builds a fresh strategy instance.
type Factory func(opts Options) Strategy

const (
	NameEasy                 = "tiered-easy"
	NameMedium               = "tiered-medium"
	NameHard                 = "tiered-hard"
	NameCycleSafeAStar       = "cycle-safe-astar"
	NamePathfindingStrategic = "pathfinding-strategic"
	NameSmartSurvivor        = "smart-survivor"
	NameUltimateHybrid       = "ultimate-hybrid"
)

// ErrUnknownStrategy is returned by New for names not in the registry.
var ErrUnknownStrategy = errors.New("unknown strategy")

var registry = map[string]Factory{
	NameEasy:                 func(o Options) Strategy { return NewTiered(Easy, o) },
	NameMedium:               func(o Options) Strategy { return NewTiered(Medium, o) },
	NameHard:                 func(o Options) Strategy { return NewTiered(Hard, o) },
	NameCycleSafeAStar:       func(o Options) Strategy { return NewCycleSafeAStar(o) },
	NamePathfindingStrategic: func(o Options) Strategy { return NewPathfindingStrategic(o) },
	NameSmartSurvivor:        func(o Options) Strategy { return NewSmartSurvivor(o) },
	NameUltimateHybrid:       func(o Options) Strategy { return NewUltimateHybrid(o) },
}

// New builds the named strategy.
func New(name string, opts Options) (Strategy, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f(opts), nil
}

// Lookup returns the factory for name.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return f, nil
}

// Names lists the registered strategies in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func stepTo(w *game.World, next game.Point) game.Direction {
	head := w.You.Head()
	return game.Direction{X: next.X - head.X, Y: next.Y - head.Y}
}

// greedyOrSafe is the basic chase: the greedy axis toward target if that is
// safe, otherwise the last-resort safe move.
func greedyOrSafe(w *game.World, target game.Point, rng *rand.Rand) game.Direction {
	d := rules.GreedyDirection(w.You.Head(), target, w.You.Direction)
	if rules.IsMoveSafe(w, d) {
		return d
	}
	return rules.SafeMove(w, rng)
}

// tailTarget returns a snapshot in which the own tail cell is free, so a path
// can end on it. A growing snake keeps its tail next tick, so it stays blocked.
func tailTarget(w *game.World) (*game.World, game.Point, bool) {
	if w.You.Len() < 2 {
		return nil, game.Point{}, false
	}
	tail := w.You.Tail()
	if w.You.Growing {
		return w, tail, true
	}
	return w.WithFreed(tail), tail, true
}

// tailStep is the first A* step toward the own tail. A two-cell snake's tail
// is its neck, and a step onto it is a reversal that ChangeDirection drops,
// so that step is refused.
func tailStep(w *game.World) (game.Direction, bool) {
	tw, tail, ok := tailTarget(w)
	if !ok {
		return game.Direction{}, false
	}
	path, ok := search.AStar(tw, w.You.Head(), tail)
	if !ok {
		return game.Direction{}, false
	}
	next, ok := path.Next()
	if !ok {
		return game.Direction{}, false
	}
	d := stepTo(w, next)
	if d == w.You.Direction.Opposite() {
		return game.Direction{}, false
	}
	return d, true
}

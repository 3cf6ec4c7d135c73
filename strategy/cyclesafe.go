package strategy

import (
	"math/rand"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/search"
)

// CycleSafeAreaCap bounds the flood fill used to vet a step toward food.
const CycleSafeAreaCap = 200

// CycleSafeAStar chases food with A* but only takes a step that leaves at
// least a body length of room behind it. Otherwise it follows its own tail.
type CycleSafeAStar struct {
	rng          *rand.Rand
	hasMovedOnce bool
}

func NewCycleSafeAStar(opts Options) *CycleSafeAStar {
	return &CycleSafeAStar{rng: opts.Rng}
}

func (c *CycleSafeAStar) Name() string { return NameCycleSafeAStar }

// Resume skips the opening move once the round is past tick 0.
func (c *CycleSafeAStar) Resume(turn int) { c.hasMovedOnce = turn > 0 }

func (c *CycleSafeAStar) Decide(w *game.World) game.Direction {
	w.MustValidate()
	head := w.You.Head()

	// The very first decision just faces the food so the opening turn is
	// never a rejected reversal.
	if !c.hasMovedOnce {
		c.hasMovedOnce = true
		return rules.GreedyDirection(head, w.Food, w.You.Direction)
	}

	if path, ok := search.AStar(w, head, w.Food); ok {
		if next, ok := path.Next(); ok && search.FloodFill(w, next, CycleSafeAreaCap) >= w.You.Len() {
			return stepTo(w, next)
		}
	}

	if d, ok := tailStep(w); ok {
		return d
	}

	return greedyOrSafe(w, w.Food, c.rng)
}

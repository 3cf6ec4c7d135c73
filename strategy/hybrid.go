package strategy

import (
	"math/rand"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/search"
)

const (
	// HybridAreaCap bounds the hybrid's flood fill like its siblings.
	HybridAreaCap = 200
	// HybridAreaFactor is the room a food step must leave, relative to the
	// body length.
	HybridAreaFactor = 1.1
)

// UltimateHybrid combines the A* chase, tail following and a two-axis greedy
// fallback.
type UltimateHybrid struct {
	rng *rand.Rand
}

func NewUltimateHybrid(opts Options) *UltimateHybrid {
	return &UltimateHybrid{rng: opts.Rng}
}

func (u *UltimateHybrid) Name() string { return NameUltimateHybrid }

func (u *UltimateHybrid) Decide(w *game.World) game.Direction {
	w.MustValidate()
	head := w.You.Head()

	if path, ok := search.AStar(w, head, w.Food); ok {
		if next, ok := path.Next(); ok {
			area := search.FloodFill(w, next, HybridAreaCap)
			if float64(area) > float64(w.You.Len())*HybridAreaFactor {
				return stepTo(w, next)
			}
		}
	}

	if d, ok := tailStep(w); ok {
		return d
	}

	primary := rules.GreedyDirection(head, w.Food, w.You.Direction)
	if rules.IsMoveSafe(w, primary) {
		return primary
	}
	if secondary, ok := rules.SecondaryDirection(head, w.Food); ok && rules.IsMoveSafe(w, secondary) {
		return secondary
	}
	return rules.SafeMove(w, u.rng)
}

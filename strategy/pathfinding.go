package strategy

import (
	"math"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/search"
)

// centerBias is the per-cell penalty for distance from the board centre on
// each axis in the mobility fallback.
const centerBias = 0.1

// PathfindingStrategic follows the BFS route to food while the next step is
// safe, and otherwise moves to wherever it keeps the most options open.
type PathfindingStrategic struct{}

func NewPathfindingStrategic(_ Options) *PathfindingStrategic {
	return &PathfindingStrategic{}
}

func (p *PathfindingStrategic) Name() string { return NamePathfindingStrategic }

func (p *PathfindingStrategic) Decide(w *game.World) game.Direction {
	w.MustValidate()
	head := w.You.Head()

	if path, ok := search.BFS(w, head, w.Food); ok {
		if next, ok := path.Next(); ok {
			d := stepTo(w, next)
			if rules.IsMoveSafe(w, d) {
				return d
			}
		}
	}
	return mobilityFallback(w)
}

// mobilityFallback picks the safe move with the most onward moves, nudged
// toward the centre. Ties keep the earliest direction.
func mobilityFallback(w *game.World) game.Direction {
	head := w.You.Head()
	cx, cy := w.Width/2, w.Height/2
	best := w.You.Direction
	bestScore := math.Inf(-1)
	for _, d := range rules.SafeMoves(w) {
		next := head.Add(d)
		score := float64(search.CountNeighbors(w, next))
		score -= math.Abs(float64(next.X-cx)) * centerBias
		score -= math.Abs(float64(next.Y-cy)) * centerBias
		if score > bestScore {
			bestScore = score
			best = d
		}
	}
	return best
}

package strategy

import (
	"math"
	"math/rand"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/search"
)

// Level selects the tiered heuristic's difficulty.
type Level int

const (
	Easy Level = iota
	Medium
	Hard
)

func (l Level) String() string {
	switch l {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

const (
	// EasyRandomRate is how often the easy tier wanders off randomly.
	EasyRandomRate = 0.3
	// MediumJitter is the upper bound of the medium tier's score noise.
	MediumJitter = 2.0
)

// Tiered is the heuristic policy with easy, medium and hard modes.
type Tiered struct {
	level      Level
	rng        *rand.Rand
	randomRate float64
	jitter     float64
}

func NewTiered(level Level, opts Options) *Tiered {
	t := &Tiered{level: level, rng: opts.Rng, randomRate: EasyRandomRate, jitter: MediumJitter}
	if opts.NoRandom || opts.Rng == nil {
		t.randomRate = 0
		t.jitter = 0
	}
	return t
}

func (t *Tiered) Name() string {
	switch t.level {
	case Easy:
		return NameEasy
	case Medium:
		return NameMedium
	default:
		return NameHard
	}
}

func (t *Tiered) Decide(w *game.World) game.Direction {
	w.MustValidate()
	switch t.level {
	case Easy:
		return t.easy(w)
	case Medium:
		return t.medium(w)
	default:
		return t.hard(w)
	}
}

func (t *Tiered) easy(w *game.World) game.Direction {
	if t.randomRate > 0 && t.rng.Float64() < t.randomRate {
		return rules.SafeMove(w, t.rng)
	}
	return greedyOrSafe(w, w.Food, t.rng)
}

func (t *Tiered) medium(w *game.World) game.Direction {
	head := w.You.Head()
	best := w.You.Direction
	bestScore := math.Inf(-1)
	for _, d := range rules.SafeMoves(w) {
		next := head.Add(d)
		score := float64(-2 * search.Manhattan(next, w.Food))
		if next.X > 0 && next.X < w.Width-1 {
			score += 3
		}
		if next.Y > 0 && next.Y < w.Height-1 {
			score += 3
		}
		score += float64(2 * search.CountNeighbors(w, next))
		if t.jitter > 0 {
			score += t.rng.Float64() * t.jitter
		}
		if score > bestScore {
			bestScore = score
			best = d
		}
	}
	return best
}

// hard scores every safe move with EvaluateMove. Equal scores keep the
// earliest move in game.Directions order.
func (t *Tiered) hard(w *game.World) game.Direction {
	head := w.You.Head()
	var best game.Direction
	bestScore := math.MinInt
	found := false
	for _, d := range rules.SafeMoves(w) {
		score := EvaluateMove(w, head.Add(d))
		if !found || score > bestScore {
			best, bestScore, found = d, score, true
		}
	}
	if !found {
		return rules.SafeMove(w, t.rng)
	}
	return best
}

// EvaluateMove is the adversarial score for moving the head to c:
//
//	-2 per step from c to the food
//	+50 if c is strictly closer to the food than the opponent's head
//	+30 if c sits on or next to a shortest opponent route to the food
//	+20 if the opponent is left with at most two free neighbours
//	+5 per free neighbour of c
//
// Opponent terms are dropped when there is no opponent.
func EvaluateMove(w *game.World, c game.Point) int {
	dist := search.Manhattan(c, w.Food)
	score := -2 * dist

	if w.Opponent != nil && w.Opponent.Len() > 0 {
		opp := w.Opponent.Head()
		oppDist := search.Manhattan(opp, w.Food)
		if dist < oppDist {
			score += 50
		}
		if IsBlocking(c, opp, w.Food) {
			score += 30
		}
		if search.CountNeighbors(w.WithBlocked(c), opp) <= 2 {
			score += 20
		}
	}

	score += 5 * search.CountNeighbors(w, c)
	return score
}

// IsBlocking reports whether c lies on or within one step of a shortest
// route from opp to food.
func IsBlocking(c, opp, food game.Point) bool {
	return search.Manhattan(opp, c)+search.Manhattan(c, food) <= search.Manhattan(opp, food)+1
}

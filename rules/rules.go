// Package rules implements the move safety layer and the collision test the
// arena applies after every tick.
package rules

import (
	"math/rand"

	"github.com/brensch/snekduel/game"
)

// SafeMoves returns every direction whose next head cell is passable under
// the current bodies, in game.Directions order. It is a one-ply check; no
// bodies are advanced.
func SafeMoves(w *game.World) []game.Direction {
	head := w.You.Head()
	moves := make([]game.Direction, 0, 4)
	for _, d := range game.Directions {
		if w.IsPassable(head.Add(d)) {
			moves = append(moves, d)
		}
	}
	return moves
}

// IsMoveSafe is the single-direction form of SafeMoves.
func IsMoveSafe(w *game.World, d game.Direction) bool {
	return w.IsPassable(w.You.Head().Add(d))
}

// SafeMove is the last-resort fallback: a uniformly random safe move, or the
// current direction when nothing is safe. rng may be nil, in which case the
// first safe move is returned.
func SafeMove(w *game.World, rng *rand.Rand) game.Direction {
	moves := SafeMoves(w)
	if len(moves) == 0 {
		return w.You.Direction
	}
	if rng == nil {
		return moves[0]
	}
	return moves[rng.Intn(len(moves))]
}

// GreedyDirection points along the axis with the larger offset from 'from'
// to 'to'. Equal offsets go vertical. When the two points coincide current
// is returned.
func GreedyDirection(from, to game.Point, current game.Direction) game.Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y
	switch {
	case abs(dx) > abs(dy):
		if dx > 0 {
			return game.Right
		}
		return game.Left
	case dy != 0:
		if dy > 0 {
			return game.Down
		}
		return game.Up
	default:
		return current
	}
}

// SecondaryDirection is the other axis toward the target. ok is false when
// the target is level with 'from' on that axis.
func SecondaryDirection(from, to game.Point) (game.Direction, bool) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if abs(dx) > abs(dy) {
		if dy == 0 {
			return game.Direction{}, false
		}
		if dy > 0 {
			return game.Down, true
		}
		return game.Up, true
	}
	if dx == 0 {
		return game.Direction{}, false
	}
	if dx > 0 {
		return game.Right, true
	}
	return game.Left, true
}

// Collided reports whether s's head is off the board, on its own body or on
// other's body. other may be nil.
func Collided(s *game.Snake, other *game.Snake, width, height int) bool {
	head := s.Head()
	if head.X < 0 || head.X >= width || head.Y < 0 || head.Y >= height {
		return true
	}
	for _, p := range s.Body[1:] {
		if p == head {
			return true
		}
	}
	if other != nil {
		for _, p := range other.Body {
			if p == head {
				return true
			}
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package strategy

import (
	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/search"
)

const (
	// SurvivorAreaCap bounds every flood fill the smart survivor runs.
	SurvivorAreaCap = 100
	// SurvivorMinArea is the room a food step must leave open.
	SurvivorMinArea = 15
)

// SmartSurvivor heads for food along the BFS route only when the step leads
// into an open region, and otherwise moves toward the most space.
type SmartSurvivor struct{}

func NewSmartSurvivor(_ Options) *SmartSurvivor {
	return &SmartSurvivor{}
}

func (s *SmartSurvivor) Name() string { return NameSmartSurvivor }

func (s *SmartSurvivor) Decide(w *game.World) game.Direction {
	w.MustValidate()
	head := w.You.Head()

	if path, ok := search.BFS(w, head, w.Food); ok {
		if next, ok := path.Next(); ok && search.FloodFill(w, next, SurvivorAreaCap) >= SurvivorMinArea {
			d := stepTo(w, next)
			if rules.IsMoveSafe(w, d) {
				return d
			}
		}
	}
	return maximizeSpace(w)
}

// maximizeSpace picks the safe move with the largest capped flood fill.
// Ties keep the earliest direction; with no safe move the current direction
// is kept.
func maximizeSpace(w *game.World) game.Direction {
	head := w.You.Head()
	best := w.You.Direction
	bestArea := -1
	for _, d := range rules.SafeMoves(w) {
		area := search.FloodFill(w, head.Add(d), SurvivorAreaCap)
		if area > bestArea {
			bestArea = area
			best = d
		}
	}
	return best
}

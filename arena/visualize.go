// visualize.go - Console board dumps for tracing rounds.

package arena

import (
	"fmt"
	"strings"

	"github.com/brensch/snekduel/game"
)

// Board renders f as text, top row first. A is drawn as A/a, B as B/b and
// the food as F. Cells covered by both snakes show the later-drawn B.
func (f Frame) Board() string {
	grid := make([][]byte, f.Height)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", f.Width))
	}
	put := func(p game.Point, c byte) {
		if p.X >= 0 && p.X < f.Width && p.Y >= 0 && p.Y < f.Height {
			grid[p.Y][p.X] = c
		}
	}

	put(f.Food, 'F')
	for i, p := range f.A.Body {
		if i == 0 {
			put(p, 'A')
		} else {
			put(p, 'a')
		}
	}
	for i, p := range f.B.Body {
		if i == 0 {
			put(p, 'B')
		} else {
			put(p, 'b')
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "tick %d  A=%d  B=%d\n", f.Tick, f.A.Score, f.B.Score)
	for _, row := range grid {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

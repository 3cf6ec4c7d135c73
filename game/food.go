// food.go implements apple placement for a duel.

package game

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// FoodMargin keeps apples off the outer rings of the board.
const FoodMargin = 2

// SpawnFood picks a free cell for the next apple.
//
// Cells inside the FoodMargin ring are preferred; if none is free the whole
// board is used. If rng is nil the pick is a deterministic hash of the bodies
// so replays line up. ok is false only when the board is full.
func SpawnFood(rng *rand.Rand, a, b *Snake, width, height int) (Point, bool) {
	var bodies [][]Point
	for _, s := range []*Snake{a, b} {
		if s != nil {
			bodies = append(bodies, s.Body)
		}
	}
	occupied := OccupancyOf(bodies...)

	free := freeCells(occupied, FoodMargin, width-1-FoodMargin, FoodMargin, height-1-FoodMargin)
	if len(free) == 0 {
		free = freeCells(occupied, 0, width-1, 0, height-1)
	}
	if len(free) == 0 {
		return Point{}, false
	}

	var idx int
	if rng != nil {
		idx = rng.Intn(len(free))
	} else {
		idx = int(deterministicU64(a, b, 0x464F4F445F494E49) % uint64(len(free)))
	}
	return free[idx], true
}

func freeCells(occupied Occupancy, minX, maxX, minY, maxY int) []Point {
	if maxX < minX || maxY < minY {
		return nil
	}
	out := make([]Point, 0, (maxX-minX+1)*(maxY-minY+1))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := Point{X: x, Y: y}
			if occupied.Has(p) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func deterministicU64(a, b *Snake, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])
	for _, s := range []*Snake{a, b} {
		if s == nil {
			continue
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(s.Score))
		_, _ = h.Write(buf[:])
		for _, p := range s.Body {
			binary.LittleEndian.PutUint64(buf[:], (uint64(uint32(p.X))<<32)|uint64(uint32(p.Y)))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}

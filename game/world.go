package game

// Occupancy is a set of cells covered by snake bodies.
type Occupancy map[Point]struct{}

func (o Occupancy) Has(p Point) bool {
	_, ok := o[p]
	return ok
}

// OccupancyOf indexes every cell of the given bodies.
func OccupancyOf(bodies ...[]Point) Occupancy {
	n := 0
	for _, b := range bodies {
		n += len(b)
	}
	o := make(Occupancy, n)
	for _, b := range bodies {
		for _, p := range b {
			o[p] = struct{}{}
		}
	}
	return o
}

// World is the read-only view a strategy gets for one decision.
//
// NewWorld copies both bodies, so nothing a strategy does to a World can leak
// back into the arena. Strategies must not keep a World past the call.
type World struct {
	You      Snake  `json:"you"`
	Opponent *Snake `json:"opponent,omitempty"`
	Food     Point  `json:"food"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`

	occupied Occupancy
}

// NewWorld builds a snapshot from the perspective of you. opponent may be nil.
func NewWorld(you *Snake, opponent *Snake, food Point, width, height int) *World {
	w := &World{
		You:    *you.Clone(),
		Food:   food,
		Width:  width,
		Height: height,
	}
	if opponent != nil {
		w.Opponent = opponent.Clone()
	}
	w.index()
	return w
}

func (w *World) index() {
	if w.Opponent != nil {
		w.occupied = OccupancyOf(w.You.Body, w.Opponent.Body)
		return
	}
	w.occupied = OccupancyOf(w.You.Body)
}

// Occupied returns the body occupancy set, building it if the World was
// decoded rather than constructed with NewWorld.
func (w *World) Occupied() Occupancy {
	if w.occupied == nil {
		w.index()
	}
	return w.occupied
}

// InBounds reports whether p lies on the board.
func (w *World) InBounds(p Point) bool {
	return p.X >= 0 && p.X <= w.Width-1 && p.Y >= 0 && p.Y <= w.Height-1
}

// IsPassable reports whether p is on the board and not under any body.
func (w *World) IsPassable(p Point) bool {
	return IsPassable(p, w.Occupied(), w.Width, w.Height)
}

// WithBlocked returns a snapshot that additionally treats p as occupied.
// The receiver is left untouched.
func (w *World) WithBlocked(p Point) *World {
	return w.withOccupancy(func(o Occupancy) { o[p] = struct{}{} })
}

// WithFreed returns a snapshot that treats p as free.
// The receiver is left untouched.
func (w *World) WithFreed(p Point) *World {
	return w.withOccupancy(func(o Occupancy) { delete(o, p) })
}

func (w *World) withOccupancy(edit func(Occupancy)) *World {
	src := w.Occupied()
	occ := make(Occupancy, len(src)+1)
	for k := range src {
		occ[k] = struct{}{}
	}
	edit(occ)
	out := *w
	out.occupied = occ
	return &out
}

// Clone performs a deep copy of the snapshot.
func (w *World) Clone() *World {
	if w == nil {
		return nil
	}
	return NewWorld(&w.You, w.Opponent, w.Food, w.Width, w.Height)
}

// MustValidate panics if the snapshot breaks the caller contract. An empty
// body means the caller handed over a broken world; there is nothing sensible
// to decide on.
func (w *World) MustValidate() {
	if w == nil {
		panic("game: nil world")
	}
	if len(w.You.Body) == 0 {
		panic("game: world has an empty own body")
	}
	if w.Opponent != nil && len(w.Opponent.Body) == 0 {
		panic("game: world has an empty opponent body")
	}
	if w.Width <= 0 || w.Height <= 0 {
		panic("game: world has non-positive dimensions")
	}
}

// IsPassable reports whether p is on a width x height board and not in
// occupied. Build occupied once with OccupancyOf and reuse it across calls.
func IsPassable(p Point, occupied Occupancy, width, height int) bool {
	if p.X < 0 || p.X > width-1 || p.Y < 0 || p.Y > height-1 {
		return false
	}
	return !occupied.Has(p)
}

// Package game defines the core state types for a two-snake duel.
//
// These types are the minimal state the decision strategies and the arena
// harness share. A World is a read-only snapshot handed to a strategy for a
// single decision; the arena owns the live Snake values.
package game

import "fmt"

// Point is a board coordinate. (0,0) is the top-left cell and y grows
// downwards, so Up is (0,-1).
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved one step in d.
func (p Point) Add(d Direction) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a unit vector on the grid.
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// Directions is the fixed enumeration order. Everything that iterates over
// moves uses it so tie-breaks are reproducible.
var Directions = [4]Direction{Up, Down, Left, Right}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return Direction{X: -d.X, Y: -d.Y}
}

// Valid reports whether d is one of the four unit directions.
func (d Direction) Valid() bool {
	for _, v := range Directions {
		if d == v {
			return true
		}
	}
	return false
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("dir(%d,%d)", d.X, d.Y)
	}
}

// ParseDirection maps "up", "down", "left" and "right" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Direction{}, fmt.Errorf("unknown direction %q", s)
}

// Snake is one agent's body and movement state.
// Body is head first and never empty.
type Snake struct {
	Body      []Point   `json:"body"`
	Direction Direction `json:"direction"`
	Growing   bool      `json:"growing"`
	Score     int       `json:"score"`
}

// NewSnake places a one-cell snake at p facing right.
func NewSnake(p Point) *Snake {
	return &Snake{Body: []Point{p}, Direction: Right}
}

func (s *Snake) Head() Point {
	return s.Body[0]
}

func (s *Snake) Tail() Point {
	return s.Body[len(s.Body)-1]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// ChangeDirection turns the snake unless d would reverse it. Reversals and
// non-unit directions are ignored, not reported.
func (s *Snake) ChangeDirection(d Direction) {
	if !d.Valid() || d.Opposite() == s.Direction {
		return
	}
	s.Direction = d
}

// Move advances the head one cell. The tail is dropped unless the snake is
// growing, in which case the growth flag is consumed.
func (s *Snake) Move() {
	head := s.Head().Add(s.Direction)
	s.Body = append(s.Body, Point{})
	copy(s.Body[1:], s.Body[:len(s.Body)-1])
	s.Body[0] = head
	if s.Growing {
		s.Growing = false
		return
	}
	s.Body = s.Body[:len(s.Body)-1]
}

// Grow marks the snake to keep its tail on the next move and counts an apple.
func (s *Snake) Grow() {
	s.Growing = true
	s.Score++
}

// Clone performs a deep copy of the snake.
func (s *Snake) Clone() *Snake {
	if s == nil {
		return nil
	}
	out := *s
	out.Body = make([]Point, len(s.Body))
	copy(out.Body, s.Body)
	return &out
}

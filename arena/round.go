// Package arena runs strategies against each other: one round at a time,
// as a best-of-N tournament, or as a round-robin league.
//
// A round is strictly single threaded. The Round owns both snakes and the
// food; strategies only ever see fresh game.World snapshots.
package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/rules"
	"github.com/brensch/snekduel/strategy"
)

const (
	DefaultWidth     = 40
	DefaultHeight    = 30
	DefaultMaxApples = 10
)

// ErrInvalidOptions is returned when round options cannot describe a game.
var ErrInvalidOptions = errors.New("invalid round options")

// Side identifies an agent within a round.
type Side int

const (
	Draw Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "draw"
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "A":
		*s = SideA
	case "B":
		*s = SideB
	case "draw":
		*s = Draw
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Phase is the round lifecycle: Setup, then Stepping until Terminated.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseStepping
	PhaseTerminated
)

// End reasons recorded on a Result.
const (
	ReasonCollision = "collision"
	ReasonApples    = "apples"
	ReasonStepCap   = "step_cap"
	ReasonBoardFull = "board_full"
)

// RoundOptions configures a single round.
type RoundOptions struct {
	Width     int
	Height    int
	MaxApples int
	// StepCap ends the round as a draw after this many ticks. Zero means no
	// cap, which is the classic rule set: two cautious agents can circle
	// forever.
	StepCap int
	// Rng places food. Nil uses a deterministic hash of the bodies.
	Rng *rand.Rand
	// OnTurn, if set, is called with the setup frame and after every tick.
	OnTurn func(Frame)
	// Trace logs the board at debug level after every tick.
	Trace  bool
	Logger *slog.Logger
}

func (o RoundOptions) withDefaults() RoundOptions {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MaxApples == 0 {
		o.MaxApples = DefaultMaxApples
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Validate reports option values no round can be played with.
func (o RoundOptions) Validate() error {
	if o.Width < 4 || o.Height < 1 {
		return fmt.Errorf("%w: board %dx%d is too small", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.MaxApples < 1 {
		return fmt.Errorf("%w: max apples %d", ErrInvalidOptions, o.MaxApples)
	}
	if o.StepCap < 0 {
		return fmt.Errorf("%w: step cap %d", ErrInvalidOptions, o.StepCap)
	}
	return nil
}

// Result is how a round ended.
type Result struct {
	Winner Side   `json:"winner"`
	Reason string `json:"reason"`
	Ticks  int    `json:"ticks"`
	ScoreA int    `json:"score_a"`
	ScoreB int    `json:"score_b"`
}

// Frame is the board after a tick. Tick 0 is the setup position.
type Frame struct {
	Tick   int            `json:"tick"`
	A      game.Snake     `json:"a"`
	B      game.Snake     `json:"b"`
	Food   game.Point     `json:"food"`
	MoveA  game.Direction `json:"move_a"`
	MoveB  game.Direction `json:"move_b"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
}

// Round is one game between two strategies.
type Round struct {
	opts   RoundOptions
	stratA strategy.Strategy
	stratB strategy.Strategy

	a     *game.Snake
	b     *game.Snake
	food  game.Point
	tick  int
	phase Phase

	result Result
}

// NewRound validates opts and performs setup: both snakes on their start
// cells, food placed, and both facing the food.
func NewRound(a, b strategy.Strategy, opts RoundOptions) (*Round, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Round{opts: opts, stratA: a, stratB: b, phase: PhaseSetup}
	r.a = game.NewSnake(game.Point{X: opts.Width / 4, Y: opts.Height / 2})
	r.b = game.NewSnake(game.Point{X: 3 * opts.Width / 4, Y: opts.Height / 2})

	food, ok := game.SpawnFood(opts.Rng, r.a, r.b, opts.Width, opts.Height)
	if !ok {
		return nil, fmt.Errorf("%w: no free cell for food", ErrInvalidOptions)
	}
	r.food = food

	r.a.Direction = rules.GreedyDirection(r.a.Head(), r.food, r.a.Direction)
	r.b.Direction = rules.GreedyDirection(r.b.Head(), r.food, r.b.Direction)

	r.phase = PhaseStepping
	r.emit(game.Direction{}, game.Direction{})
	return r, nil
}

func (r *Round) Phase() Phase { return r.phase }

func (r *Round) Tick() int { return r.tick }

// Result is only meaningful once Phase is PhaseTerminated.
func (r *Round) Result() Result { return r.result }

// World returns the snapshot side would be handed this tick.
func (r *Round) World(side Side) *game.World {
	if side == SideB {
		return game.NewWorld(r.b, r.a, r.food, r.opts.Width, r.opts.Height)
	}
	return game.NewWorld(r.a, r.b, r.food, r.opts.Width, r.opts.Height)
}

// Step advances the round by one tick and reports whether it has ended.
//
// Both strategies decide on the same pre-tick board. Then both snakes turn
// (reversals are dropped) and move, and the outcome is checked in a fixed
// order: A crashed, B crashed, food eaten, apple target reached.
func (r *Round) Step() bool {
	if r.phase == PhaseTerminated {
		return true
	}

	moveA := r.stratA.Decide(r.World(SideA))
	moveB := r.stratB.Decide(r.World(SideB))

	r.a.ChangeDirection(moveA)
	r.b.ChangeDirection(moveB)
	r.a.Move()
	r.b.Move()
	r.tick++

	w, h := r.opts.Width, r.opts.Height
	switch {
	case rules.Collided(r.a, r.b, w, h):
		r.finish(SideB, ReasonCollision)
	case rules.Collided(r.b, r.a, w, h):
		r.finish(SideA, ReasonCollision)
	default:
		r.eat()
	}

	if r.phase != PhaseTerminated {
		switch {
		case r.a.Score >= r.opts.MaxApples:
			r.finish(SideA, ReasonApples)
		case r.b.Score >= r.opts.MaxApples:
			r.finish(SideB, ReasonApples)
		case r.opts.StepCap > 0 && r.tick >= r.opts.StepCap:
			r.finish(Draw, ReasonStepCap)
		}
	}

	r.emit(moveA, moveB)
	return r.phase == PhaseTerminated
}

func (r *Round) eat() {
	var eater *game.Snake
	switch r.food {
	case r.a.Head():
		eater = r.a
	case r.b.Head():
		eater = r.b
	default:
		return
	}
	eater.Grow()

	food, ok := game.SpawnFood(r.opts.Rng, r.a, r.b, r.opts.Width, r.opts.Height)
	if !ok {
		r.finish(Draw, ReasonBoardFull)
		return
	}
	r.food = food
}

func (r *Round) finish(winner Side, reason string) {
	r.phase = PhaseTerminated
	r.result = Result{
		Winner: winner,
		Reason: reason,
		Ticks:  r.tick,
		ScoreA: r.a.Score,
		ScoreB: r.b.Score,
	}
}

func (r *Round) emit(moveA, moveB game.Direction) {
	if r.opts.OnTurn == nil && !r.opts.Trace {
		return
	}
	f := Frame{
		Tick:   r.tick,
		A:      *r.a.Clone(),
		B:      *r.b.Clone(),
		Food:   r.food,
		MoveA:  moveA,
		MoveB:  moveB,
		Width:  r.opts.Width,
		Height: r.opts.Height,
	}
	if r.opts.Trace {
		r.opts.Logger.Debug("tick", slog.Int("tick", f.Tick), slog.String("board", "\n"+f.Board()))
	}
	if r.opts.OnTurn != nil {
		r.opts.OnTurn(f)
	}
}

// RunRound plays a to completion. ctx is only checked between ticks; a
// cancelled round returns ctx.Err() and no result.
func RunRound(ctx context.Context, a, b strategy.Strategy, opts RoundOptions) (Result, error) {
	r, err := NewRound(a, b, opts)
	if err != nil {
		return Result{}, err
	}
	for {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			default:
			}
		}
		if r.Step() {
			break
		}
	}

	res := r.Result()
	r.opts.Logger.Debug("round finished",
		slog.String("a", a.Name()),
		slog.String("b", b.Name()),
		slog.String("winner", res.Winner.String()),
		slog.String("reason", res.Reason),
		slog.Int("ticks", res.Ticks),
		slog.Int("score_a", res.ScoreA),
		slog.Int("score_b", res.ScoreB),
	)
	return res, nil
}

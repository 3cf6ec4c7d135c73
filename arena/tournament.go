package arena

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/brensch/snekduel/strategy"
)

// Competitor is a named strategy factory. A fresh instance is built for
// every round so no per-round state carries over.
type Competitor struct {
	Name    string
	Factory strategy.Factory
}

// Registered looks name up in the strategy registry.
func Registered(name string) (Competitor, error) {
	f, err := strategy.Lookup(name)
	if err != nil {
		return Competitor{}, err
	}
	return Competitor{Name: name, Factory: f}, nil
}

// TournamentOptions configures a best-of-N series.
type TournamentOptions struct {
	Round RoundOptions
	// Seed drives food placement and strategy randomness. Round i uses
	// Seed+i, so any single round can be replayed on its own.
	Seed int64
	// Deterministic turns off all strategy randomness.
	Deterministic bool
	// OnRound is called after every finished round, before the next starts.
	OnRound func(RoundReport)
	// OnTurn, if set, receives every frame of every round.
	OnTurn func(TurnReport)
	Logger *slog.Logger
}

// RoundReport is a finished round within a tournament.
type RoundReport struct {
	Round  int
	Seed   int64
	A      string
	B      string
	Result Result
	Record *Record
}

// TurnReport is one frame within a tournament. Seed is the tournament seed,
// which with A and B identifies the pairing inside a league.
type TurnReport struct {
	A     string
	B     string
	Seed  int64
	Round int
	Frame Frame
}

// Record is the running outcome of a tournament.
type Record struct {
	A       string `json:"a"`
	B       string `json:"b"`
	Seed    int64  `json:"seed"`
	Winners []Side `json:"winners"`
	WinsA   int    `json:"wins_a"`
	WinsB   int    `json:"wins_b"`
	Draws   int    `json:"draws"`
}

// Tally returns wins keyed by competitor name. Mirror matches share a name,
// so B is suffixed to keep the counts apart.
func (r *Record) Tally() map[string]int {
	b := r.B
	if b == r.A {
		b += "#2"
	}
	return map[string]int{r.A: r.WinsA, b: r.WinsB}
}

// Leader returns the name with more wins, or "" on a tie.
func (r *Record) Leader() string {
	switch {
	case r.WinsA > r.WinsB:
		return r.A
	case r.WinsB > r.WinsA:
		return r.B
	default:
		return ""
	}
}

func (r *Record) add(res Result) {
	r.Winners = append(r.Winners, res.Winner)
	switch res.Winner {
	case SideA:
		r.WinsA++
	case SideB:
		r.WinsB++
	default:
		r.Draws++
	}
}

// RoundSeed is the seed used for round i of a tournament seeded with seed.
func RoundSeed(seed int64, i int) int64 {
	return seed + int64(i)
}

// RunTournament plays rounds between a and b. If ctx is cancelled the
// record so far is returned with ctx.Err(); the interrupted round is not
// counted.
func RunTournament(ctx context.Context, rounds int, a, b Competitor, opts TournamentOptions) (*Record, error) {
	if rounds < 1 {
		return nil, fmt.Errorf("%w: rounds %d", ErrInvalidOptions, rounds)
	}
	if a.Factory == nil || b.Factory == nil {
		return nil, fmt.Errorf("%w: missing strategy factory", ErrInvalidOptions)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rec := &Record{A: a.Name, B: b.Name, Seed: opts.Seed, Winners: make([]Side, 0, rounds)}
	for i := 0; i < rounds; i++ {
		seed := RoundSeed(opts.Seed, i)
		ro := roundOptions(opts, seed, logger)
		if opts.OnTurn != nil {
			round := i
			ro.OnTurn = func(f Frame) {
				opts.OnTurn(TurnReport{A: a.Name, B: b.Name, Seed: opts.Seed, Round: round, Frame: f})
			}
		}
		stratA := a.Factory(strategyOptions(seed, 1, opts.Deterministic))
		stratB := b.Factory(strategyOptions(seed, 2, opts.Deterministic))
		res, err := RunRound(ctx, stratA, stratB, ro)
		if err != nil {
			return rec, fmt.Errorf("round %d: %w", i, err)
		}
		rec.add(res)
		if opts.OnRound != nil {
			opts.OnRound(RoundReport{Round: i, Seed: seed, A: a.Name, B: b.Name, Result: res, Record: rec})
		}
	}

	logger.Info("tournament finished",
		slog.String("a", rec.A),
		slog.String("b", rec.B),
		slog.Int("rounds", rounds),
		slog.Int("wins_a", rec.WinsA),
		slog.Int("wins_b", rec.WinsB),
		slog.Int("draws", rec.Draws),
	)
	return rec, nil
}

func roundOptions(opts TournamentOptions, seed int64, logger *slog.Logger) RoundOptions {
	ro := opts.Round
	ro.Logger = logger
	ro.Rng = nil
	if !opts.Deterministic {
		ro.Rng = rand.New(rand.NewSource(seed))
	}
	return ro
}

// strategyOptions gives each side its own stream so A's draws never shift
// B's.
func strategyOptions(seed int64, side int64, deterministic bool) strategy.Options {
	if deterministic {
		return strategy.Options{NoRandom: true}
	}
	return strategy.Options{Rng: rand.New(rand.NewSource(seed*31 + side))}
}

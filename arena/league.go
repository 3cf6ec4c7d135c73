package arena

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// LeagueOptions configures a round robin between registered strategies.
type LeagueOptions struct {
	// Tournament is the template for every pairing. Its OnRound and OnTurn
	// hooks are called from several goroutines at once.
	Tournament TournamentOptions
	Rounds     int
	// Parallelism bounds how many tournaments run at once. <=0 means one
	// per pairing.
	Parallelism int
	// OnRecord is called as each pairing finishes. Calls may come from any
	// goroutine but never concurrently.
	OnRecord func(*Record)
	// Skip, if set, drops a pairing before it is played. seed is the
	// tournament seed that pairing would use.
	Skip func(a, b string, seed int64) bool
}

// Standing is one strategy's league line.
type Standing struct {
	Name   string
	Wins   int
	Losses int
	Draws  int
}

// LeagueResult holds the record of every played pairing in pairing order.
type LeagueResult struct {
	Records []*Record
	Skipped int
}

// PairingSeed is the tournament seed of pairing i in a league seeded with
// seed.
func PairingSeed(seed int64, i int) int64 {
	return seed + int64(i)*1_000_003
}

// Standings totals the records per strategy, best first. Ties are broken by
// fewer losses then by name.
func (l *LeagueResult) Standings() []Standing {
	byName := map[string]*Standing{}
	get := func(name string) *Standing {
		s, ok := byName[name]
		if !ok {
			s = &Standing{Name: name}
			byName[name] = s
		}
		return s
	}
	for _, r := range l.Records {
		a, b := get(r.A), get(r.B)
		a.Wins += r.WinsA
		a.Losses += r.WinsB
		b.Wins += r.WinsB
		b.Losses += r.WinsA
		a.Draws += r.Draws
		b.Draws += r.Draws
	}
	out := make([]Standing, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].Losses != out[j].Losses {
			return out[i].Losses < out[j].Losses
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Pairings lists every unordered pair of names in a stable order.
func Pairings(names []string) [][2]string {
	var out [][2]string
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			out = append(out, [2]string{names[i], names[j]})
		}
	}
	return out
}

// RunLeague plays every pairing of names as its own tournament. Pairings run
// in parallel; each tournament is still single threaded and owns its rounds.
// The first error cancels the rest.
func RunLeague(ctx context.Context, names []string, opts LeagueOptions) (*LeagueResult, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: league needs at least two strategies", ErrInvalidOptions)
	}
	competitors := make(map[string]Competitor, len(names))
	for _, n := range names {
		c, err := Registered(n)
		if err != nil {
			return nil, err
		}
		competitors[n] = c
	}

	logger := opts.Tournament.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pairs := Pairings(names)
	records := make([]*Record, len(pairs))
	res := &LeagueResult{}
	done := make(chan *Record)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range done {
			if opts.OnRecord != nil {
				opts.OnRecord(r)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}
	for i, p := range pairs {
		seed := PairingSeed(opts.Tournament.Seed, i)
		if opts.Skip != nil && opts.Skip(p[0], p[1], seed) {
			res.Skipped++
			continue
		}
		g.Go(func() error {
			topts := opts.Tournament
			topts.Seed = seed
			topts.Logger = logger.With(slog.String("pairing", p[0]+"-"+p[1]))
			rec, err := RunTournament(gctx, opts.Rounds, competitors[p[0]], competitors[p[1]], topts)
			if err != nil {
				return fmt.Errorf("%s vs %s: %w", p[0], p[1], err)
			}
			records[i] = rec
			done <- rec
			return nil
		})
	}
	err := g.Wait()
	close(done)
	<-collected

	for _, r := range records {
		if r != nil {
			res.Records = append(res.Records, r)
		}
	}
	return res, err
}

// Command tournament pits strategies against each other, either one pairing
// best-of-N or every pairing in a league, and archives the rounds as parquet.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/brensch/snekduel/arena"
	"github.com/brensch/snekduel/config"
	"github.com/brensch/snekduel/logging"
	"github.com/brensch/snekduel/store"
)

func main() {
	cfg := config.DefaultTournament()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	runID := uuid.New()

	// The TUI owns the terminal, so logs go to a file next to the archive.
	var logOut io.Writer = os.Stderr
	if cfg.TUI {
		logOut = io.Discard
		if cfg.OutDir != "" {
			if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
				log.Fatalf("Failed to create output dir: %v", err)
			}
			f, err := os.OpenFile(filepath.Join(cfg.OutDir, "tournament.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				log.Fatalf("Failed to open log file: %v", err)
			}
			defer f.Close()
			logOut = f
		}
	}
	logger, err := logging.New(logOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	logger = logger.With(slog.String("run_id", runID.String()))
	slog.SetDefault(logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	var arch *archiver
	if cfg.OutDir != "" {
		arch, err = newArchiver(cfg.OutDir, cfg.League, cfg.WriteTurns, cfg.Resume, logger)
		if err != nil {
			log.Fatalf("Failed to open archive: %v", err)
		}
	}

	logger.Info("starting tournament",
		slog.Bool("league", cfg.League),
		slog.String("a", cfg.StrategyA),
		slog.String("b", cfg.StrategyB),
		slog.Any("strategies", cfg.Strategies),
		slog.Int("rounds", cfg.Rounds),
		slog.Int("width", cfg.Width),
		slog.Int("height", cfg.Height),
		slog.Int("max_apples", cfg.MaxApples),
		slog.Int("step_cap", cfg.StepCap),
		slog.Int64("seed", cfg.Seed),
		slog.String("out_dir", cfg.OutDir),
	)

	r := &runner{cfg: cfg, runID: runID, arch: arch, logger: logger}

	if !cfg.TUI {
		r.onRound = func(m roundMsg) {
			logger.Info("round finished",
				slog.String("pairing", pairingKey(m.A, m.B)),
				slog.Int("round", m.Round),
				slog.String("winner", winnerName(m)),
				slog.String("reason", m.Result.Reason),
				slog.Int("ticks", m.Result.Ticks),
				slog.Int("wins_a", m.WinsA),
				slog.Int("wins_b", m.WinsB),
				slog.Int("draws", m.Draws),
			)
		}
		err = r.run(ctx)
	} else {
		pairings := 1
		if cfg.League {
			pairings = len(arena.Pairings(cfg.Strategies))
		}
		p := tea.NewProgram(initialModel(runID.String(), cfg.Rounds, pairings), tea.WithAltScreen())
		r.onRound = func(m roundMsg) { p.Send(m) }

		errc := make(chan error, 1)
		go func() {
			err := r.run(ctx)
			p.Send(doneMsg{err: err})
			errc <- err
		}()
		if _, tuiErr := p.Run(); tuiErr != nil {
			logger.Error("tui", slog.Any("err", tuiErr))
		}
		// q or a TUI failure stops the run; rounds in flight are abandoned.
		cancel()
		err = <-errc
	}

	if arch != nil {
		arch.Close()
	}

	switch {
	case err == nil:
		logger.Info("tournament complete")
	case errors.Is(err, context.Canceled):
		logger.Warn("tournament interrupted")
	default:
		log.Fatalf("Tournament failed: %v", err)
	}
}

type runner struct {
	cfg     config.Tournament
	runID   uuid.UUID
	arch    *archiver
	logger  *slog.Logger
	onRound func(roundMsg)
}

func (r *runner) tournamentOptions() arena.TournamentOptions {
	topts := arena.TournamentOptions{
		Round:         r.cfg.RoundOptions(),
		Seed:          r.cfg.Seed,
		Deterministic: r.cfg.Deterministic,
		Logger:        r.logger,
		OnRound: func(rep arena.RoundReport) {
			if r.arch != nil {
				id := pairingID(r.runID, r.cfg.League, rep.A, rep.B)
				r.arch.Round(store.NewRoundRow(id, rep, r.cfg.Width, r.cfg.Height, time.Now()))
			}
			if r.onRound != nil {
				r.onRound(newRoundMsg(rep))
			}
		},
	}
	if r.arch != nil && r.cfg.WriteTurns {
		topts.OnTurn = func(tr arena.TurnReport) {
			id := pairingID(r.runID, r.cfg.League, tr.A, tr.B)
			r.arch.Turn(store.NewTurnRow(id, tr.Round, tr.Frame))
		}
	}
	return topts
}

func (r *runner) run(ctx context.Context) error {
	topts := r.tournamentOptions()

	if !r.cfg.League {
		a, err := arena.Registered(r.cfg.StrategyA)
		if err != nil {
			return err
		}
		b, err := arena.Registered(r.cfg.StrategyB)
		if err != nil {
			return err
		}
		rec, err := arena.RunTournament(ctx, r.cfg.Rounds, a, b, topts)
		if err != nil {
			return err
		}
		if r.arch != nil {
			r.arch.Done(pairingDone{a: rec.A, b: rec.B, seed: rec.Seed, rounds: r.cfg.Rounds})
		}
		r.logger.Info("final tally", slog.Any("tally", rec.Tally()), slog.Int("draws", rec.Draws), slog.String("leader", rec.Leader()))
		return nil
	}

	lopts := arena.LeagueOptions{
		Tournament:  topts,
		Rounds:      r.cfg.Rounds,
		Parallelism: r.cfg.Parallelism,
		OnRecord: func(rec *arena.Record) {
			if r.arch != nil {
				r.arch.Done(pairingDone{a: rec.A, b: rec.B, seed: rec.Seed, rounds: r.cfg.Rounds})
			}
		},
	}
	if r.cfg.Resume && r.arch != nil {
		lopts.Skip = func(a, b string, seed int64) bool {
			return r.arch.Finished(pairingDone{a: a, b: b, seed: seed, rounds: r.cfg.Rounds})
		}
	}

	res, err := arena.RunLeague(ctx, r.cfg.Strategies, lopts)
	if res != nil {
		for i, s := range res.Standings() {
			r.logger.Info("standing",
				slog.Int("rank", i+1),
				slog.String("strategy", s.Name),
				slog.Int("wins", s.Wins),
				slog.Int("losses", s.Losses),
				slog.Int("draws", s.Draws),
			)
		}
		if res.Skipped > 0 {
			r.logger.Info("skipped finished pairings", slog.Int("count", res.Skipped))
		}
	}
	return err
}

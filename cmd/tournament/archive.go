package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/brensch/snekduel/store"
)

// pairingID names one tournament of a run. A plain A vs B run uses the run
// id itself; league pairings get a stable id derived from it.
func pairingID(runID uuid.UUID, league bool, a, b string) string {
	if !league {
		return runID.String()
	}
	return uuid.NewSHA1(runID, []byte(a+"|"+b)).String()
}

type pairingDone struct {
	a, b   string
	seed   int64
	rounds int
}

type archiveMsg struct {
	round *store.RoundRow
	turn  *store.TurnRow
	done  *pairingDone
}

// archiver owns every parquet write of a run. Callbacks from the arena send
// to it; one goroutine does the writing.
//
// Round rows are held per pairing and written when the pairing finishes, and
// only then journaled. In league mode the rows of an interrupted pairing are
// dropped, so a resumed run replays it whole instead of double counting.
type archiver struct {
	roundsDir string
	league    bool
	journal   *store.Journal
	turns     *store.BatchWriter[store.TurnRow]
	logger    *slog.Logger

	in   chan archiveMsg
	done chan struct{}

	pending map[string][]store.RoundRow
	files   int
}

func newArchiver(outDir string, league, writeTurns, resume bool, logger *slog.Logger) (*archiver, error) {
	a := &archiver{
		roundsDir: filepath.Join(outDir, store.RoundsDir),
		league:    league,
		logger:    logger,
		in:        make(chan archiveMsg, 1024),
		done:      make(chan struct{}),
		pending:   map[string][]store.RoundRow{},
	}
	if league {
		j, err := store.OpenJournal(filepath.Join(outDir, "finished_pairings.log"))
		if err != nil {
			return nil, err
		}
		a.journal = j
		if resume {
			logger.Info("resuming league", slog.Int("finished_pairings", j.Count()))
		}
	}
	if writeTurns {
		w, err := store.NewTurnWriter(filepath.Join(outDir, store.TurnsDir), "turns")
		if err != nil {
			a.closeJournal()
			return nil, err
		}
		a.turns = w
	}
	go a.loop()
	return a, nil
}

// Finished reports whether a league pairing is already on disk.
func (a *archiver) Finished(p pairingDone) bool {
	return a.journal != nil && a.journal.Has(store.PairingKey(p.a, p.b, p.seed, p.rounds))
}

func (a *archiver) Round(row store.RoundRow) { a.in <- archiveMsg{round: &row} }
func (a *archiver) Turn(row store.TurnRow)   { a.in <- archiveMsg{turn: &row} }
func (a *archiver) Done(p pairingDone)       { a.in <- archiveMsg{done: &p} }

// Close flushes everything. No sends may follow.
func (a *archiver) Close() {
	close(a.in)
	<-a.done
}

func (a *archiver) loop() {
	defer close(a.done)
	for msg := range a.in {
		switch {
		case msg.round != nil:
			k := pairingKey(msg.round.StrategyA, msg.round.StrategyB)
			a.pending[k] = append(a.pending[k], *msg.round)
			if a.turns != nil {
				a.turns.NoteRoundWritten()
			}
		case msg.turn != nil:
			if err := a.turns.WriteRows([]store.TurnRow{*msg.turn}); err != nil {
				a.logger.Error("write turn", slog.Any("err", err))
			}
		case msg.done != nil:
			a.finishPairing(*msg.done)
		}
	}

	for k, rows := range a.pending {
		if a.league {
			a.logger.Warn("dropping rounds of unfinished pairing", slog.String("pairing", k), slog.Int("rounds", len(rows)))
			continue
		}
		a.write(k, rows)
	}
	if a.turns != nil {
		path, rows, _, err := a.turns.Finalize()
		if err != nil {
			a.logger.Error("finalize turns", slog.Any("err", err))
		} else if rows > 0 {
			a.logger.Info("turns written", slog.String("path", path), slog.Int("rows", rows))
		}
	}
	a.closeJournal()
}

func (a *archiver) finishPairing(p pairingDone) {
	k := pairingKey(p.a, p.b)
	rows := a.pending[k]
	delete(a.pending, k)
	if len(rows) == 0 || !a.write(k, rows) {
		return
	}
	if a.journal != nil {
		if err := a.journal.Add(store.PairingKey(p.a, p.b, p.seed, p.rounds)); err != nil {
			// The parquet is on disk; a resumed run would only replay this pairing.
			a.logger.Error("journal pairing", slog.String("pairing", k), slog.Any("err", err))
		}
	}
}

func (a *archiver) write(k string, rows []store.RoundRow) bool {
	path, err := store.WriteRoundsParquetAtomic(a.roundsDir, "rounds_"+rows[0].TournamentID, rows)
	if err != nil {
		a.logger.Error("write rounds", slog.String("pairing", k), slog.Any("err", err))
		return false
	}
	a.files++
	a.logger.Info("rounds written", slog.String("pairing", k), slog.String("path", path), slog.Int("rounds", len(rows)))
	return true
}

func (a *archiver) closeJournal() {
	if a.journal == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		a.logger.Error("close journal", slog.Any("err", err))
	}
	a.journal = nil
}

func pairingKey(a, b string) string {
	return fmt.Sprintf("%s vs %s", a, b)
}

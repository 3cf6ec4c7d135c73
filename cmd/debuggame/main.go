// Command debuggame replays one tournament round and prints every board.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brensch/snekduel/arena"
	"github.com/brensch/snekduel/store"
	"github.com/brensch/snekduel/strategy"
)

func main() {
	a := flag.String("a", strategy.NameHard, "Strategy for snake A")
	b := flag.String("b", strategy.NameUltimateHybrid, "Strategy for snake B")
	seed := flag.Int64("seed", 1, "Tournament seed")
	round := flag.Int("round", 0, "Round index within the tournament")
	deterministic := flag.Bool("deterministic", false, "Disable strategy randomness")
	width := flag.Int("width", arena.DefaultWidth, "Board width")
	height := flag.Int("height", arena.DefaultHeight, "Board height")
	apples := flag.Int("max-apples", arena.DefaultMaxApples, "Apples needed to win")
	stepCap := flag.Int("step-cap", 0, "Tick cap, 0 for none")
	outDir := flag.String("out-dir", "", "If set, write the round's turns as parquet here")
	quiet := flag.Bool("quiet", false, "Only print the result")
	flag.Parse()

	ca, err := arena.Registered(*a)
	if err != nil {
		log.Fatalf("Strategy A: %v", err)
	}
	cb, err := arena.Registered(*b)
	if err != nil {
		log.Fatalf("Strategy B: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	runID := fmt.Sprintf("debug_%s_%s_%d_%d", *a, *b, *seed, *round)
	var turns []store.TurnRow
	opts := arena.TournamentOptions{
		Round: arena.RoundOptions{
			Width:     *width,
			Height:    *height,
			MaxApples: *apples,
			StepCap:   *stepCap,
		},
		Seed:          arena.RoundSeed(*seed, *round),
		Deterministic: *deterministic,
		OnTurn: func(t arena.TurnReport) {
			if !*quiet {
				fmt.Println(t.Frame.Board())
			}
			if *outDir != "" {
				turns = append(turns, store.NewTurnRow(runID, *round, t.Frame))
			}
		},
	}

	log.Printf("Replaying round %d of %s vs %s (seed %d)", *round, *a, *b, *seed)
	rec, err := arena.RunTournament(ctx, 1, ca, cb, opts)
	if err != nil {
		log.Fatalf("Round failed: %v", err)
	}

	winner := "draw"
	switch rec.Winners[0] {
	case arena.SideA:
		winner = *a
	case arena.SideB:
		winner = *b
	}
	log.Printf("Round complete: winner %s (A=%d B=%d)", winner, rec.WinsA, rec.WinsB)

	if *outDir == "" {
		return
	}
	path, err := store.WriteTurnsParquetAtomic(*outDir, "debug", turns)
	if err != nil {
		log.Fatalf("Failed to write turns: %v", err)
	}
	log.Printf("Turns written to: %s", path)
}

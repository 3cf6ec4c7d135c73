package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/brensch/snekduel/arena"
	"github.com/brensch/snekduel/standings"
	"github.com/brensch/snekduel/store"
)

func openArchive(t *testing.T) *standings.DB {
	t.Helper()
	dir := t.TempDir()
	rows := []store.RoundRow{
		store.NewRoundRow("t", arena.RoundReport{Round: 0, A: "hard", B: "easy", Result: arena.Result{Winner: arena.SideA, Ticks: 40, Reason: arena.ReasonCollision}}, 12, 10, time.Now()),
		store.NewRoundRow("t", arena.RoundReport{Round: 1, A: "hard", B: "easy", Result: arena.Result{Winner: arena.Draw, Ticks: 90, Reason: arena.ReasonStepCap}}, 12, 10, time.Now()),
	}
	if _, err := store.WriteRoundsParquetAtomic(dir, "rounds", rows); err != nil {
		t.Fatal(err)
	}
	db, err := standings.Open([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReport_JSON(t *testing.T) {
	db := openArchive(t)
	var buf bytes.Buffer
	if err := report(context.Background(), &buf, db, "json", true); err != nil {
		t.Fatal(err)
	}
	var out struct {
		Standings []standings.Standing `json:"standings"`
		Matchups  []standings.Matchup  `json:"matchups"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(out.Standings) != 2 || out.Standings[0].Strategy != "hard" || out.Standings[0].Wins != 1 {
		t.Fatalf("standings = %+v", out.Standings)
	}
	if len(out.Matchups) != 1 || out.Matchups[0].Draws != 1 {
		t.Fatalf("matchups = %+v", out.Matchups)
	}
}

func TestReport_Table(t *testing.T) {
	db := openArchive(t)
	var buf bytes.Buffer
	if err := report(context.Background(), &buf, db, "table", false); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{"strategy", "hard", "easy"} {
		if !strings.Contains(got, want) {
			t.Fatalf("table missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "avg ticks") {
		t.Fatalf("matchups printed without -matchups:\n%s", got)
	}
}

func TestReport_UnknownFormat(t *testing.T) {
	db := openArchive(t)
	if err := report(context.Background(), &bytes.Buffer{}, db, "xml", false); err == nil {
		t.Fatal("expected error")
	}
}

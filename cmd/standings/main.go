// Command standings prints league standings from archived round files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/brensch/snekduel/config"
	"github.com/brensch/snekduel/standings"
	"github.com/brensch/snekduel/store"
)

func main() {
	defaultRoot := filepath.Join(config.GetEnvOrDefault("OUT_DIR", "data/tournaments"), store.RoundsDir)
	roots := flag.String("data", config.GetEnvOrDefault("ROUNDS_DIR", defaultRoot), "Comma separated directories of round parquet files")
	format := flag.String("format", "table", "table or json")
	matchups := flag.Bool("matchups", false, "Also print head-to-head records")
	flag.Parse()

	db, err := standings.Open(config.SplitList(*roots))
	if err != nil {
		log.Fatalf("Failed to open round archive: %v", err)
	}
	defer db.Close()

	if err := report(context.Background(), os.Stdout, db, *format, *matchups); err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}
}

func report(ctx context.Context, w io.Writer, db *standings.DB, format string, withMatchups bool) error {
	rows, err := db.Standings(ctx)
	if err != nil {
		return err
	}
	var ms []standings.Matchup
	if withMatchups {
		if ms, err = db.Matchups(ctx); err != nil {
			return err
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Standings []standings.Standing `json:"standings"`
			Matchups  []standings.Matchup  `json:"matchups,omitempty"`
		}{rows, ms})
	case "table":
		fmt.Fprintln(w, standingsTable(rows))
		if withMatchups {
			fmt.Fprintln(w, matchupsTable(ms))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func styled(t *table.Table) *table.Table {
	return t.Border(lipgloss.RoundedBorder()).StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
}

func standingsTable(rows []standings.Standing) string {
	t := styled(table.New().Headers("#", "strategy", "played", "wins", "losses", "draws", "win %"))
	for i, s := range rows {
		t.Row(
			strconv.Itoa(i+1),
			s.Strategy,
			strconv.FormatInt(s.Played, 10),
			strconv.FormatInt(s.Wins, 10),
			strconv.FormatInt(s.Losses, 10),
			strconv.FormatInt(s.Draws, 10),
			fmt.Sprintf("%.1f", 100*s.WinRate),
		)
	}
	return t.String()
}

func matchupsTable(ms []standings.Matchup) string {
	t := styled(table.New().Headers("a", "b", "rounds", "a wins", "b wins", "draws", "avg ticks"))
	for _, m := range ms {
		t.Row(
			m.StrategyA,
			m.StrategyB,
			strconv.FormatInt(m.Rounds, 10),
			strconv.FormatInt(m.WinsA, 10),
			strconv.FormatInt(m.WinsB, 10),
			strconv.FormatInt(m.Draws, 10),
			fmt.Sprintf("%.0f", m.AvgTicks),
		)
	}
	return t.String()
}

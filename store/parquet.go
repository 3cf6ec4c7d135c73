// Package store archives tournament results as zstd-compressed parquet.
//
// Rounds and turns go to separate directories because they have different
// schemas. Files are always written under <dir>/tmp first and renamed into
// place, so readers globbing <dir>/*.parquet never see a partial file.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/snekduel/arena"
	"github.com/brensch/snekduel/game"
)

const (
	RoundsDir = "rounds"
	TurnsDir  = "turns"

	roundSchema = "round_row_v1"
	turnSchema  = "turn_row_v1"
)

// RoundRow is one finished round.
//
// Winner is "A", "B" or "draw". WinnerName is empty on a draw.
type RoundRow struct {
	TournamentID string `parquet:"tournament_id,dict"`
	Round        int32  `parquet:"round"`
	Seed         int64  `parquet:"seed"`
	StrategyA    string `parquet:"strategy_a,dict"`
	StrategyB    string `parquet:"strategy_b,dict"`
	Winner       string `parquet:"winner,dict"`
	WinnerName   string `parquet:"winner_name,dict"`
	Reason       string `parquet:"reason,dict"`
	Ticks        int32  `parquet:"ticks"`
	ScoreA       int32  `parquet:"score_a"`
	ScoreB       int32  `parquet:"score_b"`
	Width        int32  `parquet:"width"`
	Height       int32  `parquet:"height"`
	FinishedAtMs int64  `parquet:"finished_at_ms"`
}

// TurnRow is the board after one tick of a round. Bodies are stored head
// first as parallel X/Y columns.
type TurnRow struct {
	TournamentID string `parquet:"tournament_id,dict"`
	Round        int32  `parquet:"round"`
	Tick         int32  `parquet:"tick"`

	BodyAX []int32 `parquet:"body_a_x"`
	BodyAY []int32 `parquet:"body_a_y"`
	BodyBX []int32 `parquet:"body_b_x"`
	BodyBY []int32 `parquet:"body_b_y"`

	FoodX int32 `parquet:"food_x"`
	FoodY int32 `parquet:"food_y"`

	MoveA  string `parquet:"move_a,dict"`
	MoveB  string `parquet:"move_b,dict"`
	ScoreA int32  `parquet:"score_a"`
	ScoreB int32  `parquet:"score_b"`
}

// NewRoundRow flattens a tournament round report.
func NewRoundRow(tournamentID string, rep arena.RoundReport, width, height int, finished time.Time) RoundRow {
	row := RoundRow{
		TournamentID: tournamentID,
		Round:        int32(rep.Round),
		Seed:         rep.Seed,
		StrategyA:    rep.A,
		StrategyB:    rep.B,
		Winner:       rep.Result.Winner.String(),
		Reason:       rep.Result.Reason,
		Ticks:        int32(rep.Result.Ticks),
		ScoreA:       int32(rep.Result.ScoreA),
		ScoreB:       int32(rep.Result.ScoreB),
		Width:        int32(width),
		Height:       int32(height),
		FinishedAtMs: finished.UnixMilli(),
	}
	switch rep.Result.Winner {
	case arena.SideA:
		row.WinnerName = rep.A
	case arena.SideB:
		row.WinnerName = rep.B
	}
	return row
}

// NewTurnRow flattens a frame. The setup frame has no moves, which are
// stored as empty strings.
func NewTurnRow(tournamentID string, round int, f arena.Frame) TurnRow {
	row := TurnRow{
		TournamentID: tournamentID,
		Round:        int32(round),
		Tick:         int32(f.Tick),
		FoodX:        int32(f.Food.X),
		FoodY:        int32(f.Food.Y),
		ScoreA:       int32(f.A.Score),
		ScoreB:       int32(f.B.Score),
	}
	row.BodyAX, row.BodyAY = splitBody(f.A.Body)
	row.BodyBX, row.BodyBY = splitBody(f.B.Body)
	if f.MoveA.Valid() {
		row.MoveA = f.MoveA.String()
	}
	if f.MoveB.Valid() {
		row.MoveB = f.MoveB.String()
	}
	return row
}

func splitBody(body []game.Point) ([]int32, []int32) {
	xs := make([]int32, len(body))
	ys := make([]int32, len(body))
	for i, p := range body {
		xs[i] = int32(p.X)
		ys[i] = int32(p.Y)
	}
	return xs, ys
}

// WriteRoundsParquetAtomic writes rows into outDir/tmp and then moves the
// file into outDir. The final path is returned.
func WriteRoundsParquetAtomic(outDir, prefix string, rows []RoundRow) (string, error) {
	return writeParquetAtomic(outDir, prefix, rows, roundSchema)
}

// WriteTurnsParquetAtomic is WriteRoundsParquetAtomic for turn rows.
func WriteTurnsParquetAtomic(outDir, prefix string, rows []TurnRow) (string, error) {
	return writeParquetAtomic(outDir, prefix, rows, turnSchema)
}

func writeParquetAtomic[T any](outDir, prefix string, rows []T, schema string) (string, error) {
	if len(rows) == 0 {
		return "", errors.New("no rows to write")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fileName(prefix)
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

func fileName(prefix string) string {
	if prefix == "" {
		prefix = "batch"
	}
	return fmt.Sprintf("%s_%d.parquet", prefix, time.Now().UnixNano())
}

// ReadRounds reads every row of a rounds file.
func ReadRounds(path string) ([]RoundRow, error) {
	return readAll[RoundRow](path)
}

// ReadTurns reads every row of a turns file.
func ReadTurns(path string) ([]TurnRow, error) {
	return readAll[TurnRow](path)
}

func readAll[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	out := make([]T, 0, reader.NumRows())
	buf := make([]T, 256)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("read parquet %s: %w", path, err)
		}
		if n == 0 {
			return out, nil
		}
	}
}

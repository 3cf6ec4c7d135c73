// Package standings answers league questions over the round archive with
// DuckDB. Every query reads the parquet files directly, so rounds written
// after Open show up without a refresh.
package standings

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DB is an in-memory DuckDB with a `rounds` view over the archive.
type DB struct {
	roots []string
	db    *sql.DB
}

// Open creates the rounds view over every *.parquet below roots, skipping
// files that sit directly in a tmp/ directory.
func Open(roots []string) (*DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	// Ignore errors for compatibility across versions.
	_, _ = db.Exec("PRAGMA threads=4")

	d := &DB{roots: roots, db: db}
	if err := d.createView(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Refresh rebuilds the view. It is only needed when the first files appear
// under roots that were empty at Open.
func (d *DB) Refresh() error {
	return d.createView()
}

func (d *DB) createView() error {
	globs := make([]string, 0, len(d.roots))
	for _, root := range d.roots {
		root = strings.TrimSpace(root)
		if root == "" || !hasParquet(root) {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}

	if len(globs) == 0 {
		_, err := d.db.Exec(`CREATE OR REPLACE VIEW rounds AS
			SELECT * FROM (
				SELECT
					NULL::VARCHAR AS tournament_id,
					NULL::INTEGER AS round,
					NULL::BIGINT AS seed,
					NULL::VARCHAR AS strategy_a,
					NULL::VARCHAR AS strategy_b,
					NULL::VARCHAR AS winner,
					NULL::VARCHAR AS winner_name,
					NULL::VARCHAR AS reason,
					NULL::INTEGER AS ticks,
					NULL::INTEGER AS score_a,
					NULL::INTEGER AS score_b,
					NULL::INTEGER AS width,
					NULL::INTEGER AS height,
					NULL::BIGINT AS finished_at_ms,
					NULL::VARCHAR AS filename
			) WHERE 1=0`)
		if err != nil {
			return fmt.Errorf("create empty rounds view: %w", err)
		}
		return nil
	}

	sqlText := `CREATE OR REPLACE VIEW rounds AS
		SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
		WHERE NOT regexp_matches(filename, '/tmp/[^/]*$')`
	if _, err := d.db.Exec(sqlText); err != nil {
		return fmt.Errorf("create rounds view: %w", err)
	}
	return nil
}

// hasParquet reports whether root holds at least one parquet file outside
// tmp/. read_parquet fails on a glob that matches nothing.
func hasParquet(root string) bool {
	found := false
	_ = filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if e.IsDir() {
			if e.Name() == "tmp" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(e.Name(), ".parquet") {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Standing is one strategy's totals across every archived round.
type Standing struct {
	Strategy string  `json:"strategy"`
	Played   int64   `json:"played"`
	Wins     int64   `json:"wins"`
	Losses   int64   `json:"losses"`
	Draws    int64   `json:"draws"`
	WinRate  float64 `json:"win_rate"`
}

// Standings ranks strategies by wins, then fewest losses, then name.
func (d *DB) Standings(ctx context.Context) ([]Standing, error) {
	query := `WITH sides AS (
		SELECT strategy_a AS strategy,
			(winner = 'A')::INTEGER AS win,
			(winner = 'B')::INTEGER AS loss,
			(winner = 'draw')::INTEGER AS draw
		FROM rounds
		UNION ALL
		SELECT strategy_b AS strategy,
			(winner = 'B')::INTEGER AS win,
			(winner = 'A')::INTEGER AS loss,
			(winner = 'draw')::INTEGER AS draw
		FROM rounds
	)
	SELECT
		strategy,
		COUNT(*)::BIGINT AS played,
		SUM(win)::BIGINT AS wins,
		SUM(loss)::BIGINT AS losses,
		SUM(draw)::BIGINT AS draws
	FROM sides
	GROUP BY strategy
	ORDER BY wins DESC, losses ASC, strategy ASC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	var out []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.Strategy, &s.Played, &s.Wins, &s.Losses, &s.Draws); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		if s.Played > 0 {
			s.WinRate = float64(s.Wins) / float64(s.Played)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Matchup is the head-to-head record of one ordered pairing.
type Matchup struct {
	StrategyA string  `json:"strategy_a"`
	StrategyB string  `json:"strategy_b"`
	Rounds    int64   `json:"rounds"`
	WinsA     int64   `json:"wins_a"`
	WinsB     int64   `json:"wins_b"`
	Draws     int64   `json:"draws"`
	AvgTicks  float64 `json:"avg_ticks"`
}

func (d *DB) Matchups(ctx context.Context) ([]Matchup, error) {
	query := `SELECT
		strategy_a,
		strategy_b,
		COUNT(*)::BIGINT AS rounds,
		SUM((winner = 'A')::INTEGER)::BIGINT AS wins_a,
		SUM((winner = 'B')::INTEGER)::BIGINT AS wins_b,
		SUM((winner = 'draw')::INTEGER)::BIGINT AS draws,
		AVG(ticks)::DOUBLE AS avg_ticks
	FROM rounds
	GROUP BY strategy_a, strategy_b
	ORDER BY strategy_a, strategy_b`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query matchups: %w", err)
	}
	defer rows.Close()

	var out []Matchup
	for rows.Next() {
		var m Matchup
		if err := rows.Scan(&m.StrategyA, &m.StrategyB, &m.Rounds, &m.WinsA, &m.WinsB, &m.Draws, &m.AvgTicks); err != nil {
			return nil, fmt.Errorf("scan matchup: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RoundCount is the number of archived rounds.
func (d *DB) RoundCount(ctx context.Context) (int64, error) {
	var total int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

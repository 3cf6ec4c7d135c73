// Package config holds command configuration. Every flag falls back to an
// environment variable so the binaries run the same under a container
// scheduler as from a shell.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brensch/snekduel/arena"
	"github.com/brensch/snekduel/strategy"
)

// Tournament configures cmd/tournament.
type Tournament struct {
	StrategyA string
	StrategyB string
	// League plays every pairing of Strategies instead of A against B.
	League      bool
	Strategies  []string
	Parallelism int
	Resume      bool

	Rounds        int
	Width         int
	Height        int
	MaxApples     int
	StepCap       int
	Seed          int64
	Deterministic bool

	OutDir     string
	WriteTurns bool

	TUI       bool
	Trace     bool
	LogFormat string
	LogLevel  string
}

// DefaultTournament reads the environment over the built-in defaults.
func DefaultTournament() Tournament {
	return Tournament{
		StrategyA:     GetEnvOrDefault("STRATEGY_A", strategy.NameHard),
		StrategyB:     GetEnvOrDefault("STRATEGY_B", strategy.NameUltimateHybrid),
		League:        GetEnvBoolOrDefault("LEAGUE", false),
		Strategies:    SplitList(GetEnvOrDefault("STRATEGIES", strings.Join(strategy.Names(), ","))),
		Parallelism:   GetEnvIntOrDefault("PARALLELISM", 4),
		Resume:        GetEnvBoolOrDefault("RESUME", false),
		Rounds:        GetEnvIntOrDefault("ROUNDS", 10),
		Width:         GetEnvIntOrDefault("WIDTH", arena.DefaultWidth),
		Height:        GetEnvIntOrDefault("HEIGHT", arena.DefaultHeight),
		MaxApples:     GetEnvIntOrDefault("MAX_APPLES", arena.DefaultMaxApples),
		StepCap:       GetEnvIntOrDefault("STEP_CAP", 0),
		Seed:          GetEnvInt64OrDefault("SEED", time.Now().UnixNano()),
		Deterministic: GetEnvBoolOrDefault("DETERMINISTIC", false),
		OutDir:        GetEnvOrDefault("OUT_DIR", "data/tournaments"),
		WriteTurns:    GetEnvBoolOrDefault("WRITE_TURNS", false),
		TUI:           GetEnvBoolOrDefault("TUI", false),
		Trace:         GetEnvBoolOrDefault("TRACE", false),
		LogFormat:     GetEnvOrDefault("LOG_FORMAT", "pretty"),
		LogLevel:      GetEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// RegisterFlags binds t's fields to fs using the current values as defaults.
func (t *Tournament) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&t.StrategyA, "a", t.StrategyA, "Strategy for snake A")
	fs.StringVar(&t.StrategyB, "b", t.StrategyB, "Strategy for snake B")
	fs.BoolVar(&t.League, "league", t.League, "Round robin over -strategies instead of -a vs -b")
	fs.Func("strategies", "Comma separated strategies for -league (default all)", func(s string) error {
		t.Strategies = SplitList(s)
		return nil
	})
	fs.IntVar(&t.Parallelism, "parallelism", t.Parallelism, "Pairings played at once in -league")
	fs.BoolVar(&t.Resume, "resume", t.Resume, "Skip league pairings already recorded in the out dir journal")
	fs.IntVar(&t.Rounds, "rounds", t.Rounds, "Rounds per pairing")
	fs.IntVar(&t.Width, "width", t.Width, "Board width")
	fs.IntVar(&t.Height, "height", t.Height, "Board height")
	fs.IntVar(&t.MaxApples, "max-apples", t.MaxApples, "Apples needed to win a round")
	fs.IntVar(&t.StepCap, "step-cap", t.StepCap, "If > 0, a round still running after this many ticks is a draw")
	fs.Int64Var(&t.Seed, "seed", t.Seed, "Tournament seed; round i uses seed+i")
	fs.BoolVar(&t.Deterministic, "deterministic", t.Deterministic, "Disable all strategy randomness and hash food placement")
	fs.StringVar(&t.OutDir, "out-dir", t.OutDir, "Directory for round (and turn) parquet files; empty disables archiving")
	fs.BoolVar(&t.WriteTurns, "write-turns", t.WriteTurns, "Also archive every tick")
	fs.BoolVar(&t.TUI, "tui", t.TUI, "Show a live tally instead of log lines")
	fs.BoolVar(&t.Trace, "trace", t.Trace, "Log the board after every tick (debug level)")
	fs.StringVar(&t.LogFormat, "log-format", t.LogFormat, "pretty, json or text")
	fs.StringVar(&t.LogLevel, "log-level", t.LogLevel, "debug, info, warn or error")
}

// Validate reports every problem at once.
func (t Tournament) Validate() error {
	var errs []error
	if t.League {
		if len(t.Strategies) < 2 {
			errs = append(errs, fmt.Errorf("league needs at least two strategies, got %d", len(t.Strategies)))
		}
		seen := map[string]bool{}
		for _, name := range t.Strategies {
			if seen[name] {
				errs = append(errs, fmt.Errorf("strategy %q listed twice", name))
			}
			seen[name] = true
			if _, err := strategy.Lookup(name); err != nil {
				errs = append(errs, err)
			}
		}
		if t.Parallelism < 1 {
			errs = append(errs, fmt.Errorf("parallelism must be positive, got %d", t.Parallelism))
		}
	} else {
		for _, name := range []string{t.StrategyA, t.StrategyB} {
			if _, err := strategy.Lookup(name); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if t.Resume && (!t.League || t.OutDir == "") {
		errs = append(errs, errors.New("-resume needs -league and an out dir"))
	}
	if t.WriteTurns && t.OutDir == "" {
		errs = append(errs, errors.New("-write-turns needs an out dir"))
	}
	if t.Rounds < 1 {
		errs = append(errs, fmt.Errorf("rounds must be positive, got %d", t.Rounds))
	}
	if err := t.RoundOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RoundOptions is the per-round template for this configuration.
func (t Tournament) RoundOptions() arena.RoundOptions {
	return arena.RoundOptions{
		Width:     t.Width,
		Height:    t.Height,
		MaxApples: t.MaxApples,
		StepCap:   t.StepCap,
		Trace:     t.Trace,
	}
}

// Server configures cmd/snakeserver.
type Server struct {
	Addr            string
	StepCap         int
	ShutdownTimeout time.Duration
	LogFormat       string
	LogLevel        string
}

func DefaultServer() Server {
	return Server{
		Addr:            GetEnvOrDefault("ADDR", ":8000"),
		StepCap:         GetEnvIntOrDefault("STEP_CAP", 5000),
		ShutdownTimeout: GetEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 5*time.Second),
		LogFormat:       GetEnvOrDefault("LOG_FORMAT", "pretty"),
		LogLevel:        GetEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func (s *Server) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&s.Addr, "addr", s.Addr, "Listen address")
	fs.IntVar(&s.StepCap, "step-cap", s.StepCap, "Tick cap for spectated rounds")
	fs.DurationVar(&s.ShutdownTimeout, "shutdown-timeout", s.ShutdownTimeout, "Grace period for open connections on shutdown")
	fs.StringVar(&s.LogFormat, "log-format", s.LogFormat, "pretty, json or text")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
}

func (s Server) Validate() error {
	if s.Addr == "" {
		return errors.New("listen address is required")
	}
	if s.StepCap < 1 {
		return fmt.Errorf("spectated rounds need a positive step cap, got %d", s.StepCap)
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func GetEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return defaultVal
}

func GetEnvInt64OrDefault(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func GetEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func GetEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

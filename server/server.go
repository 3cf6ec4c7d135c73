// Package server exposes the strategies over HTTP.
//
//	GET  /                        info and the registered strategies
//	POST /move?strategy=NAME      one decision for a JSON world
//	GET  /watch?a=NAME&b=NAME     websocket stream of a fresh round
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/snekduel/game"
	"github.com/brensch/snekduel/strategy"
)

const Version = "1.0.0"

// MaxBoardSide bounds both board dimensions a request may ask for. Search and
// food placement scale with the cell count.
const MaxBoardSide = 256

// Options configures a Server.
type Options struct {
	// StepCap bounds spectated rounds so an idle pairing cannot hold a
	// connection forever.
	StepCap int
	Logger  *slog.Logger
}

type Server struct {
	stepCap  int
	logger   *slog.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		stepCap:  opts.StepCap,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/move", s.handleMove)
	s.mux.HandleFunc("/watch", s.handleWatch)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type InfoResponse struct {
	APIVersion string   `json:"apiversion"`
	Version    string   `json:"version"`
	Strategies []string `json:"strategies"`
}

// MoveRequest is the body of POST /move. Turn is the round tick the world
// was taken at; strategies that behave differently on their opening move
// use it.
type MoveRequest struct {
	Turn  int        `json:"turn"`
	World game.World `json:"world"`
}

type MoveResponse struct {
	Move     string `json:"move"`
	Strategy string `json:"strategy"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("GET only"))
		return
	}
	writeJSON(w, http.StatusOK, InfoResponse{
		APIVersion: "1",
		Version:    Version,
		Strategies: strategy.Names(),
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST only"))
		return
	}
	start := time.Now()

	name := r.URL.Query().Get("strategy")
	opts, err := strategyOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	strat, err := strategy.New(name, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode world: %w", err))
		return
	}
	if err := validateWorld(&req.World); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if res, ok := strat.(strategy.Resumer); ok {
		res.Resume(req.Turn)
	}

	world := game.NewWorld(&req.World.You, req.World.Opponent, req.World.Food, req.World.Width, req.World.Height)
	move := strat.Decide(world)

	s.logger.Debug("move",
		slog.String("strategy", name),
		slog.Int("turn", req.Turn),
		slog.String("move", move.String()),
		slog.Duration("took", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, MoveResponse{Move: move.String(), Strategy: name})
}

// validateWorld rejects worlds a strategy would panic on and fills in a
// missing direction.
func validateWorld(w *game.World) error {
	if err := checkBoard(w.Width, w.Height); err != nil {
		return err
	}
	if len(w.You.Body) == 0 {
		return errors.New("you.body is empty")
	}
	if w.Opponent != nil && len(w.Opponent.Body) == 0 {
		return errors.New("opponent.body is empty")
	}
	if w.You.Direction == (game.Direction{}) {
		w.You.Direction = inferDirection(w.You.Body)
	}
	if !w.You.Direction.Valid() {
		return fmt.Errorf("you.direction %v is not a unit direction", w.You.Direction)
	}
	return nil
}

func checkBoard(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("board must be positive, got %dx%d", width, height)
	}
	if width > MaxBoardSide || height > MaxBoardSide {
		return fmt.Errorf("board %dx%d exceeds %dx%d", width, height, MaxBoardSide, MaxBoardSide)
	}
	return nil
}

// inferDirection reads the heading off the neck. Single cell snakes face
// right, as they do at the start of a round.
func inferDirection(body []game.Point) game.Direction {
	if len(body) < 2 {
		return game.Right
	}
	return game.Direction{X: body[0].X - body[1].X, Y: body[0].Y - body[1].Y}
}

// strategyOptions reads ?seed= and ?deterministic=. Without either the
// strategy is seeded from the clock.
func strategyOptions(r *http.Request) (strategy.Options, error) {
	q := r.URL.Query()
	if v := q.Get("deterministic"); v == "1" || v == "true" {
		return strategy.Options{NoRandom: true}, nil
	}
	seed := time.Now().UnixNano()
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return strategy.Options{}, fmt.Errorf("bad seed %q: %w", v, err)
		}
		seed = n
	}
	return strategy.Options{Rng: rand.New(rand.NewSource(seed))}, nil
}

func statusFor(err error) int {
	if errors.Is(err, strategy.ErrUnknownStrategy) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

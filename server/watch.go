package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/snekduel/arena"
	"github.com/brensch/snekduel/strategy"
)

const writeTimeout = 10 * time.Second

// WatchMessage is one websocket message of /watch: a frame per tick, then
// either a result or an error.
type WatchMessage struct {
	Type   string        `json:"type"`
	A      string        `json:"a,omitempty"`
	B      string        `json:"b,omitempty"`
	Frame  *arena.Frame  `json:"frame,omitempty"`
	Result *arena.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

const (
	MessageFrame  = "frame"
	MessageResult = "result"
	MessageError  = "error"
)

type watchParams struct {
	a, b  string
	seed  int64
	round arena.RoundOptions
}

func (s *Server) parseWatch(r *http.Request) (watchParams, error) {
	q := r.URL.Query()
	p := watchParams{
		a:    q.Get("a"),
		b:    q.Get("b"),
		seed: time.Now().UnixNano(),
		round: arena.RoundOptions{
			Width:     arena.DefaultWidth,
			Height:    arena.DefaultHeight,
			MaxApples: arena.DefaultMaxApples,
			StepCap:   s.stepCap,
		},
	}
	for _, name := range []string{p.a, p.b} {
		if _, err := strategy.Lookup(name); err != nil {
			return p, err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"width", &p.round.Width},
		{"height", &p.round.Height},
		{"apples", &p.round.MaxApples},
	}
	for _, f := range ints {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("bad %s %q: %w", f.key, v, err)
		}
		*f.dst = n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return p, fmt.Errorf("bad seed %q: %w", v, err)
		}
		p.seed = n
	}
	if err := p.round.Validate(); err != nil {
		return p, err
	}
	if err := checkBoard(p.round.Width, p.round.Height); err != nil {
		return p, err
	}
	return p, nil
}

// handleWatch plays one round and streams it. Parameters are checked before
// the upgrade so a bad request gets a plain HTTP error.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseWatch(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("watch upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client never sends anything; reading only notices it leaving.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger := s.logger.With(slog.String("a", p.a), slog.String("b", p.b), slog.Int64("seed", p.seed))
	send := func(m WatchMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(m)
	}

	var sendErr error
	p.round.Rng = rand.New(rand.NewSource(p.seed))
	p.round.Logger = logger
	p.round.OnTurn = func(f arena.Frame) {
		if sendErr != nil {
			return
		}
		if sendErr = send(WatchMessage{Type: MessageFrame, Frame: &f}); sendErr != nil {
			cancel()
		}
	}

	a, _ := strategy.New(p.a, strategy.Options{Rng: rand.New(rand.NewSource(p.seed*31 + 1))})
	b, _ := strategy.New(p.b, strategy.Options{Rng: rand.New(rand.NewSource(p.seed*31 + 2))})
	res, err := arena.RunRound(ctx, a, b, p.round)
	switch {
	case sendErr != nil:
		logger.Debug("watcher went away", slog.Any("err", sendErr))
		return
	case errors.Is(err, context.Canceled):
		logger.Debug("watcher disconnected")
		return
	case err != nil:
		_ = send(WatchMessage{Type: MessageError, Error: err.Error()})
		return
	}

	if err := send(WatchMessage{Type: MessageResult, A: p.a, B: p.b, Result: &res}); err != nil {
		logger.Debug("send result", slog.Any("err", err))
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "round over"),
		time.Now().Add(time.Second))
	logger.Info("round streamed", slog.String("winner", res.Winner.String()), slog.Int("ticks", res.Ticks))
}

package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snekduel/arena"
)

// roundMsg is a finished round. The tally is copied out of the arena record
// because the record keeps changing on the tournament goroutine.
type roundMsg struct {
	A, B   string
	Round  int
	Result arena.Result
	WinsA  int
	WinsB  int
	Draws  int
}

func newRoundMsg(r arena.RoundReport) roundMsg {
	return roundMsg{
		A:      r.A,
		B:      r.B,
		Round:  r.Round,
		Result: r.Result,
		WinsA:  r.Record.WinsA,
		WinsB:  r.Record.WinsB,
		Draws:  r.Record.Draws,
	}
}

type doneMsg struct{ err error }

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	leadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type tally struct {
	a, b               string
	played             int
	winsA, winsB, draw int
}

type model struct {
	runID      string
	roundsEach int
	pairings   int
	start      time.Time
	now        time.Time
	tallies    map[string]*tally
	recent     []string
	roundsSeen int
	ticksSeen  int
	finished   bool
	err        error
}

func initialModel(runID string, roundsEach, pairings int) model {
	now := time.Now()
	return model{
		runID:      runID,
		roundsEach: roundsEach,
		pairings:   pairings,
		start:      now,
		now:        now,
		tallies:    map[string]*tally{},
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	case roundMsg:
		k := pairingKey(msg.A, msg.B)
		t, ok := m.tallies[k]
		if !ok {
			t = &tally{a: msg.A, b: msg.B}
			m.tallies[k] = t
		}
		t.played = msg.Round + 1
		t.winsA, t.winsB, t.draw = msg.WinsA, msg.WinsB, msg.Draws
		m.roundsSeen++
		m.ticksSeen += msg.Result.Ticks

		line := fmt.Sprintf("%s #%d: %s (%s, %d ticks, %d-%d)", k, msg.Round, winnerName(msg), msg.Result.Reason, msg.Result.Ticks, msg.Result.ScoreA, msg.Result.ScoreB)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > 8 {
			m.recent = m.recent[:8]
		}
	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func winnerName(r roundMsg) string {
	switch r.Result.Winner {
	case arena.SideA:
		return r.A
	case arena.SideB:
		return r.B
	default:
		return "draw"
	}
}

func (m model) View() string {
	var sb strings.Builder
	elapsed := m.now.Sub(m.start)
	rps := 0.0
	if elapsed >= time.Second {
		rps = float64(m.roundsSeen) / elapsed.Seconds()
	}

	sb.WriteString(titleStyle.Render("snekduel tournament "+m.runID) + "\n")
	total := m.roundsEach * m.pairings
	sb.WriteString(fmt.Sprintf("Rounds: %d/%d   Ticks: %d   Elapsed: %s   Rounds/s: %.2f\n\n",
		m.roundsSeen, total, m.ticksSeen, elapsed.Round(time.Second), rps))

	keys := make([]string, 0, len(m.tallies))
	for k := range m.tallies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var table strings.Builder
	table.WriteString(headerStyle.Render(fmt.Sprintf("%-24s %5s %5s %5s %-24s", "A", "wins", "draws", "wins", "B")) + "\n")
	for _, k := range keys {
		t := m.tallies[k]
		a, b := fmt.Sprintf("%-24s", t.a), fmt.Sprintf("%-24s", t.b)
		switch {
		case t.winsA > t.winsB:
			a = leadStyle.Render(a)
		case t.winsB > t.winsA:
			b = leadStyle.Render(b)
		}
		table.WriteString(fmt.Sprintf("%s %5d %5d %5d %s %s\n", a, t.winsA, t.draw, t.winsB, b,
			dimStyle.Render(fmt.Sprintf("(%d/%d)", t.played, m.roundsEach))))
	}
	sb.WriteString(boxStyle.Render(strings.TrimRight(table.String(), "\n")) + "\n\n")

	sb.WriteString(headerStyle.Render("Recent rounds") + "\n")
	for _, line := range m.recent {
		sb.WriteString(dimStyle.Render(line) + "\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString("\n" + errStyle.Render("stopped: "+m.err.Error()) + "\n")
	case m.finished:
		sb.WriteString("\nDone.\n")
	default:
		sb.WriteString("\nPress q to stop.\n")
	}
	return sb.String()
}

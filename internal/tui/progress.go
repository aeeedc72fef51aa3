// SPDX-License-Identifier: MPL-2.0

// Package tui contains the terminal front ends: the live progress view that
// ticks the scheduler from a bubbletea loop, and markdown rendering for the
// docs command.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vendfile/vendfile/internal/engine"
)

var (
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fetchedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	unchangedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	upgradableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	keyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
)

type (
	// ProgressModel drives a scheduler from bubbletea tick messages and shows
	// one live status line per dependency. It is the second host shape for
	// the engine's cooperative protocol; `vendfile sync` without --progress
	// uses a plain sleep loop instead.
	ProgressModel struct {
		scheduler *engine.Scheduler
		run       *engine.Run
		keys      []string // declaration order
		interval  time.Duration
		spinner   spinner.Model

		done bool
		err  error
	}

	// passTickMsg schedules the next scheduler pass.
	passTickMsg time.Time
)

// NewProgress creates the progress view for an already-started scheduler.
// keys lists the unit keys in the order they should be displayed.
func NewProgress(sched *engine.Scheduler, run *engine.Run, keys []string, interval time.Duration) *ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = keyStyle

	return &ProgressModel{
		scheduler: sched,
		run:       run,
		keys:      keys,
		interval:  interval,
		spinner:   sp,
	}
}

// Err returns the error from the final pass, if any.
func (m *ProgressModel) Err() error { return m.err }

// Init starts the spinner and the pass cadence.
func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

// Update advances the scheduler on every tick. Interrupting simply stops the
// ticking, which is the engine's only cancellation mechanism.
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case passTickMsg:
		done, err := m.scheduler.Pass()
		if err != nil {
			m.err = err
		}
		if done {
			m.done = true
			return m, tea.Quit
		}
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders one line per dependency with its current outcome.
func (m *ProgressModel) View() string {
	var sb strings.Builder
	for _, key := range m.keys {
		sb.WriteString(m.statusLine(key))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (m *ProgressModel) statusLine(key string) string {
	outcome, ok := m.run.Outcome(key)
	if !ok {
		marker := m.spinner.View()
		if m.done {
			marker = pendingStyle.Render("-")
		}
		return marker + " " + keyStyle.Render(key)
	}

	var marker string
	switch outcome {
	case engine.OutcomeFetched:
		marker = fetchedStyle.Render("✓")
	case engine.OutcomeUnchanged:
		marker = unchangedStyle.Render("=")
	case engine.OutcomeUpgradable:
		marker = upgradableStyle.Render("↑")
	case engine.OutcomeFailed:
		marker = failedStyle.Render("✗")
	}
	return marker + " " + keyStyle.Render(key) + " " + pendingStyle.Render(outcome.String())
}

// tick schedules the next pass after the configured interval.
func (m *ProgressModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return passTickMsg(t)
	})
}

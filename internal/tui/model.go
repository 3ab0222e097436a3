package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/dashboard"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
)

// Controller is the part of the dashboard the view drives.
type Controller interface {
	Fetch(ctx context.Context) error
	Match(ctx context.Context) error
	SetFilterInput(ctx context.Context, source, minScore string) error
	Apply(ctx context.Context, jobID int64) (*matchapi.ApplyResult, error)
	Snapshot() dashboard.Snapshot
}

// ClipboardWriter is an interface for clipboard operations (allows mocking in tests)
type ClipboardWriter interface {
	WriteText(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// changedMsg tells the model to re-read the dashboard snapshot.
type changedMsg struct{}

type actionMsg struct {
	action string
	err    error
}

type copiedMsg struct {
	path string
	err  error
}

type mode int

const (
	modeList mode = iota
	modeFilter
)

const (
	fieldSource = iota
	fieldScore
)

type Model struct {
	ctx       context.Context
	ctrl      Controller
	logger    *zap.Logger
	clipboard ClipboardWriter

	snap       dashboard.Snapshot
	cursor     int
	selectedID int64
	width      int
	height     int

	mode   mode
	inputs [2]string
	focus  int
	notice string
}

type Option func(*Model)

func WithClipboard(c ClipboardWriter) Option {
	return func(m *Model) { m.clipboard = c }
}

func New(ctx context.Context, ctrl Controller, logger *zap.Logger, opts ...Option) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		logger:    logger,
		clipboard: systemClipboard{},
	}

	for _, o := range opts {
		o(&m)
	}

	m.refresh()

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.WindowSize(),
		m.run("match", m.ctrl.Match),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeFilter {
			return m.handleFilterKey(msg)
		}
		return m.handleListKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case changedMsg:
		m.refresh()

	case actionMsg:
		m.refresh()
		switch {
		case errors.Is(msg.err, card.ErrInFlight):
			m.notice = "Application is already in progress"
		case errors.Is(msg.err, dashboard.ErrUnknownJob):
			m.notice = "Job is no longer visible"
		case msg.err != nil:
			// remote failures are already in the status log
			m.logger.Debug("action finished with error", zap.String("action", msg.action), zap.Error(msg.err))
		}

	case copiedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Copy failed: %s", msg.err)
		} else {
			m.notice = fmt.Sprintf("Copied %s", msg.path)
		}
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "down", "j":
		m.move(1)
	case "up", "k":
		m.move(-1)
	case "f":
		m.notice = ""
		return m, m.run("fetch", m.ctrl.Fetch)
	case "m", "r":
		m.notice = ""
		return m, m.run("match", m.ctrl.Match)
	case "/":
		m.mode = modeFilter
		m.focus = fieldSource
		m.inputs = criteriaInputs(m.snap)
		m.notice = ""
	case "enter", "a":
		return m.applySelected()
	case "c":
		return m.copySelected()
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = modeList
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.focus = 1 - m.focus
	case tea.KeyEnter:
		m.mode = modeList
		source, minScore := m.inputs[fieldSource], m.inputs[fieldScore]
		ctx, ctrl := m.ctx, m.ctrl
		return m, func() tea.Msg {
			return actionMsg{action: "filter", err: ctrl.SetFilterInput(ctx, source, minScore)}
		}
	case tea.KeyBackspace:
		value := []rune(m.inputs[m.focus])
		if len(value) > 0 {
			m.inputs[m.focus] = string(value[:len(value)-1])
		}
	case tea.KeySpace:
		m.inputs[m.focus] += " "
	case tea.KeyRunes:
		m.inputs[m.focus] += string(msg.Runes)
	}

	return m, nil
}

func (m Model) applySelected() (tea.Model, tea.Cmd) {
	view, ok := m.selected()
	if !ok {
		return m, nil
	}

	if view.State.Status.IsActive() {
		m.notice = "Application is already in progress"
		return m, nil
	}

	m.notice = ""
	ctx, ctrl, jobID := m.ctx, m.ctrl, view.Job.ID

	return m, func() tea.Msg {
		_, err := ctrl.Apply(ctx, jobID)
		return actionMsg{action: "apply", err: err}
	}
}

func (m Model) copySelected() (tea.Model, tea.Cmd) {
	view, ok := m.selected()
	if !ok {
		return m, nil
	}

	path := view.State.ResumePath()
	if path == "" {
		m.notice = "No resume prepared for this job yet"
		return m, nil
	}

	writer := m.clipboard
	return m, func() tea.Msg {
		return copiedMsg{path: path, err: writer.WriteText(path)}
	}
}

func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{action: action, err: fn(ctx)}
	}
}

// refresh re-reads the snapshot and keeps the cursor on the selected job when it is still visible.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()

	for i, c := range m.snap.Cards {
		if c.Job.ID == m.selectedID {
			m.cursor = i
			return
		}
	}

	m.move(0)
}

func (m *Model) move(delta int) {
	n := len(m.snap.Cards)
	if n == 0 {
		m.cursor, m.selectedID = 0, 0
		return
	}

	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	m.selectedID = m.snap.Cards[m.cursor].Job.ID
}

func (m Model) selected() (dashboard.CardView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Cards) {
		return dashboard.CardView{}, false
	}
	return m.snap.Cards[m.cursor], true
}

func criteriaInputs(s dashboard.Snapshot) [2]string {
	var inputs [2]string
	inputs[fieldSource] = strings.TrimSpace(s.Criteria.SourceSubstring)
	if s.Criteria.HasMinScore() && s.Criteria.MinScore != 0 {
		inputs[fieldScore] = strconv.FormatFloat(s.Criteria.MinScore, 'f', -1, 64)
	}
	return inputs
}

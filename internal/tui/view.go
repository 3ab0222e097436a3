package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/dashboard"
)

type helpItem struct {
	key  string
	desc string
}

var (
	listHelp = []helpItem{
		{"f", "fetch"}, {"m", "match"}, {"/", "filter"}, {"enter", "apply"},
		{"c", "copy resume"}, {"j/k", "move"}, {"q", "quit"},
	}
	filterHelp = []helpItem{
		{"tab", "next field"}, {"enter", "apply filter"}, {"esc", "cancel"},
	}
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.mode == modeFilter {
		b.WriteString(m.renderFilterEditor())
		b.WriteString("\n")
	}

	if msg := m.renderMessage(); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderCards())
	b.WriteString("\n\n")
	b.WriteString(m.renderEvents())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(mutedStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderHeader() string {
	status := fmt.Sprintf("%d shown of %d", len(m.snap.Cards), len(m.snap.Jobs))
	if m.snap.Loading {
		status += " · loading..."
	}

	return fmt.Sprintf("%s  %s\n%s",
		titleStyle.Render("Job matches"),
		mutedStyle.Render(status),
		mutedStyle.Render("Filter: "+m.snap.Criteria.String()),
	)
}

func (m Model) renderFilterEditor() string {
	labels := [2]string{"Source contains", "Minimum score"}

	lines := make([]string, 0, len(labels))
	for i, label := range labels {
		value := m.inputs[i]
		prefix := "  "
		if i == m.focus {
			prefix = "> "
			value += "_"
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", prefix, label, inputStyle.Render(value)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderMessage() string {
	msg := m.snap.Message
	if msg == nil {
		return ""
	}

	if msg.Kind == dashboard.MessageError {
		return failedStyle.Render("Apply failed: " + msg.Text)
	}
	return succeededStyle.Render(msg.Text)
}

func (m Model) renderCards() string {
	if !m.snap.Loaded {
		return mutedStyle.Render("Loading matches...")
	}

	if len(m.snap.Cards) == 0 {
		return mutedStyle.Render("No jobs match the current filters.")
	}

	cols := 1
	if m.width > cardWidth {
		cols = m.width / cardWidth
	}

	rows := make([]string, 0, len(m.snap.Cards)/cols+1)
	for start := 0; start < len(m.snap.Cards); start += cols {
		end := min(start+cols, len(m.snap.Cards))

		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCard(m.snap.Cards[i], i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return strings.Join(m.visibleRows(rows, cols), "\n")
}

// visibleRows keeps the window of card rows that contains the cursor.
func (m Model) visibleRows(rows []string, cols int) []string {
	fit := len(rows)
	if m.height > 0 {
		// header, message, status log and help
		reserved := 8 + logLines
		fit = max(1, (m.height-reserved)/cardHeight)
	}

	if fit >= len(rows) {
		return rows
	}

	current := m.cursor / cols
	first := max(0, current-fit+1)

	return rows[first:min(first+fit, len(rows))]
}

func (m Model) renderCard(view dashboard.CardView, selected bool) string {
	width := cardWidth - 4
	job := view.Job

	lines := []string{
		cardTitleStyle.Render(truncate(job.Title, width)),
		truncate(job.Company+" · "+job.DisplayLocation(), width),
		truncate(fmt.Sprintf("%s · match %s", job.Source, job.ScorePercent()), width),
		mutedStyle.Render(truncate(job.TagList(), width)),
		renderState(view.State, width),
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}

	return style.Render(strings.Join(lines, "\n"))
}

func renderState(state card.State, width int) string {
	switch state.Status {
	case card.StatusInFlight:
		return inFlightStyle.Render("Preparing...")
	case card.StatusSucceeded:
		return succeededStyle.Render(truncate("Resume: "+state.ResumePath(), width))
	case card.StatusFailed:
		return failedStyle.Render(truncate("Error: "+state.Err, width))
	default:
		return mutedStyle.Render("Apply & Generate")
	}
}

func (m Model) renderEvents() string {
	lines := []string{titleStyle.Render("Status")}

	events := m.snap.Events
	if len(events) > logLines {
		events = events[:logLines]
	}

	width := m.width
	if width <= 0 {
		width = 120
	}

	for _, e := range events {
		line := truncate(e.String(), width)
		switch e.Level {
		case dashboard.LevelError:
			line = failedStyle.Render(line)
		case dashboard.LevelWarn:
			line = inFlightStyle.Render(line)
		default:
			line = mutedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	items := listHelp
	if m.mode == modeFilter {
		items = filterHelp
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, helpKeyStyle.Render(item.key)+" "+helpDescStyle.Render(item.desc))
	}

	return strings.Join(parts, "  ")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

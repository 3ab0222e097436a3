package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/dashboard"
)

const (
	titleWidth  = 40
	statusWidth = 48
	tableEvents = 3
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "46"})
)

// renderTable renders the visible jobs with their apply state, the latest
// message and the newest status entries.
func renderTable(snap dashboard.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%d shown of %d, filter: %s)\n",
		headerStyle.Render("Job matches"), len(snap.Cards), len(snap.Jobs), snap.Criteria)

	switch {
	case !snap.Loaded:
		b.WriteString("Matches are not loaded yet.\n")
	case len(snap.Cards) == 0:
		b.WriteString("No jobs match the current filters.\n")
	default:
		t := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle.Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			}).
			Headers("ID", "Title", "Company", "Source", "Location", "Score", "Status")

		for _, view := range snap.Cards {
			job := view.Job
			t.Row(
				fmt.Sprint(job.ID),
				runewidth.Truncate(job.Title, titleWidth, "…"),
				job.Company,
				job.Source,
				job.DisplayLocation(),
				job.ScoreString(),
				runewidth.Truncate(stateText(view.State), statusWidth, "…"),
			)
		}

		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if msg := snap.Message; msg != nil {
		if msg.Kind == dashboard.MessageError {
			b.WriteString(errorStyle.Render("Apply failed: " + msg.Text))
		} else {
			b.WriteString(okStyle.Render(msg.Text))
		}
		b.WriteString("\n")
	}

	events := snap.Events
	if len(events) > tableEvents {
		events = events[:tableEvents]
	}
	for _, e := range events {
		b.WriteString(e.String())
		b.WriteString("\n")
	}

	return b.String()
}

func stateText(state card.State) string {
	switch state.Status {
	case card.StatusInFlight:
		return "preparing..."
	case card.StatusSucceeded:
		return "resume: " + state.ResumePath()
	case card.StatusFailed:
		return "error: " + state.Err
	default:
		return "-"
	}
}

// Package tui renders the dashboard as a full screen card grid.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/dashboard"
)

// Run shows the dashboard until the user quits or ctx is done.
// Logs must not go to the terminal while it runs.
func Run(ctx context.Context, d *dashboard.Dashboard, logger *zap.Logger, opts ...Option) error {
	p := tea.NewProgram(New(ctx, d, logger, opts...), tea.WithAltScreen(), tea.WithContext(ctx))

	d.SetOnChange(func() {
		p.Send(changedMsg{})
	})
	defer d.SetOnChange(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		logger.Info("dashboard closed", zap.Error(ctx.Err()))
		return nil
	}

	return err
}

// Package tui is the interactive terminal chat built on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iksnae/adk-chat/internal"
)

// Run starts the chat UI and blocks until the user quits or ctx is done
func Run(ctx context.Context, ctrl *internal.Controller, opts ...Option) error {
	p := tea.NewProgram(
		NewModel(ctx, ctrl, opts...),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat ui: %w", err)
	}
	return nil
}

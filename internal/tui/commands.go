package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iksnae/adk-chat/internal"
)

// Every controller call runs off the UI goroutine. The model picks up the
// outcome from the controller's view when the resultMsg arrives.

func bootstrapCmd(ctx context.Context, ctrl *internal.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Bootstrap(ctx)
		return resultMsg{op: opBootstrap}
	}
}

func createSessionCmd(ctx context.Context, ctrl *internal.Controller) tea.Cmd {
	return func() tea.Msg {
		_, err := ctrl.CreateSession(ctx)
		return resultMsg{op: opCreate, err: err}
	}
}

func selectSessionCmd(ctx context.Context, ctrl *internal.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{op: opSelect, err: ctrl.SelectSession(ctx, id)}
	}
}

func sendMessageCmd(ctx context.Context, ctrl *internal.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{op: opSend, err: ctrl.SendMessage(ctx, text)}
	}
}

func deleteSessionCmd(ctx context.Context, ctrl *internal.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{op: opDelete, err: ctrl.DeleteSession(ctx, id)}
	}
}

func renameSessionCmd(ctx context.Context, ctrl *internal.Controller, id, title string) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{op: opRename, err: ctrl.RenameSession(ctx, id, title)}
	}
}

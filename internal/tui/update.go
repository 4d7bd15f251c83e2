package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iksnae/adk-chat/internal"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.syncThread(false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// the optimistic user message and the placeholder are committed by
		// the command goroutine; pick them up between results
		if m.refresh() || m.busy() {
			m.syncThread(true)
		}
		return m, cmd

	case resultMsg:
		m.handleResult(msg)
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleResult(msg resultMsg) {
	m.refresh()
	follow := msg.op == opCreate || msg.op == opSelect || msg.op == opSend
	m.syncThread(follow)

	if msg.err != nil {
		if errors.Is(msg.err, internal.ErrBusy) {
			m.setError("Busy: wait for the current reply")
			return
		}
		m.setError(fmt.Sprintf("Failed to %s: %v", msg.op, msg.err))
		return
	}

	switch msg.op {
	case opCreate:
		m.setStatus("Started a new chat")
		m.focusOn(focusComposer)
	case opSelect:
		m.setStatus("")
		m.focusOn(focusComposer)
	case opDelete:
		m.setStatus("Chat deleted")
	case opRename:
		m.setStatus("Chat renamed")
	case opSend:
		m.setStatus("")
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.updateSearch(msg)
	case focusRename:
		return m.updateRename(msg)
	case focusConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg.String() {
	case "tab":
		if m.focus == focusComposer && m.sidebarVisible() {
			m.focusOn(focusSidebar)
		} else {
			m.focusOn(focusComposer)
		}
		return m, nil
	case "ctrl+n":
		return m.newChat()
	case "ctrl+y":
		m.copyLastReply()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(msg)
	}
	return m.updateComposer(msg)
}

func (m Model) newChat() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	m.view.IsLoading = true
	m.search.SetValue("")
	m.cursor = 0
	return m, createSessionCmd(m.ctx, m.ctrl)
}

func (m Model) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		text := strings.TrimSpace(m.composer.Value())
		if text == "" || m.busy() {
			return m, nil
		}
		m.composer.Reset()
		m.view.IsLoading = true
		m.setStatus("")
		return m, sendMessageCmd(m.ctx, m.ctrl, text)
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.filtered())-1 {
			m.cursor++
		}
	case "enter":
		session, ok := m.sessionAtCursor()
		if !ok || m.busy() {
			return m, nil
		}
		if session.ID == m.view.CurrentSessionID {
			m.focusOn(focusComposer)
			return m, nil
		}
		m.view.IsLoading = true
		return m, selectSessionCmd(m.ctx, m.ctrl, session.ID)
	case "/":
		m.focusOn(focusSearch)
	case "r":
		if session, ok := m.sessionAtCursor(); ok {
			m.target = session.ID
			m.rename.SetValue(session.Title)
			m.rename.CursorEnd()
			m.focusOn(focusRename)
		}
	case "d":
		if session, ok := m.sessionAtCursor(); ok {
			m.target = session.ID
			m.setStatus(fmt.Sprintf("Delete %q? (y/n)", session.Title))
			m.focusOn(focusConfirmDelete)
		}
	case "n":
		return m.newChat()
	case "c":
		m.copyLastReply()
	case "esc":
		m.focusOn(focusComposer)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.focusOn(focusSidebar)
		return m, nil
	case "esc":
		m.search.SetValue("")
		m.cursor = 0
		m.focusOn(focusSidebar)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.rename.Value())
		id := m.target
		m.target = ""
		m.focusOn(focusSidebar)
		if title == "" {
			return m, nil
		}
		return m, renameSessionCmd(m.ctx, m.ctrl, id, title)
	case "esc":
		m.target = ""
		m.focusOn(focusSidebar)
		return m, nil
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.target
	m.target = ""
	m.focusOn(focusSidebar)
	if msg.String() != "y" && msg.String() != "Y" {
		m.setStatus("")
		return m, nil
	}
	m.setStatus("Deleting...")
	return m, deleteSessionCmd(m.ctx, m.ctrl, id)
}

func (m *Model) copyLastReply() {
	reply, ok := m.lastReply()
	if !ok {
		m.setStatus("Nothing to copy")
		return
	}
	if err := m.copy(reply.Content); err != nil {
		m.setError(fmt.Sprintf("copy failed: %v", err))
		return
	}
	m.setStatus("Copied reply to clipboard")
}

// updateInputs forwards everything else (cursor blink) to the focused input
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusComposer:
		m.composer, cmd = m.composer.Update(msg)
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusRename:
		m.rename, cmd = m.rename.Update(msg)
	}
	return m, cmd
}

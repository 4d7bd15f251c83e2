package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/iksnae/adk-chat/internal"
)

// sidebarItemLines is the height of one session entry including its gap
const sidebarItemLines = 4

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	main := m.mainView()
	if !m.sidebarVisible() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), main)
}

func (m Model) mainView() string {
	w := m.mainWidth()
	parts := []string{m.headerView(w)}
	if m.view.ShowLanding {
		parts = append(parts, m.landingView(w))
	} else {
		parts = append(parts, m.thread.View())
	}
	parts = append(parts, m.composerView(), m.statusView(w))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerView(width int) string {
	title := m.theme.header.Render(internal.Truncate(m.view.Header, max(width-20, 10)))
	if m.appName != "" {
		title += m.theme.muted.Render("  " + m.appName)
	}
	return title + "\n" + m.theme.rule.Render(strings.Repeat("─", max(width-1, 1)))
}

func (m Model) landingView(width int) string {
	name := m.appName
	if name == "" {
		name = "the agent"
	}
	button := m.theme.button.Render("Start ⏎")
	if strings.TrimSpace(m.composer.Value()) == "" || m.busy() {
		button = m.theme.buttonDisabled.Render("Start ⏎")
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.theme.landingTitle.Render("What can I help you with?"),
		"",
		m.theme.landingBody.Render(fmt.Sprintf("Ask %s a question or request a task to start a new chat.", name)),
		"",
		button,
	)
	return lipgloss.Place(width, m.thread.Height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) composerView() string {
	style := m.theme.composer
	if m.focus == focusComposer {
		style = m.theme.composerFocus
	}
	return style.Render(m.composer.View())
}

func (m Model) statusView(width int) string {
	if m.status != "" {
		style := m.theme.status
		if m.statusErr {
			style = m.theme.statusError
		}
		return style.Render(internal.Truncate(m.status, width))
	}

	var help string
	switch m.focus {
	case focusSidebar:
		help = "↑/↓ move • enter open • / search • r rename • d delete • n new • c copy • tab chat"
	case focusSearch:
		help = "type to filter • enter keep • esc clear"
	case focusRename:
		help = "enter save • esc cancel"
	default:
		help = "enter send • ctrl+j newline • tab chats • ctrl+n new • ctrl+y copy • ctrl+c quit"
	}
	return m.theme.help.Render(internal.Truncate(help, width))
}

func (m Model) sidebarView() string {
	inner := sidebarWidth - 4
	var b strings.Builder

	newChat := m.theme.button.Render("+ New Chat")
	if m.busy() {
		newChat = m.theme.buttonDisabled.Render("+ New Chat")
	}
	b.WriteString(newChat + m.theme.muted.Render("  ctrl+n") + "\n\n")

	if m.focus == focusSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.theme.muted.Render("/ " + searchPlaceholder))
	}
	b.WriteString("\n\n")

	sessions := m.filtered()
	if len(sessions) == 0 {
		b.WriteString(m.theme.muted.Render("No chats found"))
	}

	visible := max((m.height-8)/sidebarItemLines, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(sessions))
	now := m.now()
	for i := start; i < end; i++ {
		b.WriteString(m.sessionItem(sessions[i], i == m.cursor, inner, now))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	style := m.theme.sidebar
	if m.focus != focusComposer {
		style = m.theme.sidebarFocused
	}
	return style.Width(sidebarWidth - 2).Height(max(m.height-2, 1)).Render(b.String())
}

func (m Model) sessionItem(s internal.Session, atCursor bool, width int, now time.Time) string {
	marker := "  "
	if s.ID == m.view.CurrentSessionID {
		marker = "▌ "
	}

	var title string
	if m.focus == focusRename && s.ID == m.target {
		title = m.rename.View()
	} else {
		style := m.theme.item
		switch {
		case atCursor && m.focus != focusComposer:
			style = m.theme.itemCursor
		case s.ID == m.view.CurrentSessionID:
			style = m.theme.itemCurrent
		}
		title = style.Render(marker + internal.Truncate(s.Title, width-3))
	}

	preview := s.LastMessage
	if preview == "" {
		preview = "No messages yet"
	}
	meta := fmt.Sprintf("%s • %d messages", internal.RelativeTime(s.Timestamp, now), s.MessageCount)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.theme.muted.Render("   "+internal.Truncate(preview, width-3)),
		m.theme.muted.Render("   "+meta),
	)
}

// renderThread renders the displayed messages of the open session
func (m Model) renderThread(width int) string {
	messages := m.view.DisplayMessages(m.now())
	if len(messages) == 0 {
		return m.theme.muted.Render("No messages yet. Say hello!")
	}

	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg internal.Message, width int) string {
	stamp := ""
	if !msg.Timestamp.IsZero() {
		stamp = m.theme.muted.Render("  " + msg.Timestamp.Local().Format("15:04"))
	}

	if msg.IsUser() {
		body := m.theme.userBody.Width(max(width-2, 10)).Render(msg.Content)
		return m.theme.userLabel.Render("You") + stamp + "\n" + body
	}

	label := m.theme.assistantLabel.Render("Assistant") + stamp
	if msg.Streaming {
		return label + "\n" + m.theme.thinking.Render(m.spinner.View()+" Thinking...")
	}

	lines := []string{label}
	for _, ev := range msg.ToolEvents {
		lines = append(lines, m.renderToolEvent(ev))
	}
	lines = append(lines, m.md.render(msg.ID, msg.Content, width-2))
	return strings.Join(lines, "\n")
}

func (m Model) renderToolEvent(ev internal.ToolEvent) string {
	if ev.Kind == internal.ToolEventCall {
		args := ""
		if ev.Args != nil {
			if data, err := json.Marshal(ev.Args); err == nil {
				args = string(data)
			}
		}
		return m.theme.toolCall.Render(fmt.Sprintf("🔧 %s(%s)", ev.Name, args))
	}
	status := ev.Status
	if status == "" {
		status = "done"
	}
	return m.theme.toolResponse.Render(fmt.Sprintf("✅ %s %s", ev.Name, status))
}

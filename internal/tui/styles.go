package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("39")
	colorUser    = lipgloss.Color("213")
	colorMuted   = lipgloss.Color("245")
	colorBorder  = lipgloss.Color("238")
	colorSuccess = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorWarning = lipgloss.Color("214")
)

type theme struct {
	sidebar        lipgloss.Style
	sidebarFocused lipgloss.Style
	header         lipgloss.Style
	rule           lipgloss.Style
	muted          lipgloss.Style
	item           lipgloss.Style
	itemCursor     lipgloss.Style
	itemCurrent    lipgloss.Style
	userLabel      lipgloss.Style
	assistantLabel lipgloss.Style
	userBody       lipgloss.Style
	toolCall       lipgloss.Style
	toolResponse   lipgloss.Style
	thinking       lipgloss.Style
	composer       lipgloss.Style
	composerFocus  lipgloss.Style
	button         lipgloss.Style
	buttonDisabled lipgloss.Style
	landingTitle   lipgloss.Style
	landingBody    lipgloss.Style
	status         lipgloss.Style
	statusError    lipgloss.Style
	warning        lipgloss.Style
	help           lipgloss.Style
}

func newTheme() theme {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return theme{
		sidebar:        panel,
		sidebarFocused: panel.BorderForeground(colorAccent),
		header:         lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		rule:           lipgloss.NewStyle().Foreground(colorBorder),
		muted:          lipgloss.NewStyle().Foreground(colorMuted),
		item:           lipgloss.NewStyle().PaddingLeft(1),
		itemCursor:     lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(colorAccent),
		itemCurrent:    lipgloss.NewStyle().PaddingLeft(1).Bold(true),
		userLabel:      lipgloss.NewStyle().Bold(true).Foreground(colorUser),
		assistantLabel: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		userBody:       lipgloss.NewStyle().PaddingLeft(2),
		toolCall:       lipgloss.NewStyle().Foreground(colorWarning).PaddingLeft(2),
		toolResponse:   lipgloss.NewStyle().Foreground(colorSuccess).PaddingLeft(2),
		thinking:       lipgloss.NewStyle().Foreground(colorMuted).Italic(true).PaddingLeft(2),
		composer:       panel,
		composerFocus:  panel.BorderForeground(colorAccent),
		button:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(colorAccent).Padding(0, 1),
		buttonDisabled: lipgloss.NewStyle().Foreground(colorMuted).Background(colorBorder).Padding(0, 1),
		landingTitle:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		landingBody:    lipgloss.NewStyle().Foreground(colorMuted),
		status:         lipgloss.NewStyle().Foreground(colorSuccess),
		statusError:    lipgloss.NewStyle().Foreground(colorError),
		warning:        lipgloss.NewStyle().Foreground(colorWarning),
		help:           lipgloss.NewStyle().Foreground(colorMuted),
	}
}

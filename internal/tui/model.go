package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iksnae/adk-chat/internal"
)

const (
	sidebarWidth       = 36
	minWidthForSidebar = 72
	composerHeight     = 3

	chatPlaceholder    = "Type your message..."
	landingPlaceholder = "Ask anything, or request a task..."
	searchPlaceholder  = "Search chats..."
)

// focus is the widget receiving key presses
type focus int

const (
	focusComposer focus = iota
	focusSidebar
	focusSearch
	focusRename
	focusConfirmDelete
)

// Model is the bubbletea model of the chat UI
type Model struct {
	ctx     context.Context
	ctrl    *internal.Controller
	appName string
	view    internal.View

	theme    theme
	md       *markdown
	composer textarea.Model
	thread   viewport.Model
	search   textinput.Model
	rename   textinput.Model
	spinner  spinner.Model

	focus     focus
	cursor    int
	target    string
	status    string
	statusErr bool

	width  int
	height int

	now  func() time.Time
	copy func(string) error
}

// Option configures a Model
type Option func(*Model)

// WithAppName names the agent on the landing screen
func WithAppName(name string) Option {
	return func(m *Model) { m.appName = name }
}

// WithClock overrides the time source used for relative times
func WithClock(fn func() time.Time) Option {
	return func(m *Model) { m.now = fn }
}

// WithClipboard overrides how replies are copied
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// NewModel creates the UI model for ctrl. Controller calls use ctx.
func NewModel(ctx context.Context, ctrl *internal.Controller, opts ...Option) Model {
	composer := textarea.New()
	composer.Placeholder = landingPlaceholder
	composer.ShowLineNumbers = false
	composer.Prompt = ""
	composer.CharLimit = 0
	composer.SetHeight(composerHeight)
	composer.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j", "alt+enter"))
	composer.Focus()

	thread := viewport.New(0, 0)
	thread.MouseWheelEnabled = true

	search := textinput.New()
	search.Placeholder = searchPlaceholder
	search.Prompt = "/ "

	rename := textinput.New()
	rename.Prompt = "✎ "
	rename.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Points

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		view:     ctrl.View(),
		theme:    newTheme(),
		md:       newMarkdown(),
		composer: composer,
		thread:   thread,
		search:   search,
		rename:   rename,
		spinner:  sp,
		now:      time.Now,
		copy:     clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.spinner.Style = m.theme.muted
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, bootstrapCmd(m.ctx, m.ctrl))
}

// busy reports whether a request is in flight; affordances that would start
// another one are disabled meanwhile
func (m Model) busy() bool {
	return m.view.IsLoading
}

// filtered returns the sessions shown in the sidebar
func (m Model) filtered() []internal.Session {
	return m.view.FilterSessions(m.search.Value())
}

func (m Model) sessionAtCursor() (internal.Session, bool) {
	sessions := m.filtered()
	if m.cursor < 0 || m.cursor >= len(sessions) {
		return internal.Session{}, false
	}
	return sessions[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.filtered())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// refresh re-reads the controller's view and reports whether anything shown
// in the thread changed
func (m *Model) refresh() bool {
	prev := m.view
	m.view = m.ctrl.View()
	m.clampCursor()

	if m.view.ShowLanding {
		m.composer.Placeholder = landingPlaceholder
	} else {
		m.composer.Placeholder = chatPlaceholder
	}

	return prev.CurrentSessionID != m.view.CurrentSessionID ||
		prev.IsLoading != m.view.IsLoading ||
		len(prev.Messages) != len(m.view.Messages)
}

func (m *Model) sidebarVisible() bool {
	return m.width >= minWidthForSidebar
}

func (m *Model) mainWidth() int {
	if m.sidebarVisible() {
		return m.width - sidebarWidth
	}
	return m.width
}

// resize lays out the widgets for the current window size
func (m *Model) resize() {
	w := m.mainWidth()
	m.composer.SetWidth(max(w-4, 10))
	m.search.Width = sidebarWidth - 8
	m.rename.Width = sidebarWidth - 8

	// header (2) + composer with border (composerHeight+2) + status line (1)
	m.thread.Width = w
	m.thread.Height = max(m.height-composerHeight-5, 3)
}

// syncThread re-renders the thread; follow scrolls to the newest message
func (m *Model) syncThread(follow bool) {
	atBottom := m.thread.AtBottom()
	m.thread.SetContent(m.renderThread(m.thread.Width))
	if follow || atBottom {
		m.thread.GotoBottom()
	}
}

func (m *Model) setStatus(text string) {
	m.status, m.statusErr = text, false
}

func (m *Model) setError(text string) {
	m.status, m.statusErr = text, true
}

func (m *Model) focusOn(f focus) {
	m.focus = f
	m.composer.Blur()
	m.search.Blur()
	m.rename.Blur()
	switch f {
	case focusComposer:
		m.composer.Focus()
	case focusSearch:
		m.search.Focus()
	case focusRename:
		m.rename.Focus()
	}
}

// lastReply returns the newest assistant message with content
func (m Model) lastReply() (internal.Message, bool) {
	for i := len(m.view.Messages) - 1; i >= 0; i-- {
		msg := m.view.Messages[i]
		if msg.Role == internal.RoleAssistant && !msg.Streaming && msg.Content != "" {
			return msg, true
		}
	}
	return internal.Message{}, false
}

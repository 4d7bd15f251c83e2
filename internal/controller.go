package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// titleRuneLimit is how much of the first message becomes the session title
const titleRuneLimit = 30

// TitleRecorder persists titles the controller derives from first messages
type TitleRecorder interface {
	RecordTitle(userID, sessionID, title string) error
}

// Controller applies user actions to the chat state through a Backend
type Controller struct {
	backend Backend
	store   *Store
	userID  string
	titles  TitleRecorder
	newID   func() string
	now     func() time.Time
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithTitleRecorder records derived titles
func WithTitleRecorder(r TitleRecorder) ControllerOption {
	return func(c *Controller) { c.titles = r }
}

// WithMessageIDs overrides optimistic message id generation
func WithMessageIDs(fn func() string) ControllerOption {
	return func(c *Controller) { c.newID = fn }
}

// WithControllerClock overrides the time source
func WithControllerClock(fn func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = fn }
}

// NewController creates a controller for userID with an empty state
func NewController(backend Backend, userID string, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend: backend,
		store:   NewStore(),
		userID:  userID,
		newID:   func() string { return "user_" + uuid.NewString() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the chat state
func (c *Controller) State() ChatState {
	return c.store.Snapshot()
}

// View returns the derived presentation view of the current state
func (c *Controller) View() View {
	return DeriveView(c.store.Snapshot())
}

// UserID returns the user the controller acts for
func (c *Controller) UserID() string {
	return c.userID
}

// Bootstrap loads the session list. It never fails: listing problems leave
// the list empty.
func (c *Controller) Bootstrap(ctx context.Context) {
	sessions := c.backend.ListSessions(ctx, c.userID)
	if len(sessions) == 0 {
		LogDebug("No sessions found for %s", c.userID)
	}

	c.store.Update(func(st *ChatState) {
		next := ChatState{Sessions: append([]Session{}, sessions...)}
		// keep the open session even if the backend did not list it
		if i := st.FindSession(st.CurrentSessionID); i >= 0 {
			if j := next.FindSession(st.CurrentSessionID); j >= 0 {
				next.Sessions[j] = mergeListed(next.Sessions[j], st.Sessions[i])
			} else {
				next.Sessions = append([]Session{st.Sessions[i]}, next.Sessions...)
			}
		}
		st.Sessions = next.Sessions
	})
}

// mergeListed combines a listed session with the copy held in memory. The
// listing carries no preview or count, and its title is a default unless one
// was stored.
func mergeListed(listed, local Session) Session {
	merged := listed
	if isDefaultTitle(listed.Title) && !isDefaultTitle(local.Title) {
		merged.Title = local.Title
	}
	if merged.LastMessage == "" {
		merged.LastMessage = local.LastMessage
	}
	if local.MessageCount > merged.MessageCount {
		merged.MessageCount = local.MessageCount
	}
	if local.Timestamp.After(merged.Timestamp) {
		merged.Timestamp = local.Timestamp
	}
	return merged
}

func isDefaultTitle(title string) bool {
	return title == "" || title == DefaultListedSessionTitle || title == DefaultNewSessionTitle
}

// CreateSession creates a session, selects it and clears the thread.
// Unlike the other actions its failure is meant to be acted on by the caller.
func (c *Controller) CreateSession(ctx context.Context) (Session, error) {
	if !c.store.BeginLoading() {
		return Session{}, ErrBusy
	}

	session, err := c.backend.CreateSession(ctx, c.userID)
	if err != nil {
		LogError("Failed to create session: %v", err)
		c.store.EndLoading()
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	c.store.Update(func(st *ChatState) {
		rest := st.Sessions[:0:0]
		for _, s := range st.Sessions {
			if s.ID != session.ID {
				rest = append(rest, s)
			}
		}
		st.Sessions = append([]Session{session}, rest...)
		st.CurrentSessionID = session.ID
		st.Messages = []Message{}
		st.IsLoading = false
	})
	LogInfo("Created session %s", session.ID)
	return session, nil
}

// SelectSession makes id current and replaces the thread with its history.
// Selecting the current session does nothing.
func (c *Controller) SelectSession(ctx context.Context, id string) error {
	snap := c.store.Snapshot()
	if id == snap.CurrentSessionID {
		return nil
	}
	if snap.FindSession(id) < 0 {
		return fmt.Errorf("select %s: %w", id, ErrSessionNotFound)
	}
	if !c.store.BeginLoading() {
		return ErrBusy
	}

	messages := c.backend.GetHistory(ctx, c.userID, id)
	if err := ctx.Err(); err != nil {
		LogError("Failed to load session messages: %v", err)
		c.store.EndLoading()
		return fmt.Errorf("select %s: %w", id, err)
	}

	var gone bool
	c.store.Update(func(st *ChatState) {
		st.IsLoading = false
		if st.FindSession(id) < 0 {
			gone = true
			return
		}
		st.CurrentSessionID = id
		st.Messages = append([]Message{}, messages...)
		// listed sessions start at zero; the history tells how many there are
		session := &st.Sessions[st.FindSession(id)]
		if len(messages) > session.MessageCount {
			session.MessageCount = len(messages)
		}
	})
	if gone {
		LogWarn("Session %s was removed while loading", id)
		return fmt.Errorf("select %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// SendMessage sends text in the current session, creating one first when
// none is selected. The user's message is shown before the backend answers
// and stays in the thread if the backend call fails.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	snap := c.store.Snapshot()
	if snap.IsLoading {
		return ErrBusy
	}
	sessionID := snap.CurrentSessionID
	if sessionID == "" {
		created, err := c.CreateSession(ctx)
		if err != nil {
			LogError("Cannot create session before sending message: %v", err)
			return err
		}
		sessionID = created.ID
	}

	userMessage := Message{
		ID:        c.newID(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: c.now(),
	}

	var rejected error
	c.store.Update(func(st *ChatState) {
		switch {
		case st.IsLoading:
			rejected = ErrBusy
		case st.CurrentSessionID != sessionID:
			rejected = fmt.Errorf("send to %s: %w", sessionID, ErrSessionNotFound)
		default:
			st.Messages = append(st.Messages, userMessage)
			st.IsLoading = true
		}
	})
	if rejected != nil {
		return rejected
	}

	reply, err := c.backend.SendMessage(ctx, c.userID, sessionID, text)
	if err != nil {
		LogError("Failed to send message: %v", err)
		c.store.EndLoading()
		return fmt.Errorf("send message: %w", err)
	}

	var derivedTitle string
	c.store.Update(func(st *ChatState) {
		st.IsLoading = false
		if st.CurrentSessionID == sessionID {
			st.Messages = append(st.Messages, reply)
		}
		i := st.FindSession(sessionID)
		if i < 0 {
			return
		}
		session := st.Sessions[i]
		session.LastMessage = text
		session.Timestamp = c.now()
		if session.MessageCount == 0 {
			session.Title = DeriveTitle(text)
			derivedTitle = session.Title
		}
		session.MessageCount += 2

		// recency order: the session just used goes first
		st.Sessions = append(st.Sessions[:i], st.Sessions[i+1:]...)
		st.Sessions = append([]Session{session}, st.Sessions...)
	})

	if derivedTitle != "" && c.titles != nil {
		if err := c.titles.RecordTitle(c.userID, sessionID, derivedTitle); err != nil {
			LogWarn("Failed to record title for %s: %v", sessionID, err)
		}
	}
	return nil
}

// DeleteSession removes a session. Nothing changes locally if the backend
// call fails.
func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	if err := c.backend.DeleteSession(ctx, c.userID, id); err != nil {
		LogError("Failed to delete session: %v", err)
		return fmt.Errorf("delete %s: %w", id, err)
	}

	c.store.Update(func(st *ChatState) {
		if i := st.FindSession(id); i >= 0 {
			st.Sessions = append(st.Sessions[:i], st.Sessions[i+1:]...)
		}
		if st.CurrentSessionID == id {
			st.CurrentSessionID = ""
			st.Messages = []Message{}
		}
	})
	LogInfo("Deleted session %s", id)
	return nil
}

// RenameSession changes a session's title. Nothing changes locally if the
// backend call fails.
func (c *Controller) RenameSession(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if c.store.Snapshot().FindSession(id) < 0 {
		return fmt.Errorf("rename %s: %w", id, ErrSessionNotFound)
	}

	if err := c.backend.RenameSession(ctx, c.userID, id, title); err != nil {
		LogError("Failed to rename session: %v", err)
		return fmt.Errorf("rename %s: %w", id, err)
	}

	c.store.Update(func(st *ChatState) {
		if i := st.FindSession(id); i >= 0 {
			st.Sessions[i].Title = title
		}
	})
	return nil
}

// DeriveTitle builds a session title from the first message of a session
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > titleRuneLimit {
		runes = runes[:titleRuneLimit]
	}
	return string(runes) + "..."
}

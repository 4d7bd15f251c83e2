package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/adk-chat/internal"
	"github.com/spf13/cobra"
)

var (
	limit          int
	since          string
	showOffline    bool
	showClearCache bool
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	toolEventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Padding(0, 2)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show messages for a specific session",
	Long: `Display the conversation of a session, including tool activity.

Fetched conversations are cached; use --offline to read the cached copy
without contacting the backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sinceTime time.Time
		if since != "" {
			parsed, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			sinceTime = parsed
		}

		transcript, err := loadTranscript(cmd.Context(), args[0], showOffline, showClearCache)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, transcript)

		messages := transcript.Messages
		if !sinceTime.IsZero() {
			filtered := make([]internal.Message, 0, len(messages))
			for _, msg := range messages {
				if !msg.Timestamp.Before(sinceTime) {
					filtered = append(filtered, msg)
				}
			}
			messages = filtered
		}

		total := len(messages)
		if limit > 0 && limit < total {
			messages = messages[:limit]
		}
		for i, msg := range messages {
			displayMessage(out, i+1, msg, total)
		}

		if limit > 0 && limit < total {
			fmt.Fprintln(out)
			fmt.Fprintln(out, lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
		}
		return nil
	},
}

// loadTranscript returns a session's conversation, from the cache when
// offline and from the backend (refreshing the cache) otherwise
func loadTranscript(ctx context.Context, id string, offline, clearCache bool) (*internal.Transcript, error) {
	if offline && clearCache {
		return nil, errors.New("--offline and --clear-cache cannot be used together")
	}

	if offline {
		cfg, err := resolveConfig()
		if err != nil {
			return nil, err
		}
		transcript, err := internal.NewTranscriptCache(cfg.CacheDir()).Load(id)
		if err != nil {
			return nil, err
		}
		internal.LogDebug("Loaded %s from cache", id)
		return transcript, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := openSession(cfg, true)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	cache := internal.NewTranscriptCache(cfg.CacheDir())
	if clearCache {
		if err := cache.Clear(); err != nil {
			internal.LogWarn("Failed to clear cache: %v", err)
		} else {
			internal.PrintInfo("Cache cleared")
		}
	}

	err = internal.ShowProgress(ctx, "Loading conversation", func() error {
		s.ctrl.Bootstrap(ctx)
		return s.ctrl.SelectSession(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	view := s.ctrl.View()
	if view.CurrentSession == nil {
		return nil, fmt.Errorf("show %s: %w", id, internal.ErrSessionNotFound)
	}
	transcript := &internal.Transcript{Session: *view.CurrentSession, Messages: view.Messages}
	transcript.Session.MessageCount = len(view.Messages)
	for i := len(view.Messages) - 1; i >= 0; i-- {
		if view.Messages[i].IsUser() {
			transcript.Session.LastMessage = view.Messages[i].Content
			break
		}
	}

	if s.history.err != nil {
		// an empty thread from a failed load must not replace a good cached copy
		internal.PrintWarning(fmt.Sprintf("Could not load messages of %s; cached copy left unchanged", id))
		return transcript, nil
	}
	if err := cache.Save(*transcript, s.cacheMetadata()); err != nil {
		internal.LogWarn("Failed to save conversation to cache: %v", err)
	} else {
		internal.LogDebug("Cached %s", id)
	}
	return transcript, nil
}

func displaySessionHeader(w io.Writer, transcript *internal.Transcript) {
	if transcript == nil {
		return
	}
	title := transcript.Session.Title
	if title == "" {
		title = internal.DefaultListedSessionTitle
	}
	fmt.Fprintln(w, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", title)))

	metaParts := []string{fmt.Sprintf("ID: %s", transcript.Session.ID)}
	if !transcript.Session.Timestamp.IsZero() {
		metaParts = append(metaParts, fmt.Sprintf("Updated: %s", transcript.Session.Timestamp.Format(time.RFC3339)))
	}
	metaParts = append(metaParts, fmt.Sprintf("Messages: %d", len(transcript.Messages)))
	fmt.Fprintln(w, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	fmt.Fprintln(w)
}

func displayMessage(w io.Writer, index int, msg internal.Message, total int) {
	actorStyle, actorLabel := assistantMessageStyle, "🤖 Assistant"
	if msg.IsUser() {
		actorStyle, actorLabel = userMessageStyle, "👤 User"
	}

	header := actorStyle.Render(actorLabel)
	if total > 0 {
		header += " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	}
	if !msg.Timestamp.IsZero() {
		header += " " + timestampStyle.Render(msg.Timestamp.Local().Format("15:04:05"))
	}
	fmt.Fprintln(w, header)

	for _, ev := range msg.ToolEvents {
		fmt.Fprintln(w, toolEventStyle.Render(describeToolEvent(ev)))
	}

	content := strings.TrimSpace(msg.Content)
	if content != "" {
		fmt.Fprintln(w, messageContentStyle.Render(wrapText(content, 80)))
	} else {
		fmt.Fprintln(w, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}
}

func describeToolEvent(ev internal.ToolEvent) string {
	if ev.Kind == internal.ToolEventCall {
		args := ""
		if ev.Args != nil {
			if data, err := json.Marshal(ev.Args); err == nil {
				args = string(data)
			}
		}
		return fmt.Sprintf("🔧 %s(%s)", ev.Name, args)
	}
	status := ev.Status
	if status == "" {
		status = "done"
	}
	return fmt.Sprintf("✅ %s %s", ev.Name, status)
}

// wrapText wraps lines longer than width at word boundaries
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len([]rune(line)) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		current := ""
		for _, word := range strings.Fields(line) {
			switch {
			case current == "":
				current = word
			case len([]rune(current))+len([]rune(word))+1 > width:
				wrapped = append(wrapped, current)
				current = word
			default:
				current += " " + word
			}
		}
		if current != "" {
			wrapped = append(wrapped, current)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339)")
	showCmd.Flags().BoolVar(&showOffline, "offline", false, "Read the cached conversation without contacting the backend")
	showCmd.Flags().BoolVar(&showClearCache, "clear-cache", false, "Clear the cache before fetching")
}

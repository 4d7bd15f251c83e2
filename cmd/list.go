package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/adk-chat/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Long: `List the sessions of the configured user, newest first.

Titles come from the local title store: sessions named or started from this
client keep their titles, others are listed as "Chat".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openSession(cfg, true)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		_ = internal.ShowProgress(ctx, "Loading sessions", func() error {
			s.ctrl.Bootstrap(ctx)
			return nil
		})

		displaySessions(cmd.OutOrStdout(), s.ctrl.State().Sessions, time.Now())
		return nil
	},
}

func displaySessions(w io.Writer, sessions []internal.Session, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📋 No sessions found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 90))

	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = internal.DefaultListedSessionTitle
		}

		updated := dateStyle.Render("—")
		if !s.Timestamp.IsZero() {
			updated = dateStyle.Render(internal.RelativeTime(s.Timestamp, now))
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(s.ID),
			internal.Truncate(title, 40),
			countStyle.Render(strconv.Itoa(s.MessageCount)),
			updated,
		)
	}

	_ = tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, idStyle.Render("💡 Tip: Use the ID with `adk-chat show <id>` or `adk-chat send --session <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
}

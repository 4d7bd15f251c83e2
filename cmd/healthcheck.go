package cmd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/adk-chat/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that adk-chat can reach the agent API",
	Long: `Check the health of adk-chat by verifying:
  • Configuration (base URL, app name, user id, timeout)
  • Backend reachability and the session list endpoint
  • Local storage (title store and transcript cache)

This command is useful for debugging connection issues, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 adk-chat Health Check"))
		fmt.Fprintln(out)

		// Step 1: configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Checking configuration..."))
		cfg, err := resolveConfig()
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Invalid configuration:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration is valid"))
		if healthcheckDetails {
			fmt.Fprintf(out, "   Base URL: %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "   App: %s\n", cfg.AppName)
			fmt.Fprintf(out, "   User: %s\n", cfg.UserID)
			fmt.Fprintf(out, "   Data dir: %s\n", cfg.DataDir)
			fmt.Fprintf(out, "   Capabilities: delete=%t rename=%t\n", cfg.Capabilities.Delete, cfg.Capabilities.Rename)
		}
		fmt.Fprintln(out)

		// Step 2: backend
		fmt.Fprintln(out, infoStyle.Render("Step 2: Contacting the agent API..."))
		s, err := openSession(cfg, true)
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.client.FetchSessions(cmd.Context(), cfg.UserID)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to list sessions"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Error details:")
			fmt.Fprintln(out, err)
			explainBackendError(out, err, cfg)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Backend reachable, %d session(s) for %s", len(sessions), cfg.UserID)))
		if healthcheckDetails {
			for i, session := range sessions {
				if i == 5 {
					fmt.Fprintf(out, "   ... and %d more\n", len(sessions)-5)
					break
				}
				fmt.Fprintf(out, "   [%d] %s\n", i+1, session.ID)
			}
		}
		fmt.Fprintln(out)

		// Step 3: local storage
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking local storage..."))
		storageOK := true
		if s.titles != nil {
			fmt.Fprintln(out, successStyle.Render("✅ Title store available"))
		} else {
			storageOK = false
			fmt.Fprintln(out, warningStyle.Render("⚠️  Title store unavailable; titles will not be remembered"))
		}
		if healthcheckDetails {
			fmt.Fprintf(out, "   Database: %s\n", cfg.TitlesDBPath())
		}

		index, err := internal.NewTranscriptCache(cfg.CacheDir()).LoadIndex()
		if err != nil {
			storageOK = false
			fmt.Fprintln(out, warningStyle.Render("⚠️  Transcript cache unreadable:"), err)
		} else {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Transcript cache holds %d conversation(s)", len(index.Sessions))))
		}
		if healthcheckDetails {
			fmt.Fprintf(out, "   Cache: %s\n", cfg.CacheDir())
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if storageOK {
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Backend reachable, local storage degraded"))
		}
		return nil
	},
}

func explainBackendError(w io.Writer, err error, cfg internal.Config) {
	var statusErr *internal.StatusError
	var transportErr *internal.TransportError
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		fmt.Fprintf(w, "\nThe request timed out after %s.\n", cfg.RequestTimeout)
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		fmt.Fprintf(w, "\nThe backend does not know app %q. Check app_name or --app.\n", cfg.AppName)
	case errors.As(err, &transportErr):
		fmt.Fprintf(w, "\nNothing answered at %s. Is the agent server running?\n", cfg.BaseURL)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
}

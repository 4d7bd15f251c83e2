package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/iksnae/adk-chat/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	baseURL    string
	appName    string
	userID     string
	dataDir    string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command; without a subcommand it opens the chat UI
var rootCmd = &cobra.Command{
	Use:   "adk-chat",
	Short: "Chat with agents served over an ADK-style HTTP API",
	Long: `A terminal client for agents served over an ADK-style HTTP API.

adk-chat creates sessions, sends messages and browses conversation history
for one agent application, either interactively or one command at a time.

Features:
  • Interactive chat with a session sidebar, search, rename and delete
  • Markdown rendering of agent replies, including tool activity
  • One-shot commands for scripting (list, new, send, show)
  • Export of conversations (JSONL, Markdown, YAML, JSON)
  • Locally remembered session titles and an offline transcript cache

Quick Start:
  adk-chat --app my_agent                 # Open the chat UI
  adk-chat list --app my_agent            # List sessions
  adk-chat send --app my_agent "Hello"    # Send one message

Settings are read from ~/.adk-chat/config.yaml (or config.toml), then from
ADK_CHAT_BASE_URL, ADK_CHAT_APP, ADK_CHAT_USER and ADK_CHAT_DATA_DIR, then
from flags.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	Args: cobra.NoArgs,
	RunE: runChat,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Agent API base URL (default http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&appName, "app", "", "Agent application name")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User id sessions belong to (default \"user\")")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for titles, cache and logs (default ~/.adk-chat)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// resolveConfig merges settings from file, environment and flags, in that order
func resolveConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return internal.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if appName != "" {
		cfg.AppName = appName
	}
	if userID != "" {
		cfg.UserID = userID
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// loadConfig resolves settings that must be able to reach a backend
func loadConfig() (internal.Config, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return internal.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return internal.Config{}, err
	}
	return cfg, nil
}

// session bundles what every command needs to talk to the backend
type session struct {
	cfg     internal.Config
	client  *internal.Client
	history *historyBackend
	ctrl    *internal.Controller
	titles  *internal.TitleStore
}

// historyBackend behaves like the client but remembers why the last history
// fetch failed, so callers can tell an empty session from a failed load
type historyBackend struct {
	*internal.Client
	err error
}

func (h *historyBackend) GetHistory(ctx context.Context, userID, sessionID string) []internal.Message {
	messages, err := h.FetchHistory(ctx, userID, sessionID)
	h.err = err
	if err != nil {
		internal.LogWarn("Failed to load history for %s: %v", sessionID, err)
		return []internal.Message{}
	}
	return messages
}

// openSession builds the client and controller for cfg. One-shot commands
// honour the configured request timeout; the chat UI never times out.
func openSession(cfg internal.Config, withTimeout bool) (*session, error) {
	httpClient := &http.Client{}
	if withTimeout {
		timeout, err := cfg.Timeout()
		if err != nil {
			return nil, err
		}
		httpClient.Timeout = timeout
	}

	client := internal.NewClient(cfg.BaseURL, cfg.AppName,
		internal.WithHTTPClient(httpClient),
		internal.WithCapabilities(cfg.Capabilities),
	)
	s := &session{cfg: cfg, client: client, history: &historyBackend{Client: client}}

	var backend internal.Backend = s.history
	var opts []internal.ControllerOption
	titles, err := internal.OpenTitleStore(cfg.TitlesDBPath(), cfg.AppName)
	if err != nil {
		internal.LogWarn("Session titles will not be remembered: %v", err)
	} else {
		titled := internal.NewTitledBackend(s.history, titles, cfg.Capabilities)
		backend = titled
		opts = append(opts, internal.WithTitleRecorder(titled))
		s.titles = titles
	}

	s.ctrl = internal.NewController(backend, cfg.UserID, opts...)
	return s, nil
}

func (s *session) Close() {
	if s.titles == nil {
		return
	}
	if err := s.titles.Close(); err != nil {
		internal.LogWarn("Failed to close title store: %v", err)
	}
}

// cacheMetadata describes the backend transcripts were fetched from
func (s *session) cacheMetadata() internal.CacheMetadata {
	return internal.CacheMetadata{
		BaseURL: s.cfg.BaseURL,
		AppName: s.cfg.AppName,
		UserID:  s.cfg.UserID,
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/adk-chat/internal"
	"github.com/iksnae/adk-chat/internal/tui"
	"github.com/spf13/cobra"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat (default)",
	Long: `Open the interactive chat UI.

The sidebar lists your sessions with the newest first. Start typing to send a
message; a session is created on the first message when none is open.

Keys:
  enter        send message (ctrl+j for a newline)
  tab          switch between chat and sidebar
  ctrl+n       new chat
  ctrl+y       copy the last reply
  /  r  d      search, rename, delete (sidebar)
  ctrl+c       quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// logs would corrupt the screen; send them to a file for the session
	logFile, err := openLogFile(cfg.LogPath())
	if err != nil {
		internal.LogWarn("Logging disabled: %v", err)
		internal.SetLogOutput(io.Discard, false)
	} else {
		defer func() { _ = logFile.Close() }()
		internal.SetLogOutput(logFile, false)
	}
	defer internal.SetLogOutput(os.Stderr, true)

	s, err := openSession(cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	internal.LogInfo("Starting chat for app %s as %s", cfg.AppName, cfg.UserID)
	return tui.Run(cmd.Context(), s.ctrl, tui.WithAppName(cfg.AppName))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &internal.StorageError{Path: path, Op: "mkdir", Err: err}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

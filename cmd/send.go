package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/adk-chat/internal"
	"github.com/spf13/cobra"
)

var sendSessionID string

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [--session <session-id>] <message>",
	Short: "Send a message and print the reply",
	Long: `Send one message and print the agent's reply.

Without --session a new session is created first; its id is printed after
the reply so the conversation can be continued.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return internal.ErrEmptyMessage
		}

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
		if sendSessionID != "" {
			err := internal.ShowProgress(ctx, "Opening session", func() error {
				s.ctrl.Bootstrap(ctx)
				return s.ctrl.SelectSession(ctx, sendSessionID)
			})
			if err != nil {
				return err
			}
		}

		err = internal.ShowProgress(ctx, "Waiting for reply", func() error {
			return s.ctrl.SendMessage(ctx, text)
		})
		if err != nil {
			return err
		}

		view := s.ctrl.View()
		out := cmd.OutOrStdout()
		if n := len(view.Messages); n > 0 {
			displayMessage(out, n, view.Messages[n-1], 0)
		}
		fmt.Fprintln(out, idStyle.Render("session: "+view.CurrentSessionID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendSessionID, "session", "s", "", "Continue an existing session")
}

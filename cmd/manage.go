package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/adk-chat/internal"
	"github.com/spf13/cobra"
)

// renameCmd represents the rename command
var renameCmd = &cobra.Command{
	Use:   "rename <session-id> <title>",
	Short: "Rename a session",
	Long: `Rename a session.

The agent API has no rename endpoint: titles are kept in the local title
store when capabilities.rename is enabled in the config.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, title := args[0], strings.TrimSpace(strings.Join(args[1:], " "))

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
		err = internal.ShowProgress(ctx, "Renaming session", func() error {
			s.ctrl.Bootstrap(ctx)
			return s.ctrl.RenameSession(ctx, id, title)
		})
		if err != nil {
			return err
		}

		if !cfg.Capabilities.Rename || s.titles == nil {
			internal.PrintWarning("Rename is not enabled (capabilities.rename); the title will not be kept")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", id, title)
		return nil
	},
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Long: `Delete a session.

The DELETE request is only sent when capabilities.delete is enabled in the
config; otherwise only the locally stored title is dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

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
		err = internal.ShowProgress(ctx, "Deleting session", func() error {
			return s.ctrl.DeleteSession(ctx, id)
		})
		if err != nil {
			return err
		}

		if !cfg.Capabilities.Delete {
			internal.PrintWarning("Delete is not enabled (capabilities.delete); the session remains on the backend")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
}

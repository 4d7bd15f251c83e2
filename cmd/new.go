package cmd

import (
	"fmt"

	"github.com/iksnae/adk-chat/internal"
	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a session and print its id",
	Args:  cobra.NoArgs,
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
		var created internal.Session
		err = internal.ShowProgress(ctx, "Creating session", func() error {
			var createErr error
			created, createErr = s.ctrl.CreateSession(ctx)
			return createErr
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/ui"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the task directory with git",
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")

		mc, err := openMission()
		if err != nil {
			return err
		}
		used, ok, err := mc.Commit(message)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("commit failed (no repository, no changes, or git unavailable)")
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"committed": true, "message": used})
			return nil
		}
		fmt.Printf("%s Committed: %s\n", ui.RenderPass("✓"), used)
		return nil
	},
}

func init() {
	commitCmd.Flags().StringP("message", "m", "", "Commit message (auto-generated when empty)")
	rootCmd.AddCommand(commitCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/types"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Update a task's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		setStatus, _ := cmd.Flags().GetString("set-status")
		noArchive, _ := cmd.Flags().GetBool("no-archive")

		status := types.Status(setStatus)
		if !status.IsValid() {
			return fmt.Errorf("invalid status %q (must be todo, in_progress, blocked, or done)", setStatus)
		}

		mc, err := openMission()
		if err != nil {
			return err
		}
		task, err := mc.UpdateTaskStatus(id, status, !noArchive)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(task)
			return nil
		}
		fmt.Printf("%s %s → %s\n", ui.RenderPass("✓"), ui.RenderID(task.ID), ui.RenderStatus(task.Status))

		if status == types.StatusDone {
			ready, err := mc.ListReadyWork()
			if err != nil {
				return err
			}
			if len(ready) > 0 {
				fmt.Printf("\n%s Ready now:\n", ui.RenderAccent("📋"))
				for _, r := range ready {
					fmt.Printf("  [%s] %s: %s\n", ui.RenderPriority(r.Priority), ui.RenderID(r.ID), r.Title)
				}
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("id", "", "Task id (required)")
	statusCmd.Flags().String("set-status", "", "New status: todo, in_progress, blocked, done (required)")
	statusCmd.Flags().Bool("no-archive", false, "Keep a completed leaf task in the active set")
	_ = statusCmd.MarkFlagRequired("id")
	_ = statusCmd.MarkFlagRequired("set-status")
	rootCmd.AddCommand(statusCmd)
}

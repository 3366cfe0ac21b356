package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/types"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Show ready work (todo tasks with all dependencies done)",
	Long: `Show tasks that can be started right now: status todo, with every
dependency existing and done. Highest priority first; oldest first among
equals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		mc, err := openMission()
		if err != nil {
			return err
		}
		ready, err := mc.ListReadyWork()
		if err != nil {
			return err
		}
		if limit > 0 && len(ready) > limit {
			ready = ready[:limit]
		}

		if jsonOutput {
			if ready == nil {
				ready = []*types.Task{}
			}
			outputJSON(ready)
			return nil
		}
		if len(ready) == 0 {
			blocked, err := mc.ListBlocked()
			if err != nil {
				return err
			}
			if len(blocked) > 0 {
				fmt.Printf("\n%s No ready work (all %d open tasks have unresolved dependencies)\n\n",
					ui.RenderWarn("✨"), len(blocked))
			} else {
				fmt.Printf("\n%s No open tasks\n\n", ui.RenderPass("✨"))
			}
			return nil
		}
		fmt.Printf("\n%s Ready work (%d tasks with no blockers):\n\n", ui.RenderAccent("📋"), len(ready))
		for i, t := range ready {
			fmt.Printf("%d. [%s] %s: %s\n", i+1,
				ui.RenderPriority(t.Priority), ui.RenderID(t.ID), t.Title)
			if t.Description != "" {
				fmt.Printf("   %s\n", ui.RenderMuted(t.Description))
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	readyCmd.Flags().IntP("limit", "n", 0, "Maximum tasks to show (0 = all)")
	rootCmd.AddCommand(readyCmd)
}

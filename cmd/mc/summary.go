package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/types"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show an aggregate view of the mission",
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := openMission()
		if err != nil {
			return err
		}
		summary, err := mc.Summarize()
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(summary)
			return nil
		}

		fmt.Printf("\n%s Mission summary — %s\n\n", ui.RenderAccent("🗂"), ui.RenderMuted(summary.TaskDir))
		fmt.Printf("  Total tasks: %d\n", summary.TotalTasks)
		for _, s := range types.Statuses() {
			fmt.Printf("    %-12s %d\n", ui.RenderStatus(s), summary.ByStatus[string(s)])
		}
		fmt.Printf("  Ready: %d\n", summary.ReadyCount)
		for _, r := range summary.ReadyTasks {
			fmt.Printf("    [%s] %s: %s\n", ui.RenderPriority(r.Priority), ui.RenderID(r.ID), r.Title)
		}
		if summary.IsConsistent {
			fmt.Printf("  %s graph consistent\n\n", ui.RenderPass("✓"))
		} else {
			fmt.Printf("  %s %d consistency problem(s)\n", ui.RenderFail("✗"), len(summary.ConsistencyErrors))
			for _, e := range summary.ConsistencyErrors {
				fmt.Printf("    - %s\n", e)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

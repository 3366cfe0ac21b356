package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/types"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		statusStr, _ := cmd.Flags().GetString("status")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		var status *types.Status
		if statusStr != "" {
			s := types.Status(statusStr)
			if !s.IsValid() {
				return fmt.Errorf("invalid status %q (must be todo, in_progress, blocked, or done)", statusStr)
			}
			status = &s
		}

		mc, err := openMission()
		if err != nil {
			return err
		}
		tasks, err := mc.ListTasks(status, tags)
		if err != nil {
			return err
		}

		if jsonOutput {
			if tasks == nil {
				tasks = []*types.Task{}
			}
			outputJSON(tasks)
			return nil
		}
		if len(tasks) == 0 {
			fmt.Printf("\n%s No tasks\n\n", ui.RenderPass("✨"))
			return nil
		}
		fmt.Printf("\n%s Tasks (%d):\n\n", ui.RenderAccent("📋"), len(tasks))
		for _, t := range tasks {
			fmt.Printf("[%s] [%s] %s: %s\n",
				ui.RenderPriority(t.Priority), ui.RenderStatus(t.Status), ui.RenderID(t.ID), t.Title)
			if len(t.DependsOn) > 0 {
				fmt.Printf("  %s %v\n", ui.RenderMuted("depends on:"), t.DependsOn)
			}
			if len(t.Tags) > 0 {
				fmt.Printf("  %s %v\n", ui.RenderMuted("tags:"), t.Tags)
			}
		}
		fmt.Println()
		return nil
	},
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "Show tasks waiting on unresolved dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := openMission()
		if err != nil {
			return err
		}
		blocked, err := mc.ListBlocked()
		if err != nil {
			return err
		}

		if jsonOutput {
			type entry struct {
				Task     *types.Task `json:"task"`
				Blockers []string    `json:"blockers"`
			}
			out := []entry{}
			for _, b := range blocked {
				out = append(out, entry{Task: b.Task, Blockers: b.Blockers})
			}
			outputJSON(out)
			return nil
		}
		if len(blocked) == 0 {
			fmt.Printf("\n%s No blocked tasks\n\n", ui.RenderPass("✨"))
			return nil
		}
		fmt.Printf("\n%s Blocked tasks (%d):\n\n", ui.RenderFail("🚫"), len(blocked))
		for _, b := range blocked {
			fmt.Printf("[%s] %s: %s\n",
				ui.RenderPriority(b.Task.Priority), ui.RenderID(b.Task.ID), b.Task.Title)
			fmt.Printf("  waiting on: %v\n", b.Blockers)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status (todo, in_progress, blocked, done)")
	listCmd.Flags().StringSlice("tag", []string{}, "Filter by tags (matches any)")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(blockedCmd)
}

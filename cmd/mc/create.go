package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/mission"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		depends, _ := cmd.Flags().GetStringSlice("depends")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		params := mission.CreateParams{
			Title:       title,
			Description: description,
			DependsOn:   depends,
			Tags:        tags,
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetInt("priority")
			params.Priority = &priority
		}

		mc, err := openMission()
		if err != nil {
			return err
		}
		task, err := mc.CreateTask(params)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(task)
			return nil
		}
		fmt.Printf("%s Created %s: %s [%s]\n",
			ui.RenderPass("✓"), ui.RenderID(task.ID), task.Title, ui.RenderPriority(task.Priority))
		if len(task.DependsOn) > 0 {
			fmt.Printf("  depends on: %v\n", task.DependsOn)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("title", "t", "", "Task title (required)")
	createCmd.Flags().StringP("description", "d", "", "Longer description")
	createCmd.Flags().StringSlice("depends", []string{}, "Comma-separated ids this task depends on")
	createCmd.Flags().StringSlice("tag", []string{}, "Tags to attach")
	createCmd.Flags().IntP("priority", "p", 5, "Priority 1-10 (higher is more urgent)")
	_ = createCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(createCmd)
}

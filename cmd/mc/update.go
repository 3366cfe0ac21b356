package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/mission"
	"github.com/MikeyBeez/mission-control/internal/types"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update task fields (omitted flags leave fields untouched)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		var patch mission.UpdatePatch

		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			patch.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			patch.Description = &description
		}
		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			status := types.Status(statusStr)
			patch.Status = &status
		}
		if cmd.Flags().Changed("depends") {
			depends, _ := cmd.Flags().GetStringSlice("depends")
			patch.DependsOn = depends
		}
		if cmd.Flags().Changed("tag") {
			tags, _ := cmd.Flags().GetStringSlice("tag")
			patch.Tags = tags
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetInt("priority")
			patch.Priority = &priority
		}

		mc, err := openMission()
		if err != nil {
			return err
		}
		task, err := mc.UpdateTask(id, patch)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(task)
			return nil
		}
		fmt.Printf("%s Updated %s: %s [%s] [%s]\n", ui.RenderPass("✓"),
			ui.RenderID(task.ID), task.Title, ui.RenderStatus(task.Status), ui.RenderPriority(task.Priority))
		return nil
	},
}

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().String("description", "", "New description")
	updateCmd.Flags().String("status", "", "New status")
	updateCmd.Flags().StringSlice("depends", []string{}, "Replace the dependency list")
	updateCmd.Flags().StringSlice("tag", []string{}, "Replace the tag list")
	updateCmd.Flags().IntP("priority", "p", 5, "New priority 1-10")
	rootCmd.AddCommand(updateCmd)
}

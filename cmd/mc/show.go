package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/types"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task, optionally with its dependency chain and impact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		withChain, _ := cmd.Flags().GetBool("chain")
		withImpact, _ := cmd.Flags().GetBool("impact")

		mc, err := openMission()
		if err != nil {
			return err
		}
		task, err := mc.GetTask(id)
		if err != nil {
			return err
		}

		var chain, impact []*types.Task
		if withChain {
			if chain, err = mc.TaskChain(id); err != nil {
				return err
			}
		}
		if withImpact {
			if impact, err = mc.TaskImpact(id); err != nil {
				return err
			}
		}

		if jsonOutput {
			out := map[string]interface{}{"task": task}
			if withChain {
				out["dependency_chain"] = chain
			}
			if withImpact {
				out["dependent_tasks"] = impact
			}
			outputJSON(out)
			return nil
		}

		fmt.Printf("\n%s %s [%s] [%s]\n", ui.RenderID(task.ID), task.Title,
			ui.RenderStatus(task.Status), ui.RenderPriority(task.Priority))
		if task.Description != "" {
			fmt.Printf("  %s\n", task.Description)
		}
		if len(task.DependsOn) > 0 {
			fmt.Printf("  %s %v\n", ui.RenderMuted("depends on:"), task.DependsOn)
		}
		if len(task.Tags) > 0 {
			fmt.Printf("  %s %v\n", ui.RenderMuted("tags:"), task.Tags)
		}
		fmt.Printf("  %s %s @ %s, created %s\n", ui.RenderMuted("git:"),
			task.Metadata.Branch, task.Metadata.CommitHash, task.Metadata.CreatedAt)

		if withChain {
			fmt.Printf("\n%s Chain (dependencies first):\n", ui.RenderAccent("🔗"))
			for i, t := range chain {
				fmt.Printf("  %d. %s [%s] %s\n", i+1, ui.RenderID(t.ID), ui.RenderStatus(t.Status), t.Title)
			}
		}
		if withImpact {
			if len(impact) == 0 {
				fmt.Printf("\n%s No tasks depend on this one\n", ui.RenderMuted("·"))
			} else {
				fmt.Printf("\n%s Dependents (%d):\n", ui.RenderAccent("⚠"), len(impact))
				for _, t := range impact {
					fmt.Printf("  %s [%s] %s\n", ui.RenderID(t.ID), ui.RenderStatus(t.Status), t.Title)
				}
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("chain", false, "Include the topologically ordered dependency chain")
	showCmd.Flags().Bool("impact", false, "Include tasks that depend on this one")
	rootCmd.AddCommand(showCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task from the active set",
	Long: `Delete a task. Refuses when other tasks still depend on it unless
--force is given; the dependents would silently become unsatisfiable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		force, _ := cmd.Flags().GetBool("force")

		mc, err := openMission()
		if err != nil {
			return err
		}

		if !force {
			dependents, err := mc.TaskImpact(id)
			if err != nil {
				return err
			}
			if len(dependents) > 0 {
				fmt.Printf("%s Task %s has %d dependent task(s):\n", ui.RenderFail("✗"), ui.RenderID(id), len(dependents))
				for _, d := range dependents {
					fmt.Printf("  %s: %s\n", ui.RenderID(d.ID), d.Title)
				}
				return fmt.Errorf("refusing to delete %s (use --force to override)", id)
			}
		}

		deleted, err := mc.DeleteTask(id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("task not found: %s", id)
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"deleted": id})
			return nil
		}
		fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), ui.RenderID(id))
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "Delete even when dependents exist")
	rootCmd.AddCommand(deleteCmd)
}

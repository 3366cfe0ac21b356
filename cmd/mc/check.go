package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the dependency graph is acyclic and fully resolved",
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := openMission()
		if err != nil {
			return err
		}
		ok, errs, err := mc.CheckConsistency()
		if err != nil {
			return err
		}

		if jsonOutput {
			if errs == nil {
				errs = []string{}
			}
			outputJSON(map[string]interface{}{
				"is_consistent": ok,
				"errors":        errs,
			})
			if !ok {
				// Non-zero exit so scripts can gate on consistency
				return fmt.Errorf("%d consistency problem(s)", len(errs))
			}
			return nil
		}
		if ok {
			fmt.Printf("%s Dependency graph is consistent\n", ui.RenderPass("✓"))
			return nil
		}
		fmt.Printf("%s Found %d consistency problem(s):\n", ui.RenderFail("✗"), len(errs))
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
		return fmt.Errorf("%d consistency problem(s)", len(errs))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

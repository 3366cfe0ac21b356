package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeyBeez/mission-control/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.AllSettings()
		if jsonOutput {
			outputJSON(settings)
			return nil
		}
		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("encoding settings: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// Command mc is the mission-control CLI: a git-native task dependency
// engine for agentic development workflows.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/config"
	"github.com/MikeyBeez/mission-control/internal/git"
	"github.com/MikeyBeez/mission-control/internal/mission"
	"github.com/MikeyBeez/mission-control/internal/storage/jsonl"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "mc",
	Short: "Mission control - task dependency tracking for agent workflows",
	Long: `Mission control tracks work items and their must-finish-before
relationships in git-friendly JSONL files, and answers the question that
matters to an agent: what can I work on right now?

Tasks live under .mikey_tasks/ at the repository root (or the current
directory outside a repository).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}
		// Flag wins over config file and environment
		if cmd.Flags().Changed("json") {
			config.Set("json", jsonOutput)
		}
		jsonOutput = config.GetBool("json")
		return nil
	},
}

// openMission builds the engine for the current working directory using the
// configured store options.
func openMission() (*mission.MissionControl, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return openMissionAt(cwd)
}

func openMissionAt(projectPath string) (*mission.MissionControl, error) {
	storeOpts := []jsonl.Option{jsonl.WithVCS(git.New(projectPath, config.GitTimeout()))}
	if config.GetBool("no-lock") {
		storeOpts = append(storeOpts, jsonl.WithoutLock())
	}
	if d := config.GetDuration("lock-timeout"); d > 0 {
		storeOpts = append(storeOpts, jsonl.WithLockTimeout(d))
	}
	return mission.New(projectPath, config.TaskDirName(), storeOpts)
}

// outputJSON prints a value as indented JSON on stdout
func outputJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

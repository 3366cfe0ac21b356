package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/mission"
	"github.com/MikeyBeez/mission-control/internal/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tool server over stdin/stdout",
	Long: `Run the tool-call server: one JSON request per input line, one JSON
response per output line. This is the surface an agent runtime drives.

Request shape:  {"tool": "create_task", "args": {"title": "..."}}
Response shape: {"success": true, ...} or {"success": false, "error": "..."}

Tools: create_task, update_task_status, list_ready_work, list_tasks,
check_consistency, task_summary, get_task, commit_tasks, delete_task.
Each accepts an optional project_path; without one, requests operate on the
repository containing the server's working directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		server := rpc.NewServer(cwd, func(projectPath string) (*mission.MissionControl, error) {
			return openMissionAt(projectPath)
		})
		return server.ServeLines(os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Package rpc implements the tool-call protocol: named tools taking a JSON
// argument object and returning a JSON object with at least a success flag
// and either a result payload or an error string.
package rpc

import "encoding/json"

// Tool name constants
const (
	ToolCreateTask       = "create_task"
	ToolUpdateTaskStatus = "update_task_status"
	ToolListReadyWork    = "list_ready_work"
	ToolListTasks        = "list_tasks"
	ToolCheckConsistency = "check_consistency"
	ToolTaskSummary      = "task_summary"
	ToolGetTask          = "get_task"
	ToolCommitTasks      = "commit_tasks"
	ToolDeleteTask       = "delete_task"
)

// Request is a single tool invocation
type Request struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Result is the response payload. The server guarantees a "success" key;
// handlers fill in the rest.
type Result map[string]interface{}

// CreateTaskArgs are the arguments of create_task
type CreateTaskArgs struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	ProjectPath string   `json:"project_path,omitempty"`
}

// UpdateTaskStatusArgs are the arguments of update_task_status
type UpdateTaskStatusArgs struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	ProjectPath string `json:"project_path,omitempty"`
}

// ListReadyWorkArgs are the arguments of list_ready_work
type ListReadyWorkArgs struct {
	ProjectPath string `json:"project_path,omitempty"`
}

// ListTasksArgs are the arguments of list_tasks
type ListTasksArgs struct {
	Status      string   `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ProjectPath string   `json:"project_path,omitempty"`
}

// CheckConsistencyArgs are the arguments of check_consistency
type CheckConsistencyArgs struct {
	ProjectPath string `json:"project_path,omitempty"`
}

// TaskSummaryArgs are the arguments of task_summary
type TaskSummaryArgs struct {
	ProjectPath string `json:"project_path,omitempty"`
}

// GetTaskArgs are the arguments of get_task
type GetTaskArgs struct {
	TaskID        string `json:"task_id"`
	IncludeChain  bool   `json:"include_chain,omitempty"`
	IncludeImpact bool   `json:"include_impact,omitempty"`
	ProjectPath   string `json:"project_path,omitempty"`
}

// CommitTasksArgs are the arguments of commit_tasks
type CommitTasksArgs struct {
	Message     string `json:"message,omitempty"`
	ProjectPath string `json:"project_path,omitempty"`
}

// DeleteTaskArgs are the arguments of delete_task
type DeleteTaskArgs struct {
	TaskID      string `json:"task_id"`
	ProjectPath string `json:"project_path,omitempty"`
}

// BlockedBrief is the compact blocked-task entry in list_ready_work output
type BlockedBrief struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	BlockedBy []string `json:"blocked_by"`
}

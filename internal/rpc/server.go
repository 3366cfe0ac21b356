package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MikeyBeez/mission-control/internal/debug"
	"github.com/MikeyBeez/mission-control/internal/mission"
	"github.com/MikeyBeez/mission-control/internal/types"
)

// Handler executes one tool against a resolved MissionControl instance
type Handler func(mc *mission.MissionControl, args json.RawMessage) (Result, error)

// NewMissionFunc constructs the engine for a project path. Injectable so
// tests can supply instances with fake clocks and stub VCS adapters.
type NewMissionFunc func(projectPath string) (*mission.MissionControl, error)

// Server dispatches tool requests to handlers. MissionControl instances are
// lazily initialized and cached per project path; requests without a
// project_path use the server's default path (resolved once from the cwd by
// the caller).
type Server struct {
	mu          sync.Mutex
	defaultPath string
	newMission  NewMissionFunc
	controls    map[string]*mission.MissionControl
	handlers    map[string]Handler
}

// NewServer creates a tool server with the canonical tool set registered
func NewServer(defaultPath string, newMission NewMissionFunc) *Server {
	s := &Server{
		defaultPath: defaultPath,
		newMission:  newMission,
		controls:    make(map[string]*mission.MissionControl),
	}
	s.handlers = map[string]Handler{
		ToolCreateTask:       handleCreateTask,
		ToolUpdateTaskStatus: handleUpdateTaskStatus,
		ToolListReadyWork:    handleListReadyWork,
		ToolListTasks:        handleListTasks,
		ToolCheckConsistency: handleCheckConsistency,
		ToolTaskSummary:      handleTaskSummary,
		ToolGetTask:          handleGetTask,
		ToolCommitTasks:      handleCommitTasks,
		ToolDeleteTask:       handleDeleteTask,
	}
	return s
}

// Tools returns the registered tool names
func (s *Server) Tools() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	return names
}

func (s *Server) missionFor(projectPath string) (*mission.MissionControl, error) {
	if projectPath == "" {
		projectPath = s.defaultPath
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if mc, ok := s.controls[projectPath]; ok {
		return mc, nil
	}
	mc, err := s.newMission(projectPath)
	if err != nil {
		return nil, err
	}
	s.controls[projectPath] = mc
	return mc, nil
}

func failure(err error) Result {
	return Result{"success": false, "error": err.Error()}
}

// Handle executes one request. Unknown tools and handler panics both come
// back as success:false results; the server itself never panics outward.
func (s *Server) Handle(req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			debug.Logf("tool %s panicked: %v", req.Tool, r)
			res = failure(fmt.Errorf("%v", r))
		}
	}()

	handler, ok := s.handlers[req.Tool]
	if !ok {
		return failure(fmt.Errorf("Unknown tool: %s", req.Tool))
	}

	// Every tool accepts an optional project_path selecting the repo to
	// operate on.
	var scope struct {
		ProjectPath string `json:"project_path,omitempty"`
	}
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &scope); err != nil {
			return failure(fmt.Errorf("invalid arguments: %v", err))
		}
	}
	mc, err := s.missionFor(scope.ProjectPath)
	if err != nil {
		return failure(err)
	}

	result, err := handler(mc, req.Args)
	if err != nil {
		return failure(err)
	}
	if result == nil {
		result = Result{}
	}
	if _, ok := result["success"]; !ok {
		result["success"] = true
	}
	return result
}

func decode(args json.RawMessage, into interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}

func handleCreateTask(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args CreateTaskArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if args.Title == "" {
		return nil, errors.New("missing required argument: title")
	}
	task, err := mc.CreateTask(mission.CreateParams{
		Title:       args.Title,
		Description: args.Description,
		DependsOn:   args.DependsOn,
		Tags:        args.Tags,
		Priority:    args.Priority,
	})
	if err != nil {
		return nil, err
	}
	return Result{
		"task":    task,
		"message": fmt.Sprintf("Created task %s: %s", task.ID, task.Title),
	}, nil
}

func handleUpdateTaskStatus(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args UpdateTaskStatusArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if args.TaskID == "" {
		return nil, errors.New("missing required argument: task_id")
	}
	status := types.Status(args.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status %q (must be todo, in_progress, blocked, or done)", args.Status)
	}

	task, err := mc.UpdateTaskStatus(args.TaskID, status, true)
	if err != nil {
		return nil, err
	}

	// Tasks ready after the change, excluding the changed task itself.
	// This is the full currently-ready set, not a strict delta.
	ready, err := mc.ListReadyWork()
	if err != nil {
		return nil, err
	}
	newlyReady := []mission.ReadyBrief{}
	for _, r := range ready {
		if r.ID == args.TaskID {
			continue
		}
		if len(newlyReady) == 5 {
			break
		}
		newlyReady = append(newlyReady, mission.ReadyBrief{ID: r.ID, Title: r.Title, Priority: r.Priority})
	}

	message := fmt.Sprintf("Task %s set to %s", task.ID, task.Status)
	if status == types.StatusDone && len(newlyReady) > 0 {
		message = fmt.Sprintf("%s; %d task(s) now ready", message, len(newlyReady))
	}
	return Result{
		"task":        task,
		"newly_ready": newlyReady,
		"message":     message,
	}, nil
}

func handleListReadyWork(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args ListReadyWorkArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	ready, err := mc.ListReadyWork()
	if err != nil {
		return nil, err
	}
	blocked, err := mc.ListBlocked()
	if err != nil {
		return nil, err
	}

	result := Result{
		"count":   len(ready),
		"tasks":   ready,
		"message": fmt.Sprintf("%d task(s) ready to work on", len(ready)),
	}
	if len(blocked) > 0 {
		summary := []BlockedBrief{}
		for i, b := range blocked {
			if i == 5 {
				break
			}
			summary = append(summary, BlockedBrief{ID: b.Task.ID, Title: b.Task.Title, BlockedBy: b.Blockers})
		}
		result["blocked_count"] = len(blocked)
		result["blocked_summary"] = summary
	}
	return result, nil
}

func handleListTasks(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args ListTasksArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	var status *types.Status
	if args.Status != "" {
		s := types.Status(args.Status)
		if !s.IsValid() {
			return nil, fmt.Errorf("invalid status %q (must be todo, in_progress, blocked, or done)", args.Status)
		}
		status = &s
	}
	tasks, err := mc.ListTasks(status, args.Tags)
	if err != nil {
		return nil, err
	}

	filters := map[string]interface{}{}
	if args.Status != "" {
		filters["status"] = args.Status
	}
	if len(args.Tags) > 0 {
		filters["tags"] = args.Tags
	}
	return Result{
		"count":           len(tasks),
		"tasks":           tasks,
		"filters_applied": filters,
	}, nil
}

func handleCheckConsistency(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args CheckConsistencyArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	ok, errs, err := mc.CheckConsistency()
	if err != nil {
		return nil, err
	}
	if errs == nil {
		errs = []string{}
	}
	message := "Dependency graph is consistent"
	if !ok {
		message = fmt.Sprintf("Found %d consistency problem(s)", len(errs))
	}
	return Result{
		"is_consistent": ok,
		"errors":        errs,
		"message":       message,
	}, nil
}

func handleTaskSummary(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args TaskSummaryArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	summary, err := mc.Summarize()
	if err != nil {
		return nil, err
	}
	return Result{
		"total_tasks":        summary.TotalTasks,
		"by_status":          summary.ByStatus,
		"ready_count":        summary.ReadyCount,
		"ready_tasks":        summary.ReadyTasks,
		"is_consistent":      summary.IsConsistent,
		"consistency_errors": summary.ConsistencyErrors,
		"task_dir":           summary.TaskDir,
	}, nil
}

func handleGetTask(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args GetTaskArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if args.TaskID == "" {
		return nil, errors.New("missing required argument: task_id")
	}
	task, err := mc.GetTask(args.TaskID)
	if err != nil {
		return nil, err
	}
	result := Result{"task": task}
	if args.IncludeChain {
		chain, err := mc.TaskChain(args.TaskID)
		if err != nil {
			return nil, err
		}
		result["dependency_chain"] = chain
	}
	if args.IncludeImpact {
		impact, err := mc.TaskImpact(args.TaskID)
		if err != nil {
			return nil, err
		}
		result["dependent_tasks"] = impact
	}
	return result, nil
}

func handleCommitTasks(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args CommitTasksArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	message, ok, err := mc.Commit(args.Message)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Result{
			"success": false,
			"message": "Commit failed (no repository, no changes, or git unavailable)",
		}, nil
	}
	return Result{"message": fmt.Sprintf("Committed: %s", message)}, nil
}

func handleDeleteTask(mc *mission.MissionControl, raw json.RawMessage) (Result, error) {
	var args DeleteTaskArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if args.TaskID == "" {
		return nil, errors.New("missing required argument: task_id")
	}

	// Guard against orphaning dependents at the protocol layer; the engine
	// itself deletes unconditionally.
	dependents, err := mc.TaskImpact(args.TaskID)
	if err != nil {
		return nil, err
	}
	if len(dependents) > 0 {
		ids := make([]string, len(dependents))
		for i, d := range dependents {
			ids[i] = d.ID
		}
		return Result{
			"success":         false,
			"error":           fmt.Sprintf("Task %s has %d dependent task(s)", args.TaskID, len(ids)),
			"dependent_tasks": ids,
		}, nil
	}

	deleted, err := mc.DeleteTask(args.TaskID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, fmt.Errorf("task not found: %s", args.TaskID)
	}
	return Result{"message": fmt.Sprintf("Deleted task %s", args.TaskID)}, nil
}

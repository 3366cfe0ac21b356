// Package mission composes the task store and the dependency graph into the
// public engine surface: creation, mutation, readiness, consistency, and
// summaries, with auto-archiving of completed leaf tasks.
package mission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MikeyBeez/mission-control/internal/graph"
	"github.com/MikeyBeez/mission-control/internal/storage/jsonl"
	"github.com/MikeyBeez/mission-control/internal/types"
)

// ErrNotFound aliases the store's not-found sentinel for callers of this
// package.
var ErrNotFound = jsonl.ErrNotFound

// ErrValidation marks bad input surfaced at the operation boundary
var ErrValidation = errors.New("validation failed")

// MissionControl is the engine facade. One instance per task directory;
// operations are atomic read-compute-rewrite units.
type MissionControl struct {
	store *jsonl.Store
	clock types.Clock
}

// Option configures a MissionControl
type Option func(*MissionControl)

// WithClock injects the timestamp source used for generated ids and
// metadata. The same clock is handed to the store.
func WithClock(c types.Clock) Option {
	return func(mc *MissionControl) { mc.clock = c }
}

// New opens (creating if necessary) the task directory for projectPath and
// returns the engine over it.
func New(projectPath, dirName string, storeOpts []jsonl.Option, opts ...Option) (*MissionControl, error) {
	mc := &MissionControl{clock: types.SystemClock{}}
	for _, opt := range opts {
		opt(mc)
	}
	storeOpts = append([]jsonl.Option{jsonl.WithClock(mc.clock)}, storeOpts...)
	store, err := jsonl.Open(projectPath, dirName, storeOpts...)
	if err != nil {
		return nil, err
	}
	mc.store = store
	return mc, nil
}

// TaskDir returns the absolute path of the task directory
func (mc *MissionControl) TaskDir() string { return mc.store.Dir() }

// Store exposes the underlying store (e.g. to read the archive log)
func (mc *MissionControl) Store() *jsonl.Store { return mc.store }

func (mc *MissionControl) snapshot() (*graph.Snapshot, error) {
	tasks, err := mc.store.LoadAll()
	if err != nil {
		return nil, err
	}
	return graph.Build(tasks), nil
}

// CreateParams carries the inputs of CreateTask. Zero values mean "use the
// default" (empty description, no deps, no tags, priority 5, generated id).
type CreateParams struct {
	ID          string
	Title       string
	Description string
	DependsOn   []string
	Tags        []string
	Priority    *int
}

// CreateTask validates the inputs, generates an id when none is given, and
// persists the new task. Dependencies on unknown ids are accepted; they are
// a consistency concern, not a creation failure.
func (mc *MissionControl) CreateTask(p CreateParams) (*types.Task, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	priority := types.DefaultPriority
	if p.Priority != nil {
		priority = *p.Priority
	}
	if priority < types.MinPriority || priority > types.MaxPriority {
		return nil, fmt.Errorf("%w: priority %d out of range [%d, %d]",
			ErrValidation, priority, types.MinPriority, types.MaxPriority)
	}

	id := p.ID
	if id == "" {
		id = types.GenerateID(p.Title, mc.clock.Now())
	}
	if existing, err := mc.store.Get(id); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: task id %s already exists", ErrValidation, id)
	}

	task := &types.Task{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		Status:      types.StatusTodo,
		DependsOn:   append([]string{}, p.DependsOn...),
		BlockedBy:   []string{},
		Tags:        append([]string{}, p.Tags...),
		Priority:    priority,
	}
	if err := mc.store.Save(task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns the active task with the given id
func (mc *MissionControl) GetTask(id string) (*types.Task, error) {
	return mc.store.Get(id)
}

// ListTasks returns active tasks in file order, optionally filtered by
// status and by tag intersection (a task matches when it carries at least one
// of the requested tags).
func (mc *MissionControl) ListTasks(status *types.Status, tags []string) ([]*types.Task, error) {
	tasks, err := mc.store.LoadAll()
	if err != nil {
		return nil, err
	}
	if status == nil && len(tags) == 0 {
		return tasks, nil
	}
	filtered := []*types.Task{}
	for _, t := range tasks {
		if status != nil && t.Status != *status {
			continue
		}
		if len(tags) > 0 {
			match := false
			for _, tag := range tags {
				if t.HasTag(tag) {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

// UpdatePatch is a partial update; nil fields are untouched
type UpdatePatch struct {
	Title       *string
	Description *string
	Status      *types.Status
	DependsOn   []string // nil means untouched; empty slice clears
	Tags        []string // nil means untouched; empty slice clears
	Priority    *int
}

// UpdateTask applies a partial update and persists. Validation failures leave
// the stored record unchanged.
func (mc *MissionControl) UpdateTask(id string, patch UpdatePatch) (*types.Task, error) {
	task, err := mc.store.Get(id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *patch.Status)
		}
		task.Status = *patch.Status
	}
	if patch.DependsOn != nil {
		task.DependsOn = append([]string{}, patch.DependsOn...)
	}
	if patch.Tags != nil {
		task.Tags = append([]string{}, patch.Tags...)
	}
	if patch.Priority != nil {
		if *patch.Priority < types.MinPriority || *patch.Priority > types.MaxPriority {
			return nil, fmt.Errorf("%w: priority %d out of range [%d, %d]",
				ErrValidation, *patch.Priority, types.MinPriority, types.MaxPriority)
		}
		task.Priority = *patch.Priority
	}
	if err := mc.store.Save(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskStatus sets the status and persists. When autoArchive is true
// and the new status is done and no active task depends on this one, the
// task is moved to the archive — dependents keep a done task active so their
// readiness can still be computed against it.
func (mc *MissionControl) UpdateTaskStatus(id string, status types.Status, autoArchive bool) (*types.Task, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	task, err := mc.store.Get(id)
	if err != nil {
		return nil, err
	}
	task.Status = status
	if err := mc.store.Save(task); err != nil {
		return nil, err
	}

	if autoArchive && status == types.StatusDone {
		snap, err := mc.snapshot()
		if err != nil {
			return nil, err
		}
		if len(snap.Dependents(id)) == 0 {
			if _, err := mc.store.Archive(id); err != nil {
				return nil, err
			}
		}
	}
	return task, nil
}

// DeleteTask removes the task from the active set unconditionally. Callers
// that need to protect dependents consult TaskImpact first (the tool layer
// does).
func (mc *MissionControl) DeleteTask(id string) (bool, error) {
	return mc.store.Delete(id)
}

// ListReadyWork returns the ready queue: todo tasks whose every dependency
// exists and is done, priority descending then oldest first.
func (mc *MissionControl) ListReadyWork() ([]*types.Task, error) {
	snap, err := mc.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Ready(), nil
}

// ListBlocked returns todo tasks with unresolved dependencies
func (mc *MissionControl) ListBlocked() ([]graph.BlockedTask, error) {
	snap, err := mc.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Blocked(), nil
}

// CheckConsistency reports cycles and dangling references in the active set
func (mc *MissionControl) CheckConsistency() (bool, []string, error) {
	snap, err := mc.snapshot()
	if err != nil {
		return false, nil, err
	}
	ok, errs := snap.CheckConsistency()
	return ok, errs, nil
}

// TaskChain returns the dependency chain of a task in topological order,
// the task itself last.
func (mc *MissionControl) TaskChain(id string) ([]*types.Task, error) {
	snap, err := mc.snapshot()
	if err != nil {
		return nil, err
	}
	if snap.Get(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap.Chain(id), nil
}

// TaskImpact returns the direct dependents of a task
func (mc *MissionControl) TaskImpact(id string) ([]*types.Task, error) {
	snap, err := mc.snapshot()
	if err != nil {
		return nil, err
	}
	if snap.Get(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap.Dependents(id), nil
}

// Commit records the task directory with the version-control tool. An empty
// message is replaced by an auto-generated one. Returns the message used and
// whether the commit succeeded.
func (mc *MissionControl) Commit(message string) (string, bool, error) {
	if message == "" {
		tasks, err := mc.store.LoadAll()
		if err != nil {
			return "", false, err
		}
		snap := graph.Build(tasks)
		done := 0
		for _, t := range tasks {
			if t.Status == types.StatusDone {
				done++
			}
		}
		message = fmt.Sprintf("Mission control: %d tasks (%d ready, %d done)",
			len(tasks), len(snap.Ready()), done)
	}
	return message, mc.store.Commit(message), nil
}

// ReadyBrief is the compact ready-task entry embedded in summaries
type ReadyBrief struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

// Summary aggregates the state of the mission
type Summary struct {
	TotalTasks        int            `json:"total_tasks"`
	ByStatus          map[string]int `json:"by_status"`
	ReadyCount        int            `json:"ready_count"`
	ReadyTasks        []ReadyBrief   `json:"ready_tasks"`
	IsConsistent      bool           `json:"is_consistent"`
	ConsistencyErrors []string       `json:"consistency_errors"`
	TaskDir           string         `json:"task_dir"`
}

// Summarize builds the aggregate summary of the active set
func (mc *MissionControl) Summarize() (*Summary, error) {
	tasks, err := mc.store.LoadAll()
	if err != nil {
		return nil, err
	}
	snap := graph.Build(tasks)

	byStatus := make(map[string]int, len(types.Statuses()))
	for _, s := range types.Statuses() {
		byStatus[string(s)] = 0
	}
	for _, t := range tasks {
		byStatus[string(t.Status)]++
	}

	ready := snap.Ready()
	briefs := []ReadyBrief{}
	for i, t := range ready {
		if i == 5 {
			break
		}
		briefs = append(briefs, ReadyBrief{ID: t.ID, Title: t.Title, Priority: t.Priority})
	}

	ok, errs := snap.CheckConsistency()
	if errs == nil {
		errs = []string{}
	}
	return &Summary{
		TotalTasks:        len(tasks),
		ByStatus:          byStatus,
		ReadyCount:        len(ready),
		ReadyTasks:        briefs,
		IsConsistent:      ok,
		ConsistencyErrors: errs,
		TaskDir:           mc.store.Dir(),
	}, nil
}

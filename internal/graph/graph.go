// Package graph provides the in-memory dependency view over the active task
// set: readiness, blocked reporting, cycle detection, topological chains, and
// impact. A Snapshot is built per operation and holds no state between calls;
// correctness depends only on the task list it was built from.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MikeyBeez/mission-control/internal/types"
)

// Snapshot is a point-in-time view of the active set
type Snapshot struct {
	order []*types.Task          // file order, preserved for deterministic traversal
	tasks map[string]*types.Task // id -> task
}

// Build constructs a snapshot from the active tasks. The input slice is not
// mutated; result tasks are clones.
func Build(active []*types.Task) *Snapshot {
	s := &Snapshot{
		order: make([]*types.Task, 0, len(active)),
		tasks: make(map[string]*types.Task, len(active)),
	}
	for _, t := range active {
		c := t.Clone()
		s.order = append(s.order, c)
		s.tasks[c.ID] = c
	}
	return s
}

// Get returns the snapshot's copy of a task, or nil
func (s *Snapshot) Get(id string) *types.Task {
	return s.tasks[id]
}

// unresolved returns the ids in depends_on (original order, deduplicated)
// whose referent is missing from the active set or not done.
func (s *Snapshot) unresolved(t *types.Task) []string {
	var blockers []string
	seen := make(map[string]bool)
	for _, dep := range t.DependsOn {
		if seen[dep] {
			continue
		}
		seen[dep] = true
		ref, ok := s.tasks[dep]
		if !ok || ref.Status != types.StatusDone {
			blockers = append(blockers, dep)
		}
	}
	return blockers
}

// Ready returns the tasks that can be worked on right now: status todo with
// every dependency existing and done. Ordering is priority descending, then
// creation timestamp ascending. Returned tasks carry an empty blocked_by.
func (s *Snapshot) Ready() []*types.Task {
	var ready []*types.Task
	for _, t := range s.order {
		if t.Status != types.StatusTodo {
			continue
		}
		if len(s.unresolved(t)) > 0 {
			continue
		}
		c := t.Clone()
		c.BlockedBy = []string{}
		ready = append(ready, c)
	}
	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].Priority != ready[j].Priority {
			return ready[i].Priority > ready[j].Priority
		}
		return ready[i].Metadata.CreatedAt < ready[j].Metadata.CreatedAt
	})
	return ready
}

// BlockedTask pairs a todo task with its unresolved dependency ids
type BlockedTask struct {
	Task     *types.Task
	Blockers []string
}

// Blocked returns every todo task with at least one unresolved dependency,
// blockers in original depends_on order. The returned task copies have
// blocked_by populated.
func (s *Snapshot) Blocked() []BlockedTask {
	var blocked []BlockedTask
	for _, t := range s.order {
		if t.Status != types.StatusTodo {
			continue
		}
		blockers := s.unresolved(t)
		if len(blockers) == 0 {
			continue
		}
		c := t.Clone()
		c.BlockedBy = append([]string(nil), blockers...)
		blocked = append(blocked, BlockedTask{Task: c, Blockers: blockers})
	}
	return blocked
}

// DFS colors for cycle detection
type color uint8

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // fully explored
)

// CheckConsistency verifies that the active-set graph is a DAG and that
// every depends_on reference resolves. ok is true iff errors is empty.
//
// Cycles are found with a three-color DFS; a gray neighbor is a back-edge and
// the cycle path is the DFS stack sliced from the first occurrence of the
// back-edge target. Dangling references are reported separately after the
// cycle walk.
func (s *Snapshot) CheckConsistency() (bool, []string) {
	var errs []string

	colors := make(map[string]color, len(s.tasks))
	reported := make(map[string]bool) // canonical cycle key -> already reported
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		colors[id] = gray
		stack = append(stack, id)

		t := s.tasks[id]
		seen := make(map[string]bool)
		for _, dep := range t.DependsOn {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if _, ok := s.tasks[dep]; !ok {
				continue // dangling refs handled below
			}
			switch colors[dep] {
			case gray:
				// Back-edge: slice the stack from the first occurrence of dep
				start := 0
				for i, sid := range stack {
					if sid == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), dep)
				key := canonicalCycleKey(cycle)
				if !reported[key] {
					reported[key] = true
					errs = append(errs, fmt.Sprintf("Circular dependency detected: %s", strings.Join(cycle, " -> ")))
				}
			case white:
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		colors[id] = black
	}

	for _, t := range s.order {
		if colors[t.ID] == white {
			visit(t.ID)
		}
	}

	// Dangling references
	seenDangling := make(map[string]bool)
	for _, t := range s.order {
		for _, dep := range t.DependsOn {
			if _, ok := s.tasks[dep]; ok {
				continue
			}
			key := t.ID + "\x00" + dep
			if seenDangling[key] {
				continue
			}
			seenDangling[key] = true
			errs = append(errs, fmt.Sprintf("Task '%s' depends on non-existent task '%s'", t.ID, dep))
		}
	}

	return len(errs) == 0, errs
}

// canonicalCycleKey identifies a cycle independently of which node the DFS
// entered it from: drop the repeated tail element and rotate so the smallest
// id comes first.
func canonicalCycleKey(cycle []string) string {
	nodes := cycle[:len(cycle)-1]
	if len(nodes) == 0 {
		return ""
	}
	min := 0
	for i, id := range nodes {
		if id < nodes[min] {
			min = i
		}
	}
	rotated := append(append([]string{}, nodes[min:]...), nodes[:min]...)
	return strings.Join(rotated, "\x00")
}

// Chain returns the task's dependency chain in topological order, the
// requested task last and every dependency preceding its dependents. Each
// node is visited once (post-order DFS); missing referents are skipped.
func (s *Snapshot) Chain(id string) []*types.Task {
	if _, ok := s.tasks[id]; !ok {
		return nil
	}
	var chain []*types.Task
	visited := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		t, ok := s.tasks[id]
		if !ok {
			return
		}
		for _, dep := range t.DependsOn {
			visit(dep)
		}
		chain = append(chain, t.Clone())
	}
	visit(id)
	return chain
}

// Dependents returns the active tasks that list id in depends_on — direct
// successors only, in file order.
func (s *Snapshot) Dependents(id string) []*types.Task {
	var dependents []*types.Task
	for _, t := range s.order {
		for _, dep := range t.DependsOn {
			if dep == id {
				dependents = append(dependents, t.Clone())
				break
			}
		}
	}
	return dependents
}

package graph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/MikeyBeez/mission-control/internal/types"
)

// seq numbers creation timestamps so ordering is deterministic
var seq int

func task(id string, status types.Status, priority int, deps ...string) *types.Task {
	seq++
	return &types.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    status,
		Priority:  priority,
		DependsOn: deps,
		BlockedBy: []string{},
		Tags:      []string{},
		Metadata: types.Metadata{
			CreatedAt: fmt.Sprintf("2025-06-01T12:00:%02d", seq%60),
		},
	}
}

func ids(tasks []*types.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestReadyNoDeps(t *testing.T) {
	s := Build([]*types.Task{task("a", types.StatusTodo, 5)})
	ready := s.Ready()
	if len(ready) != 1 || ready[0].ID != "a" {
		t.Fatalf("ready = %v, want [a]", ids(ready))
	}
	if len(ready[0].BlockedBy) != 0 {
		t.Errorf("ready task blocked_by should be empty, got %v", ready[0].BlockedBy)
	}
}

func TestReadyRequiresDoneDeps(t *testing.T) {
	a := task("a", types.StatusTodo, 5)
	b := task("b", types.StatusTodo, 5, "a")
	s := Build([]*types.Task{a, b})
	if got := ids(s.Ready()); len(got) != 1 || got[0] != "a" {
		t.Fatalf("ready = %v, want [a]", got)
	}

	a.Status = types.StatusDone
	s = Build([]*types.Task{a, b})
	if got := ids(s.Ready()); len(got) != 1 || got[0] != "b" {
		t.Fatalf("after done, ready = %v, want [b]", got)
	}
}

func TestReadyExcludesNonTodo(t *testing.T) {
	s := Build([]*types.Task{
		task("a", types.StatusInProgress, 5),
		task("b", types.StatusBlocked, 5),
		task("c", types.StatusDone, 5),
	})
	if got := s.Ready(); len(got) != 0 {
		t.Fatalf("ready = %v, want empty", ids(got))
	}
}

func TestReadyMissingDepBlocks(t *testing.T) {
	s := Build([]*types.Task{task("orphan", types.StatusTodo, 5, "m-ghost")})
	if got := s.Ready(); len(got) != 0 {
		t.Fatalf("task with missing dep should not be ready, got %v", ids(got))
	}
	blocked := s.Blocked()
	if len(blocked) != 1 || blocked[0].Blockers[0] != "m-ghost" {
		t.Fatalf("blocked = %+v, want orphan blocked by m-ghost", blocked)
	}
}

func TestReadyOrdering(t *testing.T) {
	low := task("low", types.StatusTodo, 1)
	high := task("high", types.StatusTodo, 10)
	med := task("med", types.StatusTodo, 5)
	s := Build([]*types.Task{low, high, med})

	got := ids(s.Ready())
	want := []string{"high", "med", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ready order = %v, want %v", got, want)
		}
	}
}

func TestReadyTieBreakOldestFirst(t *testing.T) {
	older := task("older", types.StatusTodo, 5)
	newer := task("newer", types.StatusTodo, 5)
	s := Build([]*types.Task{newer, older})

	got := ids(s.Ready())
	if got[0] != "older" || got[1] != "newer" {
		t.Fatalf("equal priority should order by created_at ascending, got %v", got)
	}
}

func TestBlockedReportsDependsOnOrder(t *testing.T) {
	done := task("done", types.StatusDone, 5)
	blocked := task("blocked", types.StatusTodo, 5, "z-late", "done", "a-early")
	s := Build([]*types.Task{done, blocked})

	report := s.Blocked()
	if len(report) != 1 {
		t.Fatalf("blocked count = %d, want 1", len(report))
	}
	got := report[0].Blockers
	if len(got) != 2 || got[0] != "z-late" || got[1] != "a-early" {
		t.Fatalf("blockers = %v, want [z-late a-early] (original order, done dep excluded)", got)
	}
	if len(report[0].Task.BlockedBy) != 2 {
		t.Errorf("blocked task copy should carry blocked_by, got %v", report[0].Task.BlockedBy)
	}
}

func TestConsistencyCleanChain(t *testing.T) {
	s := Build([]*types.Task{
		task("a", types.StatusTodo, 5),
		task("b", types.StatusTodo, 5, "a"),
		task("c", types.StatusTodo, 5, "b"),
	})
	ok, errs := s.CheckConsistency()
	if !ok || len(errs) != 0 {
		t.Fatalf("clean chain reported inconsistent: %v", errs)
	}
}

func TestConsistencyDirectCycle(t *testing.T) {
	s := Build([]*types.Task{
		task("a", types.StatusTodo, 5, "b"),
		task("b", types.StatusTodo, 5, "a"),
	})
	ok, errs := s.CheckConsistency()
	if ok {
		t.Fatal("cycle not detected")
	}
	if len(errs) != 1 {
		t.Fatalf("want exactly one cycle report, got %v", errs)
	}
	if !strings.Contains(errs[0], "Circular dependency detected") {
		t.Errorf("unexpected message: %q", errs[0])
	}
	// The reported path is some rotation of a -> b -> a
	if !strings.Contains(errs[0], "a -> b -> a") && !strings.Contains(errs[0], "b -> a -> b") {
		t.Errorf("cycle path missing from %q", errs[0])
	}
}

func TestConsistencyIndirectCycle(t *testing.T) {
	s := Build([]*types.Task{
		task("a", types.StatusTodo, 5, "c"),
		task("b", types.StatusTodo, 5, "a"),
		task("c", types.StatusTodo, 5, "b"),
	})
	ok, errs := s.CheckConsistency()
	if ok || len(errs) == 0 {
		t.Fatal("indirect cycle not detected")
	}
}

func TestConsistencySelfLoop(t *testing.T) {
	s := Build([]*types.Task{task("a", types.StatusTodo, 5, "a")})
	ok, errs := s.CheckConsistency()
	if ok {
		t.Fatal("self-loop not detected")
	}
	if !strings.Contains(errs[0], "a -> a") {
		t.Errorf("self-loop path missing from %q", errs[0])
	}
}

func TestConsistencyDuplicateEdgesSingleReport(t *testing.T) {
	s := Build([]*types.Task{
		task("a", types.StatusTodo, 5, "b", "b"),
		task("b", types.StatusTodo, 5, "a", "a"),
	})
	_, errs := s.CheckConsistency()
	if len(errs) != 1 {
		t.Fatalf("duplicate edges should not duplicate cycle reports: %v", errs)
	}
}

func TestConsistencyDisjointCycles(t *testing.T) {
	s := Build([]*types.Task{
		task("a", types.StatusTodo, 5, "b"),
		task("b", types.StatusTodo, 5, "a"),
		task("x", types.StatusTodo, 5, "y"),
		task("y", types.StatusTodo, 5, "x"),
	})
	ok, errs := s.CheckConsistency()
	if ok || len(errs) != 2 {
		t.Fatalf("want two cycle reports, got %v", errs)
	}
}

func TestConsistencyDanglingReference(t *testing.T) {
	s := Build([]*types.Task{task("orphan", types.StatusTodo, 5, "m-ghost")})
	ok, errs := s.CheckConsistency()
	if ok || len(errs) != 1 {
		t.Fatalf("want one dangling report, got %v", errs)
	}
	want := "Task 'orphan' depends on non-existent task 'm-ghost'"
	if errs[0] != want {
		t.Errorf("message = %q, want %q", errs[0], want)
	}
}

func TestChainTopologicalOrder(t *testing.T) {
	// d depends on b and c; both depend on a
	s := Build([]*types.Task{
		task("a", types.StatusDone, 5),
		task("b", types.StatusTodo, 5, "a"),
		task("c", types.StatusTodo, 5, "a"),
		task("d", types.StatusTodo, 5, "b", "c"),
	})
	chain := s.Chain("d")
	if len(chain) != 4 {
		t.Fatalf("chain length = %d, want 4", len(chain))
	}
	if chain[len(chain)-1].ID != "d" {
		t.Errorf("requested task should be last, got %v", ids(chain))
	}
	// Every dependency of a listed task appears earlier
	pos := map[string]int{}
	for i, c := range chain {
		pos[c.ID] = i
	}
	for _, c := range chain {
		for _, dep := range c.DependsOn {
			if dp, ok := pos[dep]; ok && dp >= pos[c.ID] {
				t.Errorf("dependency %s should precede %s in %v", dep, c.ID, ids(chain))
			}
		}
	}
}

func TestChainUnknownID(t *testing.T) {
	s := Build([]*types.Task{task("a", types.StatusTodo, 5)})
	if chain := s.Chain("missing"); chain != nil {
		t.Errorf("chain of unknown id = %v, want nil", ids(chain))
	}
}

func TestChainSkipsMissingDeps(t *testing.T) {
	s := Build([]*types.Task{task("a", types.StatusTodo, 5, "m-ghost")})
	chain := s.Chain("a")
	if len(chain) != 1 || chain[0].ID != "a" {
		t.Fatalf("chain = %v, want [a]", ids(chain))
	}
}

func TestDependentsDirectOnly(t *testing.T) {
	s := Build([]*types.Task{
		task("a", types.StatusDone, 5),
		task("b", types.StatusTodo, 5, "a"),
		task("c", types.StatusTodo, 5, "b"), // transitive, not direct
	})
	got := ids(s.Dependents("a"))
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("dependents = %v, want [b] (direct successors only)", got)
	}
	if got := s.Dependents("c"); len(got) != 0 {
		t.Errorf("leaf should have no dependents, got %v", ids(got))
	}
}

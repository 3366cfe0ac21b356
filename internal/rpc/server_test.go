package rpc

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/MikeyBeez/mission-control/internal/mission"
	"github.com/MikeyBeez/mission-control/internal/storage/jsonl"
	"github.com/MikeyBeez/mission-control/internal/types"
)

type stubVCS struct{}

func (stubVCS) RepoRoot() string                     { return "" }
func (stubVCS) CurrentBranch() string                { return "main" }
func (stubVCS) CurrentShortCommit() string           { return "abc1234" }
func (stubVCS) CommitPath(path, message string) bool { return true }

type tickClock struct{ now time.Time }

func (c *tickClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	clock := &tickClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewServer(t.TempDir(), func(projectPath string) (*mission.MissionControl, error) {
		return mission.New(projectPath, ".mikey_tasks",
			[]jsonl.Option{jsonl.WithVCS(stubVCS{}), jsonl.WithoutLock()},
			mission.WithClock(clock))
	})
}

func call(t *testing.T, s *Server, tool, args string) Result {
	t.Helper()
	req := Request{Tool: tool}
	if args != "" {
		req.Args = json.RawMessage(args)
	}
	return s.Handle(req)
}

func mustSucceed(t *testing.T, res Result) Result {
	t.Helper()
	if res["success"] != true {
		t.Fatalf("tool call failed: %v", res)
	}
	return res
}

func taskID(t *testing.T, res Result) string {
	t.Helper()
	task, ok := res["task"].(*types.Task)
	if !ok {
		t.Fatalf("result has no task: %v", res)
	}
	return task.ID
}

func TestUnknownTool(t *testing.T) {
	s := newTestServer(t)
	res := call(t, s, "launch_missiles", "")
	if res["success"] != false {
		t.Fatal("unknown tool should fail")
	}
	if msg, _ := res["error"].(string); !strings.Contains(msg, "Unknown tool: launch_missiles") {
		t.Errorf("error = %q", msg)
	}
}

func TestCreateTaskTool(t *testing.T) {
	s := newTestServer(t)
	res := mustSucceed(t, call(t, s, ToolCreateTask,
		`{"title":"First","description":"d","tags":["infra"],"priority":7}`))

	task := res["task"].(*types.Task)
	if task.Title != "First" || task.Priority != 7 || task.Tags[0] != "infra" {
		t.Errorf("task = %+v", task)
	}
	if msg, _ := res["message"].(string); !strings.Contains(msg, task.ID) {
		t.Errorf("message = %q", msg)
	}
}

func TestCreateTaskMissingTitle(t *testing.T) {
	s := newTestServer(t)
	res := call(t, s, ToolCreateTask, `{"description":"no title"}`)
	if res["success"] != false {
		t.Fatal("missing title should fail")
	}
}

func TestUpdateStatusAndNewlyReady(t *testing.T) {
	s := newTestServer(t)
	r1 := mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"First"}`))
	id1 := taskID(t, r1)
	r2 := mustSucceed(t, call(t, s, ToolCreateTask,
		`{"title":"Second","depends_on":["`+id1+`"]}`))
	id2 := taskID(t, r2)

	res := mustSucceed(t, call(t, s, ToolUpdateTaskStatus,
		`{"task_id":"`+id1+`","status":"done"}`))
	newly := res["newly_ready"].([]mission.ReadyBrief)
	if len(newly) != 1 || newly[0].ID != id2 {
		t.Fatalf("newly_ready = %+v, want [%s]", newly, id2)
	}
}

func TestUpdateStatusInvalid(t *testing.T) {
	s := newTestServer(t)
	r := mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"x"}`))
	id := taskID(t, r)

	res := call(t, s, ToolUpdateTaskStatus, `{"task_id":"`+id+`","status":"finished"}`)
	if res["success"] != false {
		t.Fatal("invalid status should fail")
	}
	res = call(t, s, ToolUpdateTaskStatus, `{"task_id":"m-none00","status":"done"}`)
	if res["success"] != false {
		t.Fatal("unknown id should fail")
	}
}

func TestListReadyWorkTool(t *testing.T) {
	s := newTestServer(t)
	r1 := mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"Ready"}`))
	id1 := taskID(t, r1)
	mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"Waiting","depends_on":["`+id1+`"]}`))

	res := mustSucceed(t, call(t, s, ToolListReadyWork, ""))
	if res["count"] != 1 {
		t.Fatalf("count = %v", res["count"])
	}
	if res["blocked_count"] != 1 {
		t.Fatalf("blocked_count = %v", res["blocked_count"])
	}
	summary := res["blocked_summary"].([]BlockedBrief)
	if len(summary) != 1 || summary[0].BlockedBy[0] != id1 {
		t.Errorf("blocked_summary = %+v", summary)
	}
}

func TestListTasksTool(t *testing.T) {
	s := newTestServer(t)
	mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"A","tags":["x"]}`))
	mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"B"}`))

	res := mustSucceed(t, call(t, s, ToolListTasks, `{"tags":["x"]}`))
	if res["count"] != 1 {
		t.Fatalf("count = %v", res["count"])
	}
	filters := res["filters_applied"].(map[string]interface{})
	if _, ok := filters["tags"]; !ok {
		t.Errorf("filters_applied = %v", filters)
	}

	res = mustSucceed(t, call(t, s, ToolListTasks, ""))
	if res["count"] != 2 {
		t.Fatalf("unfiltered count = %v", res["count"])
	}
}

func TestCheckConsistencyTool(t *testing.T) {
	s := newTestServer(t)
	res := mustSucceed(t, call(t, s, ToolCheckConsistency, ""))
	if res["is_consistent"] != true {
		t.Fatalf("empty set should be consistent: %v", res)
	}

	// Scenario S5: dangling dependency
	mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"Orphan","depends_on":["m-ghost"]}`))
	res = mustSucceed(t, call(t, s, ToolCheckConsistency, ""))
	if res["is_consistent"] != false {
		t.Fatal("dangling dep not flagged")
	}
	errs := res["errors"].([]string)
	if len(errs) != 1 || !strings.Contains(errs[0], "m-ghost") {
		t.Errorf("errors = %v", errs)
	}

	ready := mustSucceed(t, call(t, s, ToolListReadyWork, ""))
	if ready["count"] != 0 {
		t.Errorf("orphan should not be ready: %v", ready["count"])
	}
}

func TestTaskSummaryTool(t *testing.T) {
	s := newTestServer(t)
	mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"One"}`))
	res := mustSucceed(t, call(t, s, ToolTaskSummary, ""))
	if res["total_tasks"] != 1 || res["ready_count"] != 1 {
		t.Fatalf("summary = %v", res)
	}
	if res["task_dir"] == "" {
		t.Error("task_dir missing")
	}
}

func TestGetTaskTool(t *testing.T) {
	s := newTestServer(t)
	r1 := mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"Base"}`))
	id1 := taskID(t, r1)
	r2 := mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"Top","depends_on":["`+id1+`"]}`))
	id2 := taskID(t, r2)

	res := mustSucceed(t, call(t, s, ToolGetTask,
		`{"task_id":"`+id2+`","include_chain":true}`))
	chain := res["dependency_chain"].([]*types.Task)
	if len(chain) != 2 || chain[1].ID != id2 {
		t.Errorf("chain = %+v", chain)
	}

	res = mustSucceed(t, call(t, s, ToolGetTask,
		`{"task_id":"`+id1+`","include_impact":true}`))
	impact := res["dependent_tasks"].([]*types.Task)
	if len(impact) != 1 || impact[0].ID != id2 {
		t.Errorf("impact = %+v", impact)
	}

	res = call(t, s, ToolGetTask, `{"task_id":"m-none00"}`)
	if res["success"] != false {
		t.Error("unknown id should fail")
	}
}

func TestCommitTasksTool(t *testing.T) {
	s := newTestServer(t)
	mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"One"}`))
	res := mustSucceed(t, call(t, s, ToolCommitTasks, `{"message":"checkpoint"}`))
	if msg, _ := res["message"].(string); !strings.Contains(msg, "checkpoint") {
		t.Errorf("message = %q", msg)
	}
}

func TestDeleteTaskGuard(t *testing.T) {
	// Scenario S6: the protocol layer refuses while dependents exist;
	// the engine itself stays unconditional (covered in mission tests).
	s := newTestServer(t)
	r1 := mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"T1"}`))
	id1 := taskID(t, r1)
	r2 := mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"T2","depends_on":["`+id1+`"]}`))
	id2 := taskID(t, r2)
	mustSucceed(t, call(t, s, ToolUpdateTaskStatus, `{"task_id":"`+id2+`","status":"in_progress"}`))
	mustSucceed(t, call(t, s, ToolUpdateTaskStatus, `{"task_id":"`+id1+`","status":"done"}`))

	res := call(t, s, ToolDeleteTask, `{"task_id":"`+id1+`"}`)
	if res["success"] != false {
		t.Fatalf("delete with dependents should fail: %v", res)
	}
	deps := res["dependent_tasks"].([]string)
	if len(deps) != 1 || deps[0] != id2 {
		t.Errorf("dependent_tasks = %v, want [%s]", deps, id2)
	}

	// Without dependents deletion goes through
	mustSucceed(t, call(t, s, ToolDeleteTask, `{"task_id":"`+id2+`"}`))
	mustSucceed(t, call(t, s, ToolDeleteTask, `{"task_id":"`+id1+`"}`))
}

func TestMalformedArgs(t *testing.T) {
	s := newTestServer(t)
	res := call(t, s, ToolCreateTask, `{"title": 42}`)
	if res["success"] != false {
		t.Fatal("type-mismatched args should fail")
	}
}

func TestProjectPathScoping(t *testing.T) {
	clock := &tickClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewServer(t.TempDir(), func(projectPath string) (*mission.MissionControl, error) {
		return mission.New(projectPath, ".mikey_tasks",
			[]jsonl.Option{jsonl.WithVCS(stubVCS{}), jsonl.WithoutLock()},
			mission.WithClock(clock))
	})
	other := t.TempDir()

	mustSucceed(t, call(t, s, ToolCreateTask, `{"title":"Default repo"}`))
	mustSucceed(t, call(t, s, ToolCreateTask,
		`{"title":"Other repo","project_path":`+mustJSON(other)+`}`))

	res := mustSucceed(t, call(t, s, ToolListTasks, ""))
	if res["count"] != 1 {
		t.Fatalf("default scope count = %v", res["count"])
	}
	res = mustSucceed(t, call(t, s, ToolListTasks, `{"project_path":`+mustJSON(other)+`}`))
	if res["count"] != 1 {
		t.Fatalf("other scope count = %v", res["count"])
	}
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestServeLines(t *testing.T) {
	s := newTestServer(t)
	input := strings.Join([]string{
		`{"tool":"create_task","args":{"title":"From stdio"}}`,
		``,
		`this is not json`,
		`{"tool":"list_ready_work"}`,
	}, "\n") + "\n"

	var out strings.Builder
	if err := s.ServeLines(strings.NewReader(input), &out); err != nil {
		t.Fatalf("ServeLines: %v", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	var responses []map[string]interface{}
	for scanner.Scan() {
		var res map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &res); err != nil {
			t.Fatalf("response not JSON: %v\n%s", err, scanner.Text())
		}
		responses = append(responses, res)
	}
	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3 (blank line skipped)", len(responses))
	}
	if responses[0]["success"] != true {
		t.Errorf("create response = %v", responses[0])
	}
	if responses[1]["success"] != false {
		t.Errorf("malformed line should produce an error response: %v", responses[1])
	}
	if responses[2]["success"] != true || responses[2]["count"] != float64(1) {
		t.Errorf("ready response = %v", responses[2])
	}
}

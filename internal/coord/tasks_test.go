package coord

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/89pl/strixer/pkg/models"
)

func testClock() func() time.Time {
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestCoordinator(opts ...Option) *Coordinator {
	opts = append([]Option{WithClock(testClock())}, opts...)
	return New(opts...)
}

func TestCreateTaskDefaults(t *testing.T) {
	c := newTestCoordinator()

	task, err := c.CreateTask(TaskSpec{Title: "scan the target", Description: "full scan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.Status != models.TaskStatusPending {
		t.Errorf("expected pending, got %s", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("expected medium priority, got %s", task.Priority)
	}
	if task.EstimatedMinutes != 30 {
		t.Errorf("expected default estimate 30, got %d", task.EstimatedMinutes)
	}
	if task.ID == "" {
		t.Error("expected non-empty task ID")
	}
}

func TestCreateTaskInvalidPriority(t *testing.T) {
	c := newTestCoordinator()

	_, err := c.CreateTask(TaskSpec{Title: "t", Priority: "urgent"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreateTaskWithAssigneeStartsAssigned(t *testing.T) {
	c := newTestCoordinator()

	task, err := c.CreateTask(TaskSpec{Title: "t", AssignedTo: "agent-x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != models.TaskStatusAssigned {
		t.Errorf("expected assigned, got %s", task.Status)
	}
	if task.AssignedTo != "agent-x" {
		t.Errorf("expected assignee agent-x, got %q", task.AssignedTo)
	}
}

func TestCreateTaskStrictCycleCheck(t *testing.T) {
	c := newTestCoordinator(WithStrictCycleCheck(true))

	a, err := c.CreateTask(TaskSpec{Title: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := c.CreateTask(TaskSpec{Title: "b", DependsOn: []string{a.ID}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A chain a <- b <- c is fine.
	if _, err := c.CreateTask(TaskSpec{Title: "c", DependsOn: []string{b.ID}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Diamonds share dependencies without forming a cycle; strict
	// mode must not reject them.
	if _, err := c.CreateTask(TaskSpec{Title: "d", DependsOn: []string{a.ID, b.ID}}); err != nil {
		t.Fatalf("diamond must not trip cycle detection: %v", err)
	}
}

func TestAssignTaskNotFound(t *testing.T) {
	c := newTestCoordinator()

	_, err := c.AssignTask("task_missing", "agent-x", false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignTaskDependencyGate(t *testing.T) {
	c := newTestCoordinator()

	t1, err := c.CreateTask(TaskSpec{Title: "t1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t2, err := c.CreateTask(TaskSpec{Title: "t2", DependsOn: []string{t1.ID}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.AssignTask(t2.ID, "agent-x", false)
	if !errors.Is(err, ErrDependencyUnmet) {
		t.Fatalf("expected ErrDependencyUnmet, got %v", err)
	}

	var unmet *DependencyUnmetError
	if !errors.As(err, &unmet) {
		t.Fatal("expected DependencyUnmetError payload")
	}
	if unmet.BlockingID != t1.ID {
		t.Errorf("expected blocking task %s, got %s", t1.ID, unmet.BlockingID)
	}

	if _, err := c.CompleteTask(t1.ID, "done", models.TaskStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assigned, err := c.AssignTask(t2.ID, "agent-x", false)
	if err != nil {
		t.Fatalf("assignment after dependency completion should succeed: %v", err)
	}
	if assigned.Status != models.TaskStatusAssigned {
		t.Errorf("expected assigned, got %s", assigned.Status)
	}
}

func TestAssignTaskCapacityGate(t *testing.T) {
	c := newTestCoordinator()

	if _, err := c.SetCapacity("agent-x", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t1, _ := c.CreateTask(TaskSpec{Title: "t1"})
	t2, _ := c.CreateTask(TaskSpec{Title: "t2"})

	if _, err := c.AssignTask(t1.ID, "agent-x", false); err != nil {
		t.Fatalf("first assignment should succeed: %v", err)
	}

	_, err := c.AssignTask(t2.ID, "agent-x", false)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatal("expected CapacityError payload")
	}
	if capErr.Current != 1 || capErr.Limit != 1 {
		t.Errorf("expected count 1 of limit 1, got %d of %d", capErr.Current, capErr.Limit)
	}

	// Force bypasses the capacity gate.
	forced, err := c.AssignTask(t2.ID, "agent-x", true)
	if err != nil {
		t.Fatalf("forced assignment should succeed: %v", err)
	}
	if forced.AssignedTo != "agent-x" {
		t.Errorf("expected assignee agent-x, got %q", forced.AssignedTo)
	}
}

func TestAssignTaskDefaultCapacity(t *testing.T) {
	c := newTestCoordinator()

	// No capacity record: the default of 5 applies.
	for i := 0; i < 5; i++ {
		task, _ := c.CreateTask(TaskSpec{Title: "t"})
		if _, err := c.AssignTask(task.ID, "agent-y", false); err != nil {
			t.Fatalf("assignment %d should succeed: %v", i+1, err)
		}
	}

	extra, _ := c.CreateTask(TaskSpec{Title: "extra"})
	if _, err := c.AssignTask(extra.ID, "agent-y", false); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded at default limit, got %v", err)
	}
}

func TestAssignTaskDependencyCheckedBeforeCapacity(t *testing.T) {
	c := newTestCoordinator()

	if _, err := c.SetCapacity("agent-x", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filler, _ := c.CreateTask(TaskSpec{Title: "filler"})
	if _, err := c.AssignTask(filler.ID, "agent-x", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dep, _ := c.CreateTask(TaskSpec{Title: "dep"})
	blocked, _ := c.CreateTask(TaskSpec{Title: "blocked", DependsOn: []string{dep.ID}})

	// The agent is saturated AND the dependency is unmet: the
	// dependency failure must win.
	_, err := c.AssignTask(blocked.ID, "agent-x", false)
	if !errors.Is(err, ErrDependencyUnmet) {
		t.Fatalf("expected ErrDependencyUnmet before capacity check, got %v", err)
	}
}

func TestAssignTaskRejectsTerminal(t *testing.T) {
	c := newTestCoordinator()

	done, _ := c.CreateTask(TaskSpec{Title: "done"})
	if _, err := c.CompleteTask(done.ID, "ok", models.TaskStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.AssignTask(done.ID, "agent-x", false); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}

	failed, _ := c.CreateTask(TaskSpec{Title: "failed"})
	if _, err := c.CompleteTask(failed.ID, "boom", models.TaskStatusFailed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Force must not resurrect a terminal task either.
	if _, err := c.AssignTask(failed.ID, "agent-x", true); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal on forced assign, got %v", err)
	}

	got, _ := c.Task(done.ID)
	if got.Status != models.TaskStatusCompleted || got.AssignedTo != "" {
		t.Errorf("terminal task must keep its state, got %s assigned to %q", got.Status, got.AssignedTo)
	}
}

func TestCompleteTaskTerminalIdempotence(t *testing.T) {
	c := newTestCoordinator()

	task, _ := c.CreateTask(TaskSpec{Title: "t"})
	if _, err := c.CompleteTask(task.ID, "ok", models.TaskStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := c.CompleteTask(task.ID, "nope", models.TaskStatusFailed)
	if !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}

	got, err := c.Task(task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.TaskStatusCompleted {
		t.Errorf("first terminal transition must win, got %s", got.Status)
	}
	if got.Result != "ok" {
		t.Errorf("result must be preserved, got %q", got.Result)
	}
}

func TestCompleteTaskInvalidStatus(t *testing.T) {
	c := newTestCoordinator()

	task, _ := c.CreateTask(TaskSpec{Title: "t"})
	_, err := c.CompleteTask(task.ID, "", models.TaskStatusPending)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCompleteTaskReportsUnblocked(t *testing.T) {
	c := newTestCoordinator()

	t1, _ := c.CreateTask(TaskSpec{Title: "t1"})
	t2, _ := c.CreateTask(TaskSpec{Title: "t2"})
	both, _ := c.CreateTask(TaskSpec{Title: "both", DependsOn: []string{t1.ID, t2.ID}})
	single, _ := c.CreateTask(TaskSpec{Title: "single", DependsOn: []string{t1.ID}})

	res, err := c.CompleteTask(t1.ID, "", models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only "single" has every dependency completed.
	if len(res.Unblocked) != 1 || res.Unblocked[0] != single.ID {
		t.Fatalf("expected unblocked=[%s], got %v", single.ID, res.Unblocked)
	}

	res, err = c.CompleteTask(t2.ID, "", models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Unblocked) != 1 || res.Unblocked[0] != both.ID {
		t.Fatalf("expected unblocked=[%s], got %v", both.ID, res.Unblocked)
	}

	// Unblocking is advisory: the task stays pending.
	got, _ := c.Task(both.ID)
	if got.Status != models.TaskStatusPending {
		t.Errorf("unblocked task must stay pending, got %s", got.Status)
	}
}

func TestFailedDependencyDoesNotUnblock(t *testing.T) {
	c := newTestCoordinator()

	t1, _ := c.CreateTask(TaskSpec{Title: "t1"})
	t2, _ := c.CreateTask(TaskSpec{Title: "t2", DependsOn: []string{t1.ID}})

	res, err := c.CompleteTask(t1.ID, "boom", models.TaskStatusFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Unblocked) != 0 {
		t.Fatalf("failed dependency must not unblock, got %v", res.Unblocked)
	}

	if _, err := c.AssignTask(t2.ID, "agent-x", false); !errors.Is(err, ErrDependencyUnmet) {
		t.Fatalf("expected ErrDependencyUnmet on failed dependency, got %v", err)
	}
}

func TestStartTask(t *testing.T) {
	c := newTestCoordinator()

	task, _ := c.CreateTask(TaskSpec{Title: "t"})

	// Starting a pending task is rejected; it must be assigned first.
	if _, err := c.StartTask(task.ID); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	if _, err := c.AssignTask(task.ID, "agent-x", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started, err := c.StartTask(task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != models.TaskStatusInProgress {
		t.Errorf("expected in_progress, got %s", started.Status)
	}
	if started.StartedAt == nil {
		t.Error("expected StartedAt to be stamped")
	}
}

func TestInProgressCountsAgainstCapacity(t *testing.T) {
	c := newTestCoordinator()

	if _, err := c.SetCapacity("agent-x", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t1, _ := c.CreateTask(TaskSpec{Title: "t1"})
	c.AssignTask(t1.ID, "agent-x", false)
	c.StartTask(t1.ID)

	t2, _ := c.CreateTask(TaskSpec{Title: "t2"})
	if _, err := c.AssignTask(t2.ID, "agent-x", false); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("in_progress must count against capacity, got %v", err)
	}
}

func TestSetCapacityRange(t *testing.T) {
	c := newTestCoordinator()

	for _, n := range []int{0, -1, 21, 100} {
		if _, err := c.SetCapacity("agent-x", n); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("capacity %d: expected ErrInvalidArgument, got %v", n, err)
		}
	}
	for _, n := range []int{1, 5, 20} {
		if _, err := c.SetCapacity("agent-x", n); err != nil {
			t.Errorf("capacity %d: unexpected error: %v", n, err)
		}
	}
}

// TestTaskLifecycleScenario walks a task through the full state machine.
func TestTaskLifecycleScenario(t *testing.T) {
	c := newTestCoordinator()

	task, err := c.CreateTask(TaskSpec{Title: "scan-1", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != models.TaskStatusPending {
		t.Fatalf("expected pending, got %s", task.Status)
	}

	assigned, err := c.AssignTask(task.ID, "agent-x", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assigned.Status != models.TaskStatusAssigned {
		t.Fatalf("expected assigned, got %s", assigned.Status)
	}

	res, err := c.CompleteTask(task.ID, "done", models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Task.Status != models.TaskStatusCompleted {
		t.Errorf("expected completed, got %s", res.Task.Status)
	}
	if res.Task.Result != "done" {
		t.Errorf("expected result %q, got %q", "done", res.Task.Result)
	}
	if res.Task.CompletedAt == nil {
		t.Error("expected CompletedAt to be stamped")
	}
}

func TestConcurrentCompleteOnlyOneWins(t *testing.T) {
	c := newTestCoordinator()

	task, _ := c.CreateTask(TaskSpec{Title: "t"})

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			status := models.TaskStatusCompleted
			if n%2 == 1 {
				status = models.TaskStatusFailed
			}
			if _, err := c.CompleteTask(task.ID, "r", status); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one terminal transition, got %d", successes)
	}
}

func TestConcurrentAssignRespectsCapacity(t *testing.T) {
	c := newTestCoordinator()

	if _, err := c.SetCapacity("agent-x", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const tasks = 10
	ids := make([]string, tasks)
	for i := range ids {
		task, _ := c.CreateTask(TaskSpec{Title: "t"})
		ids[i] = task.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(taskID string) {
			defer wg.Done()
			c.AssignTask(taskID, "agent-x", false)
		}(id)
	}
	wg.Wait()

	active := 0
	for _, task := range c.Tasks() {
		if task.AssignedTo == "agent-x" && task.Status.Active() {
			active++
		}
	}
	if active != 3 {
		t.Fatalf("expected exactly 3 active tasks for agent-x, got %d", active)
	}
}

func TestTasksListedInCreationOrder(t *testing.T) {
	c := newTestCoordinator()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		task, _ := c.CreateTask(TaskSpec{Title: title})
		ids = append(ids, task.ID)
	}

	listed := c.Tasks()
	if len(listed) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(listed))
	}
	for i, task := range listed {
		if task.ID != ids[i] {
			t.Errorf("position %d: expected %s, got %s", i, ids[i], task.ID)
		}
	}
}

func TestTaskReturnsCopy(t *testing.T) {
	c := newTestCoordinator()

	task, _ := c.CreateTask(TaskSpec{Title: "t", Tags: []string{"a"}})

	got, _ := c.Task(task.ID)
	got.Title = "mutated"
	got.Tags[0] = "mutated"

	fresh, _ := c.Task(task.ID)
	if fresh.Title != "t" || fresh.Tags[0] != "a" {
		t.Error("registry task must not be mutable through returned copies")
	}
}

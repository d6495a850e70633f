package coord

import (
	"fmt"

	"github.com/89pl/strixer/pkg/models"
)

// defaultEstimateMinutes is the advisory estimate applied when a
// TaskSpec carries none.
const defaultEstimateMinutes = 30

// TaskSpec describes a task to create.
type TaskSpec struct {
	// Title is the short task description. Required.
	Title string
	// Description provides task detail.
	Description string
	// Priority defaults to medium when empty.
	Priority models.Priority
	// DependsOn lists task IDs that must complete first.
	DependsOn []string
	// AssignedTo binds the task to an agent at creation. The task
	// starts in assigned instead of pending.
	AssignedTo string
	// Tags categorize the task.
	Tags []string
	// EstimatedMinutes is an advisory time estimate.
	EstimatedMinutes int
}

// CompleteResult reports a terminal transition and the tasks it unblocked.
type CompleteResult struct {
	// Task is the completed or failed task.
	Task *models.Task
	// Unblocked lists pending tasks whose every dependency is now
	// completed. Unblocking is advisory: the engine does not transition
	// or assign them.
	Unblocked []string
}

// CreateTask registers a new task. The priority must be one of the four
// defined levels, and the dependency set must not close a cycle: a
// direct back-edge with an existing task is always rejected, and with
// strict cycle checking enabled transitive cycles are rejected too.
func (c *Coordinator) CreateTask(spec TaskSpec) (*models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, err := c.createTaskLocked(spec)
	if err != nil {
		return nil, err
	}
	return task.Clone(), nil
}

// createTaskLocked validates the spec and registers a new task,
// returning the registry task (not a clone). Caller must hold c.mu.
func (c *Coordinator) createTaskLocked(spec TaskSpec) (*models.Task, error) {
	priority := spec.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("priority %q must be one of %v: %w", spec.Priority, models.Priorities, ErrInvalidArgument)
	}

	id := newID(taskIDPrefix)

	// Direct back-edge check: a declared dependency must not already
	// depend on the task being created.
	for _, depID := range spec.DependsOn {
		dep, ok := c.tasks[depID]
		if !ok {
			continue
		}
		for _, reverse := range dep.DependsOn {
			if reverse == id {
				return nil, fmt.Errorf("task %s already depends on %s: %w", depID, id, ErrCycleDetected)
			}
		}
	}

	if c.strictCycles && c.deps.WouldCycle(id, spec.DependsOn) {
		return nil, fmt.Errorf("dependencies %v close a cycle: %w", spec.DependsOn, ErrCycleDetected)
	}

	estimate := spec.EstimatedMinutes
	if estimate <= 0 {
		estimate = defaultEstimateMinutes
	}

	now := c.now()
	task := &models.Task{
		ID:               id,
		Title:            spec.Title,
		Description:      spec.Description,
		Priority:         priority,
		Status:           models.TaskStatusPending,
		DependsOn:        append([]string(nil), spec.DependsOn...),
		AssignedTo:       spec.AssignedTo,
		Tags:             append([]string(nil), spec.Tags...),
		EstimatedMinutes: estimate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if spec.AssignedTo != "" {
		task.Status = models.TaskStatusAssigned
	}

	c.tasks[id] = task
	c.taskOrder = append(c.taskOrder, id)
	c.deps.Add(id, spec.DependsOn)

	c.logger.Log("[coord] created task %s: %s", id, spec.Title)
	c.emit(Event{Type: EventTaskCreated, TaskID: id, AgentID: spec.AssignedTo, Message: spec.Title})

	return task, nil
}

// AssignTask binds a task to an agent. The dependency gate runs before
// the capacity gate so a capacity failure is never reported for a task
// that could not run anyway. Force bypasses the capacity gate only.
func (c *Coordinator) AssignTask(taskID, agentID string, force bool) (*models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, ok := c.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("task %q is %s: %w", taskID, task.Status, ErrAlreadyTerminal)
	}

	for _, depID := range task.DependsOn {
		dep, exists := c.tasks[depID]
		if exists && dep.Status != models.TaskStatusCompleted {
			return nil, &DependencyUnmetError{TaskID: taskID, BlockingID: depID}
		}
	}

	if !force {
		limit := c.capacityLimitLocked(agentID)
		current := c.activeCountLocked(agentID)
		if current >= limit {
			return nil, &CapacityError{AgentID: agentID, Current: current, Limit: limit}
		}
	}

	task.AssignedTo = agentID
	task.Status = models.TaskStatusAssigned
	task.UpdatedAt = c.now()

	c.logger.Log("[coord] assigned task %s to agent %s (force=%v)", taskID, agentID, force)
	c.emit(Event{Type: EventTaskAssigned, TaskID: taskID, AgentID: agentID})

	return task.Clone(), nil
}

// StartTask transitions an assigned task to in_progress and stamps its
// start time.
func (c *Coordinator) StartTask(taskID string) (*models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, ok := c.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("task %q is %s: %w", taskID, task.Status, ErrAlreadyTerminal)
	}
	if task.Status != models.TaskStatusAssigned {
		return nil, fmt.Errorf("task %q is %s, not assigned: %w", taskID, task.Status, ErrInvalidArgument)
	}

	now := c.now()
	task.Status = models.TaskStatusInProgress
	task.StartedAt = &now
	task.UpdatedAt = now

	c.logger.Log("[coord] started task %s", taskID)
	c.emit(Event{Type: EventTaskStarted, TaskID: taskID, AgentID: task.AssignedTo})

	return task.Clone(), nil
}

// CompleteTask applies a terminal transition and stores the result.
// The first terminal transition wins; a second attempt fails with
// ErrAlreadyTerminal. The returned Unblocked set lists pending tasks
// whose every dependency is now completed.
func (c *Coordinator) CompleteTask(taskID, result string, status models.TaskStatus) (*CompleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if status != models.TaskStatusCompleted && status != models.TaskStatusFailed {
		return nil, fmt.Errorf("status %q must be completed or failed: %w", status, ErrInvalidArgument)
	}

	task, ok := c.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("task %q is %s: %w", taskID, task.Status, ErrAlreadyTerminal)
	}

	now := c.now()
	task.Status = status
	task.Result = result
	task.CompletedAt = &now
	task.UpdatedAt = now

	if status == models.TaskStatusCompleted {
		c.deps.MarkComplete(taskID)
	}

	unblocked := c.unblockedByLocked(taskID)

	eventType := EventTaskCompleted
	if status == models.TaskStatusFailed {
		eventType = EventTaskFailed
	}
	c.logger.Log("[coord] task %s marked %s, unblocked %d tasks", taskID, status, len(unblocked))
	c.emit(Event{Type: eventType, TaskID: taskID, AgentID: task.AssignedTo, Message: result})
	for _, id := range unblocked {
		c.emit(Event{Type: EventTaskUnblocked, TaskID: id})
	}

	if c.archive != nil {
		if err := c.archive.SaveResult(task.Clone()); err != nil {
			// Archival is best-effort; the terminal transition stands.
			c.logger.Log("[coord] archive task %s failed: %v", taskID, err)
		}
	}

	return &CompleteResult{Task: task.Clone(), Unblocked: unblocked}, nil
}

// unblockedByLocked scans for pending tasks that depend on the given
// task and whose every dependency is now completed. Caller must hold c.mu.
func (c *Coordinator) unblockedByLocked(taskID string) []string {
	var unblocked []string
	for _, id := range c.taskOrder {
		other := c.tasks[id]
		if other.Status != models.TaskStatusPending {
			continue
		}
		dependsOnIt := false
		for _, depID := range other.DependsOn {
			if depID == taskID {
				dependsOnIt = true
				break
			}
		}
		if !dependsOnIt {
			continue
		}
		allDone := true
		for _, depID := range other.DependsOn {
			dep, exists := c.tasks[depID]
			if !exists || dep.Status != models.TaskStatusCompleted {
				allDone = false
				break
			}
		}
		if allDone {
			unblocked = append(unblocked, id)
		}
	}
	return unblocked
}

// SetCapacity sets the maximum concurrent task count for an agent.
// The limit must be between models.MinConcurrent and models.MaxConcurrent.
func (c *Coordinator) SetCapacity(agentID string, maxConcurrent int) (*models.Capacity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if maxConcurrent < models.MinConcurrent || maxConcurrent > models.MaxConcurrent {
		return nil, fmt.Errorf("max_concurrent %d must be between %d and %d: %w",
			maxConcurrent, models.MinConcurrent, models.MaxConcurrent, ErrInvalidArgument)
	}

	cap := &models.Capacity{
		AgentID:       agentID,
		MaxConcurrent: maxConcurrent,
		UpdatedAt:     c.now(),
	}
	c.capacities[agentID] = cap

	c.logger.Log("[coord] agent %s capacity set to %d", agentID, maxConcurrent)

	out := *cap
	return &out, nil
}

// capacityLimitLocked returns the agent's concurrency limit, falling
// back to the engine default when no record exists. Caller must hold c.mu.
func (c *Coordinator) capacityLimitLocked(agentID string) int {
	if cap, ok := c.capacities[agentID]; ok {
		return cap.MaxConcurrent
	}
	return c.defaultCapacity
}

// activeCountLocked counts the agent's tasks in assigned or
// in_progress. Caller must hold c.mu.
func (c *Coordinator) activeCountLocked(agentID string) int {
	count := 0
	for _, task := range c.tasks {
		if task.AssignedTo == agentID && task.Status.Active() {
			count++
		}
	}
	return count
}

package coord

import (
	"fmt"

	"github.com/89pl/strixer/pkg/models"
)

// ExecuteResult reports a workflow expansion.
type ExecuteResult struct {
	// Workflow is the workflow after expansion, with TaskIDs populated.
	Workflow *models.Workflow
	// CreatedTaskIDs lists the tasks created, in step order.
	CreatedTaskIDs []string
	// AutoAssigned maps task IDs to the agents they were assigned to,
	// when auto-assignment is enabled.
	AutoAssigned map[string]string
}

// DefineWorkflow registers a workflow. Step dependency references are
// not validated here; resolution happens at execution time.
func (c *Coordinator) DefineWorkflow(name, description string, steps []models.WorkflowStep) (*models.Workflow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, step := range steps {
		if step.Priority != "" && !step.Priority.Valid() {
			return nil, fmt.Errorf("step %q priority %q: %w", step.Name, step.Priority, ErrInvalidArgument)
		}
	}

	id := newID(workflowIDPrefix)
	wf := &models.Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		Steps:       append([]models.WorkflowStep(nil), steps...),
		Status:      models.WorkflowStatusCreated,
		CreatedAt:   c.now(),
		TaskIDs:     make(map[string]string),
	}

	c.workflows[id] = wf
	c.workflowOrder = append(c.workflowOrder, id)

	c.logger.Log("[coord] defined workflow %s: %s (%d steps)", id, name, len(steps))

	return wf.Clone(), nil
}

// ExecuteWorkflow expands a workflow into one task per step. Steps are
// processed in the order supplied; a step's prerequisites resolve to
// the task IDs of steps already processed in this expansion, and names
// of not-yet-processed steps resolve to no dependency. Re-executing a
// workflow creates a fresh set of tasks.
func (c *Coordinator) ExecuteWorkflow(workflowID string) (*ExecuteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wf, ok := c.workflows[workflowID]
	if !ok {
		return nil, fmt.Errorf("workflow %q: %w", workflowID, ErrNotFound)
	}

	stepToTask := make(map[string]string, len(wf.Steps))
	var created []string
	autoAssigned := make(map[string]string)

	for _, step := range wf.Steps {
		var dependsOn []string
		for _, depName := range step.DependsOn {
			if taskID, resolved := stepToTask[depName]; resolved {
				dependsOn = append(dependsOn, taskID)
			}
		}

		priority := step.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}
		template := step.Template
		if template == "" {
			template = step.Name
		}

		task, err := c.createTaskLocked(TaskSpec{
			Title:       fmt.Sprintf("[%s] %s", wf.Name, step.Name),
			Description: template,
			Priority:    priority,
			DependsOn:   dependsOn,
			Tags:        []string{"workflow", workflowID},
		})
		if err != nil {
			return nil, fmt.Errorf("expand step %q: %w", step.Name, err)
		}

		stepToTask[step.Name] = task.ID
		created = append(created, task.ID)

		if c.autoAssign {
			if agentID, ok := c.pickAgentLocked(task); ok {
				task.AssignedTo = agentID
				task.Status = models.TaskStatusAssigned
				task.UpdatedAt = c.now()
				autoAssigned[task.ID] = agentID
				c.emit(Event{Type: EventTaskAssigned, TaskID: task.ID, AgentID: agentID})
			}
		}
	}

	// The workflow record is only stamped once every step expanded.
	now := c.now()
	wf.Status = models.WorkflowStatusExecuting
	wf.ExecutedAt = &now
	wf.TaskIDs = stepToTask

	c.logger.Log("[coord] executed workflow %s: created %d tasks", workflowID, len(created))
	c.emit(Event{Type: EventWorkflowExecuted, WorkflowID: workflowID, Message: wf.Name})

	return &ExecuteResult{
		Workflow:       wf.Clone(),
		CreatedTaskIDs: created,
		AutoAssigned:   autoAssigned,
	}, nil
}

// pickAgentLocked selects the least-loaded agent with a capacity record
// that is below its limit, for a task whose dependencies are all
// completed. Returns false when no agent qualifies. Caller must hold c.mu.
func (c *Coordinator) pickAgentLocked(task *models.Task) (string, bool) {
	for _, depID := range task.DependsOn {
		dep, exists := c.tasks[depID]
		if exists && dep.Status != models.TaskStatusCompleted {
			return "", false
		}
	}

	best := ""
	bestLoad := 0
	for agentID, cap := range c.capacities {
		load := c.activeCountLocked(agentID)
		if load >= cap.MaxConcurrent {
			continue
		}
		if best == "" || load < bestLoad || (load == bestLoad && agentID < best) {
			best = agentID
			bestLoad = load
		}
	}
	return best, best != ""
}

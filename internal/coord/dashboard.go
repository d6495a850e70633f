package coord

import "github.com/89pl/strixer/pkg/models"

// Dashboard is a read-only snapshot of the coordination state.
type Dashboard struct {
	// TaskTotal is the number of tasks ever created.
	TaskTotal int `json:"task_total"`
	// TasksByStatus counts tasks per status.
	TasksByStatus map[models.TaskStatus]int `json:"tasks_by_status"`
	// TasksByPriority counts non-terminal tasks per priority.
	TasksByPriority map[models.Priority]int `json:"tasks_by_priority"`
	// WorkflowTotal is the number of workflows defined.
	WorkflowTotal int `json:"workflow_total"`
	// WorkflowsExecuting counts workflows in the executing state.
	WorkflowsExecuting int `json:"workflows_executing"`
	// TeamTotal is the number of teams.
	TeamTotal int `json:"team_total"`
	// TeamMembers is the member count summed across teams.
	TeamMembers int `json:"team_members"`
	// AgentWorkloads counts active tasks per assignee.
	AgentWorkloads map[string]int `json:"agent_workloads"`
	// BroadcastTotal is the number of broadcasts recorded.
	BroadcastTotal int `json:"broadcast_total"`
	// SyncPointTotal is the number of sync points.
	SyncPointTotal int `json:"sync_point_total"`
	// SyncPointsWaiting counts barriers still waiting for check-ins.
	SyncPointsWaiting int `json:"sync_points_waiting"`
}

// Dashboard builds a snapshot in one pass over each registry. It never
// mutates state.
func (c *Coordinator) Dashboard() *Dashboard {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := &Dashboard{
		TaskTotal:       len(c.tasks),
		TasksByStatus:   make(map[models.TaskStatus]int),
		TasksByPriority: make(map[models.Priority]int),
		WorkflowTotal:   len(c.workflows),
		TeamTotal:       len(c.teams),
		AgentWorkloads:  make(map[string]int),
		BroadcastTotal:  len(c.broadcasts),
		SyncPointTotal:  len(c.syncPoints),
	}

	for _, task := range c.tasks {
		d.TasksByStatus[task.Status]++
		if !task.Status.Terminal() {
			d.TasksByPriority[task.Priority]++
		}
		if task.AssignedTo != "" && task.Status.Active() {
			d.AgentWorkloads[task.AssignedTo]++
		}
	}

	for _, wf := range c.workflows {
		if wf.Status == models.WorkflowStatusExecuting {
			d.WorkflowsExecuting++
		}
	}

	for _, team := range c.teams {
		d.TeamMembers += len(team.Members)
	}

	for _, sp := range c.syncPoints {
		if sp.Status == models.SyncStatusWaiting {
			d.SyncPointsWaiting++
		}
	}

	return d
}

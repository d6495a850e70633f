package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	// WorkflowStatusCreated indicates the workflow has been defined but not run.
	WorkflowStatusCreated WorkflowStatus = "created"
	// WorkflowStatusExecuting indicates the workflow has been expanded into tasks.
	WorkflowStatusExecuting WorkflowStatus = "executing"
)

// WorkflowStep is a single step definition inside a workflow.
// Steps are expanded into tasks in the order they appear; DependsOn
// names earlier steps, not task IDs.
type WorkflowStep struct {
	// Name identifies the step within its workflow.
	Name string `json:"name" yaml:"name"`
	// Template is the task description created for this step.
	Template string `json:"task_template,omitempty" yaml:"task_template,omitempty"`
	// DependsOn lists names of steps that must complete first.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	// Priority overrides the default task priority for this step.
	Priority Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Workflow is an ordered template of steps expanded into dependency-linked tasks.
type Workflow struct {
	// ID is the unique identifier for this workflow.
	ID string `json:"id"`
	// Name is the workflow name, used as the task title prefix.
	Name string `json:"name"`
	// Description provides detail about the workflow's purpose.
	Description string `json:"description,omitempty"`
	// Steps are the ordered step definitions.
	Steps []WorkflowStep `json:"steps,omitempty"`
	// Status is the current lifecycle state.
	Status WorkflowStatus `json:"status"`
	// CreatedAt is when the workflow was defined.
	CreatedAt time.Time `json:"created_at"`
	// ExecutedAt is when the workflow was expanded, if it has been.
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
	// TaskIDs maps step names to the task IDs they expanded into.
	TaskIDs map[string]string `json:"task_ids,omitempty"`
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	c := *w
	c.Steps = make([]WorkflowStep, len(w.Steps))
	for i, s := range w.Steps {
		s.DependsOn = append([]string(nil), s.DependsOn...)
		c.Steps[i] = s
	}
	if w.ExecutedAt != nil {
		executed := *w.ExecutedAt
		c.ExecutedAt = &executed
	}
	if w.TaskIDs != nil {
		c.TaskIDs = make(map[string]string, len(w.TaskIDs))
		for k, v := range w.TaskIDs {
			c.TaskIDs[k] = v
		}
	}
	return &c
}

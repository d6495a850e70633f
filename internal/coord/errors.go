// Package coord implements the task and workflow coordination engine.
package coord

import (
	"errors"
	"fmt"
)

// Sentinel errors for the coordination engine. Callers classify
// failures with errors.Is and extract payloads with errors.As.
var (
	// ErrInvalidArgument indicates a malformed input such as an unknown
	// priority level or an out-of-range capacity value.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates an unknown task, workflow, team, or sync point ID.
	ErrNotFound = errors.New("not found")
	// ErrCycleDetected indicates a circular dependency between tasks.
	ErrCycleDetected = errors.New("circular dependency detected")
	// ErrDependencyUnmet indicates assignment was attempted before all
	// prerequisite tasks completed.
	ErrDependencyUnmet = errors.New("dependency not completed")
	// ErrCapacityExceeded indicates the agent is at its concurrency limit.
	ErrCapacityExceeded = errors.New("agent at capacity")
	// ErrAlreadyTerminal indicates a transition out of a terminal status.
	ErrAlreadyTerminal = errors.New("task already in terminal status")
)

// DependencyUnmetError reports the first dependency blocking an assignment.
type DependencyUnmetError struct {
	// TaskID is the task whose assignment was rejected.
	TaskID string
	// BlockingID is the first dependency that has not completed.
	BlockingID string
}

func (e *DependencyUnmetError) Error() string {
	return fmt.Sprintf("task %s: dependency %s not completed", e.TaskID, e.BlockingID)
}

// Unwrap lets errors.Is match ErrDependencyUnmet.
func (e *DependencyUnmetError) Unwrap() error { return ErrDependencyUnmet }

// CapacityError reports an agent's active-task count against its limit.
type CapacityError struct {
	// AgentID is the agent that is at capacity.
	AgentID string
	// Current is the number of tasks in assigned or in_progress.
	Current int
	// Limit is the agent's maximum concurrent task count.
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("agent %s at capacity (%d of %d tasks)", e.AgentID, e.Current, e.Limit)
}

// Unwrap lets errors.Is match ErrCapacityExceeded.
func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

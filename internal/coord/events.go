package coord

import (
	"log"
	"sync/atomic"
	"time"
)

// EventType represents the type of coordinator event.
type EventType string

const (
	// EventTaskCreated indicates a task entered the registry.
	EventTaskCreated EventType = "task_created"
	// EventTaskAssigned indicates a task was bound to an agent.
	EventTaskAssigned EventType = "task_assigned"
	// EventTaskStarted indicates work on a task began.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventTaskUnblocked indicates all of a task's dependencies completed.
	EventTaskUnblocked EventType = "task_unblocked"
	// EventWorkflowExecuted indicates a workflow was expanded into tasks.
	EventWorkflowExecuted EventType = "workflow_executed"
	// EventBroadcastSent indicates a broadcast was recorded.
	EventBroadcastSent EventType = "broadcast_sent"
	// EventSyncReleased indicates a sync point barrier released.
	EventSyncReleased EventType = "sync_released"
)

// Event is emitted by the coordinator as state changes. Subscribers
// such as the CLI use events to report progress.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// WorkflowID is the ID of the related workflow, if applicable.
	WorkflowID string
	// AgentID is the ID of the related agent, if applicable.
	AgentID string
	// Message provides additional context about the event.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// eventEmitter delivers events to subscribers without blocking
// coordinator operations. Events are dropped when the buffer is full.
type eventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

func newEventEmitter(bufferSize int) *eventEmitter {
	return &eventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// emit sends an event, dropping it if the channel is full. A mutation
// must never wait on a slow subscriber.
func (e *eventEmitter) emit(event Event) {
	select {
	case e.events <- event:
	default:
		count := e.droppedCount.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			log.Printf("[coord] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// dropped returns the total number of events that have been dropped.
func (e *eventEmitter) dropped() uint64 {
	return e.droppedCount.Load()
}

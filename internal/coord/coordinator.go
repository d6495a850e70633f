package coord

import (
	"fmt"
	"sync"
	"time"

	"github.com/89pl/strixer/internal/graph"
	"github.com/89pl/strixer/pkg/models"
)

// Archiver receives terminal tasks for archival outside the engine.
// The coordinator calls it after the state mutation has applied; an
// archiver failure never rolls back or fails the completion.
type Archiver interface {
	SaveResult(task *models.Task) error
}

// Coordinator owns the task, workflow, team, capacity, and sync point
// registries. Every operation is atomic under a single mutex so
// concurrent callers observe each mutation fully applied or not at all.
type Coordinator struct {
	mu sync.Mutex

	// tasks maps task ID to task; taskOrder preserves creation order
	// for deterministic listing.
	tasks     map[string]*models.Task
	taskOrder []string

	// deps mirrors task dependency edges for cycle checks and
	// dependent lookups.
	deps *graph.Graph

	workflows     map[string]*models.Workflow
	workflowOrder []string

	teams     map[string]*models.Team
	teamOrder []string

	capacities map[string]*models.Capacity

	syncPoints map[string]*models.SyncPoint
	syncOrder  []string

	broadcasts []*models.Broadcast

	// now is the injected clock; tests pin it.
	now func() time.Time

	logger  *DebugLogger
	emitter *eventEmitter
	archive Archiver

	// defaultCapacity applies to agents without a capacity record.
	defaultCapacity int
	// strictCycles upgrades the create-time cycle check from the
	// direct back-edge test to full transitive detection.
	strictCycles bool
	// autoAssign enables agent selection during workflow execution.
	autoAssign bool
}

// Option configures a Coordinator. Use With* functions to create Options.
type Option func(*Coordinator)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLogger sets the debug logger. Defaults to a no-op logger.
func WithLogger(l *DebugLogger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithArchive sets the sink that receives terminal task results.
func WithArchive(a Archiver) Option {
	return func(c *Coordinator) { c.archive = a }
}

// WithDefaultCapacity sets the concurrency limit applied to agents
// without a capacity record. Defaults to models.DefaultConcurrent.
func WithDefaultCapacity(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.defaultCapacity = n
		}
	}
}

// WithStrictCycleCheck enables full transitive cycle detection at task
// creation. The default detects only direct two-node cycles.
func WithStrictCycleCheck(strict bool) Option {
	return func(c *Coordinator) { c.strictCycles = strict }
}

// WithAutoAssign enables agent selection during workflow execution.
// When disabled (the default) expanded tasks are created unassigned.
func WithAutoAssign(auto bool) Option {
	return func(c *Coordinator) { c.autoAssign = auto }
}

// New creates a Coordinator with empty registries.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		tasks:           make(map[string]*models.Task),
		deps:            graph.New(),
		workflows:       make(map[string]*models.Workflow),
		teams:           make(map[string]*models.Team),
		capacities:      make(map[string]*models.Capacity),
		syncPoints:      make(map[string]*models.SyncPoint),
		now:             time.Now,
		logger:          NopLogger(),
		emitter:         newEventEmitter(128),
		defaultCapacity: models.DefaultConcurrent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the channel of coordinator events.
func (c *Coordinator) Events() <-chan Event {
	return c.emitter.events
}

// DroppedEventCount returns the number of events dropped because no
// subscriber drained the channel in time.
func (c *Coordinator) DroppedEventCount() uint64 {
	return c.emitter.dropped()
}

// emit stamps and sends an event without holding up the caller.
func (c *Coordinator) emit(e Event) {
	e.Timestamp = c.now()
	c.emitter.emit(e)
}

// Task returns a copy of the task with the given ID.
func (c *Coordinator) Task(id string) (*models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

// Tasks returns copies of all tasks in creation order.
func (c *Coordinator) Tasks() []*models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*models.Task, 0, len(c.taskOrder))
	for _, id := range c.taskOrder {
		out = append(out, c.tasks[id].Clone())
	}
	return out
}

// Workflow returns a copy of the workflow with the given ID.
func (c *Coordinator) Workflow(id string) (*models.Workflow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %q: %w", id, ErrNotFound)
	}
	return w.Clone(), nil
}

// Team returns a copy of the team with the given ID.
func (c *Coordinator) Team(id string) (*models.Team, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %q: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

// SyncPoint returns a copy of the sync point with the given ID.
func (c *Coordinator) SyncPoint(id string) (*models.SyncPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.syncPoints[id]
	if !ok {
		return nil, fmt.Errorf("sync point %q: %w", id, ErrNotFound)
	}
	return s.Clone(), nil
}

package coord

import (
	"fmt"

	"github.com/89pl/strixer/pkg/models"
)

// CreateSyncPoint registers a rendezvous barrier that releases once
// every required agent has checked in.
func (c *Coordinator) CreateSyncPoint(name string, requiredAgents []string, description string) (*models.SyncPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(requiredAgents) == 0 {
		return nil, fmt.Errorf("sync point %q needs at least one required agent: %w", name, ErrInvalidArgument)
	}

	id := newID(syncIDPrefix)
	sp := &models.SyncPoint{
		ID:             id,
		Name:           name,
		Description:    description,
		RequiredAgents: append([]string(nil), requiredAgents...),
		CheckedIn:      []string{},
		Status:         models.SyncStatusWaiting,
		CreatedAt:      c.now(),
	}

	c.syncPoints[id] = sp
	c.syncOrder = append(c.syncOrder, id)

	c.logger.Log("[coord] created sync point %s: %s (waiting for %d agents)", id, name, len(requiredAgents))

	return sp.Clone(), nil
}

// CheckIn records an agent's arrival at a sync point. Checking in twice
// is a no-op. When the checked-in set covers the required set the
// barrier releases.
func (c *Coordinator) CheckIn(syncID, agentID string) (*models.SyncPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sp, ok := c.syncPoints[syncID]
	if !ok {
		return nil, fmt.Errorf("sync point %q: %w", syncID, ErrNotFound)
	}

	required := false
	for _, id := range sp.RequiredAgents {
		if id == agentID {
			required = true
			break
		}
	}
	if !required {
		return nil, fmt.Errorf("agent %q is not required at sync point %q: %w", agentID, syncID, ErrInvalidArgument)
	}

	already := false
	for _, id := range sp.CheckedIn {
		if id == agentID {
			already = true
			break
		}
	}
	if !already {
		sp.CheckedIn = append(sp.CheckedIn, agentID)
	}

	if sp.Status == models.SyncStatusWaiting && len(sp.Remaining()) == 0 {
		now := c.now()
		sp.Status = models.SyncStatusReleased
		sp.ReleasedAt = &now
		c.logger.Log("[coord] sync point %s released", syncID)
		c.emit(Event{Type: EventSyncReleased, AgentID: agentID, Message: sp.Name})
	}

	return sp.Clone(), nil
}

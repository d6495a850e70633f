package models

import "time"

// SyncStatus represents the state of a sync point barrier.
type SyncStatus string

const (
	// SyncStatusWaiting indicates not all required agents have checked in.
	SyncStatusWaiting SyncStatus = "waiting"
	// SyncStatusReleased indicates every required agent has checked in.
	SyncStatusReleased SyncStatus = "released"
)

// SyncPoint is a named rendezvous barrier. It releases once every
// required agent has checked in.
type SyncPoint struct {
	// ID is the unique identifier for this sync point.
	ID string `json:"id"`
	// Name is the sync point name.
	Name string `json:"name"`
	// Description provides detail about what the barrier coordinates.
	Description string `json:"description,omitempty"`
	// RequiredAgents lists agent IDs that must check in.
	RequiredAgents []string `json:"required_agents"`
	// CheckedIn lists agents that have checked in so far, in check-in order.
	CheckedIn []string `json:"checked_in"`
	// Status is waiting until all required agents have checked in.
	Status SyncStatus `json:"status"`
	// CreatedAt is when the sync point was created.
	CreatedAt time.Time `json:"created_at"`
	// ReleasedAt is when the barrier released, if it has.
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

// Remaining returns the required agents that have not checked in yet.
func (s *SyncPoint) Remaining() []string {
	checked := make(map[string]bool, len(s.CheckedIn))
	for _, id := range s.CheckedIn {
		checked[id] = true
	}
	var remaining []string
	for _, id := range s.RequiredAgents {
		if !checked[id] {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

// Clone returns a deep copy of the sync point.
func (s *SyncPoint) Clone() *SyncPoint {
	if s == nil {
		return nil
	}
	c := *s
	c.RequiredAgents = append([]string(nil), s.RequiredAgents...)
	c.CheckedIn = append([]string(nil), s.CheckedIn...)
	if s.ReleasedAt != nil {
		released := *s.ReleasedAt
		c.ReleasedAt = &released
	}
	return &c
}

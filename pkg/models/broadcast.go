package models

import "time"

// Broadcast is an immutable record of a one-to-many message and its
// resolved recipient set.
type Broadcast struct {
	// ID is the unique identifier for this message.
	ID string `json:"id"`
	// Message is the broadcast content.
	Message string `json:"message"`
	// Priority is the message priority.
	Priority Priority `json:"priority"`
	// Recipients is the deduplicated union of the explicit targets and
	// the named team's members, sorted for deterministic output.
	Recipients []string `json:"recipients"`
	// TeamID is the team the message was addressed to, if any.
	TeamID string `json:"team_id,omitempty"`
	// SentAt is when the broadcast was recorded.
	SentAt time.Time `json:"sent_at"`
}

// Clone returns a deep copy of the broadcast.
func (b *Broadcast) Clone() *Broadcast {
	if b == nil {
		return nil
	}
	c := *b
	c.Recipients = append([]string(nil), b.Recipients...)
	return &c
}

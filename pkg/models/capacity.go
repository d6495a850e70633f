package models

import "time"

const (
	// MinConcurrent is the lowest allowed per-agent concurrency limit.
	MinConcurrent = 1
	// MaxConcurrent is the highest allowed per-agent concurrency limit.
	MaxConcurrent = 20
	// DefaultConcurrent is the limit applied to agents with no capacity record.
	DefaultConcurrent = 5
)

// Capacity records the maximum number of concurrently active tasks
// permitted for one agent. Agents without a record fall back to the
// engine default.
type Capacity struct {
	// AgentID identifies the agent this record applies to.
	AgentID string `json:"agent_id"`
	// MaxConcurrent is the concurrency limit, between MinConcurrent and MaxConcurrent.
	MaxConcurrent int `json:"max_concurrent"`
	// UpdatedAt is when the record was last set.
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

// DefaultRole is the role assigned to team members when none is specified.
const DefaultRole = "member"

// Team is a named group of agents that can be broadcast to as a unit.
// Membership is fixed at creation.
type Team struct {
	// ID is the unique identifier for this team.
	ID string `json:"id"`
	// Name is the team name.
	Name string `json:"name"`
	// Description provides detail about the team's purpose.
	Description string `json:"description,omitempty"`
	// Members lists agent IDs in the order they were added.
	Members []string `json:"members"`
	// Roles maps each member to its role label.
	Roles map[string]string `json:"roles"`
	// CreatedAt is when the team was created.
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the team.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Members = append([]string(nil), t.Members...)
	c.Roles = make(map[string]string, len(t.Roles))
	for k, v := range t.Roles {
		c.Roles[k] = v
	}
	return &c
}

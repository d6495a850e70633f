package coord

import (
	"fmt"
	"sort"

	"github.com/89pl/strixer/pkg/models"
)

// CreateTeam registers a named group of agents. Every member gets the
// default role. Membership is fixed at creation.
func (c *Coordinator) CreateTeam(name string, members []string, description string) (*models.Team, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := newID(teamIDPrefix)
	team := &models.Team{
		ID:          id,
		Name:        name,
		Description: description,
		Members:     make([]string, 0, len(members)),
		Roles:       make(map[string]string, len(members)),
		CreatedAt:   c.now(),
	}
	for _, member := range members {
		team.Members = append(team.Members, member)
		team.Roles[member] = models.DefaultRole
	}

	c.teams[id] = team
	c.teamOrder = append(c.teamOrder, id)

	c.logger.Log("[coord] created team %s: %s (%d members)", id, name, len(members))

	return team.Clone(), nil
}

// Broadcast records a message addressed to the union of the explicit
// targets and the named team's members. An unknown or empty team ID
// contributes no recipients and is not an error; an empty recipient set
// is a valid broadcast.
func (c *Coordinator) Broadcast(message string, targetAgents []string, teamID string, priority models.Priority) (*models.Broadcast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("priority %q must be one of %v: %w", priority, models.Priorities, ErrInvalidArgument)
	}

	seen := make(map[string]bool)
	var recipients []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}
	for _, id := range targetAgents {
		add(id)
	}
	if team, ok := c.teams[teamID]; ok {
		for _, member := range team.Members {
			add(member)
		}
	}
	sort.Strings(recipients)

	msg := &models.Broadcast{
		ID:         newID(broadcastIDPrefix),
		Message:    message,
		Priority:   priority,
		Recipients: recipients,
		TeamID:     teamID,
		SentAt:     c.now(),
	}
	c.broadcasts = append(c.broadcasts, msg)

	c.logger.Log("[coord] broadcast %s to %d recipients", msg.ID, len(recipients))
	c.emit(Event{Type: EventBroadcastSent, Message: message})

	return msg.Clone(), nil
}

// Broadcasts returns copies of all recorded broadcasts in send order.
func (c *Coordinator) Broadcasts() []*models.Broadcast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*models.Broadcast, 0, len(c.broadcasts))
	for _, b := range c.broadcasts {
		out = append(out, b.Clone())
	}
	return out
}

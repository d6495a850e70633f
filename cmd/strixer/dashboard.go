package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/89pl/strixer/internal/coord"
	"github.com/89pl/strixer/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// renderDashboard formats a coordination snapshot for terminal output.
func renderDashboard(d *coord.Dashboard) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Coordination Dashboard"))
	b.WriteString("\n")

	var tasks strings.Builder
	fmt.Fprintf(&tasks, "%s %d\n", labelStyle.Render("Tasks:"), d.TaskTotal)
	for _, status := range []models.TaskStatus{
		models.TaskStatusPending, models.TaskStatusAssigned, models.TaskStatusInProgress,
		models.TaskStatusBlocked, models.TaskStatusCompleted, models.TaskStatusFailed,
	} {
		if n := d.TasksByStatus[status]; n > 0 {
			fmt.Fprintf(&tasks, "  %-12s %d\n", status, n)
		}
	}
	for _, priority := range models.Priorities {
		if n := d.TasksByPriority[priority]; n > 0 {
			fmt.Fprintf(&tasks, "  %-12s %d (open)\n", priority, n)
		}
	}
	b.WriteString(boxStyle.Render(strings.TrimRight(tasks.String(), "\n")))
	b.WriteString("\n")

	var rest strings.Builder
	fmt.Fprintf(&rest, "%s %d defined, %d executing\n", labelStyle.Render("Workflows:"), d.WorkflowTotal, d.WorkflowsExecuting)
	fmt.Fprintf(&rest, "%s %d teams, %d members\n", labelStyle.Render("Teams:"), d.TeamTotal, d.TeamMembers)
	fmt.Fprintf(&rest, "%s %d sent\n", labelStyle.Render("Broadcasts:"), d.BroadcastTotal)
	fmt.Fprintf(&rest, "%s %d (%d waiting)", labelStyle.Render("Sync points:"), d.SyncPointTotal, d.SyncPointsWaiting)
	b.WriteString(boxStyle.Render(rest.String()))

	if len(d.AgentWorkloads) > 0 {
		agents := make([]string, 0, len(d.AgentWorkloads))
		for agentID := range d.AgentWorkloads {
			agents = append(agents, agentID)
		}
		sort.Strings(agents)

		var loads strings.Builder
		loads.WriteString(labelStyle.Render("Agent workloads:"))
		for _, agentID := range agents {
			fmt.Fprintf(&loads, "\n  %-16s %d active", agentID, d.AgentWorkloads[agentID])
		}
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(loads.String()))
	}

	return b.String()
}

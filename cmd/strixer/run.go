package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/89pl/strixer/internal/archive"
	"github.com/89pl/strixer/internal/config"
	"github.com/89pl/strixer/internal/coord"
	"github.com/89pl/strixer/internal/planfile"
	"github.com/89pl/strixer/pkg/models"
)

var (
	runAgents   []string
	runCapacity int
)

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Expand a workflow plan and assign its ready tasks",
	Long: `Load a workflow plan from YAML, expand it into dependency-linked
tasks, and assign every task whose dependencies are met to the given
agent roster under per-agent capacity limits.

Tasks with unmet dependencies stay pending; completing a task unblocks
its dependents for a later assignment pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	runCmd.Flags().StringSliceVar(&runAgents, "agents", nil, "Agent roster to assign ready tasks to")
	runCmd.Flags().IntVar(&runCapacity, "capacity", 0, "Per-agent capacity limit for the roster (default: engine default)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	plan, err := planfile.Load(args[0])
	if err != nil {
		return err
	}

	logger, err := coord.NewDebugLogger(cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer logger.Close()

	opts := []coord.Option{
		coord.WithLogger(logger),
		coord.WithDefaultCapacity(cfg.Defaults.Capacity),
		coord.WithStrictCycleCheck(cfg.Engine.StrictCycleCheck),
		coord.WithAutoAssign(cfg.Engine.AutoAssign),
	}

	if cfg.Archive.Path != "" {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}
		opts = append(opts, coord.WithArchive(store))
	}

	engine := coord.New(opts...)

	for _, agentID := range runAgents {
		if runCapacity > 0 {
			if _, err := engine.SetCapacity(agentID, runCapacity); err != nil {
				return fmt.Errorf("set capacity for %s: %w", agentID, err)
			}
		}
	}

	wf, err := engine.DefineWorkflow(plan.Name, plan.Description, plan.Steps)
	if err != nil {
		return fmt.Errorf("define workflow: %w", err)
	}

	result, err := engine.ExecuteWorkflow(wf.ID)
	if err != nil {
		return fmt.Errorf("execute workflow: %w", err)
	}

	printStatus("✓", fmt.Sprintf("Workflow %q expanded into %d tasks", plan.Name, len(result.CreatedTaskIDs)), color.FgGreen)

	assignReadyTasks(engine, result.CreatedTaskIDs)

	fmt.Println()
	fmt.Println(renderDashboard(engine.Dashboard()))
	return nil
}

// assignReadyTasks offers each created task to the roster, round-robin
// across agents, skipping tasks whose dependencies are unmet and agents
// that are at capacity.
func assignReadyTasks(engine *coord.Coordinator, taskIDs []string) {
	if len(runAgents) == 0 {
		printStatus("⚠", "No agent roster given (--agents); tasks left unassigned", color.FgYellow)
		return
	}

	next := 0
	for _, taskID := range taskIDs {
		task, err := engine.Task(taskID)
		if err != nil || task.Status != models.TaskStatusPending {
			continue
		}

		assigned := false
		for tries := 0; tries < len(runAgents); tries++ {
			agentID := runAgents[next%len(runAgents)]
			next++

			_, err := engine.AssignTask(taskID, agentID, false)
			if err == nil {
				printStatus("✓", fmt.Sprintf("%s → %s (%s)", taskID, agentID, task.Title), color.FgGreen)
				assigned = true
				break
			}
			if errors.Is(err, coord.ErrDependencyUnmet) {
				printStatus("•", fmt.Sprintf("%s waiting on dependencies (%s)", taskID, task.Title), color.FgCyan)
				assigned = true // not assignable yet; don't try other agents
				break
			}
			// Capacity exceeded: try the next agent in the roster.
		}
		if !assigned {
			printStatus("⚠", fmt.Sprintf("%s: all agents at capacity (%s)", taskID, task.Title), color.FgYellow)
		}
	}
}

// printStatus prints a colored status glyph followed by a message.
func printStatus(glyph, message string, attr color.Attribute) {
	color.New(attr).Printf("%s ", glyph)
	fmt.Println(message)
}

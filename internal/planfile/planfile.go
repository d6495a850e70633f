// Package planfile parses YAML workflow definitions for the strixer CLI.
package planfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/89pl/strixer/pkg/models"
)

// Plan is a workflow definition loaded from a YAML file.
type Plan struct {
	// Name is the workflow name. Required.
	Name string `yaml:"name"`
	// Description provides detail about the workflow.
	Description string `yaml:"description"`
	// Steps are the ordered step definitions. Required, non-empty.
	Steps []models.WorkflowStep `yaml:"steps"`
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return plan, nil
}

// Parse parses plan YAML and validates its shape: a name, at least one
// step, unique non-empty step names, and known priorities. Dependency
// references are not resolved here; the engine handles those at
// execution time.
func Parse(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}

	if plan.Name == "" {
		return nil, fmt.Errorf("plan has no name")
	}
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("plan %q has no steps", plan.Name)
	}

	seen := make(map[string]bool, len(plan.Steps))
	for i, step := range plan.Steps {
		if step.Name == "" {
			return nil, fmt.Errorf("step %d has no name", i+1)
		}
		if seen[step.Name] {
			return nil, fmt.Errorf("duplicate step name %q", step.Name)
		}
		seen[step.Name] = true

		if step.Priority != "" && !step.Priority.Valid() {
			return nil, fmt.Errorf("step %q has unknown priority %q", step.Name, step.Priority)
		}
	}

	return &plan, nil
}

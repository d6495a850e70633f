package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/89pl/strixer/internal/archive"
	"github.com/89pl/strixer/internal/config"
	"github.com/89pl/strixer/pkg/models"
)

var resultsPurge time.Duration

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List archived task results",
	Long: `Show completed and failed task results from the archive database.

The archive path comes from the configuration (archive.path) or the
STRIXER_ARCHIVE_PATH environment variable.`,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().DurationVar(&resultsPurge, "purge", 0, "Delete results older than this duration (e.g. 720h) before listing")
}

func runResults(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Archive.Path == "" {
		fmt.Println("No archive configured. Set archive.path in config or STRIXER_ARCHIVE_PATH.")
		return nil
	}

	store, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}

	if resultsPurge > 0 {
		deleted, err := store.Purge(resultsPurge)
		if err != nil {
			return fmt.Errorf("purge archive: %w", err)
		}
		printStatus("✓", fmt.Sprintf("Purged %d results older than %s", deleted, resultsPurge), color.FgGreen)
	}

	results, err := store.Results()
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No archived results.")
		return nil
	}

	for _, r := range results {
		glyph, attr := "✓", color.FgGreen
		if r.Status == models.TaskStatusFailed {
			glyph, attr = "✗", color.FgRed
		}
		printStatus(glyph, fmt.Sprintf("%s  %-10s %s  %s",
			r.CompletedAt.Format("2006-01-02 15:04"), r.Priority, r.TaskID, r.Title), attr)
		if r.Result != "" {
			fmt.Printf("    %s\n", r.Result)
		}
	}
	return nil
}

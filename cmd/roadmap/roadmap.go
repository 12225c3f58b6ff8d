// Package roadmap provides the roadmap command for generating ROADMAP.md
package roadmap

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/roadmap"
)

// Command creates the roadmap command.
func Command(settings *conf.Settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Generate a Markdown roadmap of all projects",
		Long:  "Write a ROADMAP.md overview of every project, grouped by status with a summary table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoadmap(settings, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", roadmap.DefaultFilename, "Output file path")

	return cmd
}

func runRoadmap(settings *conf.Settings, output string) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	doc, err := roadmap.New(store).Generate()
	if err != nil {
		return err
	}

	if doc.Total == 0 {
		fmt.Println("No projects found. Create some projects first!")
		return nil
	}

	written, err := roadmap.Write(doc, output)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(written)
	if err != nil {
		abs = written
	}
	fmt.Printf("Roadmap generated: %s\n", abs)
	fmt.Printf("  Projects: %d\n", doc.Total)
	fmt.Printf("  Active: %d, Ideas: %d, Paused: %d, Archived: %d\n",
		doc.Counts[datastore.StatusActive],
		doc.Counts[datastore.StatusIdea],
		doc.Counts[datastore.StatusPaused],
		doc.Counts[datastore.StatusArchived])
	return nil
}

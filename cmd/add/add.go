// Package add provides the add command for creating projects
package add

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// Command creates the add command for registering a new project. The
// original tracker prompted for every field; here the optional fields are
// flags so the command works in scripts and shell history.
func Command(settings *conf.Settings) *cobra.Command {
	project := &datastore.Project{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new project",
		Long:  "Create a new project. The name is required; everything else is optional and can be filled in later with update.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project.Name = args[0]
			return runAdd(settings, project)
		},
	}

	setupFlags(cmd, project)

	return cmd
}

// setupFlags configures the optional project fields accepted by add.
func setupFlags(cmd *cobra.Command, project *datastore.Project) {
	cmd.Flags().StringVar(&project.Description, "description", "", "Short description of the project")
	cmd.Flags().StringVar(&project.Status, "status", datastore.StatusIdea, "Project status: idea, active, paused or archived")
	cmd.Flags().StringVar(&project.ProjectType, "type", "", "Project type: web, cli, library, homelab or research")
	cmd.Flags().StringVar(&project.PrimaryLanguage, "language", "", "Primary programming language")
	cmd.Flags().StringVar(&project.Stack, "stack", "", "Tech stack, frameworks and tools")
	cmd.Flags().StringVar(&project.RepoURL, "repo", "", "Repository URL")
	cmd.Flags().StringVar(&project.LocalPath, "path", "", "Local working copy path")
	cmd.Flags().StringVar(&project.ScopeSize, "scope", "", "Scope size: tiny, medium or long-haul")
	cmd.Flags().StringVar(&project.LearningGoal, "goal", "", "What you want to learn from this project")
}

func runAdd(settings *conf.Settings, project *datastore.Project) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateProject(project); err != nil {
		return err
	}

	fmt.Printf("Project created with ID: %d\n", project.ID)
	fmt.Printf("  Name: %s\n", project.Name)
	fmt.Printf("  Status: %s\n", project.Status)
	if project.ProjectType != "" {
		fmt.Printf("  Type: %s\n", project.ProjectType)
	}
	return nil
}

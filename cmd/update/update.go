// Package update provides the update command for editing project fields
package update

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// fieldFlags maps each flag name to the storage field it updates. Only
// flags the user actually set end up in the update, so an empty value can
// clear an optional field without touching the others.
var fieldFlags = map[string]string{
	"name":        "name",
	"description": "description",
	"status":      "status",
	"type":        "project_type",
	"language":    "primary_language",
	"stack":       "stack",
	"repo":        "repo_url",
	"path":        "local_path",
	"scope":       "scope_size",
	"goal":        "learning_goal",
}

// Command creates the update command.
func Command(settings *conf.Settings) *cobra.Command {
	var archived bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update project fields",
		Long:  "Update one or more project fields. Only the flags you pass change; everything else keeps its value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid project ID %q", args[0])
			}
			return runUpdate(settings, uint(id), buildUpdates(cmd.Flags(), archived))
		},
	}

	cmd.Flags().String("name", "", "Project name")
	cmd.Flags().String("description", "", "Short description of the project")
	cmd.Flags().String("status", "", "Project status: idea, active, paused or archived")
	cmd.Flags().String("type", "", "Project type: web, cli, library, homelab or research")
	cmd.Flags().String("language", "", "Primary programming language")
	cmd.Flags().String("stack", "", "Tech stack, frameworks and tools")
	cmd.Flags().String("repo", "", "Repository URL")
	cmd.Flags().String("path", "", "Local working copy path")
	cmd.Flags().String("scope", "", "Scope size: tiny, medium or long-haul")
	cmd.Flags().String("goal", "", "What you want to learn from this project")
	cmd.Flags().BoolVar(&archived, "archived", false, "Hide or unhide the project in listings")

	return cmd
}

// buildUpdates collects the changed flags into the partial update map the
// storage contract expects.
func buildUpdates(flags *pflag.FlagSet, archived bool) map[string]any {
	updates := make(map[string]any)
	for flagName, field := range fieldFlags {
		if flags.Changed(flagName) {
			value, _ := flags.GetString(flagName)
			updates[field] = value
		}
	}
	if flags.Changed("archived") {
		updates["is_archived"] = archived
	}
	return updates
}

func runUpdate(settings *conf.Settings, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		fmt.Println("No changes made; pass at least one field flag")
		return nil
	}

	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	project, err := store.UpdateProject(id, updates)
	if err != nil {
		return err
	}

	fmt.Printf("Project %d updated (%d fields)\n", project.ID, len(updates))
	fmt.Printf("  Name: %s\n", project.Name)
	fmt.Printf("  Status: %s\n", project.Status)
	return nil
}

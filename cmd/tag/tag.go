// Package tag provides the tag command group for labeling projects
package tag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// Command creates the tag parent command with its add, remove, and list
// subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage project tags",
		Long:  "Attach tags to projects, detach them, and browse the tag catalog.",
	}

	tagCmd.AddCommand(addCommand(settings))
	tagCmd.AddCommand(removeCommand(settings))
	tagCmd.AddCommand(listCommand(settings))

	return tagCmd
}

// normalizeTagName trims and lowercases a tag name. The store compares
// names verbatim; normalization is a boundary concern shared with the HTTP
// API so "Python" and "python" land on the same tag.
func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// parseProjectID parses a project ID argument.
func parseProjectID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid project ID %q", arg)
	}
	return uint(id), nil
}

func addCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "add <project_id> <name>",
		Short: "Add a tag to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			return runAdd(settings, id, normalizeTagName(args[1]))
		},
	}
}

func removeCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project_id> <name>",
		Short: "Remove a tag from a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			return runRemove(settings, id, normalizeTagName(args[1]))
		},
	}
}

func listCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list [project_id]",
		Short: "List all tags, or one project's tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListAll(settings)
			}
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			return runListProject(settings, id)
		},
	}
}

func runAdd(settings *conf.Settings, projectID uint, name string) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	added, err := store.AddProjectTag(projectID, name)
	if err != nil {
		return err
	}

	if added {
		fmt.Printf("Tag '%s' added to project %d\n", name, projectID)
	} else {
		fmt.Printf("Tag '%s' already on project %d\n", name, projectID)
	}
	return nil
}

func runRemove(settings *conf.Settings, projectID uint, name string) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.RemoveProjectTag(projectID, name); err != nil {
		return err
	}

	fmt.Printf("Tag '%s' removed from project %d\n", name, projectID)
	return nil
}

func runListAll(settings *conf.Settings) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tags, err := store.ListTags()
	if err != nil {
		return err
	}

	if len(tags) == 0 {
		fmt.Println("No tags found. Create one by adding it to a project:")
		fmt.Println("  projtrack tag add <project_id> <name>")
		return nil
	}

	fmt.Println("\nAll Tags:")
	fmt.Println(strings.Repeat("=", 80))
	for _, tag := range tags {
		plural := "projects"
		if tag.ProjectCount == 1 {
			plural = "project"
		}
		fmt.Printf("  • %s (%d %s)\n", tag.Name, tag.ProjectCount, plural)
	}
	fmt.Println()
	return nil
}

func runListProject(settings *conf.Settings, projectID uint) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	names, err := store.ListProjectTags(projectID)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Printf("No tags on project %d\n", projectID)
		fmt.Printf("Add one with: projtrack tag add %d <name>\n", projectID)
		return nil
	}

	fmt.Printf("\nTags for project %d:\n", projectID)
	fmt.Println(strings.Repeat("=", 80))
	for _, name := range names {
		fmt.Printf("  • %s\n", name)
	}
	fmt.Println()
	return nil
}

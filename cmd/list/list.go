// Package list provides the list command for browsing projects
package list

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// Command creates the list command. Filters combine with AND; sorting and
// pagination pass straight through to the storage contract.
func Command(settings *conf.Settings) *cobra.Command {
	var query datastore.ProjectQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long:  "List projects, optionally filtered by status and tag. Archived projects are hidden.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(settings, &query)
		},
	}

	cmd.Flags().StringVar(&query.Status, "status", "", "Filter by status: idea, active, paused or archived")
	cmd.Flags().StringVar(&query.Tag, "tag", "", "Filter by tag name")
	cmd.Flags().StringVar(&query.SortBy, "sort", "", "Sort by: name, created_at, last_worked_at or status")
	cmd.Flags().StringVar(&query.SortOrder, "order", "", "Sort order: asc or desc")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Maximum number of projects to show, 0 shows all")
	cmd.Flags().IntVar(&query.Offset, "offset", 0, "Number of projects to skip, used with --limit")

	return cmd
}

func runList(settings *conf.Settings, query *datastore.ProjectQuery) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projects, total, err := store.ListProjects(*query)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		switch {
		case query.Tag != "" && query.Status != "":
			fmt.Printf("No projects with status '%s' and tag '%s'\n", query.Status, query.Tag)
		case query.Tag != "":
			fmt.Printf("No projects with tag: %s\n", query.Tag)
		case query.Status != "":
			fmt.Printf("No projects with status: %s\n", query.Status)
		default:
			fmt.Println("No projects found. Create one with: projtrack add <name>")
		}
		return nil
	}

	printHeader(query)
	for i := range projects {
		printProject(store, &projects[i])
	}

	fmt.Println()
	if int64(len(projects)) < total {
		fmt.Printf("Showing %d of %d projects\n", len(projects), total)
	} else {
		fmt.Printf("%d projects\n", total)
	}
	return nil
}

// printHeader prints the listing title with the active filters.
func printHeader(query *datastore.ProjectQuery) {
	var filters []string
	if query.Status != "" {
		filters = append(filters, "status="+query.Status)
	}
	if query.Tag != "" {
		filters = append(filters, "tag="+query.Tag)
	}

	if len(filters) > 0 {
		fmt.Printf("\nProjects (%s):\n", strings.Join(filters, ", "))
	} else {
		fmt.Println("\nAll Projects:")
	}
	fmt.Println(strings.Repeat("=", 80))
}

// printProject prints one listing entry: id, name, a metadata line, the
// description, tags, and the most useful timestamp.
func printProject(store datastore.Interface, p *datastore.Project) {
	fmt.Printf("\n[%d] %s\n", p.ID, p.Name)

	meta := []string{"Status: " + p.Status}
	if p.ProjectType != "" {
		meta = append(meta, "Type: "+p.ProjectType)
	}
	if p.PrimaryLanguage != "" {
		meta = append(meta, "Language: "+p.PrimaryLanguage)
	}
	fmt.Printf("    %s\n", strings.Join(meta, " | "))

	if p.Description != "" {
		fmt.Printf("    %s\n", p.Description)
	}

	// Tag lookup failures degrade to an entry without tags rather than
	// aborting the whole listing.
	if tags, err := store.ListProjectTags(p.ID); err == nil && len(tags) > 0 {
		fmt.Printf("    Tags: %s\n", strings.Join(tags, ", "))
	}

	if p.LastWorkedAt != nil && !p.LastWorkedAt.IsZero() {
		fmt.Printf("    Last worked: %s\n", p.LastWorkedAt.Format("2006-01-02 15:04"))
	} else {
		fmt.Printf("    Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// Package search provides the search command for finding projects by text
package search

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// Command creates the search command. The query matches project names,
// descriptions, languages, stacks, learning goals, types, tag names, and
// note content, case-insensitively.
func Command(settings *conf.Settings) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search projects by text",
		Long:  "Search project fields, tags, and notes for a text fragment. Multiple words are treated as one phrase.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(settings, strings.Join(args, " "), status)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Restrict matches to one status")

	return cmd
}

func runSearch(settings *conf.Settings, query, status string) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projects, err := store.SearchProjects(query, status)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Printf("No projects matching %q\n", query)
		return nil
	}

	fmt.Printf("\nProjects matching %q:\n", query)
	fmt.Println(strings.Repeat("=", 80))

	for i := range projects {
		p := &projects[i]
		fmt.Printf("\n[%d] %s\n", p.ID, p.Name)

		meta := []string{"Status: " + p.Status}
		if p.PrimaryLanguage != "" {
			meta = append(meta, "Language: "+p.PrimaryLanguage)
		}
		fmt.Printf("    %s\n", strings.Join(meta, " | "))

		if p.Description != "" {
			fmt.Printf("    %s\n", p.Description)
		}
	}

	fmt.Printf("\n%d matches\n", len(projects))
	return nil
}

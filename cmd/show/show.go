// Package show provides the show command for displaying project details
package show

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// recentNoteLimit is how many notes the detail view shows before pointing
// at note list.
const recentNoteLimit = 5

// noteEmoji marks each note type in compact listings.
var noteEmoji = map[string]string{
	datastore.NoteLog:        "📋",
	datastore.NoteIdea:       "💡",
	datastore.NoteBlocker:    "🚧",
	datastore.NoteReflection: "🤔",
}

// Command creates the show command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show full project details",
		Long:  "Show a project's fields, tags, relationships, and most recent notes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid project ID %q", args[0])
			}
			return runShow(settings, uint(id))
		},
	}
}

func runShow(settings *conf.Settings, id uint) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	project, err := store.GetProject(id)
	if err != nil {
		return err
	}

	fmt.Printf("\nProject: %s\n", project.Name)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("ID: %d\n", project.ID)
	fmt.Printf("Status: %s\n", project.Status)
	if project.IsArchived {
		fmt.Println("Archived: yes")
	}

	if project.Description != "" {
		fmt.Printf("\nDescription:\n  %s\n", project.Description)
	}

	printMetadata(store, project)
	printLocation(project)
	printTimestamps(project)
	printRelationships(store, id)
	printRecentNotes(store, id)

	fmt.Println()
	return nil
}

// printMetadata prints the optional descriptive fields plus tags, skipping
// whatever is unset.
func printMetadata(store datastore.Interface, p *datastore.Project) {
	fmt.Println("\nMetadata:")
	if p.ProjectType != "" {
		fmt.Printf("  Type: %s\n", p.ProjectType)
	}
	if p.PrimaryLanguage != "" {
		fmt.Printf("  Language: %s\n", p.PrimaryLanguage)
	}
	if p.Stack != "" {
		fmt.Printf("  Stack: %s\n", p.Stack)
	}
	if p.ScopeSize != "" {
		fmt.Printf("  Scope: %s\n", p.ScopeSize)
	}
	if p.LearningGoal != "" {
		fmt.Printf("  Learning Goal: %s\n", p.LearningGoal)
	}
	if tags, err := store.ListProjectTags(p.ID); err == nil && len(tags) > 0 {
		fmt.Printf("  Tags: %s\n", strings.Join(tags, ", "))
	}
}

func printLocation(p *datastore.Project) {
	if p.RepoURL == "" && p.LocalPath == "" {
		return
	}
	fmt.Println("\nLocation:")
	if p.RepoURL != "" {
		fmt.Printf("  Repository: %s\n", p.RepoURL)
	}
	if p.LocalPath != "" {
		fmt.Printf("  Local: %s\n", p.LocalPath)
	}
}

func printTimestamps(p *datastore.Project) {
	fmt.Println("\nTimestamps:")
	fmt.Printf("  Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	if p.LastWorkedAt != nil && !p.LastWorkedAt.IsZero() {
		fmt.Printf("  Last Worked: %s\n", p.LastWorkedAt.Format("2006-01-02 15:04:05"))
	}
}

// printRelationships lists the project's links to other projects, outgoing
// first. The arrow direction shows which side this project is on.
func printRelationships(store datastore.Interface, id uint) {
	relations, err := store.ListRelationships(id)
	if err != nil || len(relations) == 0 {
		return
	}

	fmt.Println("\nRelated Projects:")
	for i := range relations {
		rel := &relations[i]
		label := strings.ReplaceAll(rel.RelationshipType, "_", " ")
		if rel.Direction == datastore.DirectionOutgoing {
			fmt.Printf("  → %s [%d] (%s)\n", rel.RelatedName, rel.RelatedProjectID, label)
		} else {
			fmt.Printf("  ← %s [%d] (%s)\n", rel.RelatedName, rel.RelatedProjectID, label)
		}
	}
}

// printRecentNotes shows the newest notes with a one-line preview each.
func printRecentNotes(store datastore.Interface, id uint) {
	notes, err := store.ListNotes(id, "", recentNoteLimit)
	if err != nil || len(notes) == 0 {
		return
	}

	fmt.Println("\nRecent Notes:")
	fmt.Println("  " + strings.Repeat("=", 76))
	for i := range notes {
		note := &notes[i]
		emoji, ok := noteEmoji[note.NoteType]
		if !ok {
			emoji = "📝"
		}
		fmt.Printf("  [%d] %s %s - %s\n", note.ID, emoji, note.NoteType, note.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("      %s\n", preview(note.Content, 60))
	}
	fmt.Printf("\n  Run 'projtrack note list %d' to see all notes\n", id)
}

// preview collapses a note body to a single trimmed line.
func preview(content string, limit int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if len(flat) <= limit {
		return flat
	}
	return flat[:limit-3] + "..."
}

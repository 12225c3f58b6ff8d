// Package note provides the note command group for project notes
package note

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// noteEmoji marks each note type in listings.
var noteEmoji = map[string]string{
	datastore.NoteLog:        "📋",
	datastore.NoteIdea:       "💡",
	datastore.NoteBlocker:    "🚧",
	datastore.NoteReflection: "🤔",
}

// Command creates the note parent command with its add, list, show, and
// delete subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Manage project notes",
		Long:  "Attach timestamped notes to projects: work logs, ideas, blockers, and reflections.",
	}

	noteCmd.AddCommand(addCommand(settings))
	noteCmd.AddCommand(listCommand(settings))
	noteCmd.AddCommand(showCommand(settings))
	noteCmd.AddCommand(deleteCommand(settings))

	return noteCmd
}

// parseID parses a numeric ID argument.
func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID %q", what, arg)
	}
	return uint(id), nil
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var noteType string

	cmd := &cobra.Command{
		Use:   "add <project_id> <content>...",
		Short: "Add a note to a project",
		Long:  "Add a note to a project. Content words after the ID are joined into one note body.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			return runAdd(settings, id, strings.Join(args[1:], " "), noteType)
		},
	}

	cmd.Flags().StringVar(&noteType, "type", datastore.NoteLog, "Note type: log, idea, blocker or reflection")

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var noteType string
	var limit int

	cmd := &cobra.Command{
		Use:   "list <project_id>",
		Short: "List a project's notes, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			return runList(settings, id, noteType, limit)
		},
	}

	cmd.Flags().StringVar(&noteType, "type", "", "Filter by note type: log, idea, blocker or reflection")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of notes to show, 0 shows all")

	return cmd
}

func showCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show <note_id>",
		Short: "Show a note's full content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			return runShow(settings, id)
		},
	}
}

func deleteCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note_id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			return runDelete(settings, id)
		},
	}
}

func runAdd(settings *conf.Settings, projectID uint, content, noteType string) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	note := &datastore.ProjectNote{
		ProjectID: projectID,
		NoteType:  noteType,
		Content:   content,
	}
	if err := store.CreateNote(note); err != nil {
		return err
	}

	fmt.Printf("Note created with ID: %d\n", note.ID)
	return nil
}

func runList(settings *conf.Settings, projectID uint, noteType string, limit int) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	notes, err := store.ListNotes(projectID, noteType, limit)
	if err != nil {
		return err
	}

	if len(notes) == 0 {
		if noteType != "" {
			fmt.Printf("No %s notes found for project %d\n", noteType, projectID)
		} else {
			fmt.Printf("No notes found for project %d\n", projectID)
		}
		fmt.Printf("Add one with: projtrack note add %d <content>\n", projectID)
		return nil
	}

	fmt.Printf("\nNotes for project %d", projectID)
	if noteType != "" {
		fmt.Printf(" (type: %s)", noteType)
	}
	fmt.Println(":")
	fmt.Println(strings.Repeat("=", 80))

	for i := range notes {
		note := &notes[i]
		emoji, ok := noteEmoji[note.NoteType]
		if !ok {
			emoji = "📝"
		}
		fmt.Printf("\n[%d] %s %s\n", note.ID, emoji, note.NoteType)
		fmt.Printf("    %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("    %s\n", preview(note.Content, 80))
	}

	fmt.Println()
	return nil
}

func runShow(settings *conf.Settings, id uint) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	note, err := store.GetNote(id)
	if err != nil {
		return err
	}

	// The owning project's name is a nicety; a lookup failure (e.g. a note
	// orphaned by a direct database edit) falls back to the numeric ID.
	projectName := fmt.Sprintf("Project %d", note.ProjectID)
	if project, err := store.GetProject(note.ProjectID); err == nil {
		projectName = project.Name
	}

	emoji, ok := noteEmoji[note.NoteType]
	if !ok {
		emoji = "📝"
	}

	fmt.Printf("\nNote #%d %s\n", note.ID, emoji)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Project: %s\n", projectName)
	fmt.Printf("Type: %s\n", note.NoteType)
	fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("\nContent:\n%s\n\n", note.Content)
	return nil
}

func runDelete(settings *conf.Settings, id uint) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteNote(id); err != nil {
		return err
	}

	fmt.Printf("Note %d deleted\n", id)
	return nil
}

// preview collapses a note body to a single trimmed line.
func preview(content string, limit int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if len(flat) <= limit {
		return flat
	}
	return flat[:limit-3] + "..."
}

// Package roadmap renders the tracked project portfolio as a Markdown
// document grouped by status, with a summary table at the end.
package roadmap

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
)

// DefaultFilename is where the roadmap lands when no output path is given.
const DefaultFilename = "ROADMAP.md"

// sectionOrder fixes the order of the per-status sections and the summary
// table rows.
var sectionOrder = []string{
	datastore.StatusActive,
	datastore.StatusIdea,
	datastore.StatusPaused,
	datastore.StatusArchived,
}

// sections holds the heading text for each status group.
var sections = map[string]struct {
	emoji string
	title string
	desc  string
}{
	datastore.StatusActive:   {"🚀", "Active Projects", "Currently in development"},
	datastore.StatusIdea:     {"💡", "Ideas", "Concepts waiting to be started"},
	datastore.StatusPaused:   {"⏸️", "Paused Projects", "On hold for now"},
	datastore.StatusArchived: {"📦", "Archived Projects", "Completed or shelved"},
}

// Document is a rendered roadmap plus the counts the CLI reports after
// writing it.
type Document struct {
	Content string
	Total   int
	Counts  map[string]int
}

// Generator renders roadmap documents from a project store.
type Generator struct {
	ds  datastore.Interface
	now func() time.Time
}

// New returns a Generator reading from the given store.
func New(ds datastore.Interface) *Generator {
	return &Generator{ds: ds, now: time.Now}
}

// Generate renders the full roadmap document. An empty store still renders,
// with every section empty; callers decide whether that is worth writing.
func (g *Generator) Generate() (*Document, error) {
	// Default listing view: most recently worked first, hidden projects
	// excluded. Projects whose status is archived but that are still
	// visible land in the archived section.
	projects, _, err := g.ds.ListProjects(datastore.ProjectQuery{})
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]datastore.Project, len(sectionOrder))
	counts := make(map[string]int, len(sectionOrder))
	for _, status := range sectionOrder {
		counts[status] = 0
	}
	for i := range projects {
		status := projects[i].Status
		if _, known := sections[status]; !known {
			status = datastore.StatusIdea
		}
		groups[status] = append(groups[status], projects[i])
		counts[status]++
	}

	var b strings.Builder
	b.WriteString("# Project Roadmap\n\n")
	fmt.Fprintf(&b, "*Generated: %s UTC*\n\n", g.now().UTC().Format("2006-01-02 15:04"))
	b.WriteString("A visual overview of all projects tracked in projtrack.\n\n")
	b.WriteString("---\n\n")

	b.WriteString("## Legend\n\n")
	b.WriteString("- **Idea**: Early concept, not yet started\n")
	b.WriteString("- **Active**: Currently being worked on\n")
	b.WriteString("- **Paused**: On hold, may resume later\n")
	b.WriteString("- **Archived**: Completed or abandoned\n\n")
	b.WriteString("---\n\n")

	for _, status := range sectionOrder {
		section := sections[status]
		fmt.Fprintf(&b, "## %s %s\n\n", section.emoji, section.title)
		fmt.Fprintf(&b, "*%s*\n\n", section.desc)

		if len(groups[status]) == 0 {
			b.WriteString("_No projects in this status._\n\n")
			continue
		}
		for i := range groups[status] {
			writeProject(&b, &groups[status][i])
		}
	}

	b.WriteString("## 📊 Summary\n\n")
	b.WriteString("| Status | Count |\n")
	b.WriteString("|--------|-------|\n")
	for _, status := range sectionOrder {
		fmt.Fprintf(&b, "| %s | %d |\n", capitalize(status), counts[status])
	}
	fmt.Fprintf(&b, "| **Total** | **%d** |\n\n", len(projects))

	b.WriteString("---\n\n")
	b.WriteString("*Generated by [projtrack](https://github.com/tphakala/projtrack)*\n")

	return &Document{
		Content: b.String(),
		Total:   len(projects),
		Counts:  counts,
	}, nil
}

// writeProject renders one project as a heading, an optional description
// quote, and a metadata table. Optional fields are skipped when empty.
func writeProject(b *strings.Builder, p *datastore.Project) {
	fmt.Fprintf(b, "### %s\n\n", p.Name)

	if p.Description != "" {
		fmt.Fprintf(b, "> %s\n\n", p.Description)
	}

	b.WriteString("| Property | Value |\n")
	b.WriteString("|----------|-------|\n")
	fmt.Fprintf(b, "| **ID** | `%d` |\n", p.ID)
	fmt.Fprintf(b, "| **Status** | `%s` |\n", p.Status)
	if p.ProjectType != "" {
		fmt.Fprintf(b, "| **Type** | %s |\n", p.ProjectType)
	}
	if p.PrimaryLanguage != "" {
		fmt.Fprintf(b, "| **Language** | %s |\n", p.PrimaryLanguage)
	}
	if p.Stack != "" {
		fmt.Fprintf(b, "| **Stack** | %s |\n", p.Stack)
	}
	if p.ScopeSize != "" {
		fmt.Fprintf(b, "| **Scope** | %s |\n", p.ScopeSize)
	}
	if p.LearningGoal != "" {
		fmt.Fprintf(b, "| **Learning Goal** | %s |\n", p.LearningGoal)
	}
	if p.LocalPath != "" {
		fmt.Fprintf(b, "| **Path** | `%s` |\n", p.LocalPath)
	}
	if p.RepoURL != "" {
		fmt.Fprintf(b, "| **Repository** | %s |\n", p.RepoURL)
	}
	fmt.Fprintf(b, "| **Created** | %s |\n", p.CreatedAt.Format("2006-01-02"))
	if p.LastWorkedAt != nil && !p.LastWorkedAt.IsZero() {
		fmt.Fprintf(b, "| **Last Worked** | %s |\n", p.LastWorkedAt.Format("2006-01-02"))
	}

	b.WriteString("\n---\n\n")
}

// Write saves a rendered document to path, appending the .md extension when
// missing. The path actually written is returned for display.
func Write(doc *Document, path string) (string, error) {
	if path == "" {
		path = DefaultFilename
	}
	if !strings.HasSuffix(path, ".md") {
		path += ".md"
	}
	if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
		return "", errors.New(err).
			Component("roadmap").
			Category(errors.CategoryFileIO).
			Context("operation", "write_roadmap").
			Context("path", path).
			Build()
	}
	return path, nil
}

// capitalize upper-cases the first letter of an ASCII status name for the
// summary table.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// datastore_test.go: Project CRUD, listing, and lifecycle tests.
//
// These tests use real SQLite databases (not mocks) so the exact SQL the
// backends share is exercised. The MySQL equivalence tests in
// equivalence_test.go run the same behavior against a real MySQL server.
package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/errors"
)

// createTestSettings creates minimal settings backed by a file SQLite
// database in a per-test temp directory.
func createTestSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Storage.Mode = conf.ModeDirect
	settings.Storage.Engine = conf.EngineSQLite
	settings.Storage.SQLite.Path = filepath.Join(t.TempDir(), "projtrack.db")
	return settings
}

// createDatabase initializes a temporary database for testing purposes.
func createDatabase(t *testing.T, settings *conf.Settings) Interface {
	t.Helper()

	store, err := New(settings)
	require.NoError(t, err, "Failed to create datastore")
	require.NoError(t, store.Open(), "Failed to open database")

	t.Cleanup(func() {
		assert.NoError(t, store.Close(), "Failed to close datastore")
	})

	return store
}

// newTestStore is the shorthand used by most tests.
func newTestStore(t *testing.T) Interface {
	t.Helper()
	return createDatabase(t, createTestSettings(t))
}

// createTestProject stores a project with sensible defaults, applying opts
// before the insert.
func createTestProject(t *testing.T, store Interface, name string, opts ...func(*Project)) *Project {
	t.Helper()

	p := &Project{
		Name:   name,
		Status: StatusActive,
	}
	for _, opt := range opts {
		opt(p)
	}

	require.NoError(t, store.CreateProject(p), "Failed to create project %q", name)
	require.NotZero(t, p.ID, "Project ID should be assigned after create")
	return p
}

func withStatus(status string) func(*Project) {
	return func(p *Project) { p.Status = status }
}

func withCreatedAt(ts time.Time) func(*Project) {
	return func(p *Project) { p.CreatedAt = ts }
}

func withLastWorkedAt(ts time.Time) func(*Project) {
	return func(p *Project) { p.LastWorkedAt = &ts }
}

func withArchived() func(*Project) {
	return func(p *Project) {
		p.Status = StatusArchived
		p.IsArchived = true
	}
}

// requireCategory asserts that err carries the given error category.
func requireCategory(t *testing.T, err error, category errors.ErrorCategory) {
	t.Helper()

	require.Error(t, err)
	var ee *errors.EnhancedError
	require.ErrorAs(t, err, &ee, "error should be an enhanced error")
	assert.Equal(t, category, ee.Category, "unexpected error category for: %v", err)
}

func projectNames(projects []Project) []string {
	names := make([]string, 0, len(projects))
	for i := range projects {
		names = append(names, projects[i].Name)
	}
	return names
}

func TestCreateProject(t *testing.T) {
	t.Parallel()

	t.Run("assigns id and defaults", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		p := &Project{Name: "birdfeeder-cam"}
		require.NoError(t, store.CreateProject(p))

		assert.NotZero(t, p.ID)
		assert.Equal(t, StatusIdea, p.Status, "status should default to idea")
		assert.False(t, p.CreatedAt.IsZero(), "created_at should be stamped")
		assert.Nil(t, p.LastWorkedAt, "new project has never been worked on")
		assert.False(t, p.IsArchived)
	})

	t.Run("round trips all fields", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		original := &Project{
			Name:            "homelab-dns",
			Description:     "Authoritative DNS for the home network",
			Status:          StatusActive,
			ProjectType:     TypeHomelab,
			PrimaryLanguage: "Go",
			Stack:           "CoreDNS, etcd",
			RepoURL:         "https://example.com/homelab-dns",
			LocalPath:       "/home/dev/src/homelab-dns",
			ScopeSize:       ScopeMedium,
			LearningGoal:    "Learn the DNS protocol properly",
		}
		require.NoError(t, store.CreateProject(original))

		loaded, err := store.GetProject(original.ID)
		require.NoError(t, err)

		assert.Equal(t, original.Name, loaded.Name)
		assert.Equal(t, original.Description, loaded.Description)
		assert.Equal(t, original.Status, loaded.Status)
		assert.Equal(t, original.ProjectType, loaded.ProjectType)
		assert.Equal(t, original.PrimaryLanguage, loaded.PrimaryLanguage)
		assert.Equal(t, original.Stack, loaded.Stack)
		assert.Equal(t, original.RepoURL, loaded.RepoURL)
		assert.Equal(t, original.LocalPath, loaded.LocalPath)
		assert.Equal(t, original.ScopeSize, loaded.ScopeSize)
		assert.Equal(t, original.LearningGoal, loaded.LearningGoal)
		assert.True(t, original.CreatedAt.Equal(loaded.CreatedAt),
			"CreatedAt mismatch: got %v, want %v", loaded.CreatedAt, original.CreatedAt)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		err := store.CreateProject(&Project{Name: "   "})
		requireCategory(t, err, errors.CategoryValidation)
	})

	t.Run("rejects unknown enum values", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		tests := []struct {
			name    string
			project Project
		}{
			{"bad status", Project{Name: "p", Status: "done"}},
			{"bad project type", Project{Name: "p", ProjectType: "mobile"}},
			{"bad scope size", Project{Name: "p", ScopeSize: "huge"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := store.CreateProject(&tt.project)
				requireCategory(t, err, errors.CategoryValidation)
				assert.ErrorContains(t, err, "must be one of")
			})
		}
	})
}

func TestGetProject(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	created := createTestProject(t, store, "synth-vst")

	t.Run("found", func(t *testing.T) {
		loaded, err := store.GetProject(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, loaded.ID)
		assert.Equal(t, "synth-vst", loaded.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.GetProject(99999)
		requireCategory(t, err, errors.CategoryNotFound)
		assert.ErrorContains(t, err, "not found")
	})
}

func TestListProjects_DefaultOrdering(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Never-worked projects must sort after worked ones on the default
	// descending order, regardless of how new they are.
	createTestProject(t, store, "oldest-touch",
		withCreatedAt(base), withLastWorkedAt(base.Add(24*time.Hour)))
	createTestProject(t, store, "newest-touch",
		withCreatedAt(base), withLastWorkedAt(base.Add(72*time.Hour)))
	createTestProject(t, store, "middle-touch",
		withCreatedAt(base), withLastWorkedAt(base.Add(48*time.Hour)))
	createTestProject(t, store, "never-touched",
		withCreatedAt(base.Add(96*time.Hour)))

	projects, total, err := store.ListProjects(ProjectQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), total)
	assert.Equal(t,
		[]string{"newest-touch", "middle-touch", "oldest-touch", "never-touched"},
		projectNames(projects))
}

func TestListProjects_SortVariants(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestProject(t, store, "banana",
		withCreatedAt(base.Add(2*time.Hour)), withStatus(StatusIdea))
	createTestProject(t, store, "apple",
		withCreatedAt(base.Add(1*time.Hour)), withStatus(StatusPaused),
		withLastWorkedAt(base.Add(10*time.Hour)))
	createTestProject(t, store, "cherry",
		withCreatedAt(base.Add(3*time.Hour)), withStatus(StatusActive),
		withLastWorkedAt(base.Add(5*time.Hour)))

	tests := []struct {
		name  string
		query ProjectQuery
		want  []string
	}{
		{
			name:  "name ascending",
			query: ProjectQuery{SortBy: "name", SortOrder: "asc"},
			want:  []string{"apple", "banana", "cherry"},
		},
		{
			name:  "name descending",
			query: ProjectQuery{SortBy: "name", SortOrder: "desc"},
			want:  []string{"cherry", "banana", "apple"},
		},
		{
			name:  "created_at ascending",
			query: ProjectQuery{SortBy: "created_at", SortOrder: "asc"},
			want:  []string{"apple", "banana", "cherry"},
		},
		{
			name:  "status ascending",
			query: ProjectQuery{SortBy: "status", SortOrder: "asc"},
			want:  []string{"cherry", "banana", "apple"}, // active, idea, paused
		},
		{
			name: "last_worked_at ascending puts never-worked first",
			// banana has no last_worked_at
			query: ProjectQuery{SortBy: "last_worked_at", SortOrder: "asc"},
			want:  []string{"banana", "cherry", "apple"},
		},
		{
			name:  "unknown sort column falls back to last_worked_at",
			query: ProjectQuery{SortBy: "danger; DROP TABLE projects"},
			want:  []string{"apple", "cherry", "banana"},
		},
		{
			name:  "unknown sort order falls back to desc",
			query: ProjectQuery{SortBy: "name", SortOrder: "sideways"},
			want:  []string{"cherry", "banana", "apple"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects, total, err := store.ListProjects(tt.query)
			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			assert.Equal(t, tt.want, projectNames(projects))
		})
	}
}

func TestListProjects_Filters(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	createTestProject(t, store, "active-one", withStatus(StatusActive))
	createTestProject(t, store, "active-two", withStatus(StatusActive))
	createTestProject(t, store, "paused-one", withStatus(StatusPaused))
	createTestProject(t, store, "shelved", withArchived())

	t.Run("archived excluded by default", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.NotContains(t, projectNames(projects), "shelved")
	})

	t.Run("include archived", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{IncludeArchived: true})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Contains(t, projectNames(projects), "shelved")
	})

	t.Run("status filter", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Status: StatusActive})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, p := range projects {
			assert.Equal(t, StatusActive, p.Status)
		}
	})

	t.Run("status filter with no matches", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Status: StatusIdea})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, projects)
	})

	t.Run("archived status filter still excludes archived rows", func(t *testing.T) {
		// Filtering by status=archived without IncludeArchived finds
		// nothing; archival hides rows before the status filter runs.
		projects, total, err := store.ListProjects(ProjectQuery{Status: StatusArchived})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, projects)
	})
}

func TestListProjects_Pagination(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	names := []string{"p1", "p2", "p3", "p4", "p5"}
	for i, name := range names {
		createTestProject(t, store, name,
			withCreatedAt(base),
			withLastWorkedAt(base.Add(time.Duration(i)*time.Hour)))
	}

	t.Run("limit", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total, "total reflects the full match count, not the page")
		assert.Equal(t, []string{"p5", "p4"}, projectNames(projects))
	})

	t.Run("limit with offset", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Equal(t, []string{"p3", "p2"}, projectNames(projects))
	})

	t.Run("offset without limit is ignored", func(t *testing.T) {
		projects, _, err := store.ListProjects(ProjectQuery{Offset: 3})
		require.NoError(t, err)
		assert.Len(t, projects, 5)
	})

	t.Run("offset past the end", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Limit: 2, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Empty(t, projects)
	})
}

func TestUpdateProject(t *testing.T) {
	t.Parallel()

	t.Run("updates allowed fields", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		p := createTestProject(t, store, "rewrite-me", withStatus(StatusIdea))

		updated, err := store.UpdateProject(p.ID, map[string]any{
			"name":             "rewritten",
			"status":           StatusActive,
			"description":      "now with a description",
			"primary_language": "Rust",
		})
		require.NoError(t, err)

		assert.Equal(t, "rewritten", updated.Name)
		assert.Equal(t, StatusActive, updated.Status)
		assert.Equal(t, "now with a description", updated.Description)
		assert.Equal(t, "Rust", updated.PrimaryLanguage)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		p := createTestProject(t, store, "immutable-bits")
		originalCreated := p.CreatedAt

		updated, err := store.UpdateProject(p.ID, map[string]any{
			"created_at":    time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
			"id":            uint(4242),
			"no_such_field": "whatever",
		})
		require.NoError(t, err)

		assert.Equal(t, p.ID, updated.ID)
		assert.True(t, originalCreated.Equal(updated.CreatedAt),
			"created_at must never change through updates")
	})

	t.Run("empty update set leaves record unchanged", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		p := createTestProject(t, store, "untouched")

		updated, err := store.UpdateProject(p.ID, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "untouched", updated.Name)
	})

	t.Run("archive through update", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		p := createTestProject(t, store, "winding-down")

		updated, err := store.UpdateProject(p.ID, map[string]any{
			"status":      StatusArchived,
			"is_archived": true,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusArchived, updated.Status)
		assert.True(t, updated.IsArchived)

		// Gone from default listings, still directly fetchable.
		projects, _, err := store.ListProjects(ProjectQuery{})
		require.NoError(t, err)
		assert.NotContains(t, projectNames(projects), "winding-down")

		fetched, err := store.GetProject(p.ID)
		require.NoError(t, err)
		assert.True(t, fetched.IsArchived)
	})

	t.Run("clearing optional enum is allowed", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		p := createTestProject(t, store, "detyped", func(p *Project) {
			p.ProjectType = TypeCLI
			p.ScopeSize = ScopeTiny
		})

		updated, err := store.UpdateProject(p.ID, map[string]any{
			"project_type": "",
			"scope_size":   "",
		})
		require.NoError(t, err)
		assert.Empty(t, updated.ProjectType)
		assert.Empty(t, updated.ScopeSize)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		p := createTestProject(t, store, "strict")

		tests := []struct {
			name    string
			updates map[string]any
		}{
			{"empty name", map[string]any{"name": ""}},
			{"whitespace name", map[string]any{"name": "  "}},
			{"non-string name", map[string]any{"name": 42}},
			{"unknown status", map[string]any{"status": "finished"}},
			{"empty status", map[string]any{"status": ""}},
			{"non-string status", map[string]any{"status": true}},
			{"unknown project type", map[string]any{"project_type": "game"}},
			{"unknown scope size", map[string]any{"scope_size": "epic"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := store.UpdateProject(p.ID, tt.updates)
				requireCategory(t, err, errors.CategoryValidation)
			})
		}

		// Record must be untouched after all the failed updates.
		loaded, err := store.GetProject(p.ID)
		require.NoError(t, err)
		assert.Equal(t, "strict", loaded.Name)
		assert.Equal(t, StatusActive, loaded.Status)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		_, err := store.UpdateProject(99999, map[string]any{"name": "ghost"})
		requireCategory(t, err, errors.CategoryNotFound)
	})
}

func TestTouchProject(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	p := createTestProject(t, store, "daily-driver")
	require.Nil(t, p.LastWorkedAt)

	stamped, err := store.TouchProject(p.ID)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().UTC(), stamped, 5*time.Second)
	assert.Equal(t, time.UTC, stamped.Location(), "touch timestamps are UTC")

	loaded, err := store.GetProject(p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastWorkedAt)
	assert.WithinDuration(t, stamped, *loaded.LastWorkedAt, time.Second,
		"persisted last_worked_at should match the returned stamp")

	t.Run("not found", func(t *testing.T) {
		_, err := store.TouchProject(99999)
		requireCategory(t, err, errors.CategoryNotFound)
	})
}

func TestDeleteProject_Cascade(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	doomed := createTestProject(t, store, "doomed")
	survivor := createTestProject(t, store, "survivor")

	// Hang every kind of dependent off the doomed project.
	note := &ProjectNote{ProjectID: doomed.ID, Content: "final words"}
	require.NoError(t, store.CreateNote(note))

	_, err := store.AddProjectTag(doomed.ID, "golang")
	require.NoError(t, err)
	_, err = store.AddProjectTag(survivor.ID, "golang")
	require.NoError(t, err)

	outgoing := &ProjectRelationship{
		SourceProjectID:  doomed.ID,
		TargetProjectID:  survivor.ID,
		RelationshipType: RelDependsOn,
	}
	require.NoError(t, store.CreateRelationship(outgoing))
	incoming := &ProjectRelationship{
		SourceProjectID:  survivor.ID,
		TargetProjectID:  doomed.ID,
		RelationshipType: RelRelatedTo,
	}
	require.NoError(t, store.CreateRelationship(incoming))

	require.NoError(t, store.DeleteProject(doomed.ID))

	t.Run("project gone", func(t *testing.T) {
		_, err := store.GetProject(doomed.ID)
		requireCategory(t, err, errors.CategoryNotFound)
	})

	t.Run("notes gone", func(t *testing.T) {
		_, err := store.GetNote(note.ID)
		requireCategory(t, err, errors.CategoryNotFound)
	})

	t.Run("relationships gone in both directions", func(t *testing.T) {
		relations, err := store.ListRelationships(survivor.ID)
		require.NoError(t, err)
		assert.Empty(t, relations)
	})

	t.Run("tag association gone but tag row kept", func(t *testing.T) {
		summaries, err := store.ListTags()
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "golang", summaries[0].Name)
		assert.Equal(t, int64(1), summaries[0].ProjectCount, "only the survivor still carries the tag")
	})

	t.Run("survivor untouched", func(t *testing.T) {
		loaded, err := store.GetProject(survivor.ID)
		require.NoError(t, err)
		assert.Equal(t, "survivor", loaded.Name)
	})

	t.Run("delete again reports not found", func(t *testing.T) {
		err := store.DeleteProject(doomed.ID)
		requireCategory(t, err, errors.CategoryNotFound)
	})
}

// TestProjectLifecycle walks one project through the whole create, tag,
// filter, delete round trip.
func TestProjectLifecycle(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	p := &Project{Name: "learn-zig", Status: StatusIdea, ProjectType: TypeCLI}
	require.NoError(t, store.CreateProject(p))

	added, err := store.AddProjectTag(p.ID, "systems")
	require.NoError(t, err)
	assert.True(t, added)

	projects, total, err := store.ListProjects(ProjectQuery{Tag: "systems"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, "learn-zig", projects[0].Name)

	require.NoError(t, store.DeleteProject(p.ID))

	_, err = store.GetProject(p.ID)
	requireCategory(t, err, errors.CategoryNotFound)

	// The tag survives the project with its count back at zero.
	summaries, err := store.ListTags()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "systems", summaries[0].Name)
	assert.Zero(t, summaries[0].ProjectCount)
}

func TestListProjects_TagFilter(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	tagged := createTestProject(t, store, "tagged-both")
	goOnly := createTestProject(t, store, "go-only")
	createTestProject(t, store, "untagged")

	for _, tag := range []string{"go", "web"} {
		_, err := store.AddProjectTag(tagged.ID, tag)
		require.NoError(t, err)
	}
	_, err := store.AddProjectTag(goOnly.ID, "go")
	require.NoError(t, err)

	t.Run("single tag", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Tag: "web"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{"tagged-both"}, projectNames(projects))
	})

	t.Run("shared tag", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Tag: "go", SortBy: "name", SortOrder: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, []string{"go-only", "tagged-both"}, projectNames(projects))
	})

	t.Run("unknown tag matches nothing", func(t *testing.T) {
		projects, total, err := store.ListProjects(ProjectQuery{Tag: "cobol"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, projects)
	})

	t.Run("tag and status combined", func(t *testing.T) {
		_, err := store.UpdateProject(goOnly.ID, map[string]any{"status": StatusPaused})
		require.NoError(t, err)

		projects, total, err := store.ListProjects(ProjectQuery{Tag: "go", Status: StatusPaused})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{"go-only"}, projectNames(projects))
	})
}

func TestPing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	assert.NoError(t, store.Ping())
}

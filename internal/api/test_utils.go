// test_utils.go: mock datastore and environment setup shared by handler tests
package api

import (
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// MockDataStore implements datastore.Interface with testify mocks so handler
// tests can script storage behavior without a database.
type MockDataStore struct {
	mock.Mock
}

var _ datastore.Interface = (*MockDataStore)(nil)

func (m *MockDataStore) Open() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDataStore) CreateProject(p *datastore.Project) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockDataStore) GetProject(id uint) (*datastore.Project, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.Project), args.Error(1)
}

func (m *MockDataStore) ListProjects(q datastore.ProjectQuery) ([]datastore.Project, int64, error) {
	args := m.Called(q)
	var projects []datastore.Project
	if args.Get(0) != nil {
		projects = args.Get(0).([]datastore.Project)
	}
	return projects, args.Get(1).(int64), args.Error(2)
}

func (m *MockDataStore) UpdateProject(id uint, updates map[string]any) (*datastore.Project, error) {
	args := m.Called(id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.Project), args.Error(1)
}

func (m *MockDataStore) DeleteProject(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDataStore) TouchProject(id uint) (time.Time, error) {
	args := m.Called(id)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockDataStore) SearchProjects(query, status string) ([]datastore.Project, error) {
	args := m.Called(query, status)
	var projects []datastore.Project
	if args.Get(0) != nil {
		projects = args.Get(0).([]datastore.Project)
	}
	return projects, args.Error(1)
}

func (m *MockDataStore) AddProjectTag(projectID uint, name string) (bool, error) {
	args := m.Called(projectID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataStore) RemoveProjectTag(projectID uint, name string) error {
	args := m.Called(projectID, name)
	return args.Error(0)
}

func (m *MockDataStore) ListTags() ([]datastore.TagSummary, error) {
	args := m.Called()
	var tags []datastore.TagSummary
	if args.Get(0) != nil {
		tags = args.Get(0).([]datastore.TagSummary)
	}
	return tags, args.Error(1)
}

func (m *MockDataStore) ListProjectTags(projectID uint) ([]string, error) {
	args := m.Called(projectID)
	var names []string
	if args.Get(0) != nil {
		names = args.Get(0).([]string)
	}
	return names, args.Error(1)
}

func (m *MockDataStore) CreateNote(n *datastore.ProjectNote) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockDataStore) GetNote(id uint) (*datastore.ProjectNote, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.ProjectNote), args.Error(1)
}

func (m *MockDataStore) ListNotes(projectID uint, noteType string, limit int) ([]datastore.ProjectNote, error) {
	args := m.Called(projectID, noteType, limit)
	var notes []datastore.ProjectNote
	if args.Get(0) != nil {
		notes = args.Get(0).([]datastore.ProjectNote)
	}
	return notes, args.Error(1)
}

func (m *MockDataStore) DeleteNote(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDataStore) CreateRelationship(r *datastore.ProjectRelationship) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockDataStore) GetRelationship(id uint) (*datastore.ProjectRelation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.ProjectRelation), args.Error(1)
}

func (m *MockDataStore) ListRelationships(projectID uint) ([]datastore.ProjectRelation, error) {
	args := m.Called(projectID)
	var relations []datastore.ProjectRelation
	if args.Get(0) != nil {
		relations = args.Get(0).([]datastore.ProjectRelation)
	}
	return relations, args.Error(1)
}

func (m *MockDataStore) DeleteRelationship(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDataStore) GetGraph() (*datastore.ProjectGraph, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.ProjectGraph), args.Error(1)
}

func (m *MockDataStore) SetMetrics(metrics *datastore.Metrics) {
	m.Called(metrics)
}

// setupTestEnvironment builds a controller wired to a mock datastore. Routes
// are not registered; tests call handlers directly through echo contexts.
func setupTestEnvironment(t *testing.T) (*echo.Echo, *MockDataStore, *Controller) {
	t.Helper()

	e := echo.New()
	mockDS := new(MockDataStore)

	settings := &conf.Settings{
		Version:   "test-version",
		BuildDate: "2026-01-01",
	}

	controller := &Controller{
		Echo:      e,
		Group:     e.Group("/api"),
		DS:        mockDS,
		Settings:  settings,
		logger:    log.New(io.Discard, "", 0),
		apiLogger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		startTime: time.Now(),
	}

	return e, mockDS, controller
}

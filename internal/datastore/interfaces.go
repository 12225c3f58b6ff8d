// Package datastore implements the project storage contract with SQLite,
// MySQL, and remote HTTP backends selected by configuration.
package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/errors"
)

// ProjectQuery captures the filter, sort, and pagination parameters for
// ListProjects. The zero value lists every non-archived project, most
// recently worked on first.
type ProjectQuery struct {
	Status    string // exact status match, empty = all
	Tag       string // restrict to projects carrying this tag
	SortBy    string // name | created_at | last_worked_at | status
	SortOrder string // asc | desc
	Limit     int    // <= 0 disables pagination
	Offset    int    // applied only together with Limit

	// IncludeArchived is for internal callers such as data migration;
	// the HTTP and CLI surfaces never set it.
	IncludeArchived bool
}

// TagSummary pairs a tag name with the number of projects carrying it.
type TagSummary struct {
	Name         string `json:"name"`
	ProjectCount int64  `json:"project_count"`
}

// ProjectRelation is a relationship viewed from one project's perspective,
// with the other endpoint's name resolved.
type ProjectRelation struct {
	ID               uint      `json:"id"`
	ProjectID        uint      `json:"project_id"`
	RelatedProjectID uint      `json:"related_project_id"`
	RelatedName      string    `json:"related_name"`
	RelationshipType string    `json:"relationship_type"`
	Direction        string    `json:"direction"` // outgoing | incoming
	CreatedAt        time.Time `json:"created_at"`
}

// Relationship directions as seen from the queried project.
const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
)

// GraphNode is a non-archived project in the relationship graph.
type GraphNode struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	ProjectType     string `json:"project_type"`
	PrimaryLanguage string `json:"primary_language"`
	Stack           string `json:"stack"`
}

// GraphEdge is a relationship between two graph nodes.
type GraphEdge struct {
	ID               uint   `json:"id"`
	SourceProjectID  uint   `json:"source_project_id"`
	TargetProjectID  uint   `json:"target_project_id"`
	RelationshipType string `json:"relationship_type"`
}

// ProjectGraph is the full relationship graph over non-archived projects.
type ProjectGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Interface is the storage contract shared by every backend. The SQLite and
// MySQL stores implement it directly; RemoteStore implements it over HTTP.
// Callers must not depend on which backend they hold.
type Interface interface {
	Open() error
	Close() error
	Ping() error

	CreateProject(p *Project) error
	GetProject(id uint) (*Project, error)
	ListProjects(q ProjectQuery) ([]Project, int64, error)
	UpdateProject(id uint, updates map[string]any) (*Project, error)
	DeleteProject(id uint) error
	TouchProject(id uint) (time.Time, error)
	SearchProjects(query, status string) ([]Project, error)

	AddProjectTag(projectID uint, name string) (bool, error)
	RemoveProjectTag(projectID uint, name string) error
	ListTags() ([]TagSummary, error)
	ListProjectTags(projectID uint) ([]string, error)

	CreateNote(n *ProjectNote) error
	GetNote(id uint) (*ProjectNote, error)
	ListNotes(projectID uint, noteType string, limit int) ([]ProjectNote, error)
	DeleteNote(id uint) error

	CreateRelationship(r *ProjectRelationship) error
	GetRelationship(id uint) (*ProjectRelation, error)
	ListRelationships(projectID uint) ([]ProjectRelation, error)
	DeleteRelationship(id uint) error
	GetGraph() (*ProjectGraph, error)

	SetMetrics(m *Metrics)
}

// DataStore implements the shared database logic for the direct backends.
// SQLiteStore and MySQLStore embed it, so every contract method runs the
// same code against both engines and the backends cannot drift apart.
type DataStore struct {
	DB      *gorm.DB
	metrics *Metrics
}

// SetMetrics attaches the metrics collector. Safe to leave unset; all
// recording is nil-guarded.
func (ds *DataStore) SetMetrics(m *Metrics) {
	ds.metrics = m
}

// Ping verifies database connectivity.
func (ds *DataStore) Ping() error {
	if ds.DB == nil {
		return dbError(errors.NewStd("database connection is not initialized"), "ping", "")
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "ping", "")
	}
	if err := sqlDB.Ping(); err != nil {
		return dbError(err, "ping", errors.PriorityHigh)
	}
	return nil
}

// transaction runs fn inside a database transaction and records the outcome.
func (ds *DataStore) transaction(fn func(tx *gorm.DB) error) error {
	err := ds.DB.Transaction(fn)
	if ds.metrics != nil {
		if err != nil {
			ds.metrics.RecordTransaction("rollback")
		} else {
			ds.metrics.RecordTransaction("committed")
		}
	}
	return err
}

// New creates the direct backend selected by storage.engine. It fails fast
// on an unknown engine or incomplete MySQL credentials; there is no silent
// fallback. The returned store is not yet opened.
func New(settings *conf.Settings) (Interface, error) {
	switch settings.Storage.Engine {
	case conf.EngineSQLite:
		if settings.Storage.SQLite.Path == "" {
			return nil, errors.Newf("sqlite storage requires a database path").
				Component("datastore").
				Category(errors.CategoryConfiguration).
				Context("engine", conf.EngineSQLite).
				Build()
		}
		return &SQLiteStore{Settings: settings}, nil
	case conf.EngineMySQL:
		if settings.Storage.MySQL.Username == "" || settings.Storage.MySQL.Password == "" {
			return nil, errors.Newf("mysql storage requires username and password").
				Component("datastore").
				Category(errors.CategoryConfiguration).
				Context("engine", conf.EngineMySQL).
				Build()
		}
		return &MySQLStore{Settings: settings}, nil
	default:
		return nil, errors.Newf("unsupported storage engine: %q", settings.Storage.Engine).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("engine", settings.Storage.Engine).
			Build()
	}
}

// Open creates and opens the store selected by storage.mode: the remote
// HTTP shim in remote mode, otherwise the direct backend from New. The
// mode is orthogonal to the engine; remote mode ignores engine settings.
func Open(settings *conf.Settings) (Interface, error) {
	var store Interface
	if settings.Storage.Mode == conf.ModeRemote {
		store = NewRemoteStore(settings)
	} else {
		var err error
		store, err = New(settings)
		if err != nil {
			return nil, err
		}
	}
	if err := store.Open(); err != nil {
		return nil, err
	}
	return store, nil
}

// performAutoMigration creates or updates the schema for all model tables.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Project{}, &Tag{}, &ProjectTag{}, &ProjectNote{}, &ProjectRelationship{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Context("db_type", dbType).
			Build()
	}

	if debug {
		getLogger().Debug("database connection initialized",
			"db_type", dbType,
			"connection", connectionInfo)
	}

	return nil
}

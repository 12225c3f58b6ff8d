// model.go defines the data model for project tracking
package datastore

import (
	"slices"
	"time"
)

// Project statuses
const (
	StatusIdea     = "idea"
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusArchived = "archived"
)

// Project types
const (
	TypeWeb      = "web"
	TypeCLI      = "cli"
	TypeLibrary  = "library"
	TypeHomelab  = "homelab"
	TypeResearch = "research"
)

// Scope sizes
const (
	ScopeTiny     = "tiny"
	ScopeMedium   = "medium"
	ScopeLongHaul = "long-haul"
)

// Note types
const (
	NoteLog        = "log"
	NoteIdea       = "idea"
	NoteBlocker    = "blocker"
	NoteReflection = "reflection"
)

// Relationship types
const (
	RelDependsOn  = "depends_on"
	RelRelatedTo  = "related_to"
	RelPartOf     = "part_of"
	RelInspiredBy = "inspired_by"
)

// Enum value lists, in display order. Used for validation messages and CLI help.
var (
	ProjectStatuses   = []string{StatusIdea, StatusActive, StatusPaused, StatusArchived}
	ProjectTypes      = []string{TypeWeb, TypeCLI, TypeLibrary, TypeHomelab, TypeResearch}
	ScopeSizes        = []string{ScopeTiny, ScopeMedium, ScopeLongHaul}
	NoteTypes         = []string{NoteLog, NoteIdea, NoteBlocker, NoteReflection}
	RelationshipTypes = []string{RelDependsOn, RelRelatedTo, RelPartOf, RelInspiredBy}
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool { return slices.Contains(ProjectStatuses, s) }

// ValidProjectType reports whether s is a known project type.
func ValidProjectType(s string) bool { return slices.Contains(ProjectTypes, s) }

// ValidScopeSize reports whether s is a known scope size.
func ValidScopeSize(s string) bool { return slices.Contains(ScopeSizes, s) }

// ValidNoteType reports whether s is a known note type.
func ValidNoteType(s string) bool { return slices.Contains(NoteTypes, s) }

// ValidRelationshipType reports whether s is a known relationship type.
func ValidRelationshipType(s string) bool { return slices.Contains(RelationshipTypes, s) }

// Project represents a tracked personal project
type Project struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Description     string     `gorm:"type:text" json:"description"`
	Status          string     `gorm:"size:20;not null;default:idea;index:idx_projects_status" json:"status"`
	ProjectType     string     `gorm:"size:20" json:"project_type"`
	PrimaryLanguage string     `gorm:"size:100" json:"primary_language"`
	Stack           string     `gorm:"size:500" json:"stack"`
	RepoURL         string     `gorm:"size:500" json:"repo_url"`
	LocalPath       string     `gorm:"size:500" json:"local_path"`
	ScopeSize       string     `gorm:"size:20" json:"scope_size"`
	LearningGoal    string     `gorm:"type:text" json:"learning_goal"`
	CreatedAt       time.Time  `json:"created_at"`
	LastWorkedAt    *time.Time `gorm:"index:idx_projects_last_worked_at" json:"last_worked_at"`
	IsArchived      bool       `gorm:"not null;default:false;index:idx_projects_is_archived" json:"is_archived"`

	// Associations give GORM the foreign keys for cascade deletes; cascades
	// are still executed explicitly inside transactions so SQLite setups
	// without foreign key enforcement behave identically.
	Notes         []ProjectNote         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	ProjectTags   []ProjectTag          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	OutgoingLinks []ProjectRelationship `gorm:"foreignKey:SourceProjectID;constraint:OnDelete:CASCADE" json:"-"`
	IncomingLinks []ProjectRelationship `gorm:"foreignKey:TargetProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProjectNote represents a timestamped note attached to a project.
// GORM will automatically create table name as 'project_notes'
type ProjectNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index:idx_project_notes_project_id;not null" json:"project_id"`
	NoteType  string    `gorm:"size:20;not null;default:log" json:"note_type"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag represents a label shared across projects. Names are stored verbatim
// and compared case-sensitively; normalization happens at the boundaries.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`

	ProjectTags []ProjectTag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProjectTag is the project/tag association table with a composite primary key.
// GORM will automatically create table name as 'project_tags'
type ProjectTag struct {
	ProjectID uint `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	TagID     uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
}

// ProjectRelationship links two projects with a typed, directed edge.
// The (source, target, type) triple is unique.
// GORM will automatically create table name as 'project_relationships'
type ProjectRelationship struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SourceProjectID  uint      `gorm:"not null;uniqueIndex:idx_relationship_triple" json:"source_project_id"`
	TargetProjectID  uint      `gorm:"not null;uniqueIndex:idx_relationship_triple" json:"target_project_id"`
	RelationshipType string    `gorm:"size:20;not null;uniqueIndex:idx_relationship_triple" json:"relationship_type"`
	CreatedAt        time.Time `json:"created_at"`
}

// Package datastore - project CRUD, listing, and search
package datastore

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/errors"
	"github.com/tphakala/projtrack/internal/observability/metrics"
)

// updatableProjectFields is the allow-list for UpdateProject. Keys outside
// it are ignored; created_at in particular can never change.
var updatableProjectFields = map[string]bool{
	"name":             true,
	"description":      true,
	"status":           true,
	"project_type":     true,
	"primary_language": true,
	"stack":            true,
	"repo_url":         true,
	"local_path":       true,
	"scope_size":       true,
	"learning_goal":    true,
	"is_archived":      true,
}

// validateProjectEnums rejects unknown status, type, and scope values.
// Empty optional values pass.
func validateProjectEnums(status, projectType, scopeSize string) error {
	if status != "" && !ValidProjectStatus(status) {
		return validationError(
			fmt.Sprintf("invalid status %q, must be one of: %s", status, strings.Join(ProjectStatuses, ", ")),
			"status", status)
	}
	if projectType != "" && !ValidProjectType(projectType) {
		return validationError(
			fmt.Sprintf("invalid project type %q, must be one of: %s", projectType, strings.Join(ProjectTypes, ", ")),
			"project_type", projectType)
	}
	if scopeSize != "" && !ValidScopeSize(scopeSize) {
		return validationError(
			fmt.Sprintf("invalid scope size %q, must be one of: %s", scopeSize, strings.Join(ScopeSizes, ", ")),
			"scope_size", scopeSize)
	}
	return nil
}

// CreateProject validates and stores a new project. On success p carries the
// assigned ID and creation timestamp.
func (ds *DataStore) CreateProject(p *Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return validationError("project name cannot be empty", "name", p.Name)
	}
	if p.Status == "" {
		p.Status = StatusIdea
	}
	if err := validateProjectEnums(p.Status, p.ProjectType, p.ScopeSize); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	if err := ds.DB.Create(p).Error; err != nil {
		return dbError(err, "create_project", "", "project_name", p.Name)
	}

	getLogger().Debug("project created", "project_id", p.ID, "name", p.Name)
	return nil
}

// GetProject fetches a single project by ID.
func (ds *DataStore) GetProject(id uint) (*Project, error) {
	var project Project
	if err := ds.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("project", fmt.Sprint(id))
		}
		return nil, dbError(err, "get_project", "", "project_id", id)
	}
	return &project, nil
}

// listQuery builds the filtered base query for ListProjects. Called once for
// the count and once for the page so no query state leaks between the two.
func (ds *DataStore) listQuery(q *ProjectQuery) *gorm.DB {
	db := ds.DB.Model(&Project{})
	if !q.IncludeArchived {
		db = db.Where("projects.is_archived = ?", false)
	}
	if q.Status != "" {
		db = db.Where("projects.status = ?", q.Status)
	}
	if q.Tag != "" {
		db = db.
			Joins("JOIN project_tags ON project_tags.project_id = projects.id").
			Joins("JOIN tags ON tags.id = project_tags.tag_id").
			Where("tags.name = ?", q.Tag)
	}
	return db
}

// listOrderClause builds the ORDER BY for ListProjects. SortBy outside the
// allow-list falls back to last_worked_at, SortOrder outside {asc, desc}
// falls back to desc. Projects never worked on sort as oldest regardless of
// direction; the CASE expression keeps that portable across SQLite and MySQL.
func listOrderClause(sortBy, sortOrder string) string {
	order := strings.ToLower(sortOrder)
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	column := strings.ToLower(sortBy)
	switch column {
	case "name", "created_at", "status":
	default:
		column = "last_worked_at"
	}

	switch column {
	case "last_worked_at":
		return fmt.Sprintf(
			"CASE WHEN projects.last_worked_at IS NULL THEN 0 ELSE 1 END %s, projects.last_worked_at %s, projects.created_at DESC",
			order, order)
	case "created_at":
		return fmt.Sprintf("projects.created_at %s", order)
	default:
		return fmt.Sprintf("projects.%s %s, projects.created_at DESC", column, order)
	}
}

// ListProjects returns the matching projects plus the total match count
// before pagination. Archived projects are excluded unless IncludeArchived.
func (ds *DataStore) ListProjects(q ProjectQuery) ([]Project, int64, error) {
	start := time.Now()

	countQuery := ds.listQuery(&q)
	if q.Tag != "" {
		countQuery = countQuery.Distinct("projects.id")
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "list_projects", "", "status", q.Status, "tag", q.Tag)
	}

	db := ds.listQuery(&q)
	if q.Tag != "" {
		db = db.Distinct("projects.*")
	}
	db = db.Order(listOrderClause(q.SortBy, q.SortOrder))
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
		if q.Offset > 0 {
			db = db.Offset(q.Offset)
		}
	}

	var projects []Project
	if err := db.Find(&projects).Error; err != nil {
		return nil, 0, dbError(err, "list_projects", "", "status", q.Status, "tag", q.Tag)
	}

	if ds.metrics != nil && q.Tag != "" {
		ds.metrics.RecordSearchOperation(metrics.SearchTypeTagFilter, "success")
		ds.metrics.RecordSearchDuration(metrics.SearchTypeTagFilter, time.Since(start).Seconds())
		ds.metrics.RecordSearchResultSize(metrics.SearchTypeTagFilter, len(projects))
	}

	return projects, total, nil
}

// UpdateProject applies the allow-listed fields from updates and returns the
// refreshed record. An empty effective update set leaves the record unchanged.
func (ds *DataStore) UpdateProject(id uint, updates map[string]any) (*Project, error) {
	filtered := make(map[string]any, len(updates))
	for k, v := range updates {
		if updatableProjectFields[k] {
			filtered[k] = v
		}
	}

	if name, ok := filtered["name"]; ok {
		s, isString := name.(string)
		if !isString || strings.TrimSpace(s) == "" {
			return nil, validationError("project name cannot be empty", "name", name)
		}
	}
	enums := make(map[string]string, 3)
	for _, key := range []string{"status", "project_type", "scope_size"} {
		if v, ok := filtered[key]; ok {
			s, isString := v.(string)
			if !isString {
				return nil, validationError(fmt.Sprintf("%s must be a string", key), key, v)
			}
			enums[key] = s
		}
	}
	// Status is mandatory, so an explicit empty value is invalid; the
	// optional enums may be cleared with an empty string.
	if _, ok := filtered["status"]; ok && enums["status"] == "" {
		return nil, validationError(
			fmt.Sprintf("invalid status %q, must be one of: %s", "", strings.Join(ProjectStatuses, ", ")),
			"status", "")
	}
	if err := validateProjectEnums(enums["status"], enums["project_type"], enums["scope_size"]); err != nil {
		return nil, err
	}

	err := ds.transaction(func(tx *gorm.DB) error {
		var existing Project
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("project", fmt.Sprint(id))
			}
			return dbError(err, "update_project", "", "project_id", id)
		}
		if len(filtered) == 0 {
			return nil
		}
		if err := tx.Model(&Project{}).Where("id = ?", id).Updates(filtered).Error; err != nil {
			return dbError(err, "update_project", "", "project_id", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ds.GetProject(id)
}

// DeleteProject removes a project and everything hanging off it: notes, tag
// associations, and relationships in both directions. Runs as one
// transaction; a partial cascade is never visible.
func (ds *DataStore) DeleteProject(id uint) error {
	return ds.transaction(func(tx *gorm.DB) error {
		var project Project
		if err := tx.First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("project", fmt.Sprint(id))
			}
			return dbError(err, "delete_project", "", "project_id", id)
		}

		if err := tx.Where("project_id = ?", id).Delete(&ProjectNote{}).Error; err != nil {
			return dbError(err, "delete_project_notes", "", "project_id", id)
		}
		if err := tx.Where("project_id = ?", id).Delete(&ProjectTag{}).Error; err != nil {
			return dbError(err, "delete_project_tags", "", "project_id", id)
		}
		if err := tx.Where("source_project_id = ? OR target_project_id = ?", id, id).
			Delete(&ProjectRelationship{}).Error; err != nil {
			return dbError(err, "delete_project_relationships", "", "project_id", id)
		}
		if err := tx.Delete(&Project{}, id).Error; err != nil {
			return dbError(err, "delete_project", "", "project_id", id)
		}

		getLogger().Debug("project deleted", "project_id", id, "name", project.Name)
		return nil
	})
}

// TouchProject stamps the project as worked on right now (UTC) and returns
// the new timestamp.
func (ds *DataStore) TouchProject(id uint) (time.Time, error) {
	now := time.Now().UTC()

	err := ds.transaction(func(tx *gorm.DB) error {
		var existing Project
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("project", fmt.Sprint(id))
			}
			return dbError(err, "touch_project", "", "project_id", id)
		}
		if err := tx.Model(&Project{}).Where("id = ?", id).
			Update("last_worked_at", now).Error; err != nil {
			return dbError(err, "touch_project", "", "project_id", id)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	return now, nil
}

// searchConditions covers the project fields matched by SearchProjects, plus
// tag names and note content through the joins below.
const searchConditions = `LOWER(projects.name) LIKE ?
	OR LOWER(projects.description) LIKE ?
	OR LOWER(projects.primary_language) LIKE ?
	OR LOWER(projects.stack) LIKE ?
	OR LOWER(projects.learning_goal) LIKE ?
	OR LOWER(projects.project_type) LIKE ?
	OR LOWER(tags.name) LIKE ?
	OR LOWER(project_notes.content) LIKE ?`

// SearchProjects finds non-archived projects whose descriptive fields, tag
// names, or note content match the query, case-insensitively. An empty query
// degrades to a plain status-filtered listing. LOWER() on both sides keeps
// matching identical across SQLite and MySQL collations.
func (ds *DataStore) SearchProjects(query, status string) ([]Project, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		projects, _, err := ds.ListProjects(ProjectQuery{Status: status})
		return projects, err
	}

	start := time.Now()
	pattern := "%" + strings.ToLower(trimmed) + "%"

	db := ds.DB.Model(&Project{}).
		Joins("LEFT JOIN project_tags ON project_tags.project_id = projects.id").
		Joins("LEFT JOIN tags ON tags.id = project_tags.tag_id").
		Joins("LEFT JOIN project_notes ON project_notes.project_id = projects.id").
		Where("projects.is_archived = ?", false).
		Where("("+searchConditions+")",
			pattern, pattern, pattern, pattern, pattern, pattern, pattern, pattern)
	if status != "" {
		db = db.Where("projects.status = ?", status)
	}

	var projects []Project
	err := db.Distinct("projects.*").
		Order("CASE WHEN projects.last_worked_at IS NULL THEN 0 ELSE 1 END DESC, projects.last_worked_at DESC, projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		if ds.metrics != nil {
			ds.metrics.RecordSearchOperation(metrics.SearchTypeText, "error")
		}
		return nil, dbError(err, "search_projects", "", "query", trimmed)
	}

	if ds.metrics != nil {
		ds.metrics.RecordSearchOperation(metrics.SearchTypeText, "success")
		ds.metrics.RecordSearchDuration(metrics.SearchTypeText, time.Since(start).Seconds())
		ds.metrics.RecordSearchResultSize(metrics.SearchTypeText, len(projects))
	}

	return projects, nil
}

// Package datastore - tag management and project/tag associations
package datastore

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/errors"
)

// AddProjectTag attaches a tag to a project, creating the tag row if it does
// not exist yet. Adding an already-attached tag is not an error; the return
// value reports whether a new association was created.
func (ds *DataStore) AddProjectTag(projectID uint, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, validationError("tag name cannot be empty", "name", name)
	}

	added := false
	err := ds.transaction(func(tx *gorm.DB) error {
		var project Project
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("project", fmt.Sprint(projectID))
			}
			return dbError(err, "add_project_tag", "", "project_id", projectID)
		}

		var tag Tag
		if err := tx.Where(Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return dbError(err, "add_project_tag", "", "tag_name", name)
		}

		var count int64
		if err := tx.Model(&ProjectTag{}).
			Where("project_id = ? AND tag_id = ?", projectID, tag.ID).
			Count(&count).Error; err != nil {
			return dbError(err, "add_project_tag", "", "project_id", projectID, "tag_name", name)
		}
		if count > 0 {
			return nil // already attached, idempotent success
		}

		if err := tx.Create(&ProjectTag{ProjectID: projectID, TagID: tag.ID}).Error; err != nil {
			return dbError(err, "add_project_tag", "", "project_id", projectID, "tag_name", name)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return added, nil
}

// RemoveProjectTag detaches a tag from a project. The tag row itself is kept
// even when its last association goes; absent tag or association is not-found.
func (ds *DataStore) RemoveProjectTag(projectID uint, name string) error {
	return ds.transaction(func(tx *gorm.DB) error {
		var tag Tag
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("tag", name)
			}
			return dbError(err, "remove_project_tag", "", "tag_name", name)
		}

		result := tx.Where("project_id = ? AND tag_id = ?", projectID, tag.ID).Delete(&ProjectTag{})
		if result.Error != nil {
			return dbError(result.Error, "remove_project_tag", "", "project_id", projectID, "tag_name", name)
		}
		if result.RowsAffected == 0 {
			return notFoundError("tag association",
				fmt.Sprintf("project %d / tag %q", projectID, name))
		}
		return nil
	})
}

// ListTags returns every tag with its project count, ordered by name.
// Tags with zero associations are included.
func (ds *DataStore) ListTags() ([]TagSummary, error) {
	var summaries []TagSummary
	err := ds.DB.Model(&Tag{}).
		Select("tags.name AS name, COUNT(project_tags.project_id) AS project_count").
		Joins("LEFT JOIN project_tags ON project_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("tags.name ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, dbError(err, "list_tags", "")
	}
	return summaries, nil
}

// ListProjectTags returns the tag names attached to one project, ordered
// ascending. The project must exist.
func (ds *DataStore) ListProjectTags(projectID uint) ([]string, error) {
	var project Project
	if err := ds.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("project", fmt.Sprint(projectID))
		}
		return nil, dbError(err, "list_project_tags", "", "project_id", projectID)
	}

	var names []string
	err := ds.DB.Model(&Tag{}).
		Select("tags.name").
		Joins("JOIN project_tags ON project_tags.tag_id = tags.id").
		Where("project_tags.project_id = ?", projectID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, dbError(err, "list_project_tags", "", "project_id", projectID)
	}
	return names, nil
}

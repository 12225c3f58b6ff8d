// Package datastore - project notes
package datastore

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/errors"
)

// CreateNote validates and stores a note against an existing project. On
// success n carries the assigned ID and creation timestamp.
func (ds *DataStore) CreateNote(n *ProjectNote) error {
	if strings.TrimSpace(n.Content) == "" {
		return validationError("note content cannot be empty", "content", n.Content)
	}
	if n.NoteType == "" {
		n.NoteType = NoteLog
	}
	if !ValidNoteType(n.NoteType) {
		return validationError(
			fmt.Sprintf("invalid note type %q, must be one of: %s", n.NoteType, strings.Join(NoteTypes, ", ")),
			"note_type", n.NoteType)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	return ds.transaction(func(tx *gorm.DB) error {
		var project Project
		if err := tx.First(&project, n.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("project", fmt.Sprint(n.ProjectID))
			}
			return dbError(err, "create_note", "", "project_id", n.ProjectID)
		}
		if err := tx.Create(n).Error; err != nil {
			return dbError(err, "create_note", "", "project_id", n.ProjectID)
		}
		return nil
	})
}

// GetNote fetches a single note by ID.
func (ds *DataStore) GetNote(id uint) (*ProjectNote, error) {
	var note ProjectNote
	if err := ds.DB.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("note", fmt.Sprint(id))
		}
		return nil, dbError(err, "get_note", "", "note_id", id)
	}
	return &note, nil
}

// ListNotes returns a project's notes newest first, optionally filtered by
// type. A limit <= 0 returns all notes; the limit serves the recent-notes
// views. The project must exist.
func (ds *DataStore) ListNotes(projectID uint, noteType string, limit int) ([]ProjectNote, error) {
	var project Project
	if err := ds.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("project", fmt.Sprint(projectID))
		}
		return nil, dbError(err, "list_notes", "", "project_id", projectID)
	}

	if noteType != "" && !ValidNoteType(noteType) {
		return nil, validationError(
			fmt.Sprintf("invalid note type %q, must be one of: %s", noteType, strings.Join(NoteTypes, ", ")),
			"note_type", noteType)
	}

	db := ds.DB.Where("project_id = ?", projectID)
	if noteType != "" {
		db = db.Where("note_type = ?", noteType)
	}
	// id breaks created_at ties so ordering stays deterministic
	db = db.Order("created_at DESC, id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var notes []ProjectNote
	if err := db.Find(&notes).Error; err != nil {
		return nil, dbError(err, "list_notes", "", "project_id", projectID)
	}
	return notes, nil
}

// DeleteNote removes a single note.
func (ds *DataStore) DeleteNote(id uint) error {
	result := ds.DB.Delete(&ProjectNote{}, id)
	if result.Error != nil {
		return dbError(result.Error, "delete_note", "", "note_id", id)
	}
	if result.RowsAffected == 0 {
		return notFoundError("note", fmt.Sprint(id))
	}
	return nil
}

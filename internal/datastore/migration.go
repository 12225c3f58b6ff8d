// migration.go copies all project data between two direct backends.
package datastore

import (
	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/errors"
)

// MigrationSummary reports how many rows each table contributed to a
// completed migration.
type MigrationSummary struct {
	Projects      int
	Tags          int
	Associations  int
	Notes         int
	Relationships int
}

// directDB extracts the database handle from a direct backend. Remote
// stores cannot be migrated; run the migration on the machine holding the
// database instead.
func directDB(store Interface) (*gorm.DB, error) {
	switch s := store.(type) {
	case *SQLiteStore:
		return s.DB, nil
	case *MySQLStore:
		return s.DB, nil
	default:
		return nil, errors.Newf("migration requires a direct database backend, got %T", store).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// Migrate copies every table from the source store into the target store,
// remapping primary keys as rows are inserted. All target writes happen in
// one transaction, so a failed migration leaves the target unchanged. Both
// stores must be open direct backends; existing target rows are kept and
// tags are merged by name.
func Migrate(source, target Interface) (*MigrationSummary, error) {
	srcDB, err := directDB(source)
	if err != nil {
		return nil, err
	}
	dstDB, err := directDB(target)
	if err != nil {
		return nil, err
	}

	summary := &MigrationSummary{}
	err = dstDB.Transaction(func(tx *gorm.DB) error {
		projectIDs, err := migrateProjects(srcDB, tx, summary)
		if err != nil {
			return err
		}
		tagIDs, err := migrateTags(srcDB, tx, summary)
		if err != nil {
			return err
		}
		if err := migrateAssociations(srcDB, tx, projectIDs, tagIDs, summary); err != nil {
			return err
		}
		if err := migrateNotes(srcDB, tx, projectIDs, summary); err != nil {
			return err
		}
		return migrateRelationships(srcDB, tx, projectIDs, summary)
	})
	if err != nil {
		return nil, err
	}

	getLogger().Info("migration completed",
		"projects", summary.Projects,
		"tags", summary.Tags,
		"associations", summary.Associations,
		"notes", summary.Notes,
		"relationships", summary.Relationships)
	return summary, nil
}

// migrateProjects copies the projects table and returns the old-to-new ID
// map the dependent tables need. Timestamps and the archived flag survive
// the copy; only the primary key is reassigned.
func migrateProjects(src *gorm.DB, tx *gorm.DB, summary *MigrationSummary) (map[uint]uint, error) {
	var projects []Project
	if err := src.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, dbError(err, "migrate_read_projects", "")
	}

	idMap := make(map[uint]uint, len(projects))
	for i := range projects {
		oldID := projects[i].ID
		p := projects[i]
		p.ID = 0
		p.Notes, p.ProjectTags, p.OutgoingLinks, p.IncomingLinks = nil, nil, nil, nil
		if err := tx.Create(&p).Error; err != nil {
			return nil, dbError(err, "migrate_write_project", "", "project_name", p.Name)
		}
		idMap[oldID] = p.ID
	}
	summary.Projects = len(projects)
	return idMap, nil
}

// migrateTags copies the tags table, merging with any tags already present
// in the target by name.
func migrateTags(src *gorm.DB, tx *gorm.DB, summary *MigrationSummary) (map[uint]uint, error) {
	var tags []Tag
	if err := src.Order("id ASC").Find(&tags).Error; err != nil {
		return nil, dbError(err, "migrate_read_tags", "")
	}

	idMap := make(map[uint]uint, len(tags))
	for i := range tags {
		tag := Tag{Name: tags[i].Name}
		if err := tx.Where("name = ?", tag.Name).FirstOrCreate(&tag).Error; err != nil {
			return nil, dbError(err, "migrate_write_tag", "", "tag_name", tag.Name)
		}
		idMap[tags[i].ID] = tag.ID
	}
	summary.Tags = len(tags)
	return idMap, nil
}

// migrateAssociations copies the project/tag junction table. Rows pointing
// at vanished projects or tags are skipped rather than failing the run.
func migrateAssociations(src *gorm.DB, tx *gorm.DB, projectIDs, tagIDs map[uint]uint, summary *MigrationSummary) error {
	var assocs []ProjectTag
	if err := src.Find(&assocs).Error; err != nil {
		return dbError(err, "migrate_read_associations", "")
	}

	for _, a := range assocs {
		projectID, okProject := projectIDs[a.ProjectID]
		tagID, okTag := tagIDs[a.TagID]
		if !okProject || !okTag {
			continue
		}
		if err := tx.Create(&ProjectTag{ProjectID: projectID, TagID: tagID}).Error; err != nil {
			return dbError(err, "migrate_write_association", "", "project_id", projectID, "tag_id", tagID)
		}
		summary.Associations++
	}
	return nil
}

// migrateNotes copies project notes, preserving creation timestamps.
func migrateNotes(src *gorm.DB, tx *gorm.DB, projectIDs map[uint]uint, summary *MigrationSummary) error {
	var notes []ProjectNote
	if err := src.Order("id ASC").Find(&notes).Error; err != nil {
		return dbError(err, "migrate_read_notes", "")
	}

	for i := range notes {
		projectID, ok := projectIDs[notes[i].ProjectID]
		if !ok {
			continue
		}
		n := notes[i]
		n.ID = 0
		n.ProjectID = projectID
		if err := tx.Create(&n).Error; err != nil {
			return dbError(err, "migrate_write_note", "", "project_id", projectID)
		}
		summary.Notes++
	}
	return nil
}

// migrateRelationships copies relationship edges with both endpoints
// remapped.
func migrateRelationships(src *gorm.DB, tx *gorm.DB, projectIDs map[uint]uint, summary *MigrationSummary) error {
	var relationships []ProjectRelationship
	if err := src.Order("id ASC").Find(&relationships).Error; err != nil {
		return dbError(err, "migrate_read_relationships", "")
	}

	for i := range relationships {
		sourceID, okSource := projectIDs[relationships[i].SourceProjectID]
		targetID, okTarget := projectIDs[relationships[i].TargetProjectID]
		if !okSource || !okTarget {
			continue
		}
		r := relationships[i]
		r.ID = 0
		r.SourceProjectID = sourceID
		r.TargetProjectID = targetID
		if err := tx.Create(&r).Error; err != nil {
			return dbError(err, "migrate_write_relationship", "", "source_id", sourceID, "target_id", targetID)
		}
		summary.Relationships++
	}
	return nil
}

// Package datastore - typed relationships between projects and the project graph
package datastore

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/errors"
)

// relationRow is the scan target for relationship queries joined with the
// related project's name.
type relationRow struct {
	ID               uint
	RelatedProjectID uint
	RelatedName      string
	RelationshipType string
	CreatedAt        time.Time
}

// CreateRelationship links two existing projects. The (source, target, type)
// triple is unique; recreating it is a conflict. On success r carries the
// assigned ID and creation timestamp.
func (ds *DataStore) CreateRelationship(r *ProjectRelationship) error {
	if !ValidRelationshipType(r.RelationshipType) {
		return validationError(
			fmt.Sprintf("invalid relationship type %q, must be one of: %s",
				r.RelationshipType, strings.Join(RelationshipTypes, ", ")),
			"relationship_type", r.RelationshipType)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	return ds.transaction(func(tx *gorm.DB) error {
		for _, id := range []uint{r.SourceProjectID, r.TargetProjectID} {
			var project Project
			if err := tx.First(&project, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundError("project", fmt.Sprint(id))
				}
				return dbError(err, "create_relationship", "", "project_id", id)
			}
		}

		// Pre-check keeps the duplicate answer identical across engines
		// instead of relying on driver-specific constraint errors.
		var count int64
		if err := tx.Model(&ProjectRelationship{}).
			Where("source_project_id = ? AND target_project_id = ? AND relationship_type = ?",
				r.SourceProjectID, r.TargetProjectID, r.RelationshipType).
			Count(&count).Error; err != nil {
			return dbError(err, "create_relationship", "")
		}
		if count > 0 {
			return conflictError(
				fmt.Sprintf("relationship already exists: %d -[%s]-> %d",
					r.SourceProjectID, r.RelationshipType, r.TargetProjectID),
				"duplicate_relationship",
				"source_project_id", r.SourceProjectID,
				"target_project_id", r.TargetProjectID,
				"relationship_type", r.RelationshipType)
		}

		if err := tx.Create(r).Error; err != nil {
			return dbError(err, "create_relationship", "")
		}
		return nil
	})
}

// GetRelationship fetches one relationship viewed from its source project,
// with the target's name resolved.
func (ds *DataStore) GetRelationship(id uint) (*ProjectRelation, error) {
	var rel ProjectRelationship
	if err := ds.DB.First(&rel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("relationship", fmt.Sprint(id))
		}
		return nil, dbError(err, "get_relationship", "", "relationship_id", id)
	}

	var target Project
	if err := ds.DB.First(&target, rel.TargetProjectID).Error; err != nil {
		return nil, dbError(err, "get_relationship", "", "relationship_id", id)
	}

	return &ProjectRelation{
		ID:               rel.ID,
		ProjectID:        rel.SourceProjectID,
		RelatedProjectID: rel.TargetProjectID,
		RelatedName:      target.Name,
		RelationshipType: rel.RelationshipType,
		Direction:        DirectionOutgoing,
		CreatedAt:        rel.CreatedAt,
	}, nil
}

// ListRelationships returns a project's relationships, outgoing first then
// incoming, each newest first. The related endpoint's name is resolved and
// the direction marked. The project must exist.
func (ds *DataStore) ListRelationships(projectID uint) ([]ProjectRelation, error) {
	var project Project
	if err := ds.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("project", fmt.Sprint(projectID))
		}
		return nil, dbError(err, "list_relationships", "", "project_id", projectID)
	}

	var outgoing []relationRow
	err := ds.DB.Model(&ProjectRelationship{}).
		Select(`project_relationships.id,
			project_relationships.target_project_id AS related_project_id,
			projects.name AS related_name,
			project_relationships.relationship_type,
			project_relationships.created_at`).
		Joins("JOIN projects ON projects.id = project_relationships.target_project_id").
		Where("project_relationships.source_project_id = ?", projectID).
		Order("project_relationships.created_at DESC, project_relationships.id DESC").
		Scan(&outgoing).Error
	if err != nil {
		return nil, dbError(err, "list_relationships", "", "project_id", projectID)
	}

	var incoming []relationRow
	err = ds.DB.Model(&ProjectRelationship{}).
		Select(`project_relationships.id,
			project_relationships.source_project_id AS related_project_id,
			projects.name AS related_name,
			project_relationships.relationship_type,
			project_relationships.created_at`).
		Joins("JOIN projects ON projects.id = project_relationships.source_project_id").
		Where("project_relationships.target_project_id = ?", projectID).
		Order("project_relationships.created_at DESC, project_relationships.id DESC").
		Scan(&incoming).Error
	if err != nil {
		return nil, dbError(err, "list_relationships", "", "project_id", projectID)
	}

	relations := make([]ProjectRelation, 0, len(outgoing)+len(incoming))
	for _, row := range outgoing {
		relations = append(relations, projectRelation(projectID, &row, DirectionOutgoing))
	}
	for _, row := range incoming {
		relations = append(relations, projectRelation(projectID, &row, DirectionIncoming))
	}
	return relations, nil
}

func projectRelation(projectID uint, row *relationRow, direction string) ProjectRelation {
	return ProjectRelation{
		ID:               row.ID,
		ProjectID:        projectID,
		RelatedProjectID: row.RelatedProjectID,
		RelatedName:      row.RelatedName,
		RelationshipType: row.RelationshipType,
		Direction:        direction,
		CreatedAt:        row.CreatedAt,
	}
}

// DeleteRelationship removes a single relationship edge.
func (ds *DataStore) DeleteRelationship(id uint) error {
	result := ds.DB.Delete(&ProjectRelationship{}, id)
	if result.Error != nil {
		return dbError(result.Error, "delete_relationship", "", "relationship_id", id)
	}
	if result.RowsAffected == 0 {
		return notFoundError("relationship", fmt.Sprint(id))
	}
	return nil
}

// GetGraph returns the relationship graph over non-archived projects. Edges
// whose either endpoint is archived are filtered out with the nodes.
func (ds *DataStore) GetGraph() (*ProjectGraph, error) {
	var projects []Project
	if err := ds.DB.Where("is_archived = ?", false).Order("id ASC").Find(&projects).Error; err != nil {
		return nil, dbError(err, "get_graph", "")
	}

	nodes := make([]GraphNode, 0, len(projects))
	visible := make(map[uint]bool, len(projects))
	for i := range projects {
		p := &projects[i]
		visible[p.ID] = true
		nodes = append(nodes, GraphNode{
			ID:              p.ID,
			Name:            p.Name,
			Status:          p.Status,
			ProjectType:     p.ProjectType,
			PrimaryLanguage: p.PrimaryLanguage,
			Stack:           p.Stack,
		})
	}

	var rels []ProjectRelationship
	if err := ds.DB.Order("id ASC").Find(&rels).Error; err != nil {
		return nil, dbError(err, "get_graph", "")
	}

	edges := make([]GraphEdge, 0, len(rels))
	for i := range rels {
		r := &rels[i]
		if !visible[r.SourceProjectID] || !visible[r.TargetProjectID] {
			continue
		}
		edges = append(edges, GraphEdge{
			ID:               r.ID,
			SourceProjectID:  r.SourceProjectID,
			TargetProjectID:  r.TargetProjectID,
			RelationshipType: r.RelationshipType,
		})
	}

	return &ProjectGraph{Nodes: nodes, Edges: edges}, nil
}

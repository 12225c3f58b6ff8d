// relationships.go: project relationship and graph endpoints
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/projtrack/internal/datastore"
)

// createRelationshipRequest is the POST /api/projects/:id/relationships
// payload. The path parameter is the source; direction runs source to target.
type createRelationshipRequest struct {
	TargetProjectID  uint   `json:"target_project_id"`
	RelationshipType string `json:"relationship_type"`
}

// RelationshipListResponse is the envelope for a project's relationship
// listing, outgoing edges first.
type RelationshipListResponse struct {
	Relationships []datastore.ProjectRelation `json:"relationships"`
	Total         int                         `json:"total"`
}

// initRelationshipRoutes registers the relationship and graph endpoints.
func (c *Controller) initRelationshipRoutes() {
	c.Group.POST("/projects/:id/relationships", c.CreateRelationship)
	c.Group.GET("/projects/:id/relationships", c.ListRelationships)
	c.Group.GET("/relationships/:id", c.GetRelationship)
	c.Group.DELETE("/relationships/:id", c.DeleteRelationship)
	c.Group.GET("/graph", c.GetGraph)
}

// CreateRelationship handles POST /api/projects/:id/relationships. A
// duplicate (source, target, type) triple answers 409.
func (c *Controller) CreateRelationship(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	var req createRelationshipRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	rel := datastore.ProjectRelationship{
		SourceProjectID:  id,
		TargetProjectID:  req.TargetProjectID,
		RelationshipType: req.RelationshipType,
	}
	if err := c.DS.CreateRelationship(&rel); err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, rel)
}

// ListRelationships handles GET /api/projects/:id/relationships.
func (c *Controller) ListRelationships(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	relations, err := c.DS.ListRelationships(id)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, RelationshipListResponse{
		Relationships: relations,
		Total:         len(relations),
	})
}

// GetRelationship handles GET /api/relationships/:id. The edge is reported
// from the source project's perspective.
func (c *Controller) GetRelationship(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid relationship ID", http.StatusBadRequest)
	}

	relation, err := c.DS.GetRelationship(id)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, relation)
}

// DeleteRelationship handles DELETE /api/relationships/:id.
func (c *Controller) DeleteRelationship(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid relationship ID", http.StatusBadRequest)
	}

	if err := c.DS.DeleteRelationship(id); err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "relationship deleted"})
}

// GetGraph handles GET /api/graph. Archived projects and their edges are
// excluded.
func (c *Controller) GetGraph(ctx echo.Context) error {
	graph, err := c.DS.GetGraph()
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, graph)
}

// tags.go: tag attachment and listing endpoints
package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/projtrack/internal/datastore"
)

// addTagRequest is the POST /api/projects/:id/tags payload.
type addTagRequest struct {
	Name string `json:"name"`
}

// AddTagResponse reports whether the tag association was created or already
// present. Both outcomes are success.
type AddTagResponse struct {
	Message string `json:"message"`
	Added   bool   `json:"added"`
}

// TagListResponse is the envelope for the global tag listing.
type TagListResponse struct {
	Tags  []datastore.TagSummary `json:"tags"`
	Total int                    `json:"total"`
}

// projectTag is one row of a project's tag listing.
type projectTag struct {
	Name string `json:"name"`
}

// initTagRoutes registers the tag endpoints.
func (c *Controller) initTagRoutes() {
	c.Group.GET("/tags", c.ListTags)
	c.Group.POST("/projects/:id/tags", c.AddProjectTag)
	c.Group.DELETE("/projects/:id/tags/:name", c.RemoveProjectTag)
	c.Group.GET("/projects/:id/tags", c.ListProjectTags)
}

// normalizeTagName applies the boundary normalization for tag names. The
// store compares names verbatim; HTTP and CLI input is trimmed and
// lowercased before it gets there.
func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddProjectTag handles POST /api/projects/:id/tags.
func (c *Controller) AddProjectTag(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	var req addTagRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	added, err := c.DS.AddProjectTag(id, normalizeTagName(req.Name))
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	message := "tag added"
	if !added {
		message = "tag already exists"
	}
	return ctx.JSON(http.StatusCreated, AddTagResponse{Message: message, Added: added})
}

// RemoveProjectTag handles DELETE /api/projects/:id/tags/:name.
func (c *Controller) RemoveProjectTag(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	// Clients path-escape tag names; echo hands the parameter back raw.
	raw := ctx.Param("name")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}

	if err := c.DS.RemoveProjectTag(id, normalizeTagName(raw)); err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "tag removed"})
}

// ListTags handles GET /api/tags. Tags whose projects are all archived or
// deleted still appear, with a zero count.
func (c *Controller) ListTags(ctx echo.Context) error {
	tags, err := c.DS.ListTags()
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TagListResponse{Tags: tags, Total: len(tags)})
}

// ListProjectTags handles GET /api/projects/:id/tags.
func (c *Controller) ListProjectTags(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	names, err := c.DS.ListProjectTags(id)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	rows := make([]projectTag, 0, len(names))
	for _, name := range names {
		rows = append(rows, projectTag{Name: name})
	}
	return ctx.JSON(http.StatusOK, rows)
}

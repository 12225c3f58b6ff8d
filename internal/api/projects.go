// projects.go: project CRUD, listing, search, and touch endpoints
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
)

// ListProjectsResponse is the project listing envelope. Total is the match
// count before pagination; with a search query it equals len(Projects).
type ListProjectsResponse struct {
	Projects []datastore.Project `json:"projects"`
	Total    int64               `json:"total"`
}

// TouchProjectResponse confirms a touch with the stored timestamp.
type TouchProjectResponse struct {
	Message      string    `json:"message"`
	LastWorkedAt time.Time `json:"last_worked_at"`
}

// initProjectRoutes registers the project endpoints.
func (c *Controller) initProjectRoutes() {
	c.Group.POST("/projects", c.CreateProject)
	c.Group.GET("/projects", c.ListProjects)
	c.Group.GET("/projects/:id", c.GetProject)
	c.Group.PUT("/projects/:id", c.UpdateProject)
	c.Group.DELETE("/projects/:id", c.DeleteProject)
	c.Group.POST("/projects/:id/touch", c.TouchProject)
}

// parseIDParam extracts a numeric path parameter.
func parseIDParam(ctx echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, errors.Newf("invalid %s parameter: %q", name, ctx.Param(name)).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	return uint(id), nil
}

// CreateProject handles POST /api/projects.
func (c *Controller) CreateProject(ctx echo.Context) error {
	var project datastore.Project
	if err := ctx.Bind(&project); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	if err := c.DS.CreateProject(&project); err != nil {
		return c.HandleDataError(ctx, err)
	}

	c.Debug("Created project %d (%s)", project.ID, project.Name)
	return ctx.JSON(http.StatusCreated, project)
}

// ListProjects handles GET /api/projects. A non-empty search query switches
// to the text search path; otherwise filters, sorting, and pagination pass
// through to the datastore listing contract. Unknown status values filter to
// an empty result rather than an error, matching the direct backends.
func (c *Controller) ListProjects(ctx echo.Context) error {
	status := ctx.QueryParam("status")

	if search := strings.TrimSpace(ctx.QueryParam("search")); search != "" {
		projects, err := c.DS.SearchProjects(search, status)
		if err != nil {
			return c.HandleDataError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, ListProjectsResponse{
			Projects: projects,
			Total:    int64(len(projects)),
		})
	}

	query := datastore.ProjectQuery{
		Status:    status,
		Tag:       ctx.QueryParam("tag"),
		SortBy:    ctx.QueryParam("sort_by"),
		SortOrder: ctx.QueryParam("sort_order"),
	}
	if parsed, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && parsed > 0 {
		query.Limit = min(parsed, maxPageSize)
	}
	if parsed, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && parsed > 0 {
		query.Offset = parsed
	}

	projects, total, err := c.DS.ListProjects(query)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ListProjectsResponse{Projects: projects, Total: total})
}

// GetProject handles GET /api/projects/:id.
func (c *Controller) GetProject(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	project, err := c.DS.GetProject(id)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, project)
}

// UpdateProject handles PUT /api/projects/:id. The body is a partial update;
// the response is the refreshed record.
func (c *Controller) UpdateProject(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	updates := make(map[string]any)
	if err := ctx.Bind(&updates); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	project, err := c.DS.UpdateProject(id, updates)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	c.Debug("Updated project %d (%d fields)", id, len(updates))
	return ctx.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/:id. Notes, tag associations,
// and relationships go with the project.
func (c *Controller) DeleteProject(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	if err := c.DS.DeleteProject(id); err != nil {
		return c.HandleDataError(ctx, err)
	}

	c.Debug("Deleted project %d", id)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "project deleted"})
}

// TouchProject handles POST /api/projects/:id/touch.
func (c *Controller) TouchProject(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	stamped, err := c.DS.TouchProject(id)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TouchProjectResponse{
		Message:      "project touched",
		LastWorkedAt: stamped,
	})
}

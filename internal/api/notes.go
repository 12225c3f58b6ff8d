// notes.go: project note endpoints
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/projtrack/internal/datastore"
)

// createNoteRequest is the POST /api/projects/:id/notes payload. An empty
// note_type defaults to "log" in the datastore.
type createNoteRequest struct {
	Content  string `json:"content"`
	NoteType string `json:"note_type"`
}

// NoteListResponse is the envelope for a project's note listing.
type NoteListResponse struct {
	Notes []datastore.ProjectNote `json:"notes"`
	Total int                     `json:"total"`
}

// initNoteRoutes registers the note endpoints.
func (c *Controller) initNoteRoutes() {
	c.Group.POST("/projects/:id/notes", c.CreateNote)
	c.Group.GET("/projects/:id/notes", c.ListNotes)
	c.Group.GET("/notes/:id", c.GetNote)
	c.Group.DELETE("/notes/:id", c.DeleteNote)
}

// CreateNote handles POST /api/projects/:id/notes.
func (c *Controller) CreateNote(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	var req createNoteRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	note := datastore.ProjectNote{
		ProjectID: id,
		Content:   req.Content,
		NoteType:  req.NoteType,
	}
	if err := c.DS.CreateNote(&note); err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /api/projects/:id/notes, newest first.
func (c *Controller) ListNotes(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid project ID", http.StatusBadRequest)
	}

	limit := 0
	if parsed, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && parsed > 0 {
		limit = min(parsed, maxPageSize)
	}

	notes, err := c.DS.ListNotes(id, ctx.QueryParam("note_type"), limit)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/:id.
func (c *Controller) GetNote(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid note ID", http.StatusBadRequest)
	}

	note, err := c.DS.GetNote(id)
	if err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/:id.
func (c *Controller) DeleteNote(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid note ID", http.StatusBadRequest)
	}

	if err := c.DS.DeleteNote(id); err != nil {
		return c.HandleDataError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "note deleted"})
}

// notes_test.go: tests for project note handlers.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
)

func TestCreateNoteHandler(t *testing.T) {
	t.Run("creates and returns the stored note", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		created := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
		mockDS.On("CreateNote", mock.AnythingOfType("*datastore.ProjectNote")).
			Run(func(args mock.Arguments) {
				n := args.Get(0).(*datastore.ProjectNote)
				assert.Equal(t, uint(2), n.ProjectID)
				assert.Equal(t, "got mel spectrograms working", n.Content)
				n.ID = 15
				n.NoteType = datastore.NoteLog
				n.CreatedAt = created
			}).
			Return(nil)

		req := newJSONRequest(http.MethodPost, "/api/projects/2/notes",
			`{"content": "got mel spectrograms working"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("2")

		require.NoError(t, controller.CreateNote(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var note datastore.ProjectNote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
		assert.Equal(t, uint(15), note.ID)
		assert.Equal(t, datastore.NoteLog, note.NoteType, "empty type defaults to log in the store")

		mockDS.AssertExpectations(t)
	})

	t.Run("unknown note type answers 400", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("note type must be one of: log, idea, blocker, reflection").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
		mockDS.On("CreateNote", mock.AnythingOfType("*datastore.ProjectNote")).Return(dsErr)

		req := newJSONRequest(http.MethodPost, "/api/projects/2/notes",
			`{"content": "x", "note_type": "rant"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("2")

		require.NoError(t, controller.CreateNote(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		mockDS.AssertExpectations(t)
	})

	t.Run("unknown project answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("project not found: 50").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("CreateNote", mock.AnythingOfType("*datastore.ProjectNote")).Return(dsErr)

		req := newJSONRequest(http.MethodPost, "/api/projects/50/notes", `{"content": "x"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("50")

		require.NoError(t, controller.CreateNote(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestListNotesHandler(t *testing.T) {
	t.Run("passes type filter and clamped limit", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("ListNotes", uint(2), datastore.NoteBlocker, maxPageSize).
			Return([]datastore.ProjectNote{
				{ID: 4, ProjectID: 2, NoteType: datastore.NoteBlocker, Content: "stuck on CGO"},
			}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/projects/2/notes?note_type=blocker&limit=400", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("2")

		require.NoError(t, controller.ListNotes(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var response NoteListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, 1, response.Total)
		assert.Equal(t, "stuck on CGO", response.Notes[0].Content)

		mockDS.AssertExpectations(t)
	})

	t.Run("no filters means all notes", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("ListNotes", uint(2), "", 0).Return([]datastore.ProjectNote{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/projects/2/notes", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("2")

		require.NoError(t, controller.ListNotes(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestGetNoteHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("GetNote", uint(15)).Return(&datastore.ProjectNote{
			ID:        15,
			ProjectID: 2,
			NoteType:  datastore.NoteIdea,
			Content:   "try a ring buffer",
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/notes/15", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("15")

		require.NoError(t, controller.GetNote(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var note datastore.ProjectNote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
		assert.Equal(t, "try a ring buffer", note.Content)

		mockDS.AssertExpectations(t)
	})

	t.Run("not found answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("note not found: 16").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("GetNote", uint(16)).Return(nil, dsErr)

		req := httptest.NewRequest(http.MethodGet, "/api/notes/16", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("16")

		require.NoError(t, controller.GetNote(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestDeleteNoteHandler(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("DeleteNote", uint(15)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/notes/15", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("15")

	require.NoError(t, controller.DeleteNote(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "note deleted", response.Message)

	mockDS.AssertExpectations(t)
}

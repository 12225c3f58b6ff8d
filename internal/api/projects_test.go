// projects_test.go: tests for project CRUD, listing, search, and touch
// handlers.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
)

// newJSONRequest builds a request with a JSON body and content type header.
func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestCreateProjectHandler(t *testing.T) {
	t.Run("creates and returns the stored record", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		mockDS.On("CreateProject", mock.AnythingOfType("*datastore.Project")).
			Run(func(args mock.Arguments) {
				p := args.Get(0).(*datastore.Project)
				assert.Equal(t, "home-dns", p.Name)
				assert.Equal(t, "homelab", p.ProjectType)
				p.ID = 7
				p.Status = datastore.StatusActive
				p.CreatedAt = created
			}).
			Return(nil)

		req := newJSONRequest(http.MethodPost, "/api/projects",
			`{"name": "home-dns", "status": "active", "project_type": "homelab"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.CreateProject(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var project datastore.Project
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
		assert.Equal(t, uint(7), project.ID)
		assert.Equal(t, "home-dns", project.Name)
		assert.True(t, created.Equal(project.CreatedAt))

		mockDS.AssertExpectations(t)
	})

	t.Run("validation failure answers 400", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("project name cannot be empty").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
		mockDS.On("CreateProject", mock.AnythingOfType("*datastore.Project")).Return(dsErr)

		req := newJSONRequest(http.MethodPost, "/api/projects", `{"name": ""}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.CreateProject(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "project name cannot be empty", response.Message)

		mockDS.AssertExpectations(t)
	})

	t.Run("malformed body answers 400 without touching the store", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		req := newJSONRequest(http.MethodPost, "/api/projects", `{not json`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.CreateProject(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		mockDS.AssertNotCalled(t, "CreateProject", mock.Anything)
	})
}

func TestGetProjectHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("GetProject", uint(12)).Return(&datastore.Project{
			ID:     12,
			Name:   "birdsong-classifier",
			Status: datastore.StatusActive,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/projects/12", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("12")

		require.NoError(t, controller.GetProject(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var project datastore.Project
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
		assert.Equal(t, "birdsong-classifier", project.Name)

		mockDS.AssertExpectations(t)
	})

	t.Run("not found answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("project not found: 99").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("GetProject", uint(99)).Return(nil, dsErr)

		req := httptest.NewRequest(http.MethodGet, "/api/projects/99", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("99")

		require.NoError(t, controller.GetProject(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "project not found: 99", response.Message)

		mockDS.AssertExpectations(t)
	})

	t.Run("non-numeric id answers 400", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		req := httptest.NewRequest(http.MethodGet, "/api/projects/abc", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("abc")

		require.NoError(t, controller.GetProject(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		mockDS.AssertNotCalled(t, "GetProject", mock.Anything)
	})
}

func TestListProjectsHandler(t *testing.T) {
	t.Run("passes filters and pagination to the store", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		expected := datastore.ProjectQuery{
			Status:    datastore.StatusActive,
			Tag:       "go",
			SortBy:    "name",
			SortOrder: "asc",
			Limit:     25,
			Offset:    50,
		}
		mockDS.On("ListProjects", expected).Return([]datastore.Project{
			{ID: 1, Name: "alpha"},
			{ID: 2, Name: "beta"},
		}, int64(123), nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/projects?status=active&tag=go&sort_by=name&sort_order=asc&limit=25&offset=50", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.ListProjects(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var response ListProjectsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Len(t, response.Projects, 2)
		assert.Equal(t, int64(123), response.Total, "total is the pre-pagination match count")

		mockDS.AssertExpectations(t)
	})

	t.Run("clamps limit to the page size cap", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("ListProjects", datastore.ProjectQuery{Limit: maxPageSize}).
			Return([]datastore.Project{}, int64(0), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/projects?limit=5000", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.ListProjects(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		mockDS.AssertExpectations(t)
	})

	t.Run("ignores junk limit and offset", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("ListProjects", datastore.ProjectQuery{}).
			Return([]datastore.Project{}, int64(0), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/projects?limit=banana&offset=-3", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.ListProjects(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		mockDS.AssertExpectations(t)
	})

	t.Run("search query switches to the search path", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("SearchProjects", "dns server", datastore.StatusPaused).
			Return([]datastore.Project{{ID: 3, Name: "home-dns"}}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/api/projects?search=%20dns%20server%20&status=paused", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.ListProjects(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var response ListProjectsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Len(t, response.Projects, 1)
		assert.Equal(t, int64(1), response.Total, "search total equals the result length")

		mockDS.AssertNotCalled(t, "ListProjects", mock.Anything)
		mockDS.AssertExpectations(t)
	})

	t.Run("whitespace-only search falls back to listing", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("ListProjects", datastore.ProjectQuery{}).
			Return([]datastore.Project{}, int64(0), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/projects?search=%20%20", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.ListProjects(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		mockDS.AssertNotCalled(t, "SearchProjects", mock.Anything, mock.Anything)
		mockDS.AssertExpectations(t)
	})
}

func TestUpdateProjectHandler(t *testing.T) {
	t.Run("applies a partial update and returns the refreshed record", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		updates := map[string]any{"status": "paused", "description": "on hold"}
		mockDS.On("UpdateProject", uint(4), updates).Return(&datastore.Project{
			ID:          4,
			Name:        "recipe-box",
			Status:      datastore.StatusPaused,
			Description: "on hold",
		}, nil)

		req := newJSONRequest(http.MethodPut, "/api/projects/4",
			`{"status": "paused", "description": "on hold"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("4")

		require.NoError(t, controller.UpdateProject(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var project datastore.Project
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
		assert.Equal(t, datastore.StatusPaused, project.Status)
		assert.Equal(t, "on hold", project.Description)

		mockDS.AssertExpectations(t)
	})

	t.Run("unknown project answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("project not found: 41").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("UpdateProject", uint(41), mock.Anything).Return(nil, dsErr)

		req := newJSONRequest(http.MethodPut, "/api/projects/41", `{"status": "paused"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("41")

		require.NoError(t, controller.UpdateProject(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestDeleteProjectHandler(t *testing.T) {
	t.Run("deletes and confirms", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)
		mockDS.On("DeleteProject", uint(9)).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/projects/9", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("9")

		require.NoError(t, controller.DeleteProject(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var response MessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "project deleted", response.Message)

		mockDS.AssertExpectations(t)
	})

	t.Run("unknown project answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("project not found: 9").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("DeleteProject", uint(9)).Return(dsErr)

		req := httptest.NewRequest(http.MethodDelete, "/api/projects/9", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("9")

		require.NoError(t, controller.DeleteProject(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestTouchProjectHandler(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	stamped := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)
	mockDS.On("TouchProject", uint(6)).Return(stamped, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/6/touch", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("6")

	require.NoError(t, controller.TouchProject(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response TouchProjectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "project touched", response.Message)
	assert.True(t, stamped.Equal(response.LastWorkedAt))

	mockDS.AssertExpectations(t)
}

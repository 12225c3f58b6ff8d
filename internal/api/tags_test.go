// tags_test.go: tests for tag attachment and listing handlers.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
)

func TestAddProjectTagHandler(t *testing.T) {
	t.Run("normalizes the name and reports a new association", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		// "  Go  " must reach the store as "go".
		mockDS.On("AddProjectTag", uint(3), "go").Return(true, nil)

		req := newJSONRequest(http.MethodPost, "/api/projects/3/tags", `{"name": "  Go  "}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("3")

		require.NoError(t, controller.AddProjectTag(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var response AddTagResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "tag added", response.Message)
		assert.True(t, response.Added)

		mockDS.AssertExpectations(t)
	})

	t.Run("repeat attach is success with added=false", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("AddProjectTag", uint(3), "go").Return(false, nil)

		req := newJSONRequest(http.MethodPost, "/api/projects/3/tags", `{"name": "go"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("3")

		require.NoError(t, controller.AddProjectTag(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var response AddTagResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "tag already exists", response.Message)
		assert.False(t, response.Added)

		mockDS.AssertExpectations(t)
	})

	t.Run("empty name answers 400", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("tag name cannot be empty").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
		mockDS.On("AddProjectTag", uint(3), "").Return(false, dsErr)

		req := newJSONRequest(http.MethodPost, "/api/projects/3/tags", `{"name": "   "}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("3")

		require.NoError(t, controller.AddProjectTag(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		mockDS.AssertExpectations(t)
	})

	t.Run("unknown project answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("project not found: 77").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("AddProjectTag", uint(77), "go").Return(false, dsErr)

		req := newJSONRequest(http.MethodPost, "/api/projects/77/tags", `{"name": "go"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("77")

		require.NoError(t, controller.AddProjectTag(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestRemoveProjectTagHandler(t *testing.T) {
	t.Run("unescapes the path parameter", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("RemoveProjectTag", uint(3), "needs polish").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/projects/3/tags/needs%20polish", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id", "name")
		c.SetParamValues("3", "needs%20polish")

		require.NoError(t, controller.RemoveProjectTag(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var response MessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "tag removed", response.Message)

		mockDS.AssertExpectations(t)
	})

	t.Run("unattached tag answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("tag not found: zig").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("RemoveProjectTag", uint(3), "zig").Return(dsErr)

		req := httptest.NewRequest(http.MethodDelete, "/api/projects/3/tags/zig", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id", "name")
		c.SetParamValues("3", "zig")

		require.NoError(t, controller.RemoveProjectTag(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestListTagsHandler(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("ListTags").Return([]datastore.TagSummary{
		{Name: "audio", ProjectCount: 2},
		{Name: "go", ProjectCount: 5},
		{Name: "retired", ProjectCount: 0},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tags", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, controller.ListTags(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response TagListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Total)
	assert.Equal(t, "audio", response.Tags[0].Name)
	assert.Equal(t, int64(0), response.Tags[2].ProjectCount, "zero-count tags stay listed")

	mockDS.AssertExpectations(t)
}

func TestListProjectTagsHandler(t *testing.T) {
	t.Run("returns bare name rows", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("ListProjectTags", uint(3)).Return([]string{"audio", "dsp"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/projects/3/tags", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("3")

		require.NoError(t, controller.ListProjectTags(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var rows []map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "audio", rows[0]["name"])
		assert.Equal(t, "dsp", rows[1]["name"])

		mockDS.AssertExpectations(t)
	})

	t.Run("untagged project returns an empty array", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("ListProjectTags", uint(8)).Return([]string{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/projects/8/tags", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("8")

		require.NoError(t, controller.ListProjectTags(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String(), "empty listing must serialize as [], not null")

		mockDS.AssertExpectations(t)
	})
}

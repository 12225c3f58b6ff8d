// relationships_test.go: tests for relationship and graph handlers.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
)

func TestCreateRelationshipHandler(t *testing.T) {
	t.Run("links source from the path to target from the body", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("CreateRelationship", mock.AnythingOfType("*datastore.ProjectRelationship")).
			Run(func(args mock.Arguments) {
				r := args.Get(0).(*datastore.ProjectRelationship)
				assert.Equal(t, uint(1), r.SourceProjectID)
				assert.Equal(t, uint(2), r.TargetProjectID)
				assert.Equal(t, datastore.RelDependsOn, r.RelationshipType)
				r.ID = 31
			}).
			Return(nil)

		req := newJSONRequest(http.MethodPost, "/api/projects/1/relationships",
			`{"target_project_id": 2, "relationship_type": "depends_on"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("1")

		require.NoError(t, controller.CreateRelationship(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var rel datastore.ProjectRelationship
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rel))
		assert.Equal(t, uint(31), rel.ID)
		assert.Equal(t, uint(1), rel.SourceProjectID)

		mockDS.AssertExpectations(t)
	})

	t.Run("duplicate triple answers 409", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("relationship already exists").
			Component("datastore").
			Category(errors.CategoryConflict).
			Build()
		mockDS.On("CreateRelationship", mock.AnythingOfType("*datastore.ProjectRelationship")).Return(dsErr)

		req := newJSONRequest(http.MethodPost, "/api/projects/1/relationships",
			`{"target_project_id": 2, "relationship_type": "depends_on"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("1")

		require.NoError(t, controller.CreateRelationship(c))
		assert.Equal(t, http.StatusConflict, rec.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "relationship already exists", response.Message)

		mockDS.AssertExpectations(t)
	})

	t.Run("missing endpoint answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("project not found: 42").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("CreateRelationship", mock.AnythingOfType("*datastore.ProjectRelationship")).Return(dsErr)

		req := newJSONRequest(http.MethodPost, "/api/projects/1/relationships",
			`{"target_project_id": 42, "relationship_type": "related_to"}`)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("1")

		require.NoError(t, controller.CreateRelationship(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestListRelationshipsHandler(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("ListRelationships", uint(1)).Return([]datastore.ProjectRelation{
		{ID: 31, ProjectID: 1, RelatedProjectID: 2, RelatedName: "core-lib", RelationshipType: datastore.RelDependsOn, Direction: datastore.DirectionOutgoing},
		{ID: 35, ProjectID: 1, RelatedProjectID: 4, RelatedName: "dashboard", RelationshipType: datastore.RelPartOf, Direction: datastore.DirectionIncoming},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/1/relationships", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, controller.ListRelationships(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response RelationshipListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, datastore.DirectionOutgoing, response.Relationships[0].Direction)
	assert.Equal(t, "core-lib", response.Relationships[0].RelatedName)

	mockDS.AssertExpectations(t)
}

func TestGetRelationshipHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		mockDS.On("GetRelationship", uint(31)).Return(&datastore.ProjectRelation{
			ID:               31,
			ProjectID:        1,
			RelatedProjectID: 2,
			RelatedName:      "core-lib",
			RelationshipType: datastore.RelDependsOn,
			Direction:        datastore.DirectionOutgoing,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/relationships/31", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("31")

		require.NoError(t, controller.GetRelationship(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var relation datastore.ProjectRelation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &relation))
		assert.Equal(t, "core-lib", relation.RelatedName)
		assert.Equal(t, datastore.DirectionOutgoing, relation.Direction)

		mockDS.AssertExpectations(t)
	})

	t.Run("not found answers 404", func(t *testing.T) {
		e, mockDS, controller := setupTestEnvironment(t)

		dsErr := errors.Newf("relationship not found: 90").
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
		mockDS.On("GetRelationship", uint(90)).Return(nil, dsErr)

		req := httptest.NewRequest(http.MethodGet, "/api/relationships/90", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("90")

		require.NoError(t, controller.GetRelationship(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		mockDS.AssertExpectations(t)
	})
}

func TestDeleteRelationshipHandler(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("DeleteRelationship", uint(31)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/relationships/31", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("31")

	require.NoError(t, controller.DeleteRelationship(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "relationship deleted", response.Message)

	mockDS.AssertExpectations(t)
}

func TestGetGraphHandler(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("GetGraph").Return(&datastore.ProjectGraph{
		Nodes: []datastore.GraphNode{
			{ID: 1, Name: "core-lib", Status: datastore.StatusActive},
			{ID: 2, Name: "app", Status: datastore.StatusPaused},
		},
		Edges: []datastore.GraphEdge{
			{ID: 31, SourceProjectID: 2, TargetProjectID: 1, RelationshipType: datastore.RelDependsOn},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/graph", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, controller.GetGraph(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var graph datastore.ProjectGraph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graph))
	assert.Len(t, graph.Nodes, 2)
	assert.Len(t, graph.Edges, 1)
	assert.Equal(t, uint(1), graph.Edges[0].TargetProjectID)

	mockDS.AssertExpectations(t)
}

// Package datastore - remote HTTP backend speaking to a projtrack API server
package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/errors"
	"github.com/tphakala/projtrack/internal/httpclient"
)

// RemoteStore implements the storage contract against a remote projtrack
// server's REST API. Callers cannot tell it apart from a direct backend:
// not-found, validation, and conflict answers carry the same error
// categories the direct stores produce.
type RemoteStore struct {
	client  *httpclient.Client
	baseURL string
	metrics *Metrics
}

// NewRemoteStore creates a remote store from the storage.remote settings.
// The store is ready after Open, which only validates configuration; no
// connection is held between requests.
func NewRemoteStore(settings *conf.Settings) *RemoteStore {
	cfg := httpclient.DefaultConfig()
	if settings.Storage.Remote.Timeout > 0 {
		cfg.DefaultTimeout = time.Duration(settings.Storage.Remote.Timeout) * time.Second
	}
	return &RemoteStore{
		client:  httpclient.New(&cfg),
		baseURL: strings.TrimRight(settings.Storage.Remote.URL, "/"),
	}
}

// Open validates the remote configuration. The HTTP client is connectionless;
// use Ping to verify the server is actually reachable.
func (rs *RemoteStore) Open() error {
	if rs.baseURL == "" {
		return errors.Newf("remote storage requires a server URL").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Close releases pooled connections.
func (rs *RemoteStore) Close() error {
	rs.client.Close()
	return nil
}

// SetMetrics attaches the metrics collector.
func (rs *RemoteStore) SetMetrics(m *Metrics) {
	rs.metrics = m
}

// Ping checks the remote server's health endpoint.
func (rs *RemoteStore) Ping() error {
	return rs.request(http.MethodGet, "/api/health", nil, nil)
}

// apiError is the server's JSON error envelope.
type apiError struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// request performs one API call and maps the response onto the shared error
// taxonomy. A nil out skips body decoding.
func (rs *RemoteStore) request(method, path string, body, out any) error {
	ctx := context.Background()
	fullURL := rs.baseURL + path

	var resp *http.Response
	var err error
	switch method {
	case http.MethodGet:
		resp, err = rs.client.Get(ctx, fullURL)
	case http.MethodDelete:
		resp, err = rs.client.Delete(ctx, fullURL)
	case http.MethodPost:
		resp, err = rs.client.Post(ctx, fullURL, "application/json", body)
	case http.MethodPut:
		resp, err = rs.client.Put(ctx, fullURL, "application/json", body)
	default:
		return errors.Newf("unsupported method %s", method).
			Component("datastore").
			Category(errors.CategoryGeneric).
			Build()
	}
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryNetwork).
			Context("operation", "remote_request").
			Context("method", method).
			Context("path", path).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.New(err).
				Component("datastore").
				Category(errors.CategoryFileParsing).
				Context("operation", "decode_remote_response").
				Context("path", path).
				Build()
		}
		return nil
	}

	return rs.statusError(resp, method, path)
}

// statusError converts a non-2xx response into the error the equivalent
// direct-backend operation would have returned.
func (rs *RemoteStore) statusError(resp *http.Response, method, path string) error {
	var remote apiError
	message := fmt.Sprintf("remote server returned %s", resp.Status)
	if err := json.NewDecoder(resp.Body).Decode(&remote); err == nil && remote.Message != "" {
		message = remote.Message
	}

	category := errors.CategoryHTTP
	switch resp.StatusCode {
	case http.StatusNotFound:
		category = errors.CategoryNotFound
	case http.StatusBadRequest:
		category = errors.CategoryValidation
	case http.StatusConflict:
		category = errors.CategoryConflict
	case http.StatusInternalServerError:
		category = errors.CategoryDatabase
	case http.StatusServiceUnavailable:
		category = errors.CategoryNetwork
	}

	return errors.Newf("%s", message).
		Component("datastore").
		Category(category).
		Context("status_code", resp.StatusCode).
		Context("method", method).
		Context("path", path).
		Build()
}

// listResponse mirrors the server's project listing envelope.
type listResponse struct {
	Projects []Project `json:"projects"`
	Total    int64     `json:"total"`
}

// CreateProject sends the project to the server and adopts the stored record.
func (rs *RemoteStore) CreateProject(p *Project) error {
	return rs.request(http.MethodPost, "/api/projects", p, p)
}

// GetProject fetches a single project.
func (rs *RemoteStore) GetProject(id uint) (*Project, error) {
	var project Project
	if err := rs.request(http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects lists projects with the server applying filters, sorting,
// and pagination. IncludeArchived has no remote equivalent; the server
// always hides archived projects.
func (rs *RemoteStore) ListProjects(q ProjectQuery) ([]Project, int64, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sort_order", q.SortOrder)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
		if q.Offset > 0 {
			params.Set("offset", strconv.Itoa(q.Offset))
		}
	}

	path := "/api/projects"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result listResponse
	if err := rs.request(http.MethodGet, path, nil, &result); err != nil {
		return nil, 0, err
	}
	return result.Projects, result.Total, nil
}

// UpdateProject sends a partial update and returns the refreshed record.
func (rs *RemoteStore) UpdateProject(id uint, updates map[string]any) (*Project, error) {
	var project Project
	if err := rs.request(http.MethodPut, fmt.Sprintf("/api/projects/%d", id), updates, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project and its dependents on the server.
func (rs *RemoteStore) DeleteProject(id uint) error {
	return rs.request(http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, nil)
}

// TouchProject stamps the project as worked on now.
func (rs *RemoteStore) TouchProject(id uint) (time.Time, error) {
	var result struct {
		Message      string    `json:"message"`
		LastWorkedAt time.Time `json:"last_worked_at"`
	}
	if err := rs.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/touch", id), nil, &result); err != nil {
		return time.Time{}, err
	}
	return result.LastWorkedAt, nil
}

// SearchProjects runs a server-side text search.
func (rs *RemoteStore) SearchProjects(query, status string) ([]Project, error) {
	trimmed := strings.TrimSpace(query)
	params := url.Values{}
	if trimmed != "" {
		params.Set("search", trimmed)
	}
	if status != "" {
		params.Set("status", status)
	}

	path := "/api/projects"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result listResponse
	if err := rs.request(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Projects, nil
}

// AddProjectTag attaches a tag on the server; reports whether the
// association is new.
func (rs *RemoteStore) AddProjectTag(projectID uint, name string) (bool, error) {
	payload := map[string]string{"name": name}
	var result struct {
		Message string `json:"message"`
		Added   bool   `json:"added"`
	}
	if err := rs.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/tags", projectID), payload, &result); err != nil {
		return false, err
	}
	return result.Added, nil
}

// RemoveProjectTag detaches a tag on the server.
func (rs *RemoteStore) RemoveProjectTag(projectID uint, name string) error {
	path := fmt.Sprintf("/api/projects/%d/tags/%s", projectID, url.PathEscape(name))
	return rs.request(http.MethodDelete, path, nil, nil)
}

// ListTags lists all tags with project counts.
func (rs *RemoteStore) ListTags() ([]TagSummary, error) {
	var result struct {
		Tags  []TagSummary `json:"tags"`
		Total int          `json:"total"`
	}
	if err := rs.request(http.MethodGet, "/api/tags", nil, &result); err != nil {
		return nil, err
	}
	return result.Tags, nil
}

// ListProjectTags lists one project's tag names.
func (rs *RemoteStore) ListProjectTags(projectID uint) ([]string, error) {
	var rows []struct {
		Name string `json:"name"`
	}
	if err := rs.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/tags", projectID), nil, &rows); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

// CreateNote stores a note against a project on the server.
func (rs *RemoteStore) CreateNote(n *ProjectNote) error {
	payload := map[string]string{
		"content":   n.Content,
		"note_type": n.NoteType,
	}
	return rs.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/notes", n.ProjectID), payload, n)
}

// GetNote fetches a single note.
func (rs *RemoteStore) GetNote(id uint) (*ProjectNote, error) {
	var note ProjectNote
	if err := rs.request(http.MethodGet, fmt.Sprintf("/api/notes/%d", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes lists a project's notes newest first.
func (rs *RemoteStore) ListNotes(projectID uint, noteType string, limit int) ([]ProjectNote, error) {
	params := url.Values{}
	if noteType != "" {
		params.Set("note_type", noteType)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := fmt.Sprintf("/api/projects/%d/notes", projectID)
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result struct {
		Notes []ProjectNote `json:"notes"`
		Total int           `json:"total"`
	}
	if err := rs.request(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Notes, nil
}

// DeleteNote removes a single note.
func (rs *RemoteStore) DeleteNote(id uint) error {
	return rs.request(http.MethodDelete, fmt.Sprintf("/api/notes/%d", id), nil, nil)
}

// CreateRelationship links two projects on the server.
func (rs *RemoteStore) CreateRelationship(r *ProjectRelationship) error {
	payload := map[string]any{
		"target_project_id": r.TargetProjectID,
		"relationship_type": r.RelationshipType,
	}
	path := fmt.Sprintf("/api/projects/%d/relationships", r.SourceProjectID)
	return rs.request(http.MethodPost, path, payload, r)
}

// GetRelationship fetches one relationship with the target name resolved.
func (rs *RemoteStore) GetRelationship(id uint) (*ProjectRelation, error) {
	var relation ProjectRelation
	if err := rs.request(http.MethodGet, fmt.Sprintf("/api/relationships/%d", id), nil, &relation); err != nil {
		return nil, err
	}
	return &relation, nil
}

// ListRelationships lists a project's relationships in both directions.
func (rs *RemoteStore) ListRelationships(projectID uint) ([]ProjectRelation, error) {
	var result struct {
		Relationships []ProjectRelation `json:"relationships"`
		Total         int               `json:"total"`
	}
	if err := rs.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/relationships", projectID), nil, &result); err != nil {
		return nil, err
	}
	return result.Relationships, nil
}

// DeleteRelationship removes a relationship edge.
func (rs *RemoteStore) DeleteRelationship(id uint) error {
	return rs.request(http.MethodDelete, fmt.Sprintf("/api/relationships/%d", id), nil, nil)
}

// GetGraph fetches the relationship graph.
func (rs *RemoteStore) GetGraph() (*ProjectGraph, error) {
	var graph ProjectGraph
	if err := rs.request(http.MethodGet, "/api/graph", nil, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

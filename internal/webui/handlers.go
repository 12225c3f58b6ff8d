// handlers.go: dashboard page handlers and their view models
package webui

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
)

// filterStatuses are the statuses offered in the listing filter. Archived
// projects are hidden from the dashboard entirely.
var filterStatuses = []string{datastore.StatusIdea, datastore.StatusActive, datastore.StatusPaused}

// StatusCount is one row of the dashboard status breakdown.
type StatusCount struct {
	Status string
	Count  int64
}

// dashboardData feeds the front page.
type dashboardData struct {
	Title   string
	Summary []StatusCount
	Visible int64 // non-archived project count
	Recent  []datastore.Project
}

// projectsData feeds the filtered listing page.
type projectsData struct {
	Title    string
	Projects []datastore.Project
	Total    int64
	Status   string
	Tag      string
	Statuses []string
}

// projectDetailData feeds the single-project page.
type projectDetailData struct {
	Title         string
	Project       *datastore.Project
	Tags          []string
	Notes         []datastore.ProjectNote
	Relationships []datastore.ProjectRelation
}

// tagsData feeds the tag listing page.
type tagsData struct {
	Title string
	Tags  []datastore.TagSummary
}

// errorPageData feeds the error page.
type errorPageData struct {
	Title   string
	Code    int
	Message string
}

// statusSummary returns per-status project counts, cached for the configured
// TTL. The archived count needs IncludeArchived because listings hide
// archived projects by default.
func (s *Server) statusSummary() ([]StatusCount, error) {
	if cached, found := s.summaryCache.Get(summaryCacheKey); found {
		if summary, ok := cached.([]StatusCount); ok {
			return summary, nil
		}
	}

	summary := make([]StatusCount, 0, len(datastore.ProjectStatuses))
	for _, status := range datastore.ProjectStatuses {
		q := datastore.ProjectQuery{Status: status, Limit: 1}
		if status == datastore.StatusArchived {
			q.IncludeArchived = true
		}
		_, total, err := s.DS.ListProjects(q)
		if err != nil {
			return nil, err
		}
		summary = append(summary, StatusCount{Status: status, Count: total})
	}

	s.summaryCache.Set(summaryCacheKey, summary, cache.DefaultExpiration)
	return summary, nil
}

// recentProjects returns the most recently worked projects, cached for the
// configured TTL.
func (s *Server) recentProjects() ([]datastore.Project, error) {
	if cached, found := s.summaryCache.Get(recentCacheKey); found {
		if recent, ok := cached.([]datastore.Project); ok {
			return recent, nil
		}
	}

	limit := defaultRecentLimit
	if s.Settings.WebServer.Dashboard.RecentLimit > 0 {
		limit = s.Settings.WebServer.Dashboard.RecentLimit
	}
	recent, _, err := s.DS.ListProjects(datastore.ProjectQuery{Limit: limit})
	if err != nil {
		return nil, err
	}

	s.summaryCache.Set(recentCacheKey, recent, cache.DefaultExpiration)
	return recent, nil
}

// handleDashboard renders the front page: status breakdown plus recently
// worked projects.
func (s *Server) handleDashboard(ctx echo.Context) error {
	summary, err := s.statusSummary()
	if err != nil {
		return s.renderError(ctx, err, http.StatusInternalServerError)
	}

	recent, err := s.recentProjects()
	if err != nil {
		return s.renderError(ctx, err, http.StatusInternalServerError)
	}

	var visible int64
	for _, row := range summary {
		if row.Status != datastore.StatusArchived {
			visible += row.Count
		}
	}

	return s.render(ctx, http.StatusOK, "dashboard", dashboardData{
		Title:   "Dashboard",
		Summary: summary,
		Visible: visible,
		Recent:  recent,
	})
}

// handleProjects renders the project listing with optional status and tag
// filters.
func (s *Server) handleProjects(ctx echo.Context) error {
	status := ctx.QueryParam("status")
	tag := ctx.QueryParam("tag")

	projects, total, err := s.DS.ListProjects(datastore.ProjectQuery{
		Status: status,
		Tag:    tag,
	})
	if err != nil {
		return s.renderError(ctx, err, http.StatusInternalServerError)
	}

	return s.render(ctx, http.StatusOK, "projects", projectsData{
		Title:    "Projects",
		Projects: projects,
		Total:    total,
		Status:   status,
		Tag:      tag,
		Statuses: filterStatuses,
	})
}

// handleProjectDetail renders one project with its tags, latest notes, and
// relationships.
func (s *Server) handleProjectDetail(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return s.renderError(ctx, err, http.StatusNotFound)
	}

	project, err := s.DS.GetProject(uint(id))
	if err != nil {
		if errors.IsNotFound(err) {
			return s.renderError(ctx, err, http.StatusNotFound)
		}
		return s.renderError(ctx, err, http.StatusInternalServerError)
	}

	// The remaining detail queries are independent of each other, fetch
	// them concurrently.
	var (
		g             errgroup.Group
		tags          []string
		notes         []datastore.ProjectNote
		relationships []datastore.ProjectRelation
	)
	g.Go(func() error {
		var err error
		tags, err = s.DS.ListProjectTags(project.ID)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = s.DS.ListNotes(project.ID, "", detailNoteLimit)
		return err
	})
	g.Go(func() error {
		var err error
		relationships, err = s.DS.ListRelationships(project.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.renderError(ctx, err, http.StatusInternalServerError)
	}

	return s.render(ctx, http.StatusOK, "project", projectDetailData{
		Title:         project.Name,
		Project:       project,
		Tags:          tags,
		Notes:         notes,
		Relationships: relationships,
	})
}

// handleTags renders all tags with their project counts.
func (s *Server) handleTags(ctx echo.Context) error {
	tags, err := s.DS.ListTags()
	if err != nil {
		return s.renderError(ctx, err, http.StatusInternalServerError)
	}

	return s.render(ctx, http.StatusOK, "tags", tagsData{
		Title: "Tags",
		Tags:  tags,
	})
}

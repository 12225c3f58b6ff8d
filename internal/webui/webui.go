// Package webui serves the read-only project dashboard. Pages are rendered
// server-side from embedded templates; all writes go through the CLI or the
// REST API.
package webui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/logging"
	"github.com/tphakala/projtrack/internal/observability"
)

//go:embed views/*.html
var viewsFS embed.FS

// Cache keys and fallbacks for the dashboard summary data.
const (
	summaryCacheKey = "dashboard_summary"
	recentCacheKey  = "dashboard_recent"

	defaultSummaryTTL  = 60 * time.Second
	defaultRecentLimit = 5
	detailNoteLimit    = 20
)

// Server renders the dashboard pages.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings

	logger         *log.Logger
	metrics        *observability.Metrics
	webLogger      *slog.Logger
	webLoggerClose func() error
	summaryCache   *cache.Cache
}

// TemplateRenderer adapts the parsed template set to echo's Renderer.
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template with the given data.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// routeConfig defines one dashboard page.
type routeConfig struct {
	Path         string
	TemplateName string
	Handler      func(s *Server) echo.HandlerFunc
}

// routes lists the dashboard pages.
var routes = []routeConfig{
	{Path: "/", TemplateName: "dashboard", Handler: func(s *Server) echo.HandlerFunc { return s.handleDashboard }},
	{Path: "/projects", TemplateName: "projects", Handler: func(s *Server) echo.HandlerFunc { return s.handleProjects }},
	{Path: "/projects/:id", TemplateName: "project", Handler: func(s *Server) echo.HandlerFunc { return s.handleProjectDetail }},
	{Path: "/tags", TemplateName: "tags", Handler: func(s *Server) echo.HandlerFunc { return s.handleTags }},
}

// New creates the dashboard server, parses the embedded templates, and
// registers the page routes on e.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, m *observability.Metrics, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "WebUI: ", log.LstdFlags)
	}

	s := &Server{
		Echo:     e,
		DS:       ds,
		Settings: settings,
		logger:   logger,
		metrics:  m,
	}

	levelVar := new(slog.LevelVar)
	if settings.WebServer.Debug {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
	webLogger, closeLogger, err := logging.NewFileLogger("logs/webui.log", "webui", levelVar)
	if err != nil {
		logger.Printf("Failed to initialize web UI file logger: %v", err)
		fallback := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: levelVar})
		s.webLogger = slog.New(fallback).With("service", "webui")
		s.webLoggerClose = func() error { return nil }
	} else {
		s.webLogger = webLogger
		s.webLoggerClose = closeLogger
	}

	ttl := defaultSummaryTTL
	if settings.WebServer.Dashboard.SummaryTTL > 0 {
		ttl = time.Duration(settings.WebServer.Dashboard.SummaryTTL) * time.Second
	}
	s.summaryCache = cache.New(ttl, 2*ttl)

	if err := s.setupRenderer(); err != nil {
		return nil, err
	}
	s.registerRoutes()

	return s, nil
}

// setupRenderer parses the embedded views and installs them as the echo
// renderer.
func (s *Server) setupRenderer() error {
	tmpl, err := template.New("").Funcs(s.templateFunctions()).ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return err
	}
	s.Echo.Renderer = &TemplateRenderer{templates: tmpl}
	return nil
}

// registerRoutes attaches the page routes.
func (s *Server) registerRoutes() {
	for _, route := range routes {
		s.Echo.GET(route.Path, route.Handler(s))
	}
}

// Shutdown closes the dashboard's file logger.
func (s *Server) Shutdown() {
	s.summaryCache.Flush()
	if s.webLoggerClose != nil {
		if err := s.webLoggerClose(); err != nil {
			s.logger.Printf("Failed to close web UI log file: %v", err)
		}
	}
}

// templateFunctions returns the helper functions available to the views.
func (s *Server) templateFunctions() template.FuncMap {
	return template.FuncMap{
		"timeSince":   timeSince,
		"statusClass": statusClass,
		"truncate":    truncate,
	}
}

// timeSince renders a last-worked timestamp as a rough age for display.
func timeSince(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	d := time.Since(*t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// statusClass maps a project status to its badge CSS class.
func statusClass(status string) string {
	switch status {
	case datastore.StatusActive:
		return "badge badge-active"
	case datastore.StatusPaused:
		return "badge badge-paused"
	case datastore.StatusArchived:
		return "badge badge-archived"
	default:
		return "badge badge-idea"
	}
}

// truncate shortens long free-text fields for table cells.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// render executes a template and records render metrics.
func (s *Server) render(ctx echo.Context, code int, name string, data any) error {
	start := time.Now()
	err := ctx.Render(code, name, data)
	if s.metrics != nil && s.metrics.HTTP != nil {
		if err != nil {
			s.metrics.HTTP.RecordTemplateRenderError(name, "render_failed")
		} else {
			s.metrics.HTTP.RecordTemplateRender(name, time.Since(start).Seconds())
		}
	}
	return err
}

// renderError logs the failure and renders the error page.
func (s *Server) renderError(ctx echo.Context, err error, code int) error {
	s.webLogger.Error("page render failed",
		"path", ctx.Request().URL.Path,
		"error", err.Error(),
		"code", code,
	)
	data := errorPageData{
		Title:   "Error",
		Code:    code,
		Message: http.StatusText(code),
	}
	return s.render(ctx, code, "error", data)
}

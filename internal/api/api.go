// Package api implements the projtrack REST API served under /api. The
// route surface and response shapes double as the wire contract for
// datastore.RemoteStore, so changes here must keep that client working.
package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/errors"
	"github.com/tphakala/projtrack/internal/logging"
	"github.com/tphakala/projtrack/internal/observability"
)

// maxPageSize caps the limit query parameter on listing endpoints.
const maxPageSize = 100

// Controller holds the API route handlers and their dependencies.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	logger         *log.Logger
	metrics        *observability.Metrics
	apiLogger      *slog.Logger
	apiLoggerClose func() error
	apiLevelVar    *slog.LevelVar
	startTime      time.Time
}

// ErrorResponse is the standardized JSON error envelope. RemoteStore decodes
// this shape and rebuilds the categorized error a direct backend would have
// returned, so Message carries the original error text.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// MessageResponse is the envelope for operations that only confirm success.
type MessageResponse struct {
	Message string `json:"message"`
}

// New creates the API controller, attaches it to the /api group on e, and
// registers all routes.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, m *observability.Metrics, logger *log.Logger) *Controller {
	return NewWithOptions(e, ds, settings, m, logger, true)
}

// NewWithOptions creates the API controller with optional route
// registration. Tests pass initializeRoutes=false and invoke handlers
// directly.
func NewWithOptions(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, m *observability.Metrics, logger *log.Logger, initializeRoutes bool) *Controller {
	if logger == nil {
		logger = log.New(os.Stderr, "API: ", log.LstdFlags)
	}

	c := &Controller{
		Echo:      e,
		DS:        ds,
		Settings:  settings,
		logger:    logger,
		metrics:   m,
		startTime: time.Now(),
	}

	// File logger with a runtime-adjustable level. Falls back to a discard
	// handler so handlers never have to nil-check.
	c.apiLevelVar = new(slog.LevelVar)
	if settings.WebServer.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	} else {
		c.apiLevelVar.Set(slog.LevelInfo)
	}
	apiLogger, closeLogger, err := logging.NewFileLogger("logs/api.log", "api", c.apiLevelVar)
	if err != nil {
		logger.Printf("Failed to initialize API file logger: %v", err)
		fallback := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: c.apiLevelVar})
		c.apiLogger = slog.New(fallback).With("service", "api")
		c.apiLoggerClose = func() error { return nil }
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeLogger
	}

	c.Group = e.Group("/api")
	c.Group.Use(middleware.Recover())
	c.Group.Use(c.LoggingMiddleware())
	c.Group.Use(c.MetricsMiddleware())

	// Prometheus scrape endpoint lives outside the /api group so it skips
	// the request logging and metrics middleware.
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	if initializeRoutes {
		c.initRoutes()
	}

	return c
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"project routes", c.initProjectRoutes},
		{"tag routes", c.initTagRoutes},
		{"note routes", c.initNoteRoutes},
		{"relationship routes", c.initRelationshipRoutes},
	}

	for _, initializer := range routeInitializers {
		c.Debug("Initializing %s...", initializer.name)
		initializer.fn()
	}
}

// Shutdown closes the controller's file logger. Call once during server stop.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Failed to close API log file: %v", err)
		}
	}
}

// Debug logs a debug message when web server debug mode is enabled.
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings != nil && c.Settings.WebServer.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)
		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}

// HandleError sends a standardized JSON error response and logs it with a
// correlation ID for tracing across the two log streams.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	correlationID := uuid.NewString()

	errorResp := &ErrorResponse{
		Error:         err.Error(),
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}

	c.logger.Printf("API Error [%s]: %s: %v (HTTP %d)", correlationID, message, err, code)
	if c.apiLogger != nil {
		c.apiLogger.Error("API error",
			"correlation_id", correlationID,
			"message", message,
			"error", err.Error(),
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ctx.RealIP(),
		)
	}

	return ctx.JSON(code, errorResp)
}

// HandleDataError maps a datastore error onto the HTTP status for its
// category and keeps the original message, so remote-mode clients rebuild
// the same categorized error a direct backend produces.
func (c *Controller) HandleDataError(ctx echo.Context, err error) error {
	return c.HandleError(ctx, err, err.Error(), statusFromCategory(err))
}

// statusFromCategory picks the HTTP status for a categorized error.
// RemoteStore.statusError performs the inverse mapping.
func statusFromCategory(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsConflict(err):
		return http.StatusConflict
	case errors.IsCategory(err, errors.CategoryNetwork), errors.IsCategory(err, errors.CategoryTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// LoggingMiddleware logs every API request to the structured log.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			if c.apiLogger != nil {
				req := ctx.Request()
				res := ctx.Response()
				c.apiLogger.LogAttrs(context.Background(), slog.LevelInfo, "API request",
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
					slog.String("query", req.URL.RawQuery),
					slog.Int("status", res.Status),
					slog.String("ip", ctx.RealIP()),
					slog.String("user_agent", req.UserAgent()),
					slog.Int64("latency_ms", time.Since(start).Milliseconds()),
				)
			}

			return err
		}
	}
}

// MetricsMiddleware records request counts, latency, and response size per
// route template.
func (c *Controller) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c.metrics == nil || c.metrics.HTTP == nil {
				return next(ctx)
			}

			start := time.Now()
			err := next(ctx)

			route := ctx.Path()
			method := ctx.Request().Method
			res := ctx.Response()
			c.metrics.HTTP.RecordHTTPRequest(method, route, res.Status, time.Since(start).Seconds())
			c.metrics.HTTP.RecordHTTPResponseSize(method, route, res.Size)

			return err
		}
	}
}

// HealthCheck handles GET /api/health. It reports 503 when the backing
// store is unreachable; RemoteStore.Ping depends on that distinction.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	if err := c.DS.Ping(); err != nil {
		return c.HandleError(ctx, err, "database unreachable", http.StatusServiceUnavailable)
	}

	response := map[string]any{
		"status":     "ok",
		"version":    c.Settings.Version,
		"build_date": c.Settings.BuildDate,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if !c.startTime.IsZero() {
		response["uptime_seconds"] = time.Since(c.startTime).Seconds()
	}

	return ctx.JSON(http.StatusOK, response)
}

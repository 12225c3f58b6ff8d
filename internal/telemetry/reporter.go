// Package telemetry - integration with the error handling system
package telemetry

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/getsentry/sentry-go"
	"github.com/tphakala/projtrack/internal/errors"
)

// SentryReporter implements errors.TelemetryReporter for Sentry.
// Keeping the implementation here, rather than in the errors package,
// means the errors package carries no Sentry dependency.
type SentryReporter struct {
	enabled bool
}

// NewSentryReporter creates a new Sentry telemetry reporter
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{enabled: enabled}
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError reports an enhanced error to Sentry with privacy protection
func (sr *SentryReporter) ReportError(ee *errors.EnhancedError) {
	if !sr.enabled || ee.IsReported() {
		return
	}

	scrubbedMessage := ScrubMessage(fmt.Sprintf("[%s] %s", ee.GetCategory(), ee.Error()))
	errorTitle := generateErrorTitle(ee)
	level := errorLevel(ee.GetCategory())

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_title", errorTitle)
		scope.SetTag("component", ee.GetComponent())
		scope.SetTag("category", ee.GetCategory())
		scope.SetTag("error_type", fmt.Sprintf("%T", ee.Unwrap()))
		scope.SetLevel(level)

		// Context data travels scrubbed
		for key, value := range ee.GetContext() {
			scrubbedValue := value
			if strValue, ok := value.(string); ok {
				scrubbedValue = ScrubMessage(strValue)
			}
			scope.SetContext(key, map[string]any{"value": scrubbedValue})
		}

		scope.SetFingerprint([]string{errorTitle, ee.GetComponent(), ee.GetCategory()})

		// Custom exception type gives Sentry a readable title instead of
		// the Go type name
		event := sentry.NewEvent()
		event.Message = scrubbedMessage
		event.Level = level
		event.Exception = []sentry.Exception{{
			Type:  errorTitle,
			Value: scrubbedMessage,
		}}

		sentry.CaptureEvent(event)
	})

	ee.MarkReported()
}

// InitializeErrorIntegration sets up the error package to report through
// Sentry. Call after Init; if telemetry is disabled or initialization
// failed the reporter simply stays inert.
func InitializeErrorIntegration() {
	errors.SetTelemetryReporter(NewSentryReporter(Enabled()))
}

// generateErrorTitle creates a meaningful error title for Sentry grouping
func generateErrorTitle(ee *errors.EnhancedError) string {
	var titleParts []string

	if component := ee.GetComponent(); component != "" && component != "unknown" {
		titleParts = append(titleParts, titleCase(component))
	}
	if categoryTitle := formatCategoryForTitle(ee.GetCategory()); categoryTitle != "" {
		titleParts = append(titleParts, categoryTitle)
	}
	if operation, ok := ee.GetContext()["operation"].(string); ok && operation != "" {
		titleParts = append(titleParts, formatOperationForTitle(operation))
	}

	if len(titleParts) == 0 {
		return fmt.Sprintf("%T", ee.Unwrap())
	}
	return strings.Join(titleParts, " ")
}

// formatCategoryForTitle converts error categories to human-readable titles
func formatCategoryForTitle(category string) string {
	switch errors.ErrorCategory(category) {
	case errors.CategoryValidation:
		return "Validation Error"
	case errors.CategoryNotFound:
		return "Not Found"
	case errors.CategoryConflict:
		return "Conflict"
	case errors.CategoryDatabase:
		return "Database Error"
	case errors.CategoryNetwork:
		return "Network Error"
	case errors.CategoryHTTP:
		return "HTTP Error"
	case errors.CategoryConfiguration:
		return "Configuration Error"
	case errors.CategoryFileIO:
		return "File I/O Error"
	case errors.CategoryFileParsing:
		return "File Parsing Error"
	case errors.CategoryTimeout:
		return "Timeout"
	case errors.CategoryState:
		return "State Error"
	default:
		return category
	}
}

// formatOperationForTitle converts operation context to human-readable format
func formatOperationForTitle(operation string) string {
	words := strings.Fields(strings.ReplaceAll(operation, "_", " "))
	for i, word := range words {
		words[i] = titleCase(word)
	}
	return strings.Join(words, " ")
}

// titleCase capitalizes the first letter of a string
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// errorLevel returns the Sentry level for an error category
func errorLevel(category string) sentry.Level {
	switch errors.ErrorCategory(category) {
	case errors.CategoryNetwork, errors.CategoryTimeout:
		return sentry.LevelWarning // often transient
	case errors.CategoryFileIO:
		return sentry.LevelWarning
	case errors.CategoryNotFound, errors.CategoryValidation, errors.CategoryConflict:
		return sentry.LevelWarning // expected user-facing outcomes
	default:
		return sentry.LevelError
	}
}

// Package telemetry provides privacy-compliant error tracking via Sentry.
//
// Telemetry is strictly opt-in: nothing is initialized or transmitted unless
// the user enables it in the configuration and supplies their own DSN. Error
// messages and context values are scrubbed before leaving the process.
package telemetry

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/tphakala/projtrack/internal/conf"
)

// sentryEnabled tracks whether Sentry was successfully initialized.
var sentryEnabled atomic.Bool

// Init initializes the Sentry SDK with privacy-compliant settings.
// It is a no-op unless telemetry is explicitly enabled and a DSN is configured.
func Init(settings *conf.Settings) error {
	if settings == nil || !settings.Sentry.Enabled {
		log.Println("error telemetry is disabled (opt-in required)")
		return nil
	}
	if settings.Sentry.DSN == "" {
		return fmt.Errorf("telemetry enabled but no DSN configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.Sentry.DSN,
		SampleRate: 1.0,
		Debug:      false,

		// Privacy-compliant settings
		AttachStacktrace: false,
		Environment:      "production",
		ServerName:       "", // never leak the hostname

		Release: fmt.Sprintf("projtrack@%s", settings.Version),

		BeforeSend: scrubEvent,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetContext("application", map[string]any{
			"name":    "projtrack",
			"version": settings.Version,
		})
		scope.SetTag("storage_mode", settings.Storage.Mode)
		scope.SetTag("storage_engine", settings.Storage.Engine)
	})

	sentryEnabled.Store(true)
	log.Println("error telemetry initialized (opt-in enabled)")
	return nil
}

// Enabled reports whether Sentry was initialized and events will be sent.
func Enabled() bool {
	return sentryEnabled.Load()
}

// scrubEvent strips identifying data from an event before transmission.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}
	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	event.Message = ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = ScrubMessage(event.Exception[i].Value)
	}

	return event
}

// CaptureError captures a plain error with component context.
// Used for errors outside the enhanced error pipeline, such as panics.
func CaptureError(err error, component string) {
	if !sentryEnabled.Load() || err == nil {
		return
	}

	scrubbed := ScrubMessage(err.Error())

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetFingerprint([]string{scrubbed, component})

		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = scrubbed
		event.Exception = []sentry.Exception{{
			Type:  fmt.Sprintf("%T", err),
			Value: scrubbed,
		}}

		sentry.CaptureEvent(event)
	})
}

// CaptureMessage captures a message event with component context.
func CaptureMessage(message string, level sentry.Level, component string) {
	if !sentryEnabled.Load() {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetLevel(level)
		sentry.CaptureMessage(ScrubMessage(message))
	})
}

// Flush waits for buffered events to be sent, up to the given timeout.
// Call during shutdown so pending reports are not lost.
func Flush(timeout time.Duration) {
	if !sentryEnabled.Load() {
		return
	}
	sentry.Flush(timeout)
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/tphakala/projtrack/cmd"
	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/logging"
	"github.com/tphakala/projtrack/internal/telemetry"
)

// version and buildDate are populated at build time via ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

// run wraps the real work so deferred cleanup executes before the process
// exits with a status code.
func run() int {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	settings.Version = version
	settings.BuildDate = buildDate

	// Telemetry is opt-in; a failure to start it never blocks the CLI.
	if err := telemetry.Init(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: telemetry initialization failed: %v\n", err)
	}
	telemetry.InitializeErrorIntegration()
	defer telemetry.Flush(3 * time.Second)

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error.
		return 1
	}

	return 0
}

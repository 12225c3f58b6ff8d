// Package serve provides the serve command running the REST API and the
// read-only web dashboard on one listener.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/projtrack/internal/api"
	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
	"github.com/tphakala/projtrack/internal/observability"
	"github.com/tphakala/projtrack/internal/webui"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal before the listener is torn down.
const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the projtrack API and dashboard server",
		Long:  "Serve the REST API under /api and the read-only dashboard on the same port. Remote-mode clients point at this process.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the web server")
	cmd.Flags().BoolVar(&settings.WebServer.Debug, "webdebug", viper.GetBool("webserver.debug"), "Enable web server debug logging")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
		os.Exit(1)
	}
}

func runServe(settings *conf.Settings) error {
	// The server is what remote mode points at, so it always opens the
	// configured database engine directly regardless of storage.mode;
	// serving through the remote shim would just proxy to itself.
	store, err := datastore.New(settings)
	if err != nil {
		return err
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer closeStore(store)

	// Fail before binding the port when the database is unreachable.
	if err := store.Ping(); err != nil {
		return fmt.Errorf("database is not reachable: %w", err)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	store.SetMetrics(metrics.Datastore)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	apiController := api.New(e, store, settings, metrics, nil)
	defer apiController.Shutdown()

	dashboard, err := webui.New(e, store, settings, metrics, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard: %w", err)
	}
	defer dashboard.Shutdown()

	port := settings.WebServer.Port
	log.Printf("projtrack server listening on port %s (engine: %s)", port, settings.Storage.Engine)

	errChan := make(chan error, 1)
	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// closeStore attempts to close the database connection and logs the result.
func closeStore(store datastore.Interface) {
	if err := store.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}

// Package migrate provides the migrate command copying all project data
// from the configured database engine into another one.
package migrate

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// Command creates the migrate command.
func Command(settings *conf.Settings) *cobra.Command {
	var targetEngine string
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all data to another database engine",
		Long: `Copy every project, tag, note, and relationship from the configured
database engine into the target engine. The target schema is created if
missing and existing target rows are kept; tags are merged by name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(settings, targetEngine, skipConfirm)
		},
	}

	cmd.Flags().StringVar(&targetEngine, "target", "", "Target database engine (sqlite or mysql)")
	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip the confirmation prompt")

	return cmd
}

func runMigrate(settings *conf.Settings, targetEngine string, skipConfirm bool) error {
	if targetEngine == "" {
		return fmt.Errorf("no target engine specified, use --target sqlite or --target mysql")
	}
	if targetEngine != conf.EngineSQLite && targetEngine != conf.EngineMySQL {
		return fmt.Errorf("unsupported target engine: %q", targetEngine)
	}
	if targetEngine == settings.Storage.Engine {
		return fmt.Errorf("target engine %q is already the configured engine", targetEngine)
	}

	// Migration reads and writes the databases directly, so both sides use
	// direct backends regardless of storage.mode.
	source, err := datastore.New(settings)
	if err != nil {
		return fmt.Errorf("failed to create source store: %w", err)
	}

	// The target reuses the full settings with only the engine swapped, so
	// the credentials and paths come from the same config file.
	targetSettings := *settings
	targetSettings.Storage.Engine = targetEngine
	target, err := datastore.New(&targetSettings)
	if err != nil {
		return fmt.Errorf("failed to create target store: %w", err)
	}

	fmt.Printf("Source: %s\n", describeEngine(settings))
	fmt.Printf("Target: %s\n", describeEngine(&targetSettings))

	if !skipConfirm && !confirm("Continue? (yes/no): ") {
		fmt.Println("Migration cancelled")
		return nil
	}

	if err := source.Open(); err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer closeStore(source, "source")

	if err := target.Open(); err != nil {
		return fmt.Errorf("failed to open target database: %w", err)
	}
	defer closeStore(target, "target")

	summary, err := datastore.Migrate(source, target)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("\nMigration complete ✅")
	fmt.Printf("  Projects:      %d\n", summary.Projects)
	fmt.Printf("  Tags:          %d\n", summary.Tags)
	fmt.Printf("  Associations:  %d\n", summary.Associations)
	fmt.Printf("  Notes:         %d\n", summary.Notes)
	fmt.Printf("  Relationships: %d\n", summary.Relationships)
	fmt.Printf("\nTo switch over, set storage.engine to %q in your config file.\n", targetEngine)

	return nil
}

// describeEngine renders one side of the migration for the confirmation
// summary without echoing credentials.
func describeEngine(settings *conf.Settings) string {
	switch settings.Storage.Engine {
	case conf.EngineSQLite:
		return fmt.Sprintf("sqlite (%s)", settings.Storage.SQLite.Path)
	case conf.EngineMySQL:
		mysql := settings.Storage.MySQL
		return fmt.Sprintf("mysql (%s@%s:%s/%s)", mysql.Username, mysql.Host, mysql.Port, mysql.Database)
	default:
		return settings.Storage.Engine
	}
}

// confirm prompts on stdout and accepts only an exact "yes".
func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}

// closeStore attempts to close a database connection and logs the result.
func closeStore(store datastore.Interface, side string) {
	if err := store.Close(); err != nil {
		log.Printf("Failed to close %s database: %v", side, err)
	}
}

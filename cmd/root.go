package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/projtrack/cmd/add"
	"github.com/tphakala/projtrack/cmd/list"
	"github.com/tphakala/projtrack/cmd/migrate"
	"github.com/tphakala/projtrack/cmd/note"
	"github.com/tphakala/projtrack/cmd/roadmap"
	"github.com/tphakala/projtrack/cmd/search"
	"github.com/tphakala/projtrack/cmd/serve"
	"github.com/tphakala/projtrack/cmd/show"
	"github.com/tphakala/projtrack/cmd/tag"
	"github.com/tphakala/projtrack/cmd/touch"
	"github.com/tphakala/projtrack/cmd/update"
	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "projtrack",
		Short: "projtrack CLI",
		Long:  "Personal project tracker. Track what you're building, where it lives, and what's next.",
		// Errors out of RunE are reported once by main; repeating the
		// usage text after a failed database call only buries the message.
		SilenceUsage: true,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		add.Command(settings),
		list.Command(settings),
		show.Command(settings),
		update.Command(settings),
		touch.Command(settings),
		search.Command(settings),
		tag.Command(settings),
		note.Command(settings),
		roadmap.Command(settings),
		serve.Command(settings),
		migrate.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags may have overridden storage settings, recheck them before
		// any subcommand opens a store.
		if err := conf.ValidateSettings(settings); err != nil {
			return err
		}

		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}

		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Storage.Mode, "mode", viper.GetString("storage.mode"), "Storage access mode: direct or remote")
	rootCmd.PersistentFlags().StringVar(&settings.Storage.Engine, "engine", viper.GetString("storage.engine"), "Database engine: sqlite or mysql")
	rootCmd.PersistentFlags().StringVar(&settings.Storage.Remote.URL, "remote-url", viper.GetString("storage.remote.url"), "Base URL of a projtrack API server for remote mode")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}

// Package touch provides the touch command for stamping work activity
package touch

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/datastore"
)

// Command creates the touch command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "touch <id>",
		Short: "Mark a project as worked on right now",
		Long:  "Update a project's last-worked timestamp without changing anything else.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid project ID %q", args[0])
			}
			return runTouch(settings, uint(id))
		},
	}
}

func runTouch(settings *conf.Settings, id uint) error {
	store, err := datastore.Open(settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stamped, err := store.TouchProject(id)
	if err != nil {
		return err
	}

	fmt.Printf("Project %d marked as worked on at %s\n", id, stamped.Format("2006-01-02 15:04:05 MST"))
	return nil
}

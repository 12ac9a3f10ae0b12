package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/executor"
	"github.com/harrison/orang/internal/filter"
)

// newDeleteCommand creates the delete command.
func newDeleteCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [path]...",
		Short: "Delete matched files and directories",
		Long: `Delete every match. Directories are only removed when --recurse is set;
with --empty empty a non-empty directory is refused rather than removed.

Examples:
  orang delete -n "\.tmp$" --recurse --dry-run
  orang delete -n "^cache$" -t directories --recurse`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOptions(cmd, args, false)
			if err != nil {
				return err
			}
			defer o.Close()
			if err := applyTarget(cmd, o); err != nil {
				return err
			}
			f := o.fsFilter
			if f.Name == nil && f.Extension == nil && f.Content == nil && f.Attributes == 0 && f.Properties.IsEmpty() {
				return fmt.Errorf("delete requires at least one filter")
			}

			deleter := &executor.Deleter{
				Log:       o.log,
				Recursive: o.recurse,
				EmptyOnly: o.fsFilter.Empty == filter.EmptyOnly,
				DryRun:    o.dryRun,
			}
			matched, err := runSearch(cmd, o, deleter)
			state.matched = matched
			return err
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().StringP("target", "t", "", "What to delete: files, directories or all")
	return cmd
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/executor"
	"github.com/harrison/orang/internal/search"
)

// newFindCommand creates the find command.
func newFindCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [path]...",
		Short: "Search for files and directories",
		Long: `Search the given paths (default: the current directory) for files and
directories matching the active filters and print them.

Examples:
  orang find -n "\.txt$" --recurse
  orang find src -c "TODO" --recurse
  orang find -e "^log$" --sort size-descending --display size`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOptions(cmd, args, false)
			if err != nil {
				return err
			}
			defer o.Close()
			if err := applyTarget(cmd, o); err != nil {
				return err
			}

			finder := &executor.Finder{
				Log:           o.log,
				Columns:       o.columns,
				Sizes:         o.pipeline.Sizes,
				AbsolutePaths: o.absolutePaths,
			}
			matched, err := runSearch(cmd, o, finder)
			state.matched = matched
			return err
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().StringP("target", "t", "", "What to match: files, directories or all")
	return cmd
}

// applyTarget reads the optional --target flag into the options record.
func applyTarget(cmd *cobra.Command, o *options) error {
	name, _ := cmd.Flags().GetString("target")
	target, err := search.ParseTarget(name)
	if err != nil {
		return err
	}
	o.target = target
	return nil
}

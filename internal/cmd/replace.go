package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/content"
	"github.com/harrison/orang/internal/executor"
	"github.com/harrison/orang/internal/search"
)

// newReplaceCommand creates the replace command.
func newReplaceCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace [path]...",
		Short: "Replace content matches inside files",
		Long: `Replace every match of the content filter inside matching files. The
replacement may reference groups with $1 or ${name}. Files are rewritten
atomically, preserving permissions and timestamps.

Examples:
  orang replace -c "hello" -t "world" --ignore-case
  orang replace src -c "v(?P<major>\d+)\.\d+" -t "v${major}.0" --recurse
  orang replace -c "\s+$" -t "" --recurse --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOptions(cmd, args, true)
			if err != nil {
				return err
			}
			defer o.Close()
			o.target = search.TargetFiles
			template, _ := cmd.Flags().GetString("replacement")

			replacer := &executor.Replacer{
				Log:         o.log,
				Engine:      o.engine,
				Filter:      o.contentFilter,
				Replacement: content.Replacement{Template: template},
				DryRun:      o.dryRun,
			}
			matched, err := runSearch(cmd, o, replacer)
			state.matched = matched
			return err
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().StringP("replacement", "t", "", "Replacement template (may use $1, ${name})")
	return cmd
}

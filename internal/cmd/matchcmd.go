package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/executor"
	"github.com/harrison/orang/internal/search"
)

// newMatchCommand creates the match command, which prints the matched
// content regions instead of just the paths.
func newMatchCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [path]...",
		Short: "Search file content and print every matched region",
		Long: `Search file content with the required content filter and print each
matched region, one per line, prefixed with the file's path.

Examples:
  orang match -c "https?://\S+" --recurse
  orang match src -c "(?P<ver>\d+\.\d+\.\d+)" --group ver`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOptions(cmd, args, true)
			if err != nil {
				return err
			}
			defer o.Close()
			o.target = search.TargetFiles

			matcher := &executor.Matcher{Log: o.log, Filter: o.contentFilter, NoHighlight: !o.highlightMatch}
			matched, err := runSearch(cmd, o, matcher)
			state.matched = matched
			return err
		},
	}
	addCommonFlags(cmd)
	return cmd
}

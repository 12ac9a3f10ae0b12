package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/patterns"
)

// newListPatternsCommand creates the list-patterns command.
func newListPatternsCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-patterns [filter]",
		Short: "List the regular expression syntax reference",
		Long: `Print the regular expression syntax reference, optionally filtered by a
case-insensitive substring.

Examples:
  orang list-patterns
  orang list-patterns lazy`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := patterns.Load()
			if err != nil {
				return err
			}
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			entries := lib.Search(query)
			if len(entries) == 0 {
				return nil
			}

			out := cmd.OutOrStdout()
			category := ""
			for _, e := range entries {
				if e.Category != category {
					if category != "" {
						fmt.Fprintln(out)
					}
					category = e.Category
					fmt.Fprintf(out, "%s:\n", category)
				}
				fmt.Fprintf(out, "  %-14s %s\n", e.Syntax, e.Description)
			}
			state.matched = true
			return nil
		},
	}
	return cmd
}

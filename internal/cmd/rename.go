package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/content"
	"github.com/harrison/orang/internal/executor"
)

// newRenameCommand creates the rename command.
func newRenameCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename [path]...",
		Short: "Rename files and directories by rewriting name matches",
		Long: `Apply the replacement to the matched part of each item's name. A rename
whose target already exists fails for that item; a change in letter case
only goes through an intermediate name so it also works on
case-insensitive file systems.

Examples:
  orang rename -n "draft" -t "final" --recurse
  orang rename -n "(?P<stem>.*)\.jpeg" --name-part full-name -t "${stem}.jpg"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOptions(cmd, args, false)
			if err != nil {
				return err
			}
			defer o.Close()
			if o.nameFilter == nil {
				return fmt.Errorf("a name pattern is required (-n)")
			}
			if err := applyTarget(cmd, o); err != nil {
				return err
			}
			template, _ := cmd.Flags().GetString("replacement")

			renamer := &executor.Renamer{
				Log:         o.log,
				Filter:      o.nameFilter,
				Replacement: content.Replacement{Template: template},
				DryRun:      o.dryRun,
			}
			matched, err := runSearch(cmd, o, renamer)
			state.matched = matched
			return err
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().StringP("replacement", "t", "", "Replacement template for the matched name part")
	cmd.Flags().String("target", "", "What to rename: files, directories or all")
	return cmd
}

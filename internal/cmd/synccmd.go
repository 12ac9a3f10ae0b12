package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/search"
	"github.com/harrison/orang/internal/syncdir"
)

// newSyncCommand creates the sync command.
func newSyncCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [left-dir]",
		Short: "Bidirectionally synchronize two directories",
		Long: `Synchronize the left directory (default: the current directory) with the
directory given by --right. The left tree is walked first and mirrored to
the right; the right tree is then walked with the roles swapped, skipping
everything the first pass already harmonized. When both sides changed, the
newer modification time wins; ties fall back to the conflict policy.

Examples:
  orang sync ~/work --right /mnt/backup/work
  orang sync --right /mnt/usb/docs --conflict Ask --compare content,modified-time
  orang sync --right ../mirror --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOptions(cmd, args, false)
			if err != nil {
				return err
			}
			defer o.Close()

			right, _ := cmd.Flags().GetString("right")
			if right == "" {
				return fmt.Errorf("the right directory is required (--right)")
			}
			conflictName, _ := cmd.Flags().GetString("conflict")
			conflict, err := syncdir.ParseConflictResolution(conflictName)
			if err != nil {
				return err
			}
			compareSpec, _ := cmd.Flags().GetString("compare")
			compare, err := syncdir.ParseCompareOptions(compareSpec)
			if err != nil {
				return err
			}

			syncer := &syncdir.Syncer{
				Left:        o.paths[0],
				Right:       right,
				Filter:      o.fsFilter,
				DirFilter:   o.dirFilter,
				ReadContent: o.engine.ReadText,
				Compare:     compare,
				Conflict:    conflict,
				DryRun:      o.dryRun,
				Log:         o.log,
				Prompter:    &syncdir.StdinPrompter{In: os.Stdin, Out: os.Stderr},
			}

			sc := search.NewContext(cmd.Context())
			sc.MaxMatchingFiles = o.maxMatching
			if err := syncer.Run(sc); err != nil {
				return err
			}
			sc.Finish()
			if o.includeSummary {
				for _, line := range sc.Telemetry.SummaryLines() {
					o.log.Result(line)
				}
			}
			if sc.Termination == search.TerminationCanceled {
				return fmt.Errorf("canceled")
			}
			// Sync has no match concept; exit code 0 means the run performed
			// at least one harmonizing action, so an already-converged pair
			// is distinguishable from one that did work.
			tel := &sc.Telemetry
			state.matched = tel.AddedCount+tel.UpdatedCount+tel.RenamedCount+tel.DeletedCount > 0
			return nil
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().String("right", "", "The other directory to synchronize with (required)")
	cmd.Flags().String("conflict", "", "Conflict policy: LeftWins, RightWins or Ask")
	cmd.Flags().String("compare", "", "Equality criteria: attributes, content, modified-time, size")
	_ = cmd.MarkFlagRequired("right")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/executor"
	"github.com/harrison/orang/internal/search"
)

// newCopyCommand creates the copy command.
func newCopyCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy [path]...",
		Short: "Copy matched items into a target directory",
		Long: `Copy every match into the target directory, preserving each item's path
relative to the directory it was found under.

Examples:
  orang copy -n "\.pdf$" --recurse --target ~/backup/pdf
  orang copy src -e "^go$" --target /tmp/sources --conflict skip`,
		RunE: transferRunE(state, false),
	}
	addTransferFlags(cmd)
	return cmd
}

// newMoveCommand creates the move command.
func newMoveCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move [path]...",
		Short: "Move matched items into a target directory",
		Long: `Move every match into the target directory, preserving each item's path
relative to the directory it was found under.

Examples:
  orang move -n "\.bak$" --recurse --target ~/attic
  orang move downloads -e "^iso$" --target /mnt/images --conflict rename-new`,
		RunE: transferRunE(state, true),
	}
	addTransferFlags(cmd)
	return cmd
}

func addTransferFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().String("target", "", "Destination directory (required)")
	cmd.Flags().String("conflict", "", "When the destination exists: fail, overwrite, skip, rename-new")
	_ = cmd.MarkFlagRequired("target")
}

func transferRunE(state *appState, move bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		o, err := buildOptions(cmd, args, false)
		if err != nil {
			return err
		}
		defer o.Close()
		o.target = search.TargetAll

		targetDir, _ := cmd.Flags().GetString("target")
		if targetDir == "" {
			return fmt.Errorf("a target directory is required")
		}
		conflictName, _ := cmd.Flags().GetString("conflict")
		conflict, err := executor.ParseConflictPolicy(conflictName)
		if err != nil {
			return err
		}

		var consumer executor.Consumer
		if move {
			consumer = &executor.Mover{Log: o.log, Target: targetDir, Conflict: conflict, DryRun: o.dryRun}
		} else {
			consumer = &executor.Copier{Log: o.log, Target: targetDir, Conflict: conflict, DryRun: o.dryRun}
		}
		matched, err := runSearch(cmd, o, consumer)
		state.matched = matched
		return err
	}
}

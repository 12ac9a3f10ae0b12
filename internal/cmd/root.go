// Package cmd wires the orang verbs: it parses flags into the frozen options
// record, builds the filter chain and the per-verb executor, and runs the
// traversal. Exit codes follow the search convention: 0 for at least one
// match, 1 for none, 2 for any failure.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// appState carries the cross-command result needed to compute the exit code.
type appState struct {
	matched bool
}

// Matched reports whether the command produced at least one match.
func (s *appState) Matched() bool { return s.matched }

// NewRootCommand creates the root cobra command and the state record the
// verbs report into.
func NewRootCommand() (*cobra.Command, *appState) {
	state := &appState{}
	cmd := &cobra.Command{
		Use:   "orang",
		Short: "Search, replace, rename, delete and synchronize files with regular expressions",
		Long: `Orang searches a file system tree for files and directories whose names,
extensions, attributes, properties or textual content match regular
expression filters, then displays, copies, moves, renames, replaces in,
deletes or bidirectionally synchronizes the matched items.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text; errors are
		// printed once by ExecuteContext.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newFindCommand(state))
	cmd.AddCommand(newMatchCommand(state))
	cmd.AddCommand(newReplaceCommand(state))
	cmd.AddCommand(newRenameCommand(state))
	cmd.AddCommand(newCopyCommand(state))
	cmd.AddCommand(newMoveCommand(state))
	cmd.AddCommand(newDeleteCommand(state))
	cmd.AddCommand(newSyncCommand(state))
	cmd.AddCommand(newEscapeCommand(state))
	cmd.AddCommand(newSplitCommand(state))
	cmd.AddCommand(newListPatternsCommand(state))

	return cmd, state
}

// ExecuteContext runs the root command under ctx and maps the outcome to the
// exit-code convention: 0 for at least one match, 1 for none, 2 for any
// failure.
func ExecuteContext(ctx context.Context) int {
	root, state := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if state.matched {
		return 0
	}
	return 1
}

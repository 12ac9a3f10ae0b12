package cmd

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// newEscapeCommand creates the escape command.
func newEscapeCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escape [text]",
		Short: "Escape special characters in a pattern or replacement",
		Long: `Escape regular-expression metacharacters in the given text (or standard
input when no argument is given). With --replacement the text is escaped
for use as a replacement template instead, doubling dollar signs.

Examples:
  orang escape "price: $1.50 (approx.)"
  echo "a+b" | orang escape`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read standard input: %w", err)
				}
				input = strings.TrimSuffix(string(data), "\n")
			}

			forReplacement, _ := cmd.Flags().GetBool("replacement")
			if forReplacement {
				fmt.Fprintln(cmd.OutOrStdout(), strings.ReplaceAll(input, "$", "$$"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), regexp.QuoteMeta(input))
			}
			state.matched = true
			return nil
		},
	}
	cmd.Flags().Bool("replacement", false, "Escape for a replacement template instead of a pattern")
	return cmd
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/content"
	"github.com/harrison/orang/internal/filelock"
	"github.com/harrison/orang/internal/logger"
	"github.com/harrison/orang/internal/search"
)

// newSplitCommand creates the split command.
func newSplitCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [path]...",
		Short: "Split files at content match boundaries",
		Long: `Split each matching file into numbered parts at the boundaries of the
content filter's matches. Parts are written next to the original as
"<name>.1<ext>", "<name>.2<ext>" and so on; the original is left intact.

Examples:
  orang split big.log -c "^=== " --multiline
  orang split -n "\.sql$" -c ";\n" --recurse --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOptions(cmd, args, true)
			if err != nil {
				return err
			}
			defer o.Close()
			o.target = search.TargetFiles

			splitter := &splitConsumer{o: o}
			matched, err := runSearch(cmd, o, splitter)
			state.matched = matched
			return err
		},
	}
	addCommonFlags(cmd)
	return cmd
}

// splitConsumer writes the part files for one match.
type splitConsumer struct {
	o *options
}

func (s *splitConsumer) Consume(sc *search.Context, r *search.SearchResult, _ search.ColumnWidths) error {
	text := r.Match.Text
	matches := content.Matches(s.o.contentFilter, text)
	if len(matches) == 0 {
		return nil
	}

	var parts []string
	last := 0
	for _, m := range matches {
		if m.Index > last {
			parts = append(parts, text[last:m.Index])
		}
		last = m.End()
	}
	if last < len(text) {
		parts = append(parts, text[last:])
	}
	if len(parts) < 2 {
		return nil
	}

	ext := filepath.Ext(r.Match.Path)
	stem := strings.TrimSuffix(r.Match.Path, ext)
	for i, part := range parts {
		partPath := fmt.Sprintf("%s.%d%s", stem, i+1, ext)
		if !s.o.dryRun {
			if err := filelock.AtomicWrite(partPath, []byte(part)); err != nil {
				return err
			}
		}
		sc.Telemetry.AddedCount++
		s.o.log.Op(logger.TagAdd, filepath.Base(partPath))
	}
	return nil
}

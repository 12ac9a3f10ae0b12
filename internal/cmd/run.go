package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/orang/internal/executor"
	"github.com/harrison/orang/internal/search"
)

// runSearch walks every root path and feeds matches to the consumer, either
// streaming or through the buffering pipeline when sorting or property
// columns demand it. It returns whether anything matched; cancellation is
// returned as an error so the command exits with code 2.
func runSearch(cmd *cobra.Command, o *options, consumer executor.Consumer) (bool, error) {
	sc := search.NewContext(cmd.Context())
	sc.MaxMatchingFiles = o.maxMatching
	if o.progress && isatty.IsTerminal(os.Stderr.Fd()) {
		sc.Progress = &search.LineProgress{W: os.Stderr}
	}

	walker := &search.Walker{
		Filter:      o.fsFilter,
		DirFilter:   o.dirFilter,
		Target:      o.target,
		Recurse:     o.recurse,
		ReadContent: o.engine.ReadText,
		Errors: func(path string, err error) {
			o.log.Error(path, err)
		},
	}

	emit := func(r *search.SearchResult, widths search.ColumnWidths) {
		if err := consumer.Consume(sc, r, widths); err != nil {
			sc.Telemetry.ErrorCount++
			o.log.Error(r.Match.Path, err)
		}
	}

	buffered := o.pipeline.NeedsBuffer()
	streamed := 0
	stopped := false
	for _, root := range o.paths {
		err := walker.Walk(sc, root, func(r *search.SearchResult) bool {
			if buffered {
				o.pipeline.Add(r)
				return true
			}
			emit(r, search.ColumnWidths{})
			streamed++
			if o.maxCount > 0 && streamed >= o.maxCount {
				stopped = true
				return false
			}
			return true
		})
		if err != nil {
			sc.Telemetry.ErrorCount++
			o.log.Error(root, err)
		}
		if stopped || sc.Termination != search.TerminationNone {
			break
		}
	}

	if buffered {
		if err := o.pipeline.Flush(func(r *search.SearchResult, widths search.ColumnWidths) error {
			emit(r, widths)
			return nil
		}); err != nil {
			return false, err
		}
	}

	sc.Finish()
	if o.includeSummary {
		for _, line := range sc.Telemetry.SummaryLines() {
			o.log.Result(line)
		}
	}
	matched := sc.Telemetry.MatchingCount() > 0
	if sc.Termination == search.TerminationCanceled {
		return matched, fmt.Errorf("canceled")
	}
	return matched, nil
}

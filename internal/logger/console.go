package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger writes primary output to one writer and errors to another,
// usually stdout and stderr. Writes are mutex-guarded so a logger can be
// shared by helpers, and colour is enabled only when the writer is a TTY and
// NO_COLOR is not set.
type ConsoleLogger struct {
	out       io.Writer
	errOut    io.Writer
	verbosity Verbosity
	colorOut  bool
	colorErr  bool
	mu        sync.Mutex
}

// NewConsoleLogger creates a ConsoleLogger writing results to out and
// errors to errOut. Nil writers discard their stream.
func NewConsoleLogger(out, errOut io.Writer, verbosity Verbosity) *ConsoleLogger {
	return &ConsoleLogger{
		out:       out,
		errOut:    errOut,
		verbosity: verbosity,
		colorOut:  isTerminal(out),
		colorErr:  isTerminal(errOut),
	}
}

// isTerminal reports whether w is a TTY with colour support.
func isTerminal(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var tagColors = map[Tag]*color.Color{
	TagAdd:    color.New(color.FgGreen),
	TagUpdate: color.New(color.FgCyan),
	TagDelete: color.New(color.FgRed),
	TagRename: color.New(color.FgYellow),
	TagError:  color.New(color.FgRed),
}

var highlightColor = color.New(color.FgGreen, color.Bold)

// Verbosity returns the configured level.
func (cl *ConsoleLogger) Verbosity() Verbosity { return cl.verbosity }

// Result writes a primary result line at Normal verbosity.
func (cl *ConsoleLogger) Result(line string) {
	cl.write(cl.out, Normal, line)
}

// Op writes a tagged operation line at Minimal verbosity.
func (cl *ConsoleLogger) Op(tag Tag, line string) {
	if cl.out == nil || cl.verbosity < Minimal {
		return
	}
	label := string(tag)
	if cl.colorOut {
		if c, ok := tagColors[tag]; ok {
			label = c.Sprint(label)
		}
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	fmt.Fprintf(cl.out, "%s %s\n", label, line)
}

// Error writes a non-fatal per-path error to the error stream at Minimal
// verbosity. The prefix matches Op's column so mixed output stays aligned.
func (cl *ConsoleLogger) Error(path string, err error) {
	if cl.errOut == nil || cl.verbosity < Minimal {
		return
	}
	label := string(TagError)
	if cl.colorErr {
		label = tagColors[TagError].Sprint(label)
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if path == "" {
		fmt.Fprintf(cl.errOut, "%s %v\n", label, err)
		return
	}
	fmt.Fprintf(cl.errOut, "%s %s: %v\n", label, path, err)
}

// Detail writes a line at Detailed verbosity.
func (cl *ConsoleLogger) Detail(line string) {
	cl.write(cl.out, Detailed, line)
}

// Diag writes a line at Diagnostic verbosity.
func (cl *ConsoleLogger) Diag(line string) {
	cl.write(cl.out, Diagnostic, line)
}

// Highlight decorates a matched region when colour is enabled.
func (cl *ConsoleLogger) Highlight(s string) string {
	if !cl.colorOut {
		return s
	}
	return highlightColor.Sprint(s)
}

func (cl *ConsoleLogger) write(w io.Writer, min Verbosity, line string) {
	if w == nil || cl.verbosity < min {
		return
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	fmt.Fprintln(w, line)
}

// MultiLogger fans every call out to several loggers, typically a console
// logger plus a file logger created from --output.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger over the given loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

func (ml *MultiLogger) Result(line string) {
	for _, l := range ml.loggers {
		l.Result(line)
	}
}

func (ml *MultiLogger) Op(tag Tag, line string) {
	for _, l := range ml.loggers {
		l.Op(tag, line)
	}
}

func (ml *MultiLogger) Error(path string, err error) {
	for _, l := range ml.loggers {
		l.Error(path, err)
	}
}

func (ml *MultiLogger) Detail(line string) {
	for _, l := range ml.loggers {
		l.Detail(line)
	}
}

func (ml *MultiLogger) Diag(line string) {
	for _, l := range ml.loggers {
		l.Diag(line)
	}
}

// Highlight delegates to the first logger; file loggers pass text through.
func (ml *MultiLogger) Highlight(s string) string {
	if len(ml.loggers) == 0 {
		return s
	}
	return ml.loggers[0].Highlight(s)
}

// Verbosity returns the most verbose of the fanned-out levels.
func (ml *MultiLogger) Verbosity() Verbosity {
	v := Quiet
	for _, l := range ml.loggers {
		if lv := l.Verbosity(); lv > v {
			v = lv
		}
	}
	return v
}

// NoOpLogger discards all output. Useful in tests.
type NoOpLogger struct{}

func (NoOpLogger) Result(string)             {}
func (NoOpLogger) Op(Tag, string)            {}
func (NoOpLogger) Error(string, error)       {}
func (NoOpLogger) Detail(string)             {}
func (NoOpLogger) Diag(string)               {}
func (NoOpLogger) Highlight(s string) string { return s }
func (NoOpLogger) Verbosity() Verbosity      { return Quiet }

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// FileLogger mirrors command output into a file, as configured by
// --output FILE[,VERBOSITY[,ENCODING[,append]]]. Lines are written without
// colour, optionally re-encoded from UTF-8.
type FileLogger struct {
	file      *os.File
	writer    io.Writer
	verbosity Verbosity
	mu        sync.Mutex
}

// OutputSpec is the parsed form of the --output flag value.
type OutputSpec struct {
	Path      string
	Verbosity Verbosity
	Encoding  encoding.Encoding
	Append    bool
}

// ParseOutputSpec parses "FILE[,VERBOSITY[,ENCODING[,append]]]".
func ParseOutputSpec(s string) (OutputSpec, error) {
	parts := strings.Split(s, ",")
	if parts[0] == "" {
		return OutputSpec{}, fmt.Errorf("missing output file path")
	}
	spec := OutputSpec{Path: parts[0], Verbosity: Normal}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "append") {
			spec.Append = true
			continue
		}
		if v, err := ParseVerbosity(part); err == nil {
			spec.Verbosity = v
			continue
		}
		enc, err := htmlindex.Get(part)
		if err != nil {
			return OutputSpec{}, fmt.Errorf("invalid output option %q", part)
		}
		spec.Encoding = enc
	}
	return spec, nil
}

// NewFileLogger opens (or appends to) the spec's file.
func NewFileLogger(spec OutputSpec) (*FileLogger, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if spec.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(spec.Path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	var w io.Writer = file
	if spec.Encoding != nil {
		w = spec.Encoding.NewEncoder().Writer(file)
	}
	return &FileLogger{file: file, writer: w, verbosity: spec.Verbosity}, nil
}

// Close flushes and closes the underlying file.
func (fl *FileLogger) Close() error {
	return fl.file.Close()
}

// Verbosity returns the configured level.
func (fl *FileLogger) Verbosity() Verbosity { return fl.verbosity }

// Result writes a primary result line at Normal verbosity.
func (fl *FileLogger) Result(line string) { fl.write(Normal, line) }

// Op writes a tagged operation line at Minimal verbosity.
func (fl *FileLogger) Op(tag Tag, line string) {
	fl.write(Minimal, fmt.Sprintf("%s %s", tag, line))
}

// Error writes a per-path error line at Minimal verbosity.
func (fl *FileLogger) Error(path string, err error) {
	if path == "" {
		fl.write(Minimal, fmt.Sprintf("%s %v", TagError, err))
		return
	}
	fl.write(Minimal, fmt.Sprintf("%s %s: %v", TagError, path, err))
}

// Detail writes a line at Detailed verbosity.
func (fl *FileLogger) Detail(line string) { fl.write(Detailed, line) }

// Diag writes a line at Diagnostic verbosity.
func (fl *FileLogger) Diag(line string) { fl.write(Diagnostic, line) }

// Highlight is a pass-through; files carry no colour.
func (fl *FileLogger) Highlight(s string) string { return s }

func (fl *FileLogger) write(min Verbosity, line string) {
	if fl.verbosity < min {
		return
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fmt.Fprintln(fl.writer, line)
}

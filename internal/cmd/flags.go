package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"

	"github.com/harrison/orang/internal/config"
	"github.com/harrison/orang/internal/content"
	"github.com/harrison/orang/internal/filter"
	"github.com/harrison/orang/internal/logger"
	"github.com/harrison/orang/internal/search"
)

// addCommonFlags registers the filter and output flags shared by the search
// verbs.
func addCommonFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("name", "n", "", "Regex matched against the configured name part")
	flags.StringP("extension", "e", "", "Regex matched against the extension without the dot")
	flags.StringP("content", "c", "", "Regex matched against the decoded file content")
	flags.String("directory-filter", "", "Regex a directory must match to be descended into")
	flags.String("name-part", "", "Name slice the name filter sees: name, name-without-extension, extension, full-name")
	flags.String("group", "", "Named capture group whose value becomes the match")
	flags.BoolP("ignore-case", "i", false, "Case-insensitive pattern matching")
	flags.Bool("multiline", false, "^ and $ match line boundaries")
	flags.Bool("singleline", false, "Dot matches newline")
	flags.Bool("literal", false, "Treat patterns as literal text")
	flags.BoolP("word", "w", false, "Patterns match whole words only")
	flags.Bool("negate-name", false, "Invert the name filter")
	flags.Bool("negate-extension", false, "Invert the extension filter")
	flags.Bool("negate-content", false, "Invert the content filter")
	flags.StringP("attributes", "a", "", "Attributes a match must have (directory,file,symlink,hidden,read-only,empty)")
	flags.StringP("attributes-to-skip", "A", "", "Attributes that exclude a candidate")
	flags.String("creation-time", "", "Creation time predicate, e.g. \">2024-01-01\"")
	flags.String("modified-time", "", "Modified time predicate, e.g. \"<=2024-06-01 12:00\"")
	flags.String("size", "", "Size predicate, e.g. \">1M\"")
	flags.String("empty", "", "Restrict by emptiness: any, empty, non-empty")
	flags.StringP("sort", "s", "", "Sort descriptors, e.g. \"name\" or \"size-descending,modified-time\"")
	flags.String("encoding", "", "Encoding assumed for files without a BOM")
	flags.BoolP("recurse", "r", false, "Recurse into subdirectories")
	flags.Int("max-count", 0, "Maximum number of results to display (0 = unlimited)")
	flags.Int("max-matching-files", 0, "Stop after this many matches (0 = unlimited)")
	flags.Bool("include-summary", false, "Print the telemetry summary after the results")
	flags.Bool("progress", false, "Show a live progress line")
	flags.Bool("dry-run", false, "Report what would be done without touching the file system")
	flags.StringP("verbosity", "v", "", "Output verbosity: q, m, n, d, diag")
	flags.StringP("output", "o", "", "Mirror output into FILE[,VERBOSITY[,ENCODING[,append]]]")
	flags.String("highlight", "", "Parts to highlight: match, none")
	flags.String("display", "", "Display options: absolute-path, size, modified-time, creation-time")
}

// options is the frozen per-invocation record the verbs run against. It is
// built once from config defaults plus flags and not modified afterwards.
type options struct {
	paths    []string
	fsFilter *filter.FileSystemFilter
	// contentFilter aliases fsFilter.Content for executors that enumerate
	// or rewrite content regions.
	contentFilter *filter.Filter
	nameFilter    *filter.Filter
	dirFilter     *filter.Filter

	target   search.Target
	recurse  bool
	encoding encoding.Encoding
	engine   *content.Engine

	pipeline       *search.Pipeline
	columns        search.Columns
	absolutePaths  bool
	highlightMatch bool

	maxCount       int
	maxMatching    int
	dryRun         bool
	includeSummary bool
	progress       bool

	log      logger.Logger
	closeLog func() error
}

// buildOptions assembles the options record. Paths default to the current
// directory when none are given.
func buildOptions(cmd *cobra.Command, args []string, needsContent bool) (*options, error) {
	flags := cmd.Flags()
	o := &options{highlightMatch: true}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if len(args) > 0 {
		o.paths = args
	} else {
		o.paths = []string{"."}
	}

	// Pattern options shared by every filter built from this invocation.
	ignoreCase, _ := flags.GetBool("ignore-case")
	multiline, _ := flags.GetBool("multiline")
	singleline, _ := flags.GetBool("singleline")
	literal, _ := flags.GetBool("literal")
	word, _ := flags.GetBool("word")
	base := filter.PatternOptions{
		IgnoreCase: ignoreCase,
		Multiline:  multiline,
		Singleline: singleline,
		Literal:    literal,
		WholeWord:  word,
	}

	o.fsFilter = &filter.FileSystemFilter{}

	if pattern, _ := flags.GetString("name"); pattern != "" {
		opts := base
		opts.Negate, _ = flags.GetBool("negate-name")
		if partName, _ := flags.GetString("name-part"); partName != "" {
			part, err := filter.ParseNamePart(partName)
			if err != nil {
				return nil, err
			}
			opts.Part = part
		}
		f, err := filter.New(pattern, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid name pattern: %w", err)
		}
		o.fsFilter.Name = f
		o.nameFilter = f
	}

	if pattern, _ := flags.GetString("extension"); pattern != "" {
		opts := base
		opts.Negate, _ = flags.GetBool("negate-extension")
		f, err := filter.New(pattern, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid extension pattern: %w", err)
		}
		o.fsFilter.Extension = f
	}

	if pattern, _ := flags.GetString("content"); pattern != "" {
		opts := base
		opts.Negate, _ = flags.GetBool("negate-content")
		opts.GroupName, _ = flags.GetString("group")
		f, err := filter.New(pattern, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid content pattern: %w", err)
		}
		o.fsFilter.Content = f
		o.contentFilter = f
	} else if needsContent {
		return nil, fmt.Errorf("a content pattern is required (-c)")
	}

	if pattern, _ := flags.GetString("directory-filter"); pattern != "" {
		f, err := filter.New(pattern, base)
		if err != nil {
			return nil, fmt.Errorf("invalid directory filter: %w", err)
		}
		o.dirFilter = f
	}

	if s, _ := flags.GetString("attributes"); s != "" {
		attrs, err := filter.ParseAttributes(s)
		if err != nil {
			return nil, err
		}
		o.fsFilter.Attributes = attrs
	}
	skipSpec, _ := flags.GetString("attributes-to-skip")
	if skipSpec == "" {
		skipSpec = cfg.AttributesToSkip
	}
	if skipSpec != "" {
		attrs, err := filter.ParseAttributes(skipSpec)
		if err != nil {
			return nil, err
		}
		o.fsFilter.AttributesToSkip = attrs
	}

	if s, _ := flags.GetString("creation-time"); s != "" {
		p, err := filter.ParseTimePredicate(s)
		if err != nil {
			return nil, err
		}
		o.fsFilter.Properties.CreationTime = p
	}
	if s, _ := flags.GetString("modified-time"); s != "" {
		p, err := filter.ParseTimePredicate(s)
		if err != nil {
			return nil, err
		}
		o.fsFilter.Properties.ModifiedTime = p
	}
	if s, _ := flags.GetString("size"); s != "" {
		p, err := filter.ParseSizePredicate(s)
		if err != nil {
			return nil, err
		}
		o.fsFilter.Properties.Size = p
	}
	if s, _ := flags.GetString("empty"); s != "" {
		opt, err := filter.ParseEmptyOption(s)
		if err != nil {
			return nil, err
		}
		o.fsFilter.Empty = opt
	}

	encodingName, _ := flags.GetString("encoding")
	if encodingName == "" {
		encodingName = cfg.DefaultEncoding
	}
	if encodingName != "" {
		enc, err := content.LookupEncoding(encodingName)
		if err != nil {
			return nil, err
		}
		o.encoding = enc
	}
	o.engine = content.NewEngine(o.encoding)

	var sortDescs []search.SortDescriptor
	if s, _ := flags.GetString("sort"); s != "" {
		sortDescs, err = search.ParseSortDescriptors(s)
		if err != nil {
			return nil, err
		}
	}

	if s, _ := flags.GetString("display"); s != "" {
		var columnParts []string
		for _, part := range strings.Split(s, ",") {
			switch strings.ToLower(strings.TrimSpace(part)) {
			case "absolute-path", "abs":
				o.absolutePaths = true
			case "relative-path", "rel":
				o.absolutePaths = false
			default:
				columnParts = append(columnParts, part)
			}
		}
		if len(columnParts) > 0 {
			cols, err := search.ParseColumns(strings.Join(columnParts, ","))
			if err != nil {
				return nil, err
			}
			o.columns = cols
		}
	}

	if s, _ := flags.GetString("highlight"); s != "" {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "match", "m":
			o.highlightMatch = true
		case "none":
			o.highlightMatch = false
		default:
			return nil, fmt.Errorf("unknown highlight option %q", s)
		}
	}

	o.recurse, _ = flags.GetBool("recurse")
	o.dryRun, _ = flags.GetBool("dry-run")
	o.maxCount, _ = flags.GetInt("max-count")
	o.maxMatching, _ = flags.GetInt("max-matching-files")
	if o.maxMatching == 0 {
		o.maxMatching = cfg.MaxMatchingFiles
	}
	o.includeSummary, _ = flags.GetBool("include-summary")
	if !flags.Changed("include-summary") {
		o.includeSummary = cfg.IncludeSummary
	}
	o.progress, _ = flags.GetBool("progress")
	if !flags.Changed("progress") {
		o.progress = cfg.Progress
	}

	o.pipeline = &search.Pipeline{
		Sort:     sortDescs,
		Columns:  o.columns,
		MaxCount: o.maxCount,
		Sizes:    search.NewDirectorySizeMap(),
	}

	verbosityName, _ := flags.GetString("verbosity")
	if verbosityName == "" {
		verbosityName = cfg.Verbosity
	}
	verbosity, err := logger.ParseVerbosity(verbosityName)
	if err != nil {
		return nil, err
	}
	console := logger.NewConsoleLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), verbosity)
	o.log = console
	if outputSpec, _ := flags.GetString("output"); outputSpec != "" {
		spec, err := logger.ParseOutputSpec(outputSpec)
		if err != nil {
			return nil, err
		}
		fileLog, err := logger.NewFileLogger(spec)
		if err != nil {
			return nil, err
		}
		o.log = logger.NewMultiLogger(console, fileLog)
		o.closeLog = fileLog.Close
	}

	return o, nil
}

// Close releases resources owned by the options record.
func (o *options) Close() {
	if o.closeLog != nil {
		_ = o.closeLog()
	}
}

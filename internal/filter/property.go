package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Comparison is a relational operator used by property predicates.
type Comparison int

const (
	CompareLess Comparison = iota
	CompareLessOrEqual
	CompareEqual
	CompareGreaterOrEqual
	CompareGreater
)

// SizePredicate compares a file size against a literal number of bytes.
type SizePredicate struct {
	Op    Comparison
	Bytes int64
}

// Match reports whether size satisfies the predicate.
func (p SizePredicate) Match(size int64) bool {
	switch p.Op {
	case CompareLess:
		return size < p.Bytes
	case CompareLessOrEqual:
		return size <= p.Bytes
	case CompareEqual:
		return size == p.Bytes
	case CompareGreaterOrEqual:
		return size >= p.Bytes
	default:
		return size > p.Bytes
	}
}

// TimePredicate compares a file timestamp against a literal instant.
type TimePredicate struct {
	Op   Comparison
	When time.Time
}

// Match reports whether t satisfies the predicate.
// Equality is at second granularity so shell-supplied literals can match.
func (p TimePredicate) Match(t time.Time) bool {
	switch p.Op {
	case CompareLess:
		return t.Before(p.When)
	case CompareLessOrEqual:
		return !t.After(p.When)
	case CompareEqual:
		return t.Truncate(time.Second).Equal(p.When.Truncate(time.Second))
	case CompareGreaterOrEqual:
		return !t.Before(p.When)
	default:
		return t.After(p.When)
	}
}

// FilePropertyFilter holds the optional property predicates of a search.
type FilePropertyFilter struct {
	CreationTime *TimePredicate
	ModifiedTime *TimePredicate
	Size         *SizePredicate
}

// IsEmpty reports whether no predicate is set.
func (f FilePropertyFilter) IsEmpty() bool {
	return f.CreationTime == nil && f.ModifiedTime == nil && f.Size == nil
}

// splitComparison strips a leading comparison operator from expr.
func splitComparison(expr string) (Comparison, string, error) {
	switch {
	case strings.HasPrefix(expr, "<="):
		return CompareLessOrEqual, expr[2:], nil
	case strings.HasPrefix(expr, ">="):
		return CompareGreaterOrEqual, expr[2:], nil
	case strings.HasPrefix(expr, "<"):
		return CompareLess, expr[1:], nil
	case strings.HasPrefix(expr, ">"):
		return CompareGreater, expr[1:], nil
	case strings.HasPrefix(expr, "="):
		return CompareEqual, expr[1:], nil
	case expr == "":
		return CompareEqual, "", fmt.Errorf("empty comparison expression")
	default:
		return CompareEqual, expr, nil
	}
}

var sizeSuffixes = []struct {
	suffix string
	factor int64
}{
	{"tb", 1 << 40}, {"t", 1 << 40},
	{"gb", 1 << 30}, {"g", 1 << 30},
	{"mb", 1 << 20}, {"m", 1 << 20},
	{"kb", 1 << 10}, {"k", 1 << 10},
	{"b", 1},
}

// ParseSizePredicate parses expressions such as ">1M", "<=200kb" or "=0".
func ParseSizePredicate(expr string) (*SizePredicate, error) {
	op, rest, err := splitComparison(strings.TrimSpace(expr))
	if err != nil {
		return nil, err
	}
	rest = strings.TrimSpace(strings.ToLower(rest))
	factor := int64(1)
	for _, s := range sizeSuffixes {
		if strings.HasSuffix(rest, s.suffix) {
			factor = s.factor
			rest = strings.TrimSuffix(rest, s.suffix)
			break
		}
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid size %q", expr)
	}
	return &SizePredicate{Op: op, Bytes: int64(n * float64(factor))}, nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// ParseTimePredicate parses expressions such as ">2024-01-02" or
// "<=2024-01-02 13:30". Date-only literals are midnight local time.
func ParseTimePredicate(expr string) (*TimePredicate, error) {
	op, rest, err := splitComparison(strings.TrimSpace(expr))
	if err != nil {
		return nil, err
	}
	rest = strings.TrimSpace(rest)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, rest, time.Local); err == nil {
			return &TimePredicate{Op: op, When: t}, nil
		}
	}
	return nil, fmt.Errorf("invalid time %q", expr)
}

// Package filter models the structured pre-filters a caller can attach to a
// search: source types, file types, and a creation date range.
package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxValuesPerGroup caps the number of values in a single filter group.
const MaxValuesPerGroup = 16

// Filters is a validated, immutable set of search pre-filters.
// A zero Filters matches everything.
type Filters struct {
	sources   []string
	fileTypes []string
	after     time.Time
	before    time.Time
}

// New validates and creates Filters. Empty groups are allowed; a non-zero
// after must not be later than a non-zero before.
func New(sources, fileTypes []string, after, before time.Time) (Filters, error) {
	if len(sources) > MaxValuesPerGroup {
		return Filters{}, fmt.Errorf("too many source filters (max %d)", MaxValuesPerGroup)
	}
	if len(fileTypes) > MaxValuesPerGroup {
		return Filters{}, fmt.Errorf("too many file type filters (max %d)", MaxValuesPerGroup)
	}
	for _, s := range sources {
		if s == "" {
			return Filters{}, fmt.Errorf("empty source filter value")
		}
	}
	for _, ft := range fileTypes {
		if ft == "" {
			return Filters{}, fmt.Errorf("empty file type filter value")
		}
	}
	if !after.IsZero() && !before.IsZero() && after.After(before) {
		return Filters{}, fmt.Errorf("date range is inverted: after %s > before %s",
			after.Format(time.RFC3339), before.Format(time.RFC3339))
	}

	f := Filters{
		sources:   append([]string(nil), sources...),
		fileTypes: append([]string(nil), fileTypes...),
		after:     after,
		before:    before,
	}
	// Canonical order so equal filters produce equal fingerprints.
	sort.Strings(f.sources)
	sort.Strings(f.fileTypes)
	return f, nil
}

// Sources returns the allowed source types.
func (f Filters) Sources() []string { return f.sources }

// FileTypes returns the allowed file types.
func (f Filters) FileTypes() []string { return f.fileTypes }

// After returns the inclusive lower creation time bound (zero = unbounded).
func (f Filters) After() time.Time { return f.after }

// Before returns the inclusive upper creation time bound (zero = unbounded).
func (f Filters) Before() time.Time { return f.before }

// IsEmpty reports whether the filters match everything.
func (f Filters) IsEmpty() bool {
	return len(f.sources) == 0 && len(f.fileTypes) == 0 && f.after.IsZero() && f.before.IsZero()
}

// Fingerprint returns a canonical string representation used in cache keys.
func (f Filters) Fingerprint() string {
	if f.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("src=")
	b.WriteString(strings.Join(f.sources, ","))
	b.WriteString(";ft=")
	b.WriteString(strings.Join(f.fileTypes, ","))
	b.WriteString(";after=")
	if !f.after.IsZero() {
		b.WriteString(strconv.FormatInt(f.after.Unix(), 10))
	}
	b.WriteString(";before=")
	if !f.before.IsZero() {
		b.WriteString(strconv.FormatInt(f.before.Unix(), 10))
	}
	return b.String()
}

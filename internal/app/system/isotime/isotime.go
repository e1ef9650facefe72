// internal/app/system/isotime/isotime.go
//
// Package isotime formats the ISO-8601 timestamps stored on documents.
//
// Documents keep timestamps as text so that migrated rows and rows written
// by the running app share one representation. The layout is fixed width and
// always UTC, which keeps lexical and chronological order the same; sorting a
// collection by created_at therefore works on the raw strings.
package isotime

import (
	"time"
)

// Layout is the on-disk timestamp layout.
const Layout = "2006-01-02T15:04:05.000000Z"

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Format renders t as ISO-8601 UTC text.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// FormatPtr renders t, or returns nil when t is nil or zero.
func FormatPtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := Format(*t)
	return &s
}

// Now returns the current time as ISO-8601 text.
func Now() string {
	return Format(nowFunc())
}

// Parse reads a timestamp written by Format. RFC 3339 input is accepted too,
// since hand-edited or imported documents occasionally carry it.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(Layout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParsePtr is Parse for optional fields. Empty and unparsable values yield nil.
func ParsePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := Parse(*s)
	if err != nil {
		return nil
	}
	return &t
}

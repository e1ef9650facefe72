// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in a list response.
const PageSize = 50

// MaxPageSize caps the "limit" parameter.
const MaxPageSize = 500

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	return positive(query.Get(r, "start"), 1)
}

// ParseLimit extracts the "limit" query parameter, defaulting to PageSize
// and capped at MaxPageSize.
func ParseLimit(r *http.Request) int {
	n := positive(query.Get(r, "limit"), PageSize)
	if n > MaxPageSize {
		n = MaxPageSize
	}
	return n
}

// Parse returns the limit and zero-based offset requested by r.
func Parse(r *http.Request) (limit, offset int) {
	limit = ParseLimit(r)
	return limit, ParseStart(r) - 1
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int `json:"start"`                // 1-based start index (0 if no results)
	End       int `json:"end"`                  // 1-based end index (0 if no results)
	PrevStart int `json:"prev_start,omitempty"` // start value for previous page link
	NextStart int `json:"next_start,omitempty"` // start value for next page link, 0 on the last page
}

// ComputeRange calculates display range values given the current start
// index, the page size and the number of items shown. A short page is the
// last one.
func ComputeRange(start, limit, shown int) Range {
	if shown == 0 {
		return Range{}
	}

	rg := Range{Start: start, End: start + shown - 1}
	if start > 1 {
		rg.PrevStart = start - limit
		if rg.PrevStart < 1 {
			rg.PrevStart = 1
		}
	}
	if shown >= limit {
		rg.NextStart = start + shown
	}
	return rg
}

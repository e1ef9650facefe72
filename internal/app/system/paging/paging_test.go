package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "/x", PageSize, 0},
		{"explicit", "/x?start=11&limit=10", 10, 10},
		{"garbage", "/x?start=abc&limit=-3", PageSize, 0},
		{"capped", "/x?limit=100000", MaxPageSize, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := Parse(httptest.NewRequest("GET", tt.target, nil))
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("Parse(%q) = (%d, %d), want (%d, %d)", tt.target, limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name                string
		start, limit, shown int
		want                Range
	}{
		{"empty", 1, 10, 0, Range{}},
		{"first full page", 1, 10, 10, Range{Start: 1, End: 10, NextStart: 11}},
		{"middle page", 11, 10, 10, Range{Start: 11, End: 20, PrevStart: 1, NextStart: 21}},
		{"last short page", 21, 10, 3, Range{Start: 21, End: 23, PrevStart: 11}},
		{"odd start", 5, 10, 10, Range{Start: 5, End: 14, PrevStart: 1, NextStart: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRange(tt.start, tt.limit, tt.shown); got != tt.want {
				t.Errorf("ComputeRange(%d, %d, %d) = %+v, want %+v", tt.start, tt.limit, tt.shown, got, tt.want)
			}
		})
	}
}

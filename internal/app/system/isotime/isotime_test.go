package isotime

import (
	"sort"
	"testing"
	"time"
)

func TestFormat_FixedWidthUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2024, 3, 9, 10, 0, 0, 0, loc)

	got := Format(in)
	want := "2024-03-09T04:30:00.000000Z"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_LexicalOrderMatchesTime(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(1500 * time.Millisecond),
		base,
		base.Add(10 * time.Hour),
		base.Add(time.Microsecond),
	}

	var strs []string
	for _, tt := range times {
		strs = append(strs, Format(tt))
	}
	sort.Strings(strs)

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i := range times {
		if strs[i] != Format(times[i]) {
			t.Errorf("position %d: got %q, want %q", i, strs[i], Format(times[i]))
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	in := time.Date(2023, 12, 31, 23, 59, 59, 123456000, time.UTC)
	got, err := Parse(Format(in))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !got.Equal(in) {
		t.Errorf("Parse(Format(x)) = %v, want %v", got, in)
	}
}

func TestParse_AcceptsRFC3339(t *testing.T) {
	got, err := Parse("2023-05-01T12:00:00+02:00")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Hour() != 10 || got.Location() != time.UTC {
		t.Errorf("expected 10:00 UTC, got %v", got)
	}
}

func TestPtrHelpers(t *testing.T) {
	if FormatPtr(nil) != nil {
		t.Error("FormatPtr(nil) should be nil")
	}
	zero := time.Time{}
	if FormatPtr(&zero) != nil {
		t.Error("FormatPtr(zero) should be nil")
	}
	bad := "not a time"
	if ParsePtr(&bad) != nil {
		t.Error("ParsePtr(bad) should be nil")
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	if got := ParsePtr(FormatPtr(&now)); got == nil || !got.Equal(now) {
		t.Errorf("ParsePtr(FormatPtr(now)) = %v, want %v", got, now)
	}
}

func TestNow_UsesClock(t *testing.T) {
	orig := nowFunc
	defer func() { nowFunc = orig }()
	nowFunc = func() time.Time { return time.Date(2020, 2, 2, 2, 2, 2, 0, time.UTC) }

	if got := Now(); got != "2020-02-02T02:02:02.000000Z" {
		t.Errorf("Now() = %q", got)
	}
}

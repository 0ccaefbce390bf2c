package model

import (
	"testing"
	"time"
)

func TestNewLogTimePeriodKeepsBothBounds(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 17, 30, 0, 0, time.UTC)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	p := NewLogTimePeriod(&start, &end, now)
	if !p.StartTime.Equal(start) || !p.EndTime.Equal(end) {
		t.Fatalf("period = %+v, want [%v, %v]", p, start, end)
	}
}

func TestNewLogTimePeriodDefaultsAtomically(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		start, end *time.Time
	}{
		{"both missing", nil, nil},
		{"start missing", nil, &end},
		{"end missing", &start, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewLogTimePeriod(tc.start, tc.end, now)
			if !p.StartTime.Equal(now.AddDate(0, 0, -1)) {
				t.Errorf("start = %v, want %v", p.StartTime, now.AddDate(0, 0, -1))
			}
			if !p.EndTime.Equal(now) {
				t.Errorf("end = %v, want %v", p.EndTime, now)
			}
		})
	}
}

func TestLogTimePeriodContainsAndCoversDay(t *testing.T) {
	start := time.Date(2024, 2, 28, 22, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	p := LogTimePeriod{StartTime: start, EndTime: end}

	if !p.Contains(start) || !p.Contains(end) {
		t.Errorf("bounds should be inclusive")
	}
	if p.Contains(end.Add(time.Nanosecond)) {
		t.Errorf("after end should be excluded")
	}
	covered := map[int]bool{27: false, 28: true, 29: true}
	for day, want := range covered {
		if got := p.CoversDay(time.Date(2024, 2, day, 12, 0, 0, 0, time.UTC)); got != want {
			t.Errorf("CoversDay(Feb %d) = %v, want %v", day, got, want)
		}
	}
	if !p.CoversDay(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)) {
		t.Errorf("the end date should be covered whatever the time of day")
	}
	if p.CoversDay(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("the day after the end should not be covered")
	}
}

func TestCoversDayWideWindow(t *testing.T) {
	p := LogTimePeriod{
		StartTime: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if !p.CoversDay(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("every date should fall inside the widest window")
	}
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{
		"Descending": Descending,
		"descending": Ascending,
		"DESCENDING": Ascending,
		"Ascending":  Ascending,
		"":           Ascending,
		"whatever":   Ascending,
	}
	for in, want := range tests {
		if got := ParseDirection(in); got != want {
			t.Errorf("ParseDirection(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"Verbose", LevelVerbose},
		{"trace", LevelVerbose},
		{"DEBUG", LevelDebug},
		{"information", LevelInformation},
		{"info", LevelInformation},
		{"Warning", LevelWarning},
		{"warn", LevelWarning},
		{"Error", LevelError},
		{"fatal", LevelFatal},
		{"panic", LevelFatal},
		{"0", LevelVerbose},
		{"5", LevelFatal},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.input)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	for _, bad := range []string{"", "loud", "6", "-1"} {
		if _, err := ParseLogLevel(bad); err == nil {
			t.Errorf("ParseLogLevel(%q) expected error", bad)
		}
	}
}

func TestNewPagedResult(t *testing.T) {
	r := NewPagedResult[int](201, 3, 100, []int{1})
	if r.TotalPages != 3 || r.TotalItems != 201 || r.PageNumber != 3 {
		t.Fatalf("unexpected paging: %+v", r)
	}
	empty := NewPagedResult[int](0, 1, 100, nil)
	if empty.Items == nil || empty.TotalPages != 0 {
		t.Fatalf("empty page should have non-nil items and zero pages: %+v", empty)
	}
}

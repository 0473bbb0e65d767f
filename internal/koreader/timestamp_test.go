package koreader

import (
	"testing"
	"time"
)

func TestParseTimestampEpochHeuristic(t *testing.T) {
	seconds, ok := parseTimestamp(int64(1700000000))
	if !ok {
		t.Fatalf("expected 10-digit epoch to parse")
	}
	millis, ok := parseTimestamp(int64(1700000000000))
	if !ok {
		t.Fatalf("expected 13-digit epoch to parse")
	}
	if !seconds.Equal(millis) {
		t.Fatalf("expected same instant, got %v and %v", seconds, millis)
	}
	if seconds.Year() != 2023 {
		t.Fatalf("expected year 2023, got %d", seconds.Year())
	}
}

func TestParseTimestampStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{name: "datetime", input: "2023-11-14 22:13:20", want: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), ok: true},
		{name: "date only", input: "2023-11-14", want: time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "rfc3339", input: "2023-11-14T22:13:20Z", want: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), ok: true},
		{name: "numeric string", input: "1700000000", want: time.Unix(1700000000, 0).UTC(), ok: true},
		{name: "garbage", input: "not a date", ok: false},
		{name: "empty", input: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTimestamp(tt.input)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAbsentTimestamp(t *testing.T) {
	for _, input := range []any{nil, int64(0), float64(0), "", " ", "0", []byte("0")} {
		if !absentTimestamp(input) {
			t.Fatalf("expected %v to read as absent", input)
		}
	}
	for _, input := range []any{int64(12345), "nonsense", []byte("x")} {
		if absentTimestamp(input) {
			t.Fatalf("expected %v to read as present", input)
		}
	}
}

func TestParseTimestampRejectsImplausible(t *testing.T) {
	for _, input := range []any{nil, int64(0), int64(-5), int64(12345), float64(1)} {
		if _, ok := parseTimestamp(input); ok {
			t.Fatalf("expected %v to be rejected", input)
		}
	}
}

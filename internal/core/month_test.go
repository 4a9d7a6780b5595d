package core

import (
	"testing"
	"time"
)

func TestMonthKeyOf(t *testing.T) {
	cases := []struct {
		in   time.Time
		want MonthKey
	}{
		{time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), "2024-01"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-12"},
		// Instants are keyed in UTC regardless of their zone.
		{time.Date(2024, 3, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600)), "2024-02"},
	}
	for _, tc := range cases {
		if got := MonthKeyOf(tc.in); got != tc.want {
			t.Fatalf("%v: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestParseMonthKey(t *testing.T) {
	if _, err := ParseMonthKey("2024-13"); err == nil {
		t.Fatal("expected error for month 13")
	}
	if _, err := ParseMonthKey("garbage"); err == nil {
		t.Fatal("expected error for garbage input")
	}
	k, err := ParseMonthKey("2024-07")
	if err != nil || k != "2024-07" {
		t.Fatalf("expected 2024-07, got %q (err=%v)", k, err)
	}
}

func TestMonthKeyNext(t *testing.T) {
	cases := []struct{ in, want MonthKey }{
		{"2024-01", "2024-02"},
		{"2024-12", "2025-01"},
	}
	for _, tc := range cases {
		if got := tc.in.Next(); got != tc.want {
			t.Fatalf("%q.Next() expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestMonthRange(t *testing.T) {
	got := MonthRange("2023-11", "2024-02")
	want := []MonthKey{"2023-11", "2023-12", "2024-01", "2024-02"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if r := MonthRange("2024-05", "2024-01"); r != nil {
		t.Fatalf("inverted range expected nil, got %v", r)
	}
}

func TestMonthsUntil(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		deadline time.Time
		want     int
	}{
		{time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 6},
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1}, // partial month rounds up
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC), -3},
	}
	for _, tc := range cases {
		if got := MonthsUntil(now, tc.deadline); got != tc.want {
			t.Fatalf("deadline %v: expected %d, got %d", tc.deadline, tc.want, got)
		}
	}
}

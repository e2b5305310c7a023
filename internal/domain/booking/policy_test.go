package booking

import (
	"testing"
	"time"
)

var clock = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestCanBook(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"two hours ahead", clock.Add(2 * time.Hour), true},
		{"61 minutes ahead", clock.Add(61 * time.Minute), true},
		{"exactly one hour ahead", clock.Add(time.Hour), true},
		{"59 minutes ahead", clock.Add(59 * time.Minute), false},
		{"in the past", clock.Add(-time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanBook(tc.start, clock); got != tc.want {
				t.Errorf("CanBook(%v) = %v, want %v", tc.start, got, tc.want)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"48 hours ahead", clock.Add(48 * time.Hour), true},
		{"25 hours ahead", clock.Add(25 * time.Hour), true},
		{"exactly 24 hours ahead", clock.Add(24 * time.Hour), true},
		{"23 hours ahead", clock.Add(23 * time.Hour), false},
		{"one hour ahead", clock.Add(time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanCancel(tc.start, clock); got != tc.want {
				t.Errorf("CanCancel(%v) = %v, want %v", tc.start, got, tc.want)
			}
		})
	}
}

func TestWithinHorizon(t *testing.T) {
	cases := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"tomorrow", Today(clock).AddDate(0, 0, 1), true},
		{"exactly 90 days out", Today(clock).AddDate(0, 0, 90), true},
		{"91 days out", Today(clock).AddDate(0, 0, 91), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithinHorizon(tc.day, clock); got != tc.want {
				t.Errorf("WithinHorizon(%v) = %v, want %v", tc.day, got, tc.want)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2025-06-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("expected %v, got %v", want, day)
	}

	day, err = ParseDay("2025-06-20T15:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !day.Equal(want) {
		t.Errorf("RFC 3339 input should normalize to midnight, got %v", day)
	}

	if _, err := ParseDay("20/06/2025"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 9*time.Hour+30*time.Minute {
		t.Errorf("expected 9h30m, got %v", d)
	}

	if _, err := ParseClock("9.30am"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestNewStats(t *testing.T) {
	s := NewStats(4, 1, 1, 1, 1)
	if s.CompletionRate != "25.00" {
		t.Errorf("expected 25.00, got %s", s.CompletionRate)
	}

	s = NewStats(0, 0, 0, 0, 0)
	if s.CompletionRate != "0.00" {
		t.Errorf("expected 0.00 for empty stats, got %s", s.CompletionRate)
	}

	s = NewStats(3, 0, 0, 1, 2)
	if s.CompletionRate != "33.33" {
		t.Errorf("expected 33.33, got %s", s.CompletionRate)
	}
}

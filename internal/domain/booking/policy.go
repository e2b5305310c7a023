package booking

import (
	"time"

	"github.com/Sunil4510/smart-appointment-booking-system/pkg/apperr"
)

// Temporal booking rules. All comparisons run in UTC against an injected
// clock so boundaries are testable.
const (
	// MinLeadTime is the minimum gap between booking and slot start.
	MinLeadTime = time.Hour
	// CancelCutoff is the minimum gap between cancellation and slot start.
	CancelCutoff = 24 * time.Hour
	// BookingHorizonDays bounds how far ahead slots may be browsed for
	// booking a service.
	BookingHorizonDays = 90
	// DefaultSlotMinutes is the slot length used when generation does not
	// specify one.
	DefaultSlotMinutes = 60
)

// CanBook reports whether a slot starting at slotStart may still be
// booked at instant now. The slot must start at least MinLeadTime in
// the future; exactly MinLeadTime ahead is still allowed.
func CanBook(slotStart, now time.Time) bool {
	return !slotStart.Before(now.Add(MinLeadTime))
}

// CanCancel reports whether an appointment on a slot starting at
// slotStart may be cancelled at instant now. Exactly CancelCutoff ahead
// is still allowed.
func CanCancel(slotStart, now time.Time) bool {
	return slotStart.Sub(now) >= CancelCutoff
}

// WithinHorizon reports whether day is no further out than the booking
// horizon. The day exactly BookingHorizonDays ahead is allowed.
func WithinHorizon(day, now time.Time) bool {
	return !day.After(now.AddDate(0, 0, BookingHorizonDays))
}

// ParseDay parses a calendar date, accepting "2006-01-02" or RFC 3339,
// and normalizes it to UTC midnight.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperr.Validation("Invalid date format")
}

// Today returns UTC midnight of the given instant.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseClock parses an "HH:MM" wall-clock time into its offset from
// midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, apperr.Validation("Invalid time format, expected HH:MM")
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

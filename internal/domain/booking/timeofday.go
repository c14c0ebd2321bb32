package booking

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock "HH:MM" value on a booking's calendar date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Before returns true if t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// On anchors the time of day to the given calendar date in UTC.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}

// String formats the value as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Back-to-back windows where one end equals the other start do
// not overlap.
func Overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// NormalizeDate truncates a timestamp to its calendar date at midnight UTC.
func NormalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Package clock provides wall-clock and calendar value types for the
// scheduling domain: a time of day with no date attached, and a calendar
// date with no timezone. Both parse from and render to the formats the
// API uses ("HH:MM" and "YYYY-MM-DD").
package clock

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time, stored as minutes since midnight.
// The zero value is 00:00.
type TimeOfDay int

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// NewTimeOfDay validates hour and minute ranges.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses "HH:MM". Single-digit components are tolerated
// ("9:5" parses as 09:05); out-of-range values are rejected.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(hour, minute)
}

// MustTimeOfDay is for constants and tests.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Add returns t shifted by the given number of minutes and reports
// whether the result still falls within the same day.
func (t TimeOfDay) Add(minutes int) (TimeOfDay, bool) {
	v := int(t) + minutes
	if v < 0 || v > 24*60 {
		return 0, false
	}
	return TimeOfDay(v), true
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t > other }

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

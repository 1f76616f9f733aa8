package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat reports a time-of-day string that is not a valid
// 24-hour "HH:MM" value.
var ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM")

// DueInstant combines a calendar date with a "HH:MM" time of day into one
// absolute instant. Seconds and fractions are zeroed. The instant resolves
// in the date's location; no timezone conversion happens here, so the
// result is whatever the host's wall clock says for that day.
func DueInstant(date time.Time, timeOfDay string) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// ParseTimeOfDay splits a "HH:MM" string into hour and minute, rejecting
// anything but two integers with hour in [0,23] and minute in [0,59].
func ParseTimeOfDay(raw string) (int, int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTimeFormat, raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTimeFormat, raw)
	}
	return hour, minute, nil
}

package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestDueInstantValid(t *testing.T) {
	t.Parallel()
	date := time.Date(2024, time.January, 1, 9, 41, 27, 500, time.Local)

	tests := []struct {
		name      string
		timeOfDay string
		hour      int
		minute    int
	}{
		{name: "afternoon", timeOfDay: "14:00", hour: 14, minute: 0},
		{name: "midnight", timeOfDay: "00:00", hour: 0, minute: 0},
		{name: "end of day", timeOfDay: "23:59", hour: 23, minute: 59},
		{name: "single digit hour", timeOfDay: "7:05", hour: 7, minute: 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := DueInstant(date, tt.timeOfDay)
			if err != nil {
				t.Fatalf("DueInstant(%q) error: %v", tt.timeOfDay, err)
			}
			if got.Year() != 2024 || got.Month() != time.January || got.Day() != 1 {
				t.Fatalf("date changed: %v", got)
			}
			if got.Hour() != tt.hour || got.Minute() != tt.minute {
				t.Fatalf("time = %02d:%02d, want %02d:%02d", got.Hour(), got.Minute(), tt.hour, tt.minute)
			}
			if got.Second() != 0 || got.Nanosecond() != 0 {
				t.Fatalf("seconds not zeroed: %v", got)
			}
		})
	}
}

func TestDueInstantInvalid(t *testing.T) {
	t.Parallel()
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)

	for _, raw := range []string{"", "14", "14:00:00", "24:00", "-1:30", "12:60", "ab:cd", "12:", ":30"} {
		if _, err := DueInstant(date, raw); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("DueInstant(%q) = %v, want ErrInvalidTimeFormat", raw, err)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()
	h, m, err := ParseTimeOfDay("23:15")
	if err != nil {
		t.Fatalf("ParseTimeOfDay error: %v", err)
	}
	if h != 23 || m != 15 {
		t.Fatalf("unexpected result: %d:%d", h, m)
	}
}

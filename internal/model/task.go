package model

import "time"

// Task statuses.
const (
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
)

// Recurrence values. Declared on the entity; the scheduling engine does
// not consume them (see DESIGN.md).
const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// Task represents a single item in the planner. DueDate carries the
// calendar day; TimeOfDay is a 24-hour "HH:MM" string. Reminders holds
// minutes-before-due offsets for extra notifications.
type Task struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	Description string
	DueDate     time.Time
	TimeOfDay   string
	Reminders   []int  `gorm:"serializer:json"`
	Recurrence  string `gorm:"default:none"`
	Status      string `gorm:"default:incomplete"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidRecurrence reports whether v is one of the declared recurrence values.
func ValidRecurrence(v string) bool {
	switch v {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

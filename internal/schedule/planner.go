package schedule

import (
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
)

const dueInstantFormat = "Mon, 02 Jan 2006 15:04"

// FireEvent is one planned notification: who to tell, when, and what to say.
// Events are transient scheduling units; they are never persisted.
type FireEvent struct {
	ID        string
	TaskID    string
	Recipient string
	FireAt    time.Time
	Label     string
	Subject   string
	HTMLBody  string
}

// Delay reports how long from now until the event should fire. Instants
// already in the past clamp to zero so the event fires immediately instead
// of being dropped.
func (e FireEvent) Delay(now time.Time) time.Duration {
	d := e.FireAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// PlanInput carries the slice of a task the planner needs.
type PlanInput struct {
	TaskID      string
	Recipient   string
	Description string
	DueAt       time.Time
	Offsets     []int // minutes before due, non-negative
}

// Plan expands a task into its full fire-event set: one event per offset,
// in the order the offsets were given, then the due event. Each event's
// instant is DueAt minus the offset in minutes. Offsets are not
// deduplicated; a repeated value yields two identical events and
// eventually two notifications.
func Plan(in PlanInput) []FireEvent {
	events := make([]FireEvent, 0, len(in.Offsets)+1)
	for _, m := range in.Offsets {
		events = append(events, FireEvent{
			ID:        uuid.New().String(),
			TaskID:    in.TaskID,
			Recipient: in.Recipient,
			FireAt:    in.DueAt.Add(-time.Duration(m) * time.Minute),
			Label:     fmt.Sprintf("pre-reminder(%d minutes)", m),
			Subject:   fmt.Sprintf("%s due in %d min", in.Description, m),
			HTMLBody:  reminderBody(fmt.Sprintf("Your task is due in %d minutes:", m), in.Description, in.DueAt),
		})
	}
	events = append(events, FireEvent{
		ID:        uuid.New().String(),
		TaskID:    in.TaskID,
		Recipient: in.Recipient,
		FireAt:    in.DueAt,
		Label:     "due",
		Subject:   fmt.Sprintf("%s Pending", in.Description),
		HTMLBody:  reminderBody("Your task is due now:", in.Description, in.DueAt),
	})
	return events
}

func reminderBody(whenText, description string, dueAt time.Time) string {
	return fmt.Sprintf(`<html><body>
<h2>Task Reminder</h2>
<p>%s</p>
<p><strong>%s</strong></p>
<p>Scheduled for %s</p>
</body></html>`, whenText, html.EscapeString(description), dueAt.Format(dueInstantFormat))
}

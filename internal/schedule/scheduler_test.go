package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// captureDispatcher records sends and reports each on a channel. Sends
// to failFor recipients return an error.
type captureDispatcher struct {
	mu      sync.Mutex
	sent    []string // subjects in dispatch order
	failFor string

	ch chan string
}

func newCaptureDispatcher() *captureDispatcher {
	return &captureDispatcher{ch: make(chan string, 16)}
}

func (d *captureDispatcher) Send(_ context.Context, recipient, subject, _ string) error {
	d.mu.Lock()
	d.sent = append(d.sent, subject)
	d.mu.Unlock()
	d.ch <- subject
	if recipient == d.failFor {
		return errors.New("transport down")
	}
	return nil
}

func (d *captureDispatcher) wait(t *testing.T) string {
	t.Helper()
	select {
	case s := <-d.ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch")
		return ""
	}
}

func (d *captureDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func testEvent(id, taskID, recipient string, fireAt time.Time) FireEvent {
	return FireEvent{
		ID:        id,
		TaskID:    taskID,
		Recipient: recipient,
		FireAt:    fireAt,
		Label:     "due",
		Subject:   "subject-" + id,
		HTMLBody:  "<html></html>",
	}
}

func TestArmFiresPastDueImmediately(t *testing.T) {
	t.Parallel()
	d := newCaptureDispatcher()
	s := NewScheduler(d, zerolog.Nop())
	defer s.Stop()

	// Five minutes past due at arm time.
	s.Arm(testEvent("e1", "t1", "a@example.com", time.Now().Add(-5*time.Minute)))

	start := time.Now()
	d.wait(t)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("past-due event took %v to fire", elapsed)
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after fire, want 0", s.Pending())
	}
}

func TestDispatchFailureDoesNotAffectSiblings(t *testing.T) {
	t.Parallel()
	d := newCaptureDispatcher()
	d.failFor = "broken@example.com"
	s := NewScheduler(d, zerolog.Nop())
	defer s.Stop()

	s.Arm(testEvent("bad", "t1", "broken@example.com", time.Now()))
	s.Arm(testEvent("good", "t2", "ok@example.com", time.Now().Add(50*time.Millisecond)))

	got := map[string]bool{}
	got[d.wait(t)] = true
	got[d.wait(t)] = true
	if !got["subject-bad"] || !got["subject-good"] {
		t.Fatalf("expected both dispatch attempts, got %v", got)
	}
}

func TestEmptyRecipientSkipsDispatch(t *testing.T) {
	t.Parallel()
	d := newCaptureDispatcher()
	s := NewScheduler(d, zerolog.Nop())
	defer s.Stop()

	s.Arm(testEvent("e1", "t1", "", time.Now()))

	time.Sleep(200 * time.Millisecond)
	if n := d.count(); n != 0 {
		t.Fatalf("dispatched %d times for empty recipient, want 0", n)
	}
	if s.Pending() != 0 {
		t.Fatalf("trigger not released, pending = %d", s.Pending())
	}
}

func TestCancelRetractsTrigger(t *testing.T) {
	t.Parallel()
	d := newCaptureDispatcher()
	s := NewScheduler(d, zerolog.Nop())
	defer s.Stop()

	s.Arm(testEvent("e1", "t1", "a@example.com", time.Now().Add(100*time.Millisecond)))
	if !s.Cancel("e1") {
		t.Fatal("Cancel returned false for pending trigger")
	}
	if s.Cancel("e1") {
		t.Fatal("Cancel returned true for already cancelled trigger")
	}

	time.Sleep(300 * time.Millisecond)
	if n := d.count(); n != 0 {
		t.Fatalf("cancelled trigger still dispatched %d times", n)
	}
}

func TestCancelTaskRetractsWholeSet(t *testing.T) {
	t.Parallel()
	d := newCaptureDispatcher()
	s := NewScheduler(d, zerolog.Nop())
	defer s.Stop()

	delay := 150 * time.Millisecond
	s.Arm(testEvent("e1", "t1", "a@example.com", time.Now().Add(delay)))
	s.Arm(testEvent("e2", "t1", "a@example.com", time.Now().Add(delay)))
	s.Arm(testEvent("e3", "t2", "a@example.com", time.Now().Add(delay)))

	if n := s.CancelTask("t1"); n != 2 {
		t.Fatalf("CancelTask cancelled %d triggers, want 2", n)
	}

	// Only the untouched task's event fires.
	if got := d.wait(t); got != "subject-e3" {
		t.Fatalf("got %q, want subject-e3", got)
	}
	time.Sleep(200 * time.Millisecond)
	if n := d.count(); n != 1 {
		t.Fatalf("dispatched %d times, want 1", n)
	}
}

// Re-arming after an edit: the old set is cancelled first, so only the
// fresh events fire.
func TestRearmAfterEditReplacesTriggers(t *testing.T) {
	t.Parallel()
	d := newCaptureDispatcher()
	s := NewScheduler(d, zerolog.Nop())
	defer s.Stop()

	s.Arm(testEvent("old", "t1", "a@example.com", time.Now().Add(100*time.Millisecond)))
	s.CancelTask("t1")
	s.Arm(testEvent("new", "t1", "a@example.com", time.Now().Add(100*time.Millisecond)))

	if got := d.wait(t); got != "subject-new" {
		t.Fatalf("got %q, want subject-new", got)
	}
	time.Sleep(200 * time.Millisecond)
	if n := d.count(); n != 1 {
		t.Fatalf("stale trigger fired too: %d dispatches", n)
	}
}

func TestStopCancelsEverything(t *testing.T) {
	t.Parallel()
	d := newCaptureDispatcher()
	s := NewScheduler(d, zerolog.Nop())

	for _, id := range []string{"e1", "e2", "e3"} {
		s.Arm(testEvent(id, "t-"+id, "a@example.com", time.Now().Add(150*time.Millisecond)))
	}
	if s.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", s.Pending())
	}
	s.Stop()
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after Stop, want 0", s.Pending())
	}

	time.Sleep(300 * time.Millisecond)
	if n := d.count(); n != 0 {
		t.Fatalf("%d triggers fired after Stop", n)
	}
}

package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher delivers one notification. Success means the message was
// handed to a transport; there is no delivery confirmation.
type Dispatcher interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// DispatcherFunc adapts a plain function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, recipient, subject, htmlBody string) error

func (f DispatcherFunc) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	return f(ctx, recipient, subject, htmlBody)
}

const dispatchTimeout = 30 * time.Second

// Scheduler owns the set of armed triggers, one timer per fire event.
// Each trigger fires independently on its own timer goroutine; one
// event's dispatch failure cannot cancel or delay another.
type Scheduler struct {
	dispatcher Dispatcher
	log        zerolog.Logger

	mu       sync.Mutex
	triggers map[string]*time.Timer // event ID -> armed timer
	byTask   map[string][]string    // task ID -> pending event IDs
}

func NewScheduler(dispatcher Dispatcher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: dispatcher,
		log:        log.With().Str("component", "scheduler").Logger(),
		triggers:   make(map[string]*time.Timer),
		byTask:     make(map[string][]string),
	}
}

// Arm schedules exactly one future dispatch of ev at its fire instant.
// Instants already in the past fire immediately. Arming never blocks.
func (s *Scheduler) Arm(ev FireEvent) {
	delay := ev.Delay(time.Now())

	s.mu.Lock()
	s.triggers[ev.ID] = time.AfterFunc(delay, func() { s.fire(ev) })
	s.byTask[ev.TaskID] = append(s.byTask[ev.TaskID], ev.ID)
	s.mu.Unlock()

	s.log.Debug().
		Str("task_id", ev.TaskID).
		Str("label", ev.Label).
		Dur("delay", delay).
		Msg("trigger armed")
}

// Cancel retracts a single armed trigger. It reports whether the trigger
// was still pending.
func (s *Scheduler) Cancel(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.triggers[eventID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.triggers, eventID)
	for taskID, ids := range s.byTask {
		s.byTask[taskID] = remove(ids, eventID)
		if len(s.byTask[taskID]) == 0 {
			delete(s.byTask, taskID)
		}
	}
	return true
}

// CancelTask retracts every pending trigger for a task and returns how
// many were cancelled. Used when a task is edited, completed or deleted
// so stale reminders do not fire alongside the fresh set.
func (s *Scheduler) CancelTask(taskID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byTask[taskID]
	for _, id := range ids {
		if timer, ok := s.triggers[id]; ok {
			timer.Stop()
			delete(s.triggers, id)
		}
	}
	delete(s.byTask, taskID)
	return len(ids)
}

// Pending returns the number of currently armed triggers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

// Stop cancels every armed trigger. Dispatches already in flight finish
// on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.triggers {
		timer.Stop()
		delete(s.triggers, id)
	}
	s.byTask = make(map[string][]string)
}

// fire runs on the trigger's timer goroutine. Failures stay here: they
// are logged and discarded, never retried and never escalated.
func (s *Scheduler) fire(ev FireEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("task_id", ev.TaskID).Msg("dispatch panicked")
		}
	}()

	s.forget(ev)

	if ev.Recipient == "" {
		s.log.Debug().Str("task_id", ev.TaskID).Str("label", ev.Label).Msg("no recipient, dispatch skipped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	if err := s.dispatcher.Send(ctx, ev.Recipient, ev.Subject, ev.HTMLBody); err != nil {
		s.log.Warn().Err(err).
			Str("task_id", ev.TaskID).
			Str("label", ev.Label).
			Str("recipient", ev.Recipient).
			Msg("dispatch failed")
		return
	}

	s.log.Info().
		Str("task_id", ev.TaskID).
		Str("label", ev.Label).
		Msg("reminder dispatched")
}

func (s *Scheduler) forget(ev FireEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.triggers, ev.ID)
	s.byTask[ev.TaskID] = remove(s.byTask[ev.TaskID], ev.ID)
	if len(s.byTask[ev.TaskID]) == 0 {
		delete(s.byTask, ev.TaskID)
	}
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

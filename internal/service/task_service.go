package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"task-reminder/internal/model"
	"task-reminder/internal/repository"
	"task-reminder/internal/schedule"
)

// ErrForbidden is returned when a task belongs to another user.
var ErrForbidden = errors.New("task belongs to another user")

// TaskInput represents data required to create or update a task.
type TaskInput struct {
	Description string
	DueDate     time.Time
	TimeOfDay   string
	Reminders   []int
	Recurrence  string
}

// TaskService wraps task business logic and keeps the scheduler in step
// with storage: every create or due-date edit re-plans the task's fire
// events, and edits cancel the previously armed set first so stale
// reminders do not fire alongside the fresh ones.
type TaskService struct {
	tasks     *repository.TaskRepository
	users     *repository.UserRepository
	scheduler *schedule.Scheduler
	log       zerolog.Logger
}

func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository, scheduler *schedule.Scheduler, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:     tasks,
		users:     users,
		scheduler: scheduler,
		log:       log.With().Str("component", "tasks").Logger(),
	}
}

func (s *TaskService) Create(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	dueAt, err := s.validate(&input)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Description: input.Description,
		DueDate:     input.DueDate,
		TimeOfDay:   input.TimeOfDay,
		Reminders:   input.Reminders,
		Recurrence:  input.Recurrence,
		Status:      model.StatusIncomplete,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.arm(task, user.Email, dueAt)
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, user *model.User, taskID string, input TaskInput) (*model.Task, error) {
	dueAt, err := s.validate(&input)
	if err != nil {
		return nil, err
	}

	task, err := s.owned(ctx, user, taskID)
	if err != nil {
		return nil, err
	}

	task.Description = input.Description
	task.DueDate = input.DueDate
	task.TimeOfDay = input.TimeOfDay
	task.Reminders = input.Reminders
	task.Recurrence = input.Recurrence
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	cancelled := s.scheduler.CancelTask(task.ID)
	s.log.Debug().Str("task_id", task.ID).Int("cancelled", cancelled).Msg("stale triggers retracted on edit")
	s.arm(task, user.Email, dueAt)
	return task, nil
}

func (s *TaskService) Complete(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	task, err := s.owned(ctx, user, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = model.StatusCompleted
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.scheduler.CancelTask(task.ID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, user *model.User, taskID string) error {
	task, err := s.owned(ctx, user, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}
	s.scheduler.CancelTask(task.ID)
	return nil
}

func (s *TaskService) Get(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	return s.owned(ctx, user, taskID)
}

func (s *TaskService) List(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.tasks.ListByUser(ctx, user.ID)
}

// RearmPending re-plans every incomplete task at process start and arms
// the events whose instants still lie in the future. Instants missed
// while the process was down are not fired retroactively. Returns the
// number of triggers armed.
func (s *TaskService) RearmPending(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.tasks.ListIncomplete(ctx)
	if err != nil {
		return 0, err
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	armed := 0
	for _, task := range tasks {
		dueAt, err := schedule.DueInstant(task.DueDate, task.TimeOfDay)
		if err != nil {
			s.log.Warn().Err(err).Str("task_id", task.ID).Msg("skipping task with bad time of day")
			continue
		}
		events := schedule.Plan(schedule.PlanInput{
			TaskID:      task.ID,
			Recipient:   emails[task.UserID],
			Description: task.Description,
			DueAt:       dueAt,
			Offsets:     task.Reminders,
		})
		for _, ev := range events {
			if !ev.FireAt.After(now) {
				continue
			}
			s.scheduler.Arm(ev)
			armed++
		}
	}
	return armed, nil
}

// validate normalizes input and computes the due instant. It fails before
// anything is persisted or armed.
func (s *TaskService) validate(input *TaskInput) (time.Time, error) {
	if input.Description == "" {
		return time.Time{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if input.DueDate.IsZero() {
		return time.Time{}, fmt.Errorf("%w: due date is required", ErrInvalidInput)
	}
	for _, m := range input.Reminders {
		if m < 0 {
			return time.Time{}, fmt.Errorf("%w: reminder offsets must be non-negative", ErrInvalidInput)
		}
	}
	if input.Recurrence == "" {
		input.Recurrence = model.RecurrenceNone
	}
	if !model.ValidRecurrence(input.Recurrence) {
		return time.Time{}, fmt.Errorf("%w: unknown recurrence %q", ErrInvalidInput, input.Recurrence)
	}
	return schedule.DueInstant(input.DueDate, input.TimeOfDay)
}

func (s *TaskService) arm(task *model.Task, email string, dueAt time.Time) {
	events := schedule.Plan(schedule.PlanInput{
		TaskID:      task.ID,
		Recipient:   email,
		Description: task.Description,
		DueAt:       dueAt,
		Offsets:     task.Reminders,
	})
	for _, ev := range events {
		s.scheduler.Arm(ev)
	}
}

func (s *TaskService) owned(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != user.ID {
		return nil, ErrForbidden
	}
	return task, nil
}

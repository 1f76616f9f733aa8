package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"task-reminder/internal/model"
	"task-reminder/internal/repository"
	"task-reminder/internal/schedule"
)

// DigestService mails each user a daily summary of their open tasks at a
// configured time of day. Independent of the per-task triggers: the
// digest reads storage fresh on every run.
type DigestService struct {
	users *repository.UserRepository
	tasks *repository.TaskRepository
	mail  schedule.Dispatcher
	cron  *cron.Cron
	log   zerolog.Logger
}

func NewDigestService(users *repository.UserRepository, tasks *repository.TaskRepository, mail schedule.Dispatcher, log zerolog.Logger) *DigestService {
	return &DigestService{
		users: users,
		tasks: tasks,
		mail:  mail,
		log:   log.With().Str("component", "digest").Logger(),
	}
}

// Start registers the daily job at the given "HH:MM" local time.
func (s *DigestService) Start(timeOfDay string) error {
	hour, minute, err := schedule.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return err
	}

	s.cron = cron.New(cron.WithLocation(time.Local), cron.WithSeconds())
	spec := fmt.Sprintf("0 %d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.RunOnce(ctx, time.Now()); err != nil {
			s.log.Warn().Err(err).Msg("digest run failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *DigestService) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce builds and mails one digest per user with open tasks. Failures
// for one user do not stop the rest.
func (s *DigestService) RunOnce(ctx context.Context, now time.Time) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		tasks, err := s.tasks.ListIncompleteByUser(ctx, user.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("digest query failed")
			continue
		}
		body, ok := buildDigest(tasks, now)
		if !ok {
			continue
		}
		if err := s.mail.Send(ctx, user.Email, "Your Daily Task Digest", body); err != nil {
			s.log.Warn().Err(err).Str("email", user.Email).Msg("digest mail failed")
		}
	}
	return nil
}

// buildDigest renders the HTML summary. The second return is false when
// the user has nothing open and no mail should be sent.
func buildDigest(tasks []model.Task, now time.Time) (string, bool) {
	if len(tasks) == 0 {
		return "", false
	}

	type entry struct {
		task  model.Task
		dueAt time.Time
	}
	entries := make([]entry, 0, len(tasks))
	for _, t := range tasks {
		dueAt, err := schedule.DueInstant(t.DueDate, t.TimeOfDay)
		if err != nil {
			dueAt = t.DueDate
		}
		entries = append(entries, entry{task: t, dueAt: dueAt})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].dueAt.Before(entries[j].dueAt)
	})

	var b strings.Builder
	b.WriteString("<html><body>\n<h2>Your open tasks</h2>\n<ul>\n")
	for _, e := range entries {
		marker := ""
		if e.dueAt.Before(now) {
			marker = " <strong>(overdue)</strong>"
		}
		fmt.Fprintf(&b, "<li>%s — due %s%s</li>\n",
			html.EscapeString(e.task.Description),
			e.dueAt.Format("Mon, 02 Jan 2006 15:04"),
			marker)
	}
	b.WriteString("</ul>\n<p>Best Regards,</p>\n<p>Task Manager Team</p>\n</body></html>")
	return b.String(), true
}

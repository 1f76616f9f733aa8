package notifier

import (
	"context"
	"errors"

	"task-reminder/internal/schedule"
)

// Multi fans one notification out to every configured transport. All
// transports are attempted; errors are joined so one failing channel
// does not hide the others.
type Multi []schedule.Dispatcher

func (m Multi) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	var errs []error
	for _, d := range m {
		if err := d.Send(ctx, recipient, subject, htmlBody); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

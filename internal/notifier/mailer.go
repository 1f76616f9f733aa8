// Package notifier provides the notification transports behind the
// engine's Dispatcher interface: SMTP mail as the primary channel, an
// optional Telegram ping, and a fan-out combining them.
package notifier

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"github.com/rs/zerolog"

	"task-reminder/internal/config"
)

// Mailer sends HTML mail over SMTP with plain auth.
type Mailer struct {
	cfg config.SMTP
	log zerolog.Logger
}

func NewMailer(cfg config.SMTP, log zerolog.Logger) *Mailer {
	return &Mailer{
		cfg: cfg,
		log: log.With().Str("component", "mailer").Logger(),
	}
}

func (m *Mailer) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.cfg.Host == "" || m.cfg.Username == "" {
		return fmt.Errorf("smtp transport not configured")
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	from := m.cfg.Username

	msg := "From: " + m.cfg.SenderName + " <" + from + ">\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		htmlBody

	if err := smtp.SendMail(addr, auth, from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	m.log.Debug().Str("to", recipient).Str("subject", subject).Msg("mail sent")
	return nil
}

package notifier

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"task-reminder/internal/model"
	"task-reminder/internal/repository"
)

// ChatResolver maps a recipient email to the account that may have a
// Telegram chat linked. Satisfied by repository.UserRepository.
type ChatResolver interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Telegram pings a user's linked chat in addition to mail. Users without
// a linked chat are skipped silently; the channel is strictly secondary.
type Telegram struct {
	api   *tgbotapi.BotAPI
	users ChatResolver
	log   zerolog.Logger
}

func NewTelegram(token string, users ChatResolver, log zerolog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{
		api:   api,
		users: users,
		log:   log.With().Str("component", "telegram").Logger(),
	}, nil
}

func (t *Telegram) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	user, err := t.users.FindByEmail(ctx, recipient)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resolve chat: %w", err)
	}
	if user.TelegramChatID == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, subject)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	t.log.Debug().Int64("chat_id", user.TelegramChatID).Str("subject", subject).Msg("telegram ping sent")
	return nil
}

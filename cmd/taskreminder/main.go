package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"task-reminder/internal/config"
	"task-reminder/internal/httpapi"
	"task-reminder/internal/notifier"
	"task-reminder/internal/repository"
	"task-reminder/internal/schedule"
	"task-reminder/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}

	log := newLogger(cfg.LogLevel)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	mailer := notifier.NewMailer(cfg.SMTP, log)
	dispatcher := notifier.Multi{mailer}
	if cfg.TelegramToken != "" {
		tg, err := notifier.NewTelegram(cfg.TelegramToken, userRepo, log)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram")
		}
		dispatcher = append(dispatcher, tg)
	}

	scheduler := schedule.NewScheduler(dispatcher, log)
	defer scheduler.Stop()

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(userRepo, mailer, cfg.OTPTTL, log)
	taskSvc := service.NewTaskService(taskRepo, userRepo, scheduler, log)

	armed, err := taskSvc.RearmPending(ctx, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("rearm pending tasks")
	}
	log.Info().Int("triggers", armed).Msg("pending reminders re-armed")

	if cfg.DigestAt != "" {
		digest := service.NewDigestService(userRepo, taskRepo, mailer, log)
		if err := digest.Start(cfg.DigestAt); err != nil {
			log.Fatal().Err(err).Msg("start digest")
		}
		defer digest.Stop()
	}

	srv := httpapi.New(tokens, authSvc, taskSvc, userRepo, log)
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("shutdown complete")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

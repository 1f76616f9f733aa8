package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string

	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration

	SMTP SMTP

	// Optional Telegram ping channel. Empty token disables it.
	TelegramToken string

	// Time of day ("HH:MM") for the daily digest email. Empty disables it.
	DigestAt string
}

// SMTP holds mail transport credentials.
type SMTP struct {
	Host       string
	Port       string
	Username   string
	Password   string
	SenderName string
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          strings.TrimSpace(os.Getenv("ADDR")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:      strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:      parseDuration(os.Getenv("TOKEN_TTL"), time.Hour),
		OTPTTL:        parseDuration(os.Getenv("OTP_TTL"), 5*time.Minute),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DigestAt:      strings.TrimSpace(os.Getenv("DIGEST_AT")),
		SMTP: SMTP{
			Host:       strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:       strings.TrimSpace(os.Getenv("SMTP_PORT")),
			Username:   strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
			Password:   strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
			SenderName: strings.TrimSpace(os.Getenv("SENDER_NAME")),
		},
	}

	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "task_reminder.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SMTP.Port == "" {
		cfg.SMTP.Port = "587"
	}
	if cfg.SMTP.SenderName == "" {
		cfg.SMTP.SenderName = "TaskManager"
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

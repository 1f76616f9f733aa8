package model

import "time"

// User is a registered account. Passwords are stored as bcrypt hashes.
type User struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Email          string `gorm:"uniqueIndex"`
	PasswordHash   string
	IsVerified     bool   `gorm:"default:false"`
	OTP            string // empty when no code is outstanding
	OTPExpiresAt   *time.Time
	TelegramChatID int64 // optional secondary notification channel, 0 = not linked
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-reminder/internal/model"
	"task-reminder/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// One shared in-memory database per test; without cache=shared every
	// pooled connection would see its own empty database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type sentMail struct {
	Recipient string
	Subject   string
	Body      string
}

// fakeMail collects dispatched notifications in memory.
type fakeMail struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMail) Send(_ context.Context, recipient, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{Recipient: recipient, Subject: subject, Body: htmlBody})
	return nil
}

func (f *fakeMail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMail) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

func seedUser(t *testing.T, users *repository.UserRepository, email string, verified bool) *model.User {
	t.Helper()
	user := &model.User{
		ID:         "user-" + email,
		Name:       "Test User",
		Email:      email,
		IsVerified: verified,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

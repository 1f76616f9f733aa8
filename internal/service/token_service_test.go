package service

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != "user-123" {
		t.Fatalf("subject = %q, want user-123", got)
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	t.Parallel()
	svc := NewTokenService("test-secret", time.Hour)
	if _, err := svc.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()
	token, err := NewTokenService("secret-a", time.Hour).Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := NewTokenService("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	t.Parallel()
	svc := NewTokenService("test-secret", -time.Minute)
	token, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"task-reminder/internal/model"
	"task-reminder/internal/repository"
	"task-reminder/internal/schedule"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account not verified")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired")
	ErrRateLimited        = errors.New("too many otp requests")
	ErrInvalidInput       = errors.New("invalid input")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 4

// AuthService implements signup with one-time-code verification, login
// and password reset. Verification codes travel by mail through the same
// dispatcher interface the scheduler uses.
type AuthService struct {
	users  *repository.UserRepository
	mail   schedule.Dispatcher
	otpTTL time.Duration
	log    zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // per-email resend throttle
}

func NewAuthService(users *repository.UserRepository, mail schedule.Dispatcher, otpTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		mail:     mail,
		otpTTL:   otpTTL,
		log:      log.With().Str("component", "auth").Logger(),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Signup registers a new unverified account and mails a 6-digit code.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	otp := generateOTP()
	expires := time.Now().Add(s.otpTTL)
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		OTP:          otp,
		OTPExpiresAt: &expires,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mail.Send(ctx, email, "Welcome to Task Manager", otpBody(name, otp, s.otpTTL)); err != nil {
		return nil, fmt.Errorf("send otp mail: %w", err)
	}
	return user, nil
}

// VerifyOTP checks the code, marks the account verified and clears the
// outstanding code.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*model.User, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user.OTP == "" || user.OTP != strings.TrimSpace(code) {
		return nil, ErrInvalidOTP
	}
	if user.OTPExpiresAt != nil && time.Now().After(*user.OTPExpiresAt) {
		return nil, ErrOTPExpired
	}

	user.OTP = ""
	user.OTPExpiresAt = nil
	user.IsVerified = true
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendOTP issues a fresh code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if !s.limiter(user.Email).Allow() {
		return ErrRateLimited
	}

	otp := generateOTP()
	expires := time.Now().Add(s.otpTTL)
	user.OTP = otp
	user.OTPExpiresAt = &expires
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	if err := s.mail.Send(ctx, user.Email, "Your OTP Code", otpBody(user.Name, otp, s.otpTTL)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// Login checks credentials for a verified account. A login alert mail is
// sent in the background; its outcome never affects the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	go func() {
		mailCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mail.Send(mailCtx, user.Email, "Login Alert - Task Manager", loginAlertBody(user.Name)); err != nil {
			s.log.Warn().Err(err).Str("email", user.Email).Msg("login alert mail failed")
		}
	}()

	return user, nil
}

// ResetPassword sets a new password for a verified account.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return ErrNotVerified
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Save(ctx, user)
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.users.FindByEmail(ctx, email)
}

func (s *AuthService) limiter(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[email]
	if !ok {
		l = rate.NewLimiter(rate.Every(30*time.Second), 2)
		s.limiters[email] = l
	}
	return l
}

func generateOTP() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

func otpBody(name, otp string, ttl time.Duration) string {
	return fmt.Sprintf(`<html><body>
<h2>Hello, %s!</h2>
<p>Your OTP code is: <strong>%s</strong></p>
<p>This code is valid for the next %d minutes. If you didn't request this, please ignore this email.</p>
<p>Best Regards,</p>
<p>Task Manager Team</p>
</body></html>`, html.EscapeString(name), otp, int(ttl.Minutes()))
}

func loginAlertBody(name string) string {
	return fmt.Sprintf(`<html><body>
<h2>Hello, %s!</h2>
<p>You have successfully logged into your Task Manager account.</p>
<p>If this was not you, please reset your password immediately.</p>
<p>Best Regards,</p>
<p>Task Manager Team</p>
</body></html>`, html.EscapeString(name))
}

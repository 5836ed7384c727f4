package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/crackit-game/crackit/internal/server/storage"
	"github.com/crackit-game/crackit/internal/shared"
	"github.com/crackit-game/crackit/pkg/models"
	"github.com/crackit-game/crackit/pkg/utils"
)

type AuthService struct {
	userRepo     storage.UserRepository
	emailService *EmailService
}

func NewAuthService(userRepo storage.UserRepository, emailService *EmailService) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// Register creates a new user with zeroed counters and no login code.
// The username becomes the document key and cannot change afterwards.
func (s *AuthService) Register(ctx context.Context, username, email, backupEmail string) (*models.User, error) {
	if !utils.IsValidUsername(username) {
		return nil, fmt.Errorf("%w: username must be at least 5 word characters", shared.ErrValidation)
	}
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", shared.ErrValidation)
	}
	if backupEmail != "" && !utils.IsValidEmail(backupEmail) {
		return nil, fmt.Errorf("%w: invalid backup email format", shared.ErrValidation)
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		BackupEmail: backupEmail,
		Tries:       0,
		Won:         0,
		WonLevel:    []string{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Welcome email is best-effort; registration is already durable.
	go func() {
		if err := s.emailService.SendWelcomeEmail(email, username); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", username, err)
		}
	}()

	return user, nil
}

// RequestCode issues a fresh 6-digit login code, replacing whatever code
// was active before, and dispatches it to the user's email address. The
// email send runs detached: a notifier failure is logged, never surfaced,
// and never rolls the issued code back.
func (s *AuthService) RequestCode(ctx context.Context, username string) (int, error) {
	user, err := s.userRepo.Get(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, shared.ErrNotFound
	}

	code, err := utils.GenerateLoginCode()
	if err != nil {
		return 0, fmt.Errorf("failed to generate code: %w", err)
	}

	expirationSec := codeExpirationSeconds()
	if err := s.userRepo.SetCode(ctx, username, code, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to save login code: %w", err)
	}

	go func() {
		if err := s.emailService.SendLoginCode(user.Email, username, code); err != nil {
			log.Printf("Failed to send login code to %s: %v", username, err)
		}
	}()

	return expirationSec, nil
}

// VerifyCode checks the submitted code and, on success, invalidates it and
// establishes the session. Order of checks is contractual: malformed code,
// then expiry, then equality — an expired-but-correct code must fail with
// ErrCodeExpired, not ErrInvalidCode.
func (s *AuthService) VerifyCode(ctx context.Context, username, code string) (*models.Session, string, time.Time, error) {
	if !utils.IsValidLoginCode(code) {
		return nil, "", time.Time{}, shared.ErrInvalidCode
	}

	user, err := s.userRepo.Get(ctx, username)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, "", time.Time{}, shared.ErrNotFound
	}

	if user.Code == "" || user.CodeCreatedAt == nil {
		return nil, "", time.Time{}, shared.ErrInvalidCode
	}

	validity := time.Duration(codeExpirationSeconds()) * time.Second
	if time.Since(*user.CodeCreatedAt) > validity {
		// Expired codes are dead on first contact, correct or not.
		if err := s.userRepo.ClearCode(ctx, username); err != nil {
			log.Printf("Failed to clear expired code for %s: %v", username, err)
		}
		return nil, "", time.Time{}, shared.ErrCodeExpired
	}

	if user.Code != code {
		return nil, "", time.Time{}, shared.ErrInvalidCode
	}

	// Single use: invalidate before handing out the session.
	if err := s.userRepo.ClearCode(ctx, username); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to invalidate code: %w", err)
	}

	now := time.Now().UTC()
	if err := s.userRepo.SetPresence(ctx, username, true, now); err != nil {
		log.Printf("Failed to mark %s online: %v", username, err)
	}

	token, expiresAt, err := s.generateToken(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user.Code = ""
	user.CodeCreatedAt = nil
	user.Online = true
	user.LastSeen = &now

	session := &models.Session{User: *user, LoggedIn: true}
	return session, token, expiresAt, nil
}

func (s *AuthService) Logout(ctx context.Context, username string) error {
	return s.userRepo.SetPresence(ctx, username, false, time.Now().UTC())
}

func (s *AuthService) generateToken(username string) (string, time.Time, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", time.Time{}, fmt.Errorf("JWT_SECRET not configured")
	}

	expirationStr := os.Getenv("JWT_EXPIRATION")
	if expirationStr == "" {
		expirationStr = "168h" // 7 days default
	}

	expiration, err := time.ParseDuration(expirationStr)
	if err != nil {
		expiration = 168 * time.Hour
	}

	token, err := utils.GenerateJWT(username, jwtSecret, expiration)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return token, time.Now().UTC().Add(expiration), nil
}

func codeExpirationSeconds() int {
	expirationSec := 300
	if envExp := os.Getenv("AUTH_CODE_EXPIRATION"); envExp != "" {
		if exp, err := strconv.Atoi(envExp); err == nil {
			expirationSec = exp
		}
	}
	return expirationSec
}

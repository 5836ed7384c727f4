package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/crackit-game/crackit/internal/server/storage"
	"github.com/crackit-game/crackit/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) (*AuthService, *storage.MemoryUserRepository) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")
	// Set for the whole process, not via t.Setenv: Register and RequestCode
	// send email in detached goroutines that may run after the test's env
	// cleanup, and the nil-client EmailService relies on this skip flag.
	os.Setenv("SKIP_EMAIL_SEND", "true")

	userRepo := storage.NewMemoryUserRepository()

	// EmailService with nil client - SKIP_EMAIL_SEND prevents actual sending
	emailService := &EmailService{}

	return NewAuthService(userRepo, emailService), userRepo
}

func registerTestUser(t *testing.T, service *AuthService, username string) {
	t.Helper()
	_, err := service.Register(context.Background(), username, username+"@example.com", "")
	require.NoError(t, err)
}

func TestAuthService_Register(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "alice_01", "alice@example.com", "alice2@example.com")
	require.NoError(t, err)

	assert.Equal(t, "alice_01", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice2@example.com", user.BackupEmail)
	assert.Zero(t, user.Tries)
	assert.Zero(t, user.Won)
	assert.Empty(t, user.Code)
	assert.False(t, user.Online)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice_01", "alice@example.com", "")
	require.NoError(t, err)

	_, err = service.Register(ctx, "alice_01", "other@example.com", "")
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)
}

func TestAuthService_Register_Validation(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "bob", "bob@example.com", "")
	assert.ErrorIs(t, err, shared.ErrValidation, "short username must be rejected")

	_, err = service.Register(ctx, "valid_name", "not-an-email", "")
	assert.ErrorIs(t, err, shared.ErrValidation, "bad email must be rejected")
}

func TestAuthService_RequestCode_UnknownUser(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.RequestCode(context.Background(), "ghost_user")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthService_RequestCode_StoresCode(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	expiresIn, err := service.RequestCode(ctx, "alice_01")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	user, err := userRepo.Get(ctx, "alice_01")
	require.NoError(t, err)
	assert.Len(t, user.Code, 6)
	require.NotNil(t, user.CodeCreatedAt)
	assert.WithinDuration(t, time.Now().UTC(), *user.CodeCreatedAt, 5*time.Second)
}

func TestAuthService_RequestCode_LatestCodeWins(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	_, err := service.RequestCode(ctx, "alice_01")
	require.NoError(t, err)
	first, _ := userRepo.Get(ctx, "alice_01")

	_, err = service.RequestCode(ctx, "alice_01")
	require.NoError(t, err)
	second, _ := userRepo.Get(ctx, "alice_01")

	if first.Code == second.Code {
		t.Skip("generated the same code twice; nothing to assert")
	}

	_, _, _, err = service.VerifyCode(ctx, "alice_01", first.Code)
	assert.ErrorIs(t, err, shared.ErrInvalidCode, "only the latest code may verify")
}

func TestAuthService_VerifyCode_Success(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	_, err := service.RequestCode(ctx, "alice_01")
	require.NoError(t, err)
	stored, _ := userRepo.Get(ctx, "alice_01")

	session, token, expiresAt, err := service.VerifyCode(ctx, "alice_01", stored.Code)
	require.NoError(t, err)

	assert.True(t, session.LoggedIn)
	assert.Equal(t, "alice_01", session.User.Username)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	// Session must be established online with the code gone.
	user, _ := userRepo.Get(ctx, "alice_01")
	assert.True(t, user.Online)
	assert.Empty(t, user.Code)
	assert.Nil(t, user.CodeCreatedAt)
}

func TestAuthService_VerifyCode_SingleUse(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	_, err := service.RequestCode(ctx, "alice_01")
	require.NoError(t, err)
	stored, _ := userRepo.Get(ctx, "alice_01")

	_, _, _, err = service.VerifyCode(ctx, "alice_01", stored.Code)
	require.NoError(t, err)

	_, _, _, err = service.VerifyCode(ctx, "alice_01", stored.Code)
	assert.ErrorIs(t, err, shared.ErrInvalidCode, "a verified code must not verify twice")
}

func TestAuthService_VerifyCode_ExpiryBeforeEquality(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	// Correct code, but issued six minutes ago.
	require.NoError(t, userRepo.SetCode(ctx, "alice_01", "123456", time.Now().UTC().Add(-6*time.Minute)))

	_, _, _, err := service.VerifyCode(ctx, "alice_01", "123456")
	assert.ErrorIs(t, err, shared.ErrCodeExpired, "expired-but-correct must fail with ErrCodeExpired")

	// The expiry check already burned the code.
	user, _ := userRepo.Get(ctx, "alice_01")
	assert.Empty(t, user.Code)
}

func TestAuthService_VerifyCode_InsideWindow(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	require.NoError(t, userRepo.SetCode(ctx, "alice_01", "123456", time.Now().UTC().Add(-4*time.Minute-59*time.Second)))

	_, _, _, err := service.VerifyCode(ctx, "alice_01", "123456")
	assert.NoError(t, err, "code just inside the 5 minute window must verify")
}

func TestAuthService_VerifyCode_Mismatch(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	require.NoError(t, userRepo.SetCode(ctx, "alice_01", "123456", time.Now().UTC()))

	_, _, _, err := service.VerifyCode(ctx, "alice_01", "654321")
	assert.ErrorIs(t, err, shared.ErrInvalidCode)
}

func TestAuthService_VerifyCode_MalformedCode(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, _, _, err := service.VerifyCode(ctx, "alice_01", code)
		assert.ErrorIs(t, err, shared.ErrInvalidCode, "code %q", code)
	}
}

func TestAuthService_VerifyCode_UnknownUser(t *testing.T) {
	service, _ := setupAuthService(t)

	_, _, _, err := service.VerifyCode(context.Background(), "ghost_user", "123456")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	service, userRepo := setupAuthService(t)
	ctx := context.Background()
	registerTestUser(t, service, "alice_01")

	require.NoError(t, userRepo.SetPresence(ctx, "alice_01", true, time.Now().UTC()))
	require.NoError(t, service.Logout(ctx, "alice_01"))

	user, _ := userRepo.Get(ctx, "alice_01")
	assert.False(t, user.Online)
}

package user_services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/chat-gateway/internal/auth"
	"github.com/iyunix/chat-gateway/internal/database"
	"github.com/iyunix/chat-gateway/internal/repository/user"
	"github.com/iyunix/chat-gateway/internal/services"
)

const testSecret = "test-secret"

func newTestAuthService(t *testing.T) (*AuthService, user.UserRepository) {
	t.Helper()
	repo := user.NewGormUserRepository(database.OpenTest(t))
	return NewAuthService(repo, testSecret, 30*time.Minute, &services.NoOpLogger{}), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, created.IsAdmin)
	assert.NotEqual(t, "pw", created.Password)

	logged, token, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, logged.ID)
	assert.NotEmpty(t, token)

	authed, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", authed.Username)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "pw")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "pw")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejects(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired, err := auth.GenerateJWT(1, []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Valid signature, but the subject does not exist.
	ghost, err := auth.GenerateJWT(999, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ijazah/internal/auth/models"
	"ijazah/internal/auth/store"
	"ijazah/internal/jwttoken"
	"ijazah/pkg/domain"
	dErrors "ijazah/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *store.InMemoryStore) {
	t.Helper()
	users := store.NewInMemoryStore()
	tokens := jwttoken.NewService("test-signing-key", "ijazah", time.Hour)
	return NewService(users, tokens, time.Hour), users
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, err := svc.Register(ctx, "admin@ijazah.local", "Admin", "admin123", domain.RoleAdmin)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "admin@ijazah.local", Password: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "ADMIN", resp.Role)
}

func TestLogin_DoesNotLeakAccountExistence(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, "admin@ijazah.local", "Admin", "admin123", domain.RoleAdmin)
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, models.LoginRequest{Email: "admin@ijazah.local", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, models.LoginRequest{Email: "ghost@ijazah.local", Password: "nope"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.True(t, dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))
	assert.True(t, dErrors.HasCode(unknownEmail, dErrors.CodeUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@ijazah.local"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, "admin@ijazah.local", "Admin", "admin123", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "admin@ijazah.local", "Other", "other123", domain.RoleReviewer)
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "x@ijazah.local", "X", "secret", domain.Role("SUPERUSER"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestRegister_HashesPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t)

	user, err := svc.Register(ctx, "admin@ijazah.local", "Admin", "admin123", domain.RoleAdmin)
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", user.PasswordHash)

	stored, err := users.FindByEmail(ctx, "admin@ijazah.local")
	require.NoError(t, err)
	assert.NotContains(t, stored.PasswordHash, "admin123")
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, err := svc.Register(ctx, "reviewer@ijazah.local", "Reviewer", "reviewer123", domain.RoleReviewer)
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "reviewer@ijazah.local", profile.Email)
	assert.Equal(t, "REVIEWER", profile.Role)
}

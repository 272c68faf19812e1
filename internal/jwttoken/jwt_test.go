package jwttoken

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ijazah/pkg/domain"
	dErrors "ijazah/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "ijazah", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, domain.RoleReviewer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "REVIEWER", claims.Role)
}

func TestValidateToken_WrongKey(t *testing.T) {
	issuer := NewService("key-one", "ijazah", time.Hour)
	verifier := NewService("key-two", "ijazah", time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), domain.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	issuer := NewService("test-signing-key", "someone-else", time.Hour)
	verifier := NewService("test-signing-key", "ijazah", time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), domain.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewService("test-signing-key", "ijazah", -time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), domain.RoleStudent)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Tampered(t *testing.T) {
	svc := NewService("test-signing-key", "ijazah", time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), domain.RoleStudent)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = strings.Repeat("A", len(parts[1]))
	_, err = svc.ValidateToken(strings.Join(parts, "."))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

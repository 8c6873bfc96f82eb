package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateAndValidateTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(7, 1, "ana@example.com", RoleMember, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, 1, claims.GymID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, RoleMember, claims.Role)
	assert.Equal(t, "access", claims.TokenType)

	refreshClaims, err := ValidateToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	access, _, err := GenerateTokens(7, 1, "ana@example.com", RoleMember, testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(access, "other-secret")
	assert.Error(t, err)
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := GenerateAccessToken(7, 1, "ana@example.com", RoleMember, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = ValidateToken("whatever", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refresh, err := GenerateTokens(7, 1, "ana@example.com", RoleStaff, testSecret)
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)

	accessClaims, err := ValidateToken(newAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", accessClaims.TokenType)
	assert.Equal(t, RoleStaff, accessClaims.Role)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	access, _, err := GenerateTokens(7, 1, "ana@example.com", RoleMember, testSecret)
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(access, testSecret)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

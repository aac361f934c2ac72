package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medverse-server/internal/config"
	"medverse-server/internal/models"
)

func testUser() *models.User {
	user := &models.User{
		Email: "jane@example.com",
		Role:  models.RolePatient,
	}
	user.ID = "user-123"
	return user
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}

	token, err := GenerateToken(testUser(), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, models.RolePatient, claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}

	token, err := GenerateToken(testUser(), cfg)
	require.NoError(t, err)

	_, err = ValidateToken(token, "a-different-secret")
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	// A negative expiration produces an already-expired token.
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: -1}

	token, err := GenerateToken(testUser(), cfg)
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg.JWTSecret)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", "test-secret")
	assert.Error(t, err)
}

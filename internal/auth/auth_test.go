package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellegy/softia/internal/config"
)

func TestHashPassword(t *testing.T) {
	h := HashPassword("secreta")

	assert.Len(t, h, 64) // hex SHA-256
	assert.Equal(t, h, HashPassword("secreta"))
	assert.NotEqual(t, h, HashPassword("otra"))
}

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateJWT("session-123")
	require.NoError(t, err)

	sessionID, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", sessionID)
}

func TestValidateJWT_Garbage(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	token, err := GenerateJWT("session-123")
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "another-secret"
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	Init("unit-test-secret", 60)

	token, err := GenerateToken("4f9c3a2e-8d71-4e9b-9f51-0aa51f7de1cd", "admin")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "4f9c3a2e-8d71-4e9b-9f51-0aa51f7de1cd", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	Init("secret-one", 60)
	token, err := GenerateToken("user-id", "user")
	require.NoError(t, err)

	Init("secret-two", 60)
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	Init("unit-test-secret", 60)

	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3curePassw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "s3curePassw0rd", hash)

	assert.True(t, CheckPasswordHash("s3curePassw0rd", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough1"))
	assert.Error(t, ValidatePassword("short"))
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", "corretor", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken("secret", token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "corretor", claims.Role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", "corretor", time.Hour)
	assert.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", "corretor", -time.Minute)
	assert.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("senha123")
	assert.NoError(t, err)
	assert.NotEqual(t, "senha123", hash)
	assert.True(t, CheckPassword("senha123", hash))
	assert.False(t, CheckPassword("senha124", hash))

	// Hashes are salted, two hashes of the same password differ
	other, err := HashPassword("senha123")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

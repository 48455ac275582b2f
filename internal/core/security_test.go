// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("a perfectly fine password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	valid, err := VerifyPassword("a perfectly fine password", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("not that password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	first, err := HashPassword("same input")
	require.NoError(t, err)
	second, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "not-an-encoded-hash")
	assert.Error(t, err)
}

func TestVerifyPasswordTimingSafeMissingAccount(t *testing.T) {
	valid, newHash, err := VerifyPasswordTimingSafe("whatever", nil)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordTimingSafeExistingAccount(t *testing.T) {
	hash, err := HashPassword("the real password")
	require.NoError(t, err)

	valid, _, err := VerifyPasswordTimingSafe("the real password", &hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, _, err = VerifyPasswordTimingSafe("a guess", &hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for range 20 {
		otp, err := GenerateOTP()
		require.NoError(t, err)

		require.Len(t, otp, 6)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}
		seen[otp] = true
	}

	// 20 draws from a million values colliding down to one would mean
	// the generator is broken.
	assert.Greater(t, len(seen), 1)
}

func TestTokenHashRoundtrip(t *testing.T) {
	hash := HashToken("482913")

	assert.True(t, CompareTokenHash("482913", hash))
	assert.False(t, CompareTokenHash("482914", hash))
	assert.NotEqual(t, "482913", hash)
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

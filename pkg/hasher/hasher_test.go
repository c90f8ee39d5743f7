package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword([]byte("hunter2"))
	require.NoError(t, err)

	assert.True(t, PasswordCorrect("hunter2", hash))
	assert.False(t, PasswordCorrect("hunter3", hash))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
	// Url-safe and unpadded, so it can ride in flags and query strings as-is.
	assert.NotContains(t, a, "=")
	assert.NotContains(t, a, "/")
}

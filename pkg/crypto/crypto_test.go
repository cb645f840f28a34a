package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("user123")
	require.NoError(t, err)
	require.NotEqual(t, "user123", hash)

	require.True(t, VerifyPassword(hash, "user123"))
	require.False(t, VerifyPassword(hash, "user124"))
}

func TestGenerateTokenLengthAndUniqueness(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, a)

	b, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

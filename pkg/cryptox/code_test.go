package cryptox

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func TestGenerateNumericCode(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		code, err := GenerateNumericCode()
		require.NoError(t, err)
		require.Regexp(t, sixDigits, code)
		seen[code] = struct{}{}
	}
	// Codes within one time step still differ because every key is fresh.
	require.Greater(t, len(seen), 40)
}

func TestHashCode(t *testing.T) {
	hash, err := HashCode("123456")
	require.NoError(t, err)
	require.True(t, IsBcryptHash(hash))
	require.True(t, CompareCode("123456", hash))
	require.False(t, CompareCode("654321", hash))
}

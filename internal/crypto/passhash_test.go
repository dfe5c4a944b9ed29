package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	salt, err := RandBytes(SaltLen)
	require.NoError(t, err)
	require.Len(t, salt, SaltLen)

	h := HashPassword([]byte("correct horse"), salt)
	require.NotEmpty(t, h)

	require.True(t, VerifyPassword([]byte("correct horse"), salt, h))
	require.False(t, VerifyPassword([]byte("wrong horse"), salt, h))

	other, err := RandBytes(SaltLen)
	require.NoError(t, err)
	require.False(t, VerifyPassword([]byte("correct horse"), other, h), "different salt must not verify")
}

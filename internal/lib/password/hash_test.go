package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novashelf/novashelf/internal/lib/password"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := password.GetHash("secretpassword")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secretpassword", hash)

	assert.NoError(t, password.CompareHash(hash, "secretpassword"))
	assert.Error(t, password.CompareHash(hash, "wrongpassword"))
}

func TestGetHash_Salted(t *testing.T) {
	first, err := password.GetHash("secretpassword")
	require.NoError(t, err)
	second, err := password.GetHash("secretpassword")
	require.NoError(t, err)

	// bcrypt использует случайную соль, хэши не совпадают
	assert.NotEqual(t, first, second)
}

package otp_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novashelf/novashelf/internal/lib/otp"
)

func TestGenerate(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := otp.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateWithExpiry(t *testing.T) {
	before := time.Now()
	code, expiresAt, err := otp.GenerateWithExpiry()
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.WithinDuration(t, before.Add(otp.TTL), expiresAt, time.Second)
}

func TestValidate(t *testing.T) {
	code := "123456"
	other := "654321"
	padded := " 123456 "
	future := time.Now().Add(time.Minute)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name      string
		provided  string
		stored    *string
		expiresAt *time.Time
		want      bool
	}{
		{"valid code", code, &code, &future, true},
		{"wrong code", other, &code, &future, false},
		{"expired code", code, &code, &past, false},
		{"no stored code", code, nil, &future, false},
		{"no expiry", code, &code, nil, false},
		{"empty stored code", code, strPtr(""), &future, false},
		{"whitespace is not normalized", padded, &code, &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, otp.Validate(tt.provided, tt.stored, tt.expiresAt))
		})
	}
}

// Момент истечения считается просроченным.
func TestValidate_ExpiryInstant(t *testing.T) {
	code := "123456"
	now := time.Now()
	assert.False(t, otp.Validate(code, &code, &now))
}

func strPtr(s string) *string { return &s }

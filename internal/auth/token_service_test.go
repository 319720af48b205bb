package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	service := NewTokenService("test-secret", 30*time.Minute)

	token, err := service.Generate(42, "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestTokenService_Validate(t *testing.T) {
	service := NewTokenService("test-secret", 30*time.Minute)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "expired token",
			token: func(t *testing.T) string {
				expired := NewTokenService("test-secret", -time.Minute)
				token, err := expired.Generate(1, "a@x.com")
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewTokenService("other-secret", 30*time.Minute)
				token, err := other.Generate(1, "a@x.com")
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "tampered payload",
			token: func(t *testing.T) string {
				token, err := service.Generate(1, "a@x.com")
				require.NoError(t, err)
				return token[:len(token)-4] + "abcd"
			},
		},
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "not.a.token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.Validate(tt.token(t))
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)

		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

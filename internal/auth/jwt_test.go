package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	clock := testutil.NewClock()
	svc := testutil.CreateTestJWTService(clock)

	token, err := svc.GenerateToken(42, "claire@example.com", true)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "claire@example.com", claims.Email)
	assert.True(t, claims.Active)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_Expired(t *testing.T) {
	clock := testutil.NewClock()
	svc := testutil.CreateTestJWTService(clock)

	token, err := svc.GenerateToken(1, "a@example.com", true)
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	clock := testutil.NewClock()
	issuer := auth.NewJWTService("one-secret", time.Hour).WithClock(clock.Now)
	verifier := auth.NewJWTService("another-secret", time.Hour).WithClock(clock.Now)

	token, err := issuer.GenerateToken(1, "a@example.com", true)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_RejectsTamperedTokens(t *testing.T) {
	svc := auth.NewJWTService(testutil.TestJWTSecret, time.Hour)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key interface{}, claims auth.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	base := func() auth.Claims {
		return auth.Claims{
			UserID: 7,
			Email:  "a@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "hr-manager",
				Subject:   "7",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "garbage",
			token: "not-a-jwt",
		},
		{
			name:  "alg none",
			token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, base()),
		},
		{
			name:  "HS512",
			token: sign(jwt.SigningMethodHS512, []byte(testutil.TestJWTSecret), base()),
		},
		{
			name: "wrong issuer",
			token: func() string {
				c := base()
				c.Issuer = "someone-else"
				return sign(jwt.SigningMethodHS256, []byte(testutil.TestJWTSecret), c)
			}(),
		},
		{
			name: "no expiry",
			token: func() string {
				c := base()
				c.ExpiresAt = nil
				return sign(jwt.SigningMethodHS256, []byte(testutil.TestJWTSecret), c)
			}(),
		},
		{
			name: "subject mismatch",
			token: func() string {
				c := base()
				c.Subject = "8"
				return sign(jwt.SigningMethodHS256, []byte(testutil.TestJWTSecret), c)
			}(),
		},
		{
			name: "zero user id",
			token: func() string {
				c := base()
				c.UserID = 0
				c.Subject = "0"
				return sign(jwt.SigningMethodHS256, []byte(testutil.TestJWTSecret), c)
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

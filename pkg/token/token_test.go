package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	signed, exp, err := Issue("s3cret", AdminIssuer, "admin-1", "ops@uni.edu", time.Hour, now)
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	claims, err := Parse("s3cret", signed, jwt.WithIssuer(AdminIssuer))
	require.NoError(t, err)
	require.Equal(t, "admin-1", claims.Subject)
	require.Equal(t, "ops@uni.edu", claims.Email)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := Parse("other", signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := Parse("s3cret", signed, jwt.WithIssuer("supabase"))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old, _, err := Issue("s3cret", AdminIssuer, "admin-1", "", time.Minute, now.Add(-time.Hour))
		require.NoError(t, err)
		_, err = Parse("s3cret", old)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = Parse("s3cret", unsigned)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewClaims(jwtx.TokenRefresh, "acc-1", "ada", time.Hour, "gatehouse", nil, now)

	require.Equal(t, "acc-1", c.Subject)
	require.Equal(t, jwtx.TokenRefresh, c.Type)
	require.Equal(t, "gatehouse", c.Issuer)
	require.Empty(t, c.Audience)
	require.True(t, now.Add(time.Hour).Equal(c.ExpiresAt.Time))
	require.Len(t, c.ID, 36, "jti should be a UUID")

	other := jwtx.NewClaims(jwtx.TokenRefresh, "acc-1", "ada", time.Hour, "gatehouse", nil, now)
	require.NotEqual(t, c.ID, other.ID)
}

func TestClaimValidation(t *testing.T) {
	now := time.Now().UTC()

	t.Run("issuer", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "gatehouse"}}
		require.NoError(t, c.ValidateIssuer("gatehouse"))
		require.NoError(t, c.ValidateIssuer(""))
		require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
	})

	t.Run("audience", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"web", "mobile"}}}
		require.NoError(t, c.ValidateAudience([]string{"mobile"}))
		require.NoError(t, c.ValidateAudience(nil))
		require.ErrorIs(t, c.ValidateAudience([]string{"admin"}), jwtx.ErrAudience)
	})

	t.Run("type", func(t *testing.T) {
		c := &jwtx.Claims{Type: jwtx.TokenAccess}
		require.NoError(t, c.ValidateType(jwtx.TokenAccess))
		require.ErrorIs(t, c.ValidateType(jwtx.TokenRefresh), jwtx.ErrTokenType)
	})

	expiry := []struct {
		name   string
		claims jwt.RegisteredClaims
		leeway time.Duration
		want   error
	}{
		{"valid", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}, 0, nil},
		{"expired", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}, 0, jwtx.ErrExpired},
		{"not yet valid", jwt.RegisteredClaims{NotBefore: jwt.NewNumericDate(now.Add(time.Minute))}, 0, jwtx.ErrNotYetValid},
		{"within leeway", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second))}, 30 * time.Second, nil},
		{"beyond leeway", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-2 * time.Minute))}, 30 * time.Second, jwtx.ErrExpired},
		{"no exp or nbf", jwt.RegisteredClaims{}, 0, nil},
	}
	for _, tt := range expiry {
		t.Run("expiry "+tt.name, func(t *testing.T) {
			c := &jwtx.Claims{RegisteredClaims: tt.claims}
			err := c.ValidateExpiryWithLeeway(tt.leeway)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

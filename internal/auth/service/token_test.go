package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestGetAuthTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tokens := env.auth.Tokens
	acc := env.seedAccount(t, "ada")

	pair, err := tokens.GetAuthTokens(ctx, acc.ID)
	require.NoError(t, err)

	verifier := jwtx.NewVerifierHS256([]byte(testSecret), jwtx.VerifyOptions{Issuer: testIssuer})
	access, err := verifier.VerifyType(pair.AccessToken, jwtx.TokenAccess)
	require.NoError(t, err)
	require.Equal(t, acc.ID, access.Subject)
	require.Equal(t, "ada", access.Username)

	refresh, err := verifier.VerifyType(pair.RefreshToken, jwtx.TokenRefresh)
	require.NoError(t, err)
	require.NotEqual(t, access.ID, refresh.ID)
	require.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))

	stored, err := env.store.AuthTokens().FindAuthTokenPair(ctx, cryptox.FingerprintToken(pair.RefreshToken), acc.ID)
	require.NoError(t, err)
	require.Equal(t, cryptox.FingerprintToken(pair.AccessToken), stored.AccessFingerprint)

	_, err = tokens.GetAuthTokens(ctx, "missing")
	require.ErrorIs(t, err, ErrAccountNotFound)

	acc.IsActive = false
	_, err = env.store.Accounts().UpdateAccount(ctx, acc)
	require.NoError(t, err)
	_, err = tokens.GetAuthTokens(ctx, acc.ID)
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tokens := env.auth.Tokens
	acc := env.seedAccount(t, "ada")

	pair, err := tokens.GetAuthTokens(ctx, acc.ID)
	require.NoError(t, err)

	t.Run("non-string input", func(t *testing.T) {
		for _, raw := range []any{nil, 42, "", []byte("x")} {
			_, err := tokens.Refresh(ctx, raw)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "raw %v", raw)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := tokens.Refresh(ctx, "not.a.jwt")
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := tokens.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("unknown account", func(t *testing.T) {
		signer, err := jwtx.NewSignerHS256("test", []byte(testSecret))
		require.NoError(t, err)
		orphan, err := signer.Sign(jwtx.NewClaims(jwtx.TokenRefresh, "gone", "gone", time.Hour, testIssuer, nil, time.Now()))
		require.NoError(t, err)

		_, err = tokens.Refresh(ctx, orphan)
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("success keeps refresh token", func(t *testing.T) {
		got, err := tokens.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, pair.RefreshToken, got.RefreshToken)
		require.NotEqual(t, pair.AccessToken, got.AccessToken)

		stored, err := env.store.AuthTokens().FindAuthTokenPair(ctx, cryptox.FingerprintToken(pair.RefreshToken), acc.ID)
		require.NoError(t, err)
		require.Equal(t, cryptox.FingerprintToken(got.AccessToken), stored.AccessFingerprint)
	})

	t.Run("deleted pair", func(t *testing.T) {
		stored, err := env.store.AuthTokens().FindAuthTokenPair(ctx, cryptox.FingerprintToken(pair.RefreshToken), acc.ID)
		require.NoError(t, err)
		require.NoError(t, env.store.AuthTokens().DeleteAuthTokenPair(ctx, stored.ID))

		_, err = tokens.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestHousekeepingCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acc := env.seedAccount(t, "ada")

	_, err := env.auth.OTPs.Create(ctx, acc, domain.PurposeLogin, &CreateOptions{Duration: 1, Unit: domain.UnitSeconds})
	require.NoError(t, err)
	_, err = env.auth.OTPs.Create(ctx, acc, domain.PurposeSignup, &CreateOptions{Duration: 1, Unit: domain.UnitHours})
	require.NoError(t, err)

	old := domain.AuthTokenPair{
		ID:                 "old",
		AccountID:          acc.ID,
		AccessFingerprint:  "a1",
		RefreshFingerprint: "r1",
		CreatedAt:          env.clock.Now().Add(-48 * time.Hour),
		UpdatedAt:          env.clock.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, env.store.AuthTokens().CreateAuthTokenPair(ctx, old))
	fresh := old
	fresh.ID, fresh.AccessFingerprint, fresh.RefreshFingerprint = "fresh", "a2", "r2"
	fresh.CreatedAt, fresh.UpdatedAt = env.clock.Now(), env.clock.Now()
	require.NoError(t, env.store.AuthTokens().CreateAuthTokenPair(ctx, fresh))

	hk := NewHousekeepingService(env.store, testLogger(), time.Hour, 24*time.Hour)
	hk.Cleanup(ctx, env.clock.Now().Add(time.Minute))

	n, err := env.store.OTPs().CountOTPs(ctx, acc.Email, domain.PurposeLogin)
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = env.store.OTPs().CountOTPs(ctx, acc.Email, domain.PurposeSignup)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = env.store.AuthTokens().FindAuthTokenPair(ctx, "r1", acc.ID)
	require.Error(t, err)
	_, err = env.store.AuthTokens().FindAuthTokenPair(ctx, "r2", acc.ID)
	require.NoError(t, err)
}

func TestTransform(t *testing.T) {
	last := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	v := Transform(domain.Account{
		ID:               "01J",
		FirstName:        "ada",
		LastName:         "lovelace",
		Username:         "ada",
		CountryPhoneCode: "+61",
		Phone:            "400000000",
		Role:             domain.RoleAdmin,
		ClearanceLevel:   3,
		Status:           domain.StatusActive,
		IsActive:         true,
		LastLogin:        &last,
	})

	require.Equal(t, "ada lovelace", v.FullName)
	require.Equal(t, "AL", v.Initials)
	require.Equal(t, "+61400000000", v.PhoneNumber)
	require.Equal(t, "-", v.ProfileImage)
	require.Equal(t, "02.01.26 15:04", v.LastLogin)
	require.Equal(t, "Fri, 02 Jan 2026 15:04:00 UTC", v.LastLoginExpressive)

	empty := Transform(domain.Account{ProfileImage: "https://cdn.example/a.png"})
	require.Equal(t, "https://cdn.example/a.png", empty.ProfileImage)
	require.Empty(t, empty.LastLogin)
}

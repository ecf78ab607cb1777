package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/guard"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestAttemptValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		in   AttemptInput
	}{
		{"missing username", AttemptInput{Password: "x"}},
		{"missing password", AttemptInput{Username: "x"}},
		{"unknown unit", AttemptInput{Username: "x", Password: "y", Unit: "eons"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Attempt(context.Background(), tt.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestAttemptUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.attempt("ghost", testPassword)
	require.ErrorIs(t, err, ErrAccountNotFound)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAttemptFailuresBelowAlert(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ada")

	for i := 1; i < env.policy.Alert().Threshold; i++ {
		_, err := env.attempt("ada", "nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Equal(t, domain.StatusActive, env.account(t, acc.ID).Status)
	}

	n, err := env.store.SignInAttempts().CountSignInAttempts(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := env.attempt("ada", testPassword)
	require.NoError(t, err)
	require.Equal(t, acc.ID, got.ID)
	require.Equal(t, domain.StatusActive, got.Status)

	n, err = env.store.SignInAttempts().CountSignInAttempts(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAttemptTimedSuspension(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ada")
	start := env.clock.Now()

	err := env.failTimes(t, "ada", 3)
	var timed *TimedSuspensionError
	require.True(t, errors.As(err, &timed), "got %v", err)
	require.True(t, timed.Until.Equal(start.Add(5*time.Minute)))
	require.Contains(t, err.Error(), "blocked until")

	env.clock.Advance(time.Minute)
	_, err = env.attempt("ada", testPassword)
	require.True(t, errors.As(err, &timed), "correct password must still be blocked, got %v", err)
	require.ErrorIs(t, err, ErrSuspended)

	env.clock.Advance(5 * time.Minute)
	got, err := env.attempt("ada", testPassword)
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, got.Status)
	require.Nil(t, got.FailedSignIns)
	require.Nil(t, got.SuspendedAt)
	require.Nil(t, got.SuspensionDuration)
	require.Nil(t, got.SuspensionTimeUnit)

	stored := env.account(t, acc.ID)
	require.Equal(t, domain.StatusActive, stored.Status)
	n, err := env.store.SignInAttempts().CountSignInAttempts(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAttemptHardLock(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "ada")

	err := env.failTimes(t, "ada", 4)
	require.ErrorIs(t, err, ErrPermanentSuspension)
	require.Contains(t, err.Error(), "forgot password")

	env.clock.Advance(365 * 24 * time.Hour)
	_, err = env.attempt("ada", testPassword)
	require.ErrorIs(t, err, ErrPermanentSuspension)
}

func TestAttemptDeadlyDisables(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ada")

	err := env.failTimes(t, "ada", 20)
	require.ErrorIs(t, err, ErrPermanentSuspension)

	stored := env.account(t, acc.ID)
	require.False(t, stored.IsActive)
	require.Equal(t, domain.StatusSuspended, stored.Status)
	require.Equal(t, 543240, *stored.SuspensionDuration)

	env.clock.Advance(2 * 365 * 24 * time.Hour)
	_, err = env.attempt("ada", testPassword)
	require.ErrorIs(t, err, ErrPermanentSuspension)
	require.False(t, env.account(t, acc.ID).IsActive)
}

func TestAttemptDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ada")
	acc.Status = domain.StatusInactive
	_, err := env.store.Accounts().UpdateAccount(context.Background(), acc)
	require.NoError(t, err)

	_, err = env.attempt("ada", testPassword)
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAttemptWithLocker(t *testing.T) {
	env := newTestEnv(t)
	env.auth.Locker = guard.NewMemoryLocker()
	env.seedAccount(t, "ada")

	err := env.failTimes(t, "ada", 3)
	var timed *TimedSuspensionError
	require.True(t, errors.As(err, &timed))
}

func TestVerifyAccountRespectsSuspension(t *testing.T) {
	signUp := func(t *testing.T, env *testEnv) PasscodeResult {
		t.Helper()
		res, err := env.auth.SignUp(context.Background(), SignUpInput{
			FirstName:            "Grace",
			LastName:             "Hopper",
			Username:             "grace",
			Email:                "grace@example.com",
			Password:             testPassword,
			PasswordConfirmation: testPassword,
		})
		require.NoError(t, err)
		return res
	}

	tests := []struct {
		name     string
		failures int
		wait     time.Duration
		check    func(t *testing.T, err error)
		active   bool
	}{
		{
			name:     "deadly tier stays disabled",
			failures: 20,
			check:    func(t *testing.T, err error) { require.ErrorIs(t, err, ErrAccountDisabled) },
		},
		{
			name:     "hard lock holds",
			failures: 4,
			wait:     9 * time.Minute,
			check:    func(t *testing.T, err error) { require.ErrorIs(t, err, ErrPermanentSuspension) },
		},
		{
			name:     "timed lock still running",
			failures: 3,
			wait:     time.Minute,
			check: func(t *testing.T, err error) {
				var timed *TimedSuspensionError
				require.True(t, errors.As(err, &timed), "got %v", err)
			},
		},
		{
			name:     "timed lock elapsed",
			failures: 3,
			wait:     6 * time.Minute,
			check:    func(t *testing.T, err error) { require.NoError(t, err) },
			active:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			res := signUp(t, env)

			_ = env.failTimes(t, "grace", tt.failures)
			env.clock.Advance(tt.wait)

			_, err := env.auth.VerifyAccount(context.Background(), "grace@example.com", res.OTP)
			tt.check(t, err)

			stored := env.account(t, res.Account.ID)
			require.Equal(t, tt.active, stored.IsActive)
			if !tt.active {
				require.Equal(t, domain.StatusSuspended, stored.Status)
				_, err = env.attempt("grace", testPassword)
				require.Error(t, err, "correct password must not get through")
				return
			}
			require.Equal(t, domain.StatusActive, stored.Status)
			require.Nil(t, stored.FailedSignIns)
			n, err := env.store.SignInAttempts().CountSignInAttempts(context.Background(), stored.ID)
			require.NoError(t, err)
			require.Zero(t, n)
		})
	}
}

func TestReactivateClearsAttemptsOnInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.auth.SignUp(context.Background(), SignUpInput{
		FirstName:            "Grace",
		LastName:             "Hopper",
		Username:             "grace",
		Email:                "grace@example.com",
		Password:             testPassword,
		PasswordConfirmation: testPassword,
	})
	require.NoError(t, err)

	err = env.failTimes(t, "grace", 3)
	var timed *TimedSuspensionError
	require.True(t, errors.As(err, &timed), "got %v", err)

	env.clock.Advance(6 * time.Minute)
	_, err = env.attempt("grace", testPassword)
	require.ErrorIs(t, err, ErrAccountDisabled)

	n, err := env.store.SignInAttempts().CountSignInAttempts(context.Background(), res.Account.ID)
	require.NoError(t, err)
	require.Zero(t, n, "reactivation must reset the attempt history")

	// A fresh failure starts counting from one again.
	_, err = env.attempt("grace", "wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp(t *testing.T) {
	valid := SignUpInput{
		FirstName:            "Grace",
		LastName:             "Hopper",
		Username:             "grace",
		Email:                "grace@example.com",
		Password:             testPassword,
		PasswordConfirmation: testPassword,
	}

	t.Run("creates inactive account and mails a passcode", func(t *testing.T) {
		env := newTestEnv(t)
		res, err := env.auth.SignUp(context.Background(), valid)
		require.NoError(t, err)
		require.Len(t, res.OTP, 6)

		acc := env.account(t, res.Account.ID)
		require.Equal(t, domain.StatusInactive, acc.Status)
		require.False(t, acc.IsActive)
		require.Equal(t, domain.RoleUser, acc.Role)
		require.Zero(t, acc.ClearanceLevel)
		require.NotEqual(t, testPassword, acc.PasswordHash)

		require.Len(t, env.mail.sent, 1)
		require.Equal(t, "grace@example.com", env.mail.sent[0].To)
		require.True(t, strings.Contains(env.mail.sent[0].Body, res.OTP))
	})

	t.Run("rejections", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccount(t, "taken")

		tests := []struct {
			name   string
			mutate func(in *SignUpInput)
			want   error
		}{
			{"confirmation mismatch", func(in *SignUpInput) { in.PasswordConfirmation = "different!" }, ErrPasswordMismatch},
			{"duplicate email", func(in *SignUpInput) { in.Email = "taken@example.com" }, ErrDuplicateEmail},
			{"duplicate username", func(in *SignUpInput) { in.Username = "taken" }, ErrDuplicateUsername},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := valid
				tt.mutate(&in)
				_, err := env.auth.SignUp(context.Background(), in)
				require.ErrorIs(t, err, tt.want)
			})
		}

		for name, mutate := range map[string]func(in *SignUpInput){
			"missing first name": func(in *SignUpInput) { in.FirstName = "" },
			"bad email":          func(in *SignUpInput) { in.Email = "not-an-email" },
			"short password":     func(in *SignUpInput) { in.Password, in.PasswordConfirmation = "short", "short" },
		} {
			t.Run(name, func(t *testing.T) {
				in := valid
				mutate(&in)
				_, err := env.auth.SignUp(context.Background(), in)
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
			})
		}
	})
}

func TestFullSignInFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.SignUp(ctx, SignUpInput{
		FirstName:            "Grace",
		LastName:             "Hopper",
		Username:             "grace",
		Email:                "grace@example.com",
		Password:             testPassword,
		PasswordConfirmation: testPassword,
	})
	require.NoError(t, err)

	_, err = env.attempt("grace", testPassword)
	require.ErrorIs(t, err, ErrAccountDisabled, "unverified accounts cannot sign in")

	verified, err := env.auth.VerifyAccount(ctx, "grace@example.com", reg.OTP)
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, verified.Status)
	require.True(t, verified.IsActive)
	require.Equal(t, 1, verified.ClearanceLevel)

	login, err := env.auth.SignIn(ctx, AttemptInput{Username: "grace", Password: testPassword})
	require.NoError(t, err)
	require.Len(t, login.OTP, 6)
	require.Len(t, env.mail.sent, 2)

	_, err = env.auth.VerifySignIn(ctx, "grace@example.com", reg.OTP)
	require.Error(t, err, "a signup code is not a login code")

	done, err := env.auth.VerifySignIn(ctx, "grace@example.com", login.OTP)
	require.NoError(t, err)
	require.NotEmpty(t, done.Tokens.AccessToken)
	require.NotEmpty(t, done.Tokens.RefreshToken)
	require.NotNil(t, done.Account.LastLogin)

	refreshed, err := env.auth.Refresh(ctx, done.Tokens.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, done.Tokens.RefreshToken, refreshed.RefreshToken)

	_, err = env.auth.VerifySignIn(ctx, "grace@example.com", login.OTP)
	require.ErrorIs(t, err, ErrOTPNotFound)

	n, err := env.store.OTPs().CountOTPs(ctx, "grace@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = env.store.Accounts().FindAccount(ctx, store.AccountFilter{Username: "grace"})
	require.NoError(t, err)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestOnFailedAttemptTiers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.auth.Suspension

	t.Run("below alert leaves the account alone", func(t *testing.T) {
		acc := env.seedAccount(t, "calm")
		for count := range env.policy.Alert().Threshold {
			got, err := svc.OnFailedAttempt(ctx, acc, count, "")
			require.NoError(t, err)
			require.Equal(t, domain.StatusActive, got.Status)
			require.Nil(t, got.FailedSignIns)
		}
		require.Equal(t, domain.StatusActive, env.account(t, acc.ID).Status)
	})

	for _, tier := range env.policy.Tiers {
		t.Run(tier.Name, func(t *testing.T) {
			acc := env.seedAccount(t, "tier-"+tier.Name)

			got, err := svc.OnFailedAttempt(ctx, acc, tier.Threshold, "")
			require.NoError(t, err)

			stored := env.account(t, acc.ID)
			for _, a := range []domain.Account{got, stored} {
				require.Equal(t, domain.StatusSuspended, a.Status)
				require.NotNil(t, a.SuspensionDuration)
				require.Equal(t, tier.Duration, *a.SuspensionDuration)
				require.NotNil(t, a.SuspensionTimeUnit)
				require.Equal(t, domain.UnitMinutes, *a.SuspensionTimeUnit)
				require.NotNil(t, a.SuspendedAt)
				require.Equal(t, tier.Threshold, a.FailedSignInCount())
				require.Equal(t, tier.Name != TierDeadly, a.IsActive)
			}
		})
	}

	t.Run("suspendedAt is kept on escalation", func(t *testing.T) {
		acc := env.seedAccount(t, "escalate")
		first, err := svc.OnFailedAttempt(ctx, acc, 3, "")
		require.NoError(t, err)

		env.clock.Advance(time.Hour)
		second, err := svc.OnFailedAttempt(ctx, first, 5, "")
		require.NoError(t, err)
		require.True(t, first.SuspendedAt.Equal(*second.SuspendedAt))
		require.Equal(t, 15, *second.SuspensionDuration)
	})

	t.Run("rejects unknown unit before mutating", func(t *testing.T) {
		acc := env.seedAccount(t, "badunit")
		_, err := svc.OnFailedAttempt(ctx, acc, 3, "fortnights")
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, domain.StatusActive, env.account(t, acc.ID).Status)
	})

	t.Run("custom unit", func(t *testing.T) {
		acc := env.seedAccount(t, "hours")
		got, err := svc.OnFailedAttempt(ctx, acc, 3, domain.UnitHours)
		require.NoError(t, err)
		require.Equal(t, domain.UnitHours, *got.SuspensionTimeUnit)
		require.Equal(t, got.SuspendedAt.Add(5*time.Hour), got.SuspendedUntil())
	})
}

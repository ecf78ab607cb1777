package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/metrics"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// SuspensionService escalates accounts through the suspension tiers and
// decides whether a suspended account may sign in.
type SuspensionService struct {
	Store  store.Store
	Policy *Policy
	Now    func() time.Time
}

func (s *SuspensionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// OnFailedAttempt applies the tier matching count. Below the first tier the
// account is returned untouched. An empty unit means the policy default.
func (s *SuspensionService) OnFailedAttempt(ctx context.Context, acc domain.Account, count int, unit domain.TimeUnit) (domain.Account, error) {
	s.Policy.mustBeValid()

	if unit == "" {
		unit = s.Policy.Unit
	}
	if !unit.Valid() {
		return acc, &ValidationError{Fields: []FieldError{{Field: "unit", Message: fmt.Sprintf("unit %q is not allowed", unit)}}}
	}

	tier, ok := s.Policy.TierFor(count)
	if !ok {
		return acc, nil
	}

	duration := tier.Duration
	acc.SuspensionDuration = &duration
	acc.SuspensionTimeUnit = &unit
	if acc.SuspendedAt == nil {
		at := s.now()
		acc.SuspendedAt = &at
	}
	acc.Status = domain.StatusSuspended
	failed := count
	acc.FailedSignIns = &failed
	if tier.Name == TierDeadly {
		acc.IsActive = false
	}

	updated, err := s.Store.Accounts().UpdateAccount(ctx, acc)
	if err != nil {
		return acc, fmt.Errorf("suspend account: %w", err)
	}

	metrics.Suspension(tier.Name)
	slogx.FromContext(ctx).Warn("account suspended",
		slog.String("account_id", acc.ID),
		slog.String("tier", tier.Name),
		slog.Int("failed_sign_ins", count),
		slog.Time("until", updated.SuspendedUntil()),
	)
	return updated, nil
}

// HardLocked reports whether the account is past the first tier, where only
// a password reset lifts the suspension.
func (s *SuspensionService) HardLocked(acc domain.Account) bool {
	return acc.FailedSignInCount() > s.Policy.Alert().Threshold
}

// Deny returns the suspension error for a suspended account that may not
// sign in yet, or nil when the account is not blocked.
func (s *SuspensionService) Deny(acc domain.Account) error {
	if acc.Status != domain.StatusSuspended {
		return nil
	}
	if s.HardLocked(acc) {
		return ErrPermanentSuspension
	}
	if until := acc.SuspendedUntil(); s.now().Before(until) {
		return &TimedSuspensionError{Until: until}
	}
	return nil
}

// Deactivated reports whether the account reached the DEADLY tier, which
// nothing in this service reverses.
func (s *SuspensionService) Deactivated(acc domain.Account) bool {
	return acc.FailedSignInCount() >= s.Policy.Deadly().Threshold
}

// Reactivate lifts an elapsed timed suspension and clears the attempt history
// that led to it.
func (s *SuspensionService) Reactivate(ctx context.Context, acc domain.Account) (domain.Account, error) {
	if err := s.Store.SignInAttempts().DeleteSignInAttempts(ctx, acc.ID); err != nil {
		return acc, fmt.Errorf("clear sign-in attempts: %w", err)
	}

	acc.Status = domain.StatusActive
	acc.FailedSignIns = nil
	acc.SuspensionDuration = nil
	acc.SuspensionTimeUnit = nil
	acc.SuspendedAt = nil

	updated, err := s.Store.Accounts().UpdateAccount(ctx, acc)
	if err != nil {
		return acc, fmt.Errorf("reactivate account: %w", err)
	}
	slogx.FromContext(ctx).Info("account reactivated", slog.String("account_id", acc.ID))
	return updated, nil
}

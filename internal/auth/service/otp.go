package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/guard"
	"github.com/aussiebroadwan/gatehouse/internal/auth/metrics"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// OTPService issues and consumes one-time passcodes. Only one passcode per
// (email, purpose) is live at a time.
type OTPService struct {
	Store  store.Store
	Policy *Policy

	// Limiter caps wrong guesses per (email, purpose). Nil disables it.
	Limiter *guard.Limiter

	Now func() time.Time
}

func (s *OTPService) now() time.Time {
	var t time.Time
	if s.Now != nil {
		t = s.Now()
	} else {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Millisecond)
}

// Generate returns a fresh six digit code.
func (s *OTPService) Generate() (string, error) {
	return cryptox.GenerateNumericCode()
}

// CreateOptions overrides the purpose's default validity window.
type CreateOptions struct {
	Duration int
	Unit     domain.TimeUnit
}

// Create replaces any live passcode for (acc.Email, purpose) with a new one
// and returns its plaintext. The plaintext is never stored.
func (s *OTPService) Create(ctx context.Context, acc domain.Account, purpose domain.OTPPurpose, opts *CreateOptions) (string, error) {
	v := &validator{}
	v.required("id", acc.ID)
	v.required("email", acc.Email)
	if !s.Policy.AllowsPurpose(purpose) {
		v.add("purpose", fmt.Sprintf("purpose %q is not allowed", purpose))
	}
	if err := v.err(); err != nil {
		return "", err
	}

	def := s.Policy.OTPDefaults[purpose]
	duration, unit := def.Duration, def.Unit
	if opts != nil {
		if opts.Duration > 0 {
			duration = opts.Duration
		}
		if opts.Unit != "" {
			unit = opts.Unit
		}
	}
	if !unit.Valid() {
		return "", &ValidationError{Fields: []FieldError{{Field: "unit", Message: fmt.Sprintf("unit %q is not allowed", unit)}}}
	}

	if _, err := s.Store.Accounts().FindAccount(ctx, store.AccountFilter{ID: acc.ID, Email: acc.Email}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", err
	}

	code, err := s.Generate()
	if err != nil {
		return "", fmt.Errorf("generate passcode: %w", err)
	}
	hash, err := cryptox.HashCode(code)
	if err != nil {
		return "", fmt.Errorf("hash passcode: %w", err)
	}

	otp := domain.OneTimePasscode{
		ID:        idx.NewString(),
		AccountID: acc.ID,
		Email:     acc.Email,
		Purpose:   purpose,
		CodeHash:  hash,
		Duration:  duration,
		TimeUnit:  unit,
		CreatedAt: s.now(),
	}
	otp.ExpiresAt = otp.ExpiresAtFrom()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OTPs().DeleteOTPs(ctx, acc.Email, purpose); err != nil {
			return fmt.Errorf("delete previous passcodes: %w", err)
		}
		return tx.OTPs().CreateOTP(ctx, otp)
	})
	if err != nil {
		return "", err
	}

	if s.Limiter != nil {
		if err := s.Limiter.Reset(ctx, limiterKey(acc.Email, purpose)); err != nil {
			slogx.FromContext(ctx).Warn("reset passcode limiter", slog.Any("error", err))
		}
	}

	metrics.OTP(string(purpose), metrics.OTPIssued)
	slogx.FromContext(ctx).Info("passcode issued",
		slog.String("account_id", acc.ID),
		slog.String("purpose", string(purpose)),
		slog.Time("expires_at", otp.ExpiresAt),
	)
	return code, nil
}

// Verify consumes the passcode for (email, purpose) and returns its owner.
// A wrong code leaves the passcode in place; an expired one is removed.
func (s *OTPService) Verify(ctx context.Context, code, email string, purpose domain.OTPPurpose) (domain.Account, error) {
	v := &validator{}
	v.required("otp", code)
	v.required("email", email)
	if !s.Policy.AllowsPurpose(purpose) {
		v.add("purpose", fmt.Sprintf("purpose %q is not allowed", purpose))
	}
	if err := v.err(); err != nil {
		return domain.Account{}, err
	}
	email = strings.TrimSpace(email)

	otp, err := s.Store.OTPs().FindOTP(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrOTPNotFound
		}
		return domain.Account{}, err
	}

	acc, err := s.Store.Accounts().FindAccount(ctx, store.AccountFilter{ID: otp.AccountID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUnauthorizedOwnership
		}
		return domain.Account{}, err
	}
	if acc.Email != email {
		return domain.Account{}, ErrUnauthorizedOwnership
	}

	if s.now().After(otp.ExpiresAtFrom()) {
		if err := s.Store.OTPs().DeleteOTP(ctx, otp.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, err
		}
		metrics.OTP(string(purpose), metrics.OTPExpired)
		return domain.Account{}, ErrOTPExpired
	}

	if !cryptox.CompareCode(code, otp.CodeHash) {
		return domain.Account{}, s.rejectGuess(ctx, otp)
	}

	if err := s.Store.OTPs().DeleteOTP(ctx, otp.ID); err != nil {
		// A concurrent verify consumed it first.
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrOTPNotFound
		}
		return domain.Account{}, err
	}
	if s.Limiter != nil {
		_ = s.Limiter.Reset(ctx, limiterKey(email, purpose))
	}

	metrics.OTP(string(purpose), metrics.OTPVerified)
	return acc, nil
}

func (s *OTPService) rejectGuess(ctx context.Context, otp domain.OneTimePasscode) error {
	if s.Limiter == nil {
		metrics.OTP(string(otp.Purpose), metrics.OTPInvalid)
		return ErrInvalidOTP
	}

	key := limiterKey(otp.Email, otp.Purpose)
	exceeded, err := s.Limiter.Hit(ctx, key)
	if err != nil {
		// Limiter outage falls back to plain rejection.
		slogx.FromContext(ctx).Warn("passcode limiter unavailable", slog.Any("error", err))
		metrics.OTP(string(otp.Purpose), metrics.OTPInvalid)
		return ErrInvalidOTP
	}
	if !exceeded {
		metrics.OTP(string(otp.Purpose), metrics.OTPInvalid)
		return ErrInvalidOTP
	}

	if err := s.Store.OTPs().DeleteOTP(ctx, otp.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	_ = s.Limiter.Reset(ctx, key)

	metrics.OTP(string(otp.Purpose), metrics.OTPLocked)
	slogx.FromContext(ctx).Warn("passcode destroyed after repeated wrong guesses",
		slog.String("account_id", otp.AccountID),
		slog.String("purpose", string(otp.Purpose)),
	)
	return ErrOTPAttemptsExceeded
}

// ValidFor is the purpose's default window as a duration, for messages.
func (s *OTPService) ValidFor(purpose domain.OTPPurpose) time.Duration {
	def, ok := s.Policy.OTPDefaults[purpose]
	if !ok {
		return 0
	}
	start := time.Unix(0, 0).UTC()
	return def.Unit.Add(start, def.Duration).Sub(start)
}

func limiterKey(email string, purpose domain.OTPPurpose) string {
	return string(purpose) + ":" + strings.ToLower(email)
}

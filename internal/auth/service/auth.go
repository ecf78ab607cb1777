package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/guard"
	"github.com/aussiebroadwan/gatehouse/internal/auth/metrics"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/mailx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

const minPasswordLength = 8

// AuthService runs the sign-up, verification, sign-in and refresh flows.
type AuthService struct {
	Store      store.Store
	Attempts   *AttemptTracker
	Suspension *SuspensionService
	OTPs       *OTPService
	Tokens     *TokenService
	Mailer     mailx.Sender

	// Locker serialises sign-in handling per username. Nil means no lock.
	Locker guard.Locker
}

// AttemptInput is one credential check.
type AttemptInput struct {
	Username string
	Password string
	IP       string
	Unit     domain.TimeUnit // suspension unit, defaults to the policy unit
}

// Attempt checks the credentials and applies the suspension policy. On
// success the account's failed attempts are cleared and an elapsed timed
// suspension is lifted.
func (s *AuthService) Attempt(ctx context.Context, in AttemptInput) (domain.Account, error) {
	v := &validator{}
	v.required("username", in.Username)
	v.required("password", in.Password)
	if in.Unit != "" && !in.Unit.Valid() {
		v.add("unit", fmt.Sprintf("unit %q is not allowed", in.Unit))
	}
	if err := v.err(); err != nil {
		return domain.Account{}, err
	}

	release, err := s.lock(ctx, "signin:"+strings.ToLower(in.Username))
	if err != nil {
		return domain.Account{}, err
	}
	defer release()

	l := slogx.FromContext(ctx).With(slog.String("username", in.Username))

	acc, err := s.Store.Accounts().FindAccount(ctx, store.AccountFilter{Username: in.Username})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.SignIn(metrics.OutcomeNotFound)
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}

	if !VerifyCredential(in.Password, acc.PasswordHash) {
		return s.onMismatch(ctx, acc, in)
	}

	if err := s.Suspension.Deny(acc); err != nil {
		metrics.SignIn(metrics.OutcomeSuspended)
		l.Info("sign-in blocked by suspension", slog.String("account_id", acc.ID))
		return domain.Account{}, err
	}

	if acc.Status == domain.StatusSuspended {
		if acc, err = s.Suspension.Reactivate(ctx, acc); err != nil {
			return domain.Account{}, err
		}
	}

	if !acc.IsActive || acc.Status != domain.StatusActive {
		metrics.SignIn(metrics.OutcomeDisabled)
		return domain.Account{}, ErrAccountDisabled
	}

	count, err := s.Attempts.Count(ctx, acc.ID)
	if err != nil {
		return domain.Account{}, err
	}
	if count > 0 || acc.FailedSignInCount() > 0 {
		if err := s.Attempts.Clear(ctx, acc.ID); err != nil {
			return domain.Account{}, err
		}
		if acc.FailedSignIns != nil {
			acc.FailedSignIns = nil
			if acc, err = s.Store.Accounts().UpdateAccount(ctx, acc); err != nil {
				return domain.Account{}, err
			}
		}
	}

	metrics.SignIn(metrics.OutcomeSuccess)
	l.Info("credentials accepted", slog.String("account_id", acc.ID))
	return acc, nil
}

func (s *AuthService) onMismatch(ctx context.Context, acc domain.Account, in AttemptInput) (domain.Account, error) {
	if err := s.Attempts.Record(ctx, acc, in.Username, in.Password, in.IP); err != nil {
		return domain.Account{}, err
	}
	count, err := s.Attempts.Count(ctx, acc.ID)
	if err != nil {
		return domain.Account{}, err
	}

	acc, err = s.Suspension.OnFailedAttempt(ctx, acc, count, in.Unit)
	if err != nil {
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("credentials rejected",
		slog.String("account_id", acc.ID),
		slog.Int("attempts", count),
	)

	if acc.Status == domain.StatusSuspended {
		metrics.SignIn(metrics.OutcomeSuspended)
		if s.Suspension.HardLocked(acc) {
			return domain.Account{}, ErrPermanentSuspension
		}
		return domain.Account{}, &TimedSuspensionError{Until: acc.SuspendedUntil()}
	}

	metrics.SignIn(metrics.OutcomeFailure)
	return domain.Account{}, ErrInvalidCredentials
}

func (s *AuthService) lock(ctx context.Context, key string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	return s.Locker.Lock(ctx, key)
}

// SignUpInput is a registration request.
type SignUpInput struct {
	FirstName            string
	LastName             string
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

// PasscodeResult is an account with the plaintext passcode just issued for
// it. The code is for test echoing only; normal delivery is by mail.
type PasscodeResult struct {
	Account domain.Account
	OTP     string
}

// SignUp creates an inactive account and mails it a Signup passcode.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (PasscodeResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	v := &validator{}
	v.required("firstName", in.FirstName)
	v.required("lastName", in.LastName)
	v.required("username", in.Username)
	v.required("email", in.Email)
	v.required("password", in.Password)
	v.required("passwordConfirmation", in.PasswordConfirmation)
	if in.Email != "" {
		if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			v.add("email", "email must be a valid email address")
		}
	}
	if in.Password != "" && len(in.Password) < minPasswordLength {
		v.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if err := v.err(); err != nil {
		return PasscodeResult{}, err
	}
	if in.Password != in.PasswordConfirmation {
		return PasscodeResult{}, ErrPasswordMismatch
	}

	accounts := s.Store.Accounts()
	if n, err := accounts.CountAccounts(ctx, store.AccountFilter{Email: in.Email}); err != nil {
		return PasscodeResult{}, err
	} else if n > 0 {
		return PasscodeResult{}, ErrDuplicateEmail
	}
	if n, err := accounts.CountAccounts(ctx, store.AccountFilter{Username: in.Username}); err != nil {
		return PasscodeResult{}, err
	} else if n > 0 {
		return PasscodeResult{}, ErrDuplicateUsername
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return PasscodeResult{}, fmt.Errorf("hash password: %w", err)
	}

	acc := domain.Account{
		ID:             idx.NewString(),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Username:       in.Username,
		Email:          in.Email,
		Role:           domain.RoleUser,
		ClearanceLevel: 0,
		PasswordHash:   hash,
		Status:         domain.StatusInactive,
		IsActive:       false,
	}
	if err := accounts.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return PasscodeResult{}, ErrDuplicateEmail
		}
		return PasscodeResult{}, fmt.Errorf("create account: %w", err)
	}

	code, err := s.issue(ctx, acc, domain.PurposeSignup)
	if err != nil {
		return PasscodeResult{}, err
	}

	slogx.FromContext(ctx).Info("account registered", slog.String("account_id", acc.ID))
	return PasscodeResult{Account: acc, OTP: code}, nil
}

// VerifyAccount consumes a Signup passcode and activates the account. A
// suspended account must be past its lock first; a DEADLY account stays off.
func (s *AuthService) VerifyAccount(ctx context.Context, email, code string) (domain.Account, error) {
	acc, err := s.OTPs.Verify(ctx, code, email, domain.PurposeSignup)
	if err != nil {
		return domain.Account{}, err
	}

	if s.Suspension.Deactivated(acc) {
		return domain.Account{}, ErrAccountDisabled
	}
	if acc.Status == domain.StatusSuspended {
		if err := s.Suspension.Deny(acc); err != nil {
			return domain.Account{}, err
		}
		if acc, err = s.Suspension.Reactivate(ctx, acc); err != nil {
			return domain.Account{}, err
		}
	}

	acc.Status = domain.StatusActive
	acc.IsActive = true
	acc.ClearanceLevel = max(acc.ClearanceLevel, 1)

	acc, err = s.Store.Accounts().UpdateAccount(ctx, acc)
	if err != nil {
		return domain.Account{}, fmt.Errorf("activate account: %w", err)
	}

	slogx.FromContext(ctx).Info("account verified", slog.String("account_id", acc.ID))
	return acc, nil
}

// SignIn checks the credentials and mails a Login passcode.
func (s *AuthService) SignIn(ctx context.Context, in AttemptInput) (PasscodeResult, error) {
	acc, err := s.Attempt(ctx, in)
	if err != nil {
		return PasscodeResult{}, err
	}

	code, err := s.issue(ctx, acc, domain.PurposeLogin)
	if err != nil {
		return PasscodeResult{}, err
	}
	return PasscodeResult{Account: acc, OTP: code}, nil
}

// SignInResult is what a completed sign-in hands back.
type SignInResult struct {
	Account domain.Account
	Tokens  domain.TokenPair
}

// VerifySignIn consumes a Login passcode, stamps the last login and issues
// a token pair.
func (s *AuthService) VerifySignIn(ctx context.Context, email, code string) (SignInResult, error) {
	acc, err := s.OTPs.Verify(ctx, code, email, domain.PurposeLogin)
	if err != nil {
		return SignInResult{}, err
	}

	tokens, err := s.Tokens.GetAuthTokens(ctx, acc.ID)
	if err != nil {
		return SignInResult{}, err
	}

	if err := s.Store.Accounts().UpdateLastLogin(ctx, acc.ID, time.Now().UTC()); err != nil {
		return SignInResult{}, fmt.Errorf("update last login: %w", err)
	}
	acc, err = s.Store.Accounts().FindAccount(ctx, store.AccountFilter{ID: acc.ID})
	if err != nil {
		return SignInResult{}, err
	}

	slogx.FromContext(ctx).Info("sign-in completed", slog.String("account_id", acc.ID))
	return SignInResult{Account: acc, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, raw any) (domain.TokenPair, error) {
	return s.Tokens.Refresh(ctx, raw)
}

func (s *AuthService) issue(ctx context.Context, acc domain.Account, purpose domain.OTPPurpose) (string, error) {
	code, err := s.OTPs.Create(ctx, acc, purpose, nil)
	if err != nil {
		return "", err
	}
	if s.Mailer == nil {
		return code, nil
	}
	msg := mailx.PasscodeMessage(acc.Email, string(purpose), code, s.OTPs.ValidFor(purpose))
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("send %s passcode: %w", strings.ToLower(string(purpose)), err)
	}
	return code, nil
}

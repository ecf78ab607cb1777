package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// AttemptTracker keeps the failed sign-in log of each account.
type AttemptTracker struct {
	Store store.Store
}

// Record appends a failed attempt.
func (t *AttemptTracker) Record(ctx context.Context, acc domain.Account, username, password, ip string) error {
	err := t.Store.SignInAttempts().CreateSignInAttempt(ctx, domain.SignInAttempt{
		ID:        idx.NewString(),
		AccountID: acc.ID,
		Username:  username,
		Password:  password,
		IPAddress: ip,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("record sign-in attempt: %w", err)
	}
	return nil
}

func (t *AttemptTracker) Count(ctx context.Context, accountID string) (int, error) {
	return t.Store.SignInAttempts().CountSignInAttempts(ctx, accountID)
}

func (t *AttemptTracker) Clear(ctx context.Context, accountID string) error {
	return t.Store.SignInAttempts().DeleteSignInAttempts(ctx, accountID)
}

// VerifyCredential compares a plaintext secret with its stored hash.
func VerifyCredential(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return cryptox.VerifyPassword(plain, hash) == nil
}

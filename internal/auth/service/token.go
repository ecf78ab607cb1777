package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/metrics"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// TokenService mints access/refresh pairs and refreshes access tokens.
type TokenService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) sign(acc domain.Account, typ jwtx.TokenType, ttl time.Duration) (string, error) {
	token, err := s.Signer.Sign(jwtx.NewClaims(typ, acc.ID, acc.Username, ttl, s.Issuer, s.Audience, s.now()))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	metrics.TokenIssued(string(typ))
	return token, nil
}

// GetAuthTokens issues a new pair for the account and stores its
// fingerprints. The account is re-read so a disabled account gets nothing.
func (s *TokenService) GetAuthTokens(ctx context.Context, accountID string) (domain.TokenPair, error) {
	acc, err := s.Store.Accounts().FindAccount(ctx, store.AccountFilter{ID: accountID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrAccountNotFound
		}
		return domain.TokenPair{}, err
	}
	if !acc.IsActive {
		return domain.TokenPair{}, ErrAccountDisabled
	}

	access, err := s.sign(acc, jwtx.TokenAccess, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.sign(acc, jwtx.TokenRefresh, s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	now := s.now().UTC()
	err = s.Store.AuthTokens().CreateAuthTokenPair(ctx, domain.AuthTokenPair{
		ID:                 idx.NewString(),
		AccountID:          acc.ID,
		AccessFingerprint:  cryptox.FingerprintToken(access),
		RefreshFingerprint: cryptox.FingerprintToken(refresh),
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("store token pair: %w", err)
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself is returned unchanged.
func (s *TokenService) Refresh(ctx context.Context, raw any) (domain.TokenPair, error) {
	refresh, ok := raw.(string)
	if !ok || refresh == "" {
		return domain.TokenPair{}, &ValidationError{Fields: []FieldError{{Field: "refreshToken", Message: "refreshToken must be a non-empty string"}}}
	}

	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(refresh)
	if err == nil {
		err = claims.ValidateType(jwtx.TokenRefresh)
	}
	if err != nil {
		l.Info("refresh token rejected", slog.Any("error", err))
		return domain.TokenPair{}, ErrTokenNotFound
	}

	acc, err := s.Store.Accounts().FindAccount(ctx, store.AccountFilter{ID: claims.Subject})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrAccountNotFound
		}
		return domain.TokenPair{}, err
	}

	pair, err := s.Store.AuthTokens().FindAuthTokenPair(ctx, cryptox.FingerprintToken(refresh), acc.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrTokenNotFound
		}
		return domain.TokenPair{}, err
	}

	access, err := s.sign(acc, jwtx.TokenAccess, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.Store.AuthTokens().UpdateAccessFingerprint(ctx, pair.ID, cryptox.FingerprintToken(access)); err != nil {
		return domain.TokenPair{}, fmt.Errorf("update token pair: %w", err)
	}

	l.Info("access token refreshed", slog.String("account_id", acc.ID))
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres,
// mongo) implement this. It exposes sub-repositories so a Tx can hand out the
// same repos bound to a transaction.
type Store interface {
	Accounts() Accounts
	SignInAttempts() SignInAttempts
	OTPs() OTPs
	AuthTokens() AuthTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// the transaction back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// AccountFilter selects accounts by exact match on the non-empty fields.
type AccountFilter struct {
	ID       string
	Username string
	Email    string
}

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// FindAccount returns the first account matching every set filter field.
	FindAccount(ctx context.Context, f AccountFilter) (domain.Account, error)

	// UpdateAccount overwrites the mutable fields of the account with the
	// given id, bumps updated_at, and returns the stored document.
	UpdateAccount(ctx context.Context, a domain.Account) (domain.Account, error)

	// UpdateLastLogin stamps last_login.
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error

	// CountAccounts returns how many accounts match the filter.
	CountAccounts(ctx context.Context, f AccountFilter) (int, error)
}

type SignInAttempts interface {
	// CreateSignInAttempt appends one failed attempt.
	CreateSignInAttempt(ctx context.Context, a domain.SignInAttempt) error

	// CountSignInAttempts returns the failed attempts recorded for an account.
	CountSignInAttempts(ctx context.Context, accountID string) (int, error)

	// DeleteSignInAttempts bulk-deletes the attempts of an account.
	DeleteSignInAttempts(ctx context.Context, accountID string) error
}

type OTPs interface {
	// CreateOTP inserts a new OTP.
	CreateOTP(ctx context.Context, o domain.OneTimePasscode) error

	// FindOTP returns the OTP for (email, purpose).
	FindOTP(ctx context.Context, email string, purpose domain.OTPPurpose) (domain.OneTimePasscode, error)

	// DeleteOTP removes one OTP by id.
	DeleteOTP(ctx context.Context, id string) error

	// DeleteOTPs removes every OTP for (email, purpose).
	DeleteOTPs(ctx context.Context, email string, purpose domain.OTPPurpose) error

	// CountOTPs returns the number of OTPs stored for (email, purpose).
	CountOTPs(ctx context.Context, email string, purpose domain.OTPPurpose) (int, error)

	// DeleteExpiredOTPs is housekeeping; it removes OTPs whose expires_at is before the cutoff.
	DeleteExpiredOTPs(ctx context.Context, cutoff time.Time) (int64, error)
}

type AuthTokens interface {
	// CreateAuthTokenPair stores a newly issued pair.
	CreateAuthTokenPair(ctx context.Context, p domain.AuthTokenPair) error

	// FindAuthTokenPair returns the pair matching the refresh fingerprint and account.
	FindAuthTokenPair(ctx context.Context, refreshFingerprint, accountID string) (domain.AuthTokenPair, error)

	// UpdateAccessFingerprint replaces the access token of a stored pair.
	UpdateAccessFingerprint(ctx context.Context, id, accessFingerprint string) error

	// DeleteAuthTokenPair removes a single pair.
	DeleteAuthTokenPair(ctx context.Context, id string) error

	// DeleteAuthTokenPairsBefore is housekeeping; it removes pairs created before the cutoff.
	DeleteAuthTokenPairsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

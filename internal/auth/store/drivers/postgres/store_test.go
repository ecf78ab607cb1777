package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return newWithDB(db), mock
}

func TestCountSignInAttemptsUsesNumberedBinds(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM sign_in_attempts WHERE account_id = $1`)).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := s.SignInAttempts().CountSignInAttempts(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestCreateAccountUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO accounts .* VALUES \(\$1, .*\$20\)`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key value"})

	err := s.Accounts().CreateAccount(context.Background(), domain.Account{
		ID: "acc-1", Username: "ada", Email: "ada@example.com", PasswordHash: "x",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestFindAccountNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE email = \$1 LIMIT 1`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Accounts().FindAccount(context.Background(), store.AccountFilter{Email: "ghost@example.com"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteExpiredOTPs(t *testing.T) {
	s, mock := newMockStore(t)
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM otps WHERE expires_at < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.OTPs().DeleteExpiredOTPs(context.Background(), cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sign_in_attempts WHERE account_id = $1`)).
		WithArgs("acc-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		if err := tx.SignInAttempts().DeleteSignInAttempts(context.Background(), "acc-1"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("other")))
}

// Package sqldb holds the database/sql repositories shared by the sqlite and
// postgres drivers. Queries are written with '?' placeholders and rebound per
// dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options carries the driver specific hooks.
type Options struct {
	// Migrate applies the driver's embedded migrations to db.
	Migrate func(db *sql.DB) error

	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	opts    Options
}

// New wraps an open database handle.
func New(db *sql.DB, dialect Dialect, opts Options) *Store {
	if opts.IsUniqueViolation == nil {
		opts.IsUniqueViolation = func(error) bool { return false }
	}
	return &Store{db: db, dialect: dialect, opts: opts}
}

// DB exposes the underlying handle for driver level setup.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.opts.Migrate == nil {
		return errors.New("sqldb: no migrations configured")
	}
	return s.opts.Migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, q: s.queries(tx)}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Accounts() store.Accounts             { return s.queries(s.db).accounts() }
func (s *Store) SignInAttempts() store.SignInAttempts { return s.queries(s.db).attempts() }
func (s *Store) OTPs() store.OTPs                     { return s.queries(s.db).otps() }
func (s *Store) AuthTokens() store.AuthTokens         { return s.queries(s.db).authTokens() }

func (s *Store) queries(db dbtx) *queries {
	return &queries{db: db, dialect: s.dialect, unique: s.opts.IsUniqueViolation}
}

// queries binds a handle (db or tx) to the dialect for the repos.
type queries struct {
	db      dbtx
	dialect Dialect
	unique  func(error) bool
}

func (q *queries) accounts() *accountsRepo     { return &accountsRepo{q: q} }
func (q *queries) attempts() *attemptsRepo     { return &attemptsRepo{q: q} }
func (q *queries) otps() *otpsRepo             { return &otpsRepo{q: q} }
func (q *queries) authTokens() *authTokensRepo { return &authTokensRepo{q: q} }

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil && q.unique(err) {
		return nil, store.ErrAlreadyExists
	}
	return res, err
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *queries) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := q.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// requireRow turns a zero-row update or delete into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullIntPtr(ni sql.NullInt64) *int {
	if ni.Valid {
		val := int(ni.Int64)
		return &val
	}
	return nil
}

func mapOptionalInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

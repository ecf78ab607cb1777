package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
)

type attemptsRepo struct {
	q *queries
}

func (r *attemptsRepo) CreateSignInAttempt(ctx context.Context, a domain.SignInAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.exec(ctx, `INSERT INTO sign_in_attempts (id, account_id, username, password, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.AccountID, a.Username, a.Password, mapStringNull(a.IPAddress), a.CreatedAt.UTC())
	return err
}

func (r *attemptsRepo) CountSignInAttempts(ctx context.Context, accountID string) (int, error) {
	return r.q.count(ctx, `SELECT COUNT(*) FROM sign_in_attempts WHERE account_id = ?`, accountID)
}

func (r *attemptsRepo) DeleteSignInAttempts(ctx context.Context, accountID string) error {
	_, err := r.q.exec(ctx, `DELETE FROM sign_in_attempts WHERE account_id = ?`, accountID)
	return err
}

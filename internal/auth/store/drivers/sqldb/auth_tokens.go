package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
)

type authTokensRepo struct {
	q *queries
}

func (r *authTokensRepo) CreateAuthTokenPair(ctx context.Context, p domain.AuthTokenPair) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	_, err := r.q.exec(ctx, `INSERT INTO auth_tokens (id, account_id, access_fingerprint, refresh_fingerprint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, p.AccessFingerprint, p.RefreshFingerprint, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

func (r *authTokensRepo) FindAuthTokenPair(
	ctx context.Context,
	refreshFingerprint, accountID string,
) (domain.AuthTokenPair, error) {
	var p domain.AuthTokenPair
	err := r.q.queryRow(ctx, `SELECT id, account_id, access_fingerprint, refresh_fingerprint, created_at, updated_at
		FROM auth_tokens WHERE refresh_fingerprint = ? AND account_id = ? LIMIT 1`,
		refreshFingerprint, accountID,
	).Scan(&p.ID, &p.AccountID, &p.AccessFingerprint, &p.RefreshFingerprint, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.AuthTokenPair{}, mapNotFound(err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *authTokensRepo) UpdateAccessFingerprint(ctx context.Context, id, accessFingerprint string) error {
	res, err := r.q.exec(ctx, `UPDATE auth_tokens SET access_fingerprint = ?, updated_at = ? WHERE id = ?`,
		accessFingerprint, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *authTokensRepo) DeleteAuthTokenPair(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM auth_tokens WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *authTokensRepo) DeleteAuthTokenPairsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM auth_tokens WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

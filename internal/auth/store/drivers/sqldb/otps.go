package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
)

type otpsRepo struct {
	q *queries
}

func (r *otpsRepo) CreateOTP(ctx context.Context, o domain.OneTimePasscode) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = o.ExpiresAtFrom()
	}
	_, err := r.q.exec(ctx, `INSERT INTO otps (id, account_id, email, purpose, code_hash, duration, time_unit, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.AccountID,
		o.Email,
		string(o.Purpose),
		o.CodeHash,
		o.Duration,
		string(o.TimeUnit),
		o.CreatedAt.UTC(),
		o.ExpiresAt.UTC(),
	)
	return err
}

func (r *otpsRepo) FindOTP(
	ctx context.Context,
	email string,
	purpose domain.OTPPurpose,
) (domain.OneTimePasscode, error) {
	var (
		o        domain.OneTimePasscode
		purp     string
		timeUnit string
	)
	err := r.q.queryRow(ctx, `SELECT id, account_id, email, purpose, code_hash, duration, time_unit, created_at, expires_at
		FROM otps WHERE email = ? AND purpose = ? ORDER BY created_at DESC LIMIT 1`,
		email, string(purpose),
	).Scan(&o.ID, &o.AccountID, &o.Email, &purp, &o.CodeHash, &o.Duration, &timeUnit, &o.CreatedAt, &o.ExpiresAt)
	if err != nil {
		return domain.OneTimePasscode{}, mapNotFound(err)
	}

	o.Purpose = domain.OTPPurpose(purp)
	o.TimeUnit = domain.TimeUnit(timeUnit)
	o.CreatedAt = o.CreatedAt.UTC()
	o.ExpiresAt = o.ExpiresAt.UTC()
	return o, nil
}

func (r *otpsRepo) DeleteOTP(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM otps WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *otpsRepo) DeleteOTPs(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	_, err := r.q.exec(ctx, `DELETE FROM otps WHERE email = ? AND purpose = ?`, email, string(purpose))
	return err
}

func (r *otpsRepo) CountOTPs(ctx context.Context, email string, purpose domain.OTPPurpose) (int, error) {
	return r.q.count(ctx, `SELECT COUNT(*) FROM otps WHERE email = ? AND purpose = ?`, email, string(purpose))
}

func (r *otpsRepo) DeleteExpiredOTPs(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM otps WHERE expires_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

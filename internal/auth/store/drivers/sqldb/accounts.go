package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
)

const accountColumns = `id, first_name, last_name, username, email, country_phone_code, phone,
	profile_image, role, clearance_level, password_hash, status, is_active, failed_sign_ins,
	suspension_duration, suspension_time_unit, suspended_at, last_login, created_at, updated_at`

var errEmptyFilter = errors.New("sqldb: empty account filter")

type accountsRepo struct {
	q *queries
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	_, err := r.q.exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.FirstName,
		a.LastName,
		a.Username,
		a.Email,
		a.CountryPhoneCode,
		a.Phone,
		a.ProfileImage,
		string(a.Role),
		a.ClearanceLevel,
		a.PasswordHash,
		string(a.Status),
		a.IsActive,
		mapOptionalInt(a.FailedSignIns),
		mapOptionalInt(a.SuspensionDuration),
		mapOptionalUnit(a.SuspensionTimeUnit),
		mapOptionalTime(a.SuspendedAt),
		mapOptionalTime(a.LastLogin),
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
	)
	return err
}

func (r *accountsRepo) FindAccount(ctx context.Context, f store.AccountFilter) (domain.Account, error) {
	where, args, err := accountWhere(f)
	if err != nil {
		return domain.Account{}, err
	}

	row := r.q.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where+` LIMIT 1`, args...)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	res, err := r.q.exec(ctx, `UPDATE accounts SET
		first_name = ?, last_name = ?, username = ?, email = ?, country_phone_code = ?, phone = ?,
		profile_image = ?, role = ?, clearance_level = ?, password_hash = ?, status = ?, is_active = ?,
		failed_sign_ins = ?, suspension_duration = ?, suspension_time_unit = ?, suspended_at = ?,
		last_login = ?, updated_at = ?
		WHERE id = ?`,
		a.FirstName,
		a.LastName,
		a.Username,
		a.Email,
		a.CountryPhoneCode,
		a.Phone,
		a.ProfileImage,
		string(a.Role),
		a.ClearanceLevel,
		a.PasswordHash,
		string(a.Status),
		a.IsActive,
		mapOptionalInt(a.FailedSignIns),
		mapOptionalInt(a.SuspensionDuration),
		mapOptionalUnit(a.SuspensionTimeUnit),
		mapOptionalTime(a.SuspendedAt),
		mapOptionalTime(a.LastLogin),
		time.Now().UTC(),
		a.ID,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if err := requireRow(res); err != nil {
		return domain.Account{}, err
	}

	return r.FindAccount(ctx, store.AccountFilter{ID: a.ID})
}

func (r *accountsRepo) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	res, err := r.q.exec(ctx, `UPDATE accounts SET last_login = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), accountID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) CountAccounts(ctx context.Context, f store.AccountFilter) (int, error) {
	where, args, err := accountWhere(f)
	if err != nil {
		return 0, err
	}
	return r.q.count(ctx, `SELECT COUNT(*) FROM accounts WHERE `+where, args...)
}

func accountWhere(f store.AccountFilter) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)
	if f.ID != "" {
		clauses = append(clauses, "id = ?")
		args = append(args, f.ID)
	}
	if f.Username != "" {
		clauses = append(clauses, "username = ?")
		args = append(args, f.Username)
	}
	if f.Email != "" {
		clauses = append(clauses, "email = ?")
		args = append(args, f.Email)
	}
	if len(clauses) == 0 {
		return "", nil, errEmptyFilter
	}
	return strings.Join(clauses, " AND "), args, nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a           domain.Account
		role        string
		status      string
		failed      sql.NullInt64
		duration    sql.NullInt64
		unit        sql.NullString
		suspendedAt sql.NullTime
		lastLogin   sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.Username,
		&a.Email,
		&a.CountryPhoneCode,
		&a.Phone,
		&a.ProfileImage,
		&role,
		&a.ClearanceLevel,
		&a.PasswordHash,
		&status,
		&a.IsActive,
		&failed,
		&duration,
		&unit,
		&suspendedAt,
		&lastLogin,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Role = domain.Role(role)
	a.Status = domain.AccountStatus(status)
	a.FailedSignIns = mapNullIntPtr(failed)
	a.SuspensionDuration = mapNullIntPtr(duration)
	a.SuspensionTimeUnit = mapNullUnitPtr(unit)
	a.SuspendedAt = mapNullTimePtr(suspendedAt)
	a.LastLogin = mapNullTimePtr(lastLogin)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func mapOptionalUnit(u *domain.TimeUnit) sql.NullString {
	if u == nil {
		return sql.NullString{Valid: false}
	}
	return mapStringNull(string(*u))
}

func mapNullUnitPtr(ns sql.NullString) *domain.TimeUnit {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	u := domain.TimeUnit(ns.String)
	return &u
}

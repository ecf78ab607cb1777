package mongodb

import (
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
)

type accountDoc struct {
	ID                 string           `bson:"_id"`
	FirstName          string           `bson:"firstName"`
	LastName           string           `bson:"lastName"`
	Username           string           `bson:"username"`
	Email              string           `bson:"email"`
	CountryPhoneCode   string           `bson:"countryPhoneCode"`
	Phone              string           `bson:"phone"`
	ProfileImage       string           `bson:"profileImage"`
	Role               string           `bson:"role"`
	ClearanceLevel     int              `bson:"clearanceLevel"`
	PasswordHash       string           `bson:"passwordHash"`
	Status             string           `bson:"status"`
	IsActive           bool             `bson:"isActive"`
	FailedSignIns      *int             `bson:"failedSignIns"`
	SuspensionDuration *int             `bson:"suspensionDuration"`
	SuspensionTimeUnit *domain.TimeUnit `bson:"suspensionTimeUnit"`
	SuspendedAt        *time.Time       `bson:"suspendedAt"`
	LastLogin          *time.Time       `bson:"lastLogin"`
	CreatedAt          time.Time        `bson:"createdAt"`
	UpdatedAt          time.Time        `bson:"updatedAt"`
}

func toAccountDoc(a domain.Account) accountDoc {
	return accountDoc{
		ID:                 a.ID,
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		Username:           a.Username,
		Email:              a.Email,
		CountryPhoneCode:   a.CountryPhoneCode,
		Phone:              a.Phone,
		ProfileImage:       a.ProfileImage,
		Role:               string(a.Role),
		ClearanceLevel:     a.ClearanceLevel,
		PasswordHash:       a.PasswordHash,
		Status:             string(a.Status),
		IsActive:           a.IsActive,
		FailedSignIns:      a.FailedSignIns,
		SuspensionDuration: a.SuspensionDuration,
		SuspensionTimeUnit: a.SuspensionTimeUnit,
		SuspendedAt:        utcPtr(a.SuspendedAt),
		LastLogin:          utcPtr(a.LastLogin),
		CreatedAt:          a.CreatedAt.UTC(),
		UpdatedAt:          a.UpdatedAt.UTC(),
	}
}

func (d accountDoc) domain() domain.Account {
	return domain.Account{
		ID:                 d.ID,
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		Username:           d.Username,
		Email:              d.Email,
		CountryPhoneCode:   d.CountryPhoneCode,
		Phone:              d.Phone,
		ProfileImage:       d.ProfileImage,
		Role:               domain.Role(d.Role),
		ClearanceLevel:     d.ClearanceLevel,
		PasswordHash:       d.PasswordHash,
		Status:             domain.AccountStatus(d.Status),
		IsActive:           d.IsActive,
		FailedSignIns:      d.FailedSignIns,
		SuspensionDuration: d.SuspensionDuration,
		SuspensionTimeUnit: d.SuspensionTimeUnit,
		SuspendedAt:        utcPtr(d.SuspendedAt),
		LastLogin:          utcPtr(d.LastLogin),
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

type attemptDoc struct {
	ID        string    `bson:"_id"`
	AccountID string    `bson:"accountID"`
	Username  string    `bson:"username"`
	Password  string    `bson:"password"`
	IPAddress string    `bson:"ipAddress,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

type otpDoc struct {
	ID        string    `bson:"_id"`
	AccountID string    `bson:"accountID"`
	Email     string    `bson:"email"`
	Purpose   string    `bson:"purpose"`
	CodeHash  string    `bson:"codeHash"`
	Duration  int       `bson:"duration"`
	TimeUnit  string    `bson:"timeUnit"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (d otpDoc) domain() domain.OneTimePasscode {
	return domain.OneTimePasscode{
		ID:        d.ID,
		AccountID: d.AccountID,
		Email:     d.Email,
		Purpose:   domain.OTPPurpose(d.Purpose),
		CodeHash:  d.CodeHash,
		Duration:  d.Duration,
		TimeUnit:  domain.TimeUnit(d.TimeUnit),
		CreatedAt: d.CreatedAt.UTC(),
		ExpiresAt: d.ExpiresAt.UTC(),
	}
}

type authTokenDoc struct {
	ID                 string    `bson:"_id"`
	AccountID          string    `bson:"accountID"`
	AccessFingerprint  string    `bson:"accessFingerprint"`
	RefreshFingerprint string    `bson:"refreshFingerprint"`
	CreatedAt          time.Time `bson:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt"`
}

func (d authTokenDoc) domain() domain.AuthTokenPair {
	return domain.AuthTokenPair{
		ID:                 d.ID,
		AccountID:          d.AccountID,
		AccessFingerprint:  d.AccessFingerprint,
		RefreshFingerprint: d.RefreshFingerprint,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

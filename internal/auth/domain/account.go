package domain

import (
	"strings"
	"time"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"
	StatusInactive  AccountStatus = "INACTIVE"
	StatusSuspended AccountStatus = "SUSPENDED"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account is a registered account holder. Suspension bookkeeping lives on the
// account itself: whenever Status is StatusSuspended the SuspendedAt,
// SuspensionDuration and SuspensionTimeUnit fields are all set.
type Account struct {
	ID               string
	FirstName        string
	LastName         string
	Username         string
	Email            string
	CountryPhoneCode string
	Phone            string
	ProfileImage     string
	Role             Role
	ClearanceLevel   int
	PasswordHash     string // argon2id PHC string (bcrypt accepted for imports)

	Status   AccountStatus
	IsActive bool // gate independent of Status, cleared permanently at the DEADLY tier

	FailedSignIns      *int // nil until failures reach the ALERT threshold
	SuspensionDuration *int
	SuspensionTimeUnit *TimeUnit
	SuspendedAt        *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name, skipping empty parts.
func (a Account) FullName() string {
	return strings.TrimSpace(strings.Join([]string{a.FirstName, a.LastName}, " "))
}

// Initials returns the upper-cased first letters of the first and last name.
func (a Account) Initials() string {
	var b strings.Builder
	for _, part := range []string{a.FirstName, a.LastName} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	return b.String()
}

// PhoneNumber is the country code and phone concatenated, or empty.
func (a Account) PhoneNumber() string {
	if a.Phone == "" {
		return ""
	}
	return a.CountryPhoneCode + a.Phone
}

// SuspendedUntil returns the moment the current suspension window ends. It
// returns the zero time when the account carries no suspension data.
func (a Account) SuspendedUntil() time.Time {
	if a.SuspendedAt == nil || a.SuspensionDuration == nil {
		return time.Time{}
	}
	unit := UnitMinutes
	if a.SuspensionTimeUnit != nil {
		unit = *a.SuspensionTimeUnit
	}
	return unit.Add(*a.SuspendedAt, *a.SuspensionDuration)
}

// FailedSignInCount dereferences FailedSignIns, treating nil as zero.
func (a Account) FailedSignInCount() int {
	if a.FailedSignIns == nil {
		return 0
	}
	return *a.FailedSignIns
}

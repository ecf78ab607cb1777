package domain

import "time"

type OTPPurpose string

const (
	PurposeSignup OTPPurpose = "Signup"
	PurposeLogin  OTPPurpose = "Login"
)

// OneTimePasscode is a hashed single-use code bound to an email and purpose.
// At most one exists per (Email, Purpose).
type OneTimePasscode struct {
	ID        string
	AccountID string
	Email     string
	Purpose   OTPPurpose
	CodeHash  string // bcrypt
	Duration  int
	TimeUnit  TimeUnit
	CreatedAt time.Time
	ExpiresAt time.Time // derived from CreatedAt, Duration and TimeUnit
}

// ExpiresAtFrom computes the end of the validity window.
func (o OneTimePasscode) ExpiresAtFrom() time.Time {
	return o.TimeUnit.Add(o.CreatedAt, o.Duration)
}

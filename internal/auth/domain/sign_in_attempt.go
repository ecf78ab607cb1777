package domain

import "time"

// SignInAttempt is one failed credential check. The submitted password is kept
// verbatim for audit; it is never compared against anything.
type SignInAttempt struct {
	ID        string
	AccountID string
	Username  string
	Password  string
	IPAddress string
	CreatedAt time.Time
}

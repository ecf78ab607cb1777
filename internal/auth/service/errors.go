package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FieldError names one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages returns the field messages in order.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Message)
	}
	return out
}

type validator struct {
	fields []FieldError
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, field+" is required")
	}
}

func (v *validator) add(field, msg string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: msg})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// NotFoundError reports a missing account, passcode or token.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateError reports a taken unique field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return "an account with this " + e.Field + " already exists" }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// TimedSuspensionError denies access until the suspension window ends.
type TimedSuspensionError struct {
	Until time.Time
}

func (e *TimedSuspensionError) Error() string {
	return "your account has been blocked until " + e.Until.UTC().Format(time.RFC1123)
}

func (e *TimedSuspensionError) Is(target error) bool { return target == ErrSuspended }

// PermanentSuspensionError denies access until the password is reset.
type PermanentSuspensionError struct{}

func (e *PermanentSuspensionError) Error() string {
	return "your account has been blocked, use the forgot password option to regain access"
}

func (e *PermanentSuspensionError) Is(target error) bool { return target == ErrSuspended }

// ConfigurationError is the only error that stops the process.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "invalid configuration: " + e.Reason }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	ErrSuspended = errors.New("account suspended")

	ErrAccountNotFound = &NotFoundError{Resource: "account"}
	ErrOTPNotFound     = &NotFoundError{Resource: "passcode"}
	ErrTokenNotFound   = &NotFoundError{Resource: "token"}

	ErrDuplicateEmail    = &DuplicateError{Field: "email"}
	ErrDuplicateUsername = &DuplicateError{Field: "username"}

	ErrInvalidCredentials          = errors.New("invalid username or password")
	ErrInvalidOTP                  = errors.New("invalid passcode")
	ErrOTPExpired                  = errors.New("passcode has expired")
	ErrOTPAttemptsExceeded         = errors.New("too many invalid passcodes, request a new one")
	ErrUnauthorizedOwnership       = errors.New("passcode does not belong to this account")
	ErrAccountDisabled             = errors.New("your account has been disabled")
	ErrPermanentSuspension   error = &PermanentSuspensionError{}
	ErrPasswordMismatch            = errors.New("password confirmation does not match")
)

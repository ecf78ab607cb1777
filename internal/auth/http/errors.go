package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// errorWriter maps service errors onto envelopes and status codes.
type errorWriter struct {
	dev bool
}

func (e *errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	code, msgs := statusFor(err)

	if code >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}

	var trace any
	if e.dev {
		trace = err.Error()
	}
	httpx.WriteErrorTrace(w, code, trace, msgs...)
}

func statusFor(err error) (int, []string) {
	var (
		verr  *service.ValidationError
		timed *service.TimedSuspensionError
		perm  *service.PermanentSuspensionError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Messages()
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest, []string{err.Error()}
	case errors.Is(err, service.ErrDuplicate):
		return http.StatusConflict, []string{err.Error()}
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOTP):
		return http.StatusUnauthorized, []string{err.Error()}
	case errors.Is(err, service.ErrUnauthorizedOwnership),
		errors.Is(err, service.ErrAccountDisabled):
		return http.StatusForbidden, []string{err.Error()}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, []string{err.Error()}
	case errors.Is(err, service.ErrOTPExpired):
		return http.StatusGone, []string{err.Error()}
	case errors.As(err, &timed):
		return http.StatusLocked, []string{timed.Error()}
	case errors.As(err, &perm):
		return http.StatusLocked, []string{perm.Error()}
	case errors.Is(err, service.ErrOTPAttemptsExceeded):
		return http.StatusTooManyRequests, []string{err.Error()}
	default:
		return http.StatusInternalServerError, []string{"internal server error"}
	}
}

package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a failed response from the service.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("authsdk: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("authsdk: %d %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// parseErrorResponse turns a non-success body into an *APIError. Bodies that
// are not envelopes keep the status code only.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && len(env.Errors) > 0 {
		apiErr.Messages = env.Errors
	}
	return apiErr
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsSuspended reports a timed or permanent account suspension.
func IsSuspended(err error) bool { return hasStatus(err, http.StatusLocked) }

func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

func IsRateLimited(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// ClearanceLookup resolves the current clearance level of an account. The
// level lives on the account, not in the token, so it is read per request.
type ClearanceLookup func(ctx context.Context, accountID string) (int, error)

// RequireClearance lets the request through only when the authenticated
// account's clearance level is at least min. It must run after AuthnMiddleware.
func RequireClearance(min int, lookup ClearanceLookup) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := AccountIDFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			level, err := lookup(r.Context(), accountID)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("clearance lookup failed", "err", err)
				WriteError(w, http.StatusUnauthorized, "account not found")
				return
			}
			if level < min {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				WriteError(w, http.StatusForbidden, "insufficient clearance level")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func mint(t *testing.T, typ jwtx.TokenType, subject string) string {
	t.Helper()
	s, err := jwtx.NewSignerHS256("", secret)
	require.NoError(t, err)
	tok, err := s.Sign(jwtx.NewClaims(typ, subject, "", time.Minute, "", nil, time.Now()))
	require.NoError(t, err)
	return tok
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	verifier := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{})

	var gotID string
	h := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = httpx.AccountIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"refresh token", "Bearer " + mint(t, jwtx.TokenRefresh, "acc-1"), http.StatusUnauthorized},
		{"access token", "Bearer " + mint(t, jwtx.TokenAccess, "acc-1"), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusUnauthorized {
				require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))
				require.Empty(t, gotID)
				return
			}
			require.Equal(t, "acc-1", gotID)
		})
	}
}

func TestRequireClearance(t *testing.T) {
	verifier := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{})
	levels := map[string]int{"low": 0, "high": 1}
	lookup := func(_ context.Context, id string) (int, error) {
		lvl, ok := levels[id]
		if !ok {
			return 0, errors.New("not found")
		}
		return lvl, nil
	}

	h := httpx.Chain(okHandler(), httpx.AuthnMiddleware(verifier), httpx.RequireClearance(1, lookup))

	tests := []struct {
		account string
		code    int
	}{
		{"high", http.StatusOK},
		{"low", http.StatusForbidden},
		{"ghost", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
			req.Header.Set("Authorization", "Bearer "+mint(t, jwtx.TokenAccess, tt.account))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestWriteEnvelope(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.WriteSuccess(rec, http.StatusCreated, "created", map[string]string{"id": "1"})

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.JSONEq(t, `{"status":true,"message":"created","data":{"id":"1"}}`, rec.Body.String())
	})

	t.Run("error never has empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.WriteError(rec, http.StatusNotFound)

		var env httpx.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		require.False(t, env.Status)
		require.Equal(t, []string{"Not Found"}, env.Errors)
	})
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentUsesRoutePattern(t *testing.T) {
	Init()
	Init()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Instrument(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /v1/items/{id}", "418"))
	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /v1/items/{id}", "418"))
	require.Equal(t, before+3, after)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")), 1.0)
}

func TestDomainCounters(t *testing.T) {
	Init()

	SignIn(OutcomeFailure)
	Suspension("ALERT")
	OTP("Login", OTPIssued)
	TokenIssued("access")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, name := range []string{
		"gatehouse_sign_in_attempts_total",
		"gatehouse_account_suspensions_total",
		"gatehouse_otp_events_total",
		"gatehouse_tokens_issued_total",
	} {
		require.True(t, strings.Contains(body, name), name)
	}
}

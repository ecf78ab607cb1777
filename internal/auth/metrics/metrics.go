// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gatehouse"

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	signIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_in_attempts_total",
			Help:      "Credential checks by outcome.",
		},
		[]string{"outcome"},
	)

	suspensions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_suspensions_total",
			Help:      "Suspensions applied, by tier.",
		},
		[]string{"tier"},
	)

	otps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_events_total",
			Help:      "Passcode lifecycle events by purpose and outcome.",
		},
		[]string{"purpose", "outcome"},
	)

	tokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Signed tokens by type.",
		},
		[]string{"type"},
	)
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			signIns, suspensions, otps, tokens,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Sign-in outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeNotFound  = "not_found"
	OutcomeSuspended = "suspended"
	OutcomeDisabled  = "disabled"
)

// Passcode outcomes.
const (
	OTPIssued   = "issued"
	OTPVerified = "verified"
	OTPInvalid  = "invalid"
	OTPExpired  = "expired"
	OTPLocked   = "locked"
)

func SignIn(outcome string)        { signIns.WithLabelValues(outcome).Inc() }
func Suspension(tier string)       { suspensions.WithLabelValues(tier).Inc() }
func OTP(purpose, outcome string)  { otps.WithLabelValues(purpose, outcome).Inc() }
func TokenIssued(tokenType string) { tokens.WithLabelValues(tokenType).Inc() }

// Instrument records RPS, latency and in-flight requests. The route label is
// the matched ServeMux pattern so unknown paths collapse into one series.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

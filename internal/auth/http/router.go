package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/metrics"
	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"

	_ "github.com/aussiebroadwan/gatehouse/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService    *service.AuthService
	AccountService *service.AccountService

	// The options below are read by ApplyRoutes.

	// Dev adds error traces to failed responses.
	Dev bool

	// EchoOTP returns freshly issued passcodes in the response body. Test
	// environments only.
	EchoOTP bool

	// CachePing is checked by /readyz when Redis backs the guards.
	CachePing func(ctx context.Context) error
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Instrument sits next to the mux so it sees the matched pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSignUp()
	r.registerLogin()
	r.registerTokens()
	r.registerAccount()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gatehouse Authentication Service API
//	@version		0.1.0
//	@description	Account authentication with progressive suspension, one-time passcode confirmation and HS256 access/refresh tokens.
//	@description
//	@description				Every response uses the envelope {status, message, errors, data}.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/gatehouse
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSignUp() {
	h := &SignUpHandler{AuthService: r.AuthService, errs: r.errorWriter(), echoOTP: r.EchoOTP}

	// Strict limits by IP: both endpoints are unauthenticated writes
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignUp),
			httpx.RateLimitByIP(httpx.AuthLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/signup/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIPAndJSONField(httpx.AuthLimit, "email"),
		),
	)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{AuthService: r.AuthService, errs: r.errorWriter(), echoOTP: r.EchoOTP}

	// Rate limited by IP + username to slow down credential stuffing
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.AuthLimit, "username"),
		),
	)
	r.Mux.Handle("POST /v1/auth/login/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIPAndJSONField(httpx.AuthLimit, "email"),
		),
	)
}

func (r *Router) registerTokens() {
	h := &RefreshHandler{AuthService: r.AuthService, errs: r.errorWriter()}

	r.Mux.Handle("POST /v1/auth/tokens/refresh",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.APILimit),
		),
	)
}

func (r *Router) registerAccount() {
	h := &MeHandler{AccountService: r.AccountService, errs: r.errorWriter()}

	secured := httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),                          // verify JWT (iss/aud/exp/typ)
		httpx.RequireClearance(1, r.AccountService.ClearanceLevel), // verified accounts only
		httpx.RateLimitByAccount(httpx.APILimit),
	)

	r.Mux.Handle("GET /v1/auth/me", secured)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.CachePing),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler())
}

func (r *Router) errorWriter() *errorWriter {
	return &errorWriter{dev: r.Dev}
}

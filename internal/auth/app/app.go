package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/guard"
	httpapi "github.com/aussiebroadwan/gatehouse/internal/auth/http"
	"github.com/aussiebroadwan/gatehouse/internal/auth/metrics"
	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store/drivers/mongodb"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/aussiebroadwan/gatehouse/pkg/mailx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	rdb      *redis.Client // nil unless a guard uses redis
	policy   *service.Policy
	mailer   mailx.Sender
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier

	// Services
	authService         *service.AuthService
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatehouse",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			File:    cfg.LogFile,
		}),
	}

	if err := cryptox.LoadPepper(app.cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	policy, err := LoadPolicy(app.cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	app.policy = policy

	if err := app.initTokens(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initRedis(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	metrics.Init()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.Driver,
		"signin_lock", app.cfg.SignInLock,
		"otp_limiter", app.cfg.OTPLimiter,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.mailer.Close(); err != nil {
		app.logger.Error("error closing mailer", "error", err)
	}

	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initTokens() error {
	signer, err := jwtx.NewSignerHS256("gatehouse", []byte(app.cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer
	app.verifier = jwtx.NewVerifierHS256([]byte(app.cfg.JWTSecret), jwtx.VerifyOptions{
		Issuer:   app.cfg.Issuer,
		Audience: app.cfg.Audience,
		Leeway:   30 * time.Second,
	})
	return nil
}

// initDatabase opens the configured store driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.Driver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.PostgresDSN)
	case DriverMongo:
		db, err = mongodb.NewStore(ctx, mongodb.Config{
			URI:         app.cfg.MongoURI,
			Database:    app.cfg.MongoDatabase,
			Timeout:     app.cfg.MongoTimeout,
			MaxPoolSize: app.cfg.MongoPoolSize,
		})
	default:
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", app.cfg.Driver, err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Driver)
	return nil
}

func (app *Application) initRedis(ctx context.Context) error {
	if !app.cfg.usesRedis() {
		return nil
	}

	app.rdb = redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := guard.Ping(pingCtx, app.rdb); err != nil {
		_ = app.rdb.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.logger.Info("redis connected", "addr", app.cfg.RedisAddr)
	return nil
}

func (app *Application) initMailer() error {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("SMTP_HOST not set, passcodes are written to the log")
		app.mailer = mailx.NewLogSender(app.logger)
		return nil
	}

	sender, err := mailx.NewSMTPSender(mailx.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	app.mailer = sender
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	otps := &service.OTPService{Store: app.db, Policy: app.policy}
	otps.Limiter = app.otpLimiter(otps)

	app.authService = &service.AuthService{
		Store:      app.db,
		Attempts:   &service.AttemptTracker{Store: app.db},
		Suspension: &service.SuspensionService{Store: app.db, Policy: app.policy},
		OTPs:       otps,
		Tokens: &service.TokenService{
			Store:      app.db,
			Signer:     app.signer,
			Verifier:   app.verifier,
			Issuer:     app.cfg.Issuer,
			Audience:   app.cfg.Audience,
			AccessTTL:  app.cfg.AccessTTL,
			RefreshTTL: app.cfg.RefreshTTL,
		},
		Mailer: app.mailer,
		Locker: app.signInLocker(),
	}
	app.accountService = &service.AccountService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.RefreshTTL,
	)
}

// otpLimiter counts wrong guesses for as long as the longest passcode lives.
func (app *Application) otpLimiter(otps *service.OTPService) *guard.Limiter {
	window := max(otps.ValidFor(domain.PurposeSignup), otps.ValidFor(domain.PurposeLogin))

	switch app.cfg.OTPLimiter {
	case GuardRedis:
		return guard.NewLimiter(guard.NewRedisCounter(app.rdb, window), "gatehouse:otp:", app.cfg.MaxOTPAttempts)
	case GuardMemory:
		return guard.NewLimiter(guard.NewMemoryCounter(window), "otp:", app.cfg.MaxOTPAttempts)
	default:
		return nil
	}
}

func (app *Application) signInLocker() guard.Locker {
	switch app.cfg.SignInLock {
	case GuardRedis:
		return guard.NewRedisLocker(app.rdb, guard.RedisLockerOptions{})
	case GuardMemory:
		return guard.NewMemoryLocker()
	default:
		return guard.NoopLocker{}
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.Dev = app.cfg.Env == "dev"
	router.EchoOTP = app.cfg.EchoOTP
	if app.rdb != nil {
		router.CachePing = func(ctx context.Context) error { return guard.Ping(ctx, app.rdb) }
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

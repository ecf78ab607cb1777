package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
)

// Guard backends for the sign-in lock and the OTP guess counter.
const (
	GuardNone   = "none"
	GuardMemory = "memory"
	GuardRedis  = "redis"
)

type Config struct {
	Env                  string        // Environment (dev, test, staging, prod) (default: dev)
	Port                 int           // HTTP server port (default: 8080)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	LogFile              string        // Optional: tee logs into a rotated file
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	// Storage
	Driver         string // sqlite, postgres, mongodb (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./auth.db)
	PostgresDSN    string // Required for the postgres driver
	MongoURI       string // Required for the mongodb driver
	MongoDatabase  string // Mongo database name (default: gatehouse)
	MongoPoolSize  uint64
	MongoTimeout   time.Duration
	PepperFile     string // File holding the password pepper (default: ./pepper)
	PolicyFile     string // Optional: YAML overriding suspension tiers and OTP durations
	EchoOTP        bool   // Return issued passcodes in responses (forced on when ENV=test)
	MaxOTPAttempts int    // Wrong guesses tolerated per passcode (default: 5)

	// Tokens
	JWTSecret  string        // Required: HS256 signing secret, at least 32 bytes
	Issuer     string        // Issuer claim (default: gatehouse)
	Audience   []string      // Optional: comma separated audience claim values
	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)

	// Guards
	SignInLock    string // none, memory, redis (default: none)
	OTPLimiter    string // none, memory, redis (default: none)
	RedisAddr     string // Required when a guard uses redis
	RedisPassword string
	RedisDB       int

	// Mail. Without SMTP_HOST passcodes are written to the log.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func LoadConfig() Config {
	cfg := Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:              os.Getenv("LOG_FILE"),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		Driver:         strings.ToLower(getEnvOrDefault("AUTH_STORE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PostgresDSN:    os.Getenv("AUTH_POSTGRES_DSN"),
		MongoURI:       os.Getenv("AUTH_MONGO_URI"),
		MongoDatabase:  getEnvOrDefault("AUTH_MONGO_DATABASE", "gatehouse"),
		MongoPoolSize:  uint64(getEnvIntOrDefault("AUTH_MONGO_POOL_SIZE", 0)),
		MongoTimeout:   getEnvDurationOrDefault("AUTH_MONGO_TIMEOUT", 10*time.Second),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		PolicyFile:     os.Getenv("AUTH_POLICY_FILE"),
		EchoOTP:        getEnvBoolOrDefault("AUTH_ECHO_OTP", false),
		MaxOTPAttempts: getEnvIntOrDefault("AUTH_OTP_MAX_ATTEMPTS", 5),

		JWTSecret:  os.Getenv("AUTH_JWT_SECRET"),
		Issuer:     getEnvOrDefault("AUTH_ISSUER", "gatehouse"),
		Audience:   splitList(os.Getenv("AUTH_AUDIENCE")),
		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", 7*24*time.Hour),

		SignInLock:    strings.ToLower(getEnvOrDefault("AUTH_SIGNIN_LOCK", GuardNone)),
		OTPLimiter:    strings.ToLower(getEnvOrDefault("AUTH_OTP_LIMITER", GuardNone)),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}

	if cfg.Env == "test" {
		cfg.EchoOTP = true
	}

	return cfg
}

// Validate reports settings the application cannot start with.
func (c Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 bytes")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	switch c.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("AUTH_POSTGRES_DSN is required for the postgres driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("AUTH_MONGO_URI is required for the mongodb driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}

	for name, mode := range map[string]string{"AUTH_SIGNIN_LOCK": c.SignInLock, "AUTH_OTP_LIMITER": c.OTPLimiter} {
		switch mode {
		case GuardNone, GuardMemory:
		case GuardRedis:
			if c.RedisAddr == "" {
				return fmt.Errorf("%s=redis requires REDIS_ADDR", name)
			}
		default:
			return fmt.Errorf("%s: unknown mode %q", name, mode)
		}
	}

	return nil
}

// usesRedis reports whether any guard needs a Redis client.
func (c Config) usesRedis() bool {
	return c.SignInLock == GuardRedis || c.OTPLimiter == GuardRedis
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "turfbook.db"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTTTL         = "24h"
	defaultPushTTL        = "86400"
	defaultPushRateLimit  = "0"
	defaultSweepInterval  = "1h"
	defaultSweepEnabled   = "true"
	defaultBookingTZ      = "UTC"
	defaultRealtimeSource = RealtimeInProcess
	defaultAppBaseURL     = "http://localhost:5173"
	defaultServiceName    = "turfbook-api"
)

const (
	RealtimeInProcess = "inprocess"
	RealtimePostgres  = "postgres"
)

// Config is everything the binaries read from the environment.
type Config struct {
	AppEnv   string
	HTTPAddr string

	// DatabaseURL is the service endpoint: a postgres:// DSN or a SQLite file.
	DatabaseURL string
	// ServiceRoleKey guards the function endpoints. Empty disables the check outside prod.
	ServiceRoleKey string

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string
	AppBaseURL         string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
	PushTTL         int
	PushRateLimit   float64

	FirebaseCredentialsFile string

	SweepEnabled    bool
	SweepInterval   time.Duration
	BookingLocation *time.Location

	RealtimeSource string

	OTLPEndpoint string
	ServiceName  string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.ServiceRoleKey = strings.TrimSpace(os.Getenv("SERVICE_ROLE_KEY"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.AppBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("APP_BASE_URL", defaultAppBaseURL)), "/")
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.VAPIDPublicKey = strings.TrimSpace(os.Getenv("VAPID_PUBLIC_KEY"))
	cfg.VAPIDPrivateKey = strings.TrimSpace(os.Getenv("VAPID_PRIVATE_KEY"))
	cfg.VAPIDSubject = strings.TrimSpace(os.Getenv("VAPID_SUBJECT"))
	cfg.FirebaseCredentialsFile = strings.TrimSpace(os.Getenv("FIREBASE_CREDENTIALS_FILE"))

	cfg.RealtimeSource = strings.ToLower(strings.TrimSpace(getEnv("REALTIME_SOURCE", defaultRealtimeSource)))
	cfg.OTLPEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	cfg.ServiceName = strings.TrimSpace(getEnv("OTEL_SERVICE_NAME", defaultServiceName))
	cfg.SweepEnabled = parseBoolEnv("SWEEP_ENABLED", defaultSweepEnabled)

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.SweepInterval, err = parseDurationEnv("SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return nil, err
	}

	cfg.PushTTL, err = parseIntEnv("PUSH_TTL_SECONDS", defaultPushTTL)
	if err != nil {
		return nil, err
	}

	cfg.PushRateLimit, err = parseFloatEnv("PUSH_RATE_LIMIT", defaultPushRateLimit)
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("BOOKING_TIMEZONE", defaultBookingTZ))
	cfg.BookingLocation, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE value %q: %w", tz, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s realtime=%s sweep_enabled=%t sweep_interval=%s push_webpush=%t push_fcm=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.RealtimeSource, cfg.SweepEnabled, cfg.SweepInterval, cfg.WebPushEnabled(), cfg.FirebaseCredentialsFile != "")

	return cfg, nil
}

// WebPushEnabled reports whether a VAPID key pair is configured.
func (c *Config) WebPushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// IsProdLike reports whether the environment needs production-grade secrets.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if cfg.PushTTL < 0 {
		return fmt.Errorf("PUSH_TTL_SECONDS must be >= 0")
	}
	if cfg.PushRateLimit < 0 {
		return fmt.Errorf("PUSH_RATE_LIMIT must be >= 0")
	}
	if cfg.RealtimeSource != RealtimeInProcess && cfg.RealtimeSource != RealtimePostgres {
		return fmt.Errorf("REALTIME_SOURCE must be one of: %s, %s", RealtimeInProcess, RealtimePostgres)
	}
	if cfg.RealtimeSource == RealtimePostgres && !IsPostgresDSN(cfg.DatabaseURL) {
		return fmt.Errorf("REALTIME_SOURCE=%s requires a postgres DATABASE_URL", RealtimePostgres)
	}
	if (cfg.VAPIDPublicKey == "") != (cfg.VAPIDPrivateKey == "") {
		return fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together")
	}
	if cfg.WebPushEnabled() && cfg.VAPIDSubject == "" {
		return fmt.Errorf("VAPID_SUBJECT must be set when web push is enabled")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.ServiceRoleKey == "" {
			return fmt.Errorf("in prod/release SERVICE_ROLE_KEY must be set")
		}
		if !IsPostgresDSN(cfg.DatabaseURL) {
			return fmt.Errorf("in prod/release DATABASE_URL must point to postgres")
		}
	}

	return nil
}

// IsPostgresDSN reports whether dsn selects the postgres driver.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

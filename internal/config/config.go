package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development secret. Load refuses it when ENV=prod.
const DefaultJWTSecret = "your_secret_key_here"

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// StoreDriver selects the persistence backend: "postgres" (default) or "memory".
	StoreDriver string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret    string
	JWTAlgorithm string

	// AccessTokenTTL is the lifetime of tokens issued by login (default 30 minutes).
	AccessTokenTTL time.Duration
	// DefaultTokenTTL is the lifetime of tokens issued on registration (default 15 minutes).
	DefaultTokenTTL time.Duration

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string
	LogLevel  string

	// CORSAllowedOrigins is set via CORS_ALLOWED_ORIGINS (comma-separated). Defaults to "*".
	CORSAllowedOrigins []string

	AuditRetentionDays int
	// AuditPruneCron is a robfig/cron expression (default "@daily"); "off" disables pruning.
	AuditPruneCron string

	// AuthRateLimitPerMinute and AuthRateLimitBurst bound /register, /login and /token per client IP.
	AuthRateLimitPerMinute int
	AuthRateLimitBurst     int

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: could not read .env", "error", err)
	}

	return Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "dev"),

		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "phonebook"),
		DBUser: getEnv("DB_USER", "phonebook"),
		DBPass: getEnv("DB_PASS", "phonebook"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:    getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAlgorithm: getEnv("JWT_ALGORITHM", "HS256"),

		AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		DefaultTokenTTL: time.Duration(getEnvInt("DEFAULT_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		AuditRetentionDays: getEnvInt("AUDIT_RETENTION_DAYS", 90),
		AuditPruneCron:     getEnv("AUDIT_PRUNE_CRON", "@daily"),

		AuthRateLimitPerMinute: getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		AuthRateLimitBurst:     getEnvInt("AUTH_RATE_LIMIT_BURST", 5),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

// Validate reports configuration that must stop the server from starting.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Env == "prod" && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in prod")
	}
	if _, ok := jwt.GetSigningMethod(c.JWTAlgorithm).(*jwt.SigningMethodHMAC); !ok {
		return fmt.Errorf("JWT_ALGORITHM %q is not an HMAC algorithm", c.JWTAlgorithm)
	}
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q must be %q or %q", c.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}
	return nil
}

// DatabaseURL returns the postgres URL form of the DSN, as golang-migrate expects.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

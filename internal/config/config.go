package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Referral     ReferralConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret              string
	AccessTokenTTLMinutes  int
	BcryptCost             int
	// Bootstrap superuser created at startup when the username is set and the account is missing.
	BootstrapAdminUsername string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// ReferralConfig tunes the referral lifecycle and the timeout sweeper.
type ReferralConfig struct {
	TimeoutHours         int
	SweepIntervalSeconds int
	SweepLockTTLSeconds  int
	CommissionAmount     decimal.Decimal
}

// RateLimitConfig throttles the public referral endpoint per client IP.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	commission, err := decimal.NewFromString(getEnv("REFERRAL_COMMISSION_AMOUNT", "75.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFERRAL_COMMISSION_AMOUNT: %w", err)
	}
	if commission.IsNegative() {
		return nil, fmt.Errorf("invalid REFERRAL_COMMISSION_AMOUNT: must not be negative")
	}

	perSecond, err := strconv.ParseFloat(getEnv("RATE_LIMIT_REFERRALS_PER_SECOND", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFERRALS_PER_SECOND: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "referral-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapAdminUsername: os.Getenv("AUTH_BOOTSTRAP_ADMIN_USERNAME"),
			BootstrapAdminEmail:    os.Getenv("AUTH_BOOTSTRAP_ADMIN_EMAIL"),
			BootstrapAdminPassword: os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Referral: ReferralConfig{
			TimeoutHours:         getEnvAsInt("REFERRAL_TIMEOUT_HOURS", 36),
			SweepIntervalSeconds: getEnvAsInt("REFERRAL_SWEEP_INTERVAL_SECONDS", 900),
			SweepLockTTLSeconds:  getEnvAsInt("REFERRAL_SWEEP_LOCK_TTL_SECONDS", 60),
			CommissionAmount:     commission,
		},
		RateLimit: RateLimitConfig{
			PerSecond: perSecond,
			Burst:     getEnvAsInt("RATE_LIMIT_REFERRALS_BURST", 5),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout is the age after which a pending request is timed out.
func (r ReferralConfig) Timeout() time.Duration {
	if r.TimeoutHours <= 0 {
		return 36 * time.Hour
	}
	return time.Duration(r.TimeoutHours) * time.Hour
}

// SweepInterval returns how often the sweeper runs; zero disables the in-process loop.
func (r ReferralConfig) SweepInterval() time.Duration {
	if r.SweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(r.SweepIntervalSeconds) * time.Second
}

// SweepLockTTL bounds how long one replica holds the sweep lock.
func (r ReferralConfig) SweepLockTTL() time.Duration {
	if r.SweepLockTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.SweepLockTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

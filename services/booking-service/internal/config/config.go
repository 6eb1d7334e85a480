package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "github.com/md-rashed-zaman/apptbook/libs/config"
	otelx "github.com/md-rashed-zaman/apptbook/libs/otel"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is the booking-service environment.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"booking-service"`
	Port        string `envconfig:"PORT" default:"8083"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	SlotWindows     string `envconfig:"SLOT_WINDOWS" default:"09:00-12:00,14:00-18:00"`
	SlotStepMinutes int    `envconfig:"SLOT_STEP_MINUTES" default:"30"`

	KafkaBrokers     string `envconfig:"KAFKA_BROKERS"`
	KafkaTopicPrefix string `envconfig:"KAFKA_TOPIC_PREFIX"`

	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	RedisDB            int    `envconfig:"REDIS_DB" default:"0"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	RateLimitFailOpen  bool   `envconfig:"RATE_LIMIT_FAIL_OPEN" default:"true"`

	CORSAllowedOrigins    []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	RequestBodyLimitBytes int64    `envconfig:"REQUEST_BODY_LIMIT_BYTES" default:"1048576"`
	RequestTimeoutSeconds int      `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"10"`

	StaffJWTSecret       string `envconfig:"STAFF_JWT_SECRET"`
	StaffUsername        string `envconfig:"STAFF_USERNAME"`
	StaffPasswordHash    string `envconfig:"STAFF_PASSWORD_HASH"`
	StaffTokenTTLMinutes int    `envconfig:"STAFF_TOKEN_TTL_MINUTES" default:"720"`

	Otel otelx.Config `envconfig:"OTEL"`
}

func Load() (Config, error) {
	var cfg Config
	if err := libconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := libconfig.ValidatePort("PORT", c.Port); err != nil {
		return err
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q (got %q)", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}
	if c.SlotStepMinutes <= 0 {
		return fmt.Errorf("SLOT_STEP_MINUTES must be positive (got %d)", c.SlotStepMinutes)
	}
	if c.StaffJWTSecret != "" {
		// Guarded routes need a working login.
		if !c.StaffLoginEnabled() {
			return fmt.Errorf("STAFF_USERNAME and STAFF_PASSWORD_HASH are required when STAFF_JWT_SECRET is set")
		}
		if c.StaffTokenTTLMinutes <= 0 {
			return fmt.Errorf("STAFF_TOKEN_TTL_MINUTES must be positive (got %d)", c.StaffTokenTTLMinutes)
		}
	}
	return nil
}

func (c Config) SlotStep() time.Duration {
	return time.Duration(c.SlotStepMinutes) * time.Minute
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) StaffTokenTTL() time.Duration {
	return time.Duration(c.StaffTokenTTLMinutes) * time.Minute
}

// StaffLoginEnabled reports whether POST /api/staff/login can issue tokens.
func (c Config) StaffLoginEnabled() bool {
	return c.StaffJWTSecret != "" && c.StaffUsername != "" && c.StaffPasswordHash != ""
}

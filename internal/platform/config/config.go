// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Auth) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Madhouse admin API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis), used for per-account recovery locks
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing. Access and refresh tokens MUST use different secrets.
	AccessTokenSecret  string        `env:"JWT_SECRET,required"`
	RefreshTokenSecret string        `env:"JWT_REFRESH_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_EXPIRES_TIME"  envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_EXPIRES_TIME" envDefault:"30d"`

	// OTPTTL is the validity window of a recovery code.
	OTPTTL time.Duration `env:"OTP_TTL" envDefault:"60m"`

	// StoreTimeout bounds every store, mail and upload call made while serving a request.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Session cookies
	CookieDomain          string `env:"COOKIE_DOMAIN"`
	AccessCookieHTTPOnly  bool   `env:"AUTH_ACCESS_COOKIE_HTTP_ONLY" envDefault:"false"`
	FallbackCookieEnabled bool   `env:"AUTH_FALLBACK_COOKIE"         envDefault:"true"`

	// AppURL is the public base URL used to build links inside outbound mail.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`

	// Outbound mail (SMTP)
	SMTPHost     string `env:"SMTP_HOST"     envDefault:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	// Object Storage (S3-compatible)
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Background jobs and batch work
	EventSweepInterval   time.Duration `env:"EVENT_SWEEP_INTERVAL"   envDefault:"1m"`
	BulkEmailConcurrency int           `env:"BULK_EMAIL_CONCURRENCY" envDefault:"10"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Durations accept a trailing day unit ("30d") on top of Go duration syntax.
	options := env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): func(value string) (interface{}, error) {
				return ParseLifetime(value)
			},
		},
	}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, options); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations that would weaken the session model.
func (c *Config) Validate() error {
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	if c.OTPTTL <= 0 {
		return errors.New("config: OTP_TTL must be positive")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("config: STORE_TIMEOUT must be positive")
	}
	if c.BulkEmailConcurrency < 1 {
		return errors.New("config: BULK_EMAIL_CONCURRENCY must be at least 1")
	}
	return nil
}

// ParseLifetime parses a lifetime such as "15m", "12h" or "30d".
//
// Values with an 's', 'm', 'h' or 'd' suffix and an integer amount are read
// directly; anything else must be valid [time.ParseDuration] syntax.
func ParseLifetime(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("config: empty duration")
	}

	unit := value[len(value)-1]
	amount, err := strconv.Atoi(value[:len(value)-1])
	if err == nil {
		switch unit {
		case 's':
			return time.Duration(amount) * time.Second, nil
		case 'm':
			return time.Duration(amount) * time.Minute, nil
		case 'h':
			return time.Duration(amount) * time.Hour, nil
		case 'd':
			return time.Duration(amount) * 24 * time.Hour, nil
		}
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid duration %q: %w", value, err)
	}
	return duration, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a trimmed slice.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

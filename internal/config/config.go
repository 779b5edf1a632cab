// Package config reads the service configuration from the environment. A
// .env file, when present, is loaded into the environment by main before
// Load runs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DatabaseDriver   string
	DatabaseURL      string
	JWTSecret        string
	TokenTTL         time.Duration
	ListenAddr       string
	AllowAdminSignup bool
	LogLevel         slog.Level
	LogFormat        string
	// Location decides which calendar day is "today" for booking checks.
	Location *time.Location
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Every problem is
// reported, not just the first.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseDriver: DriverPostgres,
		TokenTTL:       10 * time.Hour,
		ListenAddr:     ":8080",
		LogLevel:       slog.LevelInfo,
		LogFormat:      "json",
		Location:       time.UTC,
	}
	var errs []error

	if v := strings.TrimSpace(getenv("DATABASE_DRIVER")); v != "" {
		v = strings.ToLower(v)
		if v != DriverPostgres && v != DriverSQLite {
			errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, v))
		}
		cfg.DatabaseDriver = v
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set in environment or .env file"))
	}

	cfg.JWTSecret = getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET not set in environment or .env file"))
	}

	if v := getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			errs = append(errs, fmt.Errorf("TOKEN_TTL must be a positive duration, got %q", v))
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	if v := getenv("ALLOW_ADMIN_SIGNUP"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ALLOW_ADMIN_SIGNUP must be a boolean, got %q", v))
		}
		cfg.AllowAdminSignup = allow
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	if v := strings.ToLower(getenv("LOG_FORMAT")); v != "" {
		if v != "json" && v != "text" {
			errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", v))
		}
		cfg.LogFormat = v
	}

	if v := getenv("TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
		} else {
			cfg.Location = loc
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Package config reads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host           string
	Port           string
	DataDir        string
	DatabaseURL    string
	DBMaxConns     int32
	MediaDir       string
	SecretKey      string
	SessionTTL     time.Duration
	CacheTTL       time.Duration
	CacheMaxBytes  int64
	PageSize       int
	LoginURL       string
	AdminToken     string
	LoginRateLimit int
	Debug          bool
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads .env when present, then the environment. Malformed numbers and
// durations are errors, as is a missing SECRET_KEY outside debug mode.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			return fallback
		}
		return value
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		raw := env(key, strconv.Itoa(fallback))
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("%s: expected a positive integer, got %q", key, raw))
			return fallback
		}
		return n
	}
	durationVar := func(key string, fallback time.Duration) time.Duration {
		raw := env(key, fallback.String())
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: expected a positive duration, got %q", key, raw))
			return fallback
		}
		return d
	}

	debug, err := strconv.ParseBool(env("DEBUG", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("DEBUG: %w", err))
	}

	cfg := Config{
		Host:           env("HOST", ""),
		Port:           env("PORT", "8080"),
		DataDir:        env("DATA_DIR", "data/badger"),
		DatabaseURL:    env("DATABASE_URL", ""),
		DBMaxConns:     int32(intVar("DB_MAX_CONNS", 10)),
		MediaDir:       env("MEDIA_DIR", "media"),
		SecretKey:      env("SECRET_KEY", ""),
		SessionTTL:     durationVar("SESSION_TTL", 14*24*time.Hour),
		CacheTTL:       durationVar("CACHE_TTL", 20*time.Second),
		CacheMaxBytes:  int64(intVar("CACHE_MAX_BYTES", 64<<20)),
		PageSize:       intVar("PAGE_SIZE", 10),
		LoginURL:       env("LOGIN_URL", "/auth/login/"),
		AdminToken:     env("ADMIN_TOKEN", ""),
		LoginRateLimit: intVar("LOGIN_RATE_LIMIT", 10),
		Debug:          debug,
	}

	if cfg.SecretKey == "" {
		if !cfg.Debug {
			errs = append(errs, errors.New("SECRET_KEY is required unless DEBUG=true"))
		}
		cfg.SecretKey = "insecure-debug-secret"
	}

	return cfg, errors.Join(errs...)
}

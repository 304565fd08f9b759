package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/screentime-labs/tracker/backend/internal/common/constants"
	commonerrors "github.com/screentime-labs/tracker/backend/internal/common/errors"
)

// Config is built explicitly at startup and passed to each component;
// nothing reads the environment after this point.
type Config struct {
	HTTPPort       string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration

	// ResetTimezone controls which calendar day usage counters are scoped
	// to. Defaults to UTC so the reset boundary does not move with the
	// server's locale.
	ResetTimezone *time.Location

	AllowedOrigins []string
}

func Load() (Config, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}
	if len(jwtSecret) < constants.JWTSecretMinLength {
		return Config{}, fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(jwtSecret))
	}

	loc, err := loadResetTimezone(getEnv("RESET_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseURL:    databaseURL,
		JWTSecret:      jwtSecret,
		TokenTTL:       getDurationEnv("TOKEN_TTL", 24*time.Hour),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 5*time.Second),
		ResetTimezone:  loc,
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),
	}, nil
}

func loadResetTimezone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", commonerrors.ErrInvalidResetTimezone, name)
	}
	return loc, nil
}

func splitOrigins(value string) []string {
	var origins []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			origins = append(origins, s)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

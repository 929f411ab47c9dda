// Package config reads the process configuration of the kinema binary from
// KINEMA_* environment variables. Command line flags override it.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment configuration.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// FPS is the tick rate of the play loop and of the server driver.
	FPS float64 `env:"FPS" envDefault:"60"`

	HTTPAddr   string        `env:"HTTP_ADDR" envDefault:":8080"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"0s"`
	StoreDir   string        `env:"STORE_DIR" envDefault:".kinema/sessions"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MQTTBroker   string `env:"MQTT_BROKER"`
	MQTTClientID string `env:"MQTT_CLIENT_ID" envDefault:"kinema"`
	MQTTPrefix   string `env:"MQTT_PREFIX" envDefault:"kinema"`

	// EncryptionKey is a base64 AES-256 key sealing stored snapshots.
	EncryptionKey string   `env:"ENCRYPTION_KEY"`
	MaskInputs    []string `env:"MASK_INPUTS" envSeparator:","`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Hooks is a hooks.yaml file binding custom events to commands.
	Hooks string `env:"HOOKS"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "KINEMA_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.FPS <= 0 {
		return Config{}, fmt.Errorf("parse env: KINEMA_FPS must be positive, got %g", cfg.FPS)
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level. Unknown names fall back to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

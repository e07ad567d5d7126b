// Package config loads the portal configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr      string `env:"PORTAL_ADDR" envDefault:":8080"`
	DBPath    string `env:"PORTAL_DB" envDefault:"portal.db"`
	BaseURL   string `env:"PORTAL_BASE_URL" envDefault:"http://localhost:8080"`
	UploadDir string `env:"PORTAL_UPLOAD_DIR" envDefault:"uploads"`

	// JWTSecret signs the persistent credential cookie. The default is only
	// suitable for local development.
	JWTSecret     string        `env:"PORTAL_JWT_SECRET" envDefault:"dev-secret-change-me"`
	CredentialTTL time.Duration `env:"PORTAL_CREDENTIAL_TTL" envDefault:"168h"`

	// WebhookBotName is the username the Discord webhook posts under.
	WebhookBotName string        `env:"PORTAL_WEBHOOK_BOT" envDefault:"GM Portal Chronicles"`
	WebhookTimeout time.Duration `env:"PORTAL_WEBHOOK_TIMEOUT" envDefault:"10s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

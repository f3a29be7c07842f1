// Package config loads the application configuration from the environment.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// SMTPConfig holds the transport settings for outbound verification mail.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// BaseURL is the public address used to build verification links.
	BaseURL string
}

// Enabled reports whether mail sending is configured at all.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// OIDCConfig holds the optional SSO settings.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO login is configured.
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != "" && c.ClientID != ""
}

// Config is the explicit configuration object handed to collaborators at
// startup; nothing reads the environment after Load.
type Config struct {
	Addr        string
	DatabaseURL string
	// ProductsFile optionally points at a JSON catalog used to seed an
	// empty products table.
	ProductsFile string
	SMTP         SMTPConfig
	OIDC         OIDCConfig
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:         env("ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ProductsFile: os.Getenv("PRODUCTS_FILE"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     env("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			BaseURL:  env("PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		OIDC: OIDCConfig{
			IssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

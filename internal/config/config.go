// Package config loads the server configuration from the environment.
//
// A .env file is read first when present; real environment variables win
// over it. Every key has a default except the secrets.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DBPath      string `env:"DB_PATH" envDefault:"data/letterplay.db"`
	TemplateDir string `env:"TEMPLATE_DIR"` // empty: embedded templates
	StaticDir   string `env:"STATIC_DIR"`   // empty: embedded assets

	JWTSecret string `env:"JWT_SECRET"`

	APIBaseURL         string        `env:"API_BASE_URL"`
	ExternalCatalogURL string        `env:"EXTERNAL_CATALOG_URL"`
	HTTPClientTimeout  time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"`
	PageCacheSize      int           `env:"PAGE_CACHE_SIZE" envDefault:"256"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"debug"`
	DefaultLang string `env:"DEFAULT_LANG" envDefault:"pt-BR"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL"`

	// EphemeralSecret is set when JWT_SECRET was missing and a random one
	// was generated. Sessions then do not survive a restart.
	EphemeralSecret bool `env:"-"`
}

// Load reads envFile (if it exists) and then the process environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	if c.GitHubCallbackURL == "" {
		c.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", c.Port)
	}
	if c.JWTSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generating JWT secret: %w", err)
		}
		c.JWTSecret = hex.EncodeToString(buf)
		c.EphemeralSecret = true
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d is out of range", c.Port))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH: must not be empty"))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET: must be at least 16 characters"))
	}
	if !isHTTPURL(c.APIBaseURL) {
		errs = append(errs, fmt.Errorf("API_BASE_URL: %q is not an http(s) URL", c.APIBaseURL))
	}
	if c.ExternalCatalogURL != "" && !isHTTPURL(c.ExternalCatalogURL) {
		errs = append(errs, fmt.Errorf("EXTERNAL_CATALOG_URL: %q is not an http(s) URL", c.ExternalCatalogURL))
	}
	if !isHTTPURL(c.GitHubCallbackURL) {
		errs = append(errs, fmt.Errorf("GITHUB_CALLBACK_URL: %q is not an http(s) URL", c.GitHubCallbackURL))
	}
	if c.HTTPClientTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_CLIENT_TIMEOUT: must be positive"))
	}
	if c.PageCacheSize <= 0 {
		errs = append(errs, errors.New("PAGE_CACHE_SIZE: must be positive"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns LOG_LEVEL as a slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// GitHubEnabled reports whether GitHub login is configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func isHTTPURL(s string) bool {
	if !govalidator.IsURL(s) {
		return false
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

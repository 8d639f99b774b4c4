// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Port        int    `envconfig:"PORT" default:"8080"`

	// Content and assets. An empty ContentPath serves the embedded site.
	ContentPath string `envconfig:"CONTENT_PATH"`
	ImagesDir   string `envconfig:"IMAGES_DIR" default:"./images"`
	DBPath      string `envconfig:"DB_PATH" default:"portfolio.db"`

	// Carousel timing
	AutoAdvanceInterval time.Duration `envconfig:"CAROUSEL_AUTO_ADVANCE" default:"4s"`
	TransitionLock      time.Duration `envconfig:"CAROUSEL_TRANSITION_LOCK" default:"500ms"`
	SettleDelay         time.Duration `envconfig:"CAROUSEL_SETTLE_DELAY" default:"300ms"`
	PlaceholderRef      string        `envconfig:"CAROUSEL_PLACEHOLDER" default:"/static/img/placeholder.svg"`

	// Visitor sessions
	SessionCapacity int           `envconfig:"SESSION_CAPACITY" default:"1000"`
	SessionIdleTTL  time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`

	// Contact form. The relay takes precedence over SMTP when both are set.
	ContactRelayURL   string        `envconfig:"CONTACT_RELAY_URL"`
	ContactTimeout    time.Duration `envconfig:"CONTACT_TIMEOUT" default:"10s"`
	ContactRetries    int           `envconfig:"CONTACT_RETRIES" default:"3"`
	ContactRatePerMin int           `envconfig:"CONTACT_RATE_PER_MINUTE" default:"3"`
	SMTPHost          string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort          string        `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser          string        `envconfig:"SMTP_USER"`
	SMTPPass          string        `envconfig:"SMTP_PASS"`
	ToEmail           string        `envconfig:"TO_EMAIL"`

	// Admin dashboard
	AdminUsername    string        `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword    string        `envconfig:"ADMIN_PASSWORD"`
	VisitorRetention time.Duration `envconfig:"VISITOR_RETENTION" default:"8760h"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// RelayEnabled returns true if a form relay endpoint is configured.
func (c *Config) RelayEnabled() bool {
	return c.ContactRelayURL != ""
}

// SMTPEnabled returns true if SMTP credentials and a recipient are configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.AutoAdvanceInterval <= 0 {
		errs = append(errs, errors.New("CAROUSEL_AUTO_ADVANCE must be positive"))
	}
	if c.TransitionLock < 0 || c.SettleDelay < 0 {
		errs = append(errs, errors.New("carousel lock durations must not be negative"))
	}
	if c.SessionCapacity < 1 {
		errs = append(errs, errors.New("SESSION_CAPACITY must be at least 1"))
	}
	if c.SessionIdleTTL <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must be positive"))
	}
	if c.ContactRetries < 1 {
		errs = append(errs, errors.New("CONTACT_RETRIES must be at least 1"))
	}
	if !c.IsDevelopment() && c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required outside development"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

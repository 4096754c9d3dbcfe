package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SMTPConfig holds the outbound mail relay settings. Host, username and
// password are required before any notification can be sent; their absence is
// a per-operation configuration error, not a startup failure.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Secure   bool   `yaml:"secure"`
}

// Configured reports whether the relay settings are complete enough to send.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Username != "" && s.Password != ""
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // When set, logs rotate through this file.
}

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Production    bool   `yaml:"production"`
	PublicBaseURL string `yaml:"public-base-url"`

	DatabaseDSN   string `yaml:"database-dsn"`
	SessionSecret string `yaml:"session-secret"`

	// AdminEmails is the fixed allow-list of administrator addresses. It is
	// lower-cased into an immutable set at load time; membership gates every
	// admin operation.
	AdminEmails []string `yaml:"admin-emails"`

	// SupportRecipients receive new-ticket and reopen notifications. Defaults
	// to the admin allow-list when empty.
	SupportRecipients []string `yaml:"support-recipients"`

	SMTP SMTPConfig `yaml:"smtp"`
	Log  LogConfig  `yaml:"log"`

	allowList map[string]struct{}
}

// Load reads the YAML config at path, applies .env and environment overrides
// and validates the result. The session signing secret is required; a missing
// secret is a startup-time fatal error by contract.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Host: "0.0.0.0",
		Port: 8080,
		SMTP: SMTPConfig{Port: 587},
		Log:  LogConfig{Level: "info"},
	}

	if path != "" {
		data, errRead := os.ReadFile(path)
		if errRead != nil && !os.IsNotExist(errRead) {
			return nil, fmt.Errorf("config: read %s: %w", path, errRead)
		}
		if errRead == nil {
			if errParse := yaml.Unmarshal(data, cfg); errParse != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, errParse)
			}
		}
	}

	applyEnvOverrides(cfg)

	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("config: session secret is required (SESSION_SECRET)")
	}
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, errors.New("config: database DSN is required (DATABASE_DSN)")
	}

	cfg.allowList = make(map[string]struct{}, len(cfg.AdminEmails))
	for i, email := range cfg.AdminEmails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		cfg.AdminEmails[i] = normalized
		if normalized != "" {
			cfg.allowList[normalized] = struct{}{}
		}
	}
	if len(cfg.SupportRecipients) == 0 {
		cfg.SupportRecipients = append([]string(nil), cfg.AdminEmails...)
	}
	return cfg, nil
}

// AllowedAdmin reports whether email (already lower-cased by the caller) is in
// the admin allow-list.
func (c *Config) AllowedAdmin(email string) bool {
	_, ok := c.allowList[email]
	return ok
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = v
	}
	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		cfg.AdminEmails = splitList(v)
	}
	if v := os.Getenv("SUPPORT_RECIPIENTS"); v != "" {
		cfg.SupportRecipients = splitList(v)
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.SMTP.From = v
	}
	if v := os.Getenv("SMTP_SECURE"); v != "" {
		cfg.SMTP.Secure = v == "true"
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Production = v == "production"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Package config loads the housesplit TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mmynk/housesplit/internal/auth"
	"github.com/mmynk/housesplit/internal/models"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "housesplit.toml"

var (
	ErrNoMembers       = errors.New("at least one member must be configured")
	ErrDuplicateMember = errors.New("duplicate member id")
	ErrMissingSecret   = errors.New("auth.jwt_secret is required")
)

// Config holds all housesplit configuration.
type Config struct {
	Server  ServerConfig   `toml:"server"`
	Storage StorageConfig  `toml:"storage"`
	Auth    AuthConfig     `toml:"auth"`
	Notify  NotifyConfig   `toml:"notify"`
	Log     LogConfig      `toml:"log"`
	Members []MemberConfig `toml:"members"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StorageConfig holds the SQLite database location.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// AuthConfig holds session settings. TokenTTL is a Go duration string such as "720h".
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"`
}

// NotifyConfig holds the Redis change feed. An empty RedisAddr disables notifications.
type NotifyConfig struct {
	RedisAddr string `toml:"redis_addr,omitempty"`
	Channel   string `toml:"channel"`
}

// LogConfig selects the log level (debug, info, warn, error) and format (text, json).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MemberConfig is one household member. PINHash is produced by `housesplit hash-pin`.
type MemberConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	PINHash string `toml:"pin_hash,omitempty"`
}

// DefaultConfig returns the default configuration. It has no members.
func DefaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{DBPath: "./data/housesplit.db"},
		Auth:    AuthConfig{TokenTTL: "720h"},
		Notify:  NotifyConfig{Channel: "housesplit:changes"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config file at path, returning defaults if it doesn't exist.
// Environment overrides are applied in both cases.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key   string
		field *string
	}{
		{"HOUSESPLIT_ADDR", &c.Server.Addr},
		{"HOUSESPLIT_DB_PATH", &c.Storage.DBPath},
		{"HOUSESPLIT_JWT_SECRET", &c.Auth.JWTSecret},
		{"HOUSESPLIT_REDIS_ADDR", &c.Notify.RedisAddr},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.field = v
		}
	}
}

// Validate checks the settings every command relies on.
func (c Config) Validate() error {
	if len(c.Members) == 0 {
		return ErrNoMembers
	}
	seen := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		if m.ID == "" {
			return fmt.Errorf("member %q: id is required", m.Name)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m.ID)
		}
		seen[m.ID] = true
	}
	if _, err := c.TokenTTL(); err != nil {
		return err
	}
	return nil
}

// ValidateServer adds the checks needed to serve the API.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	return nil
}

// TokenTTL parses auth.token_ttl.
func (c Config) TokenTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("auth.token_ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("auth.token_ttl must be positive, got %s", ttl)
	}
	return ttl, nil
}

// Household returns the members in configured order, which is the canonical order.
func (c Config) Household() []models.Member {
	members := make([]models.Member, len(c.Members))
	for i, m := range c.Members {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		members[i] = models.Member{ID: models.MemberID(m.ID), Name: name}
	}
	return members
}

// Credentials returns the login credentials of every member.
func (c Config) Credentials() []auth.Credential {
	household := c.Household()
	creds := make([]auth.Credential, len(household))
	for i, m := range household {
		creds[i] = auth.Credential{Member: m, PINHash: c.Members[i].PINHash}
	}
	return creds
}

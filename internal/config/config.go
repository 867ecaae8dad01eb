// Package config loads server settings from an optional file, the
// environment and a .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "SPLITFLOW"

type Config struct {
	HTTP struct {
		Address string `default:":8080" env:"SPLITFLOW_HTTP_ADDRESS"`
	}

	Auth struct {
		// TokenSecret signs session tokens. Empty means a random secret
		// per process.
		TokenSecret string `env:"SPLITFLOW_TOKEN_SECRET"`
		TokenTTL    string `default:"24h" env:"SPLITFLOW_TOKEN_TTL"`
	}

	Session struct {
		IdleTTL string `default:"2h" env:"SPLITFLOW_SESSION_IDLE_TTL"`
		// JanitorSchedule is a five-field cron spec or a descriptor like "@every 5m".
		JanitorSchedule string `default:"*/5 * * * *" env:"SPLITFLOW_JANITOR_SCHEDULE"`
	}

	Dashboard struct {
		ExplorerURL string `default:"https://etherscan.io/address/" env:"SPLITFLOW_EXPLORER_URL"`
	}

	Log struct {
		Level string `default:"info" env:"SPLITFLOW_LOG_LEVEL"`
		// File, when set, also writes JSON logs to a rotated file.
		File string `env:"SPLITFLOW_LOG_FILE"`
	}
}

// Load reads .env (if present), then confPath (if non-empty), then the
// environment, filling anything left unset from defaults.
func Load(confPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	c := &Config{}
	var files []string
	if confPath != "" {
		if _, err := os.Stat(confPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		files = append(files, confPath)
	}
	if err := configor.New(&configor.Config{ENVPrefix: EnvPrefix}).Load(c, files...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if c.Auth.TokenSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		c.Auth.TokenSecret = secret
		slog.Warn("No token secret configured, generated a random one", "env", "SPLITFLOW_TOKEN_SECRET")
	}

	if _, err := c.TokenTTL(); err != nil {
		return nil, err
	}
	if _, err := c.IdleTTL(); err != nil {
		return nil, err
	}
	return c, nil
}

// TokenTTL is how long a session token stays valid.
func (c *Config) TokenTTL() (time.Duration, error) {
	return parseDuration("token TTL", c.Auth.TokenTTL)
}

// IdleTTL is how long an untouched session is kept.
func (c *Config) IdleTTL() (time.Duration, error) {
	return parseDuration("session idle TTL", c.Session.IdleTTL)
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, value)
	}
	return d, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// .env file doesn't exist, just return without an error
		return nil
	}
	return godotenv.Load(path)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

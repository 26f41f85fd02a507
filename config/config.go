// Package config assembles the server configuration from defaults, an
// optional JSON file, the environment (including a .env file) and
// command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
)

// Config holds runtime settings for the dashboard server.
//
// Fields:
//   - ListenAddr: HTTP bind address.
//   - DataDir: directory whose .csv files are offered for plotting.
//   - UsersFile: credential file used when no database is configured.
//   - DatabaseDSN: optional MySQL DSN; when set credentials live in MySQL.
//   - SessionSecret: key for signing session cookies. Required.
//   - OTPEnabled: require a TOTP code after the password.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ListenAddr    string
	DataDir       string
	UsersFile     string
	DatabaseDSN   string
	SessionSecret string
	OTPEnabled    bool
	LogLevel      string
}

// LoadDefaults populates Config with development defaults. There is no
// default session secret.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.DataDir = "data"
	c.UsersFile = "users.csv"
	c.DatabaseDSN = ""
	c.SessionSecret = ""
	c.OTPEnabled = false
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET_KEY environment variable is not set or empty")
	}
	if c.ListenAddr == "" {
		return errors.New("listen address is empty")
	}
	if c.DataDir == "" {
		return errors.New("data directory is empty")
	}
	if c.DatabaseDSN == "" && c.UsersFile == "" {
		return errors.New("either a users file or a database DSN is required")
	}
	return nil
}

// LoadConfig builds a Config from args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. After LoadConfig reads the YAML
// file, deployment-specific values may be overridden via environment
// variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Admin struct {
		// Account is the fixed arbiter identity. It never rotates for the
		// lifetime of the process; losing it means losing the admin surface.
		Account string `yaml:"account"`
	} `yaml:"admin"`

	Payout struct {
		URL        string `yaml:"url"`
		TimeoutSec int    `yaml:"timeout_sec"`
		Currency   string `yaml:"currency"`
	} `yaml:"payout"`

	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`

	Storage struct {
		// Path overrides the default database location under the user
		// config directory. Empty means use the default.
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Payout.TimeoutSec <= 0 {
		c.Payout.TimeoutSec = 10
	}
	if c.Payout.Currency == "" {
		c.Payout.Currency = "USD"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "localhost:8080"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Admin.Account == "" {
		return fmt.Errorf("admin account is required")
	}
	if c.Payout.URL == "" || (!hasPrefix(c.Payout.URL, "http://") && !hasPrefix(c.Payout.URL, "https://")) {
		return fmt.Errorf("invalid payout URL: %s", c.Payout.URL)
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv applies environment variable overrides for values that
// differ per deployment or must not live in the config file.
func overrideWithEnv(cfg *Config) {
	if account := os.Getenv("ESCROW_ADMIN_ACCOUNT"); account != "" {
		cfg.Admin.Account = account
	}
	if url := os.Getenv("ESCROW_PAYOUT_URL"); url != "" {
		cfg.Payout.URL = url
	}
	if addr := os.Getenv("ESCROW_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if path := os.Getenv("ESCROW_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}

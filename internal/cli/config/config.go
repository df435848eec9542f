package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

const defaultServer = "http://localhost:8080"

// Config is the dietctl state persisted between runs.
type Config struct {
	Server      string `json:"server"`
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// Path returns the config file location, ~/.dietctl/config.json unless
// DIETCTL_HOME points elsewhere.
func Path() (string, error) {
	if dir := os.Getenv("DIETCTL_HOME"); dir != "" {
		return filepath.Join(dir, "config.json"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dietctl", "config.json"), nil
}

// Load reads the config file. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{Server: defaultServer}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Server == "" {
		cfg.Server = defaultServer
	}
	return &cfg, nil
}

// Save writes the config with user-only permissions.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token has been stored.
func (c *Config) IsAuthenticated() bool {
	return c.AccessToken != ""
}

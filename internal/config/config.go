// Package config loads tapoctl configuration from a TOML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds everything tapoctl needs to reach one device.
type Config struct {
	// Address is the device IP or hostname.
	Address string `toml:"address"`
	// Username is the cloud account username (usually an email address).
	Username string `toml:"username"`
	// Password is the cloud account password.
	Password string `toml:"password"`
	// Debug enables verbose protocol logging.
	Debug bool `toml:"debug"`
}

// Load reads the config file at path (skipped when path is empty) and then
// applies TAPO_ADDRESS, TAPO_USERNAME and TAPO_PASSWORD overrides from the
// environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if v := os.Getenv("TAPO_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("TAPO_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("TAPO_PASSWORD"); v != "" {
		cfg.Password = v
	}
	return &cfg, nil
}

// Validate reports the first missing required field.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("device address is required")
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

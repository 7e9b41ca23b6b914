// Package config provides configuration management for VPN Supervisor.
// It handles loading, saving, and managing application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vpn-supervisor/common"
	"github.com/yllada/vpn-supervisor/trust"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// LogLevel sets the minimum logging level: "debug", "info", "warn",
	// or "error".
	LogLevel string `yaml:"log_level"`
	// VerifyKeys overrides the built-in trusted verify keys. Each entry
	// is a base64-encoded public key. Empty means use the built-ins.
	VerifyKeys []string `yaml:"verify_keys"`
	// ActivateRetryDelayMs is how many milliseconds to wait before the
	// single re-resolution attempt during activation. Zero means the
	// built-in default.
	ActivateRetryDelayMs int `yaml:"activate_retry_delay_ms"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:             "info",
		VerifyKeys:           nil,
		ActivateRetryDelayMs: 0,
	}
}

// Load loads the configuration from the config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, common.WrapError(err, common.ErrConfigLoad.Error())
	}

	// If it doesn't exist, return default configuration
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	return &config, nil
}

// validate verifies that configuration values are valid
func (c *Config) validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !common.StringInSlice(c.LogLevel, validLevels) {
		c.LogLevel = "info" // Fallback to default
	}

	if c.ActivateRetryDelayMs < 0 {
		c.ActivateRetryDelayMs = 0
	}

	// Configured keys must at least decode; a typo here would silently
	// disable signature verification otherwise.
	for _, key := range c.VerifyKeys {
		if _, err := trust.DecodeKey(key); err != nil {
			return fmt.Errorf("invalid verify key %q: %v", key, err)
		}
	}
	return nil
}

// Save saves the configuration to the file
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return common.WrapError(err, common.ErrConfigSave.Error())
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}

// Level maps the configured log level onto the logger's levels.
func (c *Config) Level() common.LogLevel {
	switch c.LogLevel {
	case "debug":
		return common.LevelDebug
	case "warn":
		return common.LevelWarn
	case "error":
		return common.LevelError
	default:
		return common.LevelInfo
	}
}

// TrustedKeys returns the verify keys to use: the configured override
// when present, the built-in set otherwise.
func (c *Config) TrustedKeys() []string {
	if len(c.VerifyKeys) > 0 {
		return c.VerifyKeys
	}
	return trust.DefaultVerifyKeys
}

// RetryDelay returns the activation retry delay to use.
func (c *Config) RetryDelay() time.Duration {
	if c.ActivateRetryDelayMs > 0 {
		return time.Duration(c.ActivateRetryDelayMs) * time.Millisecond
	}
	return common.ActivateRetryDelay
}

func getConfigPath() (string, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, common.ConfigFileName), nil
}

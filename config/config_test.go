package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yllada/vpn-supervisor/common"
	"github.com/yllada/vpn-supervisor/trust"
)

// useTempHome redirects the config directory to a temp dir.
func useTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return filepath.Join(home, ".config", common.ConfigDirName, common.ConfigFileName)
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := useTempHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level 'info', got %q", cfg.LogLevel)
	}
	if !common.FileExists(path) {
		t.Error("Load should write a default config file")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	useTempHome(t)

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.ActivateRetryDelayMs = 250
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got %q", loaded.LogLevel)
	}
	if loaded.ActivateRetryDelayMs != 250 {
		t.Errorf("Expected retry delay 250, got %d", loaded.ActivateRetryDelayMs)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := useTempHome(t)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("log_level: info\nbogus_field: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); !errors.Is(err, common.ErrConfigLoad) {
		t.Fatalf("Expected ErrConfigLoad for unknown field, got %v", err)
	}
}

func TestLoadRejectsMalformedVerifyKey(t *testing.T) {
	path := useTempHome(t)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	content := "log_level: info\nverify_keys:\n  - not-a-key\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); !errors.Is(err, common.ErrConfigLoad) {
		t.Fatalf("Expected ErrConfigLoad for bad verify key, got %v", err)
	}
}

func TestValidateFallsBackOnBadValues(t *testing.T) {
	cfg := &Config{LogLevel: "loud", ActivateRetryDelayMs: -5}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level fallback to 'info', got %q", cfg.LogLevel)
	}
	if cfg.ActivateRetryDelayMs != 0 {
		t.Errorf("Expected retry delay fallback to 0, got %d", cfg.ActivateRetryDelayMs)
	}
}

func TestLevelMapping(t *testing.T) {
	tests := []struct {
		level    string
		expected common.LogLevel
	}{
		{"debug", common.LevelDebug},
		{"info", common.LevelInfo},
		{"warn", common.LevelWarn},
		{"error", common.LevelError},
		{"bogus", common.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		if got := cfg.Level(); got != tt.expected {
			t.Errorf("Level() for %q = %v, expected %v", tt.level, got, tt.expected)
		}
	}
}

func TestTrustedKeysDefaultsToBuiltins(t *testing.T) {
	cfg := DefaultConfig()
	keys := cfg.TrustedKeys()
	if len(keys) != len(trust.DefaultVerifyKeys) {
		t.Fatalf("Expected %d built-in keys, got %d", len(trust.DefaultVerifyKeys), len(keys))
	}

	cfg.VerifyKeys = []string{trust.DefaultVerifyKeys[0]}
	if got := cfg.TrustedKeys(); len(got) != 1 {
		t.Errorf("Expected configured override to win, got %d keys", len(got))
	}
}

func TestRetryDelay(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.RetryDelay(); got != common.ActivateRetryDelay {
		t.Errorf("Expected built-in retry delay, got %v", got)
	}

	cfg.ActivateRetryDelayMs = 250
	if got := cfg.RetryDelay(); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", got)
	}
}

// Package config implements the ambient configuration layer (spec.md §9):
// a TOML file read once at startup, grounded on the teacher's
// config.Config/DefaultConfig/GetConfigPath pattern and re-targeted at the
// assembler's own settings — diagnostics, lint, and the optional HTTP
// service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the assembler's full configuration surface.
type Config struct {
	Diagnostics struct {
		Verbose bool `toml:"verbose"`
		Color   bool `toml:"color"`
	} `toml:"diagnostics"`

	Lint struct {
		Enabled          bool `toml:"enabled"`
		WarnUnusedLabels bool `toml:"warn_unused_labels"`
	} `toml:"lint"`

	Server struct {
		DefaultAddr string `toml:"default_addr"`
	} `toml:"server"`
}

// DefaultConfig returns the configuration used when the config file being
// loaded does not exist; settings present in a loaded file override it.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Diagnostics.Verbose = false
	cfg.Diagnostics.Color = true
	cfg.Lint.Enabled = true
	cfg.Lint.WarnUnusedLabels = true
	cfg.Server.DefaultAddr = ":8085"
	return cfg
}

// GetConfigPath returns the platform-specific default config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "r32asm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "r32asm.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "r32asm")

	default:
		return "r32asm.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "r32asm.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to defaults when
// the file does not exist. An explicit -config flag that names a missing
// file is a user error and should be reported as such by the caller.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

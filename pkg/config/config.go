// Package config loads and saves the user's settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/james-see/soundpalette/pkg/sysex/devices"
)

// ServerConfig holds the API server settings
type ServerConfig struct {
	Port int `json:"port,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Profile  string       `json:"profile,omitempty"`
	DeviceID int          `json:"deviceId"`
	Division int          `json:"division,omitempty"`
	// Spacing is the number of ticks between messages read from .syx files.
	Spacing  int          `json:"spacing"`
	Tempo    float64      `json:"tempo,omitempty"`
	Server   ServerConfig `json:"server,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Profile:  "gs",
		DeviceID: 0x10,
		Division: 480,
		Tempo:    120,
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "soundpalette"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep
// their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if _, ok := devices.Default().Profile(c.Profile); !ok {
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	if c.DeviceID < 0 || c.DeviceID > 0x7F {
		return fmt.Errorf("device ID %d out of range 0-127", c.DeviceID)
	}
	if c.Division < 1 || c.Division > 0x7FFF {
		return fmt.Errorf("division %d out of range 1-32767", c.Division)
	}
	if c.Spacing < 0 || c.Spacing > 0x0FFFFFFF {
		return fmt.Errorf("spacing %d out of range", c.Spacing)
	}
	if c.Tempo < 0 || c.Tempo > 1000 {
		return fmt.Errorf("tempo %g out of range 0-1000", c.Tempo)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	return nil
}

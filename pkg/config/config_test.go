package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("LoadFrom() = %+v, want defaults", cfg)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Profile = "sc55"
	cfg.DeviceID = 0x11
	cfg.Spacing = 24
	cfg.Server.Port = 9000

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("LoadFrom() = %+v, want %+v", got, cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"profile": "sc7"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Profile != "sc7" || cfg.DeviceID != 0x10 || cfg.Division != 480 {
		t.Errorf("LoadFrom() = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"broadcast device", func(c *Config) { c.DeviceID = 0x7F }, true},
		{"unknown profile", func(c *Config) { c.Profile = "d50" }, false},
		{"device too big", func(c *Config) { c.DeviceID = 0x80 }, false},
		{"zero division", func(c *Config) { c.Division = 0 }, false},
		{"SMPTE division", func(c *Config) { c.Division = 0x8000 }, false},
		{"negative spacing", func(c *Config) { c.Spacing = -1 }, false},
		{"port", func(c *Config) { c.Server.Port = 70000 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); (err == nil) != tt.valid {
				t.Errorf("Validate() error = %v, valid = %v", err, tt.valid)
			}
		})
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	for _, content := range []string{`{`, `{"deviceId": 200}`} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Errorf("LoadFrom(%s) should fail", content)
		}
	}
}

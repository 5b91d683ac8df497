// Package config loads optional user defaults for sway-mirror.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pescheckit/sway-mirror/internal/scaling"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Scale       string   `yaml:"scale"`
	Cursor      bool     `yaml:"cursor"`
	Workspaces  bool     `yaml:"workspaces"`
	InhibitIdle bool     `yaml:"inhibit_idle"`
	Targets     []string `yaml:"targets"`
	LogLevel    string   `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Scale:       scaling.Fit.String(),
		Cursor:      true,
		Workspaces:  true,
		InhibitIdle: true,
		LogLevel:    "info",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/sway-mirror/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sway-mirror", "config.yaml")
}

// Load starts from Default, overlays the file at path if it exists and then
// the SWAY_MIRROR_* environment.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if _, err := cfg.ScaleMode(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SWAY_MIRROR_SCALE"); v != "" {
		c.Scale = v
	}
	if v := os.Getenv("SWAY_MIRROR_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{"SWAY_MIRROR_CURSOR", &c.Cursor},
		{"SWAY_MIRROR_WORKSPACES", &c.Workspaces},
	}
	for _, b := range bools {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.env, err)
		}
		*b.dst = parsed
	}
	return nil
}

func (c Config) ScaleMode() (scaling.Mode, error) {
	return scaling.ParseMode(c.Scale)
}

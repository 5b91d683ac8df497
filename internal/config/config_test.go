package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pescheckit/sway-mirror/internal/scaling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SWAY_MIRROR_SCALE", "SWAY_MIRROR_CURSOR", "SWAY_MIRROR_WORKSPACES", "SWAY_MIRROR_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	mode, err := cfg.ScaleMode()
	require.NoError(t, err)
	assert.Equal(t, scaling.Fit, mode)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
scale: Fill
cursor: false
targets:
  - HDMI-A-1
  - DP-2
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Scale:       "Fill",
		Cursor:      false,
		Workspaces:  true,
		InhibitIdle: true,
		Targets:     []string{"HDMI-A-1", "DP-2"},
		LogLevel:    "debug",
	}, cfg)

	mode, err := cfg.ScaleMode()
	require.NoError(t, err)
	assert.Equal(t, scaling.Fill, mode)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{name: "malformed yaml", content: "scale: [fit", wantErr: "parse config"},
		{name: "bad scale", content: "scale: zoom", wantErr: "unknown scale mode"},
		{name: "bad env bool", env: map[string]string{"SWAY_MIRROR_CURSOR": "maybe"}, wantErr: "SWAY_MIRROR_CURSOR"},
		{name: "bad env scale", env: map[string]string{"SWAY_MIRROR_SCALE": "tile"}, wantErr: "unknown scale mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SWAY_MIRROR_SCALE", "center")
	t.Setenv("SWAY_MIRROR_CURSOR", "true")
	t.Setenv("SWAY_MIRROR_WORKSPACES", "0")
	t.Setenv("SWAY_MIRROR_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "scale: stretch\ncursor: false\n"))
	require.NoError(t, err)
	assert.Equal(t, "center", cfg.Scale)
	assert.True(t, cfg.Cursor)
	assert.False(t, cfg.Workspaces)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	assert.Equal(t, "/tmp/cfg/sway-mirror/config.yaml", DefaultPath())
}

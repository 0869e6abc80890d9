package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10*time.Second, cfg.AddWindowTimeout())
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval())
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, res.File)
	assert.Equal(t, DefaultConfig(), res.Config)
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("# empty\n"), 0644))

	res, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, res.File)
	assert.Equal(t, 0.6, res.Config.Layout.ActiveScale)
}

func TestLoadFromPath_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := strings.Join([]string{
		"screen:",
		"  width: 1280",
		"  height: 800",
		"gestures:",
		"  axis_lock_distance: 12",
		"debug:",
		"  strict_invariants: true",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	res, err := LoadFromPath(path)
	require.NoError(t, err)
	cfg := res.Config
	assert.Equal(t, 1280, cfg.Screen.Width)
	assert.Equal(t, 800, cfg.Screen.Height)
	assert.Equal(t, 48, cfg.Screen.GestureStrip, "unset fields keep defaults")
	assert.Equal(t, 12.0, cfg.Gestures.AxisLockDistance)
	assert.True(t, cfg.Debug.StrictInvariants)
}

func TestLoadFromPath_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layuot:\n  active_scale: 0.5\n"), 0644))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layuot")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero screen", func(c *Config) { c.Screen.Width = 0 }, "screen"},
		{"active scale", func(c *Config) { c.Layout.ActiveScale = 1.5 }, "layout.active_scale"},
		{"non active larger", func(c *Config) { c.Layout.NonActiveScale = 0.9 }, "layout.non_active_scale"},
		{"no fan weights", func(c *Config) { c.Layout.FanWeights = nil }, "layout.fan_weights"},
		{"increasing weights", func(c *Config) { c.Layout.FanWeights = []float64{0.2, 0.5} }, "layout.fan_weights[1]"},
		{"pack step", func(c *Config) { c.Layout.FanPackStep = 0 }, "layout.fan_pack_step"},
		{"negative duration", func(c *Config) { c.Animation.FocusMS = -1 }, "animation.focus_ms"},
		{"axis lock", func(c *Config) { c.Gestures.AxisLockDistance = 0 }, "gestures.axis_lock_distance"},
		{"switch fraction", func(c *Config) { c.Gestures.GroupSwitchFraction = 2 }, "gestures.group_switch_fraction"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"frame interval", func(c *Config) { c.Daemon.FrameIntervalMS = 0 }, "daemon.frame_interval_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.GroupSpacing = 64

	data, err := Marshal(cfg)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

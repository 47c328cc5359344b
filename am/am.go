// Package am loads tip's configuration ("am" as in "I am configured as...").
//
// Sources, lowest to highest precedence: built-in defaults, /etc/tip/am.toml,
// ~/.tip/am.toml, the nearest project am.toml found walking up from the
// working directory, then TIP_* environment variables.
package am

import "time"

// Config represents the tip configuration
type Config struct {
	Tooltip     TooltipConfig     `mapstructure:"tooltip" toml:"tooltip" json:"tooltip" yaml:"tooltip"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator" toml:"coordinator" json:"coordinator" yaml:"coordinator"`
	Loop        LoopConfig        `mapstructure:"loop" toml:"loop" json:"loop" yaml:"loop"`
	Log         LogConfig         `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// TooltipConfig configures engine-wide tooltip behaviour
type TooltipConfig struct {
	// Defaults are tooltip props applied below per-reference attributes and
	// caller props. Keys arrive lower-cased from viper; the engine matches
	// them case-insensitively (e.g. hideonclick = false).
	Defaults map[string]interface{} `mapstructure:"defaults" toml:"defaults" json:"defaults" yaml:"defaults"`
}

// CoordinatorConfig configures the document-wide coordinator
type CoordinatorConfig struct {
	// Two mousemove events closer than this switch input back from touch to mouse
	TouchMoveThresholdMS int `mapstructure:"touch_move_threshold_ms" toml:"touch_move_threshold_ms" json:"touch_move_threshold_ms" yaml:"touch_move_threshold_ms"` // default: 20
}

// LoopConfig configures the event loop
type LoopConfig struct {
	FrameIntervalMS int `mapstructure:"frame_interval_ms" toml:"frame_interval_ms" json:"frame_interval_ms" yaml:"frame_interval_ms"` // default: 16 (~60 fps)
}

// LogConfig configures logging output
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Theme string `mapstructure:"theme" toml:"theme" json:"theme" yaml:"theme"` // everforest, gruvbox
}

// Defaults shared with SetDefaults and the Get* helpers
const (
	DefaultTouchMoveThresholdMS = 20
	DefaultFrameIntervalMS      = 16
	DefaultLogTheme             = "everforest"
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// TouchMoveThreshold returns the touch/mouse heuristic window
func (c *Config) TouchMoveThreshold() time.Duration {
	if c.Coordinator.TouchMoveThresholdMS <= 0 {
		return DefaultTouchMoveThresholdMS * time.Millisecond
	}
	return time.Duration(c.Coordinator.TouchMoveThresholdMS) * time.Millisecond
}

// FrameInterval returns the event loop's frame interval
func (c *Config) FrameInterval() time.Duration {
	if c.Loop.FrameIntervalMS <= 0 {
		return DefaultFrameIntervalMS * time.Millisecond
	}
	return time.Duration(c.Loop.FrameIntervalMS) * time.Millisecond
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultLogTheme
	}
	return c.Log.Theme
}

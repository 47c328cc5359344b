package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Tooltip props; empty means the engine's built-in defaults apply
	v.SetDefault("tooltip.defaults", map[string]interface{}{})

	v.SetDefault("coordinator.touch_move_threshold_ms", DefaultTouchMoveThresholdMS)
	v.SetDefault("loop.frame_interval_ms", DefaultFrameIntervalMS) // ~60 fps

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", DefaultLogTheme)
}

// BindEnvVars binds settings that are commonly overridden from the shell
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("log.json", "TIP_LOG_JSON")
	v.BindEnv("log.theme", "TIP_LOG_THEME")
	v.BindEnv("coordinator.touch_move_threshold_ms", "TIP_COORDINATOR_TOUCH_MOVE_THRESHOLD_MS")
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Tooltip: {Defaults: %d keys}, Coordinator: {TouchMoveThresholdMS: %d}, Loop: {FrameIntervalMS: %d}, Log: {JSON: %t, Theme: %s}}",
		len(c.Tooltip.Defaults), c.Coordinator.TouchMoveThresholdMS, c.Loop.FrameIntervalMS, c.Log.JSON, c.GetLogTheme())
}

package am

import (
	"fmt"

	"github.com/teranos/tip/errors"
)

var knownThemes = map[string]bool{"everforest": true, "gruvbox": true}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// 0 = use default, negative = invalid
	if c.Coordinator.TouchMoveThresholdMS < 0 {
		return errors.NewConfigurationError("coordinator.touch_move_threshold_ms must be >= 0, got %d", c.Coordinator.TouchMoveThresholdMS)
	}
	if c.Loop.FrameIntervalMS < 0 {
		return errors.NewConfigurationError("loop.frame_interval_ms must be >= 0, got %d", c.Loop.FrameIntervalMS)
	}

	if c.Log.Theme != "" && !knownThemes[c.Log.Theme] {
		err := errors.NewConfigurationError("log.theme %q is not a known theme", c.Log.Theme)
		return errors.WithHint(err, "use everforest or gruvbox")
	}

	// Tooltip defaults are checked against the option set by the engine;
	// here we only reject structurally broken entries.
	for key, value := range c.Tooltip.Defaults {
		if key == "" {
			return errors.NewConfigurationError("tooltip.defaults contains an empty key")
		}
		if _, nested := value.(map[string]interface{}); nested {
			return errors.NewConfigurationError("tooltip.defaults.%s must be a value, not a table", key)
		}
	}

	return nil
}

// MustValidate panics when Validate fails; for static configs in tests
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
}

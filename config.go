package calyx

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// InteractionConfig tunes the gesture heuristics used by the dispatcher
// and the outside-interaction machinery. Hosts normally ship defaults and
// let applications override them from a TOML file.
type InteractionConfig struct {
	// DoubleClickMillis is the longest gap between two clicks that still
	// counts as a double click.
	DoubleClickMillis int `toml:"double_click_millis" validate:"gte=0"`

	// DoubleClickDistance is the farthest the pointer may travel between
	// two clicks that still count as a double click, in device pixels.
	DoubleClickDistance float64 `toml:"double_click_distance" validate:"gte=0"`

	// TouchSlop is the movement threshold, in device pixels per axis,
	// beyond which a touch gesture is treated as a scroll rather than a tap.
	TouchSlop float64 `toml:"touch_slop" validate:"gt=0"`

	// FocusHistorySize bounds the ring buffer of recently focused elements
	// used for focus restoration.
	FocusHistorySize int `toml:"focus_history_size" validate:"gt=0"`
}

// DefaultInteractionConfig returns the stock tuning values.
func DefaultInteractionConfig() InteractionConfig {
	return InteractionConfig{
		DoubleClickMillis:   500,
		DoubleClickDistance: 5,
		TouchSlop:           30,
		FocusHistorySize:    64,
	}
}

var configValidator = validator.New()

// LoadInteractionConfig reads a TOML file and overlays it on the defaults.
// Missing keys keep their default values; invalid values are rejected.
func LoadInteractionConfig(path string) (InteractionConfig, error) {
	cfg := DefaultInteractionConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read interaction config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse interaction config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the config against its field constraints.
func (c InteractionConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid interaction config: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is a 0xRRGGBB pixel value. In YAML it is written "#rrggbb" or as an
// integer.
type Color uint32

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a scalar")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c))
}

// ParseColor accepts "#rrggbb", "0xrrggbb" or a decimal integer.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "#"):
		v, err = strconv.ParseUint(s[1:], 16, 32)
	default:
		v, err = strconv.ParseUint(s, 0, 32)
	}
	if err != nil || v > 0xffffff {
		return 0, fmt.Errorf("invalid color %q (expected #rrggbb)", s)
	}
	return Color(v), nil
}

// Colors configures the decoration palette.
type Colors struct {
	Border         Color `yaml:"border"`
	Titlebar       Color `yaml:"titlebar"`
	Text           Color `yaml:"text"`
	ButtonClose    Color `yaml:"button_close"`
	ButtonMaximize Color `yaml:"button_maximize"`
	ButtonMinimize Color `yaml:"button_minimize"`
}

// AnimationConfig configures show, hide and close transitions.
type AnimationConfig struct {
	Enabled    bool   `yaml:"enabled"`
	DurationMS int    `yaml:"duration_ms"`
	IntervalMS int    `yaml:"interval_ms"`
	Easing     string `yaml:"easing"`
}

// MenuConfig selects the program behind the titlebar menu.
type MenuConfig struct {
	// Command is one of: auto, none, rofi, fuzzel, wofi, dmenu.
	Command string `yaml:"command"`
}

// Config is the effective daemon configuration.
type Config struct {
	Display             string          `yaml:"display"`
	LogLevel            string          `yaml:"log_level"`
	BorderWidth         int             `yaml:"border_width"`
	TitlebarHeight      int             `yaml:"titlebar_height"`
	MinClientWidth      int             `yaml:"min_client_width"`
	MinClientHeight     int             `yaml:"min_client_height"`
	Font                string          `yaml:"font"`
	Colors              Colors          `yaml:"colors"`
	Animation           AnimationConfig `yaml:"animation"`
	Menu                MenuConfig      `yaml:"menu"`
	WatchConfig         bool            `yaml:"watch_config"`
	ReconcileIntervalMS int             `yaml:"reconcile_interval_ms"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		BorderWidth:     2,
		TitlebarHeight:  20,
		MinClientWidth:  16,
		MinClientHeight: 16,
		Font:            "fixed",
		Colors: Colors{
			Border:         0xffffff,
			Titlebar:       0x808080,
			Text:           0x000000,
			ButtonClose:    0xc0392b,
			ButtonMaximize: 0x27ae60,
			ButtonMinimize: 0xf1c40f,
		},
		Animation: AnimationConfig{
			Enabled:    true,
			DurationMS: 150,
			IntervalMS: 16,
			Easing:     "linear",
		},
		Menu:                MenuConfig{Command: "auto"},
		WatchConfig:         true,
		ReconcileIntervalMS: 10000,
	}
}

// DefaultConfigPath returns ~/.config/framewm/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "framewm", "config.yaml"), nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.BorderWidth < 0 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}
	if c.TitlebarHeight < 0 {
		return &ValidationError{Path: "titlebar_height", Err: fmt.Errorf("titlebar_height must be >= 0")}
	}
	if c.MinClientWidth < 1 {
		return &ValidationError{Path: "min_client_width", Err: fmt.Errorf("min_client_width must be >= 1")}
	}
	if c.MinClientHeight < 1 {
		return &ValidationError{Path: "min_client_height", Err: fmt.Errorf("min_client_height must be >= 1")}
	}
	if strings.TrimSpace(c.Font) == "" {
		return &ValidationError{Path: "font", Err: fmt.Errorf("font is required")}
	}
	if c.Animation.DurationMS < 0 {
		return &ValidationError{Path: "animation.duration_ms", Err: fmt.Errorf("duration_ms must be >= 0")}
	}
	if c.Animation.IntervalMS < 1 {
		return &ValidationError{Path: "animation.interval_ms", Err: fmt.Errorf("interval_ms must be >= 1")}
	}
	switch c.Animation.Easing {
	case "linear", "ease-out":
	default:
		return &ValidationError{Path: "animation.easing", Err: fmt.Errorf("easing must be one of: linear, ease-out")}
	}
	switch c.Menu.Command {
	case "auto", "none", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "menu.command", Err: fmt.Errorf("command must be one of: auto, none, rofi, fuzzel, wofi, dmenu")}
	}
	if c.ReconcileIntervalMS < 0 {
		return &ValidationError{Path: "reconcile_interval_ms", Err: fmt.Errorf("reconcile_interval_ms must be >= 0")}
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path, creating its directory.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

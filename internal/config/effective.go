package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig layers raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	set(&cfg.Display, raw.Display)
	set(&cfg.BorderWidth, raw.BorderWidth)
	set(&cfg.TitlebarHeight, raw.TitlebarHeight)
	set(&cfg.MinClientWidth, raw.MinClientWidth)
	set(&cfg.MinClientHeight, raw.MinClientHeight)
	set(&cfg.Font, raw.Font)
	set(&cfg.WatchConfig, raw.WatchConfig)
	set(&cfg.ReconcileIntervalMS, raw.ReconcileIntervalMS)
	if raw.LogLevel != nil {
		cfg.LogLevel = normalizeLevel(*raw.LogLevel)
	}

	if c := raw.Colors; c != nil {
		set(&cfg.Colors.Border, c.Border)
		set(&cfg.Colors.Titlebar, c.Titlebar)
		set(&cfg.Colors.Text, c.Text)
		set(&cfg.Colors.ButtonClose, c.ButtonClose)
		set(&cfg.Colors.ButtonMaximize, c.ButtonMaximize)
		set(&cfg.Colors.ButtonMinimize, c.ButtonMinimize)
	}
	if a := raw.Animation; a != nil {
		set(&cfg.Animation.Enabled, a.Enabled)
		set(&cfg.Animation.DurationMS, a.DurationMS)
		set(&cfg.Animation.IntervalMS, a.IntervalMS)
		if a.Easing != nil {
			cfg.Animation.Easing = strings.ToLower(strings.TrimSpace(*a.Easing))
		}
	}
	if m := raw.Menu; m != nil && m.Command != nil {
		cfg.Menu.Command = strings.ToLower(strings.TrimSpace(*m.Command))
	}

	return cfg
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// normalizeLevel accepts "warning" as an alias of "warn".
func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return "warn"
	}
	return level
}

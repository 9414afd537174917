package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawColors struct {
	Border         *Color `yaml:"border"`
	Titlebar       *Color `yaml:"titlebar"`
	Text           *Color `yaml:"text"`
	ButtonClose    *Color `yaml:"button_close"`
	ButtonMaximize *Color `yaml:"button_maximize"`
	ButtonMinimize *Color `yaml:"button_minimize"`
}

type RawAnimation struct {
	Enabled    *bool   `yaml:"enabled"`
	DurationMS *int    `yaml:"duration_ms"`
	IntervalMS *int    `yaml:"interval_ms"`
	Easing     *string `yaml:"easing"`
}

type RawMenu struct {
	Command *string `yaml:"command"`
}

// RawConfig is one YAML file as written: unset keys stay nil so files can
// be layered.
type RawConfig struct {
	Include             IncludeList   `yaml:"include"`
	Display             *string       `yaml:"display"`
	LogLevel            *string       `yaml:"log_level"`
	BorderWidth         *int          `yaml:"border_width"`
	TitlebarHeight      *int          `yaml:"titlebar_height"`
	MinClientWidth      *int          `yaml:"min_client_width"`
	MinClientHeight     *int          `yaml:"min_client_height"`
	Font                *string       `yaml:"font"`
	Colors              *RawColors    `yaml:"colors"`
	Animation           *RawAnimation `yaml:"animation"`
	Menu                *RawMenu      `yaml:"menu"`
	WatchConfig         *bool         `yaml:"watch_config"`
	ReconcileIntervalMS *int          `yaml:"reconcile_interval_ms"`
}

func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

// merge returns c with every key set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil
	out.Display = pick(c.Display, overlay.Display)
	out.LogLevel = pick(c.LogLevel, overlay.LogLevel)
	out.BorderWidth = pick(c.BorderWidth, overlay.BorderWidth)
	out.TitlebarHeight = pick(c.TitlebarHeight, overlay.TitlebarHeight)
	out.MinClientWidth = pick(c.MinClientWidth, overlay.MinClientWidth)
	out.MinClientHeight = pick(c.MinClientHeight, overlay.MinClientHeight)
	out.Font = pick(c.Font, overlay.Font)
	out.WatchConfig = pick(c.WatchConfig, overlay.WatchConfig)
	out.ReconcileIntervalMS = pick(c.ReconcileIntervalMS, overlay.ReconcileIntervalMS)

	if overlay.Colors != nil {
		base := RawColors{}
		if c.Colors != nil {
			base = *c.Colors
		}
		merged := RawColors{
			Border:         pick(base.Border, overlay.Colors.Border),
			Titlebar:       pick(base.Titlebar, overlay.Colors.Titlebar),
			Text:           pick(base.Text, overlay.Colors.Text),
			ButtonClose:    pick(base.ButtonClose, overlay.Colors.ButtonClose),
			ButtonMaximize: pick(base.ButtonMaximize, overlay.Colors.ButtonMaximize),
			ButtonMinimize: pick(base.ButtonMinimize, overlay.Colors.ButtonMinimize),
		}
		out.Colors = &merged
	}

	if overlay.Animation != nil {
		base := RawAnimation{}
		if c.Animation != nil {
			base = *c.Animation
		}
		merged := RawAnimation{
			Enabled:    pick(base.Enabled, overlay.Animation.Enabled),
			DurationMS: pick(base.DurationMS, overlay.Animation.DurationMS),
			IntervalMS: pick(base.IntervalMS, overlay.Animation.IntervalMS),
			Easing:     pick(base.Easing, overlay.Animation.Easing),
		}
		out.Animation = &merged
	}

	if overlay.Menu != nil {
		base := RawMenu{}
		if c.Menu != nil {
			base = *c.Menu
		}
		out.Menu = &RawMenu{Command: pick(base.Command, overlay.Menu.Command)}
	}

	return out
}

package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	display
//	log_level
//	border_width
//	titlebar_height
//	min_client_width
//	min_client_height
//	font
//	colors.<name>
//	animation.enabled|duration_ms|interval_ms|easing
//	menu.command
//	watch_config
//	reconcile_interval_ms
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	unknown := fmt.Errorf("unknown path: %s", path)

	if len(parts) == 1 {
		switch parts[0] {
		case "display":
			return cfg.Display, nil
		case "log_level":
			return cfg.LogLevel, nil
		case "border_width":
			return cfg.BorderWidth, nil
		case "titlebar_height":
			return cfg.TitlebarHeight, nil
		case "min_client_width":
			return cfg.MinClientWidth, nil
		case "min_client_height":
			return cfg.MinClientHeight, nil
		case "font":
			return cfg.Font, nil
		case "watch_config":
			return cfg.WatchConfig, nil
		case "reconcile_interval_ms":
			return cfg.ReconcileIntervalMS, nil
		}
		return nil, unknown
	}
	if len(parts) != 2 {
		return nil, unknown
	}

	switch parts[0] {
	case "colors":
		switch parts[1] {
		case "border":
			return cfg.Colors.Border.String(), nil
		case "titlebar":
			return cfg.Colors.Titlebar.String(), nil
		case "text":
			return cfg.Colors.Text.String(), nil
		case "button_close":
			return cfg.Colors.ButtonClose.String(), nil
		case "button_maximize":
			return cfg.Colors.ButtonMaximize.String(), nil
		case "button_minimize":
			return cfg.Colors.ButtonMinimize.String(), nil
		}
	case "animation":
		switch parts[1] {
		case "enabled":
			return cfg.Animation.Enabled, nil
		case "duration_ms":
			return cfg.Animation.DurationMS, nil
		case "interval_ms":
			return cfg.Animation.IntervalMS, nil
		case "easing":
			return cfg.Animation.Easing, nil
		}
	case "menu":
		if parts[1] == "command" {
			return cfg.Menu.Command, nil
		}
	}
	return nil, unknown
}

// FormatSource renders a source for humans.
func FormatSource(src Source) string {
	switch src.Kind {
	case SourceFile:
		return fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column)
	case SourceEnv:
		return "env " + src.Name
	default:
		return "default"
	}
}

package daemon

import (
	"log/slog"
	"time"

	"github.com/1broseidon/framewm/internal/anim"
	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/decor"
	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/wm"
)

// SettingsFromConfig derives the frame settings from a validated config.
func SettingsFromConfig(cfg *config.Config, logger *slog.Logger) (wm.Settings, error) {
	easing, err := anim.ParseEasing(cfg.Animation.Easing)
	if err != nil {
		return wm.Settings{}, err
	}
	return wm.Settings{
		Metrics: frame.Metrics{
			Border: cfg.BorderWidth,
			Title:  cfg.TitlebarHeight,
		},
		MinClient: geom.Size{
			Width:  cfg.MinClientWidth,
			Height: cfg.MinClientHeight,
		},
		Animation: anim.Config{
			Enabled:  cfg.Animation.Enabled,
			Interval: time.Duration(cfg.Animation.IntervalMS) * time.Millisecond,
			Easing:   easing,
			Logger:   logger,
		},
		Duration: time.Duration(cfg.Animation.DurationMS) * time.Millisecond,
	}, nil
}

// StyleFromConfig derives the decoration style from a config.
func StyleFromConfig(cfg *config.Config) decor.Style {
	c := cfg.Colors
	return decor.Style{
		Colors: decor.Colors{
			Border:         uint32(c.Border),
			Titlebar:       uint32(c.Titlebar),
			Text:           uint32(c.Text),
			ButtonClose:    uint32(c.ButtonClose),
			ButtonMaximize: uint32(c.ButtonMaximize),
			ButtonMinimize: uint32(c.ButtonMinimize),
		},
		Font: cfg.Font,
	}
}

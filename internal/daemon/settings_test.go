package daemon

import (
	"os"
	"testing"
	"time"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BorderWidth = 3
	cfg.TitlebarHeight = 24
	cfg.MinClientWidth = 40
	cfg.Animation.DurationMS = 200
	cfg.Animation.IntervalMS = 10
	cfg.Animation.Easing = "ease-out"

	s, err := SettingsFromConfig(cfg, discard)
	if err != nil {
		t.Fatalf("SettingsFromConfig: %v", err)
	}
	if s.Metrics != (frame.Metrics{Border: 3, Title: 24}) {
		t.Fatalf("metrics = %+v", s.Metrics)
	}
	if s.MinClient != (geom.Size{Width: 40, Height: 16}) {
		t.Fatalf("min client = %+v", s.MinClient)
	}
	if s.Duration != 200*time.Millisecond || s.Animation.Interval != 10*time.Millisecond {
		t.Fatalf("duration=%v interval=%v", s.Duration, s.Animation.Interval)
	}
	if !s.Animation.Enabled || s.Animation.Easing == nil {
		t.Fatalf("animation = %+v", s.Animation)
	}
	if got := s.Animation.Easing(0.5); got <= 0.5 {
		t.Fatalf("expected ease-out to run ahead of linear at 0.5, got %v", got)
	}
}

func TestSettingsFromConfig_BadEasing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Animation.Easing = "bounce"
	if _, err := SettingsFromConfig(cfg, discard); err == nil {
		t.Fatalf("expected unknown easing to fail")
	}
}

func TestStyleFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Colors.Titlebar = 0x336699
	cfg.Font = "6x13"

	style := StyleFromConfig(cfg)
	if style.Colors.Titlebar != 0x336699 || style.Colors.Border != uint32(cfg.Colors.Border) {
		t.Fatalf("colors = %+v", style.Colors)
	}
	if style.Font != "6x13" {
		t.Fatalf("font = %q", style.Font)
	}
}

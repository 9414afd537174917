package frame

import (
	"testing"

	"github.com/1broseidon/framewm/internal/geom"
)

func TestToFrame_Scenario(t *testing.T) {
	m := Metrics{Border: 2, Title: 20}
	got := ToFrame(geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}, m)

	want := geom.Rect{X: 98, Y: 78, Width: 404, Height: 322}
	if got.Rect != want {
		t.Errorf("ToFrame = %v, want %v", got.Rect, want)
	}
	if got.Shift != (geom.Point{}) {
		t.Errorf("Shift = %v, want zero", got.Shift)
	}
}

func TestToFrame_ClampsOrigin(t *testing.T) {
	m := Metrics{Border: 4, Title: 24}
	got := ToFrame(geom.Rect{X: 1, Y: 10, Width: 200, Height: 100}, m)

	if got.X != 0 || got.Y != 0 {
		t.Errorf("origin = (%d,%d), want (0,0)", got.X, got.Y)
	}
	if got.Width != 208 || got.Height != 132 {
		t.Errorf("size = %dx%d, want 208x132", got.Width, got.Height)
	}
	if got.Shift != (geom.Point{X: 3, Y: 18}) {
		t.Errorf("Shift = %v, want (3,18)", got.Shift)
	}
}

func TestPlaced(t *testing.T) {
	m := Metrics{Border: 4, Title: 24}

	tests := []struct {
		name   string
		client geom.Rect
		want   geom.Rect
	}{
		{"unshifted", geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}},
		{"shifted", geom.Rect{X: 1, Y: 10, Width: 200, Height: 100}, geom.Rect{X: 4, Y: 28, Width: 200, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ToFrame(tt.client, m)
			if got := Placed(g, m); got != tt.want {
				t.Errorf("Placed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToClient_RoundTrip(t *testing.T) {
	rects := []geom.Rect{
		{X: 0, Y: 0, Width: 0, Height: 0},
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: 1, Y: 1, Width: 640, Height: 480},
		{X: 100, Y: 100, Width: 400, Height: 300},
		{X: 5, Y: 3000, Width: 1, Height: 7},
	}
	metrics := []Metrics{
		{Border: 0, Title: 0},
		{Border: 2, Title: 20},
		{Border: 10, Title: 0},
		{Border: 0, Title: 30},
		{Border: 50, Title: 50},
	}

	for _, m := range metrics {
		for _, r := range rects {
			g := ToFrame(r, m)
			if got := ToClient(g, m); got != r {
				t.Errorf("ToClient(ToFrame(%v, %+v)) = %v", r, m, got)
			}
			if g.X < 0 || g.Y < 0 || g.Width < 0 || g.Height < 0 {
				t.Errorf("ToFrame(%v, %+v) = %v has negative component", r, m, g.Rect)
			}
			if again := ToFrame(r, m); again != g {
				t.Errorf("ToFrame not deterministic: %v vs %v", again, g)
			}
		}
	}
}

func TestMetricsLayout(t *testing.T) {
	m := Metrics{Border: 2, Title: 20}
	size := geom.Size{Width: 404, Height: 322}

	if got, want := m.Content(size), (geom.Rect{X: 2, Y: 2, Width: 400, Height: 318}); got != want {
		t.Errorf("Content = %v, want %v", got, want)
	}
	if got, want := m.Titlebar(size), (geom.Rect{X: 2, Y: 2, Width: 400, Height: 20}); got != want {
		t.Errorf("Titlebar = %v, want %v", got, want)
	}
	if got, want := m.ClientOffset(), (geom.Point{X: 2, Y: 22}); got != want {
		t.Errorf("ClientOffset = %v, want %v", got, want)
	}
	if got, want := m.MinFrame(geom.Size{Width: 16, Height: 16}), (geom.Size{Width: 20, Height: 40}); got != want {
		t.Errorf("MinFrame = %v, want %v", got, want)
	}
}

package decor

import (
	"strings"
	"testing"

	"github.com/BurntSushi/xgbutil/xcursor"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
)

func TestButtonRects(t *testing.T) {
	tests := []struct {
		name   string
		bar    geom.Size
		fitted int
		close  geom.Rect
	}{
		{
			name:   "roomy titlebar",
			bar:    geom.Size{Width: 400, Height: 20},
			fitted: 3,
			close:  geom.Rect{X: 382, Y: 2, Width: 16, Height: 16},
		},
		{
			name:   "only close fits",
			bar:    geom.Size{Width: 30, Height: 20},
			fitted: 1,
			close:  geom.Rect{X: 12, Y: 2, Width: 16, Height: 16},
		},
		{
			name: "too short for buttons",
			bar:  geom.Size{Width: 400, Height: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rects, ok := buttonRects(tt.bar)
			fitted := 0
			for _, fits := range ok {
				if fits {
					fitted++
				}
			}
			if fitted != tt.fitted {
				t.Fatalf("fitted %d buttons, want %d", fitted, tt.fitted)
			}
			if tt.fitted > 0 && rects[buttonClose] != tt.close {
				t.Fatalf("close = %v, want %v", rects[buttonClose], tt.close)
			}
		})
	}
}

func TestButtonRects_OrderAndGaps(t *testing.T) {
	rects, _ := buttonRects(geom.Size{Width: 400, Height: 20})
	if !(rects[buttonMinimize].Right() < rects[buttonMaximize].X && rects[buttonMaximize].Right() < rects[buttonClose].X) {
		t.Fatalf("buttons not ordered minimize < maximize < close: %v", rects)
	}
	if gap := rects[buttonClose].X - rects[buttonMaximize].Right(); gap != buttonGap {
		t.Fatalf("gap = %d, want %d", gap, buttonGap)
	}
}

func TestLatin1(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"xterm", "xterm"},
		{"café", "caf\xe9"},
		{"日本", "??"},
		{"tab\there", "tab?here"},
	}
	for _, tt := range tests {
		if got := latin1(tt.in); got != tt.want {
			t.Errorf("latin1(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := latin1(strings.Repeat("a", 400)); len(got) != 255 {
		t.Fatalf("len = %d, want 255", len(got))
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		shape frame.CursorShape
		want  uint16
	}{
		{frame.CursorPointer, xcursor.LeftPtr},
		{frame.CursorFleur, xcursor.Fleur},
		{frame.CursorTopSide, xcursor.TopSide},
		{frame.CursorBottomRightCorner, xcursor.BottomRightCorner},
		{frame.CursorLeftSide, xcursor.LeftSide},
	}
	for _, tt := range tests {
		if got := glyph(tt.shape); got != tt.want {
			t.Errorf("glyph(%v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestTitlebarLocal(t *testing.T) {
	d := &Decoration{
		metrics: frame.Metrics{Border: 2, Title: 20},
		rect:    geom.Rect{X: 100, Y: 50, Width: 404, Height: 324},
	}
	if got := d.titlebarLocal(10, 5); got != (geom.Point{X: 12, Y: 7}) {
		t.Fatalf("titlebarLocal = %v, want (12,7)", got)
	}
}

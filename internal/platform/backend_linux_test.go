//go:build linux

package platform

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/framewm/internal/geom"
)

func TestMergeConfigure(t *testing.T) {
	base := geom.Rect{X: 100, Y: 80, Width: 400, Height: 300}
	all := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)

	tests := []struct {
		name     string
		mask     uint16
		embedded bool
		want     geom.Rect
	}{
		{"nothing", 0, false, base},
		{"all unembedded", all, false, geom.Rect{X: 5, Y: 6, Width: 700, Height: 500}},
		{"all embedded keeps position", all, true, geom.Rect{X: 100, Y: 80, Width: 700, Height: 500}},
		{"width only", xproto.ConfigWindowWidth, false, geom.Rect{X: 100, Y: 80, Width: 700, Height: 300}},
		{"y only", xproto.ConfigWindowY, false, geom.Rect{X: 100, Y: 6, Width: 400, Height: 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeConfigure(base, tt.mask, 5, 6, 700, 500, tt.embedded)
			if got != tt.want {
				t.Fatalf("mergeConfigure = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReparentUnmaps(t *testing.T) {
	const root, frameA, frameB = xproto.Window(1), xproto.Window(2), xproto.Window(3)

	tests := []struct {
		name    string
		current xproto.Window
		parent  xproto.Window
		mapped  bool
		want    int
	}{
		{"mapped client into frame", 0, frameA, true, 1},
		{"unmapped client into frame", 0, frameA, false, 0},
		{"same frame is a move", frameA, frameA, true, 0},
		{"other frame", frameA, frameB, true, 1},
		{"back to root", frameA, root, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reparentUnmaps(tt.current, tt.parent, tt.mapped); got != tt.want {
				t.Fatalf("reparentUnmaps = %d, want %d", got, tt.want)
			}
		})
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
)

func TestParseClientID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"4194305", 4194305, false},
		{"0x400001", 0x400001, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"0x1ffffffff", 0, true},
		{"window", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseClientID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteFrames(t *testing.T) {
	var buf bytes.Buffer
	writeFrames(&buf, nil)
	if strings.TrimSpace(buf.String()) != "no frames" {
		t.Fatalf("empty output = %q", buf.String())
	}

	buf.Reset()
	writeFrames(&buf, []frame.State{
		{Client: 0x400001, Title: "term", Frame: geom.Rect{X: 1, Y: 2, Width: 300, Height: 200}, Visible: true},
		{Client: 0x400002, Title: "big", Maximized: true, Visible: true},
		{Client: 0x400003, Title: "gone"},
		{Client: 0x400004, Title: "editor", Closing: true},
	})
	out := buf.String()
	for _, want := range []string{"CLIENT", "0x00400001", "300x200+1+2", "normal", "maximized", "hidden", "closing", "term"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunConfig_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte("border_width: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("border_width: -4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no subcommand", nil, 2},
		{"unknown", []string{"frobnicate"}, 2},
		{"validate ok", []string{"validate", "--path", good}, 0},
		{"validate bad", []string{"validate", "--path", bad}, 1},
		{"print defaults", []string{"print", "--defaults"}, 0},
		{"explain", []string{"explain", "--path", good, "border_width"}, 0},
		{"explain missing arg", []string{"explain", "--path", good}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runConfig(tt.args); got != tt.want {
				t.Fatalf("runConfig(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/ipc"
)

type fakeClient struct {
	frames    []frame.State
	statusErr error
	actionErr error

	closed    []uint32
	maximized []uint32
	minimized []uint32
}

func (c *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	return &ipc.StatusData{Display: ":1", FrameCount: len(c.frames), DaemonRunning: true}, nil
}

func (c *fakeClient) ListFrames() ([]frame.State, error) { return c.frames, nil }

func (c *fakeClient) CloseFrame(id uint32) error {
	c.closed = append(c.closed, id)
	return c.actionErr
}

func (c *fakeClient) ToggleMaximize(id uint32) error {
	c.maximized = append(c.maximized, id)
	return c.actionErr
}

func (c *fakeClient) MinimizeFrame(id uint32) error {
	c.minimized = append(c.minimized, id)
	return c.actionErr
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, c *fakeClient) model {
	t.Helper()
	var m tea.Model = newModel(c)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	msg := m.(model).fetch()()
	m, _ = m.Update(msg)
	return m.(model)
}

func TestModel_LoadsFrames(t *testing.T) {
	c := &fakeClient{frames: []frame.State{
		{Client: 0x400001, Title: "editor", Frame: geom.Rect{X: 10, Y: 10, Width: 300, Height: 200}, Visible: true},
		{Client: 0x400002, Title: "", Maximized: true, Visible: true},
	}}
	m := loaded(t, c)

	if !m.connected {
		t.Fatal("expected connected")
	}
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("items = %d, want 2", got)
	}
	view := m.View()
	for _, want := range []string{"editor", "(untitled)", "display::1", "frames:2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_DaemonDown(t *testing.T) {
	c := &fakeClient{statusErr: errors.New("connection refused")}
	m := loaded(t, c)

	if m.connected {
		t.Fatal("expected disconnected")
	}
	if !strings.Contains(m.View(), "daemon not running") {
		t.Fatalf("view should report daemon down:\n%s", m.View())
	}
}

func TestModel_FrameActions(t *testing.T) {
	tests := []struct {
		key  string
		got  func(c *fakeClient) []uint32
		text string
	}{
		{"c", func(c *fakeClient) []uint32 { return c.closed }, "closed 0x00400001"},
		{"x", func(c *fakeClient) []uint32 { return c.closed }, "closed 0x00400001"},
		{"m", func(c *fakeClient) []uint32 { return c.maximized }, "toggled maximize 0x00400001"},
		{"n", func(c *fakeClient) []uint32 { return c.minimized }, "minimized 0x00400001"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c := &fakeClient{frames: []frame.State{{Client: 0x400001, Title: "a", Visible: true}}}
			m := loaded(t, c)

			next, cmd := m.Update(key(tt.key))
			if cmd == nil {
				t.Fatal("expected a command")
			}
			msg := cmd()
			am, ok := msg.(actionMsg)
			if !ok {
				t.Fatalf("msg = %T, want actionMsg", msg)
			}
			if got := tt.got(c); len(got) != 1 || got[0] != 0x400001 {
				t.Fatalf("calls = %v", got)
			}

			next, _ = next.Update(am)
			if got := next.(model).statusText; got != tt.text {
				t.Fatalf("status = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestModel_ActionErrorShown(t *testing.T) {
	c := &fakeClient{
		frames:    []frame.State{{Client: 7, Title: "a"}},
		actionErr: errors.New("unknown client"),
	}
	m := loaded(t, c)

	_, cmd := m.Update(key("c"))
	next, _ := m.Update(cmd())
	got := next.(model)
	if !got.statusErr || !strings.Contains(got.statusText, "unknown client") {
		t.Fatalf("status = %q (err=%v)", got.statusText, got.statusErr)
	}
}

func TestModel_NoSelectionNoCommand(t *testing.T) {
	m := loaded(t, &fakeClient{})
	if _, cmd := m.Update(key("c")); cmd != nil {
		t.Fatal("expected no command without a selection")
	}
}

func TestModel_Quit(t *testing.T) {
	m := loaded(t, &fakeClient{})
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

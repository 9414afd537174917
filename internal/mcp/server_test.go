package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/ipc"
)

type fakeDaemon struct {
	frames  []frame.State
	closed  []uint32
	toggled []uint32
	minimal []uint32
	reloads int
	failID  uint32
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{Display: ":0", FrameCount: len(d.frames), DaemonRunning: true}, nil
}

func (d *fakeDaemon) ListFrames() ([]frame.State, error) { return d.frames, nil }

func (d *fakeDaemon) CloseFrame(id uint32) error {
	if id == d.failID {
		return errors.New("daemon error: unknown client")
	}
	d.closed = append(d.closed, id)
	return nil
}

func (d *fakeDaemon) ToggleMaximize(id uint32) error {
	d.toggled = append(d.toggled, id)
	return nil
}

func (d *fakeDaemon) MinimizeFrame(id uint32) error {
	d.minimal = append(d.minimal, id)
	return nil
}

func (d *fakeDaemon) Reload() error {
	d.reloads++
	return nil
}

func connect(t *testing.T, d Daemon) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()
	s := NewServer(d)

	clientT, serverT := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverT, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callText(t *testing.T, cs *mcpsdk.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("CallTool(%s): no content", name)
	}
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected text content, got %T", name, res.Content[0])
	}
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	cs := connect(t, &fakeDaemon{})
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, want := range []string{"get_status", "list_frames", "close_frame", "toggle_maximize", "minimize_frame", "reload_config"} {
		if !got[want] {
			t.Fatalf("missing tool %q in %v", want, got)
		}
	}
}

func TestListFrames(t *testing.T) {
	d := &fakeDaemon{frames: []frame.State{{
		Client: 42,
		Title:  "xterm",
		Frame:  geom.Rect{X: 98, Y: 78, Width: 404, Height: 322},
	}}}
	cs := connect(t, d)

	text, isErr := callText(t, cs, "list_frames", map[string]any{})
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	var out ListFramesOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if len(out.Frames) != 1 || out.Frames[0].Title != "xterm" || out.Frames[0].Frame.Width != 404 {
		t.Fatalf("unexpected frames %+v", out.Frames)
	}
}

func TestListFrames_EmptyIsArray(t *testing.T) {
	cs := connect(t, &fakeDaemon{})
	text, isErr := callText(t, cs, "list_frames", map[string]any{})
	if isErr || !strings.Contains(text, `"frames":[]`) {
		t.Fatalf("expected empty frames array, got %s (error=%v)", text, isErr)
	}
}

func TestFrameActions(t *testing.T) {
	d := &fakeDaemon{}
	cs := connect(t, d)

	for _, name := range []string{"close_frame", "toggle_maximize", "minimize_frame"} {
		if text, isErr := callText(t, cs, name, map[string]any{"client_id": 42}); isErr {
			t.Fatalf("%s: unexpected tool error: %s", name, text)
		}
	}
	if len(d.closed) != 1 || len(d.toggled) != 1 || len(d.minimal) != 1 {
		t.Fatalf("expected one call each, got closed=%v toggled=%v minimized=%v", d.closed, d.toggled, d.minimal)
	}
}

func TestFrameActions_Errors(t *testing.T) {
	d := &fakeDaemon{failID: 7}
	cs := connect(t, d)

	text, isErr := callText(t, cs, "close_frame", map[string]any{"client_id": 7})
	if !isErr || !strings.Contains(text, "unknown client") {
		t.Fatalf("expected tool error from daemon, got %s (error=%v)", text, isErr)
	}

	text, isErr = callText(t, cs, "toggle_maximize", map[string]any{"client_id": 0})
	if !isErr || !strings.Contains(text, "client_id is required") {
		t.Fatalf("expected client_id error, got %s (error=%v)", text, isErr)
	}
}

func TestReloadAndStatus(t *testing.T) {
	d := &fakeDaemon{frames: make([]frame.State, 3)}
	cs := connect(t, d)

	if text, isErr := callText(t, cs, "reload_config", map[string]any{}); isErr {
		t.Fatalf("reload: %s", text)
	}
	if d.reloads != 1 {
		t.Fatalf("expected one reload, got %d", d.reloads)
	}

	text, isErr := callText(t, cs, "get_status", map[string]any{})
	if isErr {
		t.Fatalf("status: %s", text)
	}
	var out StatusOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.FrameCount != 3 || out.Display != ":0" {
		t.Fatalf("unexpected status %+v", out)
	}
}

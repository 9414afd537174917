package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/platform"
)

type fakeHandler struct {
	mu        sync.Mutex
	calls     []string
	frames    []frame.State
	reloadErr error
}

func (h *fakeHandler) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *fakeHandler) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *fakeHandler) Status(ctx context.Context) (StatusData, error) {
	h.record("status")
	return StatusData{Display: ":1", FrameCount: len(h.frames), Animations: true}, nil
}

func (h *fakeHandler) Frames(ctx context.Context) ([]frame.State, error) {
	h.record("frames")
	return h.frames, nil
}

func (h *fakeHandler) CloseFrame(ctx context.Context, id uint32) error {
	h.record("close")
	if id != 42 {
		return errors.New("unknown client")
	}
	return nil
}

func (h *fakeHandler) ToggleMaximize(ctx context.Context, id uint32) error {
	h.record("maximize")
	return nil
}

func (h *fakeHandler) MinimizeFrame(ctx context.Context, id uint32) error {
	h.record("minimize")
	return nil
}

func (h *fakeHandler) Reload(ctx context.Context) error {
	h.record("reload")
	return h.reloadErr
}

// startServer serves h on a short socket path; unix socket paths are
// limited to ~108 bytes so t.TempDir is avoided.
func startServer(t *testing.T, h Handler) (*Client, func() error) {
	t.Helper()
	dir, err := os.MkdirTemp("", "fwm")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")

	srv := NewServer(socket, h, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	stop := func() error {
		cancel()
		return <-done
	}
	t.Cleanup(func() { cancel() })
	return NewClientAt(socket), stop
}

func TestServer_StatusAndFrames(t *testing.T) {
	h := &fakeHandler{frames: []frame.State{{
		Client:  platform.ClientID(42),
		Title:   "xterm",
		Frame:   geom.Rect{X: 98, Y: 78, Width: 404, Height: 322},
		Visible: true,
	}}}
	client, stop := startServer(t, h)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.Display != ":1" || status.FrameCount != 1 {
		t.Fatalf("unexpected status %+v", status)
	}

	frames, err := client.ListFrames()
	if err != nil {
		t.Fatalf("ListFrames: %v", err)
	}
	if len(frames) != 1 || frames[0].Client != 42 || frames[0].Frame.Width != 404 {
		t.Fatalf("unexpected frames %+v", frames)
	}

	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Serve, got %v", err)
	}
}

func TestServer_ClientCommands(t *testing.T) {
	h := &fakeHandler{}
	client, _ := startServer(t, h)

	if err := client.CloseFrame(42); err != nil {
		t.Fatalf("CloseFrame: %v", err)
	}
	if err := client.ToggleMaximize(42); err != nil {
		t.Fatalf("ToggleMaximize: %v", err)
	}
	if err := client.MinimizeFrame(42); err != nil {
		t.Fatalf("MinimizeFrame: %v", err)
	}

	err := client.CloseFrame(7)
	if err == nil || !strings.Contains(err.Error(), "unknown client") {
		t.Fatalf("expected handler error to reach client, got %v", err)
	}

	// Zero is never a valid window and is rejected before the handler runs.
	if err := client.ToggleMaximize(0); err == nil || !strings.Contains(err.Error(), "client_id is required") {
		t.Fatalf("expected client_id error, got %v", err)
	}

	want := []string{"close", "maximize", "minimize", "close"}
	got := h.Calls()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func TestServer_ReloadError(t *testing.T) {
	h := &fakeHandler{reloadErr: errors.New("bad yaml")}
	client, _ := startServer(t, h)

	err := client.Reload()
	if err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("expected reload error, got %v", err)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	client, _ := startServer(t, &fakeHandler{})

	_, err := client.sendRequest(&Request{Command: "NOPE"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestServer_RemovesSocketOnStop(t *testing.T) {
	client, stop := startServer(t, &fakeHandler{})
	stop()

	if _, err := os.Stat(client.socketPath); !os.IsNotExist(err) {
		t.Fatalf("expected socket removed, stat err = %v", err)
	}
	if err := client.Ping(); err == nil {
		t.Fatalf("expected ping to fail after stop")
	}
}

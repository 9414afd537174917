package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/wm"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeManager struct {
	mu        sync.Mutex
	frames    map[platform.ClientID]bool // value is maximized
	calls     []string
	applied   []wm.Settings
	reconcile int
}

func newFakeManager(ids ...platform.ClientID) *fakeManager {
	m := &fakeManager{frames: make(map[platform.ClientID]bool)}
	for _, id := range ids {
		m.frames[id] = false
	}
	return m
}

func (m *fakeManager) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *fakeManager) check(op string, id platform.ClientID) error {
	m.record(op)
	if _, ok := m.frames[id]; !ok {
		return wm.ErrUnknownClient
	}
	return nil
}

func (m *fakeManager) Len() int { return len(m.frames) }

func (m *fakeManager) Frames() []frame.State {
	out := make([]frame.State, 0, len(m.frames))
	for id, max := range m.frames {
		out = append(out, frame.State{Client: id, Maximized: max})
	}
	return out
}

func (m *fakeManager) Close(id platform.ClientID) error { return m.check("close", id) }

func (m *fakeManager) ToggleMaximize(id platform.ClientID) error {
	if err := m.check("toggle", id); err != nil {
		return err
	}
	m.frames[id] = !m.frames[id]
	return nil
}

func (m *fakeManager) SetMaximized(id platform.ClientID, maximized bool) error {
	if err := m.check("set-maximized", id); err != nil {
		return err
	}
	m.frames[id] = maximized
	return nil
}

func (m *fakeManager) Minimize(id platform.ClientID) error { return m.check("minimize", id) }

func (m *fakeManager) Apply(s wm.Settings) {
	m.applied = append(m.applied, s)
}

func (m *fakeManager) Reconcile() int {
	m.reconcile++
	return 1
}

// runLoop runs a wm.Loop without X pings until the test ends.
func runLoop(t *testing.T) *wm.Loop {
	t.Helper()
	loop := wm.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx, wm.Pings{})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

func newController(t *testing.T, m *fakeManager) *controller {
	return &controller{
		loop:       runLoop(t),
		manager:    m,
		logger:     discard,
		display:    ":1",
		configPath: "/nonexistent/config.yaml",
		cfg:        config.DefaultConfig(),
		load:       config.LoadFromPath,
		apply: func(cfg *config.Config) error {
			s, err := SettingsFromConfig(cfg, discard)
			if err != nil {
				return err
			}
			m.Apply(s)
			return nil
		},
	}
}

func TestController_StatusAndFrames(t *testing.T) {
	m := newFakeManager(3, 5)
	c := newController(t, m)
	ctx := context.Background()

	status, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Display != ":1" || status.FrameCount != 2 || !status.Animations {
		t.Fatalf("unexpected status %+v", status)
	}

	frames, err := c.Frames(ctx)
	if err != nil || len(frames) != 2 {
		t.Fatalf("Frames = %v, %v", frames, err)
	}
}

func TestController_FrameCommands(t *testing.T) {
	m := newFakeManager(3)
	c := newController(t, m)
	ctx := context.Background()

	if err := c.CloseFrame(ctx, 3); err != nil {
		t.Fatalf("CloseFrame: %v", err)
	}
	if err := c.ToggleMaximize(ctx, 3); err != nil {
		t.Fatalf("ToggleMaximize: %v", err)
	}
	if err := c.MinimizeFrame(ctx, 3); err != nil {
		t.Fatalf("MinimizeFrame: %v", err)
	}
	if err := c.CloseFrame(ctx, 99); !errors.Is(err, wm.ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient, got %v", err)
	}
	if !m.frames[3] {
		t.Fatalf("expected frame 3 maximized after toggle")
	}
}

func TestController_HandleRequest(t *testing.T) {
	m := newFakeManager(3)
	c := newController(t, m)

	c.handleRequest(3, platform.RequestMaximize)
	c.handleRequest(3, platform.RequestMaximize)
	if !m.frames[3] {
		t.Fatalf("expected maximized after maximize requests")
	}
	c.handleRequest(3, platform.RequestRestore)
	if m.frames[3] {
		t.Fatalf("expected restored")
	}
	c.handleRequest(3, platform.RequestToggleMaximize)
	c.handleRequest(3, platform.RequestIconify)
	c.handleRequest(3, platform.RequestClose)
	c.handleRequest(42, platform.RequestClose)

	want := []string{"set-maximized", "set-maximized", "set-maximized", "toggle", "minimize", "close", "close"}
	if len(m.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", m.calls, want)
	}
	for i := range want {
		if m.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", m.calls, want)
		}
	}
}

func TestController_Reload(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvAnimation, "")
	t.Setenv(config.EnvDisplay, "")

	m := newFakeManager()
	c := newController(t, m)
	c.configPath = filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, c.configPath, "border_width: 6\nanimation:\n  enabled: false\n")

	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(m.applied) != 1 || m.applied[0].Metrics.Border != 6 {
		t.Fatalf("expected settings with border 6 applied, got %+v", m.applied)
	}
	status, _ := c.Status(context.Background())
	if status.Animations {
		t.Fatalf("expected status to reflect reloaded config")
	}

	writeConfig(t, c.configPath, "border_width: -3\n")
	if err := c.Reload(context.Background()); err == nil {
		t.Fatalf("expected invalid config to fail reload")
	}
	if len(m.applied) != 1 {
		t.Fatalf("invalid config must not be applied, got %d applies", len(m.applied))
	}
}

func TestReconciler_ReconcileNow(t *testing.T) {
	m := newFakeManager()
	r := NewReconciler(ReconcilerConfig{Interval: time.Hour, Logger: discard}, runLoop(t), m)

	if n := r.ReconcileNow(context.Background()); n != 1 {
		t.Fatalf("ReconcileNow = %d, want 1", n)
	}
	if r.String() != "reconciler" {
		t.Fatalf("unexpected service name %q", r.String())
	}
}

func TestReconciler_ServeTicks(t *testing.T) {
	m := newFakeManager()
	loop := runLoop(t)
	r := NewReconciler(ReconcilerConfig{Interval: 10 * time.Millisecond, Logger: discard}, loop, m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var n int
		loop.Call(context.Background(), func() error { n = m.reconcile; return nil })
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected at least two passes, got %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve returned %v", err)
	}
}

func TestReconciler_DefaultInterval(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{}, nil, nil)
	if r.interval != 10*time.Second {
		t.Fatalf("interval = %v, want 10s", r.interval)
	}
}

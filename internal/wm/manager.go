package wm

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/framewm/internal/anim"
	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/platform"
)

// ErrUnknownClient is returned for operations on clients without a frame.
var ErrUnknownClient = errors.New("client is not framed")

// Settings are the frame parameters that can change at runtime.
type Settings struct {
	Metrics   frame.Metrics
	MinClient geom.Size
	Animation anim.Config
	Duration  time.Duration
}

// SurfaceFactory creates the decoration for a client. ctl becomes usable
// once the frame exists.
type SurfaceFactory func(id platform.ClientID, ctl frame.Controls) (frame.Surface, error)

// ManagerConfig holds configuration for the manager.
type ManagerConfig struct {
	Bridge    platform.Bridge
	Surfaces  SurfaceFactory
	Scheduler anim.Scheduler
	Settings  Settings
	Logger    *slog.Logger
}

// Manager owns every frame. All methods must be called from the loop.
type Manager struct {
	bridge    platform.Bridge
	surfaces  SurfaceFactory
	scheduler anim.Scheduler
	settings  Settings
	logger    *slog.Logger

	frames map[platform.ClientID]*frame.Frame
}

// NewManager creates an empty registry.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		bridge:    cfg.Bridge,
		surfaces:  cfg.Surfaces,
		scheduler: cfg.Scheduler,
		settings:  cfg.Settings,
		logger:    logger,
		frames:    make(map[platform.ClientID]*frame.Frame),
	}
}

// Manage frames id and shows it. Managing a framed client is a no-op.
func (m *Manager) Manage(id platform.ClientID) (*frame.Frame, error) {
	if f, ok := m.frames[id]; ok {
		return f, nil
	}

	ctl := &deferredControls{}
	surface, err := m.surfaces(id, ctl)
	if err != nil {
		return nil, fmt.Errorf("create decoration for client %d: %w", id, err)
	}

	s := m.settings
	f, err := frame.New(frame.Config{
		Client:            id,
		Bridge:            m.bridge,
		Surface:           surface,
		Metrics:           s.Metrics,
		MinClient:         s.MinClient,
		Animation:         s.Animation,
		AnimationDuration: s.Duration,
		Scheduler:         m.scheduler,
		Logger:            m.logger,
		OnClosed:          m.forget,
	})
	if err != nil {
		surface.Destroy()
		return nil, fmt.Errorf("frame client %d: %w", id, err)
	}
	if f.Closed() {
		return nil, fmt.Errorf("frame client %d: %w", id, platform.ErrStaleClient)
	}
	ctl.frame = f
	m.frames[id] = f

	m.logger.Info("client framed", "client", id, "frame", f.Geometry().Rect.String())
	f.Show()
	return f, nil
}

func (m *Manager) forget(id platform.ClientID) {
	if _, ok := m.frames[id]; !ok {
		return
	}
	delete(m.frames, id)
	m.logger.Info("frame closed", "client", id)
}

// Unmanage removes the frame and hands the client back to the root window.
func (m *Manager) Unmanage(id platform.ClientID) error {
	f, ok := m.frames[id]
	if !ok {
		return fmt.Errorf("unmanage client %d: %w", id, ErrUnknownClient)
	}
	f.Destroy()
	return nil
}

// Frame returns the frame of id.
func (m *Manager) Frame(id platform.ClientID) (*frame.Frame, bool) {
	f, ok := m.frames[id]
	return f, ok
}

// Len returns the number of frames.
func (m *Manager) Len() int {
	return len(m.frames)
}

// Frames returns a snapshot of every frame ordered by client id.
func (m *Manager) Frames() []frame.State {
	out := make([]frame.State, 0, len(m.frames))
	for _, f := range m.frames {
		out = append(out, f.State())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Client < out[j].Client
	})
	return out
}

// Close asks the client of id to close.
func (m *Manager) Close(id platform.ClientID) error {
	f, ok := m.frames[id]
	if !ok {
		return fmt.Errorf("close client %d: %w", id, ErrUnknownClient)
	}
	f.RequestClose()
	return nil
}

// ToggleMaximize maximizes or restores the frame of id.
func (m *Manager) ToggleMaximize(id platform.ClientID) error {
	f, ok := m.frames[id]
	if !ok {
		return fmt.Errorf("toggle maximize client %d: %w", id, ErrUnknownClient)
	}
	f.ToggleMaximize()
	return nil
}

// SetMaximized maximizes or restores the frame of id unless it is already
// in that state.
func (m *Manager) SetMaximized(id platform.ClientID, maximized bool) error {
	f, ok := m.frames[id]
	if !ok {
		return fmt.Errorf("set maximized client %d: %w", id, ErrUnknownClient)
	}
	if f.Maximized() != maximized {
		f.ToggleMaximize()
	}
	return nil
}

// Minimize iconifies the client of id.
func (m *Manager) Minimize(id platform.ClientID) error {
	f, ok := m.frames[id]
	if !ok {
		return fmt.Errorf("minimize client %d: %w", id, ErrUnknownClient)
	}
	f.Minimize()
	return nil
}

// Settings returns the settings new frames are created with.
func (m *Manager) Settings() Settings {
	return m.settings
}

// Apply switches every frame, and frames created later, to s.
func (m *Manager) Apply(s Settings) {
	m.settings = s
	for _, f := range m.frames {
		f.SetMetrics(s.Metrics, s.MinClient)
		f.SetAnimation(s.Animation, s.Duration)
	}
	m.logger.Info("settings applied",
		"frames", len(m.frames),
		"border", s.Metrics.Border,
		"title", s.Metrics.Title,
		"animation", s.Animation.Enabled)
}

// Reconcile closes frames whose client vanished without a notification.
// It returns the number of frames closed.
func (m *Manager) Reconcile() int {
	var stale []*frame.Frame
	for id, f := range m.frames {
		if _, err := m.bridge.Title(id); errors.Is(err, platform.ErrStaleClient) {
			stale = append(stale, f)
		}
	}
	for _, f := range stale {
		m.logger.Info("reconcile: client vanished", "client", f.ID())
		f.Notify(platform.Closed)
	}
	return len(stale)
}

// Shutdown destroys every frame, releasing the clients.
func (m *Manager) Shutdown() {
	frames := make([]*frame.Frame, 0, len(m.frames))
	for _, f := range m.frames {
		frames = append(frames, f)
	}
	for _, f := range frames {
		f.Destroy()
	}
}

// deferredControls forwards to the frame once it has been created; the
// decoration exists before the frame does.
type deferredControls struct {
	frame *frame.Frame
}

func (c *deferredControls) OnPointerPress(local, global geom.Point, button frame.Button) {
	if c.frame != nil {
		c.frame.OnPointerPress(local, global, button)
	}
}

func (c *deferredControls) OnPointerMove(local, global geom.Point) {
	if c.frame != nil {
		c.frame.OnPointerMove(local, global)
	}
}

func (c *deferredControls) OnPointerRelease(local, global geom.Point, button frame.Button) {
	if c.frame != nil {
		c.frame.OnPointerRelease(local, global, button)
	}
}

func (c *deferredControls) RequestClose() {
	if c.frame != nil {
		c.frame.RequestClose()
	}
}

func (c *deferredControls) ToggleMaximize() {
	if c.frame != nil {
		c.frame.ToggleMaximize()
	}
}

func (c *deferredControls) Minimize() {
	if c.frame != nil {
		c.frame.Minimize()
	}
}

func (c *deferredControls) Maximized() bool {
	return c.frame != nil && c.frame.Maximized()
}

func (c *deferredControls) HandleMenuAction(action string) error {
	if c.frame == nil {
		return ErrUnknownClient
	}
	return c.frame.HandleMenuAction(action)
}

// Package frame implements the decorated frame around a client window:
// hit-testing, geometry translation and the pointer-driven move/resize
// state machine.
package frame

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/framewm/internal/anim"
	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/menu"
	"github.com/1broseidon/framewm/internal/platform"
)

// DefaultCloseGrace is how long a client may take to go away after a close
// request before its frame is shown again.
const DefaultCloseGrace = 3 * time.Second

// Config holds everything a Frame needs at construction.
type Config struct {
	Client    platform.ClientID
	Bridge    platform.Bridge
	Surface   Surface
	Metrics   Metrics
	MinClient geom.Size

	Animation         anim.Config
	AnimationDuration time.Duration
	// Scheduler delivers animation ticks; nil completes every transition
	// immediately.
	Scheduler anim.Scheduler
	// CloseGrace overrides DefaultCloseGrace. Without a Scheduler a client
	// that survives a close request stays hidden until it goes away.
	CloseGrace time.Duration

	Logger *slog.Logger
	// OnClosed runs once after the frame has been torn down.
	OnClosed func(id platform.ClientID)
}

// State is a read-only snapshot of a frame.
type State struct {
	Client    platform.ClientID `json:"client_id"`
	Title     string            `json:"title"`
	Frame     geom.Rect         `json:"frame"`
	Content   geom.Rect         `json:"client"`
	Zone      string            `json:"zone"`
	Maximized bool              `json:"maximized"`
	Visible   bool              `json:"visible"`
	Closing   bool              `json:"closing,omitempty"`
	Animation string            `json:"animation,omitempty"`
}

// Frame decorates one client window. All methods must be called from the UI
// control flow.
type Frame struct {
	id        platform.ClientID
	bridge    platform.Bridge
	surface   Surface
	metrics   Metrics
	minClient geom.Size
	duration  time.Duration
	sched     anim.Scheduler
	grace     time.Duration
	logger    *slog.Logger
	onClosed  func(platform.ClientID)

	geometry    Geometry
	interaction Interaction
	saved       *Geometry
	anim        *anim.Controller

	title    string
	cursor   CursorShape
	visible  bool
	detached bool
	// closing is set from a close request until the client goes away or
	// the grace period restores it.
	closing   bool
	stopGrace func()
	closed    bool
	cancels   []func()
}

// New reads the client geometry, embeds the client into the surface and
// subscribes to its notifications. The frame starts hidden; call Show.
func New(cfg Config) (*Frame, error) {
	if cfg.Bridge == nil {
		return nil, errors.New("frame: bridge is required")
	}
	if cfg.Surface == nil {
		return nil, errors.New("frame: surface is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("client", cfg.Client)

	f := &Frame{
		id:        cfg.Client,
		bridge:    cfg.Bridge,
		surface:   cfg.Surface,
		metrics:   cfg.Metrics,
		minClient: cfg.MinClient,
		duration:  cfg.AnimationDuration,
		sched:     cfg.Scheduler,
		grace:     cfg.CloseGrace,
		logger:    logger,
		onClosed:  cfg.OnClosed,
		cursor:    CursorPointer,
	}
	if f.grace <= 0 {
		f.grace = DefaultCloseGrace
	}
	animCfg := cfg.Animation
	if animCfg.Logger == nil {
		animCfg.Logger = logger
	}
	f.anim = anim.New(animTarget{f}, cfg.Scheduler, animCfg)

	client, err := f.bridge.Geometry(f.id, false)
	if err != nil {
		return nil, fmt.Errorf("read client geometry: %w", err)
	}
	f.geometry = ToFrame(f.sanitize(client), f.metrics)
	// Read before anything is embedded so a vanished client leaves nothing
	// behind.
	title, err := f.bridge.Title(f.id)
	if err != nil {
		if errors.Is(err, platform.ErrStaleClient) {
			return nil, fmt.Errorf("read client title: %w", err)
		}
		f.logger.Warn("read title failed", "error", err)
	}
	f.surface.SetMetrics(f.metrics)
	f.surface.Resize(f.geometry.Rect)
	if err := f.surface.ReparentClient(f.metrics.ClientOffset()); err != nil {
		f.surface.Destroy()
		return nil, fmt.Errorf("reparent client: %w", err)
	}

	for _, kind := range platform.Notifications {
		f.cancels = append(f.cancels, f.bridge.Subscribe(f.id, kind, func() {
			f.Notify(kind)
		}))
	}
	f.title = title
	f.surface.SetTitle(title)
	return f, nil
}

// ID returns the client handle.
func (f *Frame) ID() platform.ClientID {
	return f.id
}

// Geometry returns the current frame geometry.
func (f *Frame) Geometry() Geometry {
	return f.geometry
}

// Interaction returns the current pointer interaction.
func (f *Frame) Interaction() Interaction {
	return f.interaction
}

// Closed reports whether the frame has been torn down.
func (f *Frame) Closed() bool {
	return f.closed
}

// State returns a snapshot for status reporting.
func (f *Frame) State() State {
	s := State{
		Client:    f.id,
		Title:     f.title,
		Frame:     f.geometry.Rect,
		Content:   Placed(f.geometry, f.metrics),
		Zone:      f.interaction.Zone().String(),
		Maximized: f.saved != nil,
		Visible:   f.visible,
		Closing:   f.closing,
	}
	if spec, ok := f.anim.Current(); ok {
		s.Animation = spec.Action.String()
	}
	return s
}

// OnPointerPress starts a move or resize grab. local is relative to the
// frame, global to the root window.
func (f *Frame) OnPointerPress(local, global geom.Point, button Button) {
	if f.closed || f.interaction.Active() {
		return
	}
	if f.anim.Active() {
		f.logger.Debug("press ignored while animating")
		return
	}

	size := f.geometry.Size()
	content := f.metrics.Content(size)

	var zone Zone
	var offset geom.Point
	if content.Contains(local) {
		if button != ButtonPrimary {
			return
		}
		zone, offset = Move, local
	} else {
		zone, offset = HitTest(local, size, content, true)
	}

	next, ok := f.interaction.Press(zone, offset)
	if !ok {
		return
	}
	f.interaction = next
	f.logger.Debug("grab started", "zone", zone.String(), "offset", offset)

	shape := CursorFor(zone)
	if err := f.surface.GrabPointer(shape); err != nil {
		f.logger.Warn("pointer grab failed", "error", err)
	}
	f.cursor = shape
}

// OnPointerMove updates the hover cursor, or the geometry during a grab.
func (f *Frame) OnPointerMove(local, global geom.Point) {
	if f.closed {
		return
	}
	if !f.interaction.Active() {
		f.hover(local)
		return
	}

	next := f.dragTo(global)
	if next == f.geometry.Rect {
		return
	}
	f.apply(Geometry{Rect: next})
}

// OnPointerRelease ends a grab. A secondary release on the titlebar outside
// any grab opens the contextual menu.
func (f *Frame) OnPointerRelease(local, global geom.Point, button Button) {
	if f.closed {
		return
	}
	if !f.interaction.Active() {
		if button == ButtonSecondary && f.metrics.Titlebar(f.geometry.Size()).Contains(local) {
			f.surface.ShowMenu(global)
		}
		return
	}

	f.endGrab()
	f.hover(local)
}

// dragTo computes the frame rectangle for the pointer at global. Only the
// edges of the active zone move.
func (f *Frame) dragTo(global geom.Point) geom.Rect {
	zone := f.interaction.Zone()
	offset, _ := f.interaction.Offset()
	r := f.geometry.Rect

	if zone == Move {
		r.X = max(global.X-offset.X, 0)
		r.Y = max(global.Y-offset.Y, 0)
		return r
	}

	left, top, right, bottom := r.Left(), r.Top(), r.Right(), r.Bottom()
	if zone.movesLeft() {
		left = max(global.X-offset.X, 0)
	}
	if zone.movesRight() {
		right = global.X + offset.X
	}
	if zone.movesTop() {
		top = max(global.Y-offset.Y, 0)
	}
	if zone.movesBottom() {
		bottom = global.Y + offset.Y
	}

	minSize := f.metrics.MinFrame(f.minClient)
	if right-left < minSize.Width {
		if zone.movesLeft() && right >= minSize.Width {
			left = right - minSize.Width
		} else {
			right = left + minSize.Width
		}
	}
	if bottom-top < minSize.Height {
		if zone.movesTop() && bottom >= minSize.Height {
			top = bottom - minSize.Height
		} else {
			bottom = top + minSize.Height
		}
	}
	return geom.FromEdges(left, top, right, bottom)
}

func (f *Frame) hover(local geom.Point) {
	size := f.geometry.Size()
	zone, _ := HitTest(local, size, f.metrics.Content(size), false)
	shape := CursorFor(zone)
	if shape == f.cursor {
		return
	}
	f.cursor = shape
	f.surface.SetCursor(shape)
}

func (f *Frame) endGrab() {
	if !f.interaction.Active() {
		return
	}
	f.logger.Debug("grab ended", "zone", f.interaction.Zone().String(), "frame", f.geometry.Rect)
	f.interaction = f.interaction.Release()
	f.surface.UngrabPointer()
}

// apply makes g the frame geometry and pushes the rectangle the embedded
// client now occupies.
func (f *Frame) apply(g Geometry) {
	f.geometry = g
	if !f.anim.Active() {
		f.surface.Resize(g.Rect)
	}
	if err := f.bridge.SetGeometry(f.id, Placed(g, f.metrics)); err != nil {
		f.fail("set client geometry", err)
	}
}

// fail logs a bridge error and tears the frame down if the client is gone.
// It reports whether the frame is still usable.
func (f *Frame) fail(op string, err error) bool {
	if errors.Is(err, platform.ErrStaleClient) {
		f.logger.Info("client vanished", "op", op)
		f.detached = true
		f.teardown()
		return false
	}
	f.logger.Warn(op+" failed", "error", err)
	return true
}

// RequestClose asks the client to close and plays the close transition with
// the client hidden inside the frame. The frame is torn down once the client
// is gone; a client still alive after the grace period is shown again.
func (f *Frame) RequestClose() {
	if f.closed || f.closing {
		return
	}
	if err := f.bridge.RequestClose(f.id); err != nil {
		if !f.fail("request close", err) {
			return
		}
	}
	f.beginClose()
}

// Closing reports whether a close is in progress.
func (f *Frame) Closing() bool {
	return f.closing
}

func (f *Frame) beginClose() {
	if f.closing {
		return
	}
	f.closing = true
	f.endGrab()
	if !f.detached {
		f.surface.SetClientVisible(false)
	}
	f.anim.Begin(anim.CloseSpec(f.geometry.Rect, f.duration))
}

// clientGone finishes a close once the client no longer exists.
func (f *Frame) clientGone() {
	f.detached = true
	if !f.closing {
		f.beginClose()
		return
	}
	// A running close transition tears down on completion.
	if !f.anim.Active() {
		f.teardown()
	}
}

// awaitClient leaves the hidden frame waiting for the client to go away.
func (f *Frame) awaitClient() {
	if f.sched == nil {
		return
	}
	f.stopGrace = f.sched.AfterFunc(f.grace, func() {
		f.stopGrace = nil
		if f.closed || !f.closing {
			return
		}
		if _, err := f.bridge.Title(f.id); err != nil {
			if !f.fail("check closing client", err) {
				return
			}
		}
		f.logger.Info("client survived close request")
		f.reopen()
	})
}

// reopen abandons a close and shows the frame with its client again.
func (f *Frame) reopen() {
	if f.stopGrace != nil {
		f.stopGrace()
		f.stopGrace = nil
	}
	f.closing = false
	f.surface.SetClientVisible(true)
	f.Show()
}

// ToggleMaximize fills the work area, or restores the saved geometry.
func (f *Frame) ToggleMaximize() {
	if f.closed || f.closing || f.interaction.Active() {
		return
	}

	if f.saved != nil {
		restore := *f.saved
		f.saved = nil
		f.apply(restore)
		if f.closed {
			return
		}
		if err := f.bridge.SetMaximized(f.id, false); err != nil {
			f.fail("clear maximized state", err)
		}
		return
	}

	area, err := f.bridge.WorkArea(f.id)
	if err != nil {
		f.fail("read work area", err)
		return
	}
	saved := f.geometry
	f.saved = &saved
	f.apply(Geometry{Rect: area})
	if f.closed {
		return
	}
	if err := f.bridge.SetMaximized(f.id, true); err != nil {
		f.fail("set maximized state", err)
	}
}

// Maximized reports whether a saved geometry is held.
func (f *Frame) Maximized() bool {
	return f.saved != nil
}

// SyncFromClient recomputes the frame from the client geometry. It is a no-op
// during a grab; the grab owns the geometry until release.
func (f *Frame) SyncFromClient() {
	if f.closed {
		return
	}
	if f.interaction.Active() {
		f.logger.Debug("external geometry change ignored during grab")
		return
	}
	client, err := f.bridge.Geometry(f.id, false)
	if err != nil {
		f.fail("read client geometry", err)
		return
	}
	f.apply(ToFrame(f.sanitize(client), f.metrics))
}

func (f *Frame) sanitize(r geom.Rect) geom.Rect {
	if r.Width > 0 && r.Height > 0 {
		return r
	}
	f.logger.Warn("invalid client geometry, clamping", "geometry", r)
	r.Width = max(r.Width, 1)
	r.Height = max(r.Height, 1)
	return r
}

// SyncTitle refreshes the titlebar text.
func (f *Frame) SyncTitle() {
	if f.closed {
		return
	}
	title, err := f.bridge.Title(f.id)
	if err != nil {
		f.fail("read title", err)
		return
	}
	f.title = title
	f.surface.SetTitle(title)
}

// Show maps the decoration and plays the show transition. On a frame whose
// close transition has finished it abandons the close.
func (f *Frame) Show() {
	if f.closed {
		return
	}
	if f.closing {
		if !f.anim.Active() {
			f.reopen()
		}
		return
	}
	if spec, ok := f.anim.Current(); ok && spec.Action == anim.Show {
		return
	}
	if f.visible && !f.anim.Active() {
		return
	}
	f.surface.SetVisible(true)
	f.anim.Begin(anim.ShowSpec(f.geometry.Rect, f.duration))
}

// Hide plays the hide transition and unmaps the decoration.
func (f *Frame) Hide() {
	if f.closed {
		return
	}
	if spec, ok := f.anim.Current(); ok && spec.Action == anim.Hide {
		return
	}
	if !f.visible && !f.anim.Active() {
		return
	}
	f.endGrab()
	f.anim.Begin(anim.HideSpec(f.geometry.Rect, f.duration))
}

// Minimize iconifies the client and hides the frame.
func (f *Frame) Minimize() {
	if f.closed || f.closing {
		return
	}
	if err := f.bridge.Iconify(f.id); err != nil {
		if !f.fail("iconify", err) {
			return
		}
	}
	f.Hide()
}

// HandleMenuAction runs a contextual menu selection.
func (f *Frame) HandleMenuAction(action string) error {
	switch action {
	case menu.ActionMinimize:
		f.Minimize()
	case menu.ActionMaximize:
		f.ToggleMaximize()
	case menu.ActionClose:
		f.RequestClose()
	default:
		return fmt.Errorf("unknown menu action %q", action)
	}
	return nil
}

// Notify dispatches a window-system notification.
func (f *Frame) Notify(kind platform.Notification) {
	if f.closed {
		return
	}
	f.logger.Debug("notification", "kind", kind.String())
	switch kind {
	case platform.Shown:
		f.Show()
	case platform.Hidden:
		f.Hide()
	case platform.Closed:
		f.clientGone()
	case platform.MoveResize:
		f.SyncFromClient()
	case platform.TitleChanged:
		f.SyncTitle()
	}
}

// SetMetrics re-derives the frame around the unchanged client rectangle. A
// maximized frame keeps filling the work area and its restore geometry is
// re-derived for the new metrics.
func (f *Frame) SetMetrics(m Metrics, minClient geom.Size) {
	if f.closed {
		return
	}
	old := f.metrics
	client := Placed(f.geometry, old)
	f.metrics = m
	f.minClient = minClient
	f.surface.SetMetrics(m)
	if err := f.surface.ReparentClient(m.ClientOffset()); err != nil {
		if !f.fail("reposition client", err) {
			return
		}
	}
	if f.saved != nil {
		restore := ToFrame(ToClient(*f.saved, old), m)
		f.saved = &restore
		f.apply(Geometry{Rect: f.geometry.Rect})
		return
	}
	f.apply(ToFrame(client, m))
}

// SetAnimation replaces the transition settings.
func (f *Frame) SetAnimation(cfg anim.Config, duration time.Duration) {
	if cfg.Logger == nil {
		cfg.Logger = f.logger
	}
	f.anim.SetConfig(cfg)
	f.duration = duration
}

// Destroy tears the frame down immediately, handing the client back to the
// root window.
func (f *Frame) Destroy() {
	f.teardown()
}

func (f *Frame) teardown() {
	if f.closed {
		return
	}
	f.closed = true
	f.closing = false
	if f.stopGrace != nil {
		f.stopGrace()
		f.stopGrace = nil
	}
	f.anim.Cancel()
	f.endGrab()
	for _, cancel := range f.cancels {
		if cancel != nil {
			cancel()
		}
	}
	f.cancels = nil
	if !f.detached {
		f.detached = true
		f.surface.DetachClient()
	}
	f.surface.Destroy()
	f.visible = false
	f.logger.Debug("frame torn down")
	if f.onClosed != nil {
		f.onClosed(f.id)
	}
}

type animTarget struct{ f *Frame }

func (t animTarget) Render(r geom.Rect) {
	t.f.surface.Resize(r)
}

func (t animTarget) Complete(a anim.Action) {
	f := t.f
	switch a {
	case anim.Show:
		f.surface.Resize(f.geometry.Rect)
		f.visible = true
	case anim.Hide:
		f.surface.SetVisible(false)
		f.surface.Resize(f.geometry.Rect)
		f.visible = false
	case anim.Close:
		if f.detached {
			f.teardown()
			return
		}
		f.surface.SetVisible(false)
		f.surface.Resize(f.geometry.Rect)
		f.visible = false
		f.awaitClient()
	}
}

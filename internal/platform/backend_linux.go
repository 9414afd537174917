//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/x11"
)

// Extents are the decoration sizes published on an embedded client.
type Extents struct {
	Left, Right, Top, Bottom int
}

// LinuxBridge implements Bridge on top of an X11 connection. Like every X
// callback it must only be used from the event loop goroutine.
type LinuxBridge struct {
	conn    *x11.Connection
	logger  *slog.Logger
	clients map[ClientID]*client
	titles  map[xproto.Atom]bool

	requests func(id ClientID, r ClientRequest)
}

type client struct {
	win           *xwindow.Window
	parent        xproto.Window
	offset        geom.Point
	pending       *geom.Rect // geometry the client asked for and nobody applied yet
	pendingUnmaps int
	hidden        bool // unmapped by SetEmbeddedVisible
	nextSub       int
	subs          map[Notification]map[int]func()
}

var _ Bridge = (*LinuxBridge)(nil)

// NewLinuxBridge wraps an existing X11 connection.
func NewLinuxBridge(conn *x11.Connection, logger *slog.Logger) *LinuxBridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &LinuxBridge{
		conn:    conn,
		logger:  logger,
		clients: make(map[ClientID]*client),
		titles:  make(map[xproto.Atom]bool),
	}
	for _, name := range x11.TitleAtoms {
		if atom, err := xprop.Atm(conn.XUtil, name); err == nil {
			b.titles[atom] = true
		}
	}
	return b
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBridge) XUtil() *xgbutil.XUtil {
	return b.conn.XUtil
}

// Connection returns the wrapped X11 connection.
func (b *LinuxBridge) Connection() *x11.Connection {
	return b.conn
}

// OnRequest sets the handler for client messages asking a tracked client
// to be closed, iconified or maximized.
func (b *LinuxBridge) OnRequest(fn func(id ClientID, r ClientRequest)) {
	b.requests = fn
}

// Tracked reports whether id has an entry, i.e. somebody subscribed to it or
// embedded it.
func (b *LinuxBridge) Tracked(id ClientID) bool {
	_, ok := b.clients[id]
	return ok
}

func (b *LinuxBridge) stale(id ClientID, op string, err error) error {
	if x11.IsBadWindow(err) {
		b.forget(id)
		return fmt.Errorf("%s client %d: %w", op, id, ErrStaleClient)
	}
	return fmt.Errorf("%s client %d: %w", op, id, err)
}

// track returns the entry for id, selecting the events the bridge needs on
// first use.
func (b *LinuxBridge) track(id ClientID) *client {
	if c, ok := b.clients[id]; ok {
		return c
	}

	xu := b.conn.XUtil
	win := xwindow.New(xu, xproto.Window(id))
	c := &client{
		win:  win,
		subs: make(map[Notification]map[int]func()),
	}
	b.clients[id] = c

	if err := win.Listen(xproto.EventMaskStructureNotify, xproto.EventMaskPropertyChange); err != nil {
		b.logger.Debug("select client events failed", "client", id, "error", err)
	}

	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if ev.Event != ev.Window {
			return
		}
		b.emit(id, Closed)
		b.forget(id)
	}).Connect(xu, win.Id)

	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		if ev.Event != ev.Window {
			return
		}
		if c.pendingUnmaps > 0 {
			c.pendingUnmaps--
			return
		}
		b.emit(id, Hidden)
	}).Connect(xu, win.Id)

	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		b.emit(id, Shown)
	}).Connect(xu, win.Id)

	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if b.titles[ev.Atom] {
			b.emit(id, TitleChanged)
		}
	}).Connect(xu, win.Id)

	xevent.ConfigureRequestFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		if ev.Window != win.Id {
			return
		}
		b.configureRequest(id, c, ev)
	}).Connect(xu, win.Id)

	xevent.ClientMessageFun(func(_ *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if b.requests == nil || ev.Format != 32 {
			return
		}
		msgType, err := xprop.AtomName(xu, ev.Type)
		if err != nil {
			return
		}
		atomName := func(a uint32) string {
			name, _ := xprop.AtomName(xu, xproto.Atom(a))
			return name
		}
		if req, ok := decodeClientMessage(msgType, ev.Data.Data32, atomName); ok {
			b.logger.Debug("client request", "client", id, "request", req.String())
			b.requests(id, req)
		}
	}).Connect(xu, win.Id)

	xevent.MapRequestFun(func(_ *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		if ev.Window != win.Id {
			return
		}
		// A client leaving the iconic state maps itself again.
		if err := b.conn.SetIconic(win.Id, false); err != nil {
			b.logger.Debug("clear iconic state failed", "client", id, "error", err)
		}
		c.hidden = false
		win.Map()
	}).Connect(xu, win.Id)

	return c
}

func (b *LinuxBridge) configureRequest(id ClientID, c *client, ev xevent.ConfigureRequestEvent) {
	current := c.pending
	if current == nil {
		r, err := b.conn.WindowRect(c.win.Id)
		if err != nil {
			b.logger.Debug("configure request on unreadable client", "client", id, "error", err)
			return
		}
		current = &r
	}
	next := mergeConfigure(*current, ev.ValueMask, int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height), c.parent != 0)
	c.pending = &next

	if !b.hasSubscribers(c, MoveResize) {
		// Nobody frames it; grant the request as asked.
		b.conn.ConfigureUnmanaged(*ev.ConfigureRequestEvent)
		c.pending = nil
		return
	}
	b.emit(id, MoveResize)
}

// mergeConfigure applies the fields a ConfigureRequest carries. Embedded
// clients keep their position: a reparented client's X and Y are relative
// to its frame, so they are not honoured.
func mergeConfigure(r geom.Rect, mask uint16, x, y, w, h int, embedded bool) geom.Rect {
	if !embedded {
		if mask&xproto.ConfigWindowX != 0 {
			r.X = x
		}
		if mask&xproto.ConfigWindowY != 0 {
			r.Y = y
		}
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		r.Width = w
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		r.Height = h
	}
	return r
}

func (b *LinuxBridge) hasSubscribers(c *client, kind Notification) bool {
	return len(c.subs[kind]) > 0
}

func (b *LinuxBridge) emit(id ClientID, kind Notification) {
	c, ok := b.clients[id]
	if !ok {
		return
	}
	fns := make([]func(), 0, len(c.subs[kind]))
	for _, fn := range c.subs[kind] {
		fns = append(fns, fn)
	}
	b.logger.Debug("client notification", "client", id, "kind", kind.String(), "subscribers", len(fns))
	for _, fn := range fns {
		fn()
	}
}

func (b *LinuxBridge) forget(id ClientID) {
	c, ok := b.clients[id]
	if !ok {
		return
	}
	delete(b.clients, id)
	xevent.Detach(b.conn.XUtil, c.win.Id)
}

// Geometry returns the client rectangle in root coordinates. A pending
// configure request from the client takes precedence over the live window.
func (b *LinuxBridge) Geometry(id ClientID, includeFrame bool) (geom.Rect, error) {
	c := b.track(id)

	target := c.win.Id
	if includeFrame && c.parent != 0 {
		target = c.parent
	}
	r, err := b.conn.WindowRect(target)
	if err != nil {
		return geom.Rect{}, b.stale(id, "geometry of", err)
	}
	if !includeFrame && c.pending != nil {
		return *c.pending, nil
	}
	return r, nil
}

// SetGeometry places the client at r in root coordinates. Embedded clients
// are only resized inside their frame and told their root position.
func (b *LinuxBridge) SetGeometry(id ClientID, r geom.Rect) error {
	c := b.track(id)
	c.pending = nil

	local := r.Origin()
	if c.parent != 0 {
		local = c.offset
	}
	if err := b.conn.ConfigureClient(c.win.Id, local, r); err != nil {
		return b.stale(id, "configure", err)
	}
	return nil
}

// Title returns the best available name, or ErrStaleClient when the window
// is gone.
func (b *LinuxBridge) Title(id ClientID) (string, error) {
	title := b.conn.WindowTitle(xproto.Window(id))
	if title != "" {
		return title, nil
	}
	alive, err := b.conn.Exists(xproto.Window(id))
	if err != nil {
		return "", fmt.Errorf("title of client %d: %w", id, err)
	}
	if !alive {
		b.forget(id)
		return "", fmt.Errorf("title of client %d: %w", id, ErrStaleClient)
	}
	return "", nil
}

// RequestClose sends WM_DELETE_WINDOW when supported and kills the client
// otherwise.
func (b *LinuxBridge) RequestClose(id ClientID) error {
	if err := b.conn.CloseWindow(xproto.Window(id)); err != nil {
		return b.stale(id, "close", err)
	}
	return nil
}

// Subscribe registers fn for kind on id.
func (b *LinuxBridge) Subscribe(id ClientID, kind Notification, fn func()) func() {
	c := b.track(id)
	if c.subs[kind] == nil {
		c.subs[kind] = make(map[int]func())
	}
	key := c.nextSub
	c.nextSub++
	c.subs[kind][key] = fn

	return func() {
		if cur, ok := b.clients[id]; ok && cur == c {
			delete(c.subs[kind], key)
		}
	}
}

// WorkArea returns the usable area of the monitor holding the framed client.
func (b *LinuxBridge) WorkArea(id ClientID) (geom.Rect, error) {
	r, err := b.Geometry(id, true)
	if err != nil {
		return geom.Rect{}, err
	}
	return b.conn.WorkAreaFor(r)
}

// SetMaximized records the maximized state in _NET_WM_STATE.
func (b *LinuxBridge) SetMaximized(id ClientID, maximized bool) error {
	if err := b.conn.SetMaximizedState(xproto.Window(id), maximized); err != nil {
		return b.stale(id, "set maximized state on", err)
	}
	return nil
}

// Iconify marks the client iconic and unmaps it.
func (b *LinuxBridge) Iconify(id ClientID) error {
	c := b.track(id)
	if err := b.conn.SetIconic(c.win.Id, true); err != nil {
		return b.stale(id, "iconify", err)
	}
	c.win.Unmap()
	return nil
}

// Embed reparents the client into parent at offset, maps it and publishes
// the frame extents. The unmap X generates for a mapped window is swallowed.
// A client already inside parent is only moved to offset.
func (b *LinuxBridge) Embed(id ClientID, parent xproto.Window, offset geom.Point, ext Extents) error {
	c := b.track(id)

	mapped, err := b.conn.IsMapped(c.win.Id)
	if err != nil {
		return b.stale(id, "embed", err)
	}
	if c.parent == parent {
		c.win.Move(offset.X, offset.Y)
	} else {
		swallow := reparentUnmaps(c.parent, parent, mapped)
		c.pendingUnmaps += swallow
		if err := b.conn.Reparent(c.win.Id, parent, offset); err != nil {
			c.pendingUnmaps -= swallow
			return b.stale(id, "reparent", err)
		}
		c.parent = parent
		if !c.hidden {
			c.win.Map()
		}
	}
	c.offset = offset

	if err := b.conn.SetFrameExtents(c.win.Id, ext.Left, ext.Right, ext.Top, ext.Bottom); err != nil {
		b.logger.Debug("set frame extents failed", "client", id, "error", err)
	}
	if err := b.conn.SetIconic(c.win.Id, false); err != nil {
		b.logger.Debug("set normal state failed", "client", id, "error", err)
	}
	return nil
}

// reparentUnmaps is the number of UnmapNotify events moving a window from
// current to parent produces. Staying in the same parent is done without a
// reparent and produces none.
func reparentUnmaps(current, parent xproto.Window, mapped bool) int {
	if current == parent || !mapped {
		return 0
	}
	return 1
}

// SetEmbeddedVisible unmaps or maps a client without moving it. Its own
// unmap is not reported as Hidden.
func (b *LinuxBridge) SetEmbeddedVisible(id ClientID, visible bool) error {
	c := b.track(id)
	if visible {
		if !c.hidden {
			return nil
		}
		c.hidden = false
		c.win.Map()
		return nil
	}
	if c.hidden {
		return nil
	}
	mapped, err := b.conn.IsMapped(c.win.Id)
	if err != nil {
		return b.stale(id, "hide", err)
	}
	c.hidden = true
	if mapped {
		c.pendingUnmaps++
		c.win.Unmap()
	}
	return nil
}

// Release gives the client back to the root window at its current screen
// position and stops tracking it.
func (b *LinuxBridge) Release(id ClientID) error {
	c, ok := b.clients[id]
	if !ok || c.parent == 0 {
		b.forget(id)
		return nil
	}
	defer b.forget(id)

	r, err := b.conn.WindowRect(c.win.Id)
	if err != nil {
		return b.stale(id, "release", err)
	}
	if err := b.conn.Reparent(c.win.Id, b.conn.Root, r.Origin()); err != nil {
		if x11.IsBadWindow(err) {
			return nil
		}
		return fmt.Errorf("release client %d: %w", id, err)
	}
	if c.hidden {
		c.win.Map()
	}
	if err := c.win.Listen(); err != nil {
		b.logger.Debug("clear client event mask failed", "client", id, "error", err)
	}
	return nil
}

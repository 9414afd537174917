package decor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
	"github.com/1broseidon/framewm/internal/menu"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/x11"
)

// ErrGrabRefused is returned when the server does not grant a pointer grab.
var ErrGrabRefused = errors.New("pointer grab refused")

// Factory creates decorations sharing one connection, cursor cache and style.
type Factory struct {
	Conn    *x11.Connection
	Bridge  *platform.LinuxBridge
	Cursors *Cursors
	Style   Style
	// Menu backs the titlebar menu; nil disables it.
	Menu menu.Backend
	// Post runs fn on the event loop. The menu runs an external program and
	// reports back through it.
	Post   func(fn func())
	Logger *slog.Logger
}

// New creates the decoration windows for one client. They stay unmapped
// until SetVisible.
func (f *Factory) New(id platform.ClientID, ctl frame.Controls) (frame.Surface, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cursors := f.Cursors
	if cursors == nil {
		cursors = NewCursors(f.Conn.XUtil)
	}
	d := &Decoration{
		xu:      f.Conn.XUtil,
		root:    f.Conn.Root,
		bridge:  f.Bridge,
		cursors: cursors,
		style:   f.Style,
		menu:    f.Menu,
		post:    f.Post,
		logger:  logger.With("client", id),
		id:      id,
		ctl:     ctl,
		ascent:  10,
	}
	if err := d.create(); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

// Decoration is the X11 frame.Surface.
type Decoration struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	bridge  *platform.LinuxBridge
	cursors *Cursors
	style   Style
	menu    menu.Backend
	post    func(func())
	logger  *slog.Logger

	id  platform.ClientID
	ctl frame.Controls

	frame    *xwindow.Window
	titlebar *xwindow.Window
	buttons  [buttonCount]*xwindow.Window
	gc       xproto.Gcontext
	font     xproto.Font
	ascent   int

	metrics   frame.Metrics
	rect      geom.Rect
	title     string
	grabbed   bool
	pressed   button
	menuStop  context.CancelFunc
	destroyed bool
}

var _ frame.Surface = (*Decoration)(nil)

func (d *Decoration) create() error {
	var err error
	colors := d.style.Colors

	d.frame, err = xwindow.Generate(d.xu)
	if err != nil {
		return fmt.Errorf("allocate frame window: %w", err)
	}
	err = d.frame.CreateChecked(d.root, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwEventMask,
		colors.Border,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|
			xproto.EventMaskPointerMotion|
			xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify)
	if err != nil {
		return fmt.Errorf("create frame window: %w", err)
	}

	d.titlebar, err = xwindow.Generate(d.xu)
	if err != nil {
		return fmt.Errorf("allocate titlebar: %w", err)
	}
	err = d.titlebar.CreateChecked(d.frame.Id, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwEventMask,
		colors.Titlebar,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|
			xproto.EventMaskPointerMotion|xproto.EventMaskExposure)
	if err != nil {
		return fmt.Errorf("create titlebar: %w", err)
	}

	for b := buttonMinimize; b < buttonCount; b++ {
		win, err := xwindow.Generate(d.xu)
		if err != nil {
			return fmt.Errorf("allocate button: %w", err)
		}
		err = win.CreateChecked(d.titlebar.Id, 0, 0, 1, 1,
			xproto.CwBackPixel|xproto.CwEventMask,
			colors.button(b),
			xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease)
		if err != nil {
			return fmt.Errorf("create button: %w", err)
		}
		d.buttons[b] = win
		d.connectButton(b, win)
	}

	d.openFont()
	d.connect()
	return nil
}

func (d *Decoration) openFont() {
	conn := d.xu.Conn()
	name := d.style.Font
	if name == "" {
		name = "fixed"
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		d.logger.Warn("allocate font id failed", "error", err)
		return
	}
	if err := xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check(); err != nil {
		d.logger.Warn("open font failed", "font", name, "error", err)
		return
	}
	d.font = font
	if info, err := xproto.QueryFont(conn, xproto.Fontable(font)).Reply(); err == nil {
		d.ascent = int(info.FontAscent)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		d.logger.Warn("allocate graphics context failed", "error", err)
		return
	}
	err = xproto.CreateGCChecked(conn, gc, xproto.Drawable(d.titlebar.Id),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont,
		[]uint32{d.style.Colors.Text, d.style.Colors.Titlebar, uint32(font)}).Check()
	if err != nil {
		d.logger.Warn("create graphics context failed", "error", err)
		return
	}
	d.gc = gc
}

func (d *Decoration) connect() {
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		// Presses that reach the frame from inside the client belong to it.
		if !d.grabbed && ev.Child != 0 {
			return
		}
		d.ctl.OnPointerPress(pt(ev.EventX, ev.EventY), pt(ev.RootX, ev.RootY), frame.Button(ev.Detail))
	}).Connect(d.xu, d.frame.Id)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		d.ctl.OnPointerRelease(pt(ev.EventX, ev.EventY), pt(ev.RootX, ev.RootY), frame.Button(ev.Detail))
	}).Connect(d.xu, d.frame.Id)

	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		if !d.grabbed && ev.Child != 0 {
			return
		}
		d.ctl.OnPointerMove(pt(ev.EventX, ev.EventY), pt(ev.RootX, ev.RootY))
	}).Connect(d.xu, d.frame.Id)

	// Titlebar coordinates are shifted by its position inside the frame.
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		d.ctl.OnPointerPress(d.titlebarLocal(ev.EventX, ev.EventY), pt(ev.RootX, ev.RootY), frame.Button(ev.Detail))
	}).Connect(d.xu, d.titlebar.Id)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		d.ctl.OnPointerRelease(d.titlebarLocal(ev.EventX, ev.EventY), pt(ev.RootX, ev.RootY), frame.Button(ev.Detail))
	}).Connect(d.xu, d.titlebar.Id)

	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		d.ctl.OnPointerMove(d.titlebarLocal(ev.EventX, ev.EventY), pt(ev.RootX, ev.RootY))
	}).Connect(d.xu, d.titlebar.Id)

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			d.drawTitle()
		}
	}).Connect(d.xu, d.titlebar.Id)
}

func (d *Decoration) connectButton(b button, win *xwindow.Window) {
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		d.pressed = b
	}).Connect(d.xu, win.Id)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if frame.Button(ev.Detail) != frame.ButtonPrimary || d.pressed != b {
			return
		}
		// Releasing outside the button cancels the click.
		g, err := win.Geometry()
		if err != nil || ev.EventX < 0 || ev.EventY < 0 ||
			int(ev.EventX) >= g.Width() || int(ev.EventY) >= g.Height() {
			return
		}
		switch b {
		case buttonClose:
			d.ctl.RequestClose()
		case buttonMaximize:
			d.ctl.ToggleMaximize()
		case buttonMinimize:
			d.ctl.Minimize()
		}
	}).Connect(d.xu, win.Id)
}

func pt(x, y int16) geom.Point {
	return geom.Point{X: int(x), Y: int(y)}
}

func (d *Decoration) titlebarLocal(x, y int16) geom.Point {
	return pt(x, y).Add(d.metrics.Titlebar(d.rect.Size()).Origin())
}

// Resize places the frame and lays out the titlebar and its buttons.
func (d *Decoration) Resize(r geom.Rect) {
	if d.destroyed {
		return
	}
	d.rect = r
	d.frame.MoveResize(r.X, r.Y, max(r.Width, 1), max(r.Height, 1))

	bar := d.metrics.Titlebar(r.Size())
	if bar.Empty() {
		d.titlebar.Unmap()
		return
	}
	d.titlebar.MoveResize(bar.X, bar.Y, bar.Width, bar.Height)
	d.titlebar.Map()

	rects, ok := buttonRects(bar.Size())
	for b, win := range d.buttons {
		if !ok[b] {
			win.Unmap()
			continue
		}
		br := rects[b]
		win.MoveResize(br.X, br.Y, br.Width, br.Height)
		win.Map()
	}
}

// SetMetrics changes the layout sizes; the next Resize applies them.
func (d *Decoration) SetMetrics(m frame.Metrics) {
	d.metrics = m
}

// ReparentClient embeds the client at offset.
func (d *Decoration) ReparentClient(offset geom.Point) error {
	m := d.metrics
	return d.bridge.Embed(d.id, d.frame.Id, offset, platform.Extents{
		Left:   m.Border,
		Right:  m.Border,
		Top:    m.Border + m.Title,
		Bottom: m.Border,
	})
}

// DetachClient gives the client back to the root window.
func (d *Decoration) DetachClient() {
	if err := d.bridge.Release(d.id); err != nil {
		d.logger.Warn("release client failed", "error", err)
	}
}

// SetClientVisible hides or shows the client inside the frame.
func (d *Decoration) SetClientVisible(visible bool) {
	if err := d.bridge.SetEmbeddedVisible(d.id, visible); err != nil {
		d.logger.Debug("change client visibility failed", "visible", visible, "error", err)
	}
}

// SetVisible maps or unmaps the frame window.
func (d *Decoration) SetVisible(visible bool) {
	if d.destroyed {
		return
	}
	if visible {
		d.frame.Map()
		return
	}
	d.frame.Unmap()
}

// SetTitle redraws the titlebar text.
func (d *Decoration) SetTitle(title string) {
	d.title = title
	d.drawTitle()
}

func (d *Decoration) drawTitle() {
	if d.destroyed || d.gc == 0 {
		return
	}
	conn := d.xu.Conn()
	xproto.ClearArea(conn, false, d.titlebar.Id, 0, 0, 0, 0)
	text := latin1(d.title)
	if text == "" {
		return
	}
	y := (d.metrics.Title + d.ascent) / 2
	xproto.ImageText8(conn, byte(len(text)), xproto.Drawable(d.titlebar.Id), d.gc, 4, int16(y), text)
}

// SetCursor sets the cursor shown over the frame border.
func (d *Decoration) SetCursor(shape frame.CursorShape) {
	if d.destroyed {
		return
	}
	cursor := d.cursors.Get(shape)
	xproto.ChangeWindowAttributes(d.xu.Conn(), d.frame.Id, xproto.CwCursor, []uint32{uint32(cursor)})
}

// GrabPointer routes all pointer events to the frame until UngrabPointer.
func (d *Decoration) GrabPointer(shape frame.CursorShape) error {
	if d.destroyed {
		return ErrGrabRefused
	}
	ok, err := mousebind.GrabPointer(d.xu, d.frame.Id, 0, d.cursors.Get(shape))
	if err != nil {
		return err
	}
	if !ok {
		return ErrGrabRefused
	}
	d.grabbed = true
	return nil
}

// UngrabPointer releases a grab taken with GrabPointer.
func (d *Decoration) UngrabPointer() {
	if !d.grabbed {
		return
	}
	d.grabbed = false
	mousebind.UngrabPointer(d.xu)
}

// ShowMenu opens the frame menu at a root position. The menu program runs
// off the loop; its answer is posted back.
func (d *Decoration) ShowMenu(at geom.Point) {
	if d.destroyed || d.menu == nil || d.post == nil || d.menuStop != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.menuStop = cancel

	title := d.title
	maximized := d.ctl.Maximized()
	go func() {
		action, err := menu.SelectFrameAction(ctx, d.menu, title, maximized, at)
		d.post(func() {
			cancel()
			d.menuStop = nil
			if d.destroyed {
				return
			}
			if err != nil {
				if !errors.Is(err, menu.ErrCancelled) && !errors.Is(err, context.Canceled) {
					d.logger.Warn("frame menu failed", "error", err)
				}
				return
			}
			if err := d.ctl.HandleMenuAction(action); err != nil {
				d.logger.Warn("menu action failed", "action", action, "error", err)
			}
		})
	}()
}

// Destroy frees every window and server resource of the decoration.
func (d *Decoration) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.menuStop != nil {
		d.menuStop()
	}
	d.UngrabPointer()

	conn := d.xu.Conn()
	if d.gc != 0 {
		xproto.FreeGC(conn, d.gc)
	}
	if d.font != 0 {
		xproto.CloseFont(conn, d.font)
	}
	for _, win := range d.buttons {
		if win != nil {
			win.Destroy()
		}
	}
	if d.titlebar != nil {
		d.titlebar.Destroy()
	}
	if d.frame != nil {
		d.frame.Destroy()
	}
}

package x11

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/framewm/internal/geom"
)

// IsBadWindow reports whether err says the window no longer exists.
func IsBadWindow(err error) bool {
	var win xproto.WindowError
	var drawable xproto.DrawableError
	return errors.As(err, &win) || errors.As(err, &drawable)
}

// Exists reports whether windowID is still alive. Only BadWindow counts as
// gone; other errors are returned.
func (c *Connection) Exists(windowID xproto.Window) (bool, error) {
	_, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err == nil {
		return true, nil
	}
	if IsBadWindow(err) {
		return false, nil
	}
	return false, err
}

// WindowRect returns the window rectangle in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (geom.Rect, error) {
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geom.Rect{}, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return geom.Rect{}, err
	}

	return geom.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(g.Width),
		Height: int(g.Height),
	}, nil
}

// IsMapped reports whether the window is mapped, viewable or not. Unmapping
// or reparenting such a window produces an UnmapNotify.
func (c *Connection) IsMapped(windowID xproto.Window) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false, err
	}
	return attrs.MapState != xproto.MapStateUnmapped, nil
}

// ManageableWindows lists mapped, non-override-redirect children of the
// root window, bottom to top.
func (c *Connection) ManageableWindows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query root tree: %w", err)
	}

	var out []xproto.Window
	for _, w := range tree.Children {
		if c.check != nil && w == c.check.Id {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), w).Reply()
		if err != nil || attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		if !c.IsNormalWindow(w) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// ConfigureClient places a reparented client at local inside its frame and
// tells it, with a synthetic ConfigureNotify, where it sits on screen.
func (c *Connection) ConfigureClient(windowID xproto.Window, local geom.Point, root geom.Rect) error {
	w := max(root.Width, 1)
	h := max(root.Height, 1)
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth)
	values := []uint32{uint32(int32(local.X)), uint32(int32(local.Y)), uint32(w), uint32(h), 0}
	if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check(); err != nil {
		return err
	}

	ev := xproto.ConfigureNotifyEvent{
		Event:            windowID,
		Window:           windowID,
		AboveSibling:     0,
		X:                int16(root.X),
		Y:                int16(root.Y),
		Width:            uint16(w),
		Height:           uint16(h),
		BorderWidth:      0,
		OverrideRedirect: false,
	}
	xproto.SendEvent(c.XUtil.Conn(), false, windowID,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
	return nil
}

// ConfigureUnmanaged grants a configure request from a window nobody frames.
func (c *Connection) ConfigureUnmanaged(ev xproto.ConfigureRequestEvent) {
	xwindow.New(c.XUtil, ev.Window).Configure(
		int(ev.ValueMask),
		int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height),
		ev.Sibling, ev.StackMode,
	)
}

// Reparent moves windowID under parent at local and keeps it in the save set
// while it is framed, so it survives if this process dies.
func (c *Connection) Reparent(windowID, parent xproto.Window, local geom.Point) error {
	conn := c.XUtil.Conn()
	mode := byte(xproto.SetModeInsert)
	if parent == c.Root {
		mode = xproto.SetModeDelete
	}
	xproto.ChangeSaveSet(conn, mode, windowID)
	return xproto.ReparentWindowChecked(conn, windowID, parent, int16(local.X), int16(local.Y)).Check()
}

// SetFrameExtents publishes the decoration sizes on the client.
func (c *Connection) SetFrameExtents(windowID xproto.Window, left, right, top, bottom int) error {
	return ewmh.FrameExtentsSet(c.XUtil, windowID, &ewmh.FrameExtents{
		Left:   left,
		Right:  right,
		Top:    top,
		Bottom: bottom,
	})
}

// SetMaximizedState adds or removes both maximized atoms from _NET_WM_STATE.
func (c *Connection) SetMaximizedState(windowID xproto.Window, maximized bool) error {
	return c.updateState(windowID, maximized,
		"_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ")
}

// SetIconic records the ICCCM WM_STATE and the EWMH hidden flag.
func (c *Connection) SetIconic(windowID xproto.Window, iconic bool) error {
	state := uint(icccm.StateNormal)
	if iconic {
		state = icccm.StateIconic
	}
	if err := icccm.WmStateSet(c.XUtil, windowID, &icccm.WmState{State: state}); err != nil {
		return err
	}
	return c.updateState(windowID, iconic, "_NET_WM_STATE_HIDDEN")
}

func (c *Connection) updateState(windowID xproto.Window, set bool, atoms ...string) error {
	// A missing property just means no states yet.
	states, _ := ewmh.WmStateGet(c.XUtil, windowID)

	next := make([]string, 0, len(states)+len(atoms))
	for _, s := range states {
		keep := true
		for _, a := range atoms {
			if s == a {
				keep = false
				break
			}
		}
		if keep {
			next = append(next, s)
		}
	}
	if set {
		next = append(next, atoms...)
	}
	return ewmh.WmStateSet(c.XUtil, windowID, next)
}

// CloseWindow requests graceful window close via WM_DELETE_WINDOW, and kills
// the owning client when the window does not take part in that protocol.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID)
	supportsDelete := false
	if err == nil {
		for _, p := range protocols {
			if p == "WM_DELETE_WINDOW" {
				supportsDelete = true
				break
			}
		}
	}
	if !supportsDelete {
		return xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check()
	}

	deleteAtom, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// WindowTitle returns the first non-empty name in the order _NET_WM_NAME,
// WM_NAME, _NET_WM_VISIBLE_NAME, _NET_WM_ICON_NAME, WM_ICON_NAME,
// _NET_WM_VISIBLE_ICON_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	getters := []func() (string, error){
		func() (string, error) { return ewmh.WmNameGet(c.XUtil, windowID) },
		func() (string, error) { return icccm.WmNameGet(c.XUtil, windowID) },
		func() (string, error) { return ewmh.WmVisibleNameGet(c.XUtil, windowID) },
		func() (string, error) { return ewmh.WmIconNameGet(c.XUtil, windowID) },
		func() (string, error) { return icccm.WmIconNameGet(c.XUtil, windowID) },
		func() (string, error) { return ewmh.WmVisibleIconNameGet(c.XUtil, windowID) },
	}
	for _, get := range getters {
		title, err := get()
		if err != nil {
			continue
		}
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return ""
}

// TitleAtoms are the properties whose change affects WindowTitle.
var TitleAtoms = []string{
	"_NET_WM_NAME",
	"WM_NAME",
	"_NET_WM_VISIBLE_NAME",
	"_NET_WM_ICON_NAME",
	"WM_ICON_NAME",
	"_NET_WM_VISIBLE_ICON_NAME",
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

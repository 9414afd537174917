// Package decor draws frame decorations as X11 windows: a frame window
// holding the client, a titlebar with the client title and three buttons.
package decor

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xcursor"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/geom"
)

// Colors are 0xRRGGBB pixel values.
type Colors struct {
	Border         uint32
	Titlebar       uint32
	Text           uint32
	ButtonClose    uint32
	ButtonMaximize uint32
	ButtonMinimize uint32
}

// DefaultColors is a neutral grey scheme.
var DefaultColors = Colors{
	Border:         0xffffff,
	Titlebar:       0x808080,
	Text:           0x000000,
	ButtonClose:    0xc0392b,
	ButtonMaximize: 0x27ae60,
	ButtonMinimize: 0xf1c40f,
}

// Style controls how decorations look.
type Style struct {
	Colors Colors
	// Font is a core X font name; "fixed" exists on every server.
	Font string
}

type button int

const (
	buttonMinimize button = iota
	buttonMaximize
	buttonClose
	buttonCount
)

const buttonGap = 2

// buttonRects lays the buttons out right-aligned in a titlebar of the given
// size, close rightmost. ok is false for buttons that do not fit.
func buttonRects(titlebar geom.Size) (rects [buttonCount]geom.Rect, ok [buttonCount]bool) {
	side := titlebar.Height - 2*buttonGap
	if side < 1 {
		return rects, ok
	}
	right := titlebar.Width - buttonGap
	for b := buttonClose; b >= buttonMinimize; b-- {
		x := right - side
		if x < buttonGap {
			break
		}
		rects[b] = geom.Rect{X: x, Y: buttonGap, Width: side, Height: side}
		ok[b] = true
		right = x - buttonGap
	}
	return rects, ok
}

func (c Colors) button(b button) uint32 {
	switch b {
	case buttonClose:
		return c.ButtonClose
	case buttonMaximize:
		return c.ButtonMaximize
	default:
		return c.ButtonMinimize
	}
}

// latin1 makes s drawable with ImageText8: runes outside Latin-1 become '?'
// and the result fits the 255 byte request limit.
func latin1(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if len(out) == 255 {
			break
		}
		if r > 0xff || r < 0x20 {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return string(out)
}

func glyph(shape frame.CursorShape) uint16 {
	switch shape {
	case frame.CursorFleur:
		return xcursor.Fleur
	case frame.CursorTopSide:
		return xcursor.TopSide
	case frame.CursorBottomSide:
		return xcursor.BottomSide
	case frame.CursorLeftSide:
		return xcursor.LeftSide
	case frame.CursorRightSide:
		return xcursor.RightSide
	case frame.CursorTopLeftCorner:
		return xcursor.TopLeftCorner
	case frame.CursorTopRightCorner:
		return xcursor.TopRightCorner
	case frame.CursorBottomLeftCorner:
		return xcursor.BottomLeftCorner
	case frame.CursorBottomRightCorner:
		return xcursor.BottomRightCorner
	default:
		return xcursor.LeftPtr
	}
}

// Cursors caches glyph cursors for the whole connection.
type Cursors struct {
	xu    *xgbutil.XUtil
	cache map[frame.CursorShape]xproto.Cursor
}

// NewCursors creates an empty cursor cache.
func NewCursors(xu *xgbutil.XUtil) *Cursors {
	return &Cursors{xu: xu, cache: make(map[frame.CursorShape]xproto.Cursor)}
}

// Get returns the cursor for shape, creating it on first use. Failures
// yield cursor 0, which X treats as "inherit".
func (c *Cursors) Get(shape frame.CursorShape) xproto.Cursor {
	if cur, ok := c.cache[shape]; ok {
		return cur
	}
	cur, err := xcursor.CreateCursor(c.xu, glyph(shape))
	if err != nil {
		return 0
	}
	c.cache[shape] = cur
	return cur
}

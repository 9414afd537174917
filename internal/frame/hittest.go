package frame

import "github.com/1broseidon/framewm/internal/geom"

// HitTest maps a frame-local point to the zone it would grab.
//
// Points inside content (the titlebar and embedded client) return Normal; the
// caller decides whether a press there starts a Move. Points in the border
// margin are classified by splitting the frame into thirds along each axis,
// with corner bands winning over edge bands. When record is set the returned
// offset is the pointer's distance from the edge or corner that zone drags;
// otherwise it is the zero point.
func HitTest(pt geom.Point, size geom.Size, content geom.Rect, record bool) (Zone, geom.Point) {
	if content.Contains(pt) {
		return Normal, geom.Point{}
	}

	w, h := size.Width, size.Height
	top := pt.Y < h/3
	bottom := pt.Y > (2*h)/3
	left := pt.X < w/3
	right := pt.X > (2*w)/3

	var zone Zone
	var offset geom.Point
	switch {
	case top && left:
		zone, offset = ResizeTopLeft, geom.Point{X: pt.X, Y: pt.Y}
	case top && right:
		zone, offset = ResizeTopRight, geom.Point{X: w - pt.X, Y: pt.Y}
	case top:
		zone, offset = ResizeTop, geom.Point{X: 0, Y: pt.Y}
	case bottom && left:
		zone, offset = ResizeBottomLeft, geom.Point{X: pt.X, Y: h - pt.Y}
	case bottom && right:
		zone, offset = ResizeBottomRight, geom.Point{X: w - pt.X, Y: h - pt.Y}
	case bottom:
		zone, offset = ResizeBottom, geom.Point{X: 0, Y: h - pt.Y}
	case left:
		zone, offset = ResizeLeft, geom.Point{X: pt.X, Y: 0}
	case right:
		zone, offset = ResizeRight, geom.Point{X: w - pt.X, Y: 0}
	default:
		return Normal, geom.Point{}
	}

	if !record {
		return zone, geom.Point{}
	}
	return zone, offset
}

// CursorShape names the pointer glyph shown for a zone.
type CursorShape int

const (
	CursorPointer CursorShape = iota
	CursorFleur
	CursorTopSide
	CursorBottomSide
	CursorLeftSide
	CursorRightSide
	CursorTopLeftCorner
	CursorTopRightCorner
	CursorBottomLeftCorner
	CursorBottomRightCorner
)

// CursorFor returns the cursor shown while hovering or dragging zone.
func CursorFor(zone Zone) CursorShape {
	switch zone {
	case Move:
		return CursorFleur
	case ResizeTop:
		return CursorTopSide
	case ResizeBottom:
		return CursorBottomSide
	case ResizeLeft:
		return CursorLeftSide
	case ResizeRight:
		return CursorRightSide
	case ResizeTopLeft:
		return CursorTopLeftCorner
	case ResizeTopRight:
		return CursorTopRightCorner
	case ResizeBottomLeft:
		return CursorBottomLeftCorner
	case ResizeBottomRight:
		return CursorBottomRightCorner
	default:
		return CursorPointer
	}
}

package frame

import "github.com/1broseidon/framewm/internal/geom"

// Metrics are the fixed decoration sizes around a client.
type Metrics struct {
	Border int // border width on every side
	Title  int // titlebar height, below the top border
}

// Geometry is the rectangle covered by a frame. Shift records how far the
// origin was pushed right/down to keep it on screen, so the client rectangle
// the frame was derived from can be recovered exactly.
type Geometry struct {
	geom.Rect
	Shift geom.Point
}

// ToFrame expands a client rectangle by the border on all sides and the
// titlebar on top. A negative origin is moved to 0 without resizing.
func ToFrame(client geom.Rect, m Metrics) Geometry {
	r := geom.Rect{
		X:      client.X - m.Border,
		Y:      client.Y - m.Border - m.Title,
		Width:  client.Width + 2*m.Border,
		Height: client.Height + 2*m.Border + m.Title,
	}

	var shift geom.Point
	if r.X < 0 {
		shift.X = -r.X
		r.X = 0
	}
	if r.Y < 0 {
		shift.Y = -r.Y
		r.Y = 0
	}
	return Geometry{Rect: r, Shift: shift}
}

// ToClient is the inverse of ToFrame.
func ToClient(g Geometry, m Metrics) geom.Rect {
	return geom.Rect{
		X:      g.X - g.Shift.X + m.Border,
		Y:      g.Y - g.Shift.Y + m.Border + m.Title,
		Width:  g.Width - 2*m.Border,
		Height: g.Height - 2*m.Border - m.Title,
	}
}

// Placed is where an embedded client actually sits: the frame origin plus the
// client offset. It differs from ToClient only while g carries a shift.
func Placed(g Geometry, m Metrics) geom.Rect {
	return ToClient(Geometry{Rect: g.Rect}, m)
}

// Content returns the frame-local content-layout rectangle: titlebar plus
// embedded client, excluding the border margin.
func (m Metrics) Content(size geom.Size) geom.Rect {
	return geom.Rect{
		X:      m.Border,
		Y:      m.Border,
		Width:  max(size.Width-2*m.Border, 0),
		Height: max(size.Height-2*m.Border, 0),
	}
}

// Titlebar returns the frame-local titlebar rectangle.
func (m Metrics) Titlebar(size geom.Size) geom.Rect {
	return geom.Rect{
		X:      m.Border,
		Y:      m.Border,
		Width:  max(size.Width-2*m.Border, 0),
		Height: m.Title,
	}
}

// ClientOffset is where the client sits inside its frame.
func (m Metrics) ClientOffset() geom.Point {
	return geom.Point{X: m.Border, Y: m.Border + m.Title}
}

// MinFrame is the smallest frame size that still holds a client of min size.
func (m Metrics) MinFrame(minClient geom.Size) geom.Size {
	return geom.Size{
		Width:  max(minClient.Width, 1) + 2*m.Border,
		Height: max(minClient.Height, 1) + 2*m.Border + m.Title,
	}
}

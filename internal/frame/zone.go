package frame

import "github.com/1broseidon/framewm/internal/geom"

// Zone is the interaction state of a frame. Normal means no grab is in
// progress; every other zone names the gesture the pointer is driving.
type Zone int

const (
	Normal Zone = iota
	Move
	ResizeTop
	ResizeTopRight
	ResizeRight
	ResizeBottomRight
	ResizeBottom
	ResizeBottomLeft
	ResizeLeft
	ResizeTopLeft
)

// String returns the string representation of the zone
func (z Zone) String() string {
	switch z {
	case Normal:
		return "normal"
	case Move:
		return "move"
	case ResizeTop:
		return "resize-top"
	case ResizeTopRight:
		return "resize-top-right"
	case ResizeRight:
		return "resize-right"
	case ResizeBottomRight:
		return "resize-bottom-right"
	case ResizeBottom:
		return "resize-bottom"
	case ResizeBottomLeft:
		return "resize-bottom-left"
	case ResizeLeft:
		return "resize-left"
	case ResizeTopLeft:
		return "resize-top-left"
	default:
		return "unknown"
	}
}

// movesLeft etc. report which edges a zone drags.
func (z Zone) movesLeft() bool {
	return z == ResizeLeft || z == ResizeTopLeft || z == ResizeBottomLeft
}

func (z Zone) movesRight() bool {
	return z == ResizeRight || z == ResizeTopRight || z == ResizeBottomRight
}

func (z Zone) movesTop() bool {
	return z == ResizeTop || z == ResizeTopLeft || z == ResizeTopRight
}

func (z Zone) movesBottom() bool {
	return z == ResizeBottom || z == ResizeBottomLeft || z == ResizeBottomRight
}

// Interaction pairs the active zone with the offset captured at grab time.
// The zero value is the idle (Normal) interaction; the offset of an idle
// interaction cannot be observed.
type Interaction struct {
	zone   Zone
	offset geom.Point
}

// Zone returns the active zone.
func (i Interaction) Zone() Zone {
	return i.zone
}

// Active reports whether a grab is in progress.
func (i Interaction) Active() bool {
	return i.zone != Normal
}

// Offset returns the grab offset. ok is false while Normal.
func (i Interaction) Offset() (offset geom.Point, ok bool) {
	if i.zone == Normal {
		return geom.Point{}, false
	}
	return i.offset, true
}

// Press enters zone with the given offset. Only an idle interaction may be
// entered, and entering Normal is a no-op; ok reports whether the transition
// happened.
func (i Interaction) Press(zone Zone, offset geom.Point) (next Interaction, ok bool) {
	if i.zone != Normal || zone == Normal {
		return i, false
	}
	return Interaction{zone: zone, offset: offset}, true
}

// Release ends any grab.
func (i Interaction) Release() Interaction {
	return Interaction{}
}

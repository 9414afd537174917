// Package platform defines the window-system boundary the frame engine
// talks to, and its X11 implementation.
package platform

import (
	"errors"

	"github.com/1broseidon/framewm/internal/geom"
)

// ClientID is a platform-neutral handle for a foreign top-level window.
type ClientID uint32

// ErrStaleClient is returned (wrapped) when the client window no longer
// exists on the window system.
var ErrStaleClient = errors.New("client window no longer exists")

// Notification is a client-side event the window system reports.
type Notification int

const (
	Shown Notification = iota
	Hidden
	Closed
	MoveResize
	TitleChanged
)

// Notifications lists every kind a frame subscribes to.
var Notifications = []Notification{Shown, Hidden, Closed, MoveResize, TitleChanged}

// String returns the string representation of the notification
func (n Notification) String() string {
	switch n {
	case Shown:
		return "shown"
	case Hidden:
		return "hidden"
	case Closed:
		return "closed"
	case MoveResize:
		return "move-resize"
	case TitleChanged:
		return "title-changed"
	default:
		return "unknown"
	}
}

// Bridge abstracts the window-system operations a frame needs on its client.
type Bridge interface {
	// Geometry returns the client rectangle in root coordinates. With
	// includeFrame the rectangle covers any decoration around it.
	Geometry(id ClientID, includeFrame bool) (geom.Rect, error)
	SetGeometry(id ClientID, r geom.Rect) error
	// Title returns the best available human-readable name.
	Title(id ClientID) (string, error)
	// RequestClose asks the client to close, politely when it supports it.
	RequestClose(id ClientID) error
	// Subscribe registers fn for one notification kind on one client.
	Subscribe(id ClientID, kind Notification, fn func()) (cancel func())
	// WorkArea is the usable area of the monitor holding the client.
	WorkArea(id ClientID) (geom.Rect, error)
	SetMaximized(id ClientID, maximized bool) error
	Iconify(id ClientID) error
}

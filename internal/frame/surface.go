package frame

import "github.com/1broseidon/framewm/internal/geom"

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary   Button = 1
	ButtonMiddle    Button = 2
	ButtonSecondary Button = 3
)

// Surface is the drawable decoration a Frame owns: the frame window with its
// titlebar, buttons and the embedded client.
type Surface interface {
	// Resize places the frame at r in root coordinates and lays out its
	// children.
	Resize(r geom.Rect)
	// SetMetrics changes the border and titlebar sizes used for layout.
	SetMetrics(m Metrics)
	// ReparentClient embeds the client at offset inside the frame.
	ReparentClient(offset geom.Point) error
	// DetachClient hands the client back to the root window.
	DetachClient()
	// SetClientVisible hides or shows the embedded client without
	// detaching it.
	SetClientVisible(visible bool)
	SetVisible(visible bool)
	SetTitle(title string)
	SetCursor(shape CursorShape)
	GrabPointer(shape CursorShape) error
	UngrabPointer()
	// ShowMenu opens the contextual action menu at a root position.
	ShowMenu(at geom.Point)
	Destroy()
}

// Controls are the frame operations a decoration forwards user input to.
type Controls interface {
	OnPointerPress(local, global geom.Point, button Button)
	OnPointerMove(local, global geom.Point)
	OnPointerRelease(local, global geom.Point, button Button)
	RequestClose()
	ToggleMaximize()
	Minimize()
	Maximized() bool
	HandleMenuAction(action string) error
}

var _ Controls = (*Frame)(nil)

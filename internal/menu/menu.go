// Package menu shows the contextual frame actions through an external
// dmenu-style launcher (rofi, fuzzel, wofi or dmenu).
package menu

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/1broseidon/framewm/internal/geom"
)

// ErrCancelled is returned when the user closes the menu without selecting an item.
var ErrCancelled = errors.New("menu cancelled")

// ErrDisabled is returned by the "none" backend.
var ErrDisabled = errors.New("menu disabled")

// Item is a single selectable entry.
type Item struct {
	Label    string // Display text
	Action   string // Action identifier returned on selection
	Icon     string // Icon name for rofi -show-icons
	IsActive bool   // Highlighted as current/active
}

// Request describes one menu invocation.
type Request struct {
	Prompt  string
	Message string // optional context line (rofi message bar)
	Items   []Item
	// At is the root position to open at, when the backend can place itself.
	At *geom.Point
}

// Capabilities describes what features a backend supports.
type Capabilities struct {
	Icons       bool // Supports icon display
	Markup      bool // Supports pango markup in labels
	IndexOutput bool // Can output selection index (not just text)
	MessageBar  bool // Supports message/prompt bar
	RowStates   bool // Supports active row highlighting
	Placement   bool // Can open at a given screen position
}

// Backend shows a menu to the user and returns the selected item.
type Backend interface {
	Show(ctx context.Context, req Request) (Item, error)
	Capabilities() Capabilities
}

// DetectBackend returns the first available menu command found in PATH, in
// priority order: rofi, fuzzel, wofi, dmenu.
func DetectBackend() (string, error) {
	for _, name := range []string{"rofi", "fuzzel", "wofi", "dmenu"} {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no menu backend found in PATH (looked for: rofi, fuzzel, wofi, dmenu)")
}

// NewBackend creates a backend by name.
//
// Supported names: auto, none, rofi, fuzzel, wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "auto":
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		return NewBackend(detected)
	case "none":
		return disabled{}, nil
	case "rofi", "fuzzel", "wofi", "dmenu":
		if _, err := exec.LookPath(name); err != nil {
			return nil, fmt.Errorf("menu backend %q not found in PATH", name)
		}
		return newLauncher(name), nil
	default:
		return nil, fmt.Errorf("unknown menu backend: %q (expected: auto, none, rofi, fuzzel, wofi, dmenu)", name)
	}
}

type disabled struct{}

func (disabled) Show(context.Context, Request) (Item, error) { return Item{}, ErrDisabled }
func (disabled) Capabilities() Capabilities                  { return Capabilities{} }

// Actions identify the frame menu entries.
const (
	ActionMinimize = "minimize"
	ActionMaximize = "maximize"
	ActionClose    = "close"
)

// FrameItems builds the contextual menu for a frame.
func FrameItems(maximized bool) []Item {
	maxLabel := "Maximize"
	if maximized {
		maxLabel = "Restore"
	}
	return []Item{
		{Label: "Minimize", Action: ActionMinimize, Icon: "window-minimize"},
		{Label: maxLabel, Action: ActionMaximize, Icon: "window-maximize", IsActive: maximized},
		{Label: "Close", Action: ActionClose, Icon: "window-close"},
	}
}

// SelectFrameAction shows the frame menu and returns the chosen action.
func SelectFrameAction(ctx context.Context, b Backend, title string, maximized bool, at geom.Point) (string, error) {
	item, err := b.Show(ctx, Request{
		Prompt:  "framewm",
		Message: title,
		Items:   FrameItems(maximized),
		At:      &at,
	})
	if err != nil {
		return "", err
	}
	return item.Action, nil
}

package anim

import (
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/framewm/internal/geom"
)

// Action is what happens to the frame once a transition finishes.
type Action int

const (
	Show Action = iota
	Hide
	Close
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case Show:
		return "show"
	case Hide:
		return "hide"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// priority orders actions for preemption: a running transition can only be
// replaced by one of equal or higher priority.
func (a Action) priority() int {
	if a == Close {
		return 1
	}
	return 0
}

// Spec describes one transition.
type Spec struct {
	Start    geom.Rect
	End      geom.Rect
	Duration time.Duration
	Action   Action
}

// ShowSpec expands from the zero-size centre of r out to r.
func ShowSpec(r geom.Rect, d time.Duration) Spec {
	c := r.Center()
	return Spec{
		Start:    geom.Rect{X: c.X, Y: c.Y},
		End:      r,
		Duration: d,
		Action:   Show,
	}
}

// HideSpec collapses r onto its centre point.
func HideSpec(r geom.Rect, d time.Duration) Spec {
	c := r.Center()
	return Spec{
		Start:    r,
		End:      geom.Rect{X: c.X, Y: c.Y},
		Duration: d,
		Action:   Hide,
	}
}

// CloseSpec collapses r onto its horizontal centre line.
func CloseSpec(r geom.Rect, d time.Duration) Spec {
	return Spec{
		Start:    r,
		End:      geom.Rect{X: r.X, Y: r.Center().Y, Width: r.Width, Height: 0},
		Duration: d,
		Action:   Close,
	}
}

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseOut decelerates towards the end.
func EaseOut(t float64) float64 { return 1 - (1-t)*(1-t) }

// ParseEasing resolves an easing by config name.
func ParseEasing(name string) (Easing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return Linear, nil
	case "ease-out", "ease_out", "easeout":
		return EaseOut, nil
	default:
		return nil, fmt.Errorf("unknown easing %q (expected linear or ease-out)", name)
	}
}

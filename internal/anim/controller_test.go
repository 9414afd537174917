package anim

import (
	"testing"
	"time"

	"github.com/1broseidon/framewm/internal/geom"
)

type fakeTimer struct {
	fn      func()
	stopped bool
}

type fakeScheduler struct {
	pending []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() {
	tm := &fakeTimer{fn: fn}
	s.pending = append(s.pending, tm)
	return func() { tm.stopped = true }
}

// fire runs every queued callback that was not stopped, including stale ones
// to mimic ticks that were already posted before a stop.
func (s *fakeScheduler) fire(includeStopped bool) {
	queued := s.pending
	s.pending = nil
	for _, tm := range queued {
		if tm.stopped && !includeStopped {
			continue
		}
		tm.fn()
	}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct {
	frames    []geom.Rect
	completed []Action
}

func (r *recorder) Render(rect geom.Rect) { r.frames = append(r.frames, rect) }
func (r *recorder) Complete(a Action)     { r.completed = append(r.completed, a) }

func newTestController(enabled bool) (*Controller, *recorder, *fakeScheduler, *fakeClock) {
	rec := &recorder{}
	sched := &fakeScheduler{}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := New(rec, sched, Config{
		Enabled:  enabled,
		Interval: 10 * time.Millisecond,
		Now:      clock.Now,
	})
	return c, rec, sched, clock
}

var frameRect = geom.Rect{X: 98, Y: 78, Width: 404, Height: 322}

func TestBegin_DisabledCompletesSynchronously(t *testing.T) {
	c, rec, sched, _ := newTestController(false)

	if !c.Begin(HideSpec(frameRect, 150*time.Millisecond)) {
		t.Fatal("Begin returned false")
	}
	if c.Active() {
		t.Error("controller should be idle after synchronous completion")
	}
	if len(sched.pending) != 0 {
		t.Errorf("no ticks should be scheduled, got %d", len(sched.pending))
	}
	if len(rec.completed) != 1 || rec.completed[0] != Hide {
		t.Errorf("completed = %v, want [hide]", rec.completed)
	}
	want := geom.Rect{X: 300, Y: 239}
	if got := rec.frames[len(rec.frames)-1]; got != want {
		t.Errorf("final frame = %v, want %v", got, want)
	}
}

func TestBegin_ZeroDurationCompletesSynchronously(t *testing.T) {
	c, rec, _, _ := newTestController(true)

	c.Begin(ShowSpec(frameRect, 0))
	if c.Active() {
		t.Error("zero duration should not leave the controller animating")
	}
	if len(rec.completed) != 1 || rec.completed[0] != Show {
		t.Errorf("completed = %v, want [show]", rec.completed)
	}
	if got := rec.frames[len(rec.frames)-1]; got != frameRect {
		t.Errorf("final frame = %v, want %v", got, frameRect)
	}
}

func TestBegin_TicksUntilComplete(t *testing.T) {
	c, rec, sched, clock := newTestController(true)

	c.Begin(ShowSpec(frameRect, 100*time.Millisecond))
	if !c.Active() {
		t.Fatal("controller should be animating")
	}

	for i := 0; i < 20 && c.Active(); i++ {
		clock.advance(10 * time.Millisecond)
		sched.fire(false)
	}

	if c.Active() {
		t.Fatal("animation never finished")
	}
	if len(rec.completed) != 1 || rec.completed[0] != Show {
		t.Errorf("completed = %v, want [show]", rec.completed)
	}
	if got := rec.frames[len(rec.frames)-1]; got != frameRect {
		t.Errorf("final frame = %v, want %v", got, frameRect)
	}
	if len(rec.frames) < 3 {
		t.Errorf("expected intermediate frames, got %d", len(rec.frames))
	}
	// Widths grow monotonically while expanding.
	for i := 1; i < len(rec.frames); i++ {
		if rec.frames[i].Width < rec.frames[i-1].Width {
			t.Errorf("frame %d width %d shrank from %d", i, rec.frames[i].Width, rec.frames[i-1].Width)
		}
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		name       string
		first      Action
		second     Action
		accepted   bool
		wantAction Action
	}{
		{"close preempts hide", Hide, Close, true, Close},
		{"close preempts show", Show, Close, true, Close},
		{"hide dropped during close", Close, Hide, false, Close},
		{"show dropped during close", Close, Show, false, Close},
		{"show replaces hide", Hide, Show, true, Show},
		{"hide replaces show", Show, Hide, true, Hide},
		{"close restarts close", Close, Close, true, Close},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, sched, clock := newTestController(true)
			d := 50 * time.Millisecond

			c.Begin(Spec{Start: frameRect, End: frameRect, Duration: d, Action: tt.first})
			clock.advance(10 * time.Millisecond)
			sched.fire(false)

			got := c.Begin(Spec{Start: frameRect, End: frameRect, Duration: d, Action: tt.second})
			if got != tt.accepted {
				t.Errorf("Begin(%v) = %v, want %v", tt.second, got, tt.accepted)
			}
			spec, ok := c.Current()
			if !ok || spec.Action != tt.wantAction {
				t.Errorf("Current() = %v/%v, want %v", spec.Action, ok, tt.wantAction)
			}

			for i := 0; i < 20 && c.Active(); i++ {
				clock.advance(10 * time.Millisecond)
				sched.fire(false)
			}
			if len(rec.completed) != 1 || rec.completed[0] != tt.wantAction {
				t.Errorf("completed = %v, want [%v]", rec.completed, tt.wantAction)
			}
		})
	}
}

func TestStaleTickIgnored(t *testing.T) {
	c, rec, sched, clock := newTestController(true)

	c.Begin(HideSpec(frameRect, 20*time.Millisecond))
	c.Begin(CloseSpec(frameRect, 20*time.Millisecond))

	// The hide tick fires even though it was stopped; it must not advance
	// or complete anything.
	clock.advance(50 * time.Millisecond)
	sched.fire(true)

	if len(rec.completed) != 1 || rec.completed[0] != Close {
		t.Errorf("completed = %v, want [close]", rec.completed)
	}
}

func TestCancel(t *testing.T) {
	c, rec, sched, clock := newTestController(true)

	c.Begin(HideSpec(frameRect, 20*time.Millisecond))
	c.Cancel()
	clock.advance(50 * time.Millisecond)
	sched.fire(true)

	if c.Active() {
		t.Error("controller should be idle after Cancel")
	}
	if len(rec.completed) != 0 {
		t.Errorf("Cancel must not complete the action, got %v", rec.completed)
	}
}

func TestSpecShapes(t *testing.T) {
	d := time.Second
	show := ShowSpec(frameRect, d)
	if show.Start != (geom.Rect{X: 300, Y: 239}) || show.End != frameRect {
		t.Errorf("ShowSpec = %v -> %v", show.Start, show.End)
	}
	hide := HideSpec(frameRect, d)
	if hide.Start != frameRect || hide.End != (geom.Rect{X: 300, Y: 239}) {
		t.Errorf("HideSpec = %v -> %v", hide.Start, hide.End)
	}
	closing := CloseSpec(frameRect, d)
	want := geom.Rect{X: 98, Y: 239, Width: 404}
	if closing.End != want {
		t.Errorf("CloseSpec end = %v, want %v", closing.End, want)
	}
}

func TestParseEasing(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
		at      float64
		want    float64
	}{
		{"", false, 0.5, 0.5},
		{"linear", false, 0.5, 0.5},
		{"ease-out", false, 0.5, 0.75},
		{"bounce", true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ParseEasing(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEasing(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := fn(tt.at); got != tt.want {
				t.Errorf("easing(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

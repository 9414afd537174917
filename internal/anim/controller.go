// Package anim drives frame show, hide and close transitions.
package anim

import (
	"log/slog"
	"time"

	"github.com/1broseidon/framewm/internal/geom"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 16 * time.Millisecond

// Target receives the intermediate rectangles and the final action.
type Target interface {
	Render(r geom.Rect)
	Complete(a Action)
}

// Scheduler runs fn once after d on the caller's control flow.
// The returned stop func prevents fn from running if it has not started.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func())
}

// Config controls how transitions are played.
type Config struct {
	Enabled  bool
	Interval time.Duration
	Easing   Easing
	// Now is the clock; nil uses time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Controller plays at most one transition at a time.
// All methods must be called from the scheduler's control flow.
type Controller struct {
	target Target
	sched  Scheduler
	cfg    Config
	logger *slog.Logger

	running bool
	spec    Spec
	started time.Time
	stop    func()
	// gen invalidates ticks queued by a superseded transition.
	gen uint64
}

// New creates an idle controller.
func New(target Target, sched Scheduler, cfg Config) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Easing == nil {
		cfg.Easing = Linear
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{target: target, sched: sched, cfg: cfg, logger: logger}
}

// SetConfig replaces the playback settings for subsequent transitions.
func (c *Controller) SetConfig(cfg Config) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Easing == nil {
		cfg.Easing = Linear
	}
	if cfg.Now == nil {
		cfg.Now = c.cfg.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = c.logger
	}
	c.cfg = cfg
	c.logger = cfg.Logger
}

// Active reports whether a transition is running.
func (c *Controller) Active() bool {
	return c.running
}

// Current returns the running transition.
func (c *Controller) Current() (Spec, bool) {
	return c.spec, c.running
}

// Begin starts spec, replacing a running transition of equal or lower
// priority. It returns false when the request was dropped because a
// higher-priority transition is in flight.
//
// When animations are disabled or the duration is not positive the end
// rectangle is rendered and the action completed before Begin returns.
func (c *Controller) Begin(spec Spec) bool {
	if c.running && spec.Action.priority() < c.spec.Action.priority() {
		c.logger.Debug("animation request dropped",
			"requested", spec.Action.String(),
			"running", c.spec.Action.String())
		return false
	}
	c.halt()

	if !c.cfg.Enabled || spec.Duration <= 0 || c.sched == nil {
		c.target.Render(spec.End)
		c.target.Complete(spec.Action)
		return true
	}

	c.running = true
	c.spec = spec
	c.started = c.cfg.Now()
	c.target.Render(spec.Start)
	c.schedule()
	return true
}

// Cancel stops the running transition without completing its action.
func (c *Controller) Cancel() {
	c.halt()
}

func (c *Controller) halt() {
	c.gen++
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.running = false
	c.spec = Spec{}
}

func (c *Controller) schedule() {
	gen := c.gen
	c.stop = c.sched.AfterFunc(c.cfg.Interval, func() {
		if gen != c.gen {
			return
		}
		c.tick()
	})
}

func (c *Controller) tick() {
	c.stop = nil
	elapsed := c.cfg.Now().Sub(c.started)
	progress := float64(elapsed) / float64(c.spec.Duration)
	if progress < 1 {
		c.target.Render(geom.Lerp(c.spec.Start, c.spec.End, c.cfg.Easing(progress)))
		c.schedule()
		return
	}

	spec := c.spec
	c.halt()
	c.target.Render(spec.End)
	c.target.Complete(spec.Action)
}

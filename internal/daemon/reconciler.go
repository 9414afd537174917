package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Caller runs fn on the window manager's event loop.
type Caller interface {
	Call(ctx context.Context, fn func() error) error
}

// Reconcilable drops state for clients that disappeared unnoticed.
type Reconcilable interface {
	Reconcile() int
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval time.Duration
	loop     Caller
	target   Reconcilable
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, loop Caller, target Reconcilable) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		loop:     loop,
		target:   target,
		logger:   logger,
	}
}

func (r *Reconciler) String() string {
	return "reconciler"
}

// Serve runs the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			r.ReconcileNow(ctx)
		}
	}
}

// ReconcileNow performs a single reconciliation pass and returns the number
// of frames dropped.
func (r *Reconciler) ReconcileNow(ctx context.Context) int {
	var closed int
	err := r.loop.Call(ctx, func() (err error) {
		// Recover from panics to prevent crashing the daemon
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("reconciler panic recovered", "error", p)
			}
		}()
		closed = r.target.Reconcile()
		return nil
	})
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("reconciler: pass failed", "error", err)
		}
		return 0
	}
	if closed > 0 {
		r.logger.Info("reconciler: dropped vanished clients", "count", closed)
	}
	return closed
}

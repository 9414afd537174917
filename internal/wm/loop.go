// Package wm runs the single UI control flow and keeps the frame registry.
package wm

import (
	"context"
	"sync"
	"time"
)

// Pings are the channels xevent.MainPing returns. Every X callback runs
// between a Before and the matching After, so waiting for After while
// holding the loop serializes X callbacks with posted work. Nil channels
// are never selected.
type Pings struct {
	Before <-chan struct{}
	After  <-chan struct{}
	Quit   <-chan struct{}
}

// Loop executes posted functions one at a time on the goroutine running Run.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. It never blocks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for its result or for ctx.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	l.Post(func() {
		done <- fn()
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc posts fn to the loop after d. stop only prevents fn from being
// posted; a tick already queued still runs.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (stop func()) {
	t := time.AfterFunc(d, func() {
		l.Post(fn)
	})
	return func() {
		t.Stop()
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// Run processes posted work and X callbacks until ctx is done or the X
// event loop quits.
func (l *Loop) Run(ctx context.Context, pings Pings) error {
	for {
		l.drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pings.Quit:
			return nil
		case <-l.wake:
		case <-pings.Before:
			<-pings.After
		}
	}
}

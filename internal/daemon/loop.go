// Package daemon runs the card manager on a single goroutine and feeds it
// host events, IPC requests, timers and animation frames.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/config"
)

// ErrStopped is returned for work submitted after the loop exited.
var ErrStopped = errors.New("daemon loop stopped")

// LoopConfig holds configuration for the event loop.
type LoopConfig struct {
	FrameInterval    time.Duration
	AddWindowTimeout time.Duration
	QueueSize        int
	Logger           *zap.Logger
}

// Loop owns the card manager. Every access to the manager goes through the
// loop's event channel so the manager never sees two goroutines.
type Loop struct {
	m      *cardwm.Manager
	log    *zap.Logger
	events chan func(*cardwm.Manager)
	done   chan struct{}
	frame  time.Duration
	ticker *time.Ticker
	timers *addTimers
}

// NewLoop creates a loop around m.
func NewLoop(m *cardwm.Manager, cfg LoopConfig) *Loop {
	frame := cfg.FrameInterval
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Loop{
		m:      m,
		log:    logger.Named("loop"),
		events: make(chan func(*cardwm.Manager), queue),
		done:   make(chan struct{}),
		frame:  frame,
	}
	l.timers = newAddTimers(cfg.AddWindowTimeout, l.Post, l.log)
	return l
}

// Run processes events and animation frames until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer l.timers.stopAll()

	l.ticker = time.NewTicker(l.frame)
	defer l.ticker.Stop()

	l.log.Info("event loop started", zap.Duration("frame", l.frame))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.log.Info("event loop stopped")
			return nil
		case fn := <-l.events:
			l.dispatch(fn)
		case now := <-l.ticker.C:
			dt := now.Sub(last)
			last = now
			if l.m.Animating() {
				l.dispatch(func(m *cardwm.Manager) { m.Advance(dt) })
			}
		}
	}
}

// dispatch runs one event. A panic from a strict invariant check is logged
// instead of taking the daemon down.
func (l *Loop) dispatch(fn func(*cardwm.Manager)) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("event panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn(l.m)
	l.timers.sync(l.m)
}

// Post queues fn without waiting for it. It reports false once the loop
// has stopped.
func (l *Loop) Post(fn func(*cardwm.Manager)) bool {
	// A select picks randomly among ready cases, so a free queue slot would
	// otherwise win against a closed done channel.
	if l.stopped() {
		return false
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Exec runs fn on the loop and waits for its result.
func (l *Loop) Exec(ctx context.Context, fn func(*cardwm.Manager) error) error {
	errc := make(chan error, 1)
	wrapped := func(m *cardwm.Manager) {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			errc <- err
		}()
		err = fn(m)
	}

	if l.stopped() {
		return ErrStopped
	}
	select {
	case l.events <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The event may have run just before the loop exited.
		select {
		case err := <-errc:
			return err
		default:
			return ErrStopped
		}
	}
}

// Reconfigure applies cfg to the manager and the loop's own timing.
func (l *Loop) Reconfigure(ctx context.Context, cfg *config.Config) error {
	return l.Exec(ctx, func(m *cardwm.Manager) error {
		if err := m.Reconfigure(cfg); err != nil {
			return err
		}
		l.timers.setTimeout(cfg.AddWindowTimeout())
		if f := cfg.FrameInterval(); f > 0 && f != l.frame {
			l.frame = f
			if l.ticker != nil {
				l.ticker.Reset(f)
			}
		}
		return nil
	})
}

package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

// WindowLister returns the native windows that currently exist.
type WindowLister func() ([]platform.WindowID, error)

// WindowIndex maps cards to the native windows backing them.
type WindowIndex interface {
	Bound() map[card.ID]platform.WindowID
	Unbind(id card.ID)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// Reconciler periodically checks the manager for drift: broken structural
// invariants, and cards whose native window disappeared without a destroy
// notification.
type Reconciler struct {
	interval    time.Duration
	loop        *Loop
	index       WindowIndex
	listWindows WindowLister
	log         *zap.Logger
}

// NewReconciler creates a reconciler. index and listWindows may be nil when
// no native host backs the cards.
func NewReconciler(cfg ReconcilerConfig, loop *Loop, index WindowIndex, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		interval:    interval,
		loop:        loop,
		index:       index,
		listWindows: listWindows,
		log:         logger.Named("reconciler"),
	}
}

// Run starts the reconciliation loop. Blocks until ctx is canceled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}

func (r *Reconciler) reconcile(ctx context.Context) {
	if err := r.loop.Exec(ctx, (*cardwm.Manager).CheckInvariants); err != nil {
		r.log.Warn("state drift detected", zap.Error(err))
	}

	if r.index == nil || r.listWindows == nil {
		return
	}
	windows, err := r.listWindows()
	if err != nil {
		r.log.Error("failed to list windows", zap.Error(err))
		return
	}
	alive := make(map[platform.WindowID]bool, len(windows))
	for _, w := range windows {
		alive[w] = true
	}
	for id, w := range r.index.Bound() {
		if !alive[w] {
			r.log.Info("orphaned card", zap.Stringer("card", id), zap.Uint32("window", uint32(w)))
			r.HandleWindowClosed(id)
		}
	}
}

// HandleWindowOpened creates a card for a new native window that is already
// mapped. bind runs on the loop goroutine before the card is prepared.
func (r *Reconciler) HandleWindowOpened(info card.Info, bind func(card.ID)) {
	r.loop.Post(func(m *cardwm.Manager) {
		admitWindow(m, info, bind, r.log)
	})
}

// admitWindow creates, prepares and adds a card. A modal that fails the add
// check stays hidden and is not added.
func admitWindow(m *cardwm.Manager, info card.Info, bind func(card.ID), log *zap.Logger) (card.ID, modal.AddResult) {
	id := m.CreateCard(info)
	if bind != nil {
		bind(id)
	}
	res, err := m.PrepareAddWindow(id)
	if err != nil {
		log.Warn("prepare failed", zap.Stringer("card", id), zap.Error(err))
		return id, res
	}
	if res != modal.NoErr {
		log.Info("modal rejected", zap.Stringer("card", id), zap.Stringer("reason", res))
		return id, res
	}
	if err := m.AddWindow(id); err != nil {
		log.Warn("add failed", zap.Stringer("card", id), zap.Error(err))
	}
	return id, res
}

// HandleWindowClosed removes a card whose native window is gone. The host
// holds nothing for it any more, so the removal is also safe to delete.
func (r *Reconciler) HandleWindowClosed(id card.ID) {
	if r.index != nil {
		r.index.Unbind(id)
	}
	r.loop.Post(func(m *cardwm.Manager) {
		if err := m.RemoveWindow(id); err != nil {
			r.log.Debug("remove closed window", zap.Stringer("card", id), zap.Error(err))
		}
		if err := m.WindowSafeToDelete(id); err != nil {
			r.log.Debug("release closed window", zap.Stringer("card", id), zap.Error(err))
		}
	})
}

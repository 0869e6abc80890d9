package daemon

import (
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/cardwm"
)

// addTimers arms one timeout per prepared card that the host has not added
// yet. It is only touched from the loop goroutine.
type addTimers struct {
	timeout time.Duration
	post    func(func(*cardwm.Manager)) bool
	log     *zap.Logger
	armed   map[card.ID]*time.Timer
}

func newAddTimers(timeout time.Duration, post func(func(*cardwm.Manager)) bool, log *zap.Logger) *addTimers {
	return &addTimers{
		timeout: timeout,
		post:    post,
		log:     log,
		armed:   make(map[card.ID]*time.Timer),
	}
}

func (t *addTimers) setTimeout(d time.Duration) { t.timeout = d }

// sync arms timers for newly pending cards and drops timers for cards that
// were added or removed. A fired timer stays in the map so it never re-arms
// for the same card.
func (t *addTimers) sync(m *cardwm.Manager) {
	if t.timeout <= 0 {
		return
	}
	pending := make(map[card.ID]bool)
	for _, id := range m.PendingAdds() {
		pending[id] = true
		if _, ok := t.armed[id]; ok {
			continue
		}
		t.armed[id] = time.AfterFunc(t.timeout, t.fire(id))
	}
	for id, timer := range t.armed {
		if !pending[id] {
			timer.Stop()
			delete(t.armed, id)
		}
	}
}

func (t *addTimers) fire(id card.ID) func() {
	return func() {
		t.post(func(m *cardwm.Manager) {
			if err := m.AddWindowTimedOut(id); err != nil {
				t.log.Debug("add timeout for vanished card", zap.Stringer("card", id), zap.Error(err))
			}
		})
	}
}

func (t *addTimers) stopAll() {
	for id, timer := range t.armed {
		timer.Stop()
		delete(t.armed, id)
	}
}

package cardwm

import (
	"github.com/1broseidon/cardwm/internal/anim"
	"github.com/1broseidon/cardwm/internal/card"
)

type preparingState struct{ baseState }

// enter slides the new card up from below the screen into its slot.
func (preparingState) enter(m *Manager, from StateID) {
	c := m.store.Card(m.preparing)
	if c == nil || c.Removed {
		m.transition(StateMinimize)
		return
	}

	final, ok := m.computeLayout()[c.Group][c.ID]
	if !m.invariant(ok, "preparing card has no slot") {
		final = card.Transform{X: m.stripCenterX(), Y: m.stripY(), Scale: m.cfg.Layout.ActiveScale}
	}
	start := final
	start.Y = float64(m.screen.Height) + c.Size.Height*final.Scale
	c.Attached = false
	c.Transform = start

	id := c.ID
	m.anims.Start(anim.CardKey(id), anim.Animation{
		Duration: m.dur(m.cfg.Animation.CardEnterMS),
		Apply: func() {
			if c := m.store.Card(id); c != nil && !c.Removed && !c.Maximized {
				c.Attached = true
				c.Transform = final
			}
		},
	})
	m.relayout(true, m.dur(m.cfg.Animation.CardEnterMS))
}

func (preparingState) exit(m *Manager, to StateID) {
	if to != StateLoading && to != StatePreparing {
		m.preparing = card.ID{}
	}
}

// finishPreparing leaves Preparing once the entry animation is done: to
// Maximize when the host already added the card, else to Loading.
func (m *Manager) finishPreparing() {
	c := m.store.Card(m.preparing)
	switch {
	case c == nil || c.Removed:
		m.transition(StateMinimize)
	case c.Added:
		m.transition(StateMaximize)
	default:
		m.transition(StateLoading)
	}
}

func (preparingState) windowAdded(m *Manager, c *card.Card) {
	if c.ID == m.preparing && !m.anims.Busy() {
		m.finishPreparing()
	}
}

func (preparingState) windowRemoved(m *Manager, c *card.Card) {
	if !m.preparing.Valid() {
		m.restoreOrMinimize()
		return
	}
	m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
}

// windowTimedOut forces a card that never got acknowledged to the foreground.
func (preparingState) windowTimedOut(m *Manager, c *card.Card) {
	if c.ID != m.preparing {
		return
	}
	m.anims.Cancel(anim.CardKey(c.ID))
	c.Attached = true
	m.transition(StateMaximize)
}

func (preparingState) focusRequest(m *Manager, c *card.Card) {
	if c.ID == m.preparing {
		return
	}
	m.transition(StateMinimize)
	m.current().focusRequest(m, c)
}

func (preparingState) minimizeRequest(m *Manager) {
	m.transition(StateMinimize)
}

func (preparingState) animationsFinished(m *Manager) {
	m.finishPreparing()
}

package cardwm

import (
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/anim"
	"github.com/1broseidon/cardwm/internal/card"
)

type loadingState struct{ baseState }

// enter maximizes the new card while its content is still loading so the
// application lays out at its final size.
func (loadingState) enter(m *Manager, from StateID) {
	m.loading = m.preparing
	m.preparing = card.ID{}
	c := m.store.Card(m.loading)
	if c == nil || c.Removed {
		m.transition(StateMinimize)
		return
	}
	c.Loading = true
	c.Maximized = true
	c.Attached = false
	m.maximized = c.ID
	m.resizeMaximized(c, false)

	id := c.ID
	target := m.maximizedTransform(c)
	m.anims.Start(anim.CardKey(id), anim.Animation{
		Duration: m.dur(m.cfg.Animation.MaximizeMS),
		Apply: func() {
			if c := m.store.Card(id); c != nil && c.Maximized {
				c.Transform = target
			}
		},
	})
	m.log.Debug("card loading", zap.Stringer("card", id))
}

func (loadingState) exit(m *Manager, to StateID) {
	c := m.store.Card(m.loading)
	m.loading = card.ID{}
	if c == nil || to == StateMaximize {
		return
	}
	m.maximized = card.ID{}
	if c.Removed {
		return
	}
	m.unmaximizeCard(c)
	if to == StateMinimize {
		m.emitMinimize(c.ID)
	}
}

func (loadingState) windowAdded(m *Manager, c *card.Card) {
	if c.ID == m.loading {
		m.transition(StateMaximize)
	}
}

func (loadingState) windowTimedOut(m *Manager, c *card.Card) {
	if c.ID != m.loading {
		return
	}
	c.Loading = false
	m.transition(StateMaximize)
}

func (loadingState) windowRemoved(m *Manager, c *card.Card) {
	if c.ID != m.loading {
		m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
		return
	}
	c.Maximized = false
	m.restoreOrMinimize()
}

func (loadingState) flick(m *Manager, ev FlickEvent) bool {
	if !m.inGestureStrip(ev.Hotspot) || ev.Velocity.Y > -m.cfg.Gestures.FlickMinVelocity {
		return false
	}
	m.transition(StateMinimize)
	return true
}

func (loadingState) navigate(m *Manager, key NavKey) bool {
	switch key {
	case NavUp, NavHome, NavBack:
		m.transition(StateMinimize)
		return true
	}
	return false
}

func (loadingState) focusRequest(m *Manager, c *card.Card) {
	if c.ID == m.loading {
		return
	}
	m.transition(StateMinimize)
	m.current().focusRequest(m, c)
}

func (loadingState) minimizeRequest(m *Manager) {
	m.transition(StateMinimize)
}

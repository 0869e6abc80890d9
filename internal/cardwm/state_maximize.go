package cardwm

import (
	"github.com/1broseidon/cardwm/internal/anim"
	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

type maximizeState struct{ baseState }

func (maximizeState) enter(m *Manager, from StateID) {
	c := m.store.Card(m.ActiveWindow())
	if !m.invariant(c != nil, "maximize without an active card") {
		return
	}
	m.maximizeCard(c)
	m.emitMaximize(c.ID)
}

// maximizeCard sizes c to the positive space, queues its focus and animates
// it to the center.
func (m *Manager) maximizeCard(c *card.Card) {
	m.maximized = c.ID
	c.Maximized = true
	c.Attached = false
	m.resizeMaximized(c, false)
	m.queueFocus(c.ID)

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
	m.relayout(true, m.dur(m.cfg.Animation.MaximizeMS))
}

func (m *Manager) unmaximizeCard(c *card.Card) {
	c.Maximized = false
	c.Attached = true
	delete(m.pendingFocus, c.ID)
	m.takeFocus(c)
	m.resizeNormal(c)
}

func (maximizeState) exit(m *Manager, to StateID) {
	if m.modal.Active() {
		m.dismissModal(modal.DismissedInternally)
	}
	m.disableDirectRendering()
	c := m.store.Card(m.maximized)
	m.maximized = card.ID{}
	if c == nil || c.Removed {
		return
	}
	m.unmaximizeCard(c)
	if to == StateMinimize {
		m.emitMinimize(c.ID)
	}
}

func (maximizeState) flick(m *Manager, ev FlickEvent) bool {
	if !m.inGestureStrip(ev.Hotspot) || ev.Velocity.Y > -m.cfg.Gestures.FlickMinVelocity {
		return false
	}
	m.MinimizeActiveWindow()
	return true
}

func (maximizeState) navigate(m *Manager, key NavKey) bool {
	switch key {
	case NavUp, NavHome, NavBack:
		m.MinimizeActiveWindow()
		return true
	case NavLeft, NavRight:
		dir := card.DirRight
		if key == NavLeft {
			dir = card.DirLeft
		}
		id := m.adjacentCard(dir)
		if !id.Valid() {
			m.emitFeedback(FeedbackAngryCard)
			return false
		}
		return m.FocusWindow(id) == nil
	}
	return false
}

func (maximizeState) minimizeRequest(m *Manager) {
	m.transition(StateMinimize)
}

func (maximizeState) focusRequest(m *Manager, c *card.Card) {
	if c.ID == m.maximized {
		m.queueFocus(c.ID)
		if !m.anims.Busy() {
			m.flushFocus()
		}
		return
	}
	m.focusTarget = c.ID
	m.transition(StateFocus)
}

func (maximizeState) windowRemoved(m *Manager, c *card.Card) {
	if c.ID != m.maximized {
		m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
		return
	}
	c.Maximized = false
	m.maximized = card.ID{}
	if r := m.takeRestoreTarget(); r != nil {
		m.setActiveCard(r.ID)
		m.maximizeCard(r)
		m.emitMaximize(r.ID)
		return
	}
	m.transition(StateMinimize)
}

// takeRestoreTarget clears and returns the card that launched the closing
// maximized card, or nil when it can no longer be maximized.
func (m *Manager) takeRestoreTarget() *card.Card {
	r := m.store.Card(m.restoreTarget)
	m.restoreTarget = card.ID{}
	if r == nil || r.Removed || !r.Group.Valid() {
		return nil
	}
	return r
}

// restoreOrMinimize maximizes the restore target after the card being shown
// went away, or minimizes when there is none.
func (m *Manager) restoreOrMinimize() {
	if r := m.takeRestoreTarget(); r != nil {
		m.setActiveCard(r.ID)
		m.transition(StateMaximize)
		return
	}
	m.transition(StateMinimize)
}

func (maximizeState) positiveSpaceChanged(m *Manager, r platform.Rect, fullscreen bool) {
	c := m.store.Card(m.maximized)
	if c == nil {
		return
	}
	m.disableDirectRendering()
	m.resizeMaximized(c, false)
	id := c.ID
	target := m.maximizedTransform(c)
	m.anims.Start(anim.CardKey(id), anim.Animation{
		Duration: m.dur(m.cfg.Animation.SlideMS),
		Apply: func() {
			if c := m.store.Card(id); c != nil && c.Maximized {
				c.Transform = target
			}
		},
	})
	m.relayout(false, 0)
}

func (maximizeState) animationsFinished(m *Manager) {
	m.flushFocus()
	if m.pendingShare[m.maximized] {
		m.deliverShare(m.maximized)
	}
	m.maybeEnableDirectRendering()
}

// adjacentCard returns the card next to the active one in dir, crossing
// into the neighbouring group at the edge.
func (m *Manager) adjacentCard(dir card.Direction) card.ID {
	g := m.group(m.activeGroup)
	if g == nil {
		return card.ID{}
	}
	next := g.ActiveIndex() + 1
	if dir == card.DirLeft {
		next = g.ActiveIndex() - 1
	}
	if id := g.At(next); id.Valid() {
		return id
	}
	if nb := m.neighbour(g.ID, dir); nb != nil {
		return nb.Active()
	}
	return card.ID{}
}

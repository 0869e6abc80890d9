package cardwm

import (
	"math"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/platform"
)

type minimizeState struct{ baseState }

func (minimizeState) enter(m *Manager, from StateID) {
	m.relayout(true, m.dur(m.cfg.Animation.MinimizeMS))
}

func (minimizeState) pointerDown(m *Manager, ev PointerEvent) bool {
	return len(m.groups) > 0
}

func (minimizeState) pointerMove(m *Manager, ev PointerEvent) bool {
	switch m.lock {
	case Horizontal:
		g := m.group(m.activeGroup)
		if g == nil {
			return false
		}
		dx := ev.Pos.X - m.press.last.X
		if dx == 0 {
			return true
		}
		fanDelta := -dx / (m.activeCardWidth() * m.law.Weights[0])
		dir := dirOf(fanDelta)
		switch {
		case m.stripDx != 0:
			next := m.stripDx + dx
			if next*m.stripDx < 0 {
				next = 0
			}
			m.stripDx = next
		case g.Len() < 2 || g.AtEdge(dir):
			m.stripDx += dx
		default:
			g.AdjustHorizontally(fanDelta)
		}
		m.relayout(false, 0)
		return true
	case Vertical:
		c := m.store.Card(m.press.card)
		if c == nil || c.Group != m.activeGroup {
			return false
		}
		c.Attached = false
		c.Transform.Y += ev.Pos.Y - m.press.last.Y
		return true
	}
	return false
}

func (minimizeState) pointerUp(m *Manager, ev PointerEvent) bool {
	switch m.lock {
	case Horizontal:
		g := m.group(m.activeGroup)
		if g == nil {
			return false
		}
		switched := false
		if math.Abs(m.stripDx) >= m.cfg.Gestures.GroupSwitchFraction*m.activeCardWidth() {
			switched = m.switchGroup(dirOf(-m.stripDx))
		}
		m.stripDx = 0
		if g.Settle() && !switched {
			m.setActiveCard(g.Active())
		}
		m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
		return true
	case Vertical:
		c := m.store.Card(m.press.card)
		if c == nil || c.Group != m.activeGroup {
			return false
		}
		if ev.Pos.Y-m.press.origin.Y <= -m.cfg.Gestures.CloseDistance {
			m.throwAway(c)
		}
		c.Attached = true
		m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
		return true
	}
	return false
}

func (minimizeState) flick(m *Manager, ev FlickEvent) bool {
	v := ev.Velocity
	minV := m.cfg.Gestures.FlickMinVelocity
	if math.Abs(v.Y) > math.Abs(v.X) {
		if v.Y > -minV {
			return false
		}
		c := m.store.Card(m.cardAt(ev.Hotspot))
		if c == nil || c.Group != m.activeGroup {
			return false
		}
		m.throwAway(c)
		return true
	}
	if math.Abs(v.X) < minV {
		return false
	}
	g := m.group(m.activeGroup)
	if g == nil {
		return false
	}
	dir := dirOf(-v.X)
	if g.Len() < 2 || g.AtEdge(dir) {
		m.switchGroup(dir)
	} else {
		g.Flick(-v.X)
		if g.Settle() {
			m.setActiveCard(g.Active())
		}
	}
	m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
	return true
}

func (minimizeState) tap(m *Manager, p platform.Point) bool {
	id := m.cardAt(p)
	if !id.Valid() {
		return false
	}
	m.setActiveCard(id)
	m.transition(StateMaximize)
	return true
}

func (minimizeState) tapAndHold(m *Manager, p platform.Point) bool {
	id := m.cardAt(p)
	if !id.Valid() || id != m.ActiveWindow() {
		return false
	}
	m.dragged = id
	m.press = pressState{down: true, origin: p, last: p, card: id}
	m.transition(StateReorder)
	return true
}

func (minimizeState) navigate(m *Manager, key NavKey) bool {
	switch key {
	case NavLeft, NavRight:
		dir := card.DirRight
		if key == NavLeft {
			dir = card.DirLeft
		}
		if !m.selectAdjacent(dir) {
			return false
		}
		m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
		return true
	case NavUp, NavHome:
		if !m.ActiveWindow().Valid() {
			return false
		}
		m.transition(StateMaximize)
		return true
	}
	return false
}

func (minimizeState) maximizeRequest(m *Manager) {
	if m.ActiveWindow().Valid() {
		m.transition(StateMaximize)
	}
}

// throwAway asks the host to close c. The card leaves once the owning
// application answers with a remove.
func (m *Manager) throwAway(c *card.Card) {
	m.log.Info("card thrown away", zap.Stringer("card", c.ID), zap.String("name", c.Label()))
	if err := m.host.Close(c.ID); err != nil {
		m.log.Warn("host close failed", zap.Stringer("card", c.ID), zap.Error(err))
	}
}

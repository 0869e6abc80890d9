package cardwm

import (
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/platform"
)

// reorderLift is the extra scale of the dragged card.
const reorderLift = 1.1

type reorderState struct{ baseState }

func (reorderState) enter(m *Manager, from StateID) {
	d := m.store.Card(m.dragged)
	g := m.group(m.activeGroup)
	if !m.invariant(d != nil && g != nil && g.Active() == d.ID, "reorder without the active card") {
		return
	}
	d.Attached = false
	d.Transform.Scale = m.cfg.Layout.ActiveScale * reorderLift
	m.zone = ZoneCenter
	m.reorderAnchor = m.press.last.X
	m.log.Debug("reorder started", zap.Stringer("card", d.ID), zap.Int("slice", g.ActiveIndex()))
	if m.sig.EnterReorder != nil {
		m.sig.EnterReorder(platform.Point{X: d.Transform.X, Y: d.Transform.Y}, g.ActiveIndex())
	}
}

func (reorderState) exit(m *Manager, to StateID) {
	if d := m.store.Card(m.dragged); d != nil {
		d.Attached = true
	}
	m.dragged = card.ID{}
	m.zone = ZoneCenter
}

// pointerMove drags the card. Every reorder-zone width of travel moves it
// one slot.
func (reorderState) pointerMove(m *Manager, ev PointerEvent) bool {
	d := m.store.Card(m.dragged)
	if d == nil {
		return false
	}
	d.Transform.X += ev.Pos.X - m.press.last.X
	d.Transform.Y += ev.Pos.Y - m.press.last.Y

	width := m.cfg.Gestures.ReorderZoneWidth
	for {
		dx := ev.Pos.X - m.reorderAnchor
		switch {
		case dx >= width/2:
			m.zone = ZoneRight
			m.reorderStep(card.DirRight)
			m.reorderAnchor += width
		case dx < -width/2:
			m.zone = ZoneLeft
			m.reorderStep(card.DirLeft)
			m.reorderAnchor -= width
		default:
			m.zone = ZoneCenter
			return true
		}
	}
}

func (reorderState) pointerUp(m *Manager, ev PointerEvent) bool {
	m.exitReorder(false)
	return true
}

func (reorderState) flick(*Manager, FlickEvent) bool { return true }

func (reorderState) tap(*Manager, platform.Point) bool { return true }

func (reorderState) navigate(m *Manager, key NavKey) bool {
	switch key {
	case NavLeft:
		return m.reorderStep(card.DirLeft)
	case NavRight:
		return m.reorderStep(card.DirRight)
	case NavBack:
		m.exitReorder(true)
		return true
	case NavUp, NavHome, NavDown:
		m.exitReorder(false)
		return true
	}
	return false
}

func (reorderState) focusRequest(m *Manager, c *card.Card) {
	m.exitReorder(true)
	m.current().focusRequest(m, c)
}

func (reorderState) minimizeRequest(m *Manager) {
	m.exitReorder(false)
}

func (reorderState) prepareAdd(m *Manager, c *card.Card) {
	m.exitReorder(true)
	m.current().prepareAdd(m, c)
}

// exitReorder leaves Reorder. The arrangement reached so far is kept in
// both cases; canceled only tells observers the drag did not end normally.
func (m *Manager) exitReorder(canceled bool) {
	if m.state != StateReorder {
		return
	}
	m.log.Debug("reorder finished", zap.Bool("canceled", canceled))
	m.transition(StateMinimize)
	if m.sig.ExitReorder != nil {
		m.sig.ExitReorder(canceled)
	}
}

// reorderStep moves the dragged card one slot in dir. At the group boundary
// a card with siblings splits off into a new group, and a card alone in its
// group joins the neighbouring group at its near edge.
func (m *Manager) reorderStep(dir card.Direction) bool {
	d := m.store.Card(m.dragged)
	g := m.group(m.activeGroup)
	if !m.invariant(d != nil && g != nil && g.Active() == d.ID, "reorder step without the active card") {
		return false
	}
	if g.MoveActiveCard(dir) {
		m.relayout(true, m.dur(m.cfg.Animation.ReorderMS))
		return true
	}

	if g.Len() > 1 {
		g.Remove(d.ID)
		ng := m.newGroupBeside(g.ID, dir)
		ng.AddToBack(d.ID, true)
		d.Group = ng.ID
		m.setActiveCard(d.ID)
	} else {
		nb := m.neighbour(g.ID, dir)
		if nb == nil {
			m.emitFeedback(FeedbackAngryCard)
			return false
		}
		g.Remove(d.ID)
		if dir == card.DirRight {
			nb.AddToFront(d.ID, true)
		} else {
			nb.AddToBack(d.ID, true)
		}
		d.Group = nb.ID
		m.activeGroup = nb.ID
		m.destroyGroup(g)
		m.setActiveCard(d.ID)
	}
	m.log.Debug("card migrated", zap.Stringer("card", d.ID), zap.Stringer("group", d.Group))
	m.relayout(true, m.dur(m.cfg.Animation.ReorderMS))
	return true
}

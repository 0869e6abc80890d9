package cardwm

import "github.com/1broseidon/cardwm/internal/card"

type focusState struct{ baseState }

// enter activates the focus target and slides its group to the center. The
// card is maximized once the animations finish.
func (focusState) enter(m *Manager, from StateID) {
	c := m.store.Card(m.focusTarget)
	if c == nil || c.Removed || !c.Group.Valid() {
		m.transition(StateMinimize)
		return
	}
	m.setActiveCard(c.ID)
	m.relayout(true, m.dur(m.cfg.Animation.FocusMS))
}

func (focusState) windowRemoved(m *Manager, c *card.Card) {
	if c.ID == m.focusTarget {
		m.focusTarget = card.ID{}
		m.transition(StateMinimize)
		return
	}
	m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
}

func (focusState) maximizeRequest(m *Manager) {
	m.transition(StateMaximize)
}

func (focusState) minimizeRequest(m *Manager) {
	m.transition(StateMinimize)
}

func (focusState) animationsFinished(m *Manager) {
	m.focusTarget = card.ID{}
	m.transition(StateMaximize)
}

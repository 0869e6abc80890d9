package cardwm

import (
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/platform"
)

// StateID names a state of the card manager.
type StateID int

const (
	// StateMinimize: no card maximized, the user browses fanned groups.
	StateMinimize StateID = iota
	// StateMaximize: the active card fills the positive space.
	StateMaximize
	// StatePreparing: a newly requested card is positioned before it becomes active.
	StatePreparing
	// StateLoading: the new card is maximized but still loading its content.
	StateLoading
	// StateFocus: an external focus request is bringing a card forward.
	StateFocus
	// StateReorder: the user drags the active card to a new slot.
	StateReorder
)

func (s StateID) String() string {
	switch s {
	case StateMinimize:
		return "minimize"
	case StateMaximize:
		return "maximize"
	case StatePreparing:
		return "preparing"
	case StateLoading:
		return "loading"
	case StateFocus:
		return "focus"
	case StateReorder:
		return "reorder"
	default:
		return "unknown"
	}
}

// transitions lists the legal targets of every state.
var transitions = map[StateID][]StateID{
	StateMinimize:  {StateMaximize, StatePreparing, StateFocus, StateReorder},
	StateMaximize:  {StateMinimize, StatePreparing, StateFocus},
	StatePreparing: {StateMinimize, StateMaximize, StatePreparing, StateLoading},
	StateLoading:   {StateMinimize, StateMaximize, StatePreparing},
	StateFocus:     {StateMaximize, StateMinimize, StateFocus, StatePreparing},
	StateReorder:   {StateMinimize},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to StateID) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// handler is the per-state event table. Input handlers return whether the
// event was consumed.
type handler interface {
	enter(m *Manager, from StateID)
	exit(m *Manager, to StateID)

	pointerDown(m *Manager, ev PointerEvent) bool
	pointerMove(m *Manager, ev PointerEvent) bool
	pointerUp(m *Manager, ev PointerEvent) bool
	flick(m *Manager, ev FlickEvent) bool
	tap(m *Manager, p platform.Point) bool
	tapAndHold(m *Manager, p platform.Point) bool
	navigate(m *Manager, key NavKey) bool

	prepareAdd(m *Manager, c *card.Card)
	windowAdded(m *Manager, c *card.Card)
	windowRemoved(m *Manager, c *card.Card)
	windowTimedOut(m *Manager, c *card.Card)
	focusRequest(m *Manager, c *card.Card)
	maximizeRequest(m *Manager)
	minimizeRequest(m *Manager)
	positiveSpaceChanged(m *Manager, r platform.Rect, fullscreen bool)
	animationsFinished(m *Manager)
}

// baseState ignores everything. States embed it and override what they handle.
type baseState struct{}

func (baseState) enter(*Manager, StateID) {}

func (baseState) exit(*Manager, StateID) {}

func (baseState) pointerDown(*Manager, PointerEvent) bool { return false }

func (baseState) pointerMove(*Manager, PointerEvent) bool { return false }

func (baseState) pointerUp(*Manager, PointerEvent) bool { return false }

func (baseState) flick(*Manager, FlickEvent) bool { return false }

func (baseState) tap(*Manager, platform.Point) bool { return false }

func (baseState) tapAndHold(*Manager, platform.Point) bool { return false }

func (baseState) navigate(*Manager, NavKey) bool { return false }

func (baseState) prepareAdd(m *Manager, c *card.Card) {
	m.preparing = c.ID
	m.transition(StatePreparing)
}

func (baseState) windowAdded(*Manager, *card.Card) {}

func (baseState) windowRemoved(m *Manager, c *card.Card) {
	m.relayout(true, m.dur(m.cfg.Animation.SlideMS))
}

func (baseState) windowTimedOut(m *Manager, c *card.Card) {
	m.log.Info("add window timed out outside of loading", zap.Stringer("card", c.ID))
}

func (baseState) focusRequest(m *Manager, c *card.Card) {
	m.focusTarget = c.ID
	m.transition(StateFocus)
}

func (baseState) maximizeRequest(*Manager) {}

func (baseState) minimizeRequest(*Manager) {}

func (baseState) positiveSpaceChanged(m *Manager, _ platform.Rect, _ bool) {
	m.relayout(false, 0)
}

func (baseState) animationsFinished(*Manager) {}

func newHandlers() map[StateID]handler {
	return map[StateID]handler{
		StateMinimize:  &minimizeState{},
		StateMaximize:  &maximizeState{},
		StatePreparing: &preparingState{},
		StateLoading:   &loadingState{},
		StateFocus:     &focusState{},
		StateReorder:   &reorderState{},
	}
}

func (m *Manager) current() handler {
	return m.handlers[m.state]
}

// transition runs exit(from), switches state and runs enter(to). Targets
// outside the transition table are invariant violations.
func (m *Manager) transition(to StateID) {
	from := m.state
	if !m.invariant(CanTransition(from, to), "illegal state transition",
		zap.Stringer("from", from), zap.Stringer("to", to)) {
		return
	}
	m.log.Debug("state transition", zap.Stringer("from", from), zap.Stringer("to", to))
	m.handlers[from].exit(m, to)
	m.state = to
	if m.sig.StateChanged != nil {
		m.sig.StateChanged(from, to)
	}
	m.handlers[to].enter(m, from)
}

package cardwm

import (
	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

// Feedback is a user feedback cue (sound or haptic) triggered as a side effect.
type Feedback int

const (
	FeedbackOpen Feedback = iota
	FeedbackClose
	// FeedbackAngryCard plays when a card cannot move any further.
	FeedbackAngryCard
)

func (f Feedback) String() string {
	switch f {
	case FeedbackOpen:
		return "open"
	case FeedbackClose:
		return "close"
	case FeedbackAngryCard:
		return "angry-card"
	default:
		return "unknown"
	}
}

// Signals are the notifications the manager emits to its collaborators.
// Every field is optional; a nil field is simply not called.
type Signals struct {
	MaximizeActiveWindow func(id card.ID)
	MinimizeActiveWindow func(id card.ID)
	FocusWindow          func(id card.ID)
	EnterReorder         func(p platform.Point, slice int)
	ExitReorder          func(canceled bool)
	FirstCardRun         func()
	ActiveChanged        func(id card.ID, group card.GroupID)
	DirectRendering      func(id card.ID, enabled bool)
	Feedback             func(f Feedback)
	TouchToShare         func(id card.ID)
	ModalDismissed       func(child card.ID, reason modal.Reason)
	StateChanged         func(from, to StateID)
}

func (m *Manager) emitMaximize(id card.ID) {
	if m.sig.MaximizeActiveWindow != nil {
		m.sig.MaximizeActiveWindow(id)
	}
}

func (m *Manager) emitMinimize(id card.ID) {
	if m.sig.MinimizeActiveWindow != nil {
		m.sig.MinimizeActiveWindow(id)
	}
}

func (m *Manager) emitFocus(id card.ID) {
	if m.sig.FocusWindow != nil {
		m.sig.FocusWindow(id)
	}
}

func (m *Manager) emitFeedback(f Feedback) {
	if m.sig.Feedback != nil {
		m.sig.Feedback(f)
	}
}

func (m *Manager) emitDirectRendering(id card.ID, enabled bool) {
	if m.sig.DirectRendering != nil {
		m.sig.DirectRendering(id, enabled)
	}
}

func (m *Manager) emitActiveChanged(id card.ID, g card.GroupID) {
	if m.sig.ActiveChanged != nil {
		m.sig.ActiveChanged(id, g)
	}
}

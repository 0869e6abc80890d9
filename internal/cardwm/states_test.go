package cardwm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/cardwm/internal/card"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to StateID
		want     bool
	}{
		{StateMinimize, StateMaximize, true},
		{StateMinimize, StateReorder, true},
		{StateMinimize, StateLoading, false},
		{StateMaximize, StateReorder, false},
		{StateMaximize, StateFocus, true},
		{StatePreparing, StatePreparing, true},
		{StatePreparing, StateLoading, true},
		{StateLoading, StateFocus, false},
		{StateFocus, StateFocus, true},
		{StateReorder, StateMinimize, true},
		{StateReorder, StateMaximize, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStateIDString(t *testing.T) {
	names := map[StateID]string{
		StateMinimize:  "minimize",
		StateMaximize:  "maximize",
		StatePreparing: "preparing",
		StateLoading:   "loading",
		StateFocus:     "focus",
		StateReorder:   "reorder",
		StateID(42):    "unknown",
	}
	for s, want := range names {
		assert.Equal(t, want, s.String())
	}
}

func TestEveryStateHasAHandler(t *testing.T) {
	handlers := newHandlers()
	for from, targets := range transitions {
		assert.Contains(t, handlers, from)
		for _, to := range targets {
			assert.Contains(t, handlers, to)
		}
	}
}

func TestStateChangedSignalOrder(t *testing.T) {
	h := newHarness(t)
	var seen []string
	h.m.sig.StateChanged = func(from, to StateID) {
		seen = append(seen, from.String()+">"+to.String())
	}
	a := h.open(card.Info{Name: "A"})
	h.minimize()
	_ = h.m.FocusWindow(a)
	h.settle()

	assert.Equal(t, []string{
		"minimize>preparing",
		"preparing>maximize",
		"maximize>minimize",
		"minimize>focus",
		"focus>maximize",
	}, seen)
}

package cardwm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

func TestAddFirstCard_MaximizesWithDirectRendering(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	h.m.MaximizeActiveWindow()
	h.settle()

	g := h.m.Group(h.m.ActiveGroup())
	require.NotNil(t, g)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, a, h.m.ActiveWindow())
	assert.Equal(t, StateMaximize, h.m.State())
	assert.True(t, h.card(a).Maximized)
	assert.True(t, h.card(a).Focused)
	assert.Equal(t, a, h.m.DirectRenderingWindow())
	assert.True(t, h.host.DirectRendering(a))
	assert.Equal(t, a, h.host.Focused())
	assert.Equal(t, 1, h.firstRuns)
	assert.Equal(t, []card.ID{a}, h.maxed)
	assert.Equal(t, FeedbackOpen, h.feedback[0])
}

func TestAddFromSameProcess_JoinsActiveGroup(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	b := h.open(card.Info{Name: "B", LaunchingProcessID: h.card(a).ProcessID})

	require.Len(t, h.m.Groups(), 1)
	g := h.m.Group(h.m.ActiveGroup())
	assert.Equal(t, []card.ID{a, b}, g.Cards())
	assert.Equal(t, b, h.m.ActiveWindow())
	assert.Equal(t, a, h.m.RestoreTarget())
	assert.True(t, h.card(b).Maximized)
	assert.False(t, h.card(a).Maximized)
	assert.Equal(t, 1, h.firstRuns)

	// Closing B re-maximizes A.
	require.NoError(t, h.m.RemoveWindow(b))
	h.settle()
	assert.Equal(t, StateMaximize, h.m.State())
	assert.Equal(t, a, h.m.ActiveWindow())
	assert.True(t, h.card(a).Maximized)
	assert.Equal(t, a, h.m.DirectRenderingWindow())
}

func TestRemoveBeforeShown_RestoresLauncher(t *testing.T) {
	tests := []struct {
		name    string
		animate bool
		state   StateID
	}{
		{"while preparing", false, StatePreparing},
		{"while loading", true, StateLoading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			a := h.open(card.Info{Name: "A"})
			b := h.create(card.Info{Name: "B", LaunchingProcessID: h.card(a).ProcessID})
			res, err := h.m.PrepareAddWindow(b)
			require.NoError(t, err)
			require.Equal(t, modal.NoErr, res)
			if tt.animate {
				h.animate()
			}
			require.Equal(t, tt.state, h.m.State())
			require.Equal(t, a, h.m.RestoreTarget())

			require.NoError(t, h.m.RemoveWindow(b))
			h.settle()
			assert.Equal(t, StateMaximize, h.m.State())
			assert.Equal(t, a, h.m.ActiveWindow())
			assert.Equal(t, a, h.m.MaximizedWindow())
			assert.True(t, h.card(a).Maximized)
			assert.False(t, h.m.RestoreTarget().Valid())
			assert.Equal(t, a, h.m.DirectRenderingWindow())
		})
	}
}

func TestAddFromOtherProcess_CreatesGroupRightOfActive(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	b := h.open(card.Info{Name: "B"})
	h.minimize()
	require.NoError(t, h.m.FocusWindow(a))
	h.settle()
	c := h.open(card.Info{Name: "C"})

	groups := h.m.Groups()
	require.Len(t, groups, 3)
	order := make([]card.ID, 0, 3)
	for _, gid := range groups {
		order = append(order, h.m.Group(gid).Active())
	}
	assert.Equal(t, []card.ID{a, c, b}, order)
	assert.Equal(t, c, h.m.ActiveWindow())
	assert.False(t, h.m.RestoreTarget().Valid())
}

func TestRemoveLastCardOfGroup_ReselectsClosestGroup(t *testing.T) {
	tests := []struct {
		name        string
		leftWidth   float64
		rightWidth  float64
		wantClosest string
	}{
		{"narrow right group", 1024, 400, "right"},
		{"narrow left group", 400, 1024, "left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			left := h.open(card.Info{Name: "L", Size: card.Size{Width: tt.leftWidth, Height: 768}})
			mid := h.open(card.Info{Name: "M"})
			right := h.open(card.Info{Name: "R", Size: card.Size{Width: tt.rightWidth, Height: 768}})
			require.NoError(t, h.m.FocusWindow(mid))
			h.settle()
			h.minimize()
			require.Len(t, h.m.Groups(), 3)

			require.NoError(t, h.m.RemoveWindow(mid))
			h.settle()

			require.Len(t, h.m.Groups(), 2)
			want := left
			if tt.wantClosest == "right" {
				want = right
			}
			assert.Equal(t, want, h.m.ActiveWindow())
		})
	}
}

func TestRemoveWindow_DestroysOnlyAfterAnimationAndAck(t *testing.T) {
	tests := []struct {
		name    string
		ackLast bool
	}{
		{"ack after exit animation", true},
		{"ack before exit animation", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			a := h.open(card.Info{Name: "A"})
			b := h.open(card.Info{Name: "B"})

			require.NoError(t, h.m.RemoveWindow(b))
			require.NotNil(t, h.m.Card(b))
			assert.True(t, h.card(b).Removed)

			if tt.ackLast {
				h.settle()
				require.NotNil(t, h.m.Card(b), "still waiting for the host")
				require.NoError(t, h.m.WindowSafeToDelete(b))
			} else {
				require.NoError(t, h.m.WindowSafeToDelete(b))
				require.NotNil(t, h.m.Card(b), "still animating")
				h.settle()
			}
			assert.Nil(t, h.m.Card(b))
			assert.Equal(t, a, h.m.ActiveWindow())

			err := h.m.FocusWindow(b)
			assert.True(t, errors.Is(err, ErrUnknownCard))
		})
	}
}

func TestRemoveWindow_Twice(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	require.NoError(t, h.m.RemoveWindow(a))
	require.NoError(t, h.m.RemoveWindow(a))
	h.settle()
	assert.Empty(t, h.m.Groups())
	assert.False(t, h.m.ActiveGroup().Valid())
	assert.Equal(t, StateMinimize, h.m.State())
	assert.Equal(t, []Feedback{FeedbackOpen, FeedbackClose}, h.feedback)
}

func TestUnknownCards(t *testing.T) {
	h := newHarness(t)
	var zero card.ID
	_, err := h.m.PrepareAddWindow(zero)
	assert.ErrorIs(t, err, ErrUnknownCard)
	assert.ErrorIs(t, h.m.AddWindow(zero), ErrUnknownCard)
	assert.ErrorIs(t, h.m.RemoveWindow(zero), ErrUnknownCard)
	assert.ErrorIs(t, h.m.WindowSafeToDelete(zero), ErrUnknownCard)
	assert.ErrorIs(t, h.m.AddWindowTimedOut(zero), ErrUnknownCard)

	_, err = h.m.FindCard("nobody")
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestAddWindow_WithoutPrepare(t *testing.T) {
	h := newHarness(t)
	a := h.create(card.Info{Name: "A"})
	require.NoError(t, h.m.AddWindow(a))
	h.settle()
	assert.Equal(t, StateMaximize, h.m.State())
	assert.Equal(t, a, h.m.ActiveWindow())
}

func TestLoading_AddWindowMaximizes(t *testing.T) {
	h := newHarness(t)
	a := h.create(card.Info{Name: "A"})
	_, err := h.m.PrepareAddWindow(a)
	require.NoError(t, err)
	assert.Equal(t, StatePreparing, h.m.State())

	h.settle()
	assert.Equal(t, StateLoading, h.m.State())
	assert.True(t, h.card(a).Loading)
	assert.True(t, h.card(a).Maximized)
	assert.False(t, h.m.DirectRenderingWindow().Valid())

	require.NoError(t, h.m.AddWindow(a))
	h.settle()
	assert.Equal(t, StateMaximize, h.m.State())
	assert.False(t, h.card(a).Loading)
	assert.Equal(t, a, h.m.DirectRenderingWindow())
}

func TestAddWindowTimedOut_ForcesForeground(t *testing.T) {
	for _, during := range []StateID{StatePreparing, StateLoading} {
		t.Run(during.String(), func(t *testing.T) {
			h := newHarness(t)
			a := h.create(card.Info{Name: "A"})
			_, err := h.m.PrepareAddWindow(a)
			require.NoError(t, err)
			if during == StateLoading {
				h.settle()
			}
			require.Equal(t, during, h.m.State())

			require.NoError(t, h.m.AddWindowTimedOut(a))
			h.settle()
			assert.Equal(t, StateMaximize, h.m.State())
			assert.False(t, h.card(a).Loading)
			assert.False(t, h.card(a).Added)
			assert.Equal(t, a, h.m.MaximizedWindow())
		})
	}
}

func TestRapidAdds_ReenterPreparing(t *testing.T) {
	h := newHarness(t)
	a := h.create(card.Info{Name: "A"})
	b := h.create(card.Info{Name: "B"})
	_, err := h.m.PrepareAddWindow(a)
	require.NoError(t, err)
	_, err = h.m.PrepareAddWindow(b)
	require.NoError(t, err)
	assert.Equal(t, StatePreparing, h.m.State())
	require.NoError(t, h.m.AddWindow(a))
	require.NoError(t, h.m.AddWindow(b))
	h.settle()

	assert.Equal(t, StateMaximize, h.m.State())
	assert.Equal(t, b, h.m.ActiveWindow())
	assert.True(t, h.card(a).Attached)
	assert.Len(t, h.m.Groups(), 2)
}

func TestStaleHostCompletionsAreIgnored(t *testing.T) {
	h := newHarness(t)
	a := h.create(card.Info{Name: "A"})
	_, err := h.m.PrepareAddWindow(a)
	require.NoError(t, err)
	require.NoError(t, h.m.AddWindow(a))
	h.animate()
	require.Equal(t, StateMaximize, h.m.State())

	first := h.host.TakePending()
	require.Len(t, first, 1)

	// Rotating supersedes the outstanding resize with a flip.
	require.NoError(t, h.m.Resize(768, 1024))
	h.animate()
	flips := h.host.TakePending()
	require.Len(t, flips, 1)
	assert.Equal(t, platform.OpFlipAsync, flips[0].Op)

	h.m.AsyncFlipCompleted(a, first[0].Seq)
	assert.False(t, h.m.DirectRenderingWindow().Valid())

	h.m.AsyncFlipCompleted(a, flips[0].Seq)
	assert.Equal(t, a, h.m.DirectRenderingWindow())
	assert.Equal(t, card.Size{Width: 768, Height: 1024}, h.card(a).Size)
}

func TestQueuedFlipCanceled_ResizesSynchronously(t *testing.T) {
	h := newHarness(t)
	a := h.create(card.Info{Name: "A"})
	require.NoError(t, h.m.AddWindow(a))
	h.animate()

	pending := h.host.TakePending()
	require.Len(t, pending, 1)
	h.m.QueuedFlipCanceled(a, pending[0].Seq)

	syncs := h.host.CommandsFor(platform.OpResizeSync)
	require.Len(t, syncs, 1)
	assert.Equal(t, 1024, syncs[0].Width)
	assert.Equal(t, a, h.m.DirectRenderingWindow())
}

func TestMinimize_DisablesDirectRenderingAndResizesBack(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A", Size: card.Size{Width: 800, Height: 600}})
	require.True(t, h.host.DirectRendering(a))

	h.minimize()
	assert.Equal(t, StateMinimize, h.m.State())
	assert.False(t, h.card(a).Maximized)
	assert.False(t, h.card(a).Focused)
	assert.False(t, h.host.DirectRendering(a))
	assert.Equal(t, []card.ID{a}, h.minned)

	resizes := h.host.CommandsFor(platform.OpResizeAsync)
	require.Len(t, resizes, 2)
	assert.Equal(t, 800, resizes[1].Width)
	assert.Equal(t, 600, resizes[1].Height)
}

func TestFocusWindow_FromMinimize(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	h.open(card.Info{Name: "B"})
	h.minimize()

	require.NoError(t, h.m.FocusWindow(a))
	assert.Equal(t, StateFocus, h.m.State())
	h.settle()
	assert.Equal(t, StateMaximize, h.m.State())
	assert.Equal(t, a, h.m.ActiveWindow())
	assert.Equal(t, a, h.host.Focused())
}

func TestTouchToShare(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	h.m.TouchToShare()
	assert.Equal(t, []card.ID{a}, h.shared)

	h.minimize()
	h.m.TouchToShare()
	assert.Len(t, h.shared, 1, "queued until maximized")
	h.settle()
	assert.Equal(t, []card.ID{a, a}, h.shared)
}

func TestPositiveSpaceChange(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	space := platform.Rect{X: 0, Y: 28, Width: 1024, Height: 700}

	h.m.PositiveSpaceAboutToChange(space, false)
	assert.False(t, h.host.DirectRendering(a))
	syncs := h.host.CommandsFor(platform.OpResizeSync)
	require.Len(t, syncs, 1)
	assert.Equal(t, 700, syncs[0].Height)

	h.m.PositiveSpaceChanged(space, false)
	h.settle()
	h.m.PositiveSpaceChangeFinished(space)
	assert.Equal(t, 28+350.0, h.card(a).Transform.Y)
	assert.True(t, h.host.DirectRendering(a))
	assert.Equal(t, space, h.m.PositiveSpace())
}

func TestLauncherVisibility(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})

	h.m.LauncherVisible(true)
	assert.False(t, h.host.DirectRendering(a))
	h.m.LauncherShown(true)
	assert.False(t, h.card(a).Focused)

	h.m.LauncherShown(false)
	h.m.LauncherVisible(false)
	assert.True(t, h.host.DirectRendering(a))
	assert.True(t, h.card(a).Focused)
}

func TestIncomingPhoneCall_MinimizesFullscreenCard(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "video", Fullscreen: true})
	h.m.IncomingPhoneCall()
	h.settle()
	assert.Equal(t, StateMinimize, h.m.State())
	assert.False(t, h.card(a).Maximized)
}

func TestResize_RederivesFanLaw(t *testing.T) {
	h := newHarness(t)
	landscape := h.m.FanLaw()
	require.NoError(t, h.m.Resize(600, 1000))
	portrait := h.m.FanLaw()
	assert.InDelta(t, landscape.Weights[0]*0.6, portrait.Weights[0], 1e-9)
	assert.InDelta(t, landscape.PackStep*0.6, portrait.PackStep, 1e-9)
	assert.Error(t, h.m.Resize(0, 10))
}

func TestReconfigure(t *testing.T) {
	h := newHarness(t)
	h.open(card.Info{Name: "A"})
	h.minimize()

	cfg := config.DefaultConfig()
	cfg.Layout.FanWeights = []float64{0.5}
	require.NoError(t, h.m.Reconfigure(cfg))
	assert.Equal(t, []float64{0.5}, h.m.FanLaw().Weights)
	assert.False(t, h.m.Config().Debug.StrictInvariants)

	bad := config.DefaultConfig()
	bad.Layout.ActiveScale = 3
	assert.Error(t, h.m.Reconfigure(bad))
	assert.Error(t, h.m.Reconfigure(nil))
}

func TestSnapshotAndFindCard(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "Mail"})

	s := h.m.Snapshot()
	assert.Equal(t, "maximize", s.State)
	assert.Equal(t, a.String(), s.ActiveCard)
	require.Len(t, s.Groups, 1)
	assert.True(t, s.Groups[0].Active)
	require.Len(t, s.Cards, 1)
	assert.True(t, s.Cards[0].Maximized)
	assert.Equal(t, "inactive", s.Modal.State)

	id, err := h.m.FindCard("mail")
	require.NoError(t, err)
	assert.Equal(t, a, id)
	id, err = h.m.FindCard(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, id)
}

func TestNilCollaborators(t *testing.T) {
	m := New(Options{})
	a := m.CreateCard(card.Info{Name: "A"})
	require.NoError(t, m.AddWindow(a))
	m.FinishAnimations()
	m.FinishAnimations()
	assert.Equal(t, StateMaximize, m.State())
	assert.Equal(t, a, m.MaximizedWindow())
	// Without a host nothing ever acknowledges the resize.
	assert.False(t, m.DirectRenderingWindow().Valid())
	m.TouchToShare()
	m.IncomingPhoneCall()
}

func TestInvariantViolation(t *testing.T) {
	t.Run("strict panics", func(t *testing.T) {
		h := newHarness(t)
		assert.Panics(t, func() { h.m.transition(StateLoading) })
	})
	t.Run("lenient no-ops", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) { c.Debug.StrictInvariants = false })
		h.open(card.Info{Name: "A"})
		assert.NotPanics(t, func() { h.m.transition(StateReorder) })
		assert.Equal(t, StateMaximize, h.m.State())
	})
}

func TestModalRejectionReasonIsReturned(t *testing.T) {
	h := newHarness(t)
	a := h.open(card.Info{Name: "A"})
	m := h.create(card.Info{Name: "dialog", Kind: card.KindModalChild, LaunchingProcessID: "someone-else"})

	res, err := h.m.PrepareAddWindow(m)
	require.NoError(t, err)
	assert.Equal(t, modal.ParentDifferent, res)
	assert.False(t, h.card(a).IsModalParent)
	assert.False(t, h.card(m).Visible)
}

package cardwm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

type dismissal struct {
	child  card.ID
	reason modal.Reason
}

type harness struct {
	t         *testing.T
	m         *Manager
	host      *platform.RecordingHost
	feedback  []Feedback
	dismissed []dismissal
	shared    []card.ID
	exits     []bool
	enters    []int
	firstRuns int
	maxed     []card.ID
	minned    []card.ID
}

func newHarness(t *testing.T, mutate ...func(*config.Config)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Debug.StrictInvariants = true
	for _, fn := range mutate {
		fn(cfg)
	}
	h := &harness{t: t, host: platform.NewRecordingHost()}
	h.m = New(Options{
		Config: cfg,
		Host:   h.host,
		Logger: zaptest.NewLogger(t),
		Signals: Signals{
			MaximizeActiveWindow: func(id card.ID) { h.maxed = append(h.maxed, id) },
			MinimizeActiveWindow: func(id card.ID) { h.minned = append(h.minned, id) },
			EnterReorder:         func(_ platform.Point, slice int) { h.enters = append(h.enters, slice) },
			ExitReorder:          func(canceled bool) { h.exits = append(h.exits, canceled) },
			FirstCardRun:         func() { h.firstRuns++ },
			Feedback:             func(f Feedback) { h.feedback = append(h.feedback, f) },
			TouchToShare:         func(id card.ID) { h.shared = append(h.shared, id) },
			ModalDismissed: func(child card.ID, reason modal.Reason) {
				h.dismissed = append(h.dismissed, dismissal{child: child, reason: reason})
			},
		},
	})
	return h
}

// settle finishes animations and acknowledges host requests until the
// manager is idle, checking invariants along the way.
func (h *harness) settle() {
	h.t.Helper()
	for i := 0; i < 20; i++ {
		h.m.FinishAnimations()
		pending := h.host.TakePending()
		for _, cmd := range pending {
			h.m.AsyncFlipCompleted(cmd.Card, cmd.Seq)
		}
		require.NoError(h.t, h.m.CheckInvariants())
		if !h.m.Animating() && len(pending) == 0 {
			return
		}
	}
	h.t.Fatal("manager did not settle")
}

// animate finishes animations without acknowledging host requests.
func (h *harness) animate() {
	h.t.Helper()
	for i := 0; i < 20 && h.m.Animating(); i++ {
		h.m.FinishAnimations()
	}
	require.False(h.t, h.m.Animating())
}

func (h *harness) create(info card.Info) card.ID {
	if info.ProcessID == "" {
		info.ProcessID = "pid-" + info.Name
	}
	if info.AppID == "" {
		info.AppID = "app." + info.Name
	}
	return h.m.CreateCard(info)
}

// open creates, prepares and adds a card, then settles.
func (h *harness) open(info card.Info) card.ID {
	h.t.Helper()
	id := h.create(info)
	res, err := h.m.PrepareAddWindow(id)
	require.NoError(h.t, err)
	require.Equal(h.t, modal.NoErr, res)
	require.NoError(h.t, h.m.AddWindow(id))
	h.settle()
	return id
}

func (h *harness) openModal(name string, parent card.ID) card.ID {
	h.t.Helper()
	p := h.m.Card(parent)
	id := h.create(card.Info{Name: name, Kind: card.KindModalChild, LaunchingProcessID: p.ProcessID})
	res, err := h.m.PrepareAddWindow(id)
	require.NoError(h.t, err)
	require.Equal(h.t, modal.NoErr, res)
	require.NoError(h.t, h.m.AddWindow(id))
	h.settle()
	return id
}

func (h *harness) minimize() {
	h.t.Helper()
	h.m.MinimizeActiveWindow()
	h.settle()
}

func (h *harness) card(id card.ID) *card.Card {
	h.t.Helper()
	c := h.m.Card(id)
	require.NotNil(h.t, c, "card %s", id)
	return c
}

func (h *harness) center(id card.ID) platform.Point {
	c := h.card(id)
	return platform.Point{X: c.Transform.X, Y: c.Transform.Y}
}

func (h *harness) reasons() []modal.Reason {
	out := make([]modal.Reason, 0, len(h.dismissed))
	for _, d := range h.dismissed {
		out = append(out, d.reason)
	}
	return out
}

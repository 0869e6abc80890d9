// Package cardwm is the card lifecycle orchestrator of the shell. It owns the
// card groups and the active selection, drives the six-state machine, and
// sequences animations and window-host round-trips for every transition.
//
// A Manager is single-threaded: every method must be called from the same
// goroutine (the daemon event loop).
package cardwm

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/anim"
	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

var (
	// ErrUnknownCard is returned for ids that never existed or were destroyed.
	ErrUnknownCard = errors.New("unknown card")
	// ErrCardRemoved is returned for cards that are being removed.
	ErrCardRemoved = errors.New("card is being removed")
	// ErrNotGroupable is returned when a modal card is used where a grouped card is required.
	ErrNotGroupable = errors.New("card is not a grouped card")
)

// Options configures a Manager.
type Options struct {
	Config *config.Config
	// Host realizes geometry. Nil means no host; every request is dropped.
	Host     platform.WindowHost
	Logger   *zap.Logger
	Signals  Signals
	Animator anim.Animator
}

// Manager is the card window manager facade.
type Manager struct {
	cfg    *config.Config
	log    *zap.Logger
	host   platform.WindowHost
	sig    Signals
	strict bool

	store       *card.Store
	groups      []card.GroupID
	activeGroup card.GroupID
	notified    card.ID
	law         card.FanLaw

	screen        platform.Rect
	positiveSpace platform.Rect
	psFullscreen  bool
	landscape     bool

	anims *anim.Orchestrator
	modal *modal.Controller

	state    StateID
	handlers map[StateID]handler

	// Cards awaiting host focus once animations finish.
	pendingFocus map[card.ID]bool
	// Cards awaiting a touch-to-share delivery once maximized.
	pendingShare map[card.ID]bool

	nextSeq       uint64
	latestSeq     map[card.ID]uint64
	pendingResize map[card.ID]uint64
	hostSize      map[card.ID][2]int
	directCard    card.ID

	// Modals that failed their add check, kept until destroyed.
	rejected map[card.ID]modal.AddResult

	maximized     card.ID
	restoreTarget card.ID
	preparing     card.ID
	loading       card.ID
	focusTarget   card.ID
	dragged       card.ID
	firstCardRun  bool
	inModeAnim    bool
	launcher      bool
	launcherShown bool
	reorderAnchor float64

	lock    MoveLock
	zone    ReorderZone
	press   pressState
	stripDx float64
}

// New creates a manager in the Minimize state.
func New(opts Options) *Manager {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	host := opts.Host
	if host == nil {
		host = nopHost{}
	}

	m := &Manager{
		cfg:           cfg,
		log:           logger,
		host:          host,
		sig:           opts.Signals,
		strict:        cfg.Debug.StrictInvariants,
		store:         card.NewStore(),
		modal:         modal.NewController(),
		state:         StateMinimize,
		handlers:      newHandlers(),
		pendingFocus:  make(map[card.ID]bool),
		pendingShare:  make(map[card.ID]bool),
		latestSeq:     make(map[card.ID]uint64),
		pendingResize: make(map[card.ID]uint64),
		hostSize:      make(map[card.ID][2]int),
		rejected:      make(map[card.ID]modal.AddResult),
	}
	m.anims = anim.New(m.animationsFinished, opts.Animator)
	m.applyScreen(cfg.Screen.Width, cfg.Screen.Height)
	return m
}

// invariant reports whether cond holds. A violation panics in strict mode and
// is logged otherwise; callers no-op when it returns false.
func (m *Manager) invariant(cond bool, msg string, fields ...zap.Field) bool {
	if cond {
		return true
	}
	if m.strict {
		panic(fmt.Sprintf("cardwm invariant violated: %s", msg))
	}
	m.log.Error("invariant violated: "+msg, fields...)
	return false
}

func (m *Manager) dur(ms int) time.Duration {
	return config.Ms(ms)
}

// card resolves a live card, wrapping ErrUnknownCard.
func (m *Manager) card(id card.ID) (*card.Card, error) {
	c := m.store.Card(id)
	if c == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownCard)
	}
	return c, nil
}

func (m *Manager) group(id card.GroupID) *card.Group {
	return m.store.Group(id)
}

// CreateCard registers a new card with the manager. It is not shown until
// PrepareAddWindow is called.
func (m *Manager) CreateCard(info card.Info) card.ID {
	if info.Size.Width <= 0 || info.Size.Height <= 0 {
		info.Size = card.Size{Width: float64(m.screen.Width), Height: float64(m.screen.Height)}
	}
	c := m.store.NewCard(info)
	m.log.Debug("card created", zap.Stringer("card", c.ID), zap.String("name", c.Label()),
		zap.Stringer("kind", c.Kind))
	return c.ID
}

// Card returns the live card for id, or nil.
func (m *Manager) Card(id card.ID) *card.Card {
	return m.store.Card(id)
}

// State returns the current state.
func (m *Manager) State() StateID { return m.state }

// ActiveGroup returns the active group, or the zero ID when there are no groups.
func (m *Manager) ActiveGroup() card.GroupID {
	if m.group(m.activeGroup) == nil {
		return card.GroupID{}
	}
	return m.activeGroup
}

// ActiveWindow returns the active card of the active group.
func (m *Manager) ActiveWindow() card.ID {
	g := m.group(m.activeGroup)
	if g == nil {
		return card.ID{}
	}
	return g.Active()
}

// Group returns a live group, or nil.
func (m *Manager) Group(id card.GroupID) *card.Group {
	return m.group(id)
}

// Groups returns the groups left to right.
func (m *Manager) Groups() []card.GroupID {
	out := make([]card.GroupID, len(m.groups))
	copy(out, m.groups)
	return out
}

// IsLastWindowAddedModal reports whether the most recent add was a modal.
func (m *Manager) IsLastWindowAddedModal() bool { return m.modal.LastAddWasModal() }

// ModalParent returns the parent of the current modal, or the zero ID.
func (m *Manager) ModalParent() card.ID { return m.modal.Parent() }

// ModalState returns the modal bookkeeping state.
func (m *Manager) ModalState() modal.State { return m.modal.State() }

// MaximizedWindow returns the maximized card, or the zero ID.
func (m *Manager) MaximizedWindow() card.ID {
	if m.store.Card(m.maximized) == nil {
		return card.ID{}
	}
	return m.maximized
}

// RestoreTarget returns the card to re-maximize when the maximized card that
// was launched from it goes away.
func (m *Manager) RestoreTarget() card.ID {
	if m.store.Card(m.restoreTarget) == nil {
		return card.ID{}
	}
	return m.restoreTarget
}

// PendingAdds returns the cards that were prepared but not yet added.
func (m *Manager) PendingAdds() []card.ID {
	var out []card.ID
	for _, c := range m.store.Cards() {
		if c.PreparePending && !c.Added && !c.Removed {
			out = append(out, c.ID)
		}
	}
	return out
}

// DirectRenderingWindow returns the card with direct rendering enabled.
func (m *Manager) DirectRenderingWindow() card.ID { return m.directCard }

// Animating reports whether any animation is in flight.
func (m *Manager) Animating() bool { return m.anims.Busy() }

// Advance moves running animations forward by dt.
func (m *Manager) Advance(dt time.Duration) {
	m.anims.Advance(dt)
}

// FinishAnimations completes every running animation immediately.
func (m *Manager) FinishAnimations() {
	m.anims.FinishAll()
}

func (m *Manager) animationsFinished() {
	m.current().animationsFinished(m)
}

// Reconfigure applies a new configuration. Layout constants and the fan law
// are re-derived and the strip is laid out again without animation.
func (m *Manager) Reconfigure(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reconfigure: %w", err)
	}
	m.cfg = cfg
	m.strict = cfg.Debug.StrictInvariants
	m.law = deriveFanLaw(cfg.Layout, m.screen.Width, m.screen.Height)
	m.relayout(false, 0)
	m.log.Info("configuration applied")
	return nil
}

// Config returns the active configuration.
func (m *Manager) Config() *config.Config { return m.cfg }

// SetInModeAnimation gates pointer and gesture input while a system-wide
// mode animation runs.
func (m *Manager) SetInModeAnimation(on bool) {
	m.inModeAnim = on
	if on {
		m.resetGesture()
	}
}

// InModeAnimation reports whether input is gated.
func (m *Manager) InModeAnimation() bool { return m.inModeAnim }

type nopHost struct{}

func (nopHost) ResizeEventSync(card.ID, int, int) error { return nil }
func (nopHost) ResizeEventAsync(card.ID, int, int, uint64) error { return nil }
func (nopHost) FlipEventSync(card.ID, int, int) error { return nil }
func (nopHost) FlipEventAsync(card.ID, int, int, uint64) error { return nil }
func (nopHost) Focus(card.ID, bool) error { return nil }
func (nopHost) Close(card.ID) error { return nil }
func (nopHost) SetDirectRendering(card.ID, bool) error { return nil }

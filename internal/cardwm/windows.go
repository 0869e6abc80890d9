package cardwm

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/anim"
	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/modal"
)

// PrepareAddWindow starts showing a card. Normal cards join the active group
// when the active card launched them, otherwise they get a new group right of
// the active one. Modal cards are checked for eligibility first; a rejection
// is returned as the reason code and leaves every other card untouched.
func (m *Manager) PrepareAddWindow(id card.ID) (modal.AddResult, error) {
	c, err := m.card(id)
	if err != nil {
		return modal.NoErr, err
	}
	if c.Removed {
		return modal.NoErr, fmt.Errorf("%s: %w", id, ErrCardRemoved)
	}
	if c.PreparePending || c.Added {
		return modal.NoErr, nil
	}
	if res, ok := m.rejected[id]; ok {
		return res, nil
	}

	if c.Kind == card.KindModalChild {
		return m.prepareModal(c), nil
	}
	if m.state == StateReorder {
		m.exitReorder(true)
	}

	c.Shadow = true
	c.PreparePending = true
	c.Visible = true
	m.modal.NoteNormalAdd()
	m.placeNewCard(c)
	m.emitFeedback(FeedbackOpen)
	m.log.Info("preparing card", zap.Stringer("card", c.ID), zap.String("name", c.Label()),
		zap.Stringer("group", c.Group))

	m.current().prepareAdd(m, c)
	return modal.NoErr, nil
}

// placeNewCard puts c into the active group when the active card launched
// it, or into a new group right of the active group.
func (m *Manager) placeNewCard(c *card.Card) {
	active := m.store.Card(m.ActiveWindow())
	if active != nil && c.LaunchedBy(active) {
		g := m.group(active.Group)
		if m.invariant(g != nil, "active card has no group", zap.Stringer("card", active.ID)) {
			if active.Maximized {
				m.restoreTarget = active.ID
			}
			g.AddToGroup(c.ID)
			c.Group = g.ID
			m.setActiveCard(c.ID)
			return
		}
	}

	g := m.newGroupBeside(m.activeGroup, card.DirRight)
	g.AddToBack(c.ID, true)
	c.Group = g.ID
	m.setActiveCard(c.ID)
}

// AddWindow records the host acknowledgement of a card. A card that was
// never prepared is prepared first. A modal that failed its add check is
// left hidden.
func (m *Manager) AddWindow(id card.ID) error {
	c, err := m.card(id)
	if err != nil {
		return err
	}
	if c.Removed {
		return fmt.Errorf("%s: %w", id, ErrCardRemoved)
	}
	if c.Added {
		return nil
	}
	if _, ok := m.rejected[id]; ok {
		return nil
	}
	if !c.PreparePending {
		result, err := m.PrepareAddWindow(id)
		if err != nil {
			return err
		}
		if result != modal.NoErr {
			return nil
		}
	}

	c.Added = true
	c.PreparePending = false
	c.Loading = false
	m.log.Info("card added", zap.Stringer("card", c.ID), zap.String("name", c.Label()))

	if c.Kind == card.KindModalChild {
		m.acceptModal(c)
		return nil
	}

	if !m.firstCardRun {
		m.firstCardRun = true
		if m.sig.FirstCardRun != nil {
			m.sig.FirstCardRun()
		}
	}
	m.current().windowAdded(m, c)
	return nil
}

// RemoveWindow animates a card away. The card is destroyed once the exit
// animation finished and WindowSafeToDelete arrived.
func (m *Manager) RemoveWindow(id card.ID) error {
	c, err := m.card(id)
	if err != nil {
		return err
	}
	if c.Removed {
		return nil
	}

	if c.Kind == card.KindModalChild {
		linked := m.modal.Child() == c.ID && m.modal.Active()
		// The exit animation replaces the dismissal shrink.
		m.markRemoved(c)
		if linked {
			m.dismissModal(modal.DismissedExternally)
		}
		return nil
	}

	if c.IsModalParent {
		m.dismissModal(modal.ParentDismissed)
	}
	if m.state == StateReorder && m.dragged == c.ID {
		m.exitReorder(true)
	}

	m.log.Info("removing card", zap.Stringer("card", c.ID), zap.String("name", c.Label()))
	m.emitFeedback(FeedbackClose)
	m.detachFromGroup(c)
	m.markRemoved(c)
	m.current().windowRemoved(m, c)
	return nil
}

// markRemoved flags c for destruction and starts its exit animation.
func (m *Manager) markRemoved(c *card.Card) {
	c.Removed = true
	c.PreparePending = false
	c.Focused = false
	delete(m.pendingFocus, c.ID)
	delete(m.pendingShare, c.ID)
	delete(m.pendingResize, c.ID)
	if m.directCard == c.ID {
		m.disableDirectRendering()
	}
	if m.preparing == c.ID {
		m.preparing = card.ID{}
	}
	if m.restoreTarget == c.ID {
		m.restoreTarget = card.ID{}
	}

	id := c.ID
	target := c.Transform
	target.Y = -float64(m.screen.Height)
	m.anims.Start(anim.DeletedKey(id), anim.Animation{
		Duration: m.dur(m.cfg.Animation.CardExitMS),
		Apply: func() {
			if c := m.store.Card(id); c != nil {
				c.Transform = target
			}
		},
		Done: func(bool) { m.exitAnimationDone(id) },
	})
	// Started first so a dismissal finishing on cancel still sees the set busy.
	m.anims.Cancel(anim.CardKey(id))
}

func (m *Manager) exitAnimationDone(id card.ID) {
	c := m.store.Card(id)
	if c == nil {
		return
	}
	if !c.Removed {
		// Hidden rather than destroyed; the host may still show it again.
		c.Visible = false
		return
	}
	m.reap(c)
}

// WindowSafeToDelete records the host acknowledgement that a removed card's
// resources may be released.
func (m *Manager) WindowSafeToDelete(id card.ID) error {
	c, err := m.card(id)
	if err != nil {
		return err
	}
	c.SafeToDelete = true
	m.reap(c)
	return nil
}

// reap frees c once it is removed, acknowledged and no longer animating.
func (m *Manager) reap(c *card.Card) {
	if !c.Removed || !c.SafeToDelete || m.anims.Running(anim.DeletedKey(c.ID)) {
		return
	}
	id := c.ID
	delete(m.latestSeq, id)
	delete(m.hostSize, id)
	delete(m.rejected, id)
	m.store.FreeCard(id)
	m.log.Debug("card destroyed", zap.Stringer("card", id))
}

// detachFromGroup removes c from its group, destroying the group when it
// becomes empty and reselecting the active card or group as needed.
func (m *Manager) detachFromGroup(c *card.Card) {
	g := m.group(c.Group)
	c.Group = card.GroupID{}
	c.Attached = true
	if g == nil {
		return
	}
	wasActive := g.ID == m.activeGroup && g.Active() == c.ID
	g.Remove(c.ID)

	if g.Empty() {
		m.destroyGroup(g)
		return
	}
	if wasActive {
		m.setActiveCard(g.Active())
	}
}

// destroyGroup frees an empty group. When it was active the group whose
// center is closest to the screen center becomes active.
func (m *Manager) destroyGroup(g *card.Group) {
	if !m.invariant(g.Empty(), "destroying a non-empty group", zap.Stringer("group", g.ID)) {
		return
	}
	idx := m.groupIndex(g.ID)
	if idx >= 0 {
		m.groups = append(m.groups[:idx], m.groups[idx+1:]...)
	}
	wasActive := m.activeGroup == g.ID
	m.store.FreeGroup(g.ID)
	if !wasActive {
		return
	}

	m.activeGroup = card.GroupID{}
	center := m.stripCenterX()
	var best *card.Group
	bestDist := math.Inf(1)
	for _, gid := range m.groups {
		cand := m.group(gid)
		if d := math.Abs(cand.X - center); d < bestDist {
			best, bestDist = cand, d
		}
	}
	if best == nil {
		m.notified = card.ID{}
		m.emitActiveChanged(card.ID{}, card.GroupID{})
		return
	}
	m.setActiveCard(best.Active())
}

// newGroupBeside creates an empty group next to ref, or the first group.
func (m *Manager) newGroupBeside(ref card.GroupID, side card.Direction) *card.Group {
	g := m.store.NewGroup()
	idx := m.groupIndex(ref)
	switch {
	case idx < 0:
		m.groups = append(m.groups, g.ID)
	case side == card.DirLeft:
		m.groups = append(m.groups[:idx], append([]card.GroupID{g.ID}, m.groups[idx:]...)...)
	default:
		m.groups = append(m.groups[:idx+1], append([]card.GroupID{g.ID}, m.groups[idx+1:]...)...)
	}
	if r := m.group(ref); r != nil {
		g.X, g.Y = r.X, r.Y
	}
	return g
}

func (m *Manager) groupIndex(id card.GroupID) int {
	for i, gid := range m.groups {
		if gid == id {
			return i
		}
	}
	return -1
}

// neighbour returns the group next to g in dir, or nil.
func (m *Manager) neighbour(g card.GroupID, dir card.Direction) *card.Group {
	idx := m.groupIndex(g)
	if idx < 0 {
		return nil
	}
	if dir == card.DirLeft {
		idx--
	} else {
		idx++
	}
	if idx < 0 || idx >= len(m.groups) {
		return nil
	}
	return m.group(m.groups[idx])
}

// setActiveCard makes id the active card of its group and that group the
// active group. Moving away from a modal parent dismisses its modal.
func (m *Manager) setActiveCard(id card.ID) {
	c := m.store.Card(id)
	if !m.invariant(c != nil && c.Kind == card.KindNormal, "activating a missing or modal card",
		zap.Stringer("card", id)) {
		return
	}
	g := m.group(c.Group)
	if !m.invariant(g != nil && g.Contains(id), "card claims membership of a missing group",
		zap.Stringer("card", id), zap.Stringer("group", c.Group)) {
		return
	}
	if m.modal.Active() && id != m.modal.Parent() {
		m.dismissModal(modal.ActiveCardsSwitched)
	}
	if g.Active() != id {
		g.SetActive(id)
	}
	m.activeGroup = g.ID
	if m.notified != id {
		m.notified = id
		m.emitActiveChanged(id, g.ID)
	}
}

// FocusWindow brings a card forward. Focusing anything but the modal parent
// dismisses an active modal first.
func (m *Manager) FocusWindow(id card.ID) error {
	c, err := m.card(id)
	if err != nil {
		return err
	}
	if c.Removed {
		return fmt.Errorf("%s: %w", id, ErrCardRemoved)
	}
	if c.Kind == card.KindModalChild {
		if m.modal.Child() == c.ID && m.modal.Active() {
			m.giveFocus(c)
			return nil
		}
		return fmt.Errorf("%s: %w", id, ErrNotGroupable)
	}
	if !c.Group.Valid() {
		return fmt.Errorf("%s: card is not prepared: %w", id, ErrNotGroupable)
	}
	if m.modal.Active() && c.ID != m.modal.Parent() {
		m.dismissModal(modal.ActiveCardsSwitched)
	}
	m.current().focusRequest(m, c)
	return nil
}

// MaximizeActiveWindow maximizes the active card.
func (m *Manager) MaximizeActiveWindow() {
	if !m.ActiveWindow().Valid() {
		return
	}
	m.current().maximizeRequest(m)
}

// MinimizeActiveWindow returns to the card strip. An active modal is
// dismissed internally first.
func (m *Manager) MinimizeActiveWindow() {
	if m.modal.Active() {
		m.dismissModal(modal.DismissedInternally)
	}
	m.current().minimizeRequest(m)
}

// TouchToShare delivers a touch-to-share event to the active card, first
// maximizing it when necessary.
func (m *Manager) TouchToShare() {
	id := m.ActiveWindow()
	if !id.Valid() {
		return
	}
	if m.state == StateMaximize && m.maximized == id && !m.anims.Busy() {
		m.deliverShare(id)
		return
	}
	m.pendingShare[id] = true
	if m.state == StateMinimize {
		m.current().maximizeRequest(m)
	}
}

func (m *Manager) deliverShare(id card.ID) {
	delete(m.pendingShare, id)
	m.log.Debug("touch to share", zap.Stringer("card", id))
	if m.sig.TouchToShare != nil {
		m.sig.TouchToShare(id)
	}
}

// queueFocus defers host focus of id until animations finish.
func (m *Manager) queueFocus(id card.ID) {
	m.pendingFocus[id] = true
}

// flushFocus gives host focus to queued cards that are still maximized.
func (m *Manager) flushFocus() {
	for id := range m.pendingFocus {
		delete(m.pendingFocus, id)
		c := m.store.Card(id)
		if c == nil || c.Removed || id != m.maximized {
			continue
		}
		if child := m.store.Card(c.ModalChild); child != nil && m.modal.Active() {
			m.giveFocus(child)
			continue
		}
		m.giveFocus(c)
	}
}

func (m *Manager) giveFocus(c *card.Card) {
	if c.Focused {
		return
	}
	c.Focused = true
	if err := m.host.Focus(c.ID, true); err != nil {
		m.log.Warn("host focus failed", zap.Stringer("card", c.ID), zap.Error(err))
	}
	m.emitFocus(c.ID)
}

func (m *Manager) takeFocus(c *card.Card) {
	if !c.Focused {
		return
	}
	c.Focused = false
	if err := m.host.Focus(c.ID, false); err != nil {
		m.log.Warn("host unfocus failed", zap.Stringer("card", c.ID), zap.Error(err))
	}
}

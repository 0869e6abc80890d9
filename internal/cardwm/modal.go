package cardwm

import (
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/anim"
	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/modal"
)

// prepareModal checks whether c may be shown over the active card and, if
// so, links it and starts its entry animation.
func (m *Manager) prepareModal(c *card.Card) modal.AddResult {
	active := m.store.Card(m.ActiveWindow())
	if active != nil && m.maximized != active.ID {
		active = nil
	}
	result := m.modal.CheckAdd(c, active)
	if result != modal.NoErr {
		m.rejectModal(c, result)
		return result
	}
	if m.state == StateReorder {
		m.exitReorder(true)
	}
	if m.modal.InProgress() {
		// Settle the running dismissal before linking a new modal.
		m.anims.Cancel(anim.CardKey(m.modal.Child()))
	}
	if m.modal.Active() {
		m.dismissModal(modal.ParentDismissed)
	}

	c.Shadow = true
	c.PreparePending = true
	c.Visible = true
	m.modal.Link(c, active)
	m.disableDirectRendering()
	m.log.Info("modal launching", zap.Stringer("card", c.ID), zap.Stringer("parent", active.ID))

	id, parent := c.ID, active.ID
	c.Transform.Scale = 0
	m.anims.Start(anim.CardKey(id), anim.Animation{
		Duration: m.dur(m.cfg.Animation.ModalMS),
		Apply: func() {
			child, p := m.store.Card(id), m.store.Card(parent)
			if child != nil && p != nil {
				modal.Place(child, p)
			}
		},
	})
	return modal.NoErr
}

// rejectModal hides a modal that failed the add check. The card is kept so
// the owning application can still remove it.
func (m *Manager) rejectModal(c *card.Card, result modal.AddResult) {
	m.log.Info("modal add rejected", zap.Stringer("card", c.ID), zap.String("name", c.Label()),
		zap.Stringer("result", result))
	c.Visible = false
	m.rejected[c.ID] = result
	m.emitFeedback(FeedbackAngryCard)
	if m.sig.ModalDismissed != nil {
		m.sig.ModalDismissed(c.ID, modal.AddInitCheckFailed)
	}
}

// acceptModal handles the host acknowledgement of a linked modal. If its
// parent is no longer the maximized card the modal is dismissed instead.
func (m *Manager) acceptModal(c *card.Card) {
	if m.modal.Child() != c.ID || !m.modal.Active() {
		m.log.Debug("modal added after its dismissal", zap.Stringer("card", c.ID))
		c.Visible = false
		return
	}
	parent := m.store.Card(m.modal.Parent())
	if parent == nil || parent.Removed || m.maximized != parent.ID {
		m.dismissModal(modal.AddInitCheckFailed)
		return
	}
	m.modal.Accept(parent)
	m.takeFocus(parent)
	m.giveFocus(c)
}

// dismissModal runs the dismissal pipeline for reason. It returns false when
// another dismissal is already being processed.
func (m *Manager) dismissModal(reason modal.Reason) bool {
	d, ok := m.modal.Begin(reason)
	if !ok {
		m.log.Debug("modal dismissal ignored, another is in progress",
			zap.Stringer("reason", reason), zap.Stringer("pending", m.modal.Pending().Reason))
		return false
	}
	child := m.store.Card(m.modal.Child())
	parent := m.store.Card(m.modal.Parent())
	m.log.Info("dismissing modal", zap.Stringer("reason", reason), zap.Stringer("child", m.modal.Child()),
		zap.Stringer("parent", m.modal.Parent()))

	modal.Unlink(parent, child)
	if child != nil {
		m.takeFocus(child)
		if reason != modal.DismissedExternally && !child.Removed {
			if err := m.host.Close(child.ID); err != nil {
				m.log.Warn("closing modal failed", zap.Stringer("card", child.ID), zap.Error(err))
			}
		}
	}
	if m.sig.ModalDismissed != nil && child != nil {
		m.sig.ModalDismissed(child.ID, reason)
	}

	childID := card.ID{}
	if child != nil {
		childID = child.ID
	}
	parentID := card.ID{}
	if parent != nil {
		parentID = parent.ID
	}
	activeAtBegin := m.ActiveWindow()
	finish := func() {
		if c := m.store.Card(childID); c != nil && !c.Removed {
			c.Visible = false
		}
		m.restoreModalParent(d, parentID, activeAtBegin)
		m.modal.End()
		m.maybeEnableDirectRendering()
	}

	if d.Reset == modal.ResetForce {
		m.anims.Cancel(anim.CardKey(childID))
		finish()
		return true
	}
	if !d.Animate || child == nil {
		finish()
		return true
	}
	shrink := child.Transform
	shrink.Scale = 0
	m.anims.Start(anim.CardKey(childID), anim.Animation{
		Duration: m.dur(m.cfg.Animation.ModalMS),
		Apply: func() {
			if c := m.store.Card(childID); c != nil {
				c.Transform = shrink
			}
		},
		Done: func(bool) { finish() },
	})
	return true
}

// restoreModalParent applies the dismissal's restore policy. A card the
// user selected while the modal was closing is not overridden.
func (m *Manager) restoreModalParent(d modal.Dismissal, parentID, activeAtBegin card.ID) {
	parent := m.store.Card(parentID)
	if parent == nil || parent.Removed || !parent.Group.Valid() {
		return
	}
	if m.ActiveWindow() != activeAtBegin {
		return
	}
	switch d.Restore {
	case modal.RestoreNone:
		return
	case modal.RestoreActive:
		m.setActiveCard(parent.ID)
	}
	if m.state == StateMaximize && m.maximized == parent.ID {
		m.giveFocus(parent)
	}
}

// DismissModalDialog dismisses the current modal on behalf of the system UI.
func (m *Manager) DismissModalDialog() bool {
	if !m.modal.Active() {
		return false
	}
	return m.dismissModal(modal.DismissedInternally)
}

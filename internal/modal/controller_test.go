package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/cardwm/internal/card"
)

func TestController_CheckAddOrder(t *testing.T) {
	s := card.NewStore()
	parent := s.NewCard(card.Info{ProcessID: "100", AppID: "com.example.mail"})
	child := s.NewCard(card.Info{Kind: card.KindModalChild, LaunchingProcessID: "100"})
	stranger := s.NewCard(card.Info{Kind: card.KindModalChild, LaunchingProcessID: "999", LaunchingAppID: "com.other"})

	c := NewController()

	assert.Equal(t, NoMaximizedCard, c.CheckAdd(child, nil))
	assert.Equal(t, NoMaximizedCard, c.CheckAdd(child, parent))
	// Both checks fail: the maximized check comes first.
	assert.Equal(t, NoMaximizedCard, c.CheckAdd(stranger, parent))

	parent.Maximized = true
	assert.Equal(t, ParentDifferent, c.CheckAdd(stranger, parent))
	assert.Equal(t, NoErr, c.CheckAdd(child, parent))

	assert.Equal(t, StateInactive, c.State())
	assert.False(t, parent.IsModalParent)
}

func TestController_LinkAndAccept(t *testing.T) {
	s := card.NewStore()
	parent := s.NewCard(card.Info{ProcessID: "100"})
	parent.Transform = card.Transform{X: 40, Y: 12, Scale: 1}
	child := s.NewCard(card.Info{Kind: card.KindModalChild, LaunchingProcessID: "100"})

	c := NewController()
	c.Link(child, parent)

	assert.Equal(t, parent.ID, child.ModalParent)
	assert.Equal(t, child.ID, parent.ModalChild)
	assert.True(t, parent.IsModalParent)
	assert.Equal(t, card.ModalLaunchedNotAccepting, parent.ModalAccept)
	assert.Equal(t, 40.0, child.Transform.X)
	assert.False(t, child.Attached)
	assert.True(t, c.Active())
	assert.True(t, c.LastAddWasModal())

	c.Accept(parent)
	assert.Equal(t, card.ModalLaunchedAccepting, parent.ModalAccept)
	assert.Equal(t, StateActive, c.State())
}

func TestController_DismissGuardFirstTriggerWins(t *testing.T) {
	c := NewController()

	d, ok := c.Begin(ActiveCardsSwitched)
	require.True(t, ok)
	assert.Equal(t, ActiveCardsSwitched, d.Reason)
	assert.True(t, c.InProgress())

	_, ok = c.Begin(DismissedExternally)
	assert.False(t, ok)
	assert.Equal(t, ActiveCardsSwitched, c.Pending().Reason)

	c.End()
	assert.False(t, c.InProgress())
	_, ok = c.Begin(DismissedExternally)
	assert.True(t, ok)
}

func TestDismissalFor_Policies(t *testing.T) {
	tests := []struct {
		reason  Reason
		animate bool
		restore Restore
		reset   Reset
	}{
		{DismissedInternally, true, RestoreActive, ResetClear},
		{DismissedExternally, false, RestoreMaximized, ResetClear},
		{ParentDismissed, false, RestoreNone, ResetForce},
		{ActiveCardsSwitched, true, RestoreNone, ResetClear},
		{AddInitCheckFailed, false, RestoreNone, ResetForce},
	}
	for _, tt := range tests {
		t.Run(tt.reason.String(), func(t *testing.T) {
			d := DismissalFor(tt.reason)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.animate, d.Animate)
			assert.Equal(t, tt.restore, d.Restore)
			assert.Equal(t, tt.reset, d.Reset)
		})
	}
}

func TestUnlink(t *testing.T) {
	parent := &card.Card{IsModalParent: true, ModalAccept: card.ModalLaunchedAccepting}
	child := &card.Card{}
	child.ModalParent = card.NewStore().NewCard(card.Info{}).ID
	parent.ModalChild = child.ModalParent

	Unlink(parent, child)
	assert.False(t, parent.IsModalParent)
	assert.False(t, parent.ModalChild.Valid())
	assert.Equal(t, card.ModalNone, parent.ModalAccept)
	assert.False(t, child.ModalParent.Valid())

	Unlink(nil, nil)
}

package card

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_FreedHandlesStopResolving(t *testing.T) {
	s := NewStore()
	a := s.NewCard(Info{Name: "a"})
	id := a.ID

	require.Same(t, a, s.Card(id))
	require.True(t, s.FreeCard(id))
	assert.Nil(t, s.Card(id))
	assert.False(t, s.FreeCard(id))

	// The slot is reused but the stale handle must not see the new card.
	b := s.NewCard(Info{Name: "b"})
	assert.NotEqual(t, id, b.ID)
	assert.Nil(t, s.Card(id))
	assert.Same(t, b, s.Card(b.ID))
}

func TestStore_ZeroIDsNeverResolve(t *testing.T) {
	s := NewStore()
	s.NewCard(Info{})
	s.NewGroup()

	assert.Nil(t, s.Card(ID{}))
	assert.Nil(t, s.Group(GroupID{}))
}

func TestStore_GroupLifecycle(t *testing.T) {
	s := NewStore()
	g := s.NewGroup()
	require.Same(t, g, s.Group(g.ID))
	require.True(t, s.FreeGroup(g.ID))
	assert.Nil(t, s.Group(g.ID))
	assert.Len(t, s.Cards(), 0)
}

func TestCard_LaunchedBy(t *testing.T) {
	parent := &Card{ProcessID: "1001", AppID: "com.example.mail"}

	tests := []struct {
		name  string
		child Card
		want  bool
	}{
		{"process match", Card{LaunchingProcessID: "1001"}, true},
		{"app match", Card{LaunchingAppID: "com.example.mail"}, true},
		{"mismatch", Card{LaunchingProcessID: "7", LaunchingAppID: "com.other"}, false},
		{"no launcher", Card{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.child.LaunchedBy(parent))
		})
	}
	assert.False(t, (&Card{LaunchingAppID: "x"}).LaunchedBy(nil))
}

func TestParseID(t *testing.T) {
	s := NewStore()
	c := s.NewCard(Info{Name: "mail"})

	for _, text := range []string{c.ID.String(), strings.TrimSuffix(strings.TrimPrefix(c.ID.String(), "card("), ")")} {
		id, err := ParseID(text)
		require.NoError(t, err, text)
		assert.Equal(t, c.ID, id)
	}

	for _, bad := range []string{"", "card()", "3", "x.1", "3.0", "card(1.y)"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

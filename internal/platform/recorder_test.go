package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/cardwm/internal/card"
)

func TestRecordingHost(t *testing.T) {
	s := card.NewStore()
	a := s.NewCard(card.Info{Name: "a"}).ID
	b := s.NewCard(card.Info{Name: "b"}).ID

	h := NewRecordingHost()
	require.NoError(t, h.ResizeEventAsync(a, 800, 600, 1))
	require.NoError(t, h.FlipEventSync(b, 600, 800))
	require.NoError(t, h.Focus(a, true))
	require.NoError(t, h.SetDirectRendering(a, true))
	require.NoError(t, h.FlipEventAsync(b, 800, 600, 2))
	require.NoError(t, h.Close(b))

	assert.Len(t, h.Commands(), 6)
	assert.Equal(t, a, h.Focused())
	assert.True(t, h.DirectRendering(a))
	assert.False(t, h.DirectRendering(b))

	pending := h.TakePending()
	require.Len(t, pending, 2)
	assert.Equal(t, OpResizeAsync, pending[0].Op)
	assert.Equal(t, uint64(2), pending[1].Seq)
	assert.Empty(t, h.TakePending())

	require.NoError(t, h.Focus(b, false))
	assert.Equal(t, a, h.Focused(), "unfocusing another card keeps focus")
	require.NoError(t, h.Focus(a, false))
	assert.False(t, h.Focused().Valid())

	assert.Len(t, h.CommandsFor(OpFocus), 3)
	h.Reset()
	assert.Empty(t, h.Commands())
}

func TestCommand_String(t *testing.T) {
	s := card.NewStore()
	id := s.NewCard(card.Info{}).ID

	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Op: OpResizeAsync, Card: id, Width: 10, Height: 20, Seq: 3}, "resize-async " + id.String() + " 10x20 seq=3"},
		{Command{Op: OpFlipSync, Card: id, Width: 10, Height: 20}, "flip-sync " + id.String() + " 10x20"},
		{Command{Op: OpDirectRendering, Card: id, Flag: true}, "direct-rendering " + id.String() + " true"},
		{Command{Op: OpClose, Card: id}, "close " + id.String()},
	}
	for _, tt := range tests {
		t.Run(string(tt.cmd.Op), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 50}
	assert.False(t, r.Empty())
	assert.True(t, r.Contains(10, 10))
	assert.False(t, r.Contains(110, 20))
	assert.True(t, Rect{Width: 5}.Empty())
}

package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/stretchr/testify/assert"
)

func TestClientSetUpdate(t *testing.T) {
	s := newClientSet()

	added, removed := s.update([]xproto.Window{30, 10, 20})
	assert.Equal(t, []xproto.Window{10, 20, 30}, added)
	assert.Empty(t, removed)

	added, removed = s.update([]xproto.Window{20, 40, 30})
	assert.Equal(t, []xproto.Window{40}, added)
	assert.Equal(t, []xproto.Window{10}, removed)

	added, removed = s.update(nil)
	assert.Empty(t, added)
	assert.Equal(t, []xproto.Window{20, 30, 40}, removed)
}

func TestStrutsAdd(t *testing.T) {
	const rootW, rootH = 3840, 1080
	left := Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name string
		mon  Monitor
		sp   ewmh.WmStrutPartial
		want struts
	}{
		{
			name: "top panel spanning both monitors",
			mon:  right,
			sp:   ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: rootW - 1},
			want: struts{top: 32},
		},
		{
			name: "bottom dock on the left monitor only",
			mon:  right,
			sp:   ewmh.WmStrutPartial{Bottom: 48, BottomStartX: 0, BottomEndX: 1919},
			want: struts{},
		},
		{
			name: "bottom dock on the left monitor only, seen from it",
			mon:  left,
			sp:   ewmh.WmStrutPartial{Bottom: 48, BottomStartX: 0, BottomEndX: 1919},
			want: struts{bottom: 48},
		},
		{
			name: "left sidebar",
			mon:  left,
			sp:   ewmh.WmStrutPartial{Left: 64, LeftStartY: 0, LeftEndY: rootH - 1},
			want: struts{left: 64},
		},
		{
			name: "right sidebar",
			mon:  right,
			sp:   ewmh.WmStrutPartial{Right: 50, RightStartY: 100, RightEndY: 500},
			want: struts{right: 50},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := tt.sp
			assert.Equal(t, tt.want, struts{}.add(tt.mon, rootW, rootH, &sp))
		})
	}
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, box{5, 5, 10, 10}, intersect(box{0, 0, 10, 10}, box{5, 5, 20, 20}))
	assert.True(t, intersect(box{0, 0, 10, 10}, box{10, 0, 20, 10}).empty(), "edges touch")
}

func TestWindowInfoModal(t *testing.T) {
	assert.False(t, WindowInfo{}.Modal())
	assert.True(t, WindowInfo{TransientFor: 7}.Modal())
	assert.True(t, WindowInfo{Dialog: true}.Modal())
}

package cardwm

import (
	"math"
	"strings"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/platform"
)

// PointerEvent is a raw pointer sample with the position where the button
// went down.
type PointerEvent struct {
	Pos    platform.Point
	Origin platform.Point
}

// FlickEvent is a recognized flick. Velocity is in pixels per second; the
// hotspot is where the flick started.
type FlickEvent struct {
	Velocity platform.Point
	Hotspot  platform.Point
}

// MoveLock is the axis a drag is locked to.
type MoveLock int

const (
	Unlocked MoveLock = iota
	Horizontal
	Vertical
)

func (l MoveLock) String() string {
	switch l {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unlocked"
	}
}

// ReorderZone is where a dragged card sits relative to its slot.
type ReorderZone int

const (
	ZoneCenter ReorderZone = iota
	ZoneLeft
	ZoneRight
)

func (z ReorderZone) String() string {
	switch z {
	case ZoneLeft:
		return "left"
	case ZoneRight:
		return "right"
	default:
		return "center"
	}
}

// NavKey is a directional navigation key.
type NavKey int

const (
	NavLeft NavKey = iota
	NavRight
	NavUp
	NavDown
	NavHome
	NavBack
)

var navKeyNames = map[NavKey]string{
	NavLeft:  "left",
	NavRight: "right",
	NavUp:    "up",
	NavDown:  "down",
	NavHome:  "home",
	NavBack:  "back",
}

func (k NavKey) String() string {
	if name, ok := navKeyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseNavKey parses a key name such as "left" or "home".
func ParseNavKey(s string) (NavKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range navKeyNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

type pressState struct {
	down   bool
	origin platform.Point
	last   platform.Point
	card   card.ID
}

func (m *Manager) resetGesture() {
	m.press = pressState{}
	m.lock = Unlocked
	m.zone = ZoneCenter
	m.stripDx = 0
}

// PointerDown handles a button press.
func (m *Manager) PointerDown(ev PointerEvent) bool {
	if m.inModeAnim {
		return false
	}
	m.resetGesture()
	m.press = pressState{down: true, origin: ev.Origin, last: ev.Pos, card: m.cardAt(ev.Pos)}
	return m.current().pointerDown(m, ev)
}

// PointerMove handles a drag sample. The first movement past the axis lock
// distance locks the drag horizontally or vertically.
func (m *Manager) PointerMove(ev PointerEvent) bool {
	if m.inModeAnim || !m.press.down {
		return false
	}
	if m.lock == Unlocked {
		dx := ev.Pos.X - m.press.origin.X
		dy := ev.Pos.Y - m.press.origin.Y
		if math.Hypot(dx, dy) >= m.cfg.Gestures.AxisLockDistance {
			if math.Abs(dx) >= math.Abs(dy) {
				m.lock = Horizontal
			} else {
				m.lock = Vertical
			}
		}
	}
	handled := m.current().pointerMove(m, ev)
	m.press.last = ev.Pos
	return handled
}

// PointerUp handles a button release and resets the gesture.
func (m *Manager) PointerUp(ev PointerEvent) bool {
	if m.inModeAnim || !m.press.down {
		return false
	}
	handled := m.current().pointerUp(m, ev)
	m.resetGesture()
	return handled
}

// Flick handles a recognized flick.
func (m *Manager) Flick(ev FlickEvent) bool {
	if m.inModeAnim {
		return false
	}
	return m.current().flick(m, ev)
}

// Tap handles a recognized tap.
func (m *Manager) Tap(p platform.Point) bool {
	if m.inModeAnim {
		return false
	}
	return m.current().tap(m, p)
}

// TapAndHold handles a recognized long press.
func (m *Manager) TapAndHold(p platform.Point) bool {
	if m.inModeAnim {
		return false
	}
	return m.current().tapAndHold(m, p)
}

// HandleNavigationEvent handles directional key input.
func (m *Manager) HandleNavigationEvent(key NavKey) bool {
	if m.inModeAnim {
		return false
	}
	return m.current().navigate(m, key)
}

// inGestureStrip reports whether p lies in the bottom strip that accepts
// minimize gestures over a maximized card.
func (m *Manager) inGestureStrip(p platform.Point) bool {
	return p.Y >= float64(m.screen.Height-m.cfg.Screen.GestureStrip)
}

func (m *Manager) activeCardWidth() float64 {
	c := m.store.Card(m.ActiveWindow())
	if c == nil {
		return float64(m.screen.Width) * m.cfg.Layout.ActiveScale
	}
	return c.Size.Width * m.cfg.Layout.ActiveScale
}

// selectAdjacent moves the selection one card in dir, crossing into the
// neighbouring group at the group edge. It returns false at the strip end.
func (m *Manager) selectAdjacent(dir card.Direction) bool {
	id := m.adjacentCard(dir)
	if !id.Valid() {
		m.emitFeedback(FeedbackAngryCard)
		return false
	}
	m.setActiveCard(id)
	return true
}

// switchGroup activates the group next to the active one in dir.
func (m *Manager) switchGroup(dir card.Direction) bool {
	nb := m.neighbour(m.activeGroup, dir)
	if nb == nil {
		m.emitFeedback(FeedbackAngryCard)
		return false
	}
	m.setActiveCard(nb.Active())
	return true
}

func dirOf(dx float64) card.Direction {
	if dx < 0 {
		return card.DirLeft
	}
	return card.DirRight
}

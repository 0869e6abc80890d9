package cardwm

import (
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

// PositiveSpaceAboutToChange is sent before the system UI changes the area
// available to maximized cards. When the space shrinks the maximized card is
// resized synchronously so it never draws under the system UI.
func (m *Manager) PositiveSpaceAboutToChange(r platform.Rect, fullscreen bool) {
	c := m.store.Card(m.maximized)
	if c == nil || r.Empty() {
		return
	}
	m.disableDirectRendering()
	if r.Width*r.Height >= m.positiveSpace.Width*m.positiveSpace.Height || c.Fullscreen {
		return
	}
	if err := m.host.ResizeEventSync(c.ID, r.Width, r.Height); err != nil {
		m.log.Warn("host sync resize failed", zap.Stringer("card", c.ID), zap.Error(err))
		return
	}
	m.hostSize[c.ID] = [2]int{r.Width, r.Height}
}

// PositiveSpaceChanged applies the new positive space.
func (m *Manager) PositiveSpaceChanged(r platform.Rect, fullscreen bool) {
	if r.Empty() {
		m.log.Warn("ignoring empty positive space")
		return
	}
	m.positiveSpace = r
	m.psFullscreen = fullscreen
	m.log.Debug("positive space changed", zap.Int("x", r.X), zap.Int("y", r.Y),
		zap.Int("width", r.Width), zap.Int("height", r.Height), zap.Bool("fullscreen", fullscreen))
	m.current().positiveSpaceChanged(m, r, fullscreen)
}

// PositiveSpaceChangeFinished is sent once the system UI transition is over.
func (m *Manager) PositiveSpaceChangeFinished(r platform.Rect) {
	m.maybeEnableDirectRendering()
}

// LauncherVisible reports whether the launcher overlays the cards. Direct
// rendering is off while it does.
func (m *Manager) LauncherVisible(visible bool) {
	m.launcher = visible
	if visible {
		m.disableDirectRendering()
		return
	}
	m.maybeEnableDirectRendering()
}

// LauncherShown reports that the launcher finished showing or hiding. A
// shown launcher takes focus from the maximized card.
func (m *Manager) LauncherShown(shown bool) {
	m.launcherShown = shown
	m.FocusMaximizedCardWindow(!shown)
}

// FocusMaximizedCardWindow gives host focus to the maximized card, or takes
// it away while system UI has the keyboard.
func (m *Manager) FocusMaximizedCardWindow(focus bool) {
	c := m.store.Card(m.maximized)
	if c == nil || c.Loading {
		return
	}
	target := c
	if child := m.store.Card(c.ModalChild); child != nil && m.modal.Active() {
		target = child
	}
	if focus {
		m.giveFocus(target)
	} else {
		m.takeFocus(target)
	}
}

// IncomingPhoneCall makes room for the incoming call UI: an active modal is
// dismissed and a fullscreen maximized card is minimized.
func (m *Manager) IncomingPhoneCall() {
	m.log.Info("incoming phone call")
	if m.modal.Active() {
		m.dismissModal(modal.DismissedInternally)
	}
	if c := m.store.Card(m.maximized); c != nil && c.Fullscreen {
		m.MinimizeActiveWindow()
	}
}

// LauncherIsVisible reports the last launcher visibility.
func (m *Manager) LauncherIsVisible() bool { return m.launcher }

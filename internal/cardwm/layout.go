package cardwm

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/anim"
	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/platform"
)

// deriveFanLaw scales the configured fan weights to the screen. Portrait
// screens compress the fan so the outer cards stay visible.
func deriveFanLaw(l config.Layout, width, height int) card.FanLaw {
	factor := 1.0
	if width < height && height > 0 {
		factor = float64(width) / float64(height)
	}
	weights := make([]float64, len(l.FanWeights))
	for i, w := range l.FanWeights {
		weights[i] = w * factor
	}
	return card.FanLaw{Weights: weights, PackStep: l.FanPackStep * factor}
}

func (m *Manager) applyScreen(width, height int) {
	m.screen = platform.Rect{Width: width, Height: height}
	m.positiveSpace = m.screen
	m.psFullscreen = false
	m.landscape = width >= height
	m.law = deriveFanLaw(m.cfg.Layout, width, height)
}

// FanLaw returns the fan law derived for the current screen.
func (m *Manager) FanLaw() card.FanLaw { return m.law }

// Screen returns the screen bounds.
func (m *Manager) Screen() platform.Rect { return m.screen }

// PositiveSpace returns the area available to maximized cards.
func (m *Manager) PositiveSpace() platform.Rect { return m.positiveSpace }

// Resize relayouts the strip for a new screen size and re-derives the fan
// law. An orientation change flips the maximized card instead of resizing it.
func (m *Manager) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid screen size %dx%d", width, height)
	}
	old := m.screen
	wasLandscape := m.landscape
	m.applyScreen(width, height)

	for _, c := range m.store.Cards() {
		if int(c.Size.Width) == old.Width && int(c.Size.Height) == old.Height {
			c.Size = card.Size{Width: float64(width), Height: float64(height)}
		}
	}

	flip := wasLandscape != m.landscape
	m.log.Info("screen resized", zap.Int("width", width), zap.Int("height", height), zap.Bool("flip", flip))
	if c := m.store.Card(m.maximized); c != nil && c.Maximized {
		m.resizeMaximized(c, flip)
		c.Transform = m.maximizedTransform(c)
	}
	m.current().positiveSpaceChanged(m, m.positiveSpace, m.psFullscreen)
	return nil
}

func (m *Manager) stripCenterX() float64 {
	return float64(m.positiveSpace.X) + float64(m.positiveSpace.Width)/2
}

func (m *Manager) stripY() float64 {
	return float64(m.positiveSpace.Y) + float64(m.positiveSpace.Height)/2 + m.cfg.Layout.YOffset
}

func (m *Manager) groupScale(gid card.GroupID) float64 {
	if gid == m.activeGroup {
		return m.cfg.Layout.ActiveScale
	}
	return m.cfg.Layout.NonActiveScale
}

// computeLayout positions every group around the strip center and returns
// the target transform of each attached card, keyed by group.
func (m *Manager) computeLayout() map[card.GroupID]map[card.ID]card.Transform {
	out := make(map[card.GroupID]map[card.ID]card.Transform, len(m.groups))
	offsets := make(map[card.GroupID]map[card.ID]float64, len(m.groups))
	for _, gid := range m.groups {
		g := m.group(gid)
		scale := m.groupScale(gid)
		offsets[gid] = g.Layout(func(id card.ID) float64 {
			if c := m.store.Card(id); c != nil {
				return c.Size.Width * scale
			}
			return 0
		}, m.law)
	}

	anchor := m.groupIndex(m.activeGroup)
	if anchor < 0 {
		anchor = 0
	}
	y := m.stripY()
	spacing := m.cfg.Layout.GroupSpacing
	if len(m.groups) > 0 {
		m.group(m.groups[anchor]).X = m.stripCenterX() + m.stripDx
	}
	for i := anchor + 1; i < len(m.groups); i++ {
		prev, g := m.group(m.groups[i-1]), m.group(m.groups[i])
		g.X = prev.X + prev.RightExtent + spacing + g.LeftExtent
	}
	for i := anchor - 1; i >= 0; i-- {
		next, g := m.group(m.groups[i+1]), m.group(m.groups[i])
		g.X = next.X - next.LeftExtent - spacing - g.RightExtent
	}

	for _, gid := range m.groups {
		g := m.group(gid)
		g.Y = y
		scale := m.groupScale(gid)
		targets := make(map[card.ID]card.Transform, g.Len())
		for id, off := range offsets[gid] {
			targets[id] = card.Transform{X: g.X + off, Y: y, Scale: scale}
		}
		out[gid] = targets
	}
	return out
}

// relayout moves attached cards to their strip positions, animated as one
// group animation per group or committed immediately.
func (m *Manager) relayout(animate bool, d time.Duration) {
	for gid, targets := range m.computeLayout() {
		apply := m.layoutApplier(gid, targets)
		key := anim.GroupKey(gid)
		if !animate {
			m.anims.Cancel(key)
			apply()
			continue
		}
		m.anims.Start(key, anim.Animation{Duration: d, Apply: apply})
	}
}

func (m *Manager) layoutApplier(gid card.GroupID, targets map[card.ID]card.Transform) func() {
	return func() {
		for id, t := range targets {
			c := m.store.Card(id)
			if c == nil || !c.Attached || c.Group != gid {
				continue
			}
			c.Transform = t
		}
	}
}

// targetSize is the host size of c when maximized.
func (m *Manager) targetSize(c *card.Card) (int, int) {
	if c.Fullscreen || m.psFullscreen {
		return m.screen.Width, m.screen.Height
	}
	return m.positiveSpace.Width, m.positiveSpace.Height
}

func (m *Manager) maximizedTransform(c *card.Card) card.Transform {
	if c.Fullscreen || m.psFullscreen {
		return card.Transform{
			X:     float64(m.screen.Width) / 2,
			Y:     float64(m.screen.Height) / 2,
			Scale: 1,
		}
	}
	return card.Transform{
		X:     float64(m.positiveSpace.X) + float64(m.positiveSpace.Width)/2,
		Y:     float64(m.positiveSpace.Y) + float64(m.positiveSpace.Height)/2,
		Scale: 1,
	}
}

func (m *Manager) resizeMaximized(c *card.Card, flip bool) {
	w, h := m.targetSize(c)
	m.requestResize(c, w, h, flip)
}

func (m *Manager) resizeNormal(c *card.Card) {
	m.requestResize(c, int(c.Size.Width), int(c.Size.Height), false)
}

// requestResize sends an async resize (or flip) to the host. A newer request
// supersedes older ones: only the latest sequence number is awaited.
func (m *Manager) requestResize(c *card.Card, w, h int, flip bool) {
	size := [2]int{w, h}
	if last, ok := m.hostSize[c.ID]; ok && last == size && !flip {
		return
	}
	m.hostSize[c.ID] = size
	m.nextSeq++
	seq := m.nextSeq
	m.latestSeq[c.ID] = seq
	m.pendingResize[c.ID] = seq

	var err error
	if flip {
		err = m.host.FlipEventAsync(c.ID, w, h, seq)
	} else {
		err = m.host.ResizeEventAsync(c.ID, w, h, seq)
	}
	if err != nil {
		delete(m.pendingResize, c.ID)
		m.log.Warn("host resize failed", zap.Stringer("card", c.ID), zap.Error(err))
	}
}

// AsyncFlipCompleted acknowledges an async resize or flip. Completions for
// superseded requests are ignored.
func (m *Manager) AsyncFlipCompleted(id card.ID, seq uint64) {
	latest, ok := m.pendingResize[id]
	if !ok || seq != latest {
		m.log.Debug("stale host completion ignored", zap.Stringer("card", id), zap.Uint64("seq", seq))
		return
	}
	delete(m.pendingResize, id)
	m.maybeEnableDirectRendering()
}

// QueuedFlipCanceled reports that the host dropped an async request. The
// latest size is then applied synchronously so geometry stays consistent.
func (m *Manager) QueuedFlipCanceled(id card.ID, seq uint64) {
	latest, ok := m.pendingResize[id]
	if !ok || seq != latest {
		return
	}
	delete(m.pendingResize, id)
	c := m.store.Card(id)
	if c == nil || c.Removed {
		return
	}
	size := m.hostSize[id]
	m.log.Warn("queued flip canceled, resizing synchronously", zap.Stringer("card", id),
		zap.Int("width", size[0]), zap.Int("height", size[1]))
	if err := m.host.ResizeEventSync(id, size[0], size[1]); err != nil {
		m.log.Warn("host sync resize failed", zap.Stringer("card", id), zap.Error(err))
	}
	m.maybeEnableDirectRendering()
}

// AddWindowTimedOut reports that the host never acknowledged a prepared card.
func (m *Manager) AddWindowTimedOut(id card.ID) error {
	c, err := m.card(id)
	if err != nil {
		return err
	}
	if c.Added || c.Removed {
		return nil
	}
	m.log.Warn("add window timed out", zap.Stringer("card", id), zap.String("name", c.Label()))
	m.current().windowTimedOut(m, c)
	return nil
}

// maybeEnableDirectRendering turns direct rendering on for the maximized card
// once nothing animates, no resize is outstanding and nothing overlays it.
func (m *Manager) maybeEnableDirectRendering() {
	if m.state != StateMaximize || m.anims.Busy() || m.launcher {
		return
	}
	if m.modal.Active() || m.modal.InProgress() {
		return
	}
	c := m.store.Card(m.maximized)
	if c == nil || c.Removed || c.Loading || !c.Maximized {
		return
	}
	if _, pending := m.pendingResize[c.ID]; pending {
		return
	}
	if m.directCard == c.ID {
		return
	}
	m.disableDirectRendering()
	m.directCard = c.ID
	if err := m.host.SetDirectRendering(c.ID, true); err != nil {
		m.log.Warn("enable direct rendering failed", zap.Stringer("card", c.ID), zap.Error(err))
	}
	m.log.Debug("direct rendering enabled", zap.Stringer("card", c.ID))
	m.emitDirectRendering(c.ID, true)
}

func (m *Manager) disableDirectRendering() {
	id := m.directCard
	if !id.Valid() {
		return
	}
	m.directCard = card.ID{}
	if err := m.host.SetDirectRendering(id, false); err != nil {
		m.log.Warn("disable direct rendering failed", zap.Stringer("card", id), zap.Error(err))
	}
	m.emitDirectRendering(id, false)
}

// cardAt returns the topmost visible grouped card under p.
func (m *Manager) cardAt(p platform.Point) card.ID {
	order := make([]card.GroupID, 0, len(m.groups))
	if m.group(m.activeGroup) != nil {
		order = append(order, m.activeGroup)
	}
	for _, gid := range m.groups {
		if gid != m.activeGroup {
			order = append(order, gid)
		}
	}
	for _, gid := range order {
		stack := m.group(gid).StackOrder()
		for i := len(stack) - 1; i >= 0; i-- {
			c := m.store.Card(stack[i])
			if c != nil && !c.Removed && hit(c, p) {
				return c.ID
			}
		}
	}
	return card.ID{}
}

func hit(c *card.Card, p platform.Point) bool {
	hw := c.Size.Width * c.Transform.Scale / 2
	hh := c.Size.Height * c.Transform.Scale / 2
	return p.X >= c.Transform.X-hw && p.X <= c.Transform.X+hw &&
		p.Y >= c.Transform.Y-hh && p.Y <= c.Transform.Y+hh
}

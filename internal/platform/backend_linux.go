//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/x11"
)

// X11Options configures an X11Host.
type X11Options struct {
	Logger *zap.Logger
	// Completed and Canceled receive async request outcomes. They are called
	// from a host goroutine and must hand the result to the manager's
	// goroutine themselves.
	Completed func(id card.ID, seq uint64)
	Canceled  func(id card.ID, seq uint64)
}

// X11Host realizes card geometry on X11 client windows. Cards are bound to
// windows by the session that discovers them.
type X11Host struct {
	conn *x11.Connection
	log  *zap.Logger
	opts X11Options

	mu      sync.Mutex
	windows map[card.ID]WindowID
	cards   map[WindowID]card.ID
	area    Rect
}

var _ WindowHost = (*X11Host)(nil)

// NewX11Host creates a host on an existing connection.
func NewX11Host(conn *x11.Connection, opts X11Options) *X11Host {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &X11Host{
		conn:    conn,
		log:     logger.Named("x11host"),
		opts:    opts,
		windows: make(map[card.ID]WindowID),
		cards:   make(map[WindowID]card.ID),
	}
}

// Bind associates a card with its client window.
func (h *X11Host) Bind(id card.ID, w WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.windows[id] = w
	h.cards[w] = id
}

// Unbind forgets a card's window.
func (h *X11Host) Unbind(id card.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w, ok := h.windows[id]; ok {
		delete(h.cards, w)
		delete(h.windows, id)
	}
}

// CardFor returns the card bound to a window.
func (h *X11Host) CardFor(w WindowID) (card.ID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.cards[w]
	return id, ok
}

// WindowFor returns the window bound to a card.
func (h *X11Host) WindowFor(id card.ID) (WindowID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.windows[id]
	return w, ok
}

// Bound returns a copy of the card to window bindings.
func (h *X11Host) Bound() map[card.ID]WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[card.ID]WindowID, len(h.windows))
	for id, w := range h.windows {
		out[id] = w
	}
	return out
}

// ListWindows returns the managed client windows.
func (h *X11Host) ListWindows() ([]WindowID, error) {
	clients, err := h.conn.ClientList()
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, len(clients))
	for i, w := range clients {
		out[i] = WindowID(w)
	}
	return out, nil
}

// SetArea sets the region card windows are centered in.
func (h *X11Host) SetArea(r Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.area = r
}

// Area returns the region card windows are centered in.
func (h *X11Host) Area() Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.area
}

// ReadArea queries the primary monitor and its positive space.
func (h *X11Host) ReadArea() (screen, positive Rect, err error) {
	mon, err := h.conn.PrimaryMonitor()
	if err != nil {
		return Rect{}, Rect{}, err
	}
	ps := h.conn.PositiveSpace(mon)
	return monitorRect(mon), monitorRect(ps), nil
}

func monitorRect(m x11.Monitor) Rect {
	return Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

func (h *X11Host) window(id card.ID) (xproto.Window, error) {
	w, ok := h.WindowFor(id)
	if !ok {
		return 0, fmt.Errorf("%s has no window", id)
	}
	return xproto.Window(w), nil
}

// place centers the window in the host area.
func (h *X11Host) place(id card.ID, width, height int) error {
	w, err := h.window(id)
	if err != nil {
		return err
	}
	area := h.Area()
	x := area.X + (area.Width-width)/2
	y := area.Y + (area.Height-height)/2
	return h.conn.MoveResizeWindow(w, x, y, width, height)
}

// placeAsync issues the request and reports its outcome once the server
// processed it.
func (h *X11Host) placeAsync(id card.ID, width, height int, seq uint64) error {
	if err := h.place(id, width, height); err != nil {
		if h.opts.Canceled != nil {
			go h.opts.Canceled(id, seq)
		}
		return err
	}
	go func() {
		h.conn.Sync()
		if h.opts.Completed != nil {
			h.opts.Completed(id, seq)
		}
	}()
	return nil
}

func (h *X11Host) ResizeEventSync(id card.ID, width, height int) error {
	if err := h.place(id, width, height); err != nil {
		return err
	}
	h.conn.Sync()
	return nil
}

func (h *X11Host) ResizeEventAsync(id card.ID, width, height int, seq uint64) error {
	return h.placeAsync(id, width, height, seq)
}

// FlipEventSync is a resize on X11; there is no separate rotation request.
func (h *X11Host) FlipEventSync(id card.ID, width, height int) error {
	return h.ResizeEventSync(id, width, height)
}

func (h *X11Host) FlipEventAsync(id card.ID, width, height int, seq uint64) error {
	return h.placeAsync(id, width, height, seq)
}

// Focus activates the card window. X has no unfocus request; the next
// activation moves focus away.
func (h *X11Host) Focus(id card.ID, focused bool) error {
	if !focused {
		return nil
	}
	w, err := h.window(id)
	if err != nil {
		return err
	}
	return h.conn.FocusWindow(w)
}

// Close asks the client to close the card window.
func (h *X11Host) Close(id card.ID) error {
	w, err := h.window(id)
	if err != nil {
		return err
	}
	h.log.Debug("closing window", zap.Stringer("card", id), zap.Uint32("window", uint32(w)))
	return h.conn.CloseWindow(w)
}

// SetDirectRendering maps direct rendering to the compositor bypass hint.
func (h *X11Host) SetDirectRendering(id card.ID, enabled bool) error {
	w, err := h.window(id)
	if err != nil {
		return err
	}
	return h.conn.SetBypassCompositor(w, enabled)
}

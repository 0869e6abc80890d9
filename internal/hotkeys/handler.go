// Package hotkeys grabs global X11 key sequences and turns them into card
// navigation keys.
package hotkeys

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/x11"
)

// Binding pairs a navigation key with the X11 key sequence that triggers it.
type Binding struct {
	Key      cardwm.NavKey
	Sequence string
}

// Bindings lists the configured sequences in navigation key order. Empty
// sequences are left unbound.
func Bindings(cfg config.Hotkeys) []Binding {
	all := []Binding{
		{cardwm.NavLeft, cfg.Left},
		{cardwm.NavRight, cfg.Right},
		{cardwm.NavUp, cfg.Up},
		{cardwm.NavDown, cfg.Down},
		{cardwm.NavHome, cfg.Home},
		{cardwm.NavBack, cfg.Back},
	}
	out := all[:0]
	for _, b := range all {
		if b.Sequence != "" {
			out = append(out, b)
		}
	}
	return out
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	log  *zap.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on conn.
func NewHandler(conn *x11.Connection, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:   conn.XUtil,
		root: conn.Root,
		log:  log.Named("hotkeys"),
	}
}

// Register grabs every configured sequence. onKey runs on the X event
// goroutine.
func (h *Handler) Register(cfg config.Hotkeys, onKey func(cardwm.NavKey)) error {
	for _, b := range Bindings(cfg) {
		key := b.Key
		if err := h.RegisterFunc(b.Sequence, func() {
			h.log.Debug("hotkey", zap.Stringer("key", key))
			onKey(key)
		}); err != nil {
			return fmt.Errorf("failed to register %s hotkey %q: %w", key, b.Sequence, err)
		}
		h.log.Info("hotkey registered", zap.Stringer("key", key), zap.String("sequence", b.Sequence))
	}
	return nil
}

// Unregister releases every grab on the root window.
func (h *Handler) Unregister() {
	keybind.Detach(h.xu, h.root)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes grabs fire regardless of CapsLock, NumLock and
// ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	base := []uint16{caps}
	for _, sym := range []string{"Num_Lock", "Scroll_Lock"} {
		mask := modMaskForKeysym(xu, sym)
		if mask == 0 {
			continue
		}
		dup := false
		for _, m := range base {
			dup = dup || m == mask
		}
		if !dup {
			base = append(base, mask)
		}
	}

	xevent.IgnoreMods = maskSubsets(base)
}

// maskSubsets returns every OR-combination of masks, including 0.
func maskSubsets(masks []uint16) []uint16 {
	out := make([]uint16, 0, 1<<len(masks))
	for subset := 0; subset < (1 << len(masks)); subset++ {
		var mask uint16
		for bit := range masks {
			if subset&(1<<bit) != 0 {
				mask |= masks[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowInfo is what the card host needs to know about a client window.
type WindowInfo struct {
	ID    xproto.Window
	Name  string
	Class string
	PID   uint
	// TransientFor is the window this one is a dialog for, or 0.
	TransientFor xproto.Window
	Dialog       bool
	Normal       bool
	Fullscreen   bool
}

// Modal reports whether the window should be treated as a modal dialog.
func (w WindowInfo) Modal() bool {
	return w.TransientFor != 0 || w.Dialog
}

// Describe reads the properties of a client window. Missing properties are
// left at their zero values.
func (c *Connection) Describe(windowID xproto.Window) WindowInfo {
	info := WindowInfo{ID: windowID, Normal: c.IsNormalWindow(windowID)}

	if name, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && name != "" {
		info.Name = name
	} else if name, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		info.Name = name
	}
	if class, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		info.Class = class.Class
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		info.PID = pid
	}
	if parent, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil {
		info.TransientFor = parent
	}
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DIALOG" {
				info.Dialog = true
			}
		}
	}
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_FULLSCREEN" {
				info.Fullscreen = true
			}
		}
	}
	return info
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// A maximized window ignores geometry requests under most WMs.
	_ = c.unmaximizeWindow(windowID)

	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// No EWMH-compliant WM; configure the window directly.
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// FocusWindow asks the window manager to activate a window.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	if err := ewmh.ActiveWindowReq(c.XUtil, windowID); err != nil {
		return fmt.Errorf("failed to activate window %d: %w", windowID, err)
	}
	return nil
}

// CloseWindow politely asks the owning client to close a window.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	if err := ewmh.CloseWindow(c.XUtil, windowID); err != nil {
		return fmt.Errorf("failed to close window %d: %w", windowID, err)
	}
	return nil
}

// SetBypassCompositor sets _NET_WM_BYPASS_COMPOSITOR so a compositing
// manager can unredirect a fullscreen card. 1 requests bypass, 0 clears it.
func (c *Connection) SetBypassCompositor(windowID xproto.Window, bypass bool) error {
	var v uint
	if bypass {
		v = 1
	}
	if err := xprop.ChangeProp32(c.XUtil, windowID, "_NET_WM_BYPASS_COMPOSITOR", "CARDINAL", v); err != nil {
		return fmt.Errorf("failed to set compositor bypass on %d: %w", windowID, err)
	}
	return nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// ClientList returns the managed client windows.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}
	return clients, nil
}

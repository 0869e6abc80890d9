// Package x11 wraps the xgbutil calls the card host needs: window geometry,
// focus, close requests, client list tracking and the usable screen area.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to the display named by $DISPLAY.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	// Required before any key grab.
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop runs the X11 event loop until Quit is called.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops a running EventLoop. The loop blocks reading events, so a
// property change on the root window is sent to wake it. Callers must
// listen for PropertyChange on the root, as Watch does.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
	_ = xprop.ChangeProp32(c.XUtil, c.Root, "_CARDWM_WAKE", "CARDINAL", 1)
	c.XUtil.Sync()
}

// Sync waits until the server processed every request sent so far.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

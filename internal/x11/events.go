package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ClientEvents are delivered on the X event loop goroutine. Nil callbacks
// are skipped.
type ClientEvents struct {
	Added         func(WindowInfo)
	Removed       func(xproto.Window)
	ScreenChanged func()
}

// Watch reports client windows appearing in and leaving _NET_CLIENT_LIST,
// root resizes and work area changes. Windows already managed when Watch
// is called are reported as added.
func (c *Connection) Watch(ev ClientEvents) error {
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange, xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	clientListAtom, err := xprop.Atm(c.XUtil, "_NET_CLIENT_LIST")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_CLIENT_LIST: %w", err)
	}
	workareaAtom, err := xprop.Atm(c.XUtil, "_NET_WORKAREA")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_WORKAREA: %w", err)
	}

	known := newClientSet()
	refresh := func() {
		list, err := c.ClientList()
		if err != nil {
			return
		}
		added, removed := known.update(list)
		for _, w := range removed {
			if ev.Removed != nil {
				ev.Removed(w)
			}
		}
		for _, w := range added {
			if ev.Added != nil {
				ev.Added(c.Describe(w))
			}
		}
	}
	screenChanged := func() {
		if ev.ScreenChanged != nil {
			ev.ScreenChanged()
		}
	}

	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, e xevent.PropertyNotifyEvent) {
		switch e.Atom {
		case clientListAtom:
			refresh()
		case workareaAtom:
			screenChanged()
		}
	}).Connect(c.XUtil, c.Root)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, e xevent.ConfigureNotifyEvent) {
		if e.Window == c.Root {
			screenChanged()
		}
	}).Connect(c.XUtil, c.Root)

	refresh()
	return nil
}

// clientSet diffs successive snapshots of the client list.
type clientSet struct {
	known map[xproto.Window]bool
}

func newClientSet() *clientSet {
	return &clientSet{known: make(map[xproto.Window]bool)}
}

// update records list as the current clients and returns what changed,
// each in ascending window order.
func (s *clientSet) update(list []xproto.Window) (added, removed []xproto.Window) {
	next := make(map[xproto.Window]bool, len(list))
	for _, w := range list {
		next[w] = true
		if !s.known[w] {
			added = append(added, w)
		}
	}
	for w := range s.known {
		if !next[w] {
			removed = append(removed, w)
		}
	}
	s.known = next

	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}

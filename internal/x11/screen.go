package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is a physical display in root coordinates.
type Monitor struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int

	outputs []randr.Output
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			Name:    name,
			X:       int(info.X),
			Y:       int(info.Y),
			Width:   int(info.Width),
			Height:  int(info.Height),
			outputs: info.Outputs,
		})
	}
	return monitors, nil
}

// PrimaryMonitor returns the RandR primary monitor, the first active one
// when no primary is set, or the root window geometry without RandR.
func (c *Connection) PrimaryMonitor() (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		geom, gerr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
		if gerr != nil {
			return Monitor{}, fmt.Errorf("failed to read root geometry: %w", gerr)
		}
		return Monitor{Name: "root", Width: int(geom.Width), Height: int(geom.Height)}, nil
	}

	if primary, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil && primary.Output != 0 {
		for _, m := range monitors {
			for _, out := range m.outputs {
				if out == primary.Output {
					return m, nil
				}
			}
		}
	}
	return monitors[0], nil
}

// PositiveSpace returns the part of mon not covered by docks and panels.
// Dock struts are preferred; the EWMH work area is the fallback.
func (c *Connection) PositiveSpace(mon Monitor) Monitor {
	area := mon
	if c.applyDockStruts(&area) {
		return area
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return area
	}
	idx := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(workArea) {
		idx = int(cur)
	}
	wa := workArea[idx]
	isect := intersect(
		box{area.X, area.Y, area.X + area.Width, area.Y + area.Height},
		box{int(wa.X), int(wa.Y), int(wa.X) + int(wa.Width), int(wa.Y) + int(wa.Height)},
	)
	if isect.empty() {
		return area
	}
	area.X, area.Y = isect.x1, isect.y1
	area.Width, area.Height = isect.x2-isect.x1, isect.y2-isect.y1
	return area
}

// box is a half-open rectangle [x1,x2) x [y1,y2).
type box struct{ x1, y1, x2, y2 int }

func (b box) empty() bool { return b.x2 <= b.x1 || b.y2 <= b.y1 }

func intersect(a, b box) box {
	return box{max(a.x1, b.x1), max(a.y1, b.y1), min(a.x2, b.x2), min(a.y2, b.y2)}
}

type struts struct{ left, right, top, bottom int }

func (c *Connection) applyDockStruts(mon *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var acc struts
	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			acc = acc.add(*mon, rootW, rootH, sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT.
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			acc = acc.add(*mon, rootW, rootH, &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			})
		}
	}
	if acc == (struts{}) {
		return false
	}

	mon.X += acc.left
	mon.Y += acc.top
	mon.Width = max(1, mon.Width-acc.left-acc.right)
	mon.Height = max(1, mon.Height-acc.top-acc.bottom)
	return true
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// add widens acc by the part of each strut edge that overlaps mon.
func (acc struts) add(mon Monitor, rootW, rootH int, sp *ewmh.WmStrutPartial) struts {
	m := box{mon.X, mon.Y, mon.X + mon.Width, mon.Y + mon.Height}

	if sp.Top > 0 {
		if i := intersect(m, box{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}); !i.empty() {
			acc.top = max(acc.top, i.y2-i.y1)
		}
	}
	if sp.Bottom > 0 {
		if i := intersect(m, box{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH}); !i.empty() {
			acc.bottom = max(acc.bottom, i.y2-i.y1)
		}
	}
	if sp.Left > 0 {
		if i := intersect(m, box{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}); !i.empty() {
			acc.left = max(acc.left, i.x2-i.x1)
		}
	}
	if sp.Right > 0 {
		if i := intersect(m, box{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1}); !i.empty() {
			acc.right = max(acc.right, i.x2-i.x1)
		}
	}
	return acc
}

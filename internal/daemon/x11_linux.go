//go:build linux

package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/hotkeys"
	"github.com/1broseidon/cardwm/internal/platform"
	"github.com/1broseidon/cardwm/internal/x11"
)

// x11Session turns X11 client windows into cards and X11 key grabs into
// navigation events.
type x11Session struct {
	conn    *x11.Connection
	host    *platform.X11Host
	hotkeys config.Hotkeys
	log     *zap.Logger
	d       atomic.Pointer[Daemon]
}

// AttachX11 connects to the X server and fills opts with the X11 host,
// its window index and the session runner. The returned function closes
// the connection and must run after the daemon stopped.
func AttachX11(opts *Options) (func(), error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &x11Session{
		conn:    conn,
		hotkeys: cfg.Hotkeys,
		log:     logger.Named("x11"),
	}
	s.host = platform.NewX11Host(conn, platform.X11Options{
		Logger: logger,
		Completed: func(id card.ID, seq uint64) {
			s.post(func(m *cardwm.Manager) { m.AsyncFlipCompleted(id, seq) })
		},
		Canceled: func(id card.ID, seq uint64) {
			s.post(func(m *cardwm.Manager) { m.QueuedFlipCanceled(id, seq) })
		},
	})

	opts.Host = s.host
	opts.Index = s.host
	opts.ListWindows = s.host.ListWindows
	opts.Runners = append(opts.Runners, s.run)
	return conn.Close, nil
}

func (s *x11Session) post(fn func(*cardwm.Manager)) {
	d := s.d.Load()
	if d == nil {
		return
	}
	d.Post(fn)
}

func (s *x11Session) run(ctx context.Context, d *Daemon) error {
	s.d.Store(d)

	if err := s.syncScreen(ctx); err != nil {
		return err
	}

	keys := hotkeys.NewHandler(s.conn, s.log)
	if err := keys.Register(s.hotkeys, func(key cardwm.NavKey) {
		s.post(func(m *cardwm.Manager) { m.HandleNavigationEvent(key) })
	}); err != nil {
		s.log.Warn("hotkeys unavailable", zap.Error(err))
	}
	defer keys.Unregister()

	if err := s.conn.Watch(x11.ClientEvents{
		Added:   s.windowAdded,
		Removed: s.windowRemoved,
		ScreenChanged: func() {
			if err := s.syncScreen(ctx); err != nil {
				s.log.Warn("screen update failed", zap.Error(err))
			}
		},
	}); err != nil {
		return err
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.conn.EventLoop()
	}()
	s.log.Info("x11 session started")

	<-ctx.Done()
	s.conn.Quit()
	<-stopped
	return nil
}

// syncScreen pushes the primary monitor and its positive space to the host
// and the manager.
func (s *x11Session) syncScreen(ctx context.Context) error {
	screen, positive, err := s.host.ReadArea()
	if err != nil {
		return fmt.Errorf("failed to read screen: %w", err)
	}
	s.host.SetArea(positive)
	d := s.d.Load()
	if d == nil {
		return nil
	}
	err = d.Exec(ctx, func(m *cardwm.Manager) error {
		if cur := m.Screen(); cur.Width != screen.Width || cur.Height != screen.Height {
			if err := m.Resize(screen.Width, screen.Height); err != nil {
				return err
			}
		}
		if m.PositiveSpace() != positive {
			m.PositiveSpaceAboutToChange(positive, false)
			m.PositiveSpaceChanged(positive, false)
			m.PositiveSpaceChangeFinished(positive)
		}
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *x11Session) windowAdded(w x11.WindowInfo) {
	if !w.Normal {
		return
	}
	info := s.cardInfo(w)
	win := platform.WindowID(w.ID)
	s.log.Debug("client window", zap.Uint32("window", uint32(w.ID)), zap.String("name", w.Name),
		zap.Bool("modal", w.Modal()))

	if d := s.d.Load(); d != nil {
		d.Reconciler().HandleWindowOpened(info, func(id card.ID) { s.host.Bind(id, win) })
	}
}

func (s *x11Session) windowRemoved(w xproto.Window) {
	id, ok := s.host.CardFor(platform.WindowID(w))
	if !ok {
		return
	}
	if d := s.d.Load(); d != nil {
		d.Reconciler().HandleWindowClosed(id)
	}
}

// cardInfo derives card identity from window properties. Dialogs are
// launched by the process owning the window they are transient for; other
// windows by their parent process.
func (s *x11Session) cardInfo(w x11.WindowInfo) card.Info {
	info := card.Info{
		Name:       w.Name,
		AppID:      w.Class,
		ProcessID:  pidString(w.PID, w.ID),
		Fullscreen: w.Fullscreen,
	}
	if w.Modal() {
		info.Kind = card.KindModalChild
		if w.TransientFor != 0 {
			parent := s.conn.Describe(w.TransientFor)
			info.LaunchingProcessID = pidString(parent.PID, parent.ID)
			info.LaunchingAppID = parent.Class
		}
		return info
	}
	if ppid := parentPID(int(w.PID)); ppid > 0 {
		info.LaunchingProcessID = strconv.Itoa(ppid)
	}
	return info
}

// pidString identifies a process; windows without _NET_WM_PID get a
// per-window identity so they never match each other.
func pidString(pid uint, w xproto.Window) string {
	if pid == 0 {
		return fmt.Sprintf("window-%d", w)
	}
	return strconv.FormatUint(uint64(pid), 10)
}

// parentPID reads the parent of pid from /proc, or 0.
func parentPID(pid int) int {
	if pid <= 0 {
		return 0
	}
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0
	}
	return parsePPID(string(data))
}

// parsePPID extracts the PPID (field 4) from /proc/<pid>/stat.
// Format: pid (comm) state ppid ...
func parsePPID(stat string) int {
	// The comm field may contain spaces and parens.
	idx := strings.LastIndex(stat, ") ")
	if idx < 0 {
		return 0
	}
	fields := strings.Fields(stat[idx+2:])
	if len(fields) < 2 {
		return 0
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return ppid
}

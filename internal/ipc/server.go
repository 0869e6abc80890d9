package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/runtimepath"
)

// Executor runs fn on the goroutine that owns the card manager and returns
// its error.
type Executor interface {
	Exec(ctx context.Context, fn func(*cardwm.Manager) error) error
}

// ReloadFunc re-reads the configuration and applies it.
type ReloadFunc func(ctx context.Context) error

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	exec         Executor
	reload       ReloadFunc
	log          *zap.Logger
	startTime    time.Time
	timeout      time.Duration
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server. An empty socketPath resolves to the
// per-user runtime socket.
func NewServer(socketPath string, exec Executor, reload ReloadFunc, log *zap.Logger) (*Server, error) {
	if exec == nil {
		return nil, errors.New("ipc server needs an executor")
	}
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	if log == nil {
		log = zap.NewNop()
	}

	// Remove a stale socket left by a crashed daemon.
	_ = os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		exec:       exec,
		reload:     reload,
		log:        log.Named("ipc"),
		startTime:  time.Now(),
		timeout:    5 * time.Second,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info("listening", zap.String("socket", s.socketPath))
	return nil
}

// Serve accepts connections until ctx is canceled, starting the listener
// first when Start was not called.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Start(); err != nil {
			return err
		}
	}
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopped:
		}
	}()

	err := s.acceptLoop(ctx)
	s.conns.Wait()
	return err
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Debug("read failed", zap.Error(err))
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp := s.handleCommand(reqCtx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Debug("write failed", zap.Error(err))
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.log.Debug("command", zap.String("command", string(req.Command)))

	var (
		data interface{}
		err  error
	)
	switch req.Command {
	case CommandReload:
		err = s.handleReload(ctx)
	case CommandGetStatus:
		data, err = s.handleGetStatus(ctx)
	case CommandListGroups:
		data, err = s.handleListGroups(ctx)
	case CommandCreateCard:
		data, err = s.handleCreateCard(ctx, req)
	case CommandPrepareAdd:
		data, err = s.handlePrepareAdd(ctx, req)
	case CommandAddWindow:
		err = s.withCard(ctx, req, (*cardwm.Manager).AddWindow)
	case CommandRemoveWindow:
		err = s.withCard(ctx, req, (*cardwm.Manager).RemoveWindow)
	case CommandSafeToDelete:
		err = s.withCard(ctx, req, (*cardwm.Manager).WindowSafeToDelete)
	case CommandFocusWindow:
		err = s.withCard(ctx, req, (*cardwm.Manager).FocusWindow)
	case CommandMaximize:
		err = s.exec.Exec(ctx, func(m *cardwm.Manager) error {
			m.MaximizeActiveWindow()
			return nil
		})
	case CommandMinimize:
		err = s.exec.Exec(ctx, func(m *cardwm.Manager) error {
			m.MinimizeActiveWindow()
			return nil
		})
	case CommandNavigate:
		data, err = s.handleNavigate(ctx, req)
	case CommandResize:
		err = s.handleResize(ctx, req)
	case CommandDismissModal:
		var out HandledData
		err = s.exec.Exec(ctx, func(m *cardwm.Manager) error {
			out.Handled = m.DismissModalDialog()
			return nil
		})
		data = out
	case CommandLauncher:
		err = s.handleLauncher(ctx, req)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleReload(ctx context.Context) error {
	if s.reload == nil {
		return errors.New("reload is not supported by this daemon")
	}
	if err := s.reload(ctx); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	s.log.Info("config reloaded")
	return nil
}

func (s *Server) handleGetStatus(ctx context.Context) (StatusData, error) {
	status := StatusData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}
	err := s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		status.Snapshot = m.Snapshot()
		return nil
	})
	return status, err
}

func (s *Server) handleListGroups(ctx context.Context) (GroupsData, error) {
	var data GroupsData
	err := s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		snap := m.Snapshot()
		data = GroupsData{ActiveGroup: snap.ActiveGroup, Groups: snap.Groups, Cards: snap.Cards}
		return nil
	})
	return data, err
}

func (s *Server) handleCreateCard(ctx context.Context, req *Request) (CardData, error) {
	var p CreateCardPayload
	if err := decodePayload(req, &p); err != nil {
		return CardData{}, err
	}
	kind, err := parseKind(p.Kind)
	if err != nil {
		return CardData{}, err
	}
	info := card.Info{
		Name:               p.Name,
		ProcessID:          p.ProcessID,
		AppID:              p.AppID,
		LaunchingAppID:     p.LaunchingAppID,
		LaunchingProcessID: p.LaunchingProcessID,
		Kind:               kind,
		Size:               card.Size{Width: p.Width, Height: p.Height},
		Fullscreen:         p.Fullscreen,
	}

	var out CardData
	err = s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		out.Card = m.CreateCard(info).String()
		return nil
	})
	return out, err
}

func (s *Server) handlePrepareAdd(ctx context.Context, req *Request) (PrepareData, error) {
	var p CardPayload
	if err := decodePayload(req, &p); err != nil {
		return PrepareData{}, err
	}
	var out PrepareData
	err := s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		id, err := m.FindCard(p.Card)
		if err != nil {
			return err
		}
		res, err := m.PrepareAddWindow(id)
		if err != nil {
			return err
		}
		out = PrepareData{Card: id.String(), Result: res.String()}
		return nil
	})
	return out, err
}

// withCard resolves the payload card reference and applies op to it.
func (s *Server) withCard(ctx context.Context, req *Request, op func(*cardwm.Manager, card.ID) error) error {
	var p CardPayload
	if err := decodePayload(req, &p); err != nil {
		return err
	}
	return s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		id, err := m.FindCard(p.Card)
		if err != nil {
			return err
		}
		return op(m, id)
	})
}

func (s *Server) handleNavigate(ctx context.Context, req *Request) (HandledData, error) {
	var p NavigatePayload
	if err := decodePayload(req, &p); err != nil {
		return HandledData{}, err
	}
	key, ok := cardwm.ParseNavKey(p.Key)
	if !ok {
		return HandledData{}, fmt.Errorf("unknown navigation key %q", p.Key)
	}
	var out HandledData
	err := s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		out.Handled = m.HandleNavigationEvent(key)
		return nil
	})
	return out, err
}

func (s *Server) handleResize(ctx context.Context, req *Request) error {
	var p ResizePayload
	if err := decodePayload(req, &p); err != nil {
		return err
	}
	return s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		return m.Resize(p.Width, p.Height)
	})
}

func (s *Server) handleLauncher(ctx context.Context, req *Request) error {
	var p LauncherPayload
	if err := decodePayload(req, &p); err != nil {
		return err
	}
	return s.exec.Exec(ctx, func(m *cardwm.Manager) error {
		m.LauncherVisible(p.Visible)
		return nil
	})
}

func parseKind(s string) (card.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return card.KindNormal, nil
	case "modal":
		return card.KindModalChild, nil
	default:
		return card.KindNormal, fmt.Errorf("unknown card kind %q", s)
	}
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	_, _ = conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	_ = os.Remove(s.socketPath)
}

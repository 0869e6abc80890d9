package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/platform"
)

// syncExecutor runs requests inline and settles the manager afterwards,
// standing in for the daemon loop.
type syncExecutor struct {
	mu   sync.Mutex
	m    *cardwm.Manager
	host *platform.RecordingHost
}

func (e *syncExecutor) Exec(_ context.Context, fn func(*cardwm.Manager) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn(e.m)
	for i := 0; i < 10; i++ {
		e.m.FinishAnimations()
		pending := e.host.TakePending()
		for _, cmd := range pending {
			e.m.AsyncFlipCompleted(cmd.Card, cmd.Seq)
		}
		if len(pending) == 0 && !e.m.Animating() {
			break
		}
	}
	return err
}

func startServer(t *testing.T, reload ReloadFunc) (*Client, *syncExecutor) {
	t.Helper()
	// Unix socket paths are short; t.TempDir can exceed the limit.
	dir, err := os.MkdirTemp("", "cardwm-ipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")

	host := platform.NewRecordingHost()
	exec := &syncExecutor{
		host: host,
		m:    cardwm.New(cardwm.Options{Config: config.DefaultConfig(), Host: host, Logger: zaptest.NewLogger(t)}),
	}
	srv, err := NewServer(socket, exec, reload, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, srv.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
		_, err := os.Stat(socket)
		assert.True(t, os.IsNotExist(err), "socket removed on shutdown")
	})
	return NewClientAt(socket), exec
}

func TestServer_CardLifecycle(t *testing.T) {
	c, _ := startServer(t, nil)

	a, err := c.CreateCard(CreateCardPayload{Name: "mail", ProcessID: "pid-mail"})
	require.NoError(t, err)
	prep, err := c.PrepareAdd(a)
	require.NoError(t, err)
	assert.Equal(t, "no-error", prep.Result)
	require.NoError(t, c.AddWindow("mail"))

	status, err := c.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, "maximize", status.Snapshot.State)
	assert.Equal(t, a, status.Snapshot.Maximized)

	b, err := c.CreateCard(CreateCardPayload{Name: "web", ProcessID: "pid-web"})
	require.NoError(t, err)
	require.NoError(t, c.AddWindow(b))

	groups, err := c.ListGroups()
	require.NoError(t, err)
	require.Len(t, groups.Groups, 2)
	assert.Equal(t, []string{a}, groups.Groups[0].Cards)
	assert.Equal(t, []string{b}, groups.Groups[1].Cards)

	require.NoError(t, c.Focus("mail"))
	status, err = c.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, a, status.Snapshot.ActiveCard)

	require.NoError(t, c.Minimize())
	handled, err := c.Navigate("right")
	require.NoError(t, err)
	assert.True(t, handled)
	status, err = c.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "minimize", status.Snapshot.State)
	assert.Equal(t, b, status.Snapshot.ActiveCard)

	require.NoError(t, c.RemoveWindow(b))
	require.NoError(t, c.SafeToDelete(b))
	groups, err = c.ListGroups()
	require.NoError(t, err)
	assert.Len(t, groups.Groups, 1)
}

func TestServer_ModalRejection(t *testing.T) {
	c, _ := startServer(t, nil)

	m, err := c.CreateCard(CreateCardPayload{Name: "dialog", Kind: "modal", LaunchingProcessID: "pid-x"})
	require.NoError(t, err)
	prep, err := c.PrepareAdd(m)
	require.NoError(t, err)
	assert.Equal(t, "no-maximized-card", prep.Result)

	dismissed, err := c.DismissModal()
	require.NoError(t, err)
	assert.False(t, dismissed)
}

func TestServer_Launcher(t *testing.T) {
	c, _ := startServer(t, nil)

	require.NoError(t, c.SetLauncherVisible(true))
	status, err := c.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Snapshot.Launcher)

	require.NoError(t, c.SetLauncherVisible(false))
	status, err = c.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Snapshot.Launcher)
}

func TestServer_Errors(t *testing.T) {
	c, _ := startServer(t, nil)

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"unknown card", func() error { return c.Focus("nope") }, "unknown card"},
		{"bad card kind", func() error {
			_, err := c.CreateCard(CreateCardPayload{Name: "x", Kind: "popup"})
			return err
		}, `unknown card kind "popup"`},
		{"bad navigation key", func() error {
			_, err := c.Navigate("sideways")
			return err
		}, `unknown navigation key "sideways"`},
		{"missing payload", func() error {
			_, err := c.sendRequest(&Request{Command: CommandFocusWindow})
			return err
		}, "missing payload"},
		{"unknown command", func() error {
			_, err := c.sendRequest(&Request{Command: "EXPLODE"})
			return err
		}, "Unknown command: EXPLODE"},
		{"reload unsupported", c.Reload, "reload is not supported"},
		{"invalid resize", func() error { return c.Resize(0, 10) }, "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestServer_Reload(t *testing.T) {
	calls := 0
	c, _ := startServer(t, func(context.Context) error {
		calls++
		if calls > 1 {
			return errors.New("bad yaml")
		}
		return nil
	})

	require.NoError(t, c.Reload())
	err := c.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reload config: bad yaml")
	assert.Equal(t, 2, calls)
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running?")
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"NAVIGATE","payload":{"key":"left"}}`))
	require.NoError(t, err)
	assert.Equal(t, CommandNavigate, req.Command)

	var p NavigatePayload
	require.NoError(t, decodePayload(req, &p))
	assert.Equal(t, "left", p.Key)

	_, err = ParseRequest([]byte(`{}`))
	assert.Error(t, err)
	_, err = ParseRequest([]byte(`not json`))
	assert.Error(t, err)
}

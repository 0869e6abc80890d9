package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/cardwm/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the per-user daemon socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == statusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends cmd with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(cmd CommandType, payload, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListGroups retrieves the groups left to right with their cards.
func (c *Client) ListGroups() (*GroupsData, error) {
	var data GroupsData
	if err := c.call(CommandListGroups, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateCard registers a card and returns its id.
func (c *Client) CreateCard(p CreateCardPayload) (string, error) {
	var data CardData
	if err := c.call(CommandCreateCard, p, &data); err != nil {
		return "", err
	}
	return data.Card, nil
}

// PrepareAdd starts showing a card and returns the modal check result.
func (c *Client) PrepareAdd(ref string) (*PrepareData, error) {
	var data PrepareData
	if err := c.call(CommandPrepareAdd, CardPayload{Card: ref}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) AddWindow(ref string) error {
	return c.call(CommandAddWindow, CardPayload{Card: ref}, nil)
}

func (c *Client) RemoveWindow(ref string) error {
	return c.call(CommandRemoveWindow, CardPayload{Card: ref}, nil)
}

// SafeToDelete acknowledges that the host released a removed card.
func (c *Client) SafeToDelete(ref string) error {
	return c.call(CommandSafeToDelete, CardPayload{Card: ref}, nil)
}

// Focus brings a card to the front.
func (c *Client) Focus(ref string) error {
	return c.call(CommandFocusWindow, CardPayload{Card: ref}, nil)
}

func (c *Client) Maximize() error {
	return c.call(CommandMaximize, nil, nil)
}

func (c *Client) Minimize() error {
	return c.call(CommandMinimize, nil, nil)
}

// Navigate sends a navigation key and reports whether it was consumed.
func (c *Client) Navigate(key string) (bool, error) {
	var data HandledData
	if err := c.call(CommandNavigate, NavigatePayload{Key: key}, &data); err != nil {
		return false, err
	}
	return data.Handled, nil
}

// Resize changes the screen size the manager lays out for.
func (c *Client) Resize(width, height int) error {
	return c.call(CommandResize, ResizePayload{Width: width, Height: height}, nil)
}

// DismissModal dismisses the active modal and reports whether one was active.
func (c *Client) DismissModal() (bool, error) {
	var data HandledData
	if err := c.call(CommandDismissModal, nil, &data); err != nil {
		return false, err
	}
	return data.Handled, nil
}

// SetLauncherVisible tells the daemon the launcher overlay opened or closed.
func (c *Client) SetLauncherVisible(visible bool) error {
	return c.call(CommandLauncher, LauncherPayload{Visible: visible}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

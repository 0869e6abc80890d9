package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/cardwm/internal/cardwm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandListGroups   CommandType = "LIST_GROUPS"
	CommandCreateCard   CommandType = "CREATE_CARD"
	CommandPrepareAdd   CommandType = "PREPARE_ADD"
	CommandAddWindow    CommandType = "ADD_WINDOW"
	CommandRemoveWindow CommandType = "REMOVE_WINDOW"
	CommandSafeToDelete CommandType = "SAFE_TO_DELETE"
	CommandFocusWindow  CommandType = "FOCUS_WINDOW"
	CommandMaximize     CommandType = "MAXIMIZE"
	CommandMinimize     CommandType = "MINIMIZE"
	CommandNavigate     CommandType = "NAVIGATE"
	CommandResize       CommandType = "RESIZE"
	CommandDismissModal CommandType = "DISMISS_MODAL"
	CommandLauncher     CommandType = "LAUNCHER"
)

const (
	statusOK    = "OK"
	statusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	DaemonRunning bool            `json:"daemon_running"`
	Snapshot      cardwm.Snapshot `json:"snapshot"`
}

// GroupsData represents the data returned by LIST_GROUPS
type GroupsData struct {
	ActiveGroup string                 `json:"active_group,omitempty"`
	Groups      []cardwm.GroupSnapshot `json:"groups"`
	Cards       []cardwm.CardSnapshot  `json:"cards"`
}

// CreateCardPayload describes a new card. Kind is "normal" or "modal".
type CreateCardPayload struct {
	Name               string  `json:"name"`
	ProcessID          string  `json:"process_id,omitempty"`
	AppID              string  `json:"app_id,omitempty"`
	LaunchingAppID     string  `json:"launching_app_id,omitempty"`
	LaunchingProcessID string  `json:"launching_process_id,omitempty"`
	Kind               string  `json:"kind,omitempty"`
	Width              float64 `json:"width,omitempty"`
	Height             float64 `json:"height,omitempty"`
	Fullscreen         bool    `json:"fullscreen,omitempty"`
}

// CardData carries a card id back to the client.
type CardData struct {
	Card string `json:"card"`
}

// CardPayload names a card by id ("card(3.1)") or by name.
type CardPayload struct {
	Card string `json:"card"`
}

// PrepareData is the outcome of PREPARE_ADD.
type PrepareData struct {
	Card   string `json:"card"`
	Result string `json:"result"`
}

type NavigatePayload struct {
	Key string `json:"key"`
}

// HandledData reports whether the manager consumed an input event.
type HandledData struct {
	Handled bool `json:"handled"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type LauncherPayload struct {
	Visible bool `json:"visible"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: statusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: statusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// decodePayload unmarshals a request payload into v.
func decodePayload(req *Request, v interface{}) error {
	if len(req.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", req.Command)
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", req.Command, err)
	}
	return nil
}

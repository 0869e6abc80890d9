// Package mcp exposes card control to MCP clients over stdio. Every tool
// talks to the running daemon through the IPC client.
package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/ipc"
)

const (
	ServerName    = "cardwm"
	ServerVersion = "0.1.0"
)

// Controller is the part of the IPC client the tools use.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	ListGroups() (*ipc.GroupsData, error)
	Focus(ref string) error
	Navigate(key string) (bool, error)
	Maximize() error
	Minimize() error
	DismissModal() (bool, error)
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server for card control.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
	log       *zap.Logger

	// settlePoll is the wait_for_settled polling interval.
	settlePoll time.Duration
}

// NewServer creates an MCP server backed by ctl. A nil ctl uses the default
// daemon socket.
func NewServer(ctl Controller, logger *zap.Logger) *Server {
	if ctl == nil {
		ctl = ipc.NewClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ctl:        ctl,
		log:        logger.Named("mcp"),
		settlePoll: 100 * time.Millisecond,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session on t.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "card_status",
		Description: "Report the card window manager state: the current mode (minimize, maximize, reorder, preparing, loading, focus), the active and maximized cards, modal dialog state and whether animations are running.",
	}, s.handleCardStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_groups",
		Description: "List card groups in strip order with the cards of each group. Card ids returned here can be passed to focus_card.",
	}, s.handleListGroups)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_card",
		Description: "Bring a card to the front and maximize it. Accepts a card id (card-3) or a card name.",
	}, s.handleFocusCard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "navigate_cards",
		Description: "Press a navigation key. left/right move between cards of the active group or between groups, up maximizes the active card, down and home minimize, back dismisses a modal or minimizes.",
	}, s.handleNavigateCards)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_card_mode",
		Description: "Maximize the active card or minimize the maximized card back into the card strip.",
	}, s.handleSetCardMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dismiss_modal",
		Description: "Dismiss the modal dialog card shown over its parent, if any.",
	}, s.handleDismissModal)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wait_for_settled",
		Description: "Wait until no card animation is running, polling the daemon until timeout (default 10s).",
	}, s.handleWaitForSettled)
}

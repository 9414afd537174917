package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/ipc"
)

const (
	ServerName    = "framewm"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools drive.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListFrames() ([]frame.State, error)
	CloseFrame(id uint32) error
	ToggleMaximize(id uint32) error
	MinimizeFrame(id uint32) error
	Reload() error
}

var _ Daemon = (*ipc.Client)(nil)

// Server exposes the running window manager to MCP clients.
type Server struct {
	daemon    Daemon
	mcpServer *mcpsdk.Server
}

// NewServer creates an MCP server backed by daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
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

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the framewm daemon is running, which display it manages and how many windows it has framed.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_frames",
		Description: "List every framed window with its client id, title, frame and client rectangles, hovered zone, maximized state and any running animation.",
	}, s.handleListFrames)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_frame",
		Description: "Ask a framed window to close. Windows that support WM_DELETE_WINDOW get a polite request; others are killed.",
	}, s.handleCloseFrame)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_maximize",
		Description: "Maximize a framed window to its monitor's work area, or restore it if already maximized.",
	}, s.handleToggleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_frame",
		Description: "Minimize (iconify) a framed window.",
	}, s.handleMinimizeFrame)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reload the framewm config file and apply the new decoration and animation settings to every frame.",
	}, s.handleReload)
}

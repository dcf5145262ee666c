// Package mcp exposes the daemon's window-management operations as MCP tools
// over stdio, so that MCP clients can inspect and rearrange the layout tree.
// Every tool is a thin wrapper over the daemon's IPC socket.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/treetile/internal/ipc"
)

const (
	ServerName    = "treetile"
	ServerVersion = "0.1.0"
)

// daemonClient is the slice of the IPC client the tools need. Tests swap in
// a fake so tool handlers can be exercised without a running daemon.
type daemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	GetTree() (*ipc.TreeData, error)
	MoveWindow(handle uint32, direction string) error
	Reload() error
}

// Server is the MCP server bridging tool calls to the treetile daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    daemonClient
}

// NewServer creates an MCP server that talks to the daemon over its socket.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
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

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window one step in a direction (left, right, up, down). Swaps with the adjacent window, descends into adjacent split containers, or crosses to the next monitor at a screen edge. Targets the focused window unless a handle is given.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_tree",
		Description: "Get the full container tree: monitors, workspaces, split containers, and windows with their layouts, size fractions, and focus state.",
	}, s.handleGetTree)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List connected monitors with their geometry, scale factor, and displayed workspace.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get daemon status: running state, window and monitor counts, and uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reload the daemon's configuration from disk and re-apply the layout.",
	}, s.handleReloadConfig)
}

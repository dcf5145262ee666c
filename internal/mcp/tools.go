package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/treetile/internal/ipc"
)

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	direction := strings.ToLower(strings.TrimSpace(args.Direction))
	switch direction {
	case "left", "right", "up", "down":
	default:
		return nil, MoveWindowOutput{}, fmt.Errorf("invalid direction %q; expected left, right, up, or down", args.Direction)
	}

	if err := s.client.MoveWindow(args.Handle, direction); err != nil {
		return nil, MoveWindowOutput{}, err
	}
	return nil, MoveWindowOutput{Direction: direction, Handle: args.Handle}, nil
}

func (s *Server) handleGetTree(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetTreeInput) (*mcpsdk.CallToolResult, GetTreeOutput, error) {
	data, err := s.client.GetTree()
	if err != nil {
		return nil, GetTreeOutput{}, err
	}

	monitors := make([]TreeNode, 0, len(data.Monitors))
	for _, node := range data.Monitors {
		monitors = append(monitors, convertTreeNode(node))
	}
	return nil, GetTreeOutput{Monitors: monitors}, nil
}

func convertTreeNode(node ipc.TreeNode) TreeNode {
	out := TreeNode{
		Type:    node.Type,
		Name:    node.Name,
		Handle:  node.Handle,
		Title:   node.Title,
		Layout:  node.Layout,
		Size:    node.Size,
		Focused: node.Focused,
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, convertTreeNode(child))
	}
	return out
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}

	monitors := make([]MonitorInfo, 0, len(data.Monitors))
	for _, mon := range data.Monitors {
		monitors = append(monitors, MonitorInfo{
			Name:               mon.Name,
			X:                  mon.X,
			Y:                  mon.Y,
			Width:              mon.Width,
			Height:             mon.Height,
			ScaleFactor:        mon.ScaleFactor,
			DisplayedWorkspace: mon.DisplayedWorkspace,
		})
	}
	return nil, ListMonitorsOutput{Monitors: monitors}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		DaemonRunning: status.DaemonRunning,
		WindowCount:   status.WindowCount,
		MonitorCount:  status.MonitorCount,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, ReloadConfigOutput, error) {
	if err := s.client.Reload(); err != nil {
		return nil, ReloadConfigOutput{}, err
	}
	return nil, ReloadConfigOutput{Reloaded: true}, nil
}

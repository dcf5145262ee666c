// Package ipc implements the daemon's control socket: newline-delimited JSON
// request/response over a unix socket. Clients are the CLI and the MCP
// server; every command that touches the tree is executed on the daemon's
// dispatch goroutine.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandGetTree     CommandType = "GET_TREE"
	CommandMoveWindow  CommandType = "MOVE_WINDOW"
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
	WindowCount   int   `json:"window_count"`
	MonitorCount  int   `json:"monitor_count"`
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	Name               string  `json:"name"`
	X                  int     `json:"x"`
	Y                  int     `json:"y"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	ScaleFactor        float64 `json:"scale_factor"`
	DisplayedWorkspace string  `json:"displayed_workspace"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// TreeNode is the wire form of one container in the tree.
type TreeNode struct {
	Type     string     `json:"type"`
	Name     string     `json:"name,omitempty"`
	Handle   uint32     `json:"handle,omitempty"`
	Title    string     `json:"title,omitempty"`
	Layout   string     `json:"layout,omitempty"`
	Size     float64    `json:"size,omitempty"`
	Focused  bool       `json:"focused,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

// TreeData represents the data returned by GET_TREE
type TreeData struct {
	Monitors []TreeNode `json:"monitors"`
}

// MoveWindowPayload represents the payload for MOVE_WINDOW. A zero handle
// means the currently focused window.
type MoveWindowPayload struct {
	Handle    uint32 `json:"handle,omitempty"`
	Direction string `json:"direction"`
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
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

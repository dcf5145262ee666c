package mcp

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Direction string `json:"direction" jsonschema:"required,Direction to move the window: left, right, up, or down"`
	Handle    uint32 `json:"handle,omitempty" jsonschema:"Window handle to move (default: the currently focused window)"`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	Direction string `json:"direction"`
	Handle    uint32 `json:"handle,omitempty"`
}

// GetTreeInput is the input for the get_tree tool.
type GetTreeInput struct{}

// TreeNode describes one container in the layout tree.
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

// GetTreeOutput is the output for the get_tree tool.
type GetTreeOutput struct {
	Monitors []TreeNode `json:"monitors"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// MonitorInfo describes one connected monitor.
type MonitorInfo struct {
	Name               string  `json:"name"`
	X                  int     `json:"x"`
	Y                  int     `json:"y"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	ScaleFactor        float64 `json:"scale_factor"`
	DisplayedWorkspace string  `json:"displayed_workspace"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	DaemonRunning bool  `json:"daemon_running"`
	WindowCount   int   `json:"window_count"`
	MonitorCount  int   `json:"monitor_count"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// ReloadConfigOutput is the output for the reload_config tool.
type ReloadConfigOutput struct {
	Reloaded bool `json:"reloaded"`
}

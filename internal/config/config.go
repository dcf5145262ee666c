// Package config defines the daemon configuration: movement amounts, the
// default workspace layout, window gaps, and the workspace roster. Config is
// loaded from a single YAML file with strict field checking so typos fail
// loudly instead of being silently ignored.
package config

import (
	"fmt"
	"strings"
)

// Config is the effective daemon configuration.
type Config struct {
	General     General      `yaml:"general"`
	Gaps        Gaps         `yaml:"gaps"`
	Workspaces  []Workspace  `yaml:"workspaces"`
	Keybindings []Keybinding `yaml:"keybindings"`
}

// General holds top-level behavior knobs.
type General struct {
	// FloatingWindowMoveAmount is how far a floating window travels per move
	// command, e.g. "5%", "20px", or a bare number (pixels).
	FloatingWindowMoveAmount string `yaml:"floating_window_move_amount"`
	// DefaultLayout is the tiling direction new workspaces start with,
	// "horizontal" or "vertical".
	DefaultLayout string `yaml:"default_layout"`
}

// Gaps configures spacing between tiled windows (inner) and between the
// tiling area and the monitor edge (outer), in pixels.
type Gaps struct {
	Inner int `yaml:"inner"`
	Outer int `yaml:"outer"`
}

// Workspace declares a named workspace and, optionally, which monitor index
// it is bound to. A negative index means "any monitor".
type Workspace struct {
	Name    string `yaml:"name"`
	Monitor int    `yaml:"monitor"`
}

// Keybinding binds a key sequence (xgbutil grammar, e.g. "Mod4-Shift-h") to
// a daemon command such as "move left" or "reload".
type Keybinding struct {
	Keys    string `yaml:"keys"`
	Command string `yaml:"command"`
}

// ParseCommand splits a keybinding command into its verb and argument.
// Supported commands are "move <left|right|up|down>" and "reload".
func ParseCommand(command string) (verb, arg string, err error) {
	fields := strings.Fields(strings.ToLower(command))
	switch {
	case len(fields) == 1 && fields[0] == "reload":
		return "reload", "", nil
	case len(fields) == 2 && fields[0] == "move":
		switch fields[1] {
		case "left", "right", "up", "down":
			return "move", fields[1], nil
		}
	}
	return "", "", fmt.Errorf("unknown command %q (want \"move <left|right|up|down>\" or \"reload\")", command)
}

// ValidationError reports a config value that failed validation, with the
// YAML path that produced it.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		General: General{
			FloatingWindowMoveAmount: "5%",
			DefaultLayout:            "horizontal",
		},
		Gaps: Gaps{Inner: 0, Outer: 0},
		Workspaces: []Workspace{
			{Name: "1", Monitor: -1},
		},
		Keybindings: []Keybinding{
			{Keys: "Mod4-Shift-h", Command: "move left"},
			{Keys: "Mod4-Shift-j", Command: "move down"},
			{Keys: "Mod4-Shift-k", Command: "move up"},
			{Keys: "Mod4-Shift-l", Command: "move right"},
		},
	}
}

// Validate checks the config for values the daemon cannot work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.General.DefaultLayout) {
	case "horizontal", "vertical":
	default:
		return &ValidationError{
			Path:    "general.default_layout",
			Message: fmt.Sprintf("unknown layout %q (want horizontal or vertical)", c.General.DefaultLayout),
		}
	}

	if _, err := ParseLength(c.General.FloatingWindowMoveAmount); err != nil {
		return &ValidationError{
			Path:    "general.floating_window_move_amount",
			Message: err.Error(),
		}
	}

	if c.Gaps.Inner < 0 {
		return &ValidationError{Path: "gaps.inner", Message: "must not be negative"}
	}
	if c.Gaps.Outer < 0 {
		return &ValidationError{Path: "gaps.outer", Message: "must not be negative"}
	}

	if len(c.Workspaces) == 0 {
		return &ValidationError{Path: "workspaces", Message: "at least one workspace is required"}
	}
	seen := make(map[string]struct{}, len(c.Workspaces))
	for i, ws := range c.Workspaces {
		if strings.TrimSpace(ws.Name) == "" {
			return &ValidationError{
				Path:    fmt.Sprintf("workspaces[%d].name", i),
				Message: "must not be empty",
			}
		}
		if _, dup := seen[ws.Name]; dup {
			return &ValidationError{
				Path:    fmt.Sprintf("workspaces[%d].name", i),
				Message: fmt.Sprintf("duplicate workspace name %q", ws.Name),
			}
		}
		seen[ws.Name] = struct{}{}
	}

	for i, kb := range c.Keybindings {
		if strings.TrimSpace(kb.Keys) == "" {
			return &ValidationError{
				Path:    fmt.Sprintf("keybindings[%d].keys", i),
				Message: "must not be empty",
			}
		}
		if _, _, err := ParseCommand(kb.Command); err != nil {
			return &ValidationError{
				Path:    fmt.Sprintf("keybindings[%d].command", i),
				Message: err.Error(),
			}
		}
	}
	return nil
}

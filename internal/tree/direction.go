package tree

import "fmt"

// Layout is the axis assignment of a split-like container (workspace or
// split container).
type Layout uint8

const (
	LayoutHorizontal Layout = iota
	LayoutVertical
)

// Inverse returns the perpendicular layout.
func (l Layout) Inverse() Layout {
	if l == LayoutHorizontal {
		return LayoutVertical
	}
	return LayoutHorizontal
}

func (l Layout) String() string {
	if l == LayoutHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseLayout parses a layout name from config or IPC input.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "horizontal":
		return LayoutHorizontal, nil
	case "vertical":
		return LayoutVertical, nil
	}
	return LayoutHorizontal, fmt.Errorf("unknown layout %q (expected horizontal or vertical)", s)
}

// Direction is a movement or spatial-lookup direction.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

var directionNames = map[Direction]string{
	DirUp:    "up",
	DirDown:  "down",
	DirLeft:  "left",
	DirRight: "right",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("direction(%d)", d)
}

// ParseDirection parses a direction name from config or IPC input.
func ParseDirection(s string) (Direction, error) {
	for dir, name := range directionNames {
		if name == s {
			return dir, nil
		}
	}
	return DirUp, fmt.Errorf("unknown direction %q (expected up, down, left or right)", s)
}

// Layout returns the layout axis that movement along d operates on:
// left/right map to horizontal, up/down to vertical.
func (d Direction) Layout() Layout {
	if d == DirLeft || d == DirRight {
		return LayoutHorizontal
	}
	return LayoutVertical
}

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// IsLowering reports whether d points toward the start of a container's
// child order ({Up, Left}); {Down, Right} point toward the end.
func (d Direction) IsLowering() bool {
	return d == DirUp || d == DirLeft
}

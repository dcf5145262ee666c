package platform

// WindowHandle is a platform-neutral identifier for a live OS window.
type WindowHandle uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() int { return r.X + r.Width/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() int { return r.Y + r.Height/2 }

// TranslateToCenter returns a copy of r repositioned so that it is centered
// within outer, keeping its own width and height.
func (r Rect) TranslateToCenter(outer Rect) Rect {
	return Rect{
		X:      outer.X + outer.Width/2 - r.Width/2,
		Y:      outer.Y + outer.Height/2 - r.Height/2,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Display describes a physical display.
type Display struct {
	ID          int
	Name        string
	Bounds      Rect
	ScaleFactor float64
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	Handle WindowHandle
	Title  string
	Bounds Rect
}

// NotificationKind enumerates inbound window-system notifications.
type NotificationKind int

const (
	WindowCreated NotificationKind = iota
	WindowDestroyed
	WindowTitleChanged
	WindowFocused
)

// Notification is a single inbound window-system event. The daemon loop
// serializes notifications onto the dispatch thread before they reach the bus.
type Notification struct {
	Kind   NotificationKind
	Window WindowHandle
	Title  string
	Bounds Rect
}

// Backend abstracts window-system operations. The core never talks to the OS
// directly; redraw and focus commands go through this interface.
type Backend interface {
	Displays() ([]Display, error)
	Windows() ([]Window, error)
	MoveResize(handle WindowHandle, bounds Rect) error
	SetFocus(handle WindowHandle) error
	Events() <-chan Notification
	Close()
}

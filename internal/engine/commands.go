package engine

import (
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

// Structural commands. All tree mutation funnels through these so there is a
// single serialization point to instrument and test; the movement logic never
// writes parent/child links directly.

// AttachContainerCommand links a detached container under a parent at the
// given child index (-1 appends) and rebalances sibling size percentages.
type AttachContainerCommand struct {
	Container tree.NodeID
	Parent    tree.NodeID
	Index     int
}

// DetachContainerCommand unlinks a container from its parent, renormalizes
// the remaining siblings' sizes, and collapses the parent split if it became
// empty.
type DetachContainerCommand struct {
	Container tree.NodeID
}

// MoveContainerWithinTreeCommand re-parents a container, or reorders it when
// the target parent is its current parent. TargetIndex is interpreted against
// the target's child list with the container removed; -1 appends.
type MoveContainerWithinTreeCommand struct {
	Container    tree.NodeID
	TargetParent tree.NodeID
	TargetIndex  int
}

// ChangeContainerLayoutCommand switches the layout axis of a workspace or
// split container.
type ChangeContainerLayoutCommand struct {
	Container tree.NodeID
	Layout    tree.Layout
}

// RedrawContainersCommand flushes all pending geometry changes to the
// window system.
type RedrawContainersCommand struct{}

// MoveWindowCommand moves a window one step in a direction. Dispatches on the
// window's variant: tiling windows move through the tree, floating windows
// move by a configured pixel delta.
type MoveWindowCommand struct {
	Window    tree.NodeID
	Direction tree.Direction
}

// FocusWindowCommand records a window as focused, syncs native focus, and
// notifies subscribers.
type FocusWindowCommand struct {
	Window tree.NodeID
}

// SyncNativeFocusCommand pushes the tree's focused window to the OS.
type SyncNativeFocusCommand struct{}

// AddWindowCommand registers a newly created OS window in the tree.
type AddWindowCommand struct {
	Handle   platform.WindowHandle
	Title    string
	Bounds   platform.Rect
	Floating bool
}

// RemoveWindowCommand drops a closed OS window from the tree. Unknown handles
// are a benign no-op.
type RemoveWindowCommand struct {
	Handle platform.WindowHandle
}

// UpdateWindowTitleCommand records a window's new title.
type UpdateWindowTitleCommand struct {
	Window tree.NodeID
	Title  string
}

// RunWindowRulesCommand re-evaluates user window rules against a window,
// typically after its title changed.
type RunWindowRulesCommand struct {
	Window tree.NodeID
}

// FocusChangedEvent announces that a window gained focus or changed
// workspace. Consumed by status-bar-style collaborators.
type FocusChangedEvent struct {
	Window tree.NodeID
}

// WindowTitleChangedEvent is the inbound notification that an OS window's
// title changed. Handles that are no longer tracked are silently ignored.
type WindowTitleChangedEvent struct {
	Handle platform.WindowHandle
	Title  string
}

// Package tree holds the container tree: the arrangement of windows across
// monitors, workspaces and split containers. Nodes live in an arena and are
// addressed by stable NodeIDs, so re-parenting is an index rewrite rather
// than a pointer dance. The tree only offers structural primitives; size
// rebalancing and all higher-level mutation policy live in the engine's
// command handlers.
package tree

import (
	"fmt"
	"slices"

	"github.com/1broseidon/treetile/internal/platform"
)

// NodeID is a stable handle for a node in the tree. The zero value is None.
type NodeID int

// None is the null node handle.
const None NodeID = 0

// Kind discriminates the container variants.
type Kind uint8

const (
	KindMonitor Kind = iota + 1
	KindWorkspace
	KindSplit
	KindTilingWindow
	KindFloatingWindow
)

func (k Kind) String() string {
	switch k {
	case KindMonitor:
		return "monitor"
	case KindWorkspace:
		return "workspace"
	case KindSplit:
		return "split"
	case KindTilingWindow:
		return "tiling_window"
	case KindFloatingWindow:
		return "floating_window"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsWindow reports whether the kind is one of the window variants.
func (k Kind) IsWindow() bool {
	return k == KindTilingWindow || k == KindFloatingWindow
}

type node struct {
	id       NodeID
	kind     Kind
	parent   NodeID
	children []NodeID
	// focus holds children ordered by recency of focus, most recent first.
	// Independent of the spatial order in children.
	focus []NodeID

	// Monitor fields.
	bounds    platform.Rect
	scale     float64
	displayed NodeID

	// Monitor and workspace name; last known title for windows.
	name string

	// Workspace and split share a layout axis.
	layout Layout

	// Split and tiling window carry a proportional share of the parent's
	// extent along the parent's layout axis.
	size float64

	// Window fields.
	handle     platform.WindowHandle
	placement  platform.Rect
	pendingDPI bool
}

// Tree is the arena of containers. It is not safe for concurrent use; all
// mutation is serialized through the command bus on a single thread.
type Tree struct {
	nodes    map[NodeID]*node
	next     NodeID
	monitors []NodeID
	byHandle map[platform.WindowHandle]NodeID
	focused  NodeID
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		nodes:    make(map[NodeID]*node),
		next:     1,
		byHandle: make(map[platform.WindowHandle]NodeID),
	}
}

func (t *Tree) alloc(kind Kind) *node {
	n := &node{id: t.next, kind: kind, size: 1.0}
	t.nodes[n.id] = n
	t.next++
	return n
}

// get panics on a dangling handle: passing a removed or never-allocated node
// to the tree is a programming error, not a reachable user state.
func (t *Tree) get(id NodeID) *node {
	n, ok := t.nodes[id]
	if !ok {
		panic(fmt.Sprintf("tree: no node with id %d", id))
	}
	return n
}

// AddMonitor registers a root-level monitor. Monitors are kept in insertion
// order; spatial ordering is computed per query.
func (t *Tree) AddMonitor(name string, bounds platform.Rect, scale float64) NodeID {
	n := t.alloc(KindMonitor)
	n.name = name
	n.bounds = bounds
	if scale <= 0 {
		scale = 1.0
	}
	n.scale = scale
	t.monitors = append(t.monitors, n.id)
	return n.id
}

// AddWorkspace creates a named workspace under a monitor. The first workspace
// added to a monitor becomes its displayed workspace.
func (t *Tree) AddWorkspace(monitor NodeID, name string, layout Layout) NodeID {
	m := t.get(monitor)
	if m.kind != KindMonitor {
		panic(fmt.Sprintf("tree: AddWorkspace on %s node", m.kind))
	}
	n := t.alloc(KindWorkspace)
	n.name = name
	n.layout = layout
	n.parent = monitor
	m.children = append(m.children, n.id)
	m.focus = append(m.focus, n.id)
	if m.displayed == None {
		m.displayed = n.id
	}
	return n.id
}

// NewSplit creates a detached split container.
func (t *Tree) NewSplit(layout Layout, size float64) NodeID {
	n := t.alloc(KindSplit)
	n.layout = layout
	n.size = size
	return n.id
}

// NewTilingWindow creates a detached tiling window bound to an OS handle.
// The placement rectangle is retained so a later switch to floating (or a
// cross-monitor move) starts from a sane position.
func (t *Tree) NewTilingWindow(handle platform.WindowHandle, placement platform.Rect) NodeID {
	n := t.alloc(KindTilingWindow)
	n.handle = handle
	n.placement = placement
	t.byHandle[handle] = n.id
	return n.id
}

// NewFloatingWindow creates a detached floating window bound to an OS handle.
func (t *Tree) NewFloatingWindow(handle platform.WindowHandle, placement platform.Rect) NodeID {
	n := t.alloc(KindFloatingWindow)
	n.handle = handle
	n.placement = placement
	t.byHandle[handle] = n.id
	return n.id
}

// Attach links a detached node under parent at the given child index.
// Index -1 appends. Attach does not rebalance sizes; that is the attach
// command handler's job.
func (t *Tree) Attach(child, parent NodeID, index int) {
	c := t.get(child)
	p := t.get(parent)
	if c.parent != None {
		panic(fmt.Sprintf("tree: attach of %s %d which already has a parent", c.kind, child))
	}
	if index < 0 || index > len(p.children) {
		index = len(p.children)
	}
	p.children = slices.Insert(p.children, index, child)
	p.focus = append(p.focus, child)
	c.parent = parent
}

// Detach unlinks a node from its parent. The node and its subtree stay alive
// in the arena; callers re-attach or Remove it.
func (t *Tree) Detach(child NodeID) {
	c := t.get(child)
	if c.parent == None {
		return
	}
	p := t.get(c.parent)
	if i := slices.Index(p.children, child); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	if i := slices.Index(p.focus, child); i >= 0 {
		p.focus = slices.Delete(p.focus, i, i+1)
	}
	c.parent = None
}

// Reorder moves a node to a new index among its current siblings. The index
// is interpreted against the child list with the node removed, so callers can
// pass a raw target position without adjusting for the removal themselves.
func (t *Tree) Reorder(child NodeID, index int) {
	c := t.get(child)
	if c.parent == None {
		return
	}
	p := t.get(c.parent)
	i := slices.Index(p.children, child)
	if i < 0 {
		return
	}
	p.children = slices.Delete(p.children, i, i+1)
	if index < 0 {
		index = 0
	}
	if index > len(p.children) {
		index = len(p.children)
	}
	p.children = slices.Insert(p.children, index, child)
}

// Remove detaches a node and deletes it and its whole subtree from the arena.
func (t *Tree) Remove(id NodeID) {
	t.Detach(id)
	t.removeSubtree(id)
}

func (t *Tree) removeSubtree(id NodeID) {
	n := t.get(id)
	for _, child := range slices.Clone(n.children) {
		t.removeSubtree(child)
	}
	if n.kind.IsWindow() {
		delete(t.byHandle, n.handle)
	}
	if n.kind == KindMonitor {
		if i := slices.Index(t.monitors, id); i >= 0 {
			t.monitors = slices.Delete(t.monitors, i, i+1)
		}
	}
	if t.focused == id {
		t.focused = None
	}
	delete(t.nodes, id)
}

// Kind returns the node's variant.
func (t *Tree) Kind(id NodeID) Kind { return t.get(id).kind }

// Parent returns the node's parent, or None for root-level monitors.
func (t *Tree) Parent(id NodeID) NodeID { return t.get(id).parent }

// Children returns the node's spatial child order. The returned slice is
// owned by the tree and must not be modified.
func (t *Tree) Children(id NodeID) []NodeID { return t.get(id).children }

// FocusOrder returns the node's children ordered by recency of focus, most
// recent first. The returned slice is owned by the tree.
func (t *Tree) FocusOrder(id NodeID) []NodeID { return t.get(id).focus }

// Layout returns the layout axis of a workspace or split container.
func (t *Tree) Layout(id NodeID) Layout {
	n := t.get(id)
	switch n.kind {
	case KindWorkspace, KindSplit:
		return n.layout
	}
	panic(fmt.Sprintf("tree: Layout of %s node", n.kind))
}

// SetLayout changes the layout axis of a workspace or split container.
func (t *Tree) SetLayout(id NodeID, layout Layout) {
	n := t.get(id)
	switch n.kind {
	case KindWorkspace, KindSplit:
		n.layout = layout
	default:
		panic(fmt.Sprintf("tree: SetLayout of %s node", n.kind))
	}
}

// IsResizable reports whether the node carries a SizePercentage (the
// Resizable capability: splits and tiling windows).
func (t *Tree) IsResizable(id NodeID) bool {
	k := t.get(id).kind
	return k == KindSplit || k == KindTilingWindow
}

// SizePercentage returns the node's share of its parent's extent along the
// parent's layout axis.
func (t *Tree) SizePercentage(id NodeID) float64 { return t.get(id).size }

// SetSizePercentage sets the node's proportional share.
func (t *Tree) SetSizePercentage(id NodeID, size float64) { t.get(id).size = size }

// Handle returns the OS window handle of a window node.
func (t *Tree) Handle(id NodeID) platform.WindowHandle {
	n := t.get(id)
	if !n.kind.IsWindow() {
		panic(fmt.Sprintf("tree: Handle of %s node", n.kind))
	}
	return n.handle
}

// WindowByHandle resolves an OS handle to its tree node. Unknown handles are
// not an error: the window may have closed before the notification arrived.
func (t *Tree) WindowByHandle(handle platform.WindowHandle) (NodeID, bool) {
	id, ok := t.byHandle[handle]
	return id, ok
}

// FloatingPlacement returns the window's absolute screen rectangle. Defined
// for both window variants; for tiling windows it is the remembered placement
// used when the window later floats or crosses monitors.
func (t *Tree) FloatingPlacement(id NodeID) platform.Rect { return t.get(id).placement }

// SetFloatingPlacement commits a new placement rectangle.
func (t *Tree) SetFloatingPlacement(id NodeID, r platform.Rect) { t.get(id).placement = r }

// PendingDPIAdjustment reports whether the window needs a follow-up redraw to
// correct scale-factor artifacts after a cross-monitor move.
func (t *Tree) PendingDPIAdjustment(id NodeID) bool { return t.get(id).pendingDPI }

// SetPendingDPIAdjustment flags or clears the follow-up redraw.
func (t *Tree) SetPendingDPIAdjustment(id NodeID, pending bool) { t.get(id).pendingDPI = pending }

// Bounds returns a monitor's pixel bounds.
func (t *Tree) Bounds(id NodeID) platform.Rect { return t.get(id).bounds }

// ScaleFactor returns a monitor's DPI scale factor.
func (t *Tree) ScaleFactor(id NodeID) float64 { return t.get(id).scale }

// Name returns a monitor's or workspace's name.
func (t *Tree) Name(id NodeID) string { return t.get(id).name }

// WindowTitle returns the last known title of a window node.
func (t *Tree) WindowTitle(id NodeID) string {
	n := t.get(id)
	if !n.kind.IsWindow() {
		panic(fmt.Sprintf("tree: WindowTitle of %s node", n.kind))
	}
	return n.name
}

// SetWindowTitle records a window's title.
func (t *Tree) SetWindowTitle(id NodeID, title string) {
	n := t.get(id)
	if !n.kind.IsWindow() {
		panic(fmt.Sprintf("tree: SetWindowTitle of %s node", n.kind))
	}
	n.name = title
}

// Monitors returns all monitors in registration order.
func (t *Tree) Monitors() []NodeID { return t.monitors }

// DisplayedWorkspace returns the workspace currently shown on a monitor.
func (t *Tree) DisplayedWorkspace(monitor NodeID) NodeID {
	n := t.get(monitor)
	if n.kind != KindMonitor {
		panic(fmt.Sprintf("tree: DisplayedWorkspace of %s node", n.kind))
	}
	return n.displayed
}

// SetDisplayedWorkspace switches which workspace a monitor shows.
func (t *Tree) SetDisplayedWorkspace(monitor, workspace NodeID) {
	n := t.get(monitor)
	if n.kind != KindMonitor {
		panic(fmt.Sprintf("tree: SetDisplayedWorkspace of %s node", n.kind))
	}
	n.displayed = workspace
}

// Focused returns the currently focused node (usually a window), or None.
func (t *Tree) Focused() NodeID { return t.focused }

// SetFocused records the focused node and promotes it in the focus order of
// every ancestor, so FocusedDescendant walks back to it.
func (t *Tree) SetFocused(id NodeID) {
	t.focused = id
	child := id
	for parent := t.get(id).parent; parent != None; parent = t.get(parent).parent {
		p := t.get(parent)
		if i := slices.Index(p.focus, child); i > 0 {
			p.focus = slices.Delete(p.focus, i, i+1)
			p.focus = slices.Insert(p.focus, 0, child)
		}
		child = parent
	}
}

// FocusedDescendant follows the focus order from id down to the most recently
// focused leaf. Returns id itself if it has no children.
func (t *Tree) FocusedDescendant(id NodeID) NodeID {
	n := t.get(id)
	for len(n.focus) > 0 {
		n = t.get(n.focus[0])
	}
	return n.id
}

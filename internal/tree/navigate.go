package tree

import (
	"iter"
	"slices"
)

// Ancestors yields the node's parent chain, nearest first.
func (t *Tree) Ancestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for cur := t.get(id).parent; cur != None; cur = t.get(cur).parent {
			if !yield(cur) {
				return
			}
		}
	}
}

// SelfAndAncestors yields the node itself followed by its parent chain.
func (t *Tree) SelfAndAncestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !yield(id) {
			return
		}
		for cur := t.get(id).parent; cur != None; cur = t.get(cur).parent {
			if !yield(cur) {
				return
			}
		}
	}
}

// Descendants yields the node's subtree depth-first, excluding the node.
func (t *Tree) Descendants(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		t.walk(id, yield)
	}
}

func (t *Tree) walk(id NodeID, yield func(NodeID) bool) bool {
	for _, child := range t.get(id).children {
		if !yield(child) {
			return false
		}
		if !t.walk(child, yield) {
			return false
		}
	}
	return true
}

// Index returns the node's position within its parent's spatial child order,
// or -1 for root-level nodes.
func (t *Tree) Index(id NodeID) int {
	parent := t.get(id).parent
	if parent == None {
		return -1
	}
	return slices.Index(t.get(parent).children, id)
}

// NextSibling returns the spatially next sibling, or None at the end.
func (t *Tree) NextSibling(id NodeID) NodeID {
	parent := t.get(id).parent
	if parent == None {
		return None
	}
	siblings := t.get(parent).children
	i := slices.Index(siblings, id)
	if i < 0 || i+1 >= len(siblings) {
		return None
	}
	return siblings[i+1]
}

// PrevSibling returns the spatially previous sibling, or None at the start.
func (t *Tree) PrevSibling(id NodeID) NodeID {
	parent := t.get(id).parent
	if parent == None {
		return None
	}
	siblings := t.get(parent).children
	i := slices.Index(siblings, id)
	if i <= 0 {
		return None
	}
	return siblings[i-1]
}

// ResizableSiblings returns the node's siblings that carry the Resizable
// capability, in spatial order, excluding the node itself.
func (t *Tree) ResizableSiblings(id NodeID) []NodeID {
	parent := t.get(id).parent
	if parent == None {
		return nil
	}
	var out []NodeID
	for _, sib := range t.get(parent).children {
		if sib != id && t.IsResizable(sib) {
			out = append(out, sib)
		}
	}
	return out
}

// ResizableChildren returns the node's Resizable children in spatial order.
func (t *Tree) ResizableChildren(id NodeID) []NodeID {
	var out []NodeID
	for _, child := range t.get(id).children {
		if t.IsResizable(child) {
			out = append(out, child)
		}
	}
	return out
}

// SiblingInDirection returns the nearest Resizable sibling toward dir, or
// None. Non-resizable siblings (floating windows) are skipped.
func (t *Tree) SiblingInDirection(id NodeID, dir Direction) NodeID {
	parent := t.get(id).parent
	if parent == None {
		return None
	}
	siblings := t.get(parent).children
	i := slices.Index(siblings, id)
	if i < 0 {
		return None
	}
	if dir.IsLowering() {
		for j := i - 1; j >= 0; j-- {
			if t.IsResizable(siblings[j]) {
				return siblings[j]
			}
		}
		return None
	}
	for j := i + 1; j < len(siblings); j++ {
		if t.IsResizable(siblings[j]) {
			return siblings[j]
		}
	}
	return None
}

// WorkspaceOf returns the nearest self-or-ancestor workspace, or None.
func (t *Tree) WorkspaceOf(id NodeID) NodeID {
	for cur := range t.SelfAndAncestors(id) {
		if t.get(cur).kind == KindWorkspace {
			return cur
		}
	}
	return None
}

// MonitorOf returns the monitor ancestor of a node, or None. Every attached
// window has one (tree invariant).
func (t *Tree) MonitorOf(id NodeID) NodeID {
	for cur := range t.SelfAndAncestors(id) {
		if t.get(cur).kind == KindMonitor {
			return cur
		}
	}
	return None
}

// DescendantInDirection locates the innermost node on the given edge of a
// subtree: leaves return themselves, split-like containers descend into the
// first child for {Up, Left} and the last child for {Down, Right}.
func (t *Tree) DescendantInDirection(id NodeID, dir Direction) NodeID {
	n := t.get(id)
	switch n.kind {
	case KindSplit, KindWorkspace:
		if len(n.children) == 0 {
			return id
		}
		if dir.IsLowering() {
			return t.DescendantInDirection(n.children[0], dir)
		}
		return t.DescendantInDirection(n.children[len(n.children)-1], dir)
	}
	return id
}

// MonitorInDirection returns the nearest monitor whose center lies in dir
// from the given monitor, or None if it is already the extreme monitor in
// that direction. A monitor on the same row is not above or below, and one
// in the same column is not left or right; such monitors never qualify.
func (t *Tree) MonitorInDirection(dir Direction, from NodeID) NodeID {
	origin := t.get(from).bounds

	best := None
	var bestDist, bestCross int
	for _, mon := range t.monitors {
		if mon == from {
			continue
		}
		b := t.get(mon).bounds

		var dist, cross int
		if dir.Layout() == LayoutHorizontal {
			dist = b.CenterX() - origin.CenterX()
			cross = abs(b.CenterY() - origin.CenterY())
		} else {
			dist = b.CenterY() - origin.CenterY()
			cross = abs(b.CenterX() - origin.CenterX())
		}
		if dir.IsLowering() {
			dist = -dist
		}
		if dist <= 0 {
			continue
		}
		if best == None || dist < bestDist || (dist == bestDist && cross < bestCross) {
			best, bestDist, bestCross = mon, dist, cross
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// HasDPIDifference reports whether two monitors have differing scale factors.
// Used to flag a pending re-adjustment after a cross-monitor move, where a
// single reposition does not immediately apply the new scaling.
func (t *Tree) HasDPIDifference(monitorA, monitorB NodeID) bool {
	return t.get(monitorA).scale != t.get(monitorB).scale
}

package engine

import (
	"github.com/1broseidon/treetile/internal/bus"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

// moveTilingWindow moves a tiling window one step in a direction. The
// algorithm decides between four outcomes: crossing to the neighboring
// monitor's workspace, swapping with a sibling, descending into a sibling
// split, or restructuring the workspace under a new layout axis. Every branch
// either fully applies or leaves the tree untouched.
func (e *Engine) moveTilingWindow(win tree.NodeID, dir tree.Direction) bus.Response {
	layoutForDir := dir.Layout()
	parent := e.tree.Parent(win)
	parentMatches := e.tree.Layout(parent) == layoutForDir
	hasResizableSiblings := len(e.tree.ResizableSiblings(win)) > 0

	// A window sitting at the workspace edge with nothing to move past goes
	// to the neighboring monitor instead.
	if e.tree.Kind(parent) == tree.KindWorkspace &&
		(!hasResizableSiblings || parentMatches) &&
		e.tree.SiblingInDirection(win, dir) == tree.None {
		if e.moveToWorkspaceInDirection(win, dir) {
			return bus.Ok
		}
		// No monitor that way; the in-workspace logic below still applies.
	}

	ancestorWithLayout := e.ancestorWithLayout(win, layoutForDir)
	if ancestorWithLayout == tree.None {
		ancestorWithLayout = e.restructureWorkspace(win, layoutForDir)
		parentMatches = true
	}

	if parentMatches {
		if sib := e.tree.SiblingInDirection(win, dir); sib != tree.None {
			if e.tree.Kind(sib) == tree.KindSplit {
				e.insertIntoSplit(win, sib, dir)
			} else {
				// In-place swap: reorder within the same parent.
				target := e.tree.Index(sib)
				if !dir.IsLowering() {
					target++
				}
				e.bus.Invoke(MoveContainerWithinTreeCommand{
					Container:    win,
					TargetParent: e.tree.Parent(win),
					TargetIndex:  target,
				})
			}
			e.bus.Invoke(RedrawContainersCommand{})
			return bus.Ok
		}
	}

	// Move out of the enclosing split into the ancestor whose axis matches.
	insertionRef := win
	for e.tree.Parent(insertionRef) != ancestorWithLayout {
		insertionRef = e.tree.Parent(insertionRef)
	}
	sib := e.tree.SiblingInDirection(insertionRef, dir)
	if sib != tree.None && e.tree.Kind(sib) == tree.KindSplit {
		e.insertIntoSplit(win, sib, dir)
	} else {
		index := e.tree.Index(insertionRef)
		if !dir.IsLowering() {
			index++
		}
		e.bus.Invoke(MoveContainerWithinTreeCommand{
			Container:    win,
			TargetParent: ancestorWithLayout,
			TargetIndex:  index,
		})
	}
	e.bus.Invoke(RedrawContainersCommand{})
	return bus.Ok
}

// ancestorWithLayout returns the nearest split-like ancestor whose layout
// axis matches, or None. The workspace counts: it is the outermost split.
func (e *Engine) ancestorWithLayout(win tree.NodeID, layout tree.Layout) tree.NodeID {
	for anc := range e.tree.Ancestors(win) {
		switch e.tree.Kind(anc) {
		case tree.KindSplit, tree.KindWorkspace:
			if e.tree.Layout(anc) == layout {
				return anc
			}
		}
	}
	return tree.None
}

// restructureWorkspace flips the workspace onto the requested axis and wraps
// the window's current siblings in a split that preserves their arrangement
// on the old axis. The window and the new split each take half the workspace;
// the window's former share is spread evenly over the wrapped siblings.
// Returns the workspace, which now is the ancestor with the requested layout.
func (e *Engine) restructureWorkspace(win tree.NodeID, layout tree.Layout) tree.NodeID {
	ws := e.tree.WorkspaceOf(win)
	siblings := e.tree.ResizableSiblings(win)

	e.bus.Invoke(ChangeContainerLayoutCommand{Container: ws, Layout: layout})
	if len(siblings) == 0 {
		return ws
	}

	// Snapshot shares before any detach renormalizes them.
	winShare := e.tree.SizePercentage(win)
	shares := make([]float64, len(siblings))
	for i, sib := range siblings {
		shares[i] = e.tree.SizePercentage(sib)
	}
	increment := winShare / float64(len(siblings))

	split := e.tree.NewSplit(layout.Inverse(), 0.5)
	for i := len(siblings) - 1; i >= 0; i-- {
		e.bus.Invoke(DetachContainerCommand{Container: siblings[i]})
		e.bus.Invoke(AttachContainerCommand{Container: siblings[i], Parent: split, Index: -1})
	}
	e.bus.Invoke(AttachContainerCommand{Container: split, Parent: ws, Index: -1})

	for i, sib := range siblings {
		e.tree.SetSizePercentage(sib, shares[i]+increment)
	}
	e.tree.SetSizePercentage(win, 0.5)
	e.tree.SetSizePercentage(split, 0.5)
	return ws
}

// insertIntoSplit places the window next to the innermost node on the facing
// edge of a neighboring split subtree.
func (e *Engine) insertIntoSplit(win, split tree.NodeID, dir tree.Direction) {
	target := e.tree.DescendantInDirection(split, dir.Inverse())
	targetParent := e.tree.Parent(target)
	index := e.tree.Index(target)
	if e.tree.Layout(targetParent) != dir.Layout() || dir.IsLowering() {
		index++
	}
	e.bus.Invoke(MoveContainerWithinTreeCommand{
		Container:    win,
		TargetParent: targetParent,
		TargetIndex:  index,
	})
}

// moveToWorkspaceInDirection re-parents a window onto the neighboring
// monitor's displayed workspace. Returns false when there is no monitor or
// displayed workspace that way, with no state changed.
func (e *Engine) moveToWorkspaceInDirection(win tree.NodeID, dir tree.Direction) bool {
	mon := e.tree.MonitorOf(win)
	target := e.tree.MonitorInDirection(dir, mon)
	if target == tree.None {
		return false
	}
	ws := e.tree.DisplayedWorkspace(target)
	if ws == tree.None {
		return false
	}

	if e.tree.HasDPIDifference(mon, target) {
		e.tree.SetPendingDPIAdjustment(win, true)
	}
	// Keep the remembered floating placement sane on the new monitor, so a
	// later switch to floating does not land on the old one.
	placement := e.tree.FloatingPlacement(win).TranslateToCenter(e.tree.Bounds(target))
	e.tree.SetFloatingPlacement(win, placement)

	index := -1
	if dir.IsLowering() {
		index = 0
	}
	e.bus.Invoke(MoveContainerWithinTreeCommand{
		Container:    win,
		TargetParent: ws,
		TargetIndex:  index,
	})
	e.bus.Invoke(RedrawContainersCommand{})
	// Focus follows the window across workspaces, including native focus.
	e.bus.Invoke(FocusWindowCommand{Window: win})
	return true
}

// moveFloatingWindow shifts a floating window by the configured increment,
// clamping at the top screen edge and hopping monitors once the window's
// center crosses the boundary.
func (e *Engine) moveFloatingWindow(win tree.NodeID, dir tree.Direction) bus.Response {
	mon := e.tree.MonitorOf(win)
	monBounds := e.tree.Bounds(mon)
	delta := e.moveAmount.ToPixels(monBounds.Width)

	rect := e.tree.FloatingPlacement(win)
	switch dir {
	case tree.DirUp:
		rect.Y -= delta
	case tree.DirDown:
		rect.Y += delta
	case tree.DirLeft:
		rect.X -= delta
	case tree.DirRight:
		rect.X += delta
	}

	// Keep the title bar reachable: never push the top edge above a topmost
	// monitor.
	if rect.Y < monBounds.Y && e.tree.MonitorInDirection(tree.DirUp, mon) == tree.None {
		rect.Y = monBounds.Y
	}

	if e.centerCrossedEdge(rect, monBounds, dir) {
		target := e.tree.MonitorInDirection(dir, mon)
		if target == tree.None {
			return bus.Ok
		}
		ws := e.tree.DisplayedWorkspace(target)
		if ws == tree.None {
			return bus.Ok
		}
		if e.tree.HasDPIDifference(mon, target) {
			e.tree.SetPendingDPIAdjustment(win, true)
		}
		e.bus.Invoke(MoveContainerWithinTreeCommand{
			Container:    win,
			TargetParent: ws,
			TargetIndex:  -1,
		})
		e.bus.Invoke(FocusWindowCommand{Window: win})
	}

	e.tree.SetFloatingPlacement(win, rect)
	e.markDirty(win)
	e.bus.Invoke(RedrawContainersCommand{})
	return bus.Ok
}

// centerCrossedEdge reports whether the rectangle's center point left the
// monitor through the edge matching dir.
func (e *Engine) centerCrossedEdge(rect, mon platform.Rect, dir tree.Direction) bool {
	switch dir {
	case tree.DirUp:
		return rect.CenterY() < mon.Y
	case tree.DirDown:
		return rect.CenterY() >= mon.Y+mon.Height
	case tree.DirLeft:
		return rect.CenterX() < mon.X
	case tree.DirRight:
		return rect.CenterX() >= mon.X+mon.Width
	}
	return false
}

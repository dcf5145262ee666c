package engine

import (
	"github.com/1broseidon/treetile/internal/config"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

// LayoutWorkspace computes the on-screen rectangle of every window under a
// workspace. Tiling windows partition the monitor's bounds along each split's
// axis by their size percentages, with inner gaps between siblings and an
// outer gap against the monitor edge. Floating windows keep their own
// placement.
func LayoutWorkspace(t *tree.Tree, ws tree.NodeID, gaps config.Gaps) map[tree.NodeID]platform.Rect {
	area := shrink(t.Bounds(t.Parent(ws)), gaps.Outer)
	out := make(map[tree.NodeID]platform.Rect)
	layoutInto(t, ws, area, gaps.Inner, out)
	return out
}

func layoutInto(t *tree.Tree, id tree.NodeID, area platform.Rect, inner int, out map[tree.NodeID]platform.Rect) {
	switch t.Kind(id) {
	case tree.KindTilingWindow:
		out[id] = area
		return
	case tree.KindFloatingWindow:
		out[id] = t.FloatingPlacement(id)
		return
	}

	// Floating children float above the partitioned area.
	for _, child := range t.Children(id) {
		if t.Kind(child) == tree.KindFloatingWindow {
			out[child] = t.FloatingPlacement(child)
		}
	}

	resizable := t.ResizableChildren(id)
	if len(resizable) == 0 {
		return
	}

	horizontal := t.Layout(id) == tree.LayoutHorizontal
	total := area.Height
	offset := area.Y
	if horizontal {
		total = area.Width
		offset = area.X
	}
	usable := total - inner*(len(resizable)-1)

	for i, child := range resizable {
		extent := int(t.SizePercentage(child) * float64(usable))
		if i == len(resizable)-1 {
			// The last child absorbs rounding so the partition exactly fills
			// the area.
			if horizontal {
				extent = area.X + area.Width - offset
			} else {
				extent = area.Y + area.Height - offset
			}
		}
		childArea := area
		if horizontal {
			childArea.X = offset
			childArea.Width = extent
		} else {
			childArea.Y = offset
			childArea.Height = extent
		}
		layoutInto(t, child, childArea, inner, out)
		offset += extent + inner
	}
}

func shrink(r platform.Rect, by int) platform.Rect {
	return platform.Rect{
		X:      r.X + by,
		Y:      r.Y + by,
		Width:  r.Width - 2*by,
		Height: r.Height - 2*by,
	}
}

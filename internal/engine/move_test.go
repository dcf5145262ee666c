package engine

import (
	"math"
	"testing"

	"github.com/1broseidon/treetile/internal/bus"
	"github.com/1broseidon/treetile/internal/config"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

func TestMoveTiling_SwapWithSibling(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws, 100)
	bWin := attachWindow(t, tr, b, ws, 101)

	resp := b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirRight})
	if !resp.Ok {
		t.Fatalf("expected ok response")
	}

	if got := tr.Children(ws); got[0] != bWin || got[1] != a {
		t.Fatalf("expected order [b a], got %v", got)
	}
	if got := tr.SizePercentage(a); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("swap changed size of a: %v", got)
	}
	if got := tr.SizePercentage(bWin); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("swap changed size of b: %v", got)
	}
	checkShareInvariant(t, tr)

	// Swapping back restores the original order.
	b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirLeft})
	if got := tr.Children(ws); got[0] != a || got[1] != bWin {
		t.Fatalf("expected order [a b] after swap back, got %v", got)
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_RestructuresWorkspaceOnAxisMismatch(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws, 100)
	bWin := attachWindow(t, tr, b, ws, 101)
	c := attachWindow(t, tr, b, ws, 102)

	b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirUp})

	if got := tr.Layout(ws); got != tree.LayoutVertical {
		t.Fatalf("expected workspace layout to flip to vertical, got %v", got)
	}
	children := tr.Children(ws)
	if len(children) != 2 || children[0] != a {
		t.Fatalf("expected [a split], got %v", children)
	}
	split := children[1]
	if tr.Kind(split) != tree.KindSplit || tr.Layout(split) != tree.LayoutHorizontal {
		t.Fatalf("expected a horizontal split wrapping the siblings")
	}
	// Siblings are re-attached in reverse spatial order.
	if got := tr.Children(split); len(got) != 2 || got[0] != c || got[1] != bWin {
		t.Fatalf("expected split children [c b], got %v", got)
	}
	if got := tr.SizePercentage(a); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("expected window share 0.5, got %v", got)
	}
	if got := tr.SizePercentage(split); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("expected split share 0.5, got %v", got)
	}
	// Each sibling absorbed half of the window's former third.
	for _, sib := range []tree.NodeID{bWin, c} {
		if got := tr.SizePercentage(sib); math.Abs(got-0.5) > 1e-6 {
			t.Fatalf("expected sibling share 0.5, got %v", got)
		}
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_DescendsIntoSiblingSplit(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws, 100)
	split := tr.NewSplit(tree.LayoutVertical, 0.5)
	b.Invoke(AttachContainerCommand{Container: split, Parent: ws, Index: -1})
	bWin := attachWindow(t, tr, b, split, 101)
	c := attachWindow(t, tr, b, split, 102)

	b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirRight})

	// The window lands next to the edge-adjacent node inside the split.
	if got := tr.Children(split); len(got) != 3 || got[0] != bWin || got[1] != a || got[2] != c {
		t.Fatalf("expected split children [b a c], got %v", got)
	}
	if got := tr.Children(ws); len(got) != 1 || got[0] != split {
		t.Fatalf("expected workspace to hold only the split, got %v", got)
	}
	for _, win := range []tree.NodeID{a, bWin, c} {
		if got := tr.SizePercentage(win); math.Abs(got-1.0/3) > 1e-6 {
			t.Fatalf("expected share 1/3 inside split, got %v", got)
		}
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_PopsOutOfSplitIntoAncestor(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws, 100)
	split := tr.NewSplit(tree.LayoutVertical, 0.5)
	b.Invoke(AttachContainerCommand{Container: split, Parent: ws, Index: -1})
	bWin := attachWindow(t, tr, b, split, 101)
	c := attachWindow(t, tr, b, split, 102)

	// Moving right from inside the vertical split exits into the workspace.
	b.Invoke(MoveWindowCommand{Window: bWin, Direction: tree.DirRight})

	if got := tr.Children(ws); len(got) != 3 || got[0] != a || got[1] != split || got[2] != bWin {
		t.Fatalf("expected [a split b] at workspace level, got %v", got)
	}
	if got := tr.Children(split); len(got) != 1 || got[0] != c {
		t.Fatalf("expected split to keep only c, got %v", got)
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_NoNeighborIsIdempotentNoOp(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws, 100)

	resp := b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirLeft})
	if !resp.Ok {
		t.Fatalf("expected success for a no-op move")
	}
	if got := tr.Children(ws); len(got) != 1 || got[0] != a {
		t.Fatalf("no-op move changed the tree: %v", got)
	}
	if got := tr.SizePercentage(a); math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("no-op move changed the share: %v", got)
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_CrossMonitorAppendsOnHigherDirection(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	m1 := tr.AddMonitor("DP-1", platform.Rect{X: 0, Width: 1920, Height: 1080}, 1.0)
	m2 := tr.AddMonitor("DP-2", platform.Rect{X: 1920, Width: 1920, Height: 1080}, 1.0)
	ws1 := tr.AddWorkspace(m1, "1", tree.LayoutHorizontal)
	ws2 := tr.AddWorkspace(m2, "2", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws1, 100)
	bWin := attachWindow(t, tr, b, ws2, 101)

	var focusEvents []tree.NodeID
	bus.Subscribe(b, func(ev FocusChangedEvent) { focusEvents = append(focusEvents, ev.Window) })

	b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirRight})

	if got := tr.Children(ws1); len(got) != 0 {
		t.Fatalf("source workspace still references the window: %v", got)
	}
	if got := tr.Children(ws2); len(got) != 2 || got[0] != bWin || got[1] != a {
		t.Fatalf("expected [b a] on destination, got %v", got)
	}
	if len(focusEvents) != 1 || focusEvents[0] != a {
		t.Fatalf("expected one focus event for the moved window, got %v", focusEvents)
	}
	// Remembered placement recenters on the destination monitor.
	placement := tr.FloatingPlacement(a)
	monBounds := tr.Bounds(m2)
	if placement.CenterX() < monBounds.X || placement.CenterX() >= monBounds.X+monBounds.Width {
		t.Fatalf("placement not translated to destination monitor: %+v", placement)
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_CrossMonitorInsertsFirstOnLoweringDirection(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	m1 := tr.AddMonitor("DP-1", platform.Rect{X: 0, Width: 1920, Height: 1080}, 1.0)
	m2 := tr.AddMonitor("DP-2", platform.Rect{X: 1920, Width: 1920, Height: 1080}, 1.0)
	ws1 := tr.AddWorkspace(m1, "1", tree.LayoutHorizontal)
	tr.AddWorkspace(m2, "2", tree.LayoutHorizontal)
	bWin := attachWindow(t, tr, b, ws1, 100)
	ws2 := tr.DisplayedWorkspace(m2)
	a := attachWindow(t, tr, b, ws2, 101)

	b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirLeft})

	if got := tr.Children(ws1); len(got) != 2 || got[0] != a || got[1] != bWin {
		t.Fatalf("expected [a b] on destination, got %v", got)
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_SameRowMonitorsDoNotSwallowVerticalMove(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	m1 := tr.AddMonitor("DP-1", platform.Rect{X: 0, Width: 1920, Height: 1080}, 1.0)
	m2 := tr.AddMonitor("DP-2", platform.Rect{X: 1920, Width: 1920, Height: 1080}, 1.0)
	ws1 := tr.AddWorkspace(m1, "1", tree.LayoutHorizontal)
	ws2 := tr.AddWorkspace(m2, "2", tree.LayoutHorizontal)
	bWin := attachWindow(t, tr, b, ws1, 100)
	a := attachWindow(t, tr, b, ws2, 101)

	// Neither monitor is above the other, so moving up must stay within the
	// right monitor's workspace instead of crossing to the left one.
	resp := b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirUp})
	if !resp.Ok {
		t.Fatalf("expected ok response")
	}

	if got := tr.Parent(a); got != ws2 {
		t.Fatalf("window left its workspace: parent %d, want %d", got, ws2)
	}
	if got := tr.Children(ws1); len(got) != 1 || got[0] != bWin {
		t.Fatalf("neighboring workspace changed: %v", got)
	}
	if got := tr.SizePercentage(a); math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("lone window share changed: %v", got)
	}
	if got := tr.MonitorOf(a); got != m2 {
		t.Fatalf("window changed monitor: %d, want %d", got, m2)
	}
	checkShareInvariant(t, tr)
}

func TestMoveTiling_CrossMonitorDPIFollowUp(t *testing.T) {
	tr, b, backend := newTestEngine(t, nil)
	m1 := tr.AddMonitor("DP-1", platform.Rect{X: 0, Width: 1920, Height: 1080}, 1.0)
	m2 := tr.AddMonitor("DP-2", platform.Rect{X: 1920, Width: 2560, Height: 1440}, 1.5)
	ws1 := tr.AddWorkspace(m1, "1", tree.LayoutHorizontal)
	tr.AddWorkspace(m2, "2", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws1, 100)

	b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirRight})

	// The scale change needs a second reposition; the flag is then cleared.
	if got := backend.moves[100]; got != 2 {
		t.Fatalf("expected 2 repositions for DPI follow-up, got %d", got)
	}
	if tr.PendingDPIAdjustment(a) {
		t.Fatalf("pending DPI flag not cleared after redraw")
	}
}

func TestMoveFloating_DeltaFromPercentAmount(t *testing.T) {
	tr, b, backend := newTestEngine(t, nil) // default amount is 5%
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	win := tr.NewFloatingWindow(100, platform.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	b.Invoke(AttachContainerCommand{Container: win, Parent: ws, Index: -1})

	b.Invoke(MoveWindowCommand{Window: win, Direction: tree.DirRight})

	want := platform.Rect{X: 196, Y: 100, Width: 400, Height: 300} // 5% of 1920 = 96
	if got := tr.FloatingPlacement(win); got != want {
		t.Fatalf("expected placement %+v, got %+v", want, got)
	}
	if got := backend.lastRect[100]; got != want {
		t.Fatalf("redraw did not apply placement, backend saw %+v", got)
	}
}

func TestMoveFloating_BareNumberAmountMeansPixels(t *testing.T) {
	cfg := config.Default()
	cfg.General.FloatingWindowMoveAmount = "15"
	tr, b, _ := newTestEngine(t, cfg)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	win := tr.NewFloatingWindow(100, platform.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	b.Invoke(AttachContainerCommand{Container: win, Parent: ws, Index: -1})

	b.Invoke(MoveWindowCommand{Window: win, Direction: tree.DirDown})

	if got := tr.FloatingPlacement(win).Y; got != 115 {
		t.Fatalf("expected y 115 with a bare pixel amount, got %d", got)
	}
}

func TestMoveFloating_ClampsAtTopmostMonitorEdge(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	win := tr.NewFloatingWindow(100, platform.Rect{X: 100, Y: 0, Width: 400, Height: 300})
	b.Invoke(AttachContainerCommand{Container: win, Parent: ws, Index: -1})

	resp := b.Invoke(MoveWindowCommand{Window: win, Direction: tree.DirUp})
	if !resp.Ok {
		t.Fatalf("expected ok")
	}
	if got := tr.FloatingPlacement(win).Y; got != 0 {
		t.Fatalf("expected y clamped to 0, got %d", got)
	}
}

func TestMoveTiling_CrossMonitorSyncsNativeFocus(t *testing.T) {
	tr, b, backend := newTestEngine(t, nil)
	m1 := tr.AddMonitor("DP-1", platform.Rect{X: 0, Width: 1920, Height: 1080}, 1.0)
	m2 := tr.AddMonitor("DP-2", platform.Rect{X: 1920, Width: 1920, Height: 1080}, 1.0)
	ws1 := tr.AddWorkspace(m1, "1", tree.LayoutHorizontal)
	tr.AddWorkspace(m2, "2", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws1, 100)

	backend.focused = nil
	b.Invoke(MoveWindowCommand{Window: a, Direction: tree.DirRight})

	if got := tr.Focused(); got != a {
		t.Fatalf("expected moved window focused, got %d", got)
	}
	if n := len(backend.focused); n == 0 || backend.focused[n-1] != 100 {
		t.Fatalf("native focus not synced to moved window, got %v", backend.focused)
	}
}

func TestMoveFloating_ClampsAtTopOnSameRowMonitors(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	m1 := tr.AddMonitor("DP-1", platform.Rect{X: 0, Width: 1920, Height: 1080}, 1.0)
	m2 := tr.AddMonitor("DP-2", platform.Rect{X: 1920, Width: 1920, Height: 1080}, 1.0)
	tr.AddWorkspace(m1, "1", tree.LayoutHorizontal)
	ws2 := tr.AddWorkspace(m2, "2", tree.LayoutHorizontal)
	win := tr.NewFloatingWindow(100, platform.Rect{X: 2000, Y: 0, Width: 400, Height: 300})
	b.Invoke(AttachContainerCommand{Container: win, Parent: ws2, Index: -1})

	// The side-by-side neighbor is not above, so the top edge still clamps.
	b.Invoke(MoveWindowCommand{Window: win, Direction: tree.DirUp})

	if got := tr.FloatingPlacement(win).Y; got != 0 {
		t.Fatalf("expected y clamped to 0, got %d", got)
	}
	if got := tr.Parent(win); got != ws2 {
		t.Fatalf("window left its workspace: %d", got)
	}
}

func TestMoveFloating_HopsMonitorWhenCenterCrosses(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	m1 := tr.AddMonitor("DP-1", platform.Rect{X: 0, Width: 1920, Height: 1080}, 1.0)
	m2 := tr.AddMonitor("DP-2", platform.Rect{X: 1920, Width: 2560, Height: 1440}, 1.5)
	ws1 := tr.AddWorkspace(m1, "1", tree.LayoutHorizontal)
	ws2 := tr.AddWorkspace(m2, "2", tree.LayoutHorizontal)
	win := tr.NewFloatingWindow(100, platform.Rect{X: 1800, Y: 100, Width: 200, Height: 100})
	b.Invoke(AttachContainerCommand{Container: win, Parent: ws1, Index: -1})

	b.Invoke(MoveWindowCommand{Window: win, Direction: tree.DirRight})

	if got := tr.Parent(win); got != ws2 {
		t.Fatalf("expected window re-parented to destination workspace, got %d", got)
	}
	if got := tr.FloatingPlacement(win).X; got != 1896 {
		t.Fatalf("expected x 1896 after 5%% step, got %d", got)
	}
}

func TestMoveFloating_AbortsWhenCrossingWithNoNeighbor(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	win := tr.NewFloatingWindow(100, platform.Rect{X: 1800, Y: 100, Width: 200, Height: 100})
	b.Invoke(AttachContainerCommand{Container: win, Parent: ws, Index: -1})

	resp := b.Invoke(MoveWindowCommand{Window: win, Direction: tree.DirRight})
	if !resp.Ok {
		t.Fatalf("expected ok")
	}
	if got := tr.FloatingPlacement(win).X; got != 1800 {
		t.Fatalf("expected placement untouched, got x=%d", got)
	}
	if got := tr.Parent(win); got != ws {
		t.Fatalf("expected window to stay on its workspace")
	}
}

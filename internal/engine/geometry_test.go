package engine

import (
	"testing"

	"github.com/1broseidon/treetile/internal/config"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

func TestLayoutWorkspace_PartitionsWithGaps(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws, 100)
	bWin := attachWindow(t, tr, b, ws, 101)

	rects := LayoutWorkspace(tr, ws, config.Gaps{Inner: 10, Outer: 20})

	wantA := platform.Rect{X: 20, Y: 20, Width: 935, Height: 1040}
	wantB := platform.Rect{X: 965, Y: 20, Width: 935, Height: 1040}
	if rects[a] != wantA {
		t.Fatalf("expected %+v for left window, got %+v", wantA, rects[a])
	}
	if rects[bWin] != wantB {
		t.Fatalf("expected %+v for right window, got %+v", wantB, rects[bWin])
	}
}

func TestLayoutWorkspace_NestedSplit(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1000, Height: 800}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	a := attachWindow(t, tr, b, ws, 100)
	split := tr.NewSplit(tree.LayoutVertical, 0.5)
	b.Invoke(AttachContainerCommand{Container: split, Parent: ws, Index: -1})
	top := attachWindow(t, tr, b, split, 101)
	bottom := attachWindow(t, tr, b, split, 102)

	rects := LayoutWorkspace(tr, ws, config.Gaps{})

	if want := (platform.Rect{X: 0, Y: 0, Width: 500, Height: 800}); rects[a] != want {
		t.Fatalf("expected %+v, got %+v", want, rects[a])
	}
	if want := (platform.Rect{X: 500, Y: 0, Width: 500, Height: 400}); rects[top] != want {
		t.Fatalf("expected %+v, got %+v", want, rects[top])
	}
	if want := (platform.Rect{X: 500, Y: 400, Width: 500, Height: 400}); rects[bottom] != want {
		t.Fatalf("expected %+v, got %+v", want, rects[bottom])
	}
}

func TestLayoutWorkspace_UnevenSharesFillExactly(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1001, Height: 800}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	wins := []tree.NodeID{
		attachWindow(t, tr, b, ws, 100),
		attachWindow(t, tr, b, ws, 101),
		attachWindow(t, tr, b, ws, 102),
	}

	rects := LayoutWorkspace(tr, ws, config.Gaps{})

	var total int
	for _, w := range wins {
		total += rects[w].Width
	}
	if total != 1001 {
		t.Fatalf("partition does not fill the area exactly: %d of 1001", total)
	}
	last := rects[wins[2]]
	if last.X+last.Width != 1001 {
		t.Fatalf("last window does not reach the right edge: %+v", last)
	}
}

func TestLayoutWorkspace_FloatingKeepsPlacement(t *testing.T) {
	tr, b, _ := newTestEngine(t, nil)
	mon := tr.AddMonitor("DP-1", platform.Rect{Width: 1920, Height: 1080}, 1.0)
	ws := tr.AddWorkspace(mon, "1", tree.LayoutHorizontal)
	attachWindow(t, tr, b, ws, 100)
	placement := platform.Rect{X: 300, Y: 200, Width: 640, Height: 480}
	floater := tr.NewFloatingWindow(200, placement)
	b.Invoke(AttachContainerCommand{Container: floater, Parent: ws, Index: -1})

	rects := LayoutWorkspace(tr, ws, config.Gaps{Inner: 10, Outer: 20})

	if rects[floater] != placement {
		t.Fatalf("floating window moved by layout: %+v", rects[floater])
	}
}

// Package engine implements the window-management logic: structural tree
// commands with size rebalancing, window lifecycle, and the directional
// movement algorithm. All mutation is dispatched through the command bus on
// one goroutine; the engine assumes it never observes concurrent tree access.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/treetile/internal/bus"
	"github.com/1broseidon/treetile/internal/config"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

// Engine owns the command handlers that mutate the container tree.
type Engine struct {
	tree    *tree.Tree
	bus     *bus.Bus
	cfg     *config.Config
	backend platform.Backend
	logger  *slog.Logger

	moveAmount config.Length
	dirty      map[tree.NodeID]struct{}
}

// New wires the engine's handlers and subscribers into the bus.
func New(t *tree.Tree, b *bus.Bus, cfg *config.Config, backend platform.Backend, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		tree:    t,
		bus:     b,
		cfg:     cfg,
		backend: backend,
		logger:  logger,
		dirty:   make(map[tree.NodeID]struct{}),
	}

	// The amount is validated at config load; a failure here means the config
	// was mutated after loading, so fall back to the default.
	amount, err := config.ParseLength(cfg.General.FloatingWindowMoveAmount)
	if err != nil {
		amount, _ = config.ParseLength(config.Default().General.FloatingWindowMoveAmount)
	}
	e.moveAmount = amount

	bus.Handle(b, e.handleAttachContainer)
	bus.Handle(b, e.handleDetachContainer)
	bus.Handle(b, e.handleMoveContainerWithinTree)
	bus.Handle(b, e.handleChangeContainerLayout)
	bus.Handle(b, e.handleRedrawContainers)
	bus.Handle(b, e.handleMoveWindow)
	bus.Handle(b, e.handleFocusWindow)
	bus.Handle(b, e.handleSyncNativeFocus)
	bus.Handle(b, e.handleAddWindow)
	bus.Handle(b, e.handleRemoveWindow)
	bus.Handle(b, e.handleUpdateWindowTitle)
	bus.Handle(b, e.handleRunWindowRules)

	bus.Subscribe(b, e.onWindowTitleChanged)

	return e
}

// Reconfigure applies a reloaded configuration. Callers are responsible for
// requesting a redraw afterwards so new gaps take effect.
func (e *Engine) Reconfigure(cfg *config.Config) {
	e.cfg = cfg
	if amount, err := config.ParseLength(cfg.General.FloatingWindowMoveAmount); err == nil {
		e.moveAmount = amount
	}
	for _, mon := range e.tree.Monitors() {
		e.markDirty(mon)
	}
}

// markDirty queues the workspace containing id for the next redraw.
func (e *Engine) markDirty(id tree.NodeID) {
	ws := id
	if e.tree.Kind(id) == tree.KindMonitor {
		ws = e.tree.DisplayedWorkspace(id)
	} else if e.tree.Kind(id) != tree.KindWorkspace {
		ws = e.tree.WorkspaceOf(id)
	}
	if ws != tree.None {
		e.dirty[ws] = struct{}{}
	}
}

func (e *Engine) handleAttachContainer(cmd AttachContainerCommand) bus.Response {
	e.tree.Attach(cmd.Container, cmd.Parent, cmd.Index)
	if e.tree.IsResizable(cmd.Container) {
		siblings := e.tree.ResizableSiblings(cmd.Container)
		share := 1.0 / float64(len(siblings)+1)
		for _, sib := range siblings {
			e.tree.SetSizePercentage(sib, e.tree.SizePercentage(sib)*(1-share))
		}
		e.tree.SetSizePercentage(cmd.Container, share)
	}
	e.markDirty(cmd.Container)
	return bus.Ok
}

func (e *Engine) handleDetachContainer(cmd DetachContainerCommand) bus.Response {
	parent := e.tree.Parent(cmd.Container)
	wasResizable := e.tree.IsResizable(cmd.Container)
	e.tree.Detach(cmd.Container)
	if parent == tree.None {
		return bus.Ok
	}
	if wasResizable {
		e.normalizeSizes(parent)
	}
	if e.tree.Kind(parent) == tree.KindSplit && len(e.tree.Children(parent)) == 0 {
		e.bus.Invoke(DetachContainerCommand{Container: parent})
		e.tree.Remove(parent)
		return bus.Ok
	}
	e.markDirty(parent)
	return bus.Ok
}

// normalizeSizes rescales a parent's resizable children so their shares sum
// to 1.0 again after one of them left.
func (e *Engine) normalizeSizes(parent tree.NodeID) {
	children := e.tree.ResizableChildren(parent)
	if len(children) == 0 {
		return
	}
	var sum float64
	for _, c := range children {
		sum += e.tree.SizePercentage(c)
	}
	if sum <= 0 {
		share := 1.0 / float64(len(children))
		for _, c := range children {
			e.tree.SetSizePercentage(c, share)
		}
		return
	}
	for _, c := range children {
		e.tree.SetSizePercentage(c, e.tree.SizePercentage(c)/sum)
	}
}

func (e *Engine) handleMoveContainerWithinTree(cmd MoveContainerWithinTreeCommand) bus.Response {
	if e.tree.Parent(cmd.Container) == cmd.TargetParent {
		// Pure reorder: spatial position changes, sizes do not.
		e.tree.Reorder(cmd.Container, cmd.TargetIndex)
		e.markDirty(cmd.Container)
		return bus.Ok
	}
	e.bus.Invoke(DetachContainerCommand{Container: cmd.Container})
	e.bus.Invoke(AttachContainerCommand{
		Container: cmd.Container,
		Parent:    cmd.TargetParent,
		Index:     cmd.TargetIndex,
	})
	return bus.Ok
}

func (e *Engine) handleChangeContainerLayout(cmd ChangeContainerLayoutCommand) bus.Response {
	e.tree.SetLayout(cmd.Container, cmd.Layout)
	e.markDirty(cmd.Container)
	return bus.Ok
}

func (e *Engine) handleFocusWindow(cmd FocusWindowCommand) bus.Response {
	e.tree.SetFocused(cmd.Window)
	e.bus.Invoke(SyncNativeFocusCommand{})
	e.bus.Emit(FocusChangedEvent{Window: cmd.Window})
	return bus.Ok
}

func (e *Engine) handleSyncNativeFocus(SyncNativeFocusCommand) bus.Response {
	focused := e.tree.Focused()
	if focused == tree.None || !e.tree.Kind(focused).IsWindow() {
		return bus.Ok
	}
	if err := e.backend.SetFocus(e.tree.Handle(focused)); err != nil {
		e.logger.Warn("failed to sync native focus", "error", err)
	}
	return bus.Ok
}

func (e *Engine) handleAddWindow(cmd AddWindowCommand) bus.Response {
	if _, tracked := e.tree.WindowByHandle(cmd.Handle); tracked {
		return bus.Ok
	}
	ws := e.targetWorkspace()
	if ws == tree.None {
		e.logger.Warn("no workspace to place window on", "handle", cmd.Handle)
		return bus.Ok
	}

	var win tree.NodeID
	if cmd.Floating {
		win = e.tree.NewFloatingWindow(cmd.Handle, cmd.Bounds)
	} else {
		win = e.tree.NewTilingWindow(cmd.Handle, cmd.Bounds)
	}
	e.tree.SetWindowTitle(win, cmd.Title)

	e.bus.Invoke(AttachContainerCommand{Container: win, Parent: ws, Index: -1})
	e.bus.Invoke(RunWindowRulesCommand{Window: win})
	e.bus.Invoke(FocusWindowCommand{Window: win})
	e.bus.Invoke(RedrawContainersCommand{})
	return bus.Ok
}

// targetWorkspace is where a new window lands: next to the focused window if
// there is one, otherwise the first monitor's displayed workspace.
func (e *Engine) targetWorkspace() tree.NodeID {
	if focused := e.tree.Focused(); focused != tree.None {
		if ws := e.tree.WorkspaceOf(focused); ws != tree.None {
			return ws
		}
	}
	monitors := e.tree.Monitors()
	if len(monitors) == 0 {
		return tree.None
	}
	return e.tree.DisplayedWorkspace(monitors[0])
}

func (e *Engine) handleRemoveWindow(cmd RemoveWindowCommand) bus.Response {
	win, tracked := e.tree.WindowByHandle(cmd.Handle)
	if !tracked {
		return bus.Ok
	}
	ws := e.tree.WorkspaceOf(win)
	e.bus.Invoke(DetachContainerCommand{Container: win})
	e.tree.Remove(win)

	if ws != tree.None {
		if next := e.tree.FocusedDescendant(ws); next != ws && e.tree.Kind(next).IsWindow() {
			e.bus.Invoke(FocusWindowCommand{Window: next})
		}
		e.markDirty(ws)
	}
	e.bus.Invoke(RedrawContainersCommand{})
	return bus.Ok
}

func (e *Engine) handleUpdateWindowTitle(cmd UpdateWindowTitleCommand) bus.Response {
	e.tree.SetWindowTitle(cmd.Window, cmd.Title)
	return bus.Ok
}

// handleRunWindowRules is the hook point for user-defined window rules.
// Rule matching itself lives with the config layer's future rules schema;
// until then the command exists so lifecycle and title-change paths funnel
// through one place.
func (e *Engine) handleRunWindowRules(cmd RunWindowRulesCommand) bus.Response {
	e.logger.Debug("window rules evaluated",
		"window", int(cmd.Window), "title", e.tree.WindowTitle(cmd.Window))
	return bus.Ok
}

func (e *Engine) onWindowTitleChanged(ev WindowTitleChangedEvent) {
	win, tracked := e.tree.WindowByHandle(ev.Handle)
	if !tracked {
		// The window closed before the notification arrived.
		return
	}
	e.bus.Invoke(UpdateWindowTitleCommand{Window: win, Title: ev.Title})
	e.bus.Invoke(RunWindowRulesCommand{Window: win})
}

func (e *Engine) handleRedrawContainers(RedrawContainersCommand) bus.Response {
	for ws := range e.dirty {
		rects := LayoutWorkspace(e.tree, ws, e.cfg.Gaps)
		for win, rect := range rects {
			handle := e.tree.Handle(win)
			if err := e.backend.MoveResize(handle, rect); err != nil {
				e.logger.Warn("failed to reposition window", "handle", handle, "error", err)
				continue
			}
			// A single reposition does not apply new DPI scaling; repeat it.
			if e.tree.PendingDPIAdjustment(win) {
				if err := e.backend.MoveResize(handle, rect); err != nil {
					e.logger.Warn("failed DPI follow-up reposition", "handle", handle, "error", err)
				}
				e.tree.SetPendingDPIAdjustment(win, false)
			}
		}
	}
	clear(e.dirty)
	return bus.Ok
}

func (e *Engine) handleMoveWindow(cmd MoveWindowCommand) bus.Response {
	switch e.tree.Kind(cmd.Window) {
	case tree.KindTilingWindow:
		return e.moveTilingWindow(cmd.Window, cmd.Direction)
	case tree.KindFloatingWindow:
		return e.moveFloatingWindow(cmd.Window, cmd.Direction)
	}
	panic(fmt.Sprintf("engine: MoveWindow on %s container", e.tree.Kind(cmd.Window)))
}

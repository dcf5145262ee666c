// Package daemon runs the window manager's event loop. Inbound window-system
// notifications and IPC requests are serialized onto one goroutine; the
// container tree is only ever touched from there.
package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/treetile/internal/bus"
	"github.com/1broseidon/treetile/internal/config"
	"github.com/1broseidon/treetile/internal/engine"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

// Daemon owns the tree, the bus, and the engine, and pumps events into them.
type Daemon struct {
	tree    *tree.Tree
	bus     *bus.Bus
	engine  *engine.Engine
	cfg     *config.Config
	backend platform.Backend
	logger  *slog.Logger

	requests chan func()
}

// New assembles a daemon around a backend. Bootstrap must be called before
// Run to populate the tree from the current window-system state.
func New(cfg *config.Config, backend platform.Backend, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	t := tree.New()
	b := bus.New(logger)
	e := engine.New(t, b, cfg, backend, logger)
	return &Daemon{
		tree:     t,
		bus:      b,
		engine:   e,
		cfg:      cfg,
		backend:  backend,
		logger:   logger,
		requests: make(chan func()),
	}
}

// Tree exposes the container tree for IPC read paths. Callers must only
// touch it from inside Do.
func (d *Daemon) Tree() *tree.Tree { return d.tree }

// Bus exposes the command bus. Callers must only invoke from inside Do.
func (d *Daemon) Bus() *bus.Bus { return d.bus }

// Do runs fn on the dispatch goroutine and returns once it completed. It is
// how IPC connection goroutines reach the tree.
func (d *Daemon) Do(fn func()) {
	done := make(chan struct{})
	d.requests <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// Reload re-reads the config file and applies it.
func (d *Daemon) Reload() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d.Do(func() {
		d.cfg = cfg
		d.engine.Reconfigure(cfg)
		d.logger.Info("configuration reloaded")
		d.bus.Invoke(engine.RedrawContainersCommand{})
	})
	return nil
}

// Bootstrap populates the tree from the window system: monitors, the
// configured workspaces, and all currently open windows.
func (d *Daemon) Bootstrap() error {
	displays, err := d.backend.Displays()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return fmt.Errorf("no displays found")
	}

	layout, err := tree.ParseLayout(d.cfg.General.DefaultLayout)
	if err != nil {
		layout = tree.LayoutHorizontal
	}

	monitors := make([]tree.NodeID, len(displays))
	for i, disp := range displays {
		monitors[i] = d.tree.AddMonitor(disp.Name, disp.Bounds, disp.ScaleFactor)
		d.logger.Info("monitor registered",
			"name", disp.Name,
			"bounds", fmt.Sprintf("%dx%d+%d+%d", disp.Bounds.Width, disp.Bounds.Height, disp.Bounds.X, disp.Bounds.Y),
			"scale", disp.ScaleFactor)
	}

	// Bound workspaces go to their monitor; unbound ones round-robin.
	next := 0
	for _, ws := range d.cfg.Workspaces {
		target := next % len(monitors)
		if ws.Monitor >= 0 && ws.Monitor < len(monitors) {
			target = ws.Monitor
		} else {
			next++
		}
		d.tree.AddWorkspace(monitors[target], ws.Name, layout)
	}
	// Every monitor needs a displayed workspace to place windows on.
	for i, mon := range monitors {
		if d.tree.DisplayedWorkspace(mon) == tree.None {
			d.tree.AddWorkspace(mon, fmt.Sprintf("m%d", i+1), layout)
		}
	}

	windows, err := d.backend.Windows()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}
	for _, win := range windows {
		d.bus.Invoke(engine.AddWindowCommand{
			Handle: win.Handle,
			Title:  win.Title,
			Bounds: win.Bounds,
		})
	}
	d.logger.Info("bootstrap complete", "monitors", len(monitors), "windows", len(windows))

	d.bus.Invoke(engine.RedrawContainersCommand{})
	return nil
}

// Run pumps backend notifications and submitted requests until the context
// is canceled. Everything handled here runs on this goroutine.
func (d *Daemon) Run(ctx context.Context) error {
	events := d.backend.Events()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon shutting down")
			return ctx.Err()
		case fn := <-d.requests:
			fn()
		case note, ok := <-events:
			if !ok {
				return fmt.Errorf("window system event stream closed")
			}
			d.handleNotification(note)
		}
	}
}

func (d *Daemon) handleNotification(note platform.Notification) {
	switch note.Kind {
	case platform.WindowCreated:
		d.logger.Debug("window created", "handle", note.Window, "title", note.Title)
		d.bus.Invoke(engine.AddWindowCommand{
			Handle: note.Window,
			Title:  note.Title,
			Bounds: note.Bounds,
		})
	case platform.WindowDestroyed:
		d.logger.Debug("window destroyed", "handle", note.Window)
		d.bus.Invoke(engine.RemoveWindowCommand{Handle: note.Window})
	case platform.WindowTitleChanged:
		d.bus.Emit(engine.WindowTitleChangedEvent{Handle: note.Window, Title: note.Title})
	case platform.WindowFocused:
		win, tracked := d.tree.WindowByHandle(note.Window)
		if !tracked || d.tree.Focused() == win {
			return
		}
		d.bus.Invoke(engine.FocusWindowCommand{Window: win})
	}
}

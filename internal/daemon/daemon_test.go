package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/treetile/internal/config"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/tree"
)

type scriptedBackend struct {
	displays []platform.Display
	windows  []platform.Window
	events   chan platform.Notification
}

func newScriptedBackend() *scriptedBackend {
	return &scriptedBackend{
		displays: []platform.Display{
			{ID: 0, Name: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}, ScaleFactor: 1.0},
			{ID: 1, Name: "DP-2", Bounds: platform.Rect{X: 1920, Width: 1920, Height: 1080}, ScaleFactor: 1.0},
		},
		events: make(chan platform.Notification),
	}
}

func (s *scriptedBackend) Displays() ([]platform.Display, error) { return s.displays, nil }
func (s *scriptedBackend) Windows() ([]platform.Window, error)   { return s.windows, nil }
func (s *scriptedBackend) MoveResize(platform.WindowHandle, platform.Rect) error {
	return nil
}
func (s *scriptedBackend) SetFocus(platform.WindowHandle) error { return nil }
func (s *scriptedBackend) Events() <-chan platform.Notification { return s.events }
func (s *scriptedBackend) Close()                               {}

func newTestDaemon(t *testing.T) (*Daemon, *scriptedBackend) {
	t.Helper()
	cfg := config.Default()
	cfg.Workspaces = []config.Workspace{
		{Name: "code", Monitor: 0},
		{Name: "web", Monitor: 1},
	}
	backend := newScriptedBackend()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, backend, logger), backend
}

func TestBootstrap_PopulatesTree(t *testing.T) {
	d, backend := newTestDaemon(t)
	backend.windows = []platform.Window{
		{Handle: 100, Title: "editor", Bounds: platform.Rect{Width: 800, Height: 600}},
	}

	if err := d.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	tr := d.Tree()
	monitors := tr.Monitors()
	if len(monitors) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(monitors))
	}
	if got := tr.Name(tr.DisplayedWorkspace(monitors[0])); got != "code" {
		t.Fatalf("expected workspace 'code' on first monitor, got %q", got)
	}
	if got := tr.Name(tr.DisplayedWorkspace(monitors[1])); got != "web" {
		t.Fatalf("expected workspace 'web' on second monitor, got %q", got)
	}
	if _, ok := tr.WindowByHandle(100); !ok {
		t.Fatalf("existing window not adopted")
	}
}

func TestBootstrap_FillsMonitorsWithoutWorkspaces(t *testing.T) {
	d, _ := newTestDaemon(t)
	d.cfg.Workspaces = []config.Workspace{{Name: "only", Monitor: 0}}

	if err := d.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	tr := d.Tree()
	for _, mon := range tr.Monitors() {
		if tr.DisplayedWorkspace(mon) == tree.None {
			t.Fatalf("monitor %q left without a workspace", tr.Name(mon))
		}
	}
}

func TestRun_SerializesNotificationsAndRequests(t *testing.T) {
	d, backend := newTestDaemon(t)
	if err := d.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	backend.events <- platform.Notification{
		Kind:   platform.WindowCreated,
		Window: 200,
		Title:  "terminal",
		Bounds: platform.Rect{Width: 640, Height: 480},
	}
	d.Do(func() {
		if _, ok := d.Tree().WindowByHandle(200); !ok {
			t.Errorf("created window not tracked")
		}
	})

	backend.events <- platform.Notification{
		Kind:   platform.WindowTitleChanged,
		Window: 200,
		Title:  "terminal - vim",
	}
	d.Do(func() {
		win, _ := d.Tree().WindowByHandle(200)
		if got := d.Tree().WindowTitle(win); got != "terminal - vim" {
			t.Errorf("title not updated, got %q", got)
		}
	})

	backend.events <- platform.Notification{Kind: platform.WindowDestroyed, Window: 200}
	d.Do(func() {
		if _, ok := d.Tree().WindowByHandle(200); ok {
			t.Errorf("destroyed window still tracked")
		}
	})

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("daemon did not stop on context cancel")
	}
}

// Package x11 implements the platform backend against an X server using
// xgb/xgbutil: monitor enumeration via RandR, window manipulation via EWMH,
// and a notification stream fed from the X event queue.
package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/treetile/internal/platform"
)

// Backend is the X11 implementation of platform.Backend.
type Backend struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
	events chan platform.Notification

	atomNetWMName    xproto.Atom
	atomWMName       xproto.Atom
	atomActiveWindow xproto.Atom
}

// New connects to the X server, subscribes to root window notifications, and
// starts the event pump.
func New(logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	b := &Backend{
		xu:     xu,
		root:   xu.RootWin(),
		logger: logger,
		events: make(chan platform.Notification, 64),
	}

	for _, atom := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"_NET_WM_NAME", &b.atomNetWMName},
		{"WM_NAME", &b.atomWMName},
		{"_NET_ACTIVE_WINDOW", &b.atomActiveWindow},
	} {
		a, err := xprop.Atm(xu, atom.name)
		if err != nil {
			xu.Conn().Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", atom.name, err)
		}
		*atom.dst = a
	}

	err = xproto.ChangeWindowAttributesChecked(xu.Conn(), b.root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureNotify | xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to subscribe to root window events: %w", err)
	}

	go b.eventLoop()

	return b, nil
}

// Events returns the notification stream. The channel closes when the X
// connection goes away.
func (b *Backend) Events() <-chan platform.Notification { return b.events }

// Close disconnects from the X server, which also terminates the event pump.
func (b *Backend) Close() {
	b.xu.Conn().Close()
}

// MoveResize repositions a window, unmaximizing it first so the geometry
// request is honored.
func (b *Backend) MoveResize(handle platform.WindowHandle, bounds platform.Rect) error {
	win := xproto.Window(handle)
	b.unmaximize(win)

	err := ewmh.MoveresizeWindow(b.xu, win, bounds.X, bounds.Y, bounds.Width, bounds.Height)
	if err != nil {
		// Fallback to direct window manipulation for WMs without EWMH
		// moveresize support.
		xwindow.New(b.xu, win).MoveResize(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	}
	return nil
}

func (b *Backend) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(b.xu, win)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(b.xu, win, 0, state)
		}
	}
}

// SetFocus activates a window.
func (b *Backend) SetFocus(handle platform.WindowHandle) error {
	if err := ewmh.ActiveWindowReq(b.xu, xproto.Window(handle)); err != nil {
		return fmt.Errorf("failed to activate window %d: %w", handle, err)
	}
	return nil
}

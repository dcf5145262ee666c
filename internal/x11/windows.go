package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/treetile/internal/platform"
)

// Windows enumerates the currently mapped application windows.
func (b *Backend) Windows() ([]platform.Window, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	var windows []platform.Window
	for _, win := range clients {
		if !b.isNormalWindow(win) {
			continue
		}
		bounds, err := b.windowBounds(win)
		if err != nil {
			continue
		}
		windows = append(windows, platform.Window{
			Handle: platform.WindowHandle(win),
			Title:  b.windowTitle(win),
			Bounds: bounds,
		})
	}
	return windows, nil
}

func (b *Backend) windowBounds(win xproto.Window) (platform.Rect, error) {
	geom, err := xproto.GetGeometry(b.xu.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return platform.Rect{}, err
	}
	translate, err := xproto.TranslateCoordinates(b.xu.Conn(), win, b.root, 0, 0).Reply()
	if err != nil {
		return platform.Rect{}, err
	}
	return platform.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (b *Backend) windowTitle(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(b.xu, win); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(b.xu, win); err == nil {
		return title
	}
	return ""
}

// isNormalWindow reports whether a window is a regular application window
// rather than a desktop, dock, splash screen, or notification.
func (b *Backend) isNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(b.xu, win)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/treetile/internal/platform"
)

// eventLoop pumps raw X events into the notification channel until the
// connection closes.
func (b *Backend) eventLoop() {
	defer close(b.events)
	for {
		ev, xerr := b.xu.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			// Connection closed.
			return
		}
		if xerr != nil {
			b.logger.Debug("x11 protocol error", "error", xerr)
			continue
		}

		switch e := ev.(type) {
		case xproto.MapNotifyEvent:
			b.onMap(e)
		case xproto.DestroyNotifyEvent:
			b.events <- platform.Notification{
				Kind:   platform.WindowDestroyed,
				Window: platform.WindowHandle(e.Window),
			}
		case xproto.PropertyNotifyEvent:
			b.onProperty(e)
		}
	}
}

func (b *Backend) onMap(e xproto.MapNotifyEvent) {
	if e.OverrideRedirect || !b.isNormalWindow(e.Window) {
		return
	}

	// Watch the new window for title changes.
	err := xproto.ChangeWindowAttributesChecked(b.xu.Conn(), e.Window, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		b.logger.Debug("failed to watch window properties", "window", e.Window, "error", err)
	}

	bounds, err := b.windowBounds(e.Window)
	if err != nil {
		// The window vanished between map and query.
		return
	}
	b.events <- platform.Notification{
		Kind:   platform.WindowCreated,
		Window: platform.WindowHandle(e.Window),
		Title:  b.windowTitle(e.Window),
		Bounds: bounds,
	}
}

func (b *Backend) onProperty(e xproto.PropertyNotifyEvent) {
	switch {
	case e.Window == b.root && e.Atom == b.atomActiveWindow:
		active, err := ewmh.ActiveWindowGet(b.xu)
		if err != nil || active == 0 {
			return
		}
		b.events <- platform.Notification{
			Kind:   platform.WindowFocused,
			Window: platform.WindowHandle(active),
		}
	case e.Atom == b.atomNetWMName || e.Atom == b.atomWMName:
		b.events <- platform.Notification{
			Kind:   platform.WindowTitleChanged,
			Window: platform.WindowHandle(e.Window),
			Title:  b.windowTitle(e.Window),
		}
	}
}

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/treetile/internal/platform"
)

// Displays retrieves all active monitors using XRandR. The scale factor is
// derived from the output's physical size against a 96 DPI baseline; outputs
// without physical dimensions report 1.0.
func (b *Backend) Displays() ([]platform.Display, error) {
	resources, err := randr.GetScreenResources(b.xu.Conn(), b.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var displays []platform.Display
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(b.xu.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		scale := 1.0
		if outputInfo, err := randr.GetOutputInfo(b.xu.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
			if outputInfo.MmWidth > 0 {
				dpi := float64(crtcInfo.Width) * 25.4 / float64(outputInfo.MmWidth)
				if s := dpi / 96.0; s > 1.0 {
					scale = s
				}
			}
		}

		displays = append(displays, platform.Display{
			ID:   i,
			Name: name,
			Bounds: platform.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
			ScaleFactor: scale,
		})
	}

	return displays, nil
}

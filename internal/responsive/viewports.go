// Package responsive renders an assembled document at several viewports and
// checks its layout with in-page assertions.
package responsive

import "github.com/jonathan/pagegate/internal/types"

// DefaultViewports is the test matrix, ordered smallest to largest.
var DefaultViewports = []types.Viewport{
	{Name: "mobile-small", Width: 320, Height: 568, DeviceScaleFactor: 2, IsMobile: true, HasTouch: true},
	{Name: "mobile", Width: 375, Height: 667, DeviceScaleFactor: 2, IsMobile: true, HasTouch: true},
	{Name: "tablet", Width: 768, Height: 1024, DeviceScaleFactor: 2, IsMobile: true, HasTouch: true},
	{Name: "laptop", Width: 1366, Height: 768, DeviceScaleFactor: 1},
	{Name: "desktop", Width: 1920, Height: 1080, DeviceScaleFactor: 1},
}

// Viewports returns a copy of DefaultViewports.
func Viewports() []types.Viewport {
	out := make([]types.Viewport, len(DefaultViewports))
	copy(out, DefaultViewports)
	return out
}

// ViewportByName looks a viewport up in DefaultViewports.
func ViewportByName(name string) (types.Viewport, bool) {
	for _, vp := range DefaultViewports {
		if vp.Name == name {
			return vp, true
		}
	}
	return types.Viewport{}, false
}

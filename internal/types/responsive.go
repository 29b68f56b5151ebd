package types

import "fmt"

// Issue severities reported by the responsiveness tester.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Issue is a single finding for one viewport.
type Issue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Details  any    `json:"details,omitempty"`
}

// IsCritical reports whether the issue blocks the dynamic stage.
func (i Issue) IsCritical() bool {
	return i.Severity == SeverityCritical
}

// Viewport describes one screen configuration of the viewport matrix.
type Viewport struct {
	Name              string  `json:"name" yaml:"name" validate:"required"`
	Width             int     `json:"width" yaml:"width" validate:"gte=1,lte=10000"`
	Height            int     `json:"height" yaml:"height" validate:"gte=1,lte=10000"`
	DeviceScaleFactor float64 `json:"device_scale_factor" yaml:"device_scale_factor" validate:"gt=0,lte=5"`
	IsMobile          bool    `json:"is_mobile" yaml:"is_mobile"`
	HasTouch          bool    `json:"has_touch" yaml:"has_touch"`
}

// String returns "name (WxH)".
func (v Viewport) String() string {
	return fmt.Sprintf("%s (%dx%d)", v.Name, v.Width, v.Height)
}

// ViewportResult holds the issues found at one viewport.
type ViewportResult struct {
	Viewport   Viewport `json:"viewport"`
	Passed     bool     `json:"passed"`
	Issues     []Issue  `json:"issues"`
	Screenshot string   `json:"screenshot,omitempty"`
}

// IssueSummary rolls issue counts up across viewports.
type IssueSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
}

// ResponsiveResult is the aggregate result of the dynamic stage.
type ResponsiveResult struct {
	Passed    bool             `json:"passed"`
	Viewports []ViewportResult `json:"viewports"`
	Summary   IssueSummary     `json:"summary"`
	Error     string           `json:"error,omitempty"` // Set when the stage could not run at all
}

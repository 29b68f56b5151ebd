package responsive

import "fmt"

// LaunchError represents a failure to start the rendering engine.
type LaunchError struct {
	Message string
	Cause   error
}

func (e *LaunchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("launch error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("launch error: %s", e.Message)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// ViewportError represents a failure to test a single viewport.
type ViewportError struct {
	Viewport string
	Message  string
	Cause    error
}

func (e *ViewportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("viewport %s: %s: %v", e.Viewport, e.Message, e.Cause)
	}
	return fmt.Sprintf("viewport %s: %s", e.Viewport, e.Message)
}

func (e *ViewportError) Unwrap() error {
	return e.Cause
}

package markup

import "fmt"

// SanitizeError represents an internal sanitizer failure.
type SanitizeError struct {
	Message string
	Cause   error
}

func (e *SanitizeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sanitize error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("sanitize error: %s", e.Message)
}

func (e *SanitizeError) Unwrap() error {
	return e.Cause
}

// ParseError represents a failure to build a document tree from markup.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("markup parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("markup parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

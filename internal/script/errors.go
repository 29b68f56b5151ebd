package script

import "fmt"

// AnalyzerError represents a crash inside the static analyzer itself.
type AnalyzerError struct {
	Message string
	Cause   error
}

func (e *AnalyzerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("static analysis error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("static analysis error: %s", e.Message)
}

func (e *AnalyzerError) Unwrap() error {
	return e.Cause
}

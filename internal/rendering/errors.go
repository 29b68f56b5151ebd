// Package rendering assembles validated fragments into a complete HTML document.
package rendering

import "fmt"

// AssembleError reports a failure to build the document from its fragments.
type AssembleError struct {
	Message string
	Cause   error
}

func (e *AssembleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document assembly failed: %s: %v", e.Message, e.Cause)
	}
	return "document assembly failed: " + e.Message
}

func (e *AssembleError) Unwrap() error {
	return e.Cause
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/pagegate/internal/pipeline"
	"github.com/jonathan/pagegate/internal/types"
)

// SSE event names sent by POST /validate/stream.
const (
	EventProgress = "progress"
	EventVerdict  = "verdict"
	EventComplete = "complete"
	EventError    = "error"
)

// SSEWriter writes a validation run as Server-Sent Events. Events carry
// increasing ids so clients can tell where a dropped stream stopped.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

// NewSSEWriter prepares w for streaming.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends data as JSON under the given event name.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteProgress forwards one pipeline progress event.
func (s *SSEWriter) WriteProgress(event pipeline.ProgressEvent) error {
	return s.WriteEvent(EventProgress, event)
}

// WriteVerdict sends the final verdict.
func (s *SSEWriter) WriteVerdict(v *types.Verdict) error {
	return s.WriteEvent(EventVerdict, v)
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent(EventError, map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete closes the run with its stored ID (empty when not stored) and outcome.
func (s *SSEWriter) WriteComplete(verdictID string, valid bool) {
	status := "passed"
	if !valid {
		status = "failed"
	}
	s.WriteEvent(EventComplete, map[string]string{ //nolint:errcheck
		"verdict_id": verdictID,
		"status":     status,
	})
}

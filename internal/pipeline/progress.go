package pipeline

// Progress statuses reported through ProgressEvent.Status.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// ProgressEvent represents a progress update during a validation run
type ProgressEvent struct {
	Stage    string `json:"stage"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured
func (r *run) emitProgress(stage, status, message string, content any) {
	if r.onProgress == nil {
		return
	}
	category := ""
	if def, ok := StageRegistry[stage]; ok {
		category = def.Category
	}
	r.onProgress(ProgressEvent{
		Stage:    stage,
		Category: category,
		Status:   status,
		Message:  message,
		RunID:    r.id,
		Content:  content,
	})
}

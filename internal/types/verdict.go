package types

// StepResult is the outcome of a single pipeline stage.
type StepResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Output   string   `json:"output,omitempty"`  // Stage-specific rewritten text (e.g. sanitized markup)
	Details  any      `json:"details,omitempty"` // Stage-specific structured payload
}

// NewStepResult builds a StepResult whose validity is derived from the error list.
func NewStepResult(errors, warnings []string) StepResult {
	if errors == nil {
		errors = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return StepResult{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// Verdict is the terminal aggregate of one pipeline invocation.
type Verdict struct {
	Valid            bool                  `json:"valid"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	SanitizedCode    CodeBundle            `json:"sanitized_code"`
	ValidationSteps  map[string]StepResult `json:"validation_steps"`
	ProcessingTimeMs int64                 `json:"processing_time_ms"`
	ResponsiveReport string                `json:"responsive_report,omitempty"`
	Mode             Mode                  `json:"mode"`
}

// Advice severities returned by deployment recommendations.
const (
	AdviceSuccess = "success"
	AdviceWarning = "warning"
	AdviceError   = "error"
)

// DeployAdvice explains whether a verdict may be deployed and why.
type DeployAdvice struct {
	CanDeploy      bool   `json:"can_deploy"`
	Recommendation string `json:"recommendation"`
	Severity       string `json:"severity"`
}

package script

import (
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/pagegate/internal/types"
)

// Details is the structured payload attached to the script StepResult.
type Details struct {
	Findings []Finding `json:"findings"`
}

// StaticAnalyzer produces lint findings for a script.
type StaticAnalyzer interface {
	Analyze(src string) ([]Finding, error)
}

// Validator runs the forbidden-pattern, static-analysis and fragility passes.
type Validator struct {
	analyzer StaticAnalyzer
}

// NewValidator creates a Validator. A nil analyzer uses the default rule table.
func NewValidator(analyzer StaticAnalyzer) *Validator {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	return &Validator{analyzer: analyzer}
}

// Validate checks src. Errors and warnings accumulate across all three passes;
// an analyzer crash is downgraded to a warning.
func (v *Validator) Validate(src string) types.StepResult {
	if strings.TrimSpace(src) == "" {
		return types.NewStepResult(nil, nil)
	}

	var errs, warns []string
	seen := map[string]bool{}
	addErr := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			errs = append(errs, msg)
		}
	}
	addWarn := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			warns = append(warns, msg)
		}
	}

	forbiddenErrs, forbiddenWarns := checkForbidden(src)
	for _, e := range forbiddenErrs {
		addErr(e)
	}
	for _, w := range forbiddenWarns {
		addWarn(w)
	}

	findings, err := v.analyze(src)
	if err != nil {
		log.Printf("[SCRIPT] static analysis failed: %v", err)
		addWarn(fmt.Sprintf("Static analysis unavailable: %v", err))
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			addErr(f.String())
		case SeverityWarn:
			addWarn(f.String())
		}
	}

	for _, w := range checkFragility(src) {
		addWarn(w)
	}

	result := types.NewStepResult(errs, warns)
	if findings == nil {
		findings = []Finding{}
	}
	result.Details = Details{Findings: findings}
	return result
}

func (v *Validator) analyze(src string) (findings []Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings, err = nil, &AnalyzerError{Message: "analyzer panicked", Cause: fmt.Errorf("%v", r)}
		}
	}()
	return v.analyzer.Analyze(src)
}

// Validate checks src with the default rule table.
func Validate(src string) types.StepResult {
	return NewValidator(nil).Validate(src)
}

// Package pipeline orchestrates the validation stages and aggregates their
// results into a single verdict.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/pagegate/internal/markup"
	"github.com/jonathan/pagegate/internal/normalize"
	"github.com/jonathan/pagegate/internal/rendering"
	"github.com/jonathan/pagegate/internal/responsive"
	"github.com/jonathan/pagegate/internal/script"
	"github.com/jonathan/pagegate/internal/styles"
	"github.com/jonathan/pagegate/internal/types"
)

// Advisory warnings added when the dynamic stage does not run.
const (
	SkipAdvisory        = "Responsive testing was skipped; layout was not verified across viewports"
	UnavailableAdvisory = "Responsive testing unavailable: no rendering engine configured"
)

// RenderRequiredError blocks a deployment check that could not render the page.
const RenderRequiredError = "Responsive testing is required for deployment but no rendering engine is configured"

// Tester runs the dynamic stage against an assembled document. *responsive.Tester satisfies it.
type Tester interface {
	Run(ctx context.Context, document string) *types.ResponsiveResult
}

// Config holds the collaborators of a Pipeline
type Config struct {
	Tester   Tester            // nil leaves the dynamic stage unavailable
	Script   *script.Validator // nil uses the default rule table
	Document rendering.DocumentOptions
	Verbose  bool
}

// Pipeline validates code bundles. It is safe for concurrent use; each call
// owns its bundle and its own rendering session.
type Pipeline struct {
	tester    Tester
	scripts   *script.Validator
	sanitizer *markup.Sanitizer
	document  rendering.DocumentOptions
	verbose   bool
}

// New creates a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	scripts := cfg.Script
	if scripts == nil {
		scripts = script.NewValidator(nil)
	}
	return &Pipeline{
		tester:    cfg.Tester,
		scripts:   scripts,
		sanitizer: markup.NewSanitizer(),
		document:  cfg.Document,
		verbose:   cfg.Verbose,
	}
}

type run struct {
	id            string
	onProgress    ProgressCallback
	requireRender bool
}

// Validate runs every stage against req and returns the verdict. It never panics.
func (p *Pipeline) Validate(ctx context.Context, req types.ValidationRequest) *types.Verdict {
	return p.ValidateWithProgress(ctx, req, nil)
}

// ValidateQuick validates bundle without the dynamic stage.
func (p *Pipeline) ValidateQuick(ctx context.Context, bundle types.CodeBundle, mode types.Mode) *types.Verdict {
	return p.Validate(ctx, types.ValidationRequest{
		Markup:          bundle.Markup,
		Styles:          bundle.Styles,
		Script:          bundle.Script,
		Mode:            mode,
		SkipDynamicTest: true,
	})
}

// ValidateForDeployment validates bundle with strict enforcement and the
// dynamic stage enabled. Without a tester the verdict is blocking, so a page
// that was never rendered cannot be cleared for deployment.
func (p *Pipeline) ValidateForDeployment(ctx context.Context, bundle types.CodeBundle) *types.Verdict {
	req := types.ValidationRequest{
		Markup: bundle.Markup,
		Styles: bundle.Styles,
		Script: bundle.Script,
		Mode:   types.ModeStrict,
	}
	return p.validate(ctx, req, &run{id: uuid.NewString(), requireRender: true})
}

// ValidateWithProgress is Validate with a progress callback invoked as stages start and finish.
func (p *Pipeline) ValidateWithProgress(ctx context.Context, req types.ValidationRequest, onProgress ProgressCallback) *types.Verdict {
	return p.validate(ctx, req, &run{id: uuid.NewString(), onProgress: onProgress})
}

func (p *Pipeline) validate(ctx context.Context, req types.ValidationRequest, r *run) (verdict *types.Verdict) {
	start := time.Now()

	mode, err := types.ParseMode(string(req.Mode))
	if err != nil {
		return faultVerdict(types.ModeStrict, start, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[PIPELINE] Recovered from panic: %v", rec)
			verdict = faultVerdict(mode, start, fmt.Errorf("%v", rec))
			r.emitProgress("pipeline", StatusFailed, verdict.Errors[0], nil)
		}
	}()

	verdict = p.execute(ctx, r, req, mode)
	verdict.ProcessingTimeMs = time.Since(start).Milliseconds()
	if p.verbose {
		log.Printf("[PIPELINE] %s: valid=%t errors=%d warnings=%d (%dms)",
			r.id, verdict.Valid, len(verdict.Errors), len(verdict.Warnings), verdict.ProcessingTimeMs)
	}
	return verdict
}

func (p *Pipeline) execute(ctx context.Context, r *run, req types.ValidationRequest, mode types.Mode) *types.Verdict {
	steps := make(map[string]types.StepResult, len(StageOrder))

	bundle := normalize.Bundle(req.Bundle())
	r.emitProgress(StageNormalize, StatusCompleted, "Normalized code fences and whitespace", nil)

	steps[StageMarkup] = markup.Scan(bundle.Markup)
	r.emitProgress(StageMarkup, StatusCompleted, stepMessage("Markup scan", steps[StageMarkup]), nil)

	sanitized := p.sanitizer.Sanitize(bundle.Markup)
	sanitizeStep := types.NewStepResult(nil, nil)
	sanitizeStep.Output = sanitized
	steps[StageSanitize] = sanitizeStep
	bundle.Markup = sanitized
	r.emitProgress(StageSanitize, StatusCompleted, "Sanitized markup", nil)

	steps[StageStyles] = styles.Validate(bundle.Styles)
	r.emitProgress(StageStyles, StatusCompleted, stepMessage("Style validation", steps[StageStyles]), nil)

	steps[StageScript] = p.scripts.Validate(bundle.Script)
	r.emitProgress(StageScript, StatusCompleted, stepMessage("Script validation", steps[StageScript]), nil)

	wrapped := script.Wrap(bundle.Script)
	wrapStep := types.NewStepResult(nil, nil)
	wrapStep.Output = wrapped
	steps[StageWrap] = wrapStep
	bundle.Script = wrapped
	r.emitProgress(StageWrap, StatusCompleted, "Wrapped script in error boundary", nil)

	verdict := &types.Verdict{
		Mode:            mode,
		SanitizedCode:   bundle,
		ValidationSteps: steps,
	}

	var advisory string
	switch {
	case req.SkipDynamicTest:
		advisory = SkipAdvisory
		r.emitProgress(StageResponsive, StatusSkipped, advisory, nil)
	case p.tester == nil && r.requireRender:
		steps[StageResponsive] = types.NewStepResult([]string{RenderRequiredError}, nil)
		r.emitProgress(StageResponsive, StatusFailed, RenderRequiredError, nil)
	case p.tester == nil:
		advisory = UnavailableAdvisory
		r.emitProgress(StageResponsive, StatusSkipped, advisory, nil)
	default:
		r.emitProgress(StageResponsive, StatusStarted, "Rendering across viewports", nil)
		step, report := p.runResponsive(ctx, bundle)
		steps[StageResponsive] = step
		verdict.ResponsiveReport = report
		r.emitProgress(StageResponsive, StatusCompleted, stepMessage("Responsive test", step), step.Details)
	}

	verdict.Errors = []string{}
	verdict.Warnings = []string{}
	for _, name := range StageOrder {
		step, ok := steps[name]
		if !ok {
			continue
		}
		effective := ApplyMode(mode, name, step)
		verdict.Errors = append(verdict.Errors, effective.Errors...)
		verdict.Warnings = append(verdict.Warnings, effective.Warnings...)
	}
	if advisory != "" {
		verdict.Warnings = append(verdict.Warnings, advisory)
	}
	verdict.Valid = len(verdict.Errors) == 0
	return verdict
}

// runResponsive assembles the page and hands it to the tester. Critical issues
// become step errors, prefixed with the viewport they were found at.
func (p *Pipeline) runResponsive(ctx context.Context, bundle types.CodeBundle) (types.StepResult, string) {
	document, err := rendering.Assemble(bundle, p.document)
	if err != nil {
		log.Printf("[PIPELINE] Failed to assemble document: %v", err)
		return types.NewStepResult([]string{fmt.Sprintf("Responsive testing failed: %v", err)}, nil), ""
	}

	result := p.tester.Run(ctx, document)
	if result == nil {
		return types.NewStepResult([]string{"Responsive testing failed: no result"}, nil), ""
	}

	var errs, warns []string
	if result.Error != "" {
		errs = append(errs, "Responsive testing failed: "+result.Error)
	}
	for _, vr := range result.Viewports {
		for _, issue := range vr.Issues {
			msg := fmt.Sprintf("%s: %s", vr.Viewport.Name, issue.Message)
			if issue.IsCritical() {
				errs = append(errs, msg)
			} else {
				warns = append(warns, msg)
			}
		}
	}
	step := types.NewStepResult(errs, warns)
	step.Details = result
	return step, responsive.FormatReport(result)
}

// faultVerdict is the terminal verdict for an unexpected failure.
func faultVerdict(mode types.Mode, start time.Time, err error) *types.Verdict {
	return &types.Verdict{
		Valid:            false,
		Errors:           []string{fmt.Sprintf("Pipeline error: %v", err)},
		Warnings:         []string{},
		SanitizedCode:    types.CodeBundle{},
		ValidationSteps:  map[string]types.StepResult{},
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Mode:             mode,
	}
}

func stepMessage(label string, step types.StepResult) string {
	return fmt.Sprintf("%s: %d error(s), %d warning(s)", label, len(step.Errors), len(step.Warnings))
}

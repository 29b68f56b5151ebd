package responsive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/pagegate/internal/types"
)

// Default timing for the dynamic stage.
const (
	DefaultRenderTimeout = 30 * time.Second
	DefaultSettleDelay   = 500 * time.Millisecond
	viewportOverhead     = 15 * time.Second
)

// Options configures a Tester.
type Options struct {
	Viewports       []types.Viewport // Defaults to DefaultViewports
	RenderTimeout   time.Duration    // Bound on reaching network idle
	ViewportTimeout time.Duration    // Bound on one whole viewport; defaults to RenderTimeout + 15s
	SettleDelay     time.Duration    // Pause after network idle for transitions
	ArtifactDir     string           // Screenshots are written here when set
	Verbose         bool
}

// Tester renders a document at each viewport and runs the layout assertions.
type Tester struct {
	browser Browser
	opts    Options
}

// NewTester creates a Tester, filling unset options with defaults.
func NewTester(browser Browser, opts Options) *Tester {
	if len(opts.Viewports) == 0 {
		opts.Viewports = Viewports()
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = DefaultRenderTimeout
	}
	if opts.ViewportTimeout <= 0 {
		opts.ViewportTimeout = opts.RenderTimeout + viewportOverhead
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	return &Tester{browser: browser, opts: opts}
}

// Options returns the effective options.
func (t *Tester) Options() Options {
	return t.opts
}

// Run tests document at every viewport, one at a time. It never returns an
// error: an engine that cannot start yields a failed result with one critical issue.
func (t *Tester) Run(ctx context.Context, document string) *types.ResponsiveResult {
	result := &types.ResponsiveResult{Viewports: []types.ViewportResult{}}

	session, err := t.browser.Launch(ctx)
	if err != nil {
		var launchErr *LaunchError
		if !errors.As(err, &launchErr) {
			launchErr = &LaunchError{Message: "failed to launch rendering engine", Cause: err}
		}
		log.Printf("[RESPONSIVE] %v", launchErr)
		result.Passed = false
		result.Error = launchErr.Error()
		result.Summary = types.IssueSummary{Total: 1, Critical: 1}
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("[RESPONSIVE] Warning: %v", err)
		}
	}()

	for _, vp := range t.opts.Viewports {
		vr := t.testViewport(ctx, session, vp, document)
		if t.opts.Verbose {
			log.Printf("[RESPONSIVE] %s: passed=%t issues=%d", vp, vr.Passed, len(vr.Issues))
		}
		result.Viewports = append(result.Viewports, vr)
	}

	summarize(result)
	return result
}

func summarize(result *types.ResponsiveResult) {
	result.Passed = true
	result.Summary = types.IssueSummary{}
	for _, vr := range result.Viewports {
		if !vr.Passed {
			result.Passed = false
		}
		for _, issue := range vr.Issues {
			result.Summary.Total++
			switch issue.Severity {
			case types.SeverityCritical:
				result.Summary.Critical++
			case types.SeverityWarning:
				result.Summary.Warning++
			}
		}
	}
}

func (t *Tester) testViewport(ctx context.Context, session Session, vp types.Viewport, document string) types.ViewportResult {
	vctx, cancel := context.WithTimeout(ctx, t.opts.ViewportTimeout)
	defer cancel()

	issues, shot, err := t.inspect(vctx, session, vp, document)
	if err != nil {
		verr := &ViewportError{Viewport: vp.Name, Message: "test failed", Cause: err}
		log.Printf("[RESPONSIVE] %v", verr)
		issues = []types.Issue{{
			Type:     IssueTestFailure,
			Severity: types.SeverityCritical,
			Message:  fmt.Sprintf("Failed to test viewport %s: %v", vp.Name, err),
		}}
	}
	if issues == nil {
		issues = []types.Issue{}
	}

	passed := true
	for _, issue := range issues {
		if issue.IsCritical() {
			passed = false
			break
		}
	}
	return types.ViewportResult{Viewport: vp, Passed: passed, Issues: issues, Screenshot: shot}
}

// inspect runs one viewport in its own page. The page is always closed before returning.
func (t *Tester) inspect(ctx context.Context, session Session, vp types.Viewport, document string) (issues []types.Issue, screenshot string, err error) {
	page, err := session.NewPage(ctx, vp)
	if err != nil {
		return nil, "", fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Printf("[RESPONSIVE] Warning: closing %s page: %v", vp.Name, cerr)
		}
	}()

	loadCtx, cancel := context.WithTimeout(ctx, t.opts.RenderTimeout)
	err = page.Load(loadCtx, document)
	cancel()
	if err != nil {
		return nil, "", fmt.Errorf("load document: %w", err)
	}

	if t.opts.SettleDelay > 0 {
		select {
		case <-time.After(t.opts.SettleDelay):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}

	for _, a := range assertions {
		if a.mobile && !vp.IsMobile {
			continue
		}
		found, aerr := a.check(ctx, page, vp)
		if aerr != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			issues = append(issues, types.Issue{
				Type:     IssueAssertionError,
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("Could not run %s check: %v", a.name, aerr),
			})
			continue
		}
		issues = append(issues, found...)
	}

	runtimeErrs, consoleErrs := page.Errors()
	issues = append(issues, errorIssues(runtimeErrs, consoleErrs)...)

	if t.opts.ArtifactDir != "" {
		screenshot = t.saveScreenshot(ctx, page, vp)
	}
	return issues, screenshot, nil
}

func (t *Tester) saveScreenshot(ctx context.Context, page Page, vp types.Viewport) string {
	buf, err := page.Screenshot(ctx)
	if err != nil {
		log.Printf("[RESPONSIVE] Warning: screenshot for %s failed: %v", vp.Name, err)
		return ""
	}
	if err := os.MkdirAll(t.opts.ArtifactDir, 0o755); err != nil {
		log.Printf("[RESPONSIVE] Warning: creating artifact dir: %v", err)
		return ""
	}
	path := filepath.Join(t.opts.ArtifactDir, screenshotFile(vp.Name))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		log.Printf("[RESPONSIVE] Warning: writing screenshot: %v", err)
		return ""
	}
	return path
}

// screenshotFile maps a viewport name to a file name that stays inside the artifact dir.
func screenshotFile(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if safe == "" {
		safe = "viewport"
	}
	return safe + ".png"
}

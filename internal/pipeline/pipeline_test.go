package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pagegate/internal/script"
	"github.com/jonathan/pagegate/internal/types"
)

const evalMessage = "Forbidden: eval() performs dynamic evaluation"

func countOf(list []string, item string) int {
	n := 0
	for _, s := range list {
		if s == item {
			n++
		}
	}
	return n
}

func containsPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func TestValidate_CleanInput(t *testing.T) {
	p := New(Config{})
	v := p.ValidateQuick(context.Background(), types.CodeBundle{}, types.ModeStrict)

	require.NotNil(t, v)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	assert.Equal(t, []string{SkipAdvisory}, v.Warnings)
	assert.Equal(t, types.ModeStrict, v.Mode)
	assert.NotContains(t, v.ValidationSteps, StageResponsive)
}

func TestValidate_CleanInputWithTester(t *testing.T) {
	tester := &fakeTester{result: passingResult()}
	p := New(Config{Tester: tester})

	v := p.Validate(context.Background(), types.ValidationRequest{})

	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	assert.Empty(t, v.Warnings)
	assert.Equal(t, 1, tester.calls())
	assert.Contains(t, v.ResponsiveReport, "Responsive test: PASSED")
}

func TestValidate_EvalStrict(t *testing.T) {
	p := New(Config{})
	v := p.Validate(context.Background(), types.ValidationRequest{
		Script:          "eval('1 + 1');",
		SkipDynamicTest: true,
	})

	assert.False(t, v.Valid)
	assert.Contains(t, v.Errors, evalMessage)
	assert.False(t, v.ValidationSteps[StageScript].Valid)
}

func TestValidate_EvalPermissive(t *testing.T) {
	p := New(Config{})
	v := p.Validate(context.Background(), types.ValidationRequest{
		Script:          "eval('1 + 1');",
		Mode:            types.ModePermissive,
		SkipDynamicTest: true,
	})

	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	assert.Contains(t, v.Warnings, evalMessage)
	// The raw stage result keeps the error; only the verdict demotes it.
	assert.Contains(t, v.ValidationSteps[StageScript].Errors, evalMessage)
}

func TestValidate_MarkupErrorsBlockInEveryMode(t *testing.T) {
	p := New(Config{})
	for _, mode := range []types.Mode{types.ModeStrict, types.ModePermissive} {
		t.Run(string(mode), func(t *testing.T) {
			v := p.Validate(context.Background(), types.ValidationRequest{
				Markup:          `<iframe src="https://example.com"></iframe><p>hi</p>`,
				Mode:            mode,
				SkipDynamicTest: true,
			})
			assert.False(t, v.Valid)
			assert.Contains(t, v.Errors, "Embedded frames (<iframe>) are not allowed")
			assert.NotContains(t, v.SanitizedCode.Markup, "iframe")
		})
	}
}

func TestValidate_StyleErrorsBlockInEveryMode(t *testing.T) {
	p := New(Config{})
	for _, mode := range []types.Mode{types.ModeStrict, types.ModePermissive} {
		v := p.Validate(context.Background(), types.ValidationRequest{
			Styles:          `@import url("https://evil.example.com/x.css");`,
			Mode:            mode,
			SkipDynamicTest: true,
		})
		assert.False(t, v.Valid, "mode %s", mode)
		assert.True(t, containsPrefix(v.Errors, "External @import"), "mode %s", mode)
	}
}

func TestValidate_ModeMonotonicity(t *testing.T) {
	inputs := []types.ValidationRequest{
		{Script: "eval('x');"},
		{Script: "const a = {x: 1, x: 2};"},
		{Markup: `<a href="javascript:alert(1)">x</a>`},
		{Script: "let unused = 1;"},
		{},
	}
	tester := &fakeTester{result: overflowResult()}
	p := New(Config{Tester: tester})

	for i, in := range inputs {
		strictReq := in
		strictReq.Mode = types.ModeStrict
		permissiveReq := in
		permissiveReq.Mode = types.ModePermissive

		strict := p.Validate(context.Background(), strictReq)
		permissive := p.Validate(context.Background(), permissiveReq)
		if strict.Valid {
			assert.True(t, permissive.Valid, "input %d valid in strict but not permissive", i)
		}
		assert.LessOrEqual(t, len(permissive.Errors), len(strict.Errors), "input %d", i)
	}
}

func TestValidate_SkipAdvisoryExactlyOnce(t *testing.T) {
	p := New(Config{Tester: &fakeTester{result: passingResult()}})
	v := p.Validate(context.Background(), types.ValidationRequest{
		Markup:          "<p>hello</p>",
		Script:          "eval('1');",
		Mode:            types.ModePermissive,
		SkipDynamicTest: true,
	})
	assert.Equal(t, 1, countOf(v.Warnings, SkipAdvisory))
	assert.Empty(t, v.ResponsiveReport)
}

func TestValidate_NoTesterIsUnavailable(t *testing.T) {
	p := New(Config{})
	v := p.Validate(context.Background(), types.ValidationRequest{})

	assert.True(t, v.Valid)
	assert.Equal(t, []string{UnavailableAdvisory}, v.Warnings)
}

func TestValidate_ResponsiveCriticalStrict(t *testing.T) {
	tester := &fakeTester{result: overflowResult()}
	p := New(Config{Tester: tester})

	v := p.Validate(context.Background(), types.ValidationRequest{
		Markup: `<div style="width:5000px">wide</div>`,
	})

	assert.False(t, v.Valid)
	assert.True(t, containsPrefix(v.Errors, "mobile-small: Content overflows the 320px viewport"))
	assert.Contains(t, v.ResponsiveReport, "Responsive test: FAILED")
	require.Len(t, tester.documents, 1)
	assert.Contains(t, tester.documents[0], script.BoundaryMarker)
}

func TestValidate_ResponsiveCriticalPermissive(t *testing.T) {
	p := New(Config{Tester: &fakeTester{result: overflowResult()}})

	v := p.Validate(context.Background(), types.ValidationRequest{Mode: types.ModePermissive})

	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	assert.True(t, containsPrefix(v.Warnings, "mobile-small: Content overflows"))
}

func TestValidate_EngineLaunchFailure(t *testing.T) {
	result := &types.ResponsiveResult{
		Passed:    false,
		Error:     "failed to start chrome: exec: not found",
		Viewports: []types.ViewportResult{},
		Summary:   types.IssueSummary{Total: 1, Critical: 1},
	}
	p := New(Config{Tester: &fakeTester{result: result}})

	v := p.Validate(context.Background(), types.ValidationRequest{})

	assert.False(t, v.Valid)
	assert.Equal(t, []string{"Responsive testing failed: failed to start chrome: exec: not found"}, v.Errors)
}

func TestValidate_NilTesterResult(t *testing.T) {
	p := New(Config{Tester: &fakeTester{}})
	v := p.Validate(context.Background(), types.ValidationRequest{})

	assert.False(t, v.Valid)
	assert.Equal(t, []string{"Responsive testing failed: no result"}, v.Errors)
}

func TestValidate_PanicBecomesFaultVerdict(t *testing.T) {
	p := New(Config{Tester: &fakeTester{panicWith: "boom"}})

	var v *types.Verdict
	require.NotPanics(t, func() {
		v = p.Validate(context.Background(), types.ValidationRequest{
			Markup: "<p>hi</p>",
			Script: "console.log('x');",
		})
	})

	assert.False(t, v.Valid)
	assert.Equal(t, []string{"Pipeline error: boom"}, v.Errors)
	assert.Empty(t, v.Warnings)
	assert.Equal(t, types.CodeBundle{}, v.SanitizedCode)
	assert.Empty(t, v.ValidationSteps)
}

func TestValidate_UnknownMode(t *testing.T) {
	p := New(Config{})
	v := p.Validate(context.Background(), types.ValidationRequest{Mode: "lenient"})

	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 1)
	assert.True(t, strings.HasPrefix(v.Errors[0], "Pipeline error: unknown mode"))
}

func TestValidate_SanitizedCode(t *testing.T) {
	p := New(Config{})
	v := p.Validate(context.Background(), types.ValidationRequest{
		Markup:          "```html\n<p onclick=\"alert(1)\">hi</p>\n```",
		Styles:          ".box { color: red; }",
		Script:          "console.log('ready');",
		SkipDynamicTest: true,
	})

	assert.NotContains(t, v.SanitizedCode.Markup, "onclick")
	assert.NotContains(t, v.SanitizedCode.Markup, "```")
	assert.Contains(t, v.SanitizedCode.Markup, "hi")
	assert.Contains(t, v.SanitizedCode.Styles, ".box")
	assert.True(t, script.IsWrapped(v.SanitizedCode.Script))
	assert.Equal(t, v.SanitizedCode.Markup, v.ValidationSteps[StageSanitize].Output)
	assert.Equal(t, v.SanitizedCode.Script, v.ValidationSteps[StageWrap].Output)
}

func TestValidateForDeployment(t *testing.T) {
	tester := &fakeTester{result: overflowResult()}
	p := New(Config{Tester: tester})

	v := p.ValidateForDeployment(context.Background(), types.CodeBundle{})

	assert.Equal(t, types.ModeStrict, v.Mode)
	assert.Equal(t, 1, tester.calls())
	assert.False(t, v.Valid)
}

func TestValidateForDeployment_RequiresTester(t *testing.T) {
	p := New(Config{})
	bundle := types.CodeBundle{
		Markup: `<div class="wide">content</div>`,
		Styles: ".wide { width: 5000px; }",
	}

	v := p.ValidateForDeployment(context.Background(), bundle)

	assert.False(t, v.Valid)
	assert.Equal(t, []string{RenderRequiredError}, v.Errors)
	assert.NotContains(t, v.Warnings, UnavailableAdvisory)
	assert.False(t, CanDeploy(v))
	assert.False(t, DeploymentRecommendation(v).CanDeploy)

	// ordinary strict validation without a tester stays advisory
	v = p.Validate(context.Background(), types.ValidationRequest{Markup: bundle.Markup, Styles: bundle.Styles})
	assert.True(t, v.Valid)
	assert.Contains(t, v.Warnings, UnavailableAdvisory)
}

func TestValidateWithProgress(t *testing.T) {
	p := New(Config{Tester: &fakeTester{result: passingResult()}})

	var events []ProgressEvent
	v := p.ValidateWithProgress(context.Background(), types.ValidationRequest{}, func(e ProgressEvent) {
		events = append(events, e)
	})
	require.True(t, v.Valid)
	require.NotEmpty(t, events)

	runID := events[0].RunID
	assert.NotEmpty(t, runID)
	var stages []string
	for _, e := range events {
		assert.Equal(t, runID, e.RunID)
		if e.Status == StatusCompleted {
			stages = append(stages, e.Stage)
		}
	}
	assert.Equal(t, StageOrder, stages)
	assert.Equal(t, CategoryDynamic, events[len(events)-1].Category)
}

package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/pagegate/internal/types"
)

func TestPrintVerdict(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVerdict(&types.Verdict{
		Valid:            false,
		Mode:             types.ModeStrict,
		Errors:           []string{"Embedded frames (<iframe>) are not allowed"},
		Warnings:         []string{"Responsive testing was skipped"},
		ProcessingTimeMs: 42,
	})
	output := buf.String()

	assert.Contains(t, output, "Validation")
	assert.Contains(t, output, "FAILED")
	assert.Contains(t, output, "strict mode · 1 error(s) · 1 warning(s) · 42ms")
	assert.Contains(t, output, "Embedded frames (<iframe>) are not allowed")
	assert.Contains(t, output, "Responsive testing was skipped")
}

func TestPrintVerdict_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintVerdict(nil)
	assert.Contains(t, buf.String(), "No verdict available.")
}

func TestPrintStages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStages(&types.Verdict{ValidationSteps: map[string]types.StepResult{
		"script": types.NewStepResult([]string{"Forbidden: eval() performs dynamic evaluation"}, nil),
		"styles": types.NewStepResult(nil, []string{"too many !important"}),
	}})
	output := buf.String()

	assert.Contains(t, output, "VALIDATION STAGES")
	assert.Contains(t, output, "script       FAIL")
	assert.Contains(t, output, "styles       ok")
	assert.Contains(t, output, "too many !important")
	assert.Less(t, strings.Index(output, "script"), strings.Index(output, "styles"))
}

func TestPrintStages_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStages(&types.Verdict{})
	assert.Empty(t, buf.String())
}

func TestPrintResponsive(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	issues := make([]types.Issue, 0, 10)
	for i := 0; i < 10; i++ {
		issues = append(issues, types.Issue{Severity: types.SeverityWarning, Message: fmt.Sprintf("issue %d", i)})
	}
	p.PrintResponsive(&types.ResponsiveResult{
		Passed: false,
		Viewports: []types.ViewportResult{
			{Viewport: types.Viewport{Name: "mobile", Width: 375, Height: 667}, Passed: false, Issues: issues},
		},
		Summary: types.IssueSummary{Total: 10, Warning: 10},
	})
	output := buf.String()

	assert.Contains(t, output, "RESPONSIVE TEST")
	assert.Contains(t, output, "[FAIL] mobile (375x667)")
	assert.Contains(t, output, "issue 7")
	assert.NotContains(t, output, "issue 8")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintAdvice(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAdvice(types.DeployAdvice{CanDeploy: false, Recommendation: "Fix 1 blocking error(s) before deploying", Severity: types.AdviceError})
	assert.Contains(t, buf.String(), "deploy: no")
	assert.Contains(t, buf.String(), "Fix 1 blocking error(s)")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgress("script", "completed", "Script validation: 0 error(s), 0 warning(s)")
	assert.Contains(t, buf.String(), "[script/completed]")
	assert.Contains(t, buf.String(), "Script validation")
}

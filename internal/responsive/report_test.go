package responsive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/pagegate/internal/types"
)

func TestFormatReport(t *testing.T) {
	assert.Equal(t, "Responsive test: no data", FormatReport(nil))

	report := FormatReport(&types.ResponsiveResult{
		Passed: false,
		Viewports: []types.ViewportResult{
			{Viewport: DefaultViewports[0], Passed: false, Issues: []types.Issue{
				{Type: IssueLayoutOverflow, Severity: types.SeverityCritical, Message: "Content overflows"},
			}},
			{Viewport: DefaultViewports[4], Passed: true, Issues: []types.Issue{}},
		},
		Summary: types.IssueSummary{Total: 1, Critical: 1},
	})

	assert.Contains(t, report, "Responsive test: FAILED")
	assert.Contains(t, report, "Issues: 1 total (1 critical, 0 warning)")
	assert.Contains(t, report, "[FAIL] mobile-small (320x568)")
	assert.Contains(t, report, "  - [critical] Content overflows")
	assert.Contains(t, report, "[PASS] desktop (1920x1080)")
}

func TestFormatReport_LaunchError(t *testing.T) {
	report := FormatReport(&types.ResponsiveResult{Error: "launch error: no chrome", Summary: types.IssueSummary{Total: 1, Critical: 1}})
	assert.Contains(t, report, "Error: launch error: no chrome")
}

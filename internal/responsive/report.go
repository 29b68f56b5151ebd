package responsive

import (
	"fmt"
	"strings"

	"github.com/jonathan/pagegate/internal/types"
)

// FormatReport renders a ResponsiveResult as plain text for logs and CLI output.
func FormatReport(result *types.ResponsiveResult) string {
	if result == nil {
		return "Responsive test: no data"
	}

	var b strings.Builder
	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "Responsive test: %s\n", status)
	if result.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", result.Error)
	}
	fmt.Fprintf(&b, "Issues: %d total (%d critical, %d warning)\n",
		result.Summary.Total, result.Summary.Critical, result.Summary.Warning)

	for _, vr := range result.Viewports {
		mark := "PASS"
		if !vr.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "\n[%s] %s\n", mark, vr.Viewport)
		for _, issue := range vr.Issues {
			fmt.Fprintf(&b, "  - [%s] %s\n", issue.Severity, issue.Message)
		}
		if vr.Screenshot != "" {
			fmt.Fprintf(&b, "  screenshot: %s\n", vr.Screenshot)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/pagegate/internal/types"
)

// FormatVerdict renders a verdict as a multi-line summary for logs and audit display.
func FormatVerdict(v *types.Verdict) string {
	if v == nil {
		return "Validation report: no data"
	}

	var b strings.Builder
	status := "PASSED"
	if !v.Valid {
		status = "FAILED"
	}
	mode := v.Mode
	if mode == "" {
		mode = types.ModeStrict
	}
	fmt.Fprintf(&b, "Validation: %s (%s mode, %dms)\n", status, mode, v.ProcessingTimeMs)

	writeList(&b, "Errors", v.Errors)
	writeList(&b, "Warnings", v.Warnings)

	if v.ResponsiveReport != "" {
		b.WriteString("\n")
		b.WriteString(v.ResponsiveReport)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

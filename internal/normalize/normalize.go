// Package normalize strips model output artifacts from code fragments before analysis.
package normalize

import (
	"regexp"
	"strings"

	"github.com/jonathan/pagegate/internal/types"
)

var (
	// openFence matches an opening fenced-code line, optionally with a language tag.
	openFence = regexp.MustCompile("^[ \t]*(?:```|~~~)[ \t]*[\\w+#.-]*[ \t]*\r?$")
	// closeFence matches a bare closing fence line.
	closeFence = regexp.MustCompile("^[ \t]*(?:```|~~~)[ \t]*\r?$")
)

// CleanCode removes the fence that wraps a whole fragment, plus surrounding
// whitespace. Fence lines inside the fragment are content and stay.
func CleanCode(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if openFence.MatchString(lines[0]) {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && closeFence.MatchString(lines[n-1]) {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Bundle returns a copy of the bundle with every fragment cleaned.
func Bundle(b types.CodeBundle) types.CodeBundle {
	return types.CodeBundle{
		Markup: CleanCode(b.Markup),
		Styles: CleanCode(b.Styles),
		Script: CleanCode(b.Script),
	}
}

// Package styles validates untrusted CSS for security, framework conflicts, layout safety and performance.
package styles

import (
	"regexp"
	"strings"

	"github.com/jonathan/pagegate/internal/types"
)

const (
	// maxColorLiterals is the number of hardcoded colours tolerated before a maintainability warning.
	maxColorLiterals = 10
	// maxImportant is the number of !important declarations tolerated.
	maxImportant = 5
	// maxKeyframes is the number of @keyframes blocks tolerated.
	maxKeyframes = 10
	// maxInlineImageBytes is the largest base64 payload tolerated in a data URI.
	maxInlineImageBytes = 10 * 1024
	// maxZIndex is the largest z-index that does not trigger a warning.
	maxZIndex = 1000
	// maxFixedWidthPx is the largest fixed width or height that does not trigger a warning.
	maxFixedWidthPx = 1200
)

// rule pairs a detector with the message reported when it matches.
type rule struct {
	re      *regexp.Regexp
	message string
}

// check runs one group of rules against the stylesheet.
type check func(css string, m metrics) (errors, warnings []string)

var checks = []check{
	checkSecurity,
	checkConflicts,
	checkLayout,
	checkPerformance,
}

// Validate runs every style check and concatenates their findings.
// Only the security check produces errors.
func Validate(css string) types.StepResult {
	if strings.TrimSpace(css) == "" {
		return types.NewStepResult(nil, nil)
	}

	m := measure(css)
	var errs, warns []string
	for _, c := range checks {
		e, w := c(css, m)
		errs = append(errs, e...)
		warns = append(warns, w...)
	}

	result := types.NewStepResult(errs, warns)
	result.Details = m
	return result
}

func matchRules(css string, rules []rule) []string {
	var found []string
	for _, r := range rules {
		if r.re.MatchString(css) {
			found = append(found, r.message)
		}
	}
	return found
}

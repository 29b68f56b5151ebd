package rendering

import (
	"html"
	"regexp"
)

var (
	styleCloser  = regexp.MustCompile(`(?i)</(style)`)
	scriptCloser = regexp.MustCompile(`(?i)</(script)`)
	commentOpen  = regexp.MustCompile(`<!--`)
)

// EscapeStyle neutralises closing </style> sequences so CSS cannot end its own block.
func EscapeStyle(css string) string {
	if css == "" {
		return ""
	}
	return styleCloser.ReplaceAllString(css, `<\/$1`)
}

// EscapeScript neutralises </script> and <!-- so script text stays inside its block.
// Both rewrites are no-ops for the JavaScript engine.
func EscapeScript(js string) string {
	if js == "" {
		return ""
	}
	js = scriptCloser.ReplaceAllString(js, `<\/$1`)
	return commentOpen.ReplaceAllString(js, `<\!--`)
}

// EscapeText escapes text for use in element content or attribute values.
func EscapeText(text string) string {
	return html.EscapeString(text)
}

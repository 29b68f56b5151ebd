// Package script validates untrusted inline JavaScript and wraps it in an error boundary.
package script

import "regexp"

// pattern pairs a detector with its message. Advisory patterns are reported as warnings.
type pattern struct {
	re       *regexp.Regexp
	message  string
	advisory bool
}

// forbiddenPatterns run against the raw script before parsing.
var forbiddenPatterns = []pattern{
	{re: regexp.MustCompile(`\beval\s*\(`), message: "Forbidden: eval() performs dynamic evaluation"},
	{re: regexp.MustCompile(`\bnew\s+Function\s*\(`), message: "Forbidden: new Function() performs dynamic function construction"},
	{re: regexp.MustCompile(`\bset(?:Timeout|Interval)\s*\(\s*['"]`), message: "Forbidden: string arguments to setTimeout/setInterval are evaluated as code"},
	{re: regexp.MustCompile(`\bdocument\s*\.\s*write(?:ln)?\s*\(`), message: "Forbidden: document.write() rewrites the page"},
	{re: regexp.MustCompile(`\.\s*(?:inner|outer)HTML\s*\+?=\s*[^=\s'"]`), message: "Forbidden: innerHTML/outerHTML assigned from a dynamic value (use textContent or build nodes)"},
	{re: regexp.MustCompile(`\binsertAdjacentHTML\s*\(\s*['"][\w-]+['"]\s*,\s*[^'"\s]`), message: "Forbidden: insertAdjacentHTML() with a dynamic value"},
	{re: regexp.MustCompile(`__proto__`), message: "Forbidden: __proto__ access enables prototype pollution"},
	{re: regexp.MustCompile(`\b(?:Object|Array|String|Function)\s*\.\s*prototype\s*(?:\.\s*\w+|\[[^\]]+\])\s*=[^=]`), message: "Forbidden: modifying built-in prototypes"},
	{re: regexp.MustCompile(`\.\s*constructor\s*\.\s*prototype\b`), message: "Forbidden: constructor.prototype access enables prototype pollution"},
	{re: regexp.MustCompile(`(?m)^\s*import\s+(?:[\w$*{]|['"])`), message: "Forbidden: ES module import statements are not supported in inline scripts"},
	{re: regexp.MustCompile(`(?m)^\s*export\s+(?:default\b|const\b|let\b|var\b|function\b|class\b|\{)`), message: "Forbidden: ES module export statements are not supported in inline scripts"},
	{re: regexp.MustCompile(`\bimport\s*\(`), message: "Forbidden: dynamic import() is not supported in inline scripts"},
	{re: regexp.MustCompile(`\brequire\s*\(\s*['"]`), message: "Forbidden: require() is not available in the browser"},
	{re: regexp.MustCompile(`\bfetch\s*\(`), message: "Network request via fetch() detected; verify the endpoint is trusted", advisory: true},
	{re: regexp.MustCompile(`\bnew\s+XMLHttpRequest\s*\(`), message: "Network request via XMLHttpRequest detected; verify the endpoint is trusted", advisory: true},
}

// checkForbidden returns errors and warnings for the forbidden-pattern pass.
func checkForbidden(src string) (errors, warnings []string) {
	for _, p := range forbiddenPatterns {
		if !p.re.MatchString(src) {
			continue
		}
		if p.advisory {
			warnings = append(warnings, p.message)
		} else {
			errors = append(errors, p.message)
		}
	}
	return errors, warnings
}

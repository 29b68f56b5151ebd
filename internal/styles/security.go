package styles

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var securityRules = []rule{
	{regexp.MustCompile(`(?i)javascript\s*:`), "javascript: URLs are not allowed in CSS"},
	{regexp.MustCompile(`(?i)vbscript\s*:`), "vbscript: URLs are not allowed in CSS"},
	{regexp.MustCompile(`(?i)-moz-binding\s*:`), "-moz-binding is not allowed in CSS"},
	{regexp.MustCompile(`(?i)\bexpression\s*\(`), "CSS expression() is not allowed"},
	{regexp.MustCompile(`(?i)\bbehavior\s*:`), "CSS behavior property is not allowed"},
}

// importRule captures the target of an @import in either url() or string form.
var importRule = regexp.MustCompile(`(?i)@import\s+(?:url\(\s*)?['"]?([^'")\s;]+)`)

// trustedImportHosts may be imported from.
var trustedImportHosts = map[string]bool{
	"fonts.googleapis.com": true,
	"fonts.bunny.net":      true,
}

func checkSecurity(css string, _ metrics) (errors, warnings []string) {
	errors = matchRules(css, securityRules)

	for _, m := range importRule.FindAllStringSubmatch(css, -1) {
		target := m[1]
		if isUntrustedImport(target) {
			errors = append(errors, fmt.Sprintf("External @import of untrusted stylesheet is not allowed: %s", target))
		}
	}
	return errors, nil
}

// isUntrustedImport reports whether an @import target leaves the page's own origin
// for a host outside the trusted list.
func isUntrustedImport(target string) bool {
	if strings.HasPrefix(target, "//") {
		target = "https:" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return true
	}
	if u.Scheme == "" && u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return true
	}
	return !trustedImportHosts[strings.ToLower(u.Hostname())]
}

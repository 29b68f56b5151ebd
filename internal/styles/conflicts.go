package styles

import (
	"fmt"
	"regexp"
)

// utilityOverride matches rules that redefine common utility-framework class names.
var utilityOverride = regexp.MustCompile(`(?m)(?:^|[}\s,])\.(container|flex|grid|hidden|block|inline|inline-block|relative|absolute|fixed|sticky|(?:p|m|px|py|mx|my|pt|pb|mt|mb|w|h|gap)-\d+|text-(?:xs|sm|base|lg|xl|\dxl|center|left|right)|bg-[a-z]+-\d{2,3}|rounded(?:-[a-z]+)?|shadow(?:-[a-z]+)?)\s*[{,]`)

var conflictRules = []rule{
	{regexp.MustCompile(`(?s)(?:^|[}\s])\*\s*\{[^}]*\b(?:margin|padding|box-sizing|display|position|width|font-size)\s*:`),
		"Universal selector (*) sets layout properties; this overrides the framework's base styles"},
	{regexp.MustCompile(`(?m)@(?:tailwind|apply|layer|config|screen)\b`),
		"Framework build directives (@tailwind/@apply/@layer) do not work without a build step"},
}

func checkConflicts(css string, m metrics) (errors, warnings []string) {
	seen := make(map[string]bool)
	for _, match := range utilityOverride.FindAllStringSubmatch(css, -1) {
		class := match[1]
		if seen[class] {
			continue
		}
		seen[class] = true
		warnings = append(warnings, fmt.Sprintf("Redefines utility class .%s; this collides with framework utilities", class))
	}

	warnings = append(warnings, matchRules(css, conflictRules)...)

	if m.Important > maxImportant {
		warnings = append(warnings, fmt.Sprintf("Excessive !important usage (%d declarations)", m.Important))
	}
	if m.ColorLiterals > maxColorLiterals {
		warnings = append(warnings, fmt.Sprintf("Found %d hardcoded color values; consider CSS custom properties or framework colors", m.ColorLiterals))
	}
	return nil, warnings
}

package styles

import (
	"fmt"
	"regexp"
)

var (
	inlineImage = regexp.MustCompile(`(?i)data:image/[a-z0-9.+-]+;base64,([A-Za-z0-9+/=]+)`)

	selectorRules = []rule{
		{regexp.MustCompile(`(?m)[\w\])]\s+\*\s*[{,:]`), "Descendant universal selectors (e.g. \"div *\") are slow to match"},
		{regexp.MustCompile(`\[\s*[\w-]+\s*\*=`), "Substring attribute selectors ([attr*=...]) are slow to match"},
		{regexp.MustCompile(`(?m)(?:[.#]?[\w-]+\s+){5,}[.#]?[\w-]+\s*\{`), "Deeply nested descendant selectors are slow to match"},
	}
)

func checkPerformance(css string, m metrics) (errors, warnings []string) {
	warnings = matchRules(css, selectorRules)

	if m.Keyframes > maxKeyframes {
		warnings = append(warnings, fmt.Sprintf("Too many @keyframes animations (%d)", m.Keyframes))
	}

	for _, match := range inlineImage.FindAllStringSubmatch(css, -1) {
		if len(match[1]) > maxInlineImageBytes {
			warnings = append(warnings, fmt.Sprintf("Large inline base64 image (%d KB); serve it as a file instead", len(match[1])/1024))
		}
	}
	return nil, warnings
}

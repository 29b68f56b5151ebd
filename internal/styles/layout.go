package styles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// minResponsivePx is the narrowest supported viewport; fixed widths at or above it need a breakpoint.
const minResponsivePx = 320

var (
	fixedDimension   = regexp.MustCompile(`(?i)(?:^|[^-\w])((?:min-|max-)?(?:width|height))\s*:\s*(\d+(?:\.\d+)?)px`)
	fullViewportH    = regexp.MustCompile(`(?i)\b(?:min-)?height\s*:\s*100vh`)
	viewportGuard    = regexp.MustCompile(`(?i)100dvh|100svh|-webkit-fill-available`)
	fixedPosition    = regexp.MustCompile(`(?i)position\s*:\s*fixed`)
	overflowHidden   = regexp.MustCompile(`(?i)overflow(?:-[xy])?\s*:\s*hidden`)
	zIndexValue      = regexp.MustCompile(`(?i)z-index\s*:\s*(-?\d+)`)
	pixelWidth       = regexp.MustCompile(`(?i)(?:^|[^-\w])(?:min-)?width\s*:\s*(\d{3,})px`)
	mediaQuery       = regexp.MustCompile(`(?i)@media\b`)
)

func checkLayout(css string, _ metrics) (errors, warnings []string) {
	seen := make(map[string]bool)
	for _, m := range fixedDimension.FindAllStringSubmatch(css, -1) {
		size, err := strconv.ParseFloat(m[2], 64)
		if err != nil || size <= maxFixedWidthPx || strings.HasPrefix(strings.ToLower(m[1]), "max-") {
			continue
		}
		msg := fmt.Sprintf("Oversized fixed %s (%spx) may break small screens", m[1], m[2])
		if !seen[msg] {
			seen[msg] = true
			warnings = append(warnings, msg)
		}
	}

	if fullViewportH.MatchString(css) && !viewportGuard.MatchString(css) {
		warnings = append(warnings, "100vh height without a dvh/svh fallback is cut off by mobile browser toolbars")
	}
	if fixedPosition.MatchString(css) {
		warnings = append(warnings, "position: fixed elements can cover content on small screens")
	}
	if overflowHidden.MatchString(css) {
		warnings = append(warnings, "overflow: hidden may clip content")
	}

	highest := 0
	for _, m := range zIndexValue.FindAllStringSubmatch(css, -1) {
		if z, err := strconv.Atoi(m[1]); err == nil && z > highest {
			highest = z
		}
	}
	if highest > maxZIndex {
		warnings = append(warnings, fmt.Sprintf("Excessive z-index (%d); keep stacking values below %d", highest, maxZIndex+1))
	}

	if hasWideFixedWidth(css) && !mediaQuery.MatchString(css) {
		warnings = append(warnings, "Fixed pixel widths without any @media breakpoint; the layout will not adapt to small screens")
	}
	return nil, warnings
}

// hasWideFixedWidth reports whether any width is fixed at or above the smallest supported viewport.
func hasWideFixedWidth(css string) bool {
	for _, m := range pixelWidth.FindAllStringSubmatch(css, -1) {
		if px, err := strconv.Atoi(m[1]); err == nil && px >= minResponsivePx {
			return true
		}
	}
	return false
}

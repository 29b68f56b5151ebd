package responsive

import (
	"context"
	"fmt"

	"github.com/jonathan/pagegate/internal/types"
)

// Issue types reported by the tester.
const (
	IssueLayoutOverflow   = "layout_overflow"
	IssueHorizontalScroll = "horizontal_scroll"
	IssueExcessiveHeight  = "excessive_height"
	IssueOverlap          = "element_overlap"
	IssueClippedContent   = "clipped_content"
	IssueOffscreenContent = "offscreen_content"
	IssueTouchTarget      = "touch_target"
	IssueRuntimeError     = "runtime_error"
	IssueConsoleError     = "console_error"
	IssueAssertionError   = "assertion_error"
	IssueTestFailure      = "test_failure"
	IssueEngineFailure    = "engine_failure"
)

const (
	maxReportedElements = 5
	heightMultiplier    = 10
	overlapNoiseLimit   = 50
	maxOverlapElements  = 400
	clippedThreshold    = 5
	offscreenThreshold  = 2
	offscreenMarginPx   = 100
	minTouchTargetPx    = 44
)

// describeJS renders an element as tag#id.class for issue details.
const describeJS = `const describe = (el) => {
  let s = el.tagName.toLowerCase();
  if (el.id) s += '#' + el.id;
  const cls = typeof el.className === 'string' ? el.className.trim().split(/\s+/).filter(Boolean) : [];
  if (cls.length) s += '.' + cls.slice(0, 2).join('.');
  return s;
};
const visible = (el, r) => {
  if (r.width === 0 || r.height === 0) return false;
  const st = getComputedStyle(el);
  return st.display !== 'none' && st.visibility !== 'hidden' && st.opacity !== '0';
};
`

// ElementInfo identifies an element in a probe result.
type ElementInfo struct {
	Selector string  `json:"selector"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height,omitempty"`
	Overflow float64 `json:"overflow,omitempty"`
}

type assertion struct {
	name   string
	mobile bool // run only on mobile viewports
	check  func(ctx context.Context, p Page, vp types.Viewport) ([]types.Issue, error)
}

var assertions = []assertion{
	{name: "layout", check: checkLayoutOverflow},
	{name: "scroll", check: checkScrolling},
	{name: "overlap", check: checkOverlap},
	{name: "visibility", check: checkVisibility},
	{name: "touch", mobile: true, check: checkTouchTargets},
}

func probe(name, body string) string {
	return "/* probe:" + name + " */ (() => {\n" + describeJS + body + "\n})()"
}

// LayoutProbe is the result of the layout overflow probe.
type LayoutProbe struct {
	ViewportWidth float64       `json:"viewportWidth"`
	DocumentWidth float64       `json:"documentWidth"`
	Count         int           `json:"count"`
	Elements      []ElementInfo `json:"elements"`
}

var layoutProbe = probe("layout", `
const vw = document.documentElement.clientWidth || window.innerWidth;
const docWidth = Math.max(document.documentElement.scrollWidth, document.body ? document.body.scrollWidth : 0);
const items = [];
for (const el of document.querySelectorAll('body *')) {
  const r = el.getBoundingClientRect();
  if (!visible(el, r) || r.width <= vw) continue;
  items.push({selector: describe(el), width: Math.round(r.width), overflow: Math.round(r.width - vw)});
}
items.sort((a, b) => b.overflow - a.overflow);
return {viewportWidth: vw, documentWidth: docWidth, count: items.length, elements: items.slice(0, 5)};`)

func checkLayoutOverflow(ctx context.Context, p Page, vp types.Viewport) ([]types.Issue, error) {
	var res LayoutProbe
	if err := p.Evaluate(ctx, layoutProbe, &res); err != nil {
		return nil, err
	}
	return layoutIssues(res, vp), nil
}

func layoutIssues(res LayoutProbe, vp types.Viewport) []types.Issue {
	vw := res.ViewportWidth
	if vw <= 0 {
		vw = float64(vp.Width)
	}
	if res.DocumentWidth <= vw && res.Count == 0 {
		return nil
	}
	elements := res.Elements
	if len(elements) > maxReportedElements {
		elements = elements[:maxReportedElements]
	}
	msg := fmt.Sprintf("Content overflows the %dpx viewport: document is %.0fpx wide", vp.Width, res.DocumentWidth)
	if res.Count > 0 {
		msg = fmt.Sprintf("%s, %d element(s) wider than the viewport", msg, res.Count)
	}
	return []types.Issue{{
		Type:     IssueLayoutOverflow,
		Severity: types.SeverityCritical,
		Message:  msg,
		Details: map[string]any{
			"viewport_width": vw,
			"document_width": res.DocumentWidth,
			"elements":       elements,
		},
	}}
}

// ScrollProbe is the result of the scrolling probe.
type ScrollProbe struct {
	ScrollWidth    float64 `json:"scrollWidth"`
	ClientWidth    float64 `json:"clientWidth"`
	ScrollHeight   float64 `json:"scrollHeight"`
	ViewportHeight float64 `json:"viewportHeight"`
}

var scrollProbe = probe("scroll", `
const de = document.documentElement;
return {scrollWidth: de.scrollWidth, clientWidth: de.clientWidth, scrollHeight: de.scrollHeight, viewportHeight: window.innerHeight};`)

func checkScrolling(ctx context.Context, p Page, vp types.Viewport) ([]types.Issue, error) {
	var res ScrollProbe
	if err := p.Evaluate(ctx, scrollProbe, &res); err != nil {
		return nil, err
	}
	return scrollIssues(res, vp), nil
}

func scrollIssues(res ScrollProbe, vp types.Viewport) []types.Issue {
	var issues []types.Issue
	if res.ClientWidth > 0 && res.ScrollWidth > res.ClientWidth {
		issues = append(issues, types.Issue{
			Type:     IssueHorizontalScroll,
			Severity: types.SeverityCritical,
			Message:  fmt.Sprintf("Horizontal scrollbar present: content is %.0fpx wider than the viewport", res.ScrollWidth-res.ClientWidth),
			Details:  map[string]any{"scroll_width": res.ScrollWidth, "client_width": res.ClientWidth},
		})
	}
	vh := res.ViewportHeight
	if vh <= 0 {
		vh = float64(vp.Height)
	}
	if res.ScrollHeight > heightMultiplier*vh {
		issues = append(issues, types.Issue{
			Type:     IssueExcessiveHeight,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("Page height %.0fpx exceeds %dx the viewport height", res.ScrollHeight, heightMultiplier),
			Details:  map[string]any{"scroll_height": res.ScrollHeight, "viewport_height": vh},
		})
	}
	return issues
}

// OverlapProbe is the result of the overlap probe.
type OverlapProbe struct {
	Count int        `json:"count"`
	Pairs [][]string `json:"pairs"`
}

// Elements are compared pairwise, so the scan is capped at maxOverlapElements.
var overlapProbe = probe("overlap", fmt.Sprintf(`
const els = [];
for (const el of document.querySelectorAll('body *')) {
  if (els.length >= %d) break;
  const r = el.getBoundingClientRect();
  if (!visible(el, r)) continue;
  els.push({el, r, z: getComputedStyle(el).zIndex});
}
let count = 0;
const pairs = [];
for (let i = 0; i < els.length; i++) {
  for (let j = i + 1; j < els.length; j++) {
    const a = els[i], b = els[j];
    if (a.z !== b.z) continue;
    if (a.el.contains(b.el) || b.el.contains(a.el)) continue;
    if (a.r.left < b.r.right && b.r.left < a.r.right && a.r.top < b.r.bottom && b.r.top < a.r.bottom) {
      count++;
      if (pairs.length < 5) pairs.push([describe(a.el), describe(b.el)]);
    }
  }
}
return {count, pairs};`, maxOverlapElements))

func checkOverlap(ctx context.Context, p Page, vp types.Viewport) ([]types.Issue, error) {
	var res OverlapProbe
	if err := p.Evaluate(ctx, overlapProbe, &res); err != nil {
		return nil, err
	}
	return overlapIssues(res), nil
}

// overlapIssues reports same-stacking overlaps. At overlapNoiseLimit or more
// the layout is treated as intentionally layered and nothing is reported.
func overlapIssues(res OverlapProbe) []types.Issue {
	if res.Count == 0 || res.Count >= overlapNoiseLimit {
		return nil
	}
	pairs := res.Pairs
	if len(pairs) > maxReportedElements {
		pairs = pairs[:maxReportedElements]
	}
	return []types.Issue{{
		Type:     IssueOverlap,
		Severity: types.SeverityWarning,
		Message:  fmt.Sprintf("Found %d overlapping element pair(s) with the same stacking order", res.Count),
		Details:  map[string]any{"count": res.Count, "pairs": pairs},
	}}
}

// VisibilityProbe is the result of the clipped/off-screen probe.
type VisibilityProbe struct {
	Clipped          int      `json:"clipped"`
	Offscreen        int      `json:"offscreen"`
	ClippedSamples   []string `json:"clippedSamples"`
	OffscreenSamples []string `json:"offscreenSamples"`
}

var visibilityProbe = probe("visibility", fmt.Sprintf(`
const vw = document.documentElement.clientWidth || window.innerWidth;
const margin = %d;
let clipped = 0, offscreen = 0;
const clippedSamples = [], offscreenSamples = [];
for (const el of document.querySelectorAll('body *')) {
  const r = el.getBoundingClientRect();
  if (!visible(el, r)) continue;
  const st = getComputedStyle(el);
  const hidden = st.overflow === 'hidden' || st.overflowX === 'hidden' || st.overflowY === 'hidden';
  if (hidden && (el.scrollWidth > el.clientWidth + 1 || el.scrollHeight > el.clientHeight + 1)) {
    clipped++;
    if (clippedSamples.length < 5) clippedSamples.push(describe(el));
  }
  if (r.right < -margin || r.left > vw + margin || r.bottom < -margin) {
    offscreen++;
    if (offscreenSamples.length < 5) offscreenSamples.push(describe(el));
  }
}
return {clipped, offscreen, clippedSamples, offscreenSamples};`, offscreenMarginPx))

func checkVisibility(ctx context.Context, p Page, vp types.Viewport) ([]types.Issue, error) {
	var res VisibilityProbe
	if err := p.Evaluate(ctx, visibilityProbe, &res); err != nil {
		return nil, err
	}
	return visibilityIssues(res), nil
}

func visibilityIssues(res VisibilityProbe) []types.Issue {
	var issues []types.Issue
	if res.Clipped > clippedThreshold {
		issues = append(issues, types.Issue{
			Type:     IssueClippedContent,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("%d element(s) clip overflowing content with overflow:hidden", res.Clipped),
			Details:  map[string]any{"count": res.Clipped, "elements": res.ClippedSamples},
		})
	}
	if res.Offscreen > offscreenThreshold {
		issues = append(issues, types.Issue{
			Type:     IssueOffscreenContent,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("%d element(s) are positioned off-screen", res.Offscreen),
			Details:  map[string]any{"count": res.Offscreen, "elements": res.OffscreenSamples},
		})
	}
	return issues
}

// TouchProbe is the result of the touch-target probe.
type TouchProbe struct {
	Count    int           `json:"count"`
	Elements []ElementInfo `json:"elements"`
}

var touchProbe = probe("touch", fmt.Sprintf(`
const min = %d;
const small = [];
const selector = 'a[href], button, input:not([type=hidden]), select, textarea, summary, [role=button], [role=link], [tabindex]:not([tabindex="-1"])';
for (const el of document.querySelectorAll(selector)) {
  const r = el.getBoundingClientRect();
  if (!visible(el, r)) continue;
  if (r.width < min || r.height < min) {
    small.push({selector: describe(el), width: Math.round(r.width), height: Math.round(r.height)});
  }
}
small.sort((a, b) => a.width * a.height - b.width * b.height);
return {count: small.length, elements: small.slice(0, 5)};`, minTouchTargetPx))

func checkTouchTargets(ctx context.Context, p Page, vp types.Viewport) ([]types.Issue, error) {
	var res TouchProbe
	if err := p.Evaluate(ctx, touchProbe, &res); err != nil {
		return nil, err
	}
	return touchIssues(res), nil
}

func touchIssues(res TouchProbe) []types.Issue {
	if res.Count == 0 {
		return nil
	}
	elements := res.Elements
	if len(elements) > maxReportedElements {
		elements = elements[:maxReportedElements]
	}
	return []types.Issue{{
		Type:     IssueTouchTarget,
		Severity: types.SeverityWarning,
		Message:  fmt.Sprintf("%d interactive element(s) are smaller than %dx%dpx", res.Count, minTouchTargetPx, minTouchTargetPx),
		Details:  map[string]any{"count": res.Count, "smallest": elements},
	}}
}

// errorIssues turns captured page errors into issues: uncaught exceptions are
// critical, console errors are warnings.
func errorIssues(runtimeErrs, consoleErrs []string) []types.Issue {
	var issues []types.Issue
	seen := map[string]bool{}
	for _, msg := range runtimeErrs {
		if seen["r"+msg] {
			continue
		}
		seen["r"+msg] = true
		issues = append(issues, types.Issue{
			Type:     IssueRuntimeError,
			Severity: types.SeverityCritical,
			Message:  "JavaScript runtime error: " + msg,
		})
	}
	for _, msg := range consoleErrs {
		if seen["c"+msg] {
			continue
		}
		seen["c"+msg] = true
		issues = append(issues, types.Issue{
			Type:     IssueConsoleError,
			Severity: types.SeverityWarning,
			Message:  "Console error: " + msg,
		})
	}
	return issues
}

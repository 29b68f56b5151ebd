package script

import (
	"fmt"
	"strings"
)

// Severity is the level a static-analysis rule reports at.
type Severity int

const (
	// SeverityOff disables a rule.
	SeverityOff Severity = iota
	// SeverityWarn reports findings as warnings.
	SeverityWarn
	// SeverityError reports findings as errors.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "off"
	}
}

// ParseSeverity accepts "off", "warn"/"warning", "error" or their numeric forms 0-2.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return SeverityOff, nil
	case "warn", "warning", "1":
		return SeverityWarn, nil
	case "error", "2":
		return SeverityError, nil
	default:
		return SeverityOff, fmt.Errorf("unknown rule severity %q", s)
	}
}

// Rule names understood by the analyzer.
const (
	RuleSyntax          = "syntax"
	RuleNoEval          = "no-eval"
	RuleNoImpliedEval   = "no-implied-eval"
	RuleNoNewFunc       = "no-new-func"
	RuleNoScriptURL     = "no-script-url"
	RuleNoProto         = "no-proto"
	RuleNoUnusedVars    = "no-unused-vars"
	RuleNoUndef         = "no-undef"
	RuleNoRedeclare     = "no-redeclare"
	RuleNoUnreachable   = "no-unreachable"
	RuleNoDupeKeys      = "no-dupe-keys"
	RuleNoInvalidRegexp = "no-invalid-regexp"
)

// DefaultRules returns the rule severity table. Security rules are errors,
// correctness rules are warnings except duplicate keys and invalid regexes.
// Parse failures warn because the parser rejects some ES2021+ syntax.
func DefaultRules() map[string]Severity {
	return map[string]Severity{
		RuleSyntax:          SeverityWarn,
		RuleNoEval:          SeverityError,
		RuleNoImpliedEval:   SeverityError,
		RuleNoNewFunc:       SeverityError,
		RuleNoScriptURL:     SeverityError,
		RuleNoProto:         SeverityError,
		RuleNoUnusedVars:    SeverityWarn,
		RuleNoUndef:         SeverityWarn,
		RuleNoRedeclare:     SeverityWarn,
		RuleNoUnreachable:   SeverityWarn,
		RuleNoDupeKeys:      SeverityError,
		RuleNoInvalidRegexp: SeverityError,
	}
}

// ParseRules converts a name->severity string table into rule overrides.
func ParseRules(raw map[string]string) (map[string]Severity, error) {
	known := DefaultRules()
	out := make(map[string]Severity, len(raw))
	for name, level := range raw {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown lint rule %q", name)
		}
		sev, err := ParseSeverity(level)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		out[name] = sev
	}
	return out, nil
}

// Finding is a single static-analysis result.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
}

// String formats the finding as "Line L:C: message (rule)".
func (f Finding) String() string {
	return fmt.Sprintf("Line %d:%d: %s (%s)", f.Line, f.Column, f.Message, f.Rule)
}

// browserGlobals are identifiers a page script may use without declaring them.
var browserGlobals = toSet(
	"window", "self", "globalThis", "document", "navigator", "location", "history", "screen",
	"console", "alert", "confirm", "prompt", "print", "open", "close",
	"localStorage", "sessionStorage", "indexedDB", "caches", "crypto", "performance",
	"setTimeout", "setInterval", "clearTimeout", "clearInterval", "queueMicrotask",
	"requestAnimationFrame", "cancelAnimationFrame", "requestIdleCallback", "cancelIdleCallback",
	"fetch", "XMLHttpRequest", "WebSocket", "EventSource", "AbortController", "Headers", "Request", "Response",
	"FormData", "URL", "URLSearchParams", "Blob", "File", "FileReader", "Image", "Audio", "Option",
	"DOMParser", "TextEncoder", "TextDecoder", "Notification", "BroadcastChannel", "Worker",
	"IntersectionObserver", "ResizeObserver", "MutationObserver", "PerformanceObserver",
	"Event", "CustomEvent", "KeyboardEvent", "MouseEvent", "PointerEvent", "TouchEvent", "InputEvent", "FocusEvent",
	"EventTarget", "Node", "NodeList", "Element", "HTMLElement", "HTMLInputElement", "HTMLFormElement",
	"HTMLCanvasElement", "HTMLImageElement", "SVGElement", "DocumentFragment", "ShadowRoot", "CSS",
	"getComputedStyle", "matchMedia", "scrollTo", "scrollBy", "scroll", "innerWidth", "innerHeight",
	"outerWidth", "outerHeight", "scrollX", "scrollY", "pageXOffset", "pageYOffset", "devicePixelRatio",
	"addEventListener", "removeEventListener", "dispatchEvent", "atob", "btoa", "structuredClone",
	"top", "parent", "frames", "name", "status", "customElements", "visualViewport", "speechSynthesis",
	"Math", "JSON", "Date", "Array", "Object", "String", "Number", "Boolean", "Symbol", "BigInt",
	"Promise", "Map", "Set", "WeakMap", "WeakSet", "WeakRef", "RegExp", "Proxy", "Reflect", "Intl",
	"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError", "AggregateError",
	"ArrayBuffer", "DataView", "Uint8Array", "Int8Array", "Uint16Array", "Int16Array", "Uint32Array",
	"Int32Array", "Float32Array", "Float64Array", "Uint8ClampedArray",
	"parseInt", "parseFloat", "isNaN", "isFinite", "encodeURIComponent", "decodeURIComponent",
	"encodeURI", "decodeURI", "escape", "unescape", "undefined", "NaN", "Infinity",
	"arguments", "eval", "Function",
)

func toSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

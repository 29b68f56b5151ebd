package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/pagegate/internal/types"
)

// threatPattern pairs a detector with the message reported when it matches.
type threatPattern struct {
	re      *regexp.Regexp
	message string
}

// blockingPatterns make the markup invalid.
var blockingPatterns = []threatPattern{
	{regexp.MustCompile(`(?i)<\s*iframe\b`), "Embedded frames (<iframe>) are not allowed"},
	{regexp.MustCompile(`(?i)<\s*frame(?:set)?\b`), "Frames (<frame>/<frameset>) are not allowed"},
	{regexp.MustCompile(`(?i)<\s*object\b`), "Embedded objects (<object>) are not allowed"},
	{regexp.MustCompile(`(?i)<\s*embed\b`), "Embedded content (<embed>) is not allowed"},
	{regexp.MustCompile(`(?i)javascript\s*:`), "javascript: URLs are not allowed"},
	{regexp.MustCompile(`(?i)vbscript\s*:`), "vbscript: URLs are not allowed"},
	{regexp.MustCompile(`(?i)data\s*:\s*text/html`), "HTML data URIs (data:text/html) are not allowed"},
}

// advisoryPatterns are reported as warnings only; generated pages use them legitimately.
var advisoryPatterns = []threatPattern{
	{regexp.MustCompile(`\beval\s*\(`), "Markup contains eval() calls"},
	{regexp.MustCompile(`\bnew\s+Function\s*\(`), "Markup contains dynamic function construction (new Function)"},
	{regexp.MustCompile(`\bset(?:Timeout|Interval)\s*\(`), "Markup contains timer calls (setTimeout/setInterval)"},
	{regexp.MustCompile(`(?i)<\s*script\b`), "Inline <script> elements in markup are removed by the sanitizer"},
}

// urlBearingAttrs are the attributes whose decoded values are checked for dangerous schemes.
var urlBearingAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"poster": true, "background": true, "xlink:href": true, "data": true,
}

// Scan checks raw markup for forbidden and suspicious constructs.
// The result is invalid iff a blocking pattern matched.
func Scan(markup string) types.StepResult {
	if strings.TrimSpace(markup) == "" {
		return types.NewStepResult(nil, nil)
	}

	errs := newFindingSet()
	warns := newFindingSet()

	for _, p := range blockingPatterns {
		if p.re.MatchString(markup) {
			errs.add(p.message)
		}
	}
	for _, p := range advisoryPatterns {
		if p.re.MatchString(markup) {
			warns.add(p.message)
		}
	}

	if err := scanTree(markup, errs, warns); err != nil {
		warns.add(fmt.Sprintf("Structural markup scan skipped: %v", err))
	}

	return types.NewStepResult(errs.list(), warns.list())
}

// scanTree walks the parsed element tree. The HTML parser decodes entities, so
// obfuscated values such as "jav&#x61;script:" are seen in their real form here.
func scanTree(markup string, errs, warns *findingSet) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return &ParseError{Message: "failed to parse markup", Cause: err}
	}

	handlers := 0
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		for _, attr := range node.Attr {
			key := strings.ToLower(attr.Key)
			if strings.HasPrefix(key, "on") {
				handlers++
				continue
			}
			if key == "srcdoc" {
				errs.add("Embedded documents (srcdoc) are not allowed")
				continue
			}
			if !urlBearingAttrs[key] {
				continue
			}
			switch scheme := dangerousScheme(attr.Val); scheme {
			case "javascript":
				errs.add("javascript: URLs are not allowed")
			case "vbscript":
				errs.add("vbscript: URLs are not allowed")
			case "data-html":
				errs.add("HTML data URIs (data:text/html) are not allowed")
			}
		}
	})

	if handlers > 0 {
		warns.add(fmt.Sprintf("Found %d inline event handler attribute(s); they are removed by the sanitizer", handlers))
	}
	return nil
}

// dangerousScheme classifies a decoded URL value. Browsers ignore embedded
// whitespace and control characters in schemes, so those are dropped first.
func dangerousScheme(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r <= ' ' || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	v := strings.ToLower(b.String())

	switch {
	case strings.HasPrefix(v, "javascript:"):
		return "javascript"
	case strings.HasPrefix(v, "vbscript:"):
		return "vbscript"
	case strings.HasPrefix(v, "data:text/html"):
		return "data-html"
	default:
		return ""
	}
}

// findingSet keeps messages unique while preserving first-seen order.
type findingSet struct {
	seen  map[string]bool
	items []string
}

func newFindingSet() *findingSet {
	return &findingSet{seen: make(map[string]bool)}
}

func (f *findingSet) add(msg string) {
	if f.seen[msg] {
		return
	}
	f.seen[msg] = true
	f.items = append(f.items, msg)
}

func (f *findingSet) list() []string {
	return f.items
}

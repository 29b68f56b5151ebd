// Package markup sanitizes and scans untrusted HTML fragments.
package markup

import (
	"log"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// allowedTags is the element allow-list. Anything else is removed with its text content kept.
var allowedTags = []string{
	// structure
	"div", "span", "p", "br", "hr", "main", "section", "article", "aside", "header", "footer", "nav",
	"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "code", "address",
	// inline text
	"a", "b", "i", "u", "s", "em", "strong", "small", "mark", "sub", "sup", "abbr", "cite", "q", "time", "kbd",
	// lists
	"ul", "ol", "li", "dl", "dt", "dd",
	// media
	"img", "picture", "source", "figure", "figcaption", "video", "audio",
	// tables
	"table", "caption", "thead", "tbody", "tfoot", "tr", "th", "td", "colgroup", "col",
	// forms
	"form", "label", "input", "textarea", "select", "option", "optgroup", "button", "fieldset", "legend",
	// interactive
	"details", "summary", "dialog",
}

// allowedAttrs is the global attribute allow-list.
var allowedAttrs = []string{
	"id", "class", "title", "role", "lang", "dir", "tabindex", "hidden",
	"alt", "width", "height", "loading", "decoding", "srcset", "sizes",
	"target", "rel", "download",
	"type", "name", "value", "placeholder", "required", "disabled", "readonly", "checked", "selected",
	"min", "max", "step", "maxlength", "minlength", "pattern", "autocomplete", "for", "multiple",
	"rows", "cols", "colspan", "rowspan", "scope", "headers", "datetime", "open",
	"controls", "autoplay", "muted", "loop", "playsinline", "poster", "preload",
	"aria-label", "aria-labelledby", "aria-describedby", "aria-hidden", "aria-expanded",
	"aria-controls", "aria-current", "aria-live", "aria-haspopup", "aria-pressed", "aria-selected",
}

// urlAttrs carry URLs and are checked against allowedSchemes.
var urlAttrs = []string{"href", "src", "action", "poster", "cite"}

// allowedSchemes is the URI-scheme allow-list. Fragment and relative links are allowed separately.
var allowedSchemes = []string{"http", "https", "mailto", "tel", "sms"}

// allowedStyleProps are the inline style properties kept on any element.
var allowedStyleProps = []string{
	"color", "background-color", "text-align", "font-weight", "font-style", "font-size",
	"text-decoration", "margin", "padding", "width", "max-width", "height", "max-height",
	"display", "gap", "border", "border-radius", "opacity",
}

// residualPatterns catch dangerous constructs that survive allow-list filtering.
var residualPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:java|vb)script\s*:`),
	regexp.MustCompile(`(?i)data\s*:\s*text/html[^"'\s>]*`),
}

// Sanitizer rewrites markup through the allow-list policy.
// Safe for concurrent use.
type Sanitizer struct {
	clean func(string) string
}

// NewPolicy builds the bluemonday allow-list policy used by the sanitizer.
func NewPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()

	policy.AllowElements(allowedTags...)
	policy.AllowAttrs(allowedAttrs...).Globally()
	policy.AllowDataAttributes()
	policy.AllowStyles(allowedStyleProps...).Globally()

	policy.AllowAttrs(urlAttrs...).Globally()
	policy.AllowURLSchemes(allowedSchemes...)
	policy.AllowRelativeURLs(true)
	policy.AllowDataURIImages()

	return policy
}

// NewSanitizer creates a sanitizer backed by the default allow-list policy.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{clean: NewPolicy().Sanitize}
}

// Sanitize returns markup restricted to the allow-list.
// It never panics: any internal failure yields an empty string.
func (s *Sanitizer) Sanitize(markup string) (out string) {
	if markup == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SANITIZE] %v", &SanitizeError{Message: "sanitizer panicked", Cause: panicError(r)})
			out = ""
		}
	}()

	return stripResidual(s.clean(markup))
}

// stripResidual removes script-protocol and HTML data URI text left in filtered output.
// Removal repeats until nothing matches so that split payloads cannot reassemble.
func stripResidual(html string) string {
	for {
		changed := false
		for _, re := range residualPatterns {
			if re.MatchString(html) {
				html = re.ReplaceAllString(html, "")
				changed = true
			}
		}
		if !changed {
			return html
		}
	}
}

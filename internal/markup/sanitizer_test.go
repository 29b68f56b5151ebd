package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_RemovesScriptsAndHandlers(t *testing.T) {
	s := NewSanitizer()

	out := s.Sanitize(`<div class="card" onclick="steal()">Hello <script>alert(1)</script>World</div>`)

	assert.Contains(t, out, `class="card"`)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "World")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "alert(1)")
}

func TestSanitize_KeepsTextOfDisallowedTags(t *testing.T) {
	s := NewSanitizer()

	out := s.Sanitize(`<marquee>Breaking news</marquee>`)

	assert.NotContains(t, out, "marquee")
	assert.Contains(t, out, "Breaking news")
}

func TestSanitize_URISchemes(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name    string
		input   string
		keep    string
		dropped string
	}{
		{name: "https link", input: `<a href="https://example.com">x</a>`, keep: `href="https://example.com"`},
		{name: "mailto link", input: `<a href="mailto:hi@example.com">x</a>`, keep: `href="mailto:hi@example.com"`},
		{name: "tel link", input: `<a href="tel:+15551234">x</a>`, keep: `href="tel:+15551234"`},
		{name: "fragment link", input: `<a href="#pricing">x</a>`, keep: `href="#pricing"`},
		{name: "javascript link", input: `<a href="javascript:alert(1)">x</a>`, dropped: "javascript"},
		{name: "vbscript link", input: `<a href="vbscript:msgbox(1)">x</a>`, dropped: "vbscript"},
		{name: "html data uri", input: `<a href="data:text/html;base64,PHNjcmlwdD4=">x</a>`, dropped: "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Sanitize(tt.input)
			if tt.keep != "" {
				assert.Contains(t, out, tt.keep)
			}
			if tt.dropped != "" {
				assert.NotContains(t, strings.ToLower(out), tt.dropped)
			}
		})
	}
}

func TestSanitize_AllowsImageDataURI(t *testing.T) {
	s := NewSanitizer()
	pixel := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

	out := s.Sanitize(`<img src="` + pixel + `" alt="dot">`)

	assert.Contains(t, out, "data:image/png;base64,")
	assert.Contains(t, out, `alt="dot"`)
}

func TestSanitize_ResidualPassStripsText(t *testing.T) {
	s := NewSanitizer()

	out := s.Sanitize(`<p>click javascript:alert(1) now</p>`)

	assert.NotContains(t, strings.ToLower(out), "javascript:")
	assert.Contains(t, out, "click")
}

func TestStripResidual_SplitPayload(t *testing.T) {
	out := stripResidual("javajavascript:script:alert(1)")
	assert.NotContains(t, strings.ToLower(out), "javascript:")
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewSanitizer()
	inputs := []string{
		`<div class="hero" data-id="7"><h1>Title &amp; more</h1><p style="color: red">Text "quoted"</p></div>`,
		`<ul><li><a href="https://example.com/?a=1&b=2" target="_blank" rel="noopener">Link</a></li></ul>`,
		`<form action="/subscribe"><label for="e">Email</label><input id="e" type="email" required><button type="submit">Go</button></form>`,
		`<section><iframe src="https://evil.example"></iframe><script>x()</script><p onclick="y()">Hi</p></section>`,
		`plain text with <b>bold</b> and <unknown>kept text</unknown>`,
	}

	for _, input := range inputs {
		once := s.Sanitize(input)
		twice := s.Sanitize(once)
		assert.Equal(t, once, twice, "sanitize should be a fixed point for %q", input)
	}
}

func TestSanitize_FailsClosed(t *testing.T) {
	s := &Sanitizer{clean: func(string) string { panic("policy exploded") }}

	out := s.Sanitize(`<p onclick="x()">unsafe</p>`)

	assert.Equal(t, "", out)
}

func TestSanitize_Empty(t *testing.T) {
	assert.Equal(t, "", NewSanitizer().Sanitize(""))
}

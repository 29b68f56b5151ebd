package normalize

import (
	"testing"

	"github.com/jonathan/pagegate/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCleanCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "  \n\t ", want: ""},
		{name: "plain code", input: "  const a = 1;\n", want: "const a = 1;"},
		{name: "fenced with language", input: "```javascript\nconst a = 1;\n```", want: "const a = 1;"},
		{name: "fenced without language", input: "```\n<div></div>\n```\n", want: "<div></div>"},
		{name: "tilde fence", input: "~~~css\n.a { color: red; }\n~~~", want: ".a { color: red; }"},
		{name: "crlf fences", input: "```html\r\n<p>x</p>\r\n```", want: "<p>x</p>"},
		{name: "inline backticks kept", input: "const s = `hello`;", want: "const s = `hello`;"},
		{
			name:  "interior fences kept",
			input: "```html\n<pre><code>\n```bash\nls\n```\n</code></pre>\n```",
			want:  "<pre><code>\n```bash\nls\n```\n</code></pre>",
		},
		{
			name:  "fence inside template literal kept",
			input: "```js\nconst md = `\n```\ncode\n```\n`;\nconsole.log(md);\n```",
			want:  "const md = `\n```\ncode\n```\n`;\nconsole.log(md);",
		},
		{name: "unfenced trailing fence stripped", input: "<p>x</p>\n```", want: "<p>x</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCode(tt.input))
		})
	}
}

func TestBundle(t *testing.T) {
	in := types.CodeBundle{
		Markup: "```html\n<main></main>\n```",
		Styles: " body { margin: 0; } ",
		Script: "",
	}

	out := Bundle(in)
	assert.Equal(t, "<main></main>", out.Markup)
	assert.Equal(t, "body { margin: 0; }", out.Styles)
	assert.Equal(t, "", out.Script)
	// original untouched
	assert.Equal(t, "```html\n<main></main>\n```", in.Markup)
}

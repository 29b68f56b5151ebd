package rendering

import (
	"strings"
	"text/template"

	"github.com/jonathan/pagegate/internal/types"
)

// TailwindCDN is the styling framework the assembled document loads.
const TailwindCDN = "https://cdn.tailwindcss.com"

// DefaultTitle is used when DocumentOptions.Title is empty.
const DefaultTitle = "Preview"

// DocumentOptions controls the page chrome around the fragments.
type DocumentOptions struct {
	Title        string
	FrameworkURL string // Defaults to TailwindCDN
}

// documentData is passed to the page template. Fragments are pre-escaped.
type documentData struct {
	Title        string
	FrameworkURL string
	Styles       string
	Markup       string
	Script       string
}

// text/template keeps fragments verbatim; html/template would re-escape CSS and JS.
var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<script src="{{.FrameworkURL}}"></script>
<style>
{{.Styles}}
</style>
</head>
<body>
{{.Markup}}
<script>
{{.Script}}
</script>
</body>
</html>
`))

// AssembleDocument renders the bundle into one self-contained page with the default options.
// The bundle is expected to hold sanitized markup and wrapped script.
func AssembleDocument(bundle types.CodeBundle) (string, error) {
	return Assemble(bundle, DocumentOptions{})
}

// Assemble renders the bundle into one self-contained page.
func Assemble(bundle types.CodeBundle, opts DocumentOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.FrameworkURL == "" {
		opts.FrameworkURL = TailwindCDN
	}

	data := documentData{
		Title:        EscapeText(opts.Title),
		FrameworkURL: EscapeText(opts.FrameworkURL),
		Styles:       EscapeStyle(bundle.Styles),
		Markup:       bundle.Markup,
		Script:       EscapeScript(bundle.Script),
	}

	var out strings.Builder
	if err := documentTemplate.Execute(&out, data); err != nil {
		return "", &AssembleError{
			Message: "failed to execute document template",
			Cause:   err,
		}
	}
	return out.String(), nil
}

package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(string) ([]Finding, error) {
	panic("linter exploded")
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(string) ([]Finding, error) {
	return nil, errors.New("linter unavailable")
}

const cleanScript = `document.addEventListener('DOMContentLoaded', function () {
  const button = document.getElementById('menu');
  if (button) {
    button.addEventListener('click', function () {
      button.classList.toggle('open');
    });
  }
});`

func TestValidate_Empty(t *testing.T) {
	result := Validate("")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_EvalIsForbidden(t *testing.T) {
	result := Validate(`eval('alert(1)')`)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Forbidden: eval() performs dynamic evaluation")
}

func TestValidate_CleanScript(t *testing.T) {
	result := Validate(cleanScript)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	details, ok := result.Details.(Details)
	require.True(t, ok)
	assert.Empty(t, details.Findings)
}

func TestValidate_FetchIsAdvisory(t *testing.T) {
	result := Validate(`fetch('/api/items').then((r) => r.json()).catch(() => {});`)
	assert.True(t, result.Valid)
	assert.Contains(t, result.Warnings, "Network request via fetch() detected; verify the endpoint is trusted")
}

func TestValidate_ModuleSyntaxIsForbidden(t *testing.T) {
	result := Validate("import confetti from 'canvas-confetti';\nconfetti();")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Forbidden: ES module import statements are not supported in inline scripts")
}

func TestValidate_AnalyzerFailureIsAWarning(t *testing.T) {
	for name, analyzer := range map[string]StaticAnalyzer{
		"panic": panickingAnalyzer{},
		"error": failingAnalyzer{},
	} {
		t.Run(name, func(t *testing.T) {
			result := NewValidator(analyzer).Validate("console.log('hi');")
			assert.True(t, result.Valid)
			require.NotEmpty(t, result.Warnings)
			found := false
			for _, w := range result.Warnings {
				if strings.HasPrefix(w, "Static analysis unavailable:") {
					found = true
				}
			}
			assert.True(t, found, "warnings: %v", result.Warnings)
		})
	}
}

func TestValidate_LintFindingsAreFormatted(t *testing.T) {
	result := Validate("var o = { a: 1, a: 2 };\nconsole.log(o);")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Line 1:17: Duplicate key 'a' (no-dupe-keys)")
}

func TestValidate_MessagesAreUnique(t *testing.T) {
	result := Validate("eval('a');\neval('b');")
	count := 0
	for _, e := range result.Errors {
		if e == "Forbidden: eval() performs dynamic evaluation" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidate_ModernSyntaxIsNotBlocking(t *testing.T) {
	for name, src := range map[string]string{
		"logical assignment": "let a = null;\na ??= 1;\nconsole.log(a);",
		"numeric separator":  "const n = 1_000;\nconsole.log(n);",
		"bigint literal":     "const big = 10n;\nconsole.log(big);",
		"for await":          "async function f(xs) {\n  for await (const x of xs) { console.log(x); }\n}\nf([]);",
	} {
		t.Run(name, func(t *testing.T) {
			result := NewValidator(nil).Validate(src)
			assert.True(t, result.Valid)
			assert.Empty(t, result.Errors)
		})
	}
}

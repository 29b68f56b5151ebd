package script

import (
	"fmt"
	"regexp"
	"strings"
)

type frameworkGlobal struct {
	name  string
	usage *regexp.Regexp
	// idents are the bindings that would count as the framework being present.
	idents []string
}

var frameworkGlobals = []frameworkGlobal{
	{"jQuery", regexp.MustCompile(`\bjQuery\s*[.(]|(?:^|[^\w$.])\$\s*\(|(?:^|[^\w$.])\$\.\w`), []string{"jQuery", "$"}},
	{"React", regexp.MustCompile(`\bReact(?:DOM)?\.\w`), []string{"React", "ReactDOM"}},
	{"Vue", regexp.MustCompile(`\bVue\.\w`), []string{"Vue"}},
	{"GSAP", regexp.MustCompile(`\bgsap\.\w`), []string{"gsap"}},
	{"Alpine.js", regexp.MustCompile(`\bAlpine\.\w`), []string{"Alpine"}},
	{"Chart.js", regexp.MustCompile(`\bnew\s+Chart\s*\(`), []string{"Chart"}},
	{"D3", regexp.MustCompile(`\bd3\.\w`), []string{"d3"}},
	{"three.js", regexp.MustCompile(`\bTHREE\.\w`), []string{"THREE"}},
}

var (
	domQueryVar      = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*document\s*\.\s*(?:getElementById|querySelector)\s*\(`)
	chainedDomQuery  = regexp.MustCompile(`document\s*\.\s*(?:getElementById|querySelector)\s*\([^()]*\)\s*\.\s*[A-Za-z_$]`)
	anyDomQuery      = regexp.MustCompile(`document\s*\.\s*(?:getElementById|querySelector(?:All)?|getElementsBy\w+)\s*\(`)
	readyGuard       = regexp.MustCompile(`DOMContentLoaded|document\s*\.\s*readyState|addEventListener\s*\(\s*['"]load['"]|\bonload\s*=`)
	addListener      = regexp.MustCompile(`\.\s*addEventListener\s*\(`)
	removeListener   = regexp.MustCompile(`\.\s*removeEventListener\s*\(`)
	fetchCall        = regexp.MustCompile(`\bfetch\s*\(`)
	asyncErrorGuard  = regexp.MustCompile(`\.\s*catch\s*\(|\btry\s*\{`)
	topLevelAssign   = regexp.MustCompile(`(?m)^([A-Za-z_$][\w$]*)\s*=[^=>]`)
	declarationOfFmt = `(?:var|let|const|function|class)\s+%s(?:[^\w$]|$)|window\s*\.\s*%s\s*=`
)

// checkFragility flags patterns that tend to break at runtime. It never
// produces errors.
func checkFragility(src string) []string {
	var warnings []string
	add := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for _, fw := range frameworkGlobals {
		if !fw.usage.MatchString(src) || declaresAny(src, fw.idents) {
			continue
		}
		add("Uses %s but nothing on the page loads it; only Tailwind CSS is available", fw.name)
	}

	seen := map[string]bool{}
	for _, m := range domQueryVar.FindAllStringSubmatch(src, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if dereferenced(src, name) && !nullGuarded(src, name) {
			add("Result of DOM query '%s' is used without a null check", name)
		}
	}
	if chainedDomQuery.MatchString(src) {
		add("DOM query result is dereferenced directly; the element may not exist")
	}

	if adds, removes := len(addListener.FindAllStringIndex(src, -1)), len(removeListener.FindAllStringIndex(src, -1)); adds > removes {
		add("Added %d event listener(s) with only %d removal(s); listeners may leak", adds, removes)
	}

	if anyDomQuery.MatchString(src) && !readyGuard.MatchString(src) {
		add("DOM queries run without a DOMContentLoaded or readyState guard")
	}

	if fetchCall.MatchString(src) && !asyncErrorGuard.MatchString(src) {
		add("Network request has no error handling; add .catch() or try/catch")
	}

	globals := map[string]bool{}
	for _, m := range topLevelAssign.FindAllStringSubmatch(src, -1) {
		name := m[1]
		if globals[name] || browserGlobals[name] || declaresAny(src, []string{name}) {
			continue
		}
		globals[name] = true
		add("Assignment to undeclared '%s' creates an implicit global", name)
	}

	return warnings
}

func declaresAny(src string, names []string) bool {
	for _, n := range names {
		q := regexp.QuoteMeta(n)
		if regexp.MustCompile(fmt.Sprintf(declarationOfFmt, q, q)).MatchString(src) {
			return true
		}
	}
	return false
}

func dereferenced(src, name string) bool {
	q := regexp.QuoteMeta(name)
	return regexp.MustCompile(`(?:^|[^\w$.])` + q + `\s*\.\s*[A-Za-z_$]`).MatchString(src)
}

func nullGuarded(src, name string) bool {
	q := regexp.QuoteMeta(name)
	guards := []string{
		`if\s*\((?:[^)]*[^\w$])?` + q + `(?:[^\w$]|$)`,
		`(?:^|[^\w$])` + q + `\s*\?\.`,
		`(?:^|[^\w$])` + q + `\s*&&`,
		`(?:^|[^\w$])` + q + `\s*\?[^?.]`,
	}
	return regexp.MustCompile(strings.Join(guards, "|")).MatchString(src)
}

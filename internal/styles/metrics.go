package styles

import (
	"regexp"
	"strings"

	"github.com/gorilla/css/scanner"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

var colorFunctions = map[string]bool{
	"rgb(": true, "rgba(": true, "hsl(": true, "hsla(": true, "hwb(": true, "lab(": true, "oklch(": true,
}

// metrics are token-level counts used by the conflict and performance checks.
type metrics struct {
	ColorLiterals int `json:"color_literals"`
	Important     int `json:"important"`
	Keyframes     int `json:"keyframes"`
	Rules         int `json:"rules"`
}

// measure tokenizes the stylesheet. Hash tokens only count as colours inside a
// declaration value, so "#id" selectors are not mistaken for colours.
func measure(css string) metrics {
	var m metrics
	s := scanner.New(css)

	depth := 0
	inValue := false
	afterBang := false

	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			return m
		}

		switch tok.Type {
		case scanner.TokenS, scanner.TokenComment:
			continue
		case scanner.TokenChar:
			switch tok.Value {
			case "{":
				depth++
				m.Rules++
				inValue = false
			case "}":
				if depth > 0 {
					depth--
				}
				inValue = false
			case ";":
				inValue = false
			case ":":
				if depth > 0 {
					inValue = true
				}
			case "!":
				afterBang = true
				continue
			}
		case scanner.TokenIdent:
			if afterBang && strings.EqualFold(tok.Value, "important") {
				m.Important++
			}
		case scanner.TokenHash:
			if inValue && hexColor.MatchString(tok.Value) {
				m.ColorLiterals++
			}
		case scanner.TokenFunction:
			if inValue && colorFunctions[strings.ToLower(tok.Value)] {
				m.ColorLiterals++
			}
		case scanner.TokenAtKeyword:
			switch strings.ToLower(tok.Value) {
			case "@keyframes", "@-webkit-keyframes", "@-moz-keyframes":
				m.Keyframes++
			}
		}
		afterBang = false
	}
}

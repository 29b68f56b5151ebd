// Package types provides type definitions for structured data used throughout the pagegate system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Mode controls which findings are blocking.
type Mode string

const (
	// ModeStrict blocks on script errors and critical responsive issues.
	ModeStrict Mode = "strict"
	// ModePermissive demotes script errors and responsive failures to warnings.
	ModePermissive Mode = "permissive"
)

// ParseMode converts a string into a Mode. An empty string yields ModeStrict.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeStrict, nil
	case ModeStrict, ModePermissive:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected %q or %q)", s, ModeStrict, ModePermissive)
	}
}

// CodeBundle is the candidate page moving through the pipeline.
// Each invocation owns its bundle; stages that rewrite a fragment replace it in place.
type CodeBundle struct {
	Markup string `json:"html"`
	Styles string `json:"css"`
	Script string `json:"js"`
}

// IsEmpty reports whether all three fragments are blank.
func (b CodeBundle) IsEmpty() bool {
	return b.Markup == "" && b.Styles == "" && b.Script == ""
}

// ValidationRequest is the invocation contract consumed by callers of the pipeline.
type ValidationRequest struct {
	Markup          string `json:"html" validate:"max=2000000"`
	Styles          string `json:"css" validate:"max=1000000"`
	Script          string `json:"js" validate:"max=1000000"`
	Mode            Mode   `json:"mode,omitempty" validate:"omitempty,oneof=strict permissive"`
	SkipDynamicTest bool   `json:"skip_dynamic_test,omitempty"`
}

// Bundle returns the request's fragments as a CodeBundle.
func (r ValidationRequest) Bundle() CodeBundle {
	return CodeBundle{Markup: r.Markup, Styles: r.Styles, Script: r.Script}
}

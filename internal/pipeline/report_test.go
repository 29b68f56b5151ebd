package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/pagegate/internal/types"
)

func TestFormatVerdict_Nil(t *testing.T) {
	assert.Equal(t, "Validation report: no data", FormatVerdict(nil))
}

func TestFormatVerdict_Passed(t *testing.T) {
	v := &types.Verdict{Valid: true, Mode: types.ModeStrict, ProcessingTimeMs: 12}
	assert.Equal(t, "Validation: PASSED (strict mode, 12ms)", FormatVerdict(v))
}

func TestFormatVerdict_Failed(t *testing.T) {
	v := &types.Verdict{
		Valid:            false,
		Mode:             types.ModePermissive,
		Errors:           []string{"Embedded frames (<iframe>) are not allowed"},
		Warnings:         []string{"w1", "w2"},
		ResponsiveReport: "Responsive test: FAILED",
		ProcessingTimeMs: 40,
	}
	want := "Validation: FAILED (permissive mode, 40ms)\n" +
		"\nErrors (1):\n" +
		"  - Embedded frames (<iframe>) are not allowed\n" +
		"\nWarnings (2):\n" +
		"  - w1\n" +
		"  - w2\n" +
		"\nResponsive test: FAILED"
	assert.Equal(t, want, FormatVerdict(v))
}

func TestFormatVerdict_DefaultsMode(t *testing.T) {
	assert.Contains(t, FormatVerdict(&types.Verdict{Valid: true}), "strict mode")
}

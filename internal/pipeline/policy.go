package pipeline

import "github.com/jonathan/pagegate/internal/types"

// ApplyMode returns the result as it counts toward the verdict under mode.
// In permissive mode a mode-sensitive stage's errors become warnings; markup
// and style findings are never demoted. The input is not modified.
func ApplyMode(mode types.Mode, stage string, result types.StepResult) types.StepResult {
	def, ok := StageRegistry[stage]
	if mode != types.ModePermissive || !ok || !def.ModeSensitive || len(result.Errors) == 0 {
		return result
	}
	warnings := make([]string, 0, len(result.Errors)+len(result.Warnings))
	warnings = append(warnings, result.Errors...)
	warnings = append(warnings, result.Warnings...)

	demoted := result
	demoted.Valid = true
	demoted.Errors = []string{}
	demoted.Warnings = warnings
	return demoted
}

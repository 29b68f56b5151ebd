package pipeline

import (
	"fmt"

	"github.com/jonathan/pagegate/internal/types"
)

// CanDeploy reports whether v permits deployment. A nil verdict never does.
func CanDeploy(v *types.Verdict) bool {
	return v != nil && v.Valid
}

// DeploymentRecommendation explains the deployment decision for v.
func DeploymentRecommendation(v *types.Verdict) types.DeployAdvice {
	switch {
	case v == nil:
		return types.DeployAdvice{
			CanDeploy:      false,
			Recommendation: "No validation data available; cannot deploy",
			Severity:       types.AdviceError,
		}
	case !v.Valid:
		return types.DeployAdvice{
			CanDeploy:      false,
			Recommendation: fmt.Sprintf("Fix %d blocking error(s) before deploying", len(v.Errors)),
			Severity:       types.AdviceError,
		}
	case len(v.Warnings) > 0:
		return types.DeployAdvice{
			CanDeploy:      true,
			Recommendation: fmt.Sprintf("Deployable with %d warning(s); review them before publishing", len(v.Warnings)),
			Severity:       types.AdviceWarning,
		}
	default:
		return types.DeployAdvice{
			CanDeploy:      true,
			Recommendation: "All checks passed; ready to deploy",
			Severity:       types.AdviceSuccess,
		}
	}
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/pagegate/internal/types"
)

func TestCanDeploy(t *testing.T) {
	assert.False(t, CanDeploy(nil))
	assert.False(t, CanDeploy(&types.Verdict{Valid: false}))
	assert.True(t, CanDeploy(&types.Verdict{Valid: true, Warnings: []string{"w"}}))
}

func TestDeploymentRecommendation(t *testing.T) {
	tests := []struct {
		name      string
		verdict   *types.Verdict
		canDeploy bool
		severity  string
		contains  string
	}{
		{"nil", nil, false, types.AdviceError, "No validation data"},
		{"invalid", &types.Verdict{Errors: []string{"a", "b"}}, false, types.AdviceError, "Fix 2 blocking error(s)"},
		{"warnings", &types.Verdict{Valid: true, Warnings: []string{"w"}}, true, types.AdviceWarning, "1 warning(s)"},
		{"clean", &types.Verdict{Valid: true}, true, types.AdviceSuccess, "ready to deploy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := DeploymentRecommendation(tt.verdict)
			assert.Equal(t, tt.canDeploy, advice.CanDeploy)
			assert.Equal(t, tt.severity, advice.Severity)
			assert.Contains(t, advice.Recommendation, tt.contains)
			assert.Equal(t, CanDeploy(tt.verdict), advice.CanDeploy)
		})
	}
}

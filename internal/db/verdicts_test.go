package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pagegate/internal/types"
)

func TestListQuery_Defaults(t *testing.T) {
	query, args := listQuery(ListOptions{})

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT $1")
	assert.Equal(t, []any{DefaultListLimit}, args)
}

func TestListQuery_Filters(t *testing.T) {
	valid := false
	query, args := listQuery(ListOptions{Limit: 10, Valid: &valid, Source: SourceHTTP})

	assert.Contains(t, query, "WHERE valid = $1 AND source = $2")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []any{false, SourceHTTP, 10}, args)
}

func TestStageRecords(t *testing.T) {
	id := uuid.New()
	v := &types.Verdict{ValidationSteps: map[string]types.StepResult{
		"styles": types.NewStepResult(nil, []string{"w"}),
		"markup": types.NewStepResult([]string{"e1", "e2"}, nil),
	}}

	records := stageRecords(id, v, map[string]string{"markup": "security"})

	require.Len(t, records, 2)
	assert.Equal(t, StageRecord{VerdictID: id, Stage: "markup", Category: "security", Valid: false, ErrorCount: 2}, records[0])
	assert.Equal(t, StageRecord{VerdictID: id, Stage: "styles", Category: "", Valid: true, WarningCount: 1}, records[1])
}

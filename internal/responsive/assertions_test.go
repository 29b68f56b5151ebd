package responsive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pagegate/internal/types"
)

var mobileSmall = types.Viewport{Name: "mobile-small", Width: 320, Height: 568, IsMobile: true}

func TestLayoutIssues(t *testing.T) {
	assert.Empty(t, layoutIssues(LayoutProbe{ViewportWidth: 320, DocumentWidth: 320}, mobileSmall))

	issues := layoutIssues(LayoutProbe{ViewportWidth: 320, DocumentWidth: 400}, mobileSmall)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].IsCritical())

	many := make([]ElementInfo, 8)
	issues = layoutIssues(LayoutProbe{ViewportWidth: 320, DocumentWidth: 320, Count: 8, Elements: many}, mobileSmall)
	require.Len(t, issues, 1)
	assert.Len(t, issues[0].Details.(map[string]any)["elements"], 5)
}

func TestScrollIssues(t *testing.T) {
	assert.Empty(t, scrollIssues(ScrollProbe{ScrollWidth: 320, ClientWidth: 320, ScrollHeight: 5680, ViewportHeight: 568}, mobileSmall))

	issues := scrollIssues(ScrollProbe{ScrollWidth: 330, ClientWidth: 320, ScrollHeight: 5681, ViewportHeight: 568}, mobileSmall)
	require.Len(t, issues, 2)
	assert.Equal(t, IssueHorizontalScroll, issues[0].Type)
	assert.True(t, issues[0].IsCritical())
	assert.Equal(t, IssueExcessiveHeight, issues[1].Type)
	assert.False(t, issues[1].IsCritical())
}

func TestVisibilityIssues(t *testing.T) {
	assert.Empty(t, visibilityIssues(VisibilityProbe{Clipped: 5, Offscreen: 2}))

	issues := visibilityIssues(VisibilityProbe{Clipped: 6, Offscreen: 3})
	require.Len(t, issues, 2)
	assert.Equal(t, IssueClippedContent, issues[0].Type)
	assert.Equal(t, IssueOffscreenContent, issues[1].Type)
	for _, i := range issues {
		assert.Equal(t, types.SeverityWarning, i.Severity)
	}
}

func TestOverlapIssues(t *testing.T) {
	assert.Len(t, overlapIssues(OverlapProbe{Count: 1}), 1)
	assert.Len(t, overlapIssues(OverlapProbe{Count: 49}), 1)
	assert.Empty(t, overlapIssues(OverlapProbe{Count: 50}))
}

func TestProbesAreTagged(t *testing.T) {
	for name, src := range map[string]string{
		"layout": layoutProbe, "scroll": scrollProbe, "overlap": overlapProbe,
		"visibility": visibilityProbe, "touch": touchProbe,
	} {
		assert.Contains(t, src, "/* probe:"+name+" */")
		assert.NotContains(t, src, "%!")
	}
}

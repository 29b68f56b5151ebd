package pipeline

import (
	"context"
	"sync"

	"github.com/jonathan/pagegate/internal/types"
)

// fakeTester returns a canned result and records the documents it was given.
type fakeTester struct {
	mu        sync.Mutex
	result    *types.ResponsiveResult
	panicWith any
	documents []string
}

func (f *fakeTester) Run(_ context.Context, document string) *types.ResponsiveResult {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.mu.Lock()
	f.documents = append(f.documents, document)
	f.mu.Unlock()
	return f.result
}

func (f *fakeTester) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.documents)
}

func passingResult() *types.ResponsiveResult {
	return &types.ResponsiveResult{
		Passed: true,
		Viewports: []types.ViewportResult{{
			Viewport: types.Viewport{Name: "mobile-small", Width: 320, Height: 568},
			Passed:   true,
			Issues:   []types.Issue{},
		}},
	}
}

func overflowResult() *types.ResponsiveResult {
	return &types.ResponsiveResult{
		Passed: false,
		Viewports: []types.ViewportResult{{
			Viewport: types.Viewport{Name: "mobile-small", Width: 320, Height: 568},
			Passed:   false,
			Issues: []types.Issue{{
				Type:     "layout_overflow",
				Severity: types.SeverityCritical,
				Message:  "Content overflows the 320px viewport: document is 5000px wide",
			}},
		}},
		Summary: types.IssueSummary{Total: 1, Critical: 1},
	}
}

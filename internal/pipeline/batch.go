package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/pagegate/internal/types"
)

// DefaultBatchConcurrency bounds parallel validations in ValidateBatch.
const DefaultBatchConcurrency = 4

// ValidateBatch validates reqs concurrently and returns verdicts in request order.
// A failing entry never affects the others.
func (p *Pipeline) ValidateBatch(ctx context.Context, reqs []types.ValidationRequest, concurrency int) []*types.Verdict {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	verdicts := make([]*types.Verdict, len(reqs))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			verdicts[i] = p.Validate(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}

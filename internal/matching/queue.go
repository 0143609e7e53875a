package matching

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runOrdered applies fn to every item with at most limit calls in flight.
// Results are written by index, so output order always equals input order
// whatever the completion order. It stops scheduling once ctx is done.
func runOrdered[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) R) ([]R, error) {
	results := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(gctx, item)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

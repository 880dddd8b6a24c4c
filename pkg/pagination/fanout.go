package pagination

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds ForEach when no limit is given.
const DefaultConcurrency = 8

// ForEach calls fn for every item with at most limit calls in flight. The
// first error cancels the context passed to the remaining calls and is
// returned once all started calls have finished.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) error) error {
	if len(items) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, item)
		})
	}
	return g.Wait()
}

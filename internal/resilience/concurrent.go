package resilience

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency caps in-flight calls of ForEachConcurrent
const DefaultConcurrency = 4

// ForEachConcurrent runs fn for every item with at most limit calls in
// flight. It returns one error slot per item, nil on success. A failing item
// does not cancel its siblings.
func ForEachConcurrent[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) error) []error {
	errs := make([]error, len(items))
	if len(items) == 0 {
		return errs
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			errs[i] = safeCall(ctx, fn, item)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func safeCall[T any](ctx context.Context, fn func(context.Context, T) error, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = normalizePanic(r)
		}
	}()
	return fn(ctx, item)
}

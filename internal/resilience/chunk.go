package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kilupskalvis/shopsync/internal/models"
)

const (
	DefaultChunkSize  = 10
	DefaultChunkDelay = 500 * time.Millisecond
)

// ErrShortChunkResult marks items a chunk function returned no result for
var ErrShortChunkResult = errors.New("chunk returned fewer results than items")

// ChunkOptions configures ProcessChunks
type ChunkOptions struct {
	Size       int
	Delay      time.Duration
	EntityType models.EntityType
	Logger     *slog.Logger
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	if o.Size <= 0 {
		o.Size = DefaultChunkSize
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// chunkDefaults holds the per-section batch shape. Sections with expensive
// mutations get smaller chunks and longer pauses.
var chunkDefaults = map[models.EntityType]ChunkOptions{
	models.EntityProducts:      {Size: 5, Delay: 1000 * time.Millisecond},
	models.EntityWarehouses:    {Size: 3, Delay: 1000 * time.Millisecond},
	models.EntityShippingZones: {Size: 5, Delay: 800 * time.Millisecond},
	models.EntityCollections:   {Size: 5, Delay: 800 * time.Millisecond},
	models.EntityProductTypes:  {Size: 10, Delay: 500 * time.Millisecond},
}

// DefaultChunkOptions returns the batch shape for a section
func DefaultChunkOptions(entityType models.EntityType) ChunkOptions {
	opts, ok := chunkDefaults[entityType]
	if !ok {
		opts = ChunkOptions{Size: DefaultChunkSize, Delay: DefaultChunkDelay}
	}
	opts.EntityType = entityType
	return opts
}

// ItemSuccess pairs an item with the result credited to it
type ItemSuccess[T, R any] struct {
	Item   T
	Result R
}

// ItemFailure pairs an item with the error of its chunk
type ItemFailure[T any] struct {
	Item T
	Err  error
}

// ChunkResult is the outcome of a chunked run. Every input item appears in
// exactly one of Successes or Failures.
type ChunkResult[T, R any] struct {
	Successes       []ItemSuccess[T, R]
	Failures        []ItemFailure[T]
	ChunksProcessed int
}

func (r *ChunkResult[T, R]) fail(items []T, err error) {
	for _, item := range items {
		r.Failures = append(r.Failures, ItemFailure[T]{Item: item, Err: err})
	}
}

// Split cuts items into contiguous chunks of at most size elements
func Split[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// ProcessChunks runs fn over sequential chunks of items, pausing between
// chunks. The single value fn returns is credited to every item of the
// chunk; an error fails every item of the chunk and processing continues.
func ProcessChunks[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, chunk []T) (R, error), opts ChunkOptions) *ChunkResult[T, R] {
	return ProcessChunksZip(ctx, items, func(ctx context.Context, chunk []T) ([]R, error) {
		r, err := fn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out := make([]R, len(chunk))
		for i := range out {
			out[i] = r
		}
		return out, nil
	}, opts)
}

// ProcessChunksZip is ProcessChunks for functions returning one result per
// item. Results are matched positionally; items beyond the returned slice
// fail with ErrShortChunkResult.
func ProcessChunksZip[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, chunk []T) ([]R, error), opts ChunkOptions) *ChunkResult[T, R] {
	res := &ChunkResult[T, R]{}
	if len(items) == 0 {
		return res
	}
	opts = opts.withDefaults()

	chunks := Split(items, opts.Size)
	for i, chunk := range chunks {
		if i > 0 && opts.Delay > 0 {
			if err := sleep(ctx, opts.Delay); err != nil {
				for _, rest := range chunks[i:] {
					res.fail(rest, err)
				}
				break
			}
		}

		results, err := invoke(ctx, fn, chunk)
		res.ChunksProcessed++
		if err != nil {
			opts.Logger.Warn("chunk failed",
				"entity_type", string(opts.EntityType),
				"chunk", i+1,
				"chunks", len(chunks),
				"items", len(chunk),
				"error", err)
			res.fail(chunk, err)
			continue
		}

		for j, item := range chunk {
			if j < len(results) {
				res.Successes = append(res.Successes, ItemSuccess[T, R]{Item: item, Result: results[j]})
			} else {
				res.Failures = append(res.Failures, ItemFailure[T]{Item: item, Err: ErrShortChunkResult})
			}
		}
		opts.Logger.Debug("chunk processed",
			"entity_type", string(opts.EntityType),
			"chunk", i+1,
			"chunks", len(chunks))
	}

	return res
}

// invoke calls fn and converts a panic into an error
func invoke[T, R any](ctx context.Context, fn func(context.Context, []T) ([]R, error), chunk []T) (results []R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = normalizePanic(r)
		}
	}()
	return fn(ctx, chunk)
}

func normalizePanic(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

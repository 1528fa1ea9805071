package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func noDelay(size int) ChunkOptions {
	return ChunkOptions{Size: size, Delay: 0}
}

func TestProcessChunks_Conservation(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25, 100} {
		for _, size := range []int{1, 3, 10, 50} {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				res := ProcessChunks(context.Background(), seq(n), func(_ context.Context, chunk []int) (int, error) {
					if chunk[0]%2 == 1 {
						return 0, errors.New("odd chunk")
					}
					return len(chunk), nil
				}, noDelay(size))

				assert.Equal(t, n, len(res.Successes)+len(res.Failures))
				assert.Equal(t, (n+size-1)/size, res.ChunksProcessed)
			})
		}
	}
}

func TestProcessChunks_EmptyDoesNotCall(t *testing.T) {
	called := false
	res := ProcessChunks(context.Background(), []string{}, func(context.Context, []string) (bool, error) {
		called = true
		return true, nil
	}, ChunkOptions{})

	assert.False(t, called)
	assert.Equal(t, 0, res.ChunksProcessed)
	assert.Empty(t, res.Successes)
	assert.Empty(t, res.Failures)
}

func TestProcessChunks_FailureIsolation(t *testing.T) {
	boom := errors.New("boom")
	res := ProcessChunks(context.Background(), seq(10), func(_ context.Context, chunk []int) (string, error) {
		if chunk[0] == 3 {
			return "", boom
		}
		return "ok", nil
	}, noDelay(3))

	require.Len(t, res.Failures, 3)
	for i, f := range res.Failures {
		assert.Equal(t, 3+i, f.Item)
		assert.ErrorIs(t, f.Err, boom)
	}
	var succeeded []int
	for _, s := range res.Successes {
		succeeded = append(succeeded, s.Item)
		assert.Equal(t, "ok", s.Result)
	}
	assert.Equal(t, []int{0, 1, 2, 6, 7, 8, 9}, succeeded)
	assert.Equal(t, 4, res.ChunksProcessed)
}

func TestProcessChunks_SequentialOrder(t *testing.T) {
	var inFlight atomic.Int32
	var order []int
	ProcessChunks(context.Background(), seq(7), func(_ context.Context, chunk []int) (struct{}, error) {
		require.Equal(t, int32(1), inFlight.Add(1))
		defer inFlight.Add(-1)
		order = append(order, chunk[0])
		return struct{}{}, nil
	}, noDelay(2))

	assert.Equal(t, []int{0, 2, 4, 6}, order)
}

func TestProcessChunks_PanicIsNormalized(t *testing.T) {
	res := ProcessChunks(context.Background(), seq(4), func(_ context.Context, chunk []int) (int, error) {
		if chunk[0] == 0 {
			panic("not an error value")
		}
		return 1, nil
	}, noDelay(2))

	require.Len(t, res.Failures, 2)
	assert.EqualError(t, res.Failures[0].Err, "not an error value")
	assert.Len(t, res.Successes, 2)
}

func TestProcessChunks_DelayBetweenChunks(t *testing.T) {
	start := time.Now()
	res := ProcessChunks(context.Background(), seq(3), func(context.Context, []int) (int, error) {
		return 0, nil
	}, ChunkOptions{Size: 1, Delay: 20 * time.Millisecond})

	assert.Equal(t, 3, res.ChunksProcessed)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestProcessChunks_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	res := ProcessChunks(ctx, seq(6), func(context.Context, []int) (int, error) {
		cancel()
		return 0, nil
	}, ChunkOptions{Size: 2, Delay: time.Second})

	assert.Equal(t, 1, res.ChunksProcessed)
	assert.Len(t, res.Successes, 2)
	require.Len(t, res.Failures, 4)
	assert.ErrorIs(t, res.Failures[0].Err, context.Canceled)
}

func TestProcessChunksZip_PositionalResults(t *testing.T) {
	res := ProcessChunksZip(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, chunk []string) ([]string, error) {
		out := make([]string, len(chunk))
		for i, s := range chunk {
			out[i] = s + "-id"
		}
		return out, nil
	}, noDelay(2))

	require.Len(t, res.Successes, 3)
	assert.Equal(t, "a-id", res.Successes[0].Result)
	assert.Equal(t, "c-id", res.Successes[2].Result)
}

func TestProcessChunksZip_ShortResultFailsRemainder(t *testing.T) {
	res := ProcessChunksZip(context.Background(), seq(3), func(_ context.Context, chunk []int) ([]int, error) {
		return []int{42}, nil
	}, noDelay(3))

	require.Len(t, res.Successes, 1)
	assert.Equal(t, 42, res.Successes[0].Result)
	require.Len(t, res.Failures, 2)
	assert.ErrorIs(t, res.Failures[0].Err, ErrShortChunkResult)
	assert.Equal(t, 1, res.Failures[0].Item)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4}}, Split(seq(5), 2))
	assert.Empty(t, Split([]int{}, 3))
	assert.Len(t, Split(seq(25), 0), 3)
}

func TestDefaultChunkOptions(t *testing.T) {
	products := DefaultChunkOptions(models.EntityProducts)
	productTypes := DefaultChunkOptions(models.EntityProductTypes)
	warehouses := DefaultChunkOptions(models.EntityWarehouses)

	assert.Less(t, products.Size, productTypes.Size)
	assert.Greater(t, warehouses.Delay, productTypes.Delay)
	assert.Equal(t, models.EntityProducts, products.EntityType)

	menus := DefaultChunkOptions(models.EntityMenus)
	assert.Equal(t, DefaultChunkSize, menus.Size)
	assert.Equal(t, DefaultChunkDelay, menus.Delay)
}

func TestForEachConcurrent(t *testing.T) {
	var inFlight, peak atomic.Int32
	errs := ForEachConcurrent(context.Background(), seq(20), 3, func(_ context.Context, i int) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		if i == 7 {
			return errors.New("seven")
		}
		if i == 9 {
			panic("nine")
		}
		return nil
	})

	require.Len(t, errs, 20)
	assert.EqualError(t, errs[7], "seven")
	assert.EqualError(t, errs[9], "nine")
	assert.NoError(t, errs[0])
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

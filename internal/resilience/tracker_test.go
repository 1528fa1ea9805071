package resilience

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_StageAccounting(t *testing.T) {
	tr := NewTracker(nil)

	tr.StartStage("Managing products")
	tr.RecordRateLimit()
	tr.RecordRateLimit()
	tr.RecordRetry()
	snap, ok := tr.EndStage()
	require.True(t, ok)
	assert.Equal(t, StageMetrics{RateLimitHits: 2, RetryAttempts: 1}, snap)

	tr.StartStage("Managing categories")
	tr.RecordNetworkError()
	tr.RecordGraphQLError()
	tr.RecordRetry()
	_, ok = tr.EndStage()
	require.True(t, ok)

	got, ok := tr.Snapshot("Managing products")
	require.True(t, ok)
	assert.Equal(t, StageMetrics{RateLimitHits: 2, RetryAttempts: 1}, got)

	assert.Equal(t, StageMetrics{RateLimitHits: 2, RetryAttempts: 2, GraphQLErrors: 1, NetworkErrors: 1}, tr.Totals())
	assert.Equal(t, []string{"Managing products", "Managing categories"}, tr.StageNames())
}

func TestTracker_EndWithoutActiveStage(t *testing.T) {
	tr := NewTracker(nil)
	_, ok := tr.EndStage()
	assert.False(t, ok)

	tr.StartStage("a")
	_, ok = tr.EndStage()
	assert.True(t, ok)
	_, ok = tr.EndStage()
	assert.False(t, ok)
}

func TestTracker_RecordOutsideStageIsTolerated(t *testing.T) {
	tr := NewTracker(nil)
	assert.NotPanics(t, func() {
		tr.RecordRateLimit()
		tr.RecordRetry()
		Record(context.Background(), EventNetworkError)
	})
	assert.True(t, tr.Totals().IsZero())
}

func TestTracker_StartImplicitlyEndsPrevious(t *testing.T) {
	tr := NewTracker(nil)
	tr.StartStage("first")
	tr.RecordRetry()
	tr.StartStage("second")
	tr.RecordRateLimit()
	tr.EndStage()

	first, ok := tr.Snapshot("first")
	require.True(t, ok)
	assert.Equal(t, StageMetrics{RetryAttempts: 1}, first)

	second, ok := tr.Snapshot("second")
	require.True(t, ok)
	assert.Equal(t, StageMetrics{RateLimitHits: 1}, second)
}

func TestTracker_ScopesDoNotCrossContaminate(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.StartStage("a")
	tr.EndStage()
	b := tr.StartStage("b")

	// A late event on a finished scope must not reach the active one.
	a.RecordRetry()
	b.RecordRateLimit()
	tr.EndStage()

	snapA, _ := tr.Snapshot("a")
	snapB, _ := tr.Snapshot("b")
	assert.True(t, snapA.IsZero())
	assert.Equal(t, StageMetrics{RateLimitHits: 1}, snapB)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(nil)
	tr.StartStage("a")
	tr.RecordRetry()
	tr.EndStage()
	tr.StartStage("b")

	tr.Reset()

	assert.Empty(t, tr.Snapshots())
	assert.Nil(t, tr.Active())
	assert.True(t, tr.Totals().IsZero())
}

func TestScope_ConcurrentRecording(t *testing.T) {
	s := NewScope("bulk")
	ctx := WithScope(context.Background(), s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Record(ctx, EventRetry)
			Record(ctx, EventGraphQLError)
		}()
	}
	wg.Wait()

	assert.Equal(t, StageMetrics{RetryAttempts: 50, GraphQLErrors: 50}, s.Snapshot())
	assert.Same(t, s, ScopeFrom(ctx))
}

func TestScope_NilIsNoop(t *testing.T) {
	var s *Scope
	assert.NotPanics(t, func() {
		s.RecordRetry()
		s.RecordRateLimit()
	})
	assert.True(t, s.Snapshot().IsZero())
	assert.Nil(t, ScopeFrom(context.Background()))
}

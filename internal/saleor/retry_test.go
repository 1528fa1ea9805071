package saleor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilupskalvis/shopsync/internal/apperr"
)

func TestIsTransient_NilError(t *testing.T) {
	assert.False(t, isTransient(nil))
}

func TestIsTransient_ServerError(t *testing.T) {
	assert.True(t, isTransient(&HTTPError{Status: 500}))
}

func TestIsTransient_TooManyRequests(t *testing.T) {
	assert.True(t, isTransient(&HTTPError{Status: http.StatusTooManyRequests}))
}

func TestIsTransient_ClientError(t *testing.T) {
	assert.False(t, isTransient(&HTTPError{Status: 400}))
}

func TestIsTransient_NetworkError(t *testing.T) {
	assert.True(t, isTransient(apperr.Network(errors.New("connection reset by peer"))))
}

func TestIsTransient_Cancelled(t *testing.T) {
	assert.False(t, isTransient(apperr.Network(context.Canceled)))
}

func TestIsTransient_GraphQLError(t *testing.T) {
	assert.False(t, isTransient(&QueryError{Errors: []GraphQLError{{Message: "bad"}}}))
}

func TestRetryConfig_Backoff(t *testing.T) {
	rc := &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		JitterFraction: 0.0, // deterministic
	}

	assert.Equal(t, 100*time.Millisecond, rc.backoff(0))
	assert.Equal(t, 200*time.Millisecond, rc.backoff(1))
	assert.Equal(t, 400*time.Millisecond, rc.backoff(2))
}

func TestRetryConfig_BackoffCapped(t *testing.T) {
	rc := &RetryConfig{
		MaxRetries:     10,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     5 * time.Second,
	}
	assert.Equal(t, 5*time.Second, rc.backoff(10))
}

func TestRetryConfig_BackoffJitterBounds(t *testing.T) {
	rc := &RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, JitterFraction: 0.25}
	for i := 0; i < 50; i++ {
		d := rc.backoff(0)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}

func TestWithRetry_NonTransientReturnsImmediately(t *testing.T) {
	c := NewClient("http://unused", "", testOptions())
	attempts := 0
	err := c.withRetry(context.Background(), func() error {
		attempts++
		return &HTTPError{Status: 404}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_SucceedsAfterTransient(t *testing.T) {
	c := NewClient("http://unused", "", testOptions())
	attempts := 0
	err := c.withRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{Status: 503}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_ExhaustedMentionsRetries(t *testing.T) {
	c := NewClient("http://unused", "", testOptions())
	err := c.withRetry(context.Background(), func() error {
		return &HTTPError{Status: 503}
	})
	assert.ErrorContains(t, err, "after 3 retries")
}

// Package resilience tracks rate-limit, retry and error events per deployment
// stage and provides the chunked and concurrent processing disciplines used
// for bulk mutations.
package resilience

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Event is a resilience occurrence observed while talking to the remote
type Event int

const (
	EventRateLimit Event = iota
	EventRetry
	EventGraphQLError
	EventNetworkError
)

func (e Event) String() string {
	switch e {
	case EventRateLimit:
		return "rate_limit"
	case EventRetry:
		return "retry"
	case EventGraphQLError:
		return "graphql_error"
	case EventNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// StageMetrics is an immutable snapshot of one stage's counters
type StageMetrics struct {
	RateLimitHits int `json:"rateLimitHits"`
	RetryAttempts int `json:"retryAttempts"`
	GraphQLErrors int `json:"graphqlErrors"`
	NetworkErrors int `json:"networkErrors"`
}

// Add returns the field-wise sum of m and o
func (m StageMetrics) Add(o StageMetrics) StageMetrics {
	return StageMetrics{
		RateLimitHits: m.RateLimitHits + o.RateLimitHits,
		RetryAttempts: m.RetryAttempts + o.RetryAttempts,
		GraphQLErrors: m.GraphQLErrors + o.GraphQLErrors,
		NetworkErrors: m.NetworkErrors + o.NetworkErrors,
	}
}

// IsZero reports whether no event was recorded
func (m StageMetrics) IsZero() bool {
	return m == StageMetrics{}
}

// Scope is the mutable accumulator for one running stage. Methods are safe
// for concurrent use and a nil Scope ignores every call.
type Scope struct {
	name          string
	rateLimitHits atomic.Int64
	retryAttempts atomic.Int64
	graphqlErrors atomic.Int64
	networkErrors atomic.Int64
}

// NewScope creates a standalone accumulator
func NewScope(name string) *Scope {
	return &Scope{name: name}
}

// Name returns the stage name the scope belongs to
func (s *Scope) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Record increments the counter for ev
func (s *Scope) Record(ev Event) {
	if s == nil {
		return
	}
	switch ev {
	case EventRateLimit:
		s.rateLimitHits.Add(1)
	case EventRetry:
		s.retryAttempts.Add(1)
	case EventGraphQLError:
		s.graphqlErrors.Add(1)
	case EventNetworkError:
		s.networkErrors.Add(1)
	}
}

func (s *Scope) RecordRateLimit() { s.Record(EventRateLimit) }
func (s *Scope) RecordRetry() { s.Record(EventRetry) }
func (s *Scope) RecordGraphQLError() { s.Record(EventGraphQLError) }
func (s *Scope) RecordNetworkError() { s.Record(EventNetworkError) }

// Snapshot returns the current counter values
func (s *Scope) Snapshot() StageMetrics {
	if s == nil {
		return StageMetrics{}
	}
	return StageMetrics{
		RateLimitHits: int(s.rateLimitHits.Load()),
		RetryAttempts: int(s.retryAttempts.Load()),
		GraphQLErrors: int(s.graphqlErrors.Load()),
		NetworkErrors: int(s.networkErrors.Load()),
	}
}

type scopeKey struct{}

// WithScope attaches a stage accumulator to ctx so transports can record events
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the accumulator attached to ctx, or nil
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Record increments ev in the scope attached to ctx. Events outside any stage
// are logged at debug level and dropped.
func Record(ctx context.Context, ev Event) {
	s := ScopeFrom(ctx)
	if s == nil {
		slog.Default().Debug("resilience event outside stage context", "event", ev.String())
		return
	}
	s.Record(ev)
}

// Tracker owns the active stage scope and the snapshots of finished stages
// for one deployment run.
type Tracker struct {
	mu        sync.Mutex
	active    *Scope
	snapshots map[string]StageMetrics
	order     []string
	logger    *slog.Logger
}

// NewTracker creates an empty tracker. A nil logger uses slog.Default().
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		snapshots: make(map[string]StageMetrics),
		logger:    logger,
	}
}

// StartStage opens a fresh scope for name. An already active scope is ended
// and its snapshot stored first.
func (t *Tracker) StartStage(name string) *Scope {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		t.logger.Debug("implicitly ending stage context", "stage", t.active.name, "next", name)
		t.endLocked()
	}
	t.active = NewScope(name)
	return t.active
}

// EndStage freezes the active scope into a snapshot stored under its stage
// name. It returns false when no stage is active.
func (t *Tracker) EndStage() (StageMetrics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return StageMetrics{}, false
	}
	return t.endLocked(), true
}

func (t *Tracker) endLocked() StageMetrics {
	snap := t.active.Snapshot()
	if _, seen := t.snapshots[t.active.name]; !seen {
		t.order = append(t.order, t.active.name)
	}
	t.snapshots[t.active.name] = snap
	t.active = nil
	return snap
}

// Active returns the running scope, or nil
func (t *Tracker) Active() *Scope {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) record(ev Event) {
	t.mu.Lock()
	s := t.active
	t.mu.Unlock()

	if s == nil {
		t.logger.Debug("resilience event outside stage context", "event", ev.String())
		return
	}
	s.Record(ev)
}

func (t *Tracker) RecordRateLimit() { t.record(EventRateLimit) }
func (t *Tracker) RecordRetry() { t.record(EventRetry) }
func (t *Tracker) RecordGraphQLError() { t.record(EventGraphQLError) }
func (t *Tracker) RecordNetworkError() { t.record(EventNetworkError) }

// Snapshot returns the stored metrics of a finished stage
func (t *Tracker) Snapshot(name string) (StageMetrics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.snapshots[name]
	return m, ok
}

// Snapshots returns a copy of all finished stage metrics
func (t *Tracker) Snapshots() map[string]StageMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]StageMetrics, len(t.snapshots))
	for k, v := range t.snapshots {
		out[k] = v
	}
	return out
}

// StageNames returns finished stage names in the order they first ended
func (t *Tracker) StageNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// Totals sums every finished stage snapshot
func (t *Tracker) Totals() StageMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total StageMetrics
	for _, m := range t.snapshots {
		total = total.Add(m)
	}
	return total
}

// Reset drops the active scope and all stored snapshots
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = nil
	t.snapshots = make(map[string]StageMetrics)
	t.order = nil
}

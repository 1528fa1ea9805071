package saleor

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// call is one GraphQL operation received by the fake instance
type call struct {
	Operation string
	Variables map[string]any
}

// fakeSaleor answers GraphQL operations from per-operation handlers. A
// handler returns the value placed under "data".
type fakeSaleor struct {
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]func(vars map[string]any) any
	calls    []call
	server   *httptest.Server
}

func newFakeSaleor(t *testing.T) *fakeSaleor {
	t.Helper()
	f := &fakeSaleor{t: t, handlers: make(map[string]func(map[string]any) any)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSaleor) on(operation string, h func(vars map[string]any) any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[operation] = h
}

func (f *fakeSaleor) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	op := operationName(req.Query)

	f.mu.Lock()
	f.calls = append(f.calls, call{Operation: op, Variables: req.Variables})
	h, ok := f.handlers[op]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		json.NewEncoder(w).Encode(map[string]any{"errors": []map[string]any{{"message": "no handler for " + op}}})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"data": h(req.Variables)})
}

func (f *fakeSaleor) operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Operation)
	}
	return out
}

func (f *fakeSaleor) callsTo(operation string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Operation == operation {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSaleor) client() *Client {
	return NewClient(f.server.URL, "test-token", testOptions())
}

// operationName returns the query name or the mutation field of a document
func operationName(doc string) string {
	doc = strings.TrimSpace(doc)
	if rest, ok := strings.CutPrefix(doc, "query "); ok {
		if i := strings.IndexAny(rest, "( {"); i >= 0 {
			return rest[:i]
		}
		return rest
	}
	return mutationField(doc)
}

func testOptions() Options {
	return Options{
		RequestsPerSecond: -1,
		Retry: &RetryConfig{
			MaxRetries:     3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     2 * time.Millisecond,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// page wraps nodes as a single-page connection
func page(nodes ...any) map[string]any {
	edges := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		edges = append(edges, map[string]any{"node": n})
	}
	return map[string]any{
		"edges":    edges,
		"pageInfo": map[string]any{"hasNextPage": false, "endCursor": ""},
	}
}

func entityPayload(entity, id string) map[string]any {
	return map[string]any{entity: map[string]any{"id": id}, "errors": []any{}}
}

func okPayload() map[string]any {
	return map[string]any{"errors": []any{}}
}

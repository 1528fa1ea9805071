// Package saleor talks to a Saleor instance over its GraphQL API: it reads
// the live configuration and applies deployment mutations.
package saleor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

const (
	// DefaultRequestsPerSecond paces requests to the instance
	DefaultRequestsPerSecond = 10
	defaultBurst             = 5
	defaultHTTPTimeout       = 60 * time.Second
	maxErrorBody             = 4096
)

// Options configures a Client
type Options struct {
	// RequestsPerSecond caps the request rate; zero means the default and a
	// negative value disables pacing
	RequestsPerSecond float64
	Retry             *RetryConfig
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client executes GraphQL operations against one instance
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      *RetryConfig
	logger     *slog.Logger
}

// NewClient creates a client for the GraphQL endpoint at url
func NewClient(url, token string, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if opts.Retry == nil {
		opts.Retry = DefaultRetryConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	switch {
	case opts.RequestsPerSecond == 0:
		limiter = rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), defaultBurst)
	case opts.RequestsPerSecond > 0:
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), defaultBurst)
	}
	return &Client{
		endpoint:   normalizeEndpoint(url),
		token:      token,
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		retry:      opts.Retry,
		logger:     opts.Logger,
	}
}

// normalizeEndpoint appends the GraphQL path when given a bare instance URL
func normalizeEndpoint(url string) string {
	url = strings.TrimRight(url, "/")
	if strings.HasSuffix(url, "/graphql") {
		return url + "/"
	}
	return url + "/graphql/"
}

// Endpoint returns the GraphQL endpoint the client posts to
func (c *Client) Endpoint() string {
	return c.endpoint
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQLError is one entry of a response's top-level errors list
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// QueryError carries the top-level errors of a response
type QueryError struct {
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// HTTPError is a non-2xx response
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, http.StatusText(e.Status), e.Body)
}

// Do executes one GraphQL operation and decodes its data into out. Transient
// failures are retried; every rate-limit hit, retry, GraphQL error and
// network failure is recorded in the resilience scope carried by ctx.
func (c *Client) Do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var data json.RawMessage
	err = c.withRetry(ctx, func() error {
		data, err = c.post(ctx, body)
		return err
	})
	if err != nil {
		return err
	}

	if out != nil && len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			resilience.Record(ctx, resilience.EventNetworkError)
		}
		return nil, apperr.Network(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperr.Authentication(readHTTPError(resp))
	case resp.StatusCode == http.StatusTooManyRequests:
		resilience.Record(ctx, resilience.EventRateLimit)
		return nil, readHTTPError(resp)
	case resp.StatusCode >= 400:
		return nil, readHTTPError(resp)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		resilience.Record(ctx, resilience.EventNetworkError)
		return nil, apperr.Network(fmt.Errorf("decode response: %w", err))
	}
	if len(r.Errors) > 0 {
		resilience.Record(ctx, resilience.EventGraphQLError)
		qe := &QueryError{Errors: r.Errors}
		if isAuthError(r.Errors) {
			return nil, apperr.Authentication(qe)
		}
		return nil, qe
	}
	return r.Data, nil
}

func readHTTPError(resp *http.Response) *HTTPError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

func isAuthError(errs []GraphQLError) bool {
	for _, e := range errs {
		code, _ := e.Extensions["exception"].(map[string]any)
		if c, _ := code["code"].(string); c == "PermissionDenied" || c == "ExpiredSignatureError" || c == "InvalidTokenError" {
			return true
		}
	}
	return false
}

// UserError is one entry of a mutation payload's errors list
type UserError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// MutationError reports the user errors a mutation returned
type MutationError struct {
	Mutation string
	Errors   []UserError
}

func (e *MutationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		switch {
		case ue.Field != "" && ue.Message != "":
			parts = append(parts, ue.Field+": "+ue.Message)
		case ue.Message != "":
			parts = append(parts, ue.Message)
		default:
			parts = append(parts, strings.ToLower(strings.ReplaceAll(ue.Code, "_", " ")))
		}
	}
	return e.Mutation + ": " + strings.Join(parts, "; ")
}

// Mutate runs a mutation whose payload is at data.<field> and fails with a
// MutationError when the payload carries user errors. The payload is decoded
// into out when out is non-nil.
func (c *Client) Mutate(ctx context.Context, mutation, field string, vars map[string]any, out any) error {
	var data map[string]json.RawMessage
	if err := c.Do(ctx, mutation, vars, &data); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	raw, ok := data[field]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("%s: empty payload", field)
	}

	var payload struct {
		Errors []UserError `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%s: decode payload: %w", field, err)
	}
	if len(payload.Errors) > 0 {
		resilience.Record(ctx, resilience.EventGraphQLError)
		return &MutationError{Mutation: field, Errors: payload.Errors}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decode payload: %w", field, err)
		}
	}
	return nil
}

// Ping verifies the endpoint and credentials
func (c *Client) Ping(ctx context.Context) error {
	var data struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := c.Do(ctx, `query { shop { name } }`, nil, &data); err != nil {
		return err
	}
	if data.Shop.Name == "" {
		return errors.New("unexpected response: shop name is empty")
	}
	return nil
}

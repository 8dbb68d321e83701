// Package mem0 is a thin client for a self-hosted Mem0 REST server.
//
// Every operation swallows transport and server failures: it logs a warning
// and returns an empty value with ok=false. Callers decide what "empty" means
// for them; nothing here returns an error that could reach the host.
package mem0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
)

const (
	maxResponseLen = 1 << 20 // 1 MiB
	tracerName     = "github.com/serenichron/openclaw-memory-mem0/internal/mem0"
)

// Client talks to one Mem0 server on behalf of one user.
type Client struct {
	baseURL       string
	userID        string
	apiKey        string
	recallLimit   int
	healthTimeout time.Duration

	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer

	healthChecked atomic.Bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The default has no timeout; calls
// are bounded only by the caller's context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for failure warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracerProvider sets where spans go. The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// NewClient builds a client from a validated config.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:       cfg.BaseURL,
		userID:        cfg.UserID,
		apiKey:        cfg.APIKey,
		recallLimit:   cfg.RecallLimit,
		healthTimeout: cfg.HealthTimeout(),
		http:          &http.Client{},
		logger:        slog.Default(),
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the user every request is scoped to.
func (c *Client) UserID() string { return c.userID }

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// HealthChecked reports whether the one-time health probe has run.
func (c *Client) HealthChecked() bool { return c.healthChecked.Load() }

// EnsureHealthy probes GET /health once per client. Whichever caller flips
// the flag runs the probe; everyone else returns immediately. A failed probe
// is only logged.
func (c *Client) EnsureHealthy(ctx context.Context) {
	if !c.healthChecked.CompareAndSwap(false, true) {
		return
	}
	if err := c.Ping(ctx); err != nil {
		c.logger.Warn("mem0: server health check failed", "base_url", c.baseURL, "error", err)
		return
	}
	c.logger.Debug("mem0: server healthy", "base_url", c.baseURL)
}

// Ping issues GET /health bounded by the health timeout and reports the
// outcome. Unlike EnsureHealthy it is not memoized.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "mem0.health", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	_, err := c.do(ctx, span, http.MethodGet, "/health", nil, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Search returns memories relevant to query, in server order. limit <= 0
// means the configured recall limit.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Memory, bool) {
	if limit <= 0 {
		limit = c.recallLimit
	}
	ctx, span := c.startSpan(ctx, "mem0.search", attribute.Int("mem0.limit", limit))
	defer span.End()

	c.EnsureHealthy(ctx)

	q := url.Values{}
	q.Set("query", query)
	q.Set("user_id", c.userID)
	q.Set("limit", strconv.Itoa(limit))

	var resp memoriesResponse
	if err := c.getJSON(ctx, span, "/memories/search", q, &resp); err != nil {
		c.fail(span, "search", err)
		return nil, false
	}
	span.SetAttributes(attribute.Int("mem0.results", len(resp.Memories)))
	return resp.Memories, true
}

// Add submits content for fact extraction. The server may derive zero, one
// or several memories from it. agentID, when set, is stored as
// metadata.agent_id; otherwise no metadata is sent.
func (c *Client) Add(ctx context.Context, content, agentID string) (AddResult, bool) {
	ctx, span := c.startSpan(ctx, "mem0.add")
	defer span.End()

	c.EnsureHealthy(ctx)

	req := addRequest{Content: content, UserID: c.userID}
	if agentID != "" {
		req.Metadata = map[string]interface{}{"agent_id": agentID}
		span.SetAttributes(attribute.String("mem0.agent_id", agentID))
	}
	body, err := json.Marshal(req)
	if err != nil {
		c.fail(span, "add", fmt.Errorf("marshal request: %w", err))
		return AddResult{}, false
	}

	data, err := c.do(ctx, span, http.MethodPost, "/memories", nil, body)
	if err != nil {
		c.fail(span, "add", err)
		return AddResult{}, false
	}

	var resp addResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.fail(span, "add", fmt.Errorf("decode response: %w", err))
		return AddResult{}, false
	}
	span.SetAttributes(
		attribute.Bool("mem0.success", resp.Success),
		attribute.Int("mem0.results", len(resp.Result.Results)),
	)
	return AddResult{Success: resp.Success, Results: resp.Result.Results}, true
}

// List returns every memory stored for the configured user.
func (c *Client) List(ctx context.Context) ([]Memory, bool) {
	ctx, span := c.startSpan(ctx, "mem0.list")
	defer span.End()

	c.EnsureHealthy(ctx)

	q := url.Values{}
	q.Set("user_id", c.userID)

	var resp memoriesResponse
	if err := c.getJSON(ctx, span, "/memories", q, &resp); err != nil {
		c.fail(span, "list", err)
		return nil, false
	}
	span.SetAttributes(attribute.Int("mem0.results", len(resp.Memories)))
	return resp.Memories, true
}

// Delete removes one memory by id. Any 2xx counts as success.
func (c *Client) Delete(ctx context.Context, id string) bool {
	ctx, span := c.startSpan(ctx, "mem0.delete", attribute.String("mem0.memory_id", id))
	defer span.End()

	c.EnsureHealthy(ctx)

	if _, err := c.do(ctx, span, http.MethodDelete, "/memories/"+url.PathEscape(id), nil, nil); err != nil {
		c.fail(span, "delete", err)
		return false
	}
	return true
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("mem0.user_id", c.userID))
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func (c *Client) fail(span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Warn("mem0: "+op+" failed", "base_url", c.baseURL, "user_id", c.userID, "error", err)
}

func (c *Client) getJSON(ctx context.Context, span trace.Span, path string, query url.Values, out interface{}) error {
	data, err := c.do(ctx, span, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, span trace.Span, method, path string, query url.Values, body []byte) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, body != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}
	return data, nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

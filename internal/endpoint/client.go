// Package endpoint executes SPARQL queries against a read-only HTTP
// endpoint and records per-row outcomes for batch files. Execution is
// the validity oracle for the repair pipeline: a query that still fails
// here is annotated, never raised.
package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Statuses that are worth retrying: rate limiting and transient
// server-side failures.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// snippetLimit bounds how much of an error body ends up in a row
// annotation.
const snippetLimit = 180

// Client runs SPARQL queries over HTTP GET with automatic retries and
// exponential backoff on transient failures.
type Client struct {
	endpoint string
	http     *http.Client
	retries  int
	backoff  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithBackoff sets the base backoff; attempt n sleeps base * 2^n.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a client for one endpoint URL.
func New(endpoint string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		retries:  5,
		backoff:  800 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sparqlResponse mirrors the application/sparql-results+json envelope,
// down to the one binding variable the batch jobs ask for.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Run executes one query and returns the deduplicated ?obj binding
// values in result order. A failed execution returns a non-empty errMsg
// and nil values; Run itself never returns a Go error because row-level
// failures are annotations, not aborts.
func (c *Client) Run(ctx context.Context, query string) (values []string, errMsg string) {
	if strings.TrimSpace(query) == "" {
		return nil, "Empty or invalid query string"
	}

	body, errMsg := c.fetch(ctx, query)
	if errMsg != "" {
		return nil, errMsg
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Sprintf("Invalid JSON: %s", snippet(string(body)))
	}

	seen := make(map[string]bool)
	for _, b := range resp.Results.Bindings {
		obj, ok := b["obj"]
		if !ok || seen[obj.Value] {
			continue
		}
		seen[obj.Value] = true
		values = append(values, obj.Value)
	}
	if values == nil {
		values = []string{}
	}
	return values, ""
}

// fetch performs the GET with the retry policy and returns the response
// body of the first 200, or the annotation for the final failure.
func (c *Client) fetch(ctx context.Context, query string) ([]byte, string) {
	var lastErr string
	for attempt := 0; ; attempt++ {
		body, retryable, errMsg := c.doRequest(ctx, query)
		if errMsg == "" {
			return body, ""
		}
		lastErr = errMsg
		if !retryable || attempt >= c.retries {
			return nil, lastErr
		}
		// 0.8s, 1.6s, 3.2s, ... like the retry adapter the original
		// batch runner used.
		wait := c.backoff * (1 << attempt)
		select {
		case <-ctx.Done():
			return nil, fmt.Sprintf("Network error: %v", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// doRequest performs a single HTTP attempt. retryable reports whether
// the failure is transient.
func (c *Client) doRequest(ctx context.Context, query string) (body []byte, retryable bool, errMsg string) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "application/sparql-results+json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Sprintf("Network error: %v", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Sprintf("Network error: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Sprintf("Network error: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, retryStatuses[resp.StatusCode],
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, snippet(string(data)))
	}
	return data, false, ""
}

// snippet flattens and truncates an error body for a row annotation.
// Truncation backs up to a rune boundary so a multi-byte character is
// never split.
func snippet(s string) string {
	s = strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	if len(s) > snippetLimit {
		cut := snippetLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	return s
}

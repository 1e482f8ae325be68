// Package backend implements the typed RPC client for the hosted data
// platform. Each exported method invokes one named remote procedure; all
// business rules live on the remote side.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/regpulse-io/regpulse/internal/metrics"
)

// Transport limits.
const (
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 4 << 10
	maxResponseSize  = 8 << 20
)

// ErrUnauthorized indicates the platform rejected the caller's credentials.
var ErrUnauthorized = errors.New("backend: unauthorized")

// Config identifies the hosted platform.
type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// Client issues RPC calls against the hosted platform's REST surface.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a backend client. The underlying procedures are of unknown
// idempotency, so the client never retries; a circuit breaker sheds load
// when the platform is consistently failing.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("backend URL required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("backend service key required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    cfg.URL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend-rpc",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("backend: circuit state change", "from", from.String(), "to", to.String())
		},
	})
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// apiError carries the remote-side failure detail. It is logged for operator
// diagnostics and must never be returned verbatim to HTTP clients.
type apiError struct {
	proc   string
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("rpc %s: status %d: %s", e.proc, e.status, e.body)
}

// rpc invokes one named remote procedure with the given parameters, decoding
// the JSON response into out when out is non-nil.
func (c *Client) rpc(ctx context.Context, proc string, params, out interface{}) error {
	metrics.RPCCalls.Add(1)

	body := []byte("{}")
	if params != nil {
		var err error
		body, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("rpc %s: marshal params: %w", proc, err)
		}
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.doRPC(ctx, proc, body, out)
	})
	if err != nil {
		metrics.RPCErrors.Add(1)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("rpc %s: backend unavailable: %w", proc, err)
		}
		return err
	}
	return nil
}

func (c *Client) doRPC(ctx context.Context, proc string, body []byte, out interface{}) error {
	url := c.baseURL + "/rest/v1/rpc/" + proc
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc %s: build request: %w", proc, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", proc, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("rpc %s: %w", proc, ErrUnauthorized)
	}
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &apiError{proc: proc, status: resp.StatusCode, body: string(detail)}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("rpc %s: read response: %w", proc, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("rpc %s: decode response: %w", proc, err)
	}
	return nil
}

// get issues an authenticated GET against a REST path, decoding into out.
// The bearer token defaults to the service key when token is empty.
func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("get %s: build request: %w", path, err)
	}
	if token == "" {
		token = c.serviceKey
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("get %s: %w", path, ErrUnauthorized)
	}
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &apiError{proc: path, status: resp.StatusCode, body: string(detail)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("get %s: decode response: %w", path, err)
	}
	return nil
}

// Ping verifies the platform's REST surface is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/rest/v1/", "", nil)
}

// Package rankingsapi is a read-only client for the XCRI ranking backend.
//
// Every call is an idempotent GET. Transient failures (transport errors, 5xx,
// 429) are retried with exponential backoff up to a bounded number of
// attempts; other failures return immediately as typed errors.
package rankingsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/xcri/rankings/pkg/logger"
	"github.com/xcri/rankings/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout           = 15 * time.Second
	defaultMaxRetries        = 2
	defaultRetryInterval     = 200 * time.Millisecond
	defaultKnockoutPageLimit = 500
	maxErrorBody             = 4 << 10

	// RequestIDHeader carries a per-request id for backend log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Client talks to the ranking backend.
type Client struct {
	base              *url.URL
	http              *http.Client
	timeout           time.Duration
	maxRetries        int
	retryInterval     time.Duration
	knockoutPageLimit int
	logger            logger.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rankingsapi: invalid base URL %q", baseURL)
	}

	c := &Client{
		base:              u,
		http:              &http.Client{},
		timeout:           defaultTimeout,
		maxRetries:        defaultMaxRetries,
		retryInterval:     defaultRetryInterval,
		knockoutPageLimit: defaultKnockoutPageLimit,
		logger:            logger.Get().Named("rankingsapi"),
	}
	for _, opt := range opts {
		opt(c)
	}

	next := c.http.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	wrapped := *c.http
	wrapped.Transport = &metricsTransport{next: next}
	c.http = &wrapped

	return c, nil
}

// get performs GET path?query and decodes the JSON body into out.
// endpoint is the bounded label used for metrics and logs.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()
	target := u.String()

	ctx = withEndpoint(ctx, endpoint)
	attempt := 0
	op := func() error {
		attempt++
		err := c.do(ctx, target, endpoint, out)
		if err == nil {
			return nil
		}
		if isTemporary(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx) //nolint:gosec // maxRetries is validated non-negative

	notify := func(err error, wait time.Duration) {
		metrics.RecordBackendRetry(endpoint)
		c.logger.Warn(ctx, "retrying backend request",
			logger.String("endpoint", endpoint),
			logger.Int("attempt", attempt),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return fmt.Errorf("%s: %w", endpoint, ctxErr)
		}
		return err
	}
	return nil
}

func (c *Client) do(parent context.Context, target, endpoint string, out any) error {
	ctx := parent
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if parentErr := parent.Err(); parentErr != nil {
			return fmt.Errorf("%s: %w", endpoint, parentErr)
		}
		// Includes the per-attempt timeout, which is worth retrying.
		return fmt.Errorf("%s: %w: %v", endpoint, ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug(parent, "backend response",
		logger.String("endpoint", endpoint),
		logger.String("request_id", reqID),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if parentErr := parent.Err(); parentErr != nil {
			return fmt.Errorf("%s: %w", endpoint, parentErr)
		}
		return fmt.Errorf("%s: %w: %v", endpoint, ErrDecode, err)
	}
	return nil
}

// readDetail extracts the error detail the backend sends as {"detail": ...}.
func readDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		b, _ := json.Marshal(payload.Detail)
		return string(b)
	}
	return strings.TrimSpace(string(body))
}

func isTemporary(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return errors.Is(err, ErrTransport)
}

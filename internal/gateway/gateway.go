// Package gateway is the single place where the storefront performs network I/O.
// Every backend call goes through Gateway.Request, which injects the bearer token,
// encodes JSON bodies and normalizes failures into HTTPError or NetworkError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const RequestIDHeader = "X-Request-ID"

// TokenSource yields the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Requester is what the service clients depend on.
type Requester interface {
	Request(ctx context.Context, method, url string, body any) (*Payload, error)
}

type Gateway struct {
	client  *http.Client
	tokens  TokenSource
	log     *logger.Logger
	metrics *metrics.GatewayMetrics
	breaker *gobreaker.CircuitBreaker[*http.Response]
	timeout time.Duration
}

type Option func(*Gateway)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithTimeout bounds every request. Zero leaves requests without a deadline.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithBreaker fails fast after maxFailures consecutive transport failures and
// stays open for openFor. Responses with any status code count as successes.
func WithBreaker(maxFailures uint32, openFor time.Duration) Option {
	return func(g *Gateway) {
		if maxFailures == 0 {
			maxFailures = 1
		}
		g.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "storefront-gateway",
			MaxRequests: 1,
			Timeout:     openFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}
}

func New(tokens TokenSource, opts ...Option) *Gateway {
	g := &Gateway{
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tokens: tokens,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request issues method on url with body encoded as JSON when non-nil.
// Non-2xx answers become *HTTPError, transport failures *NetworkError.
// There are no retries.
func (g *Gateway) Request(ctx context.Context, method, url string, body any) (*Payload, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if token, ok := g.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	entry := g.log.WithContext(ctx).WithField("method", method).WithField("url", url).WithField("request_id", requestID)

	start := time.Now()
	resp, err := g.do(req)
	elapsed := time.Since(start)
	if err != nil {
		g.metrics.Observe(req.URL.Host, method, 0, elapsed)
		entry.WithError(err).Debug("request failed")
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	g.metrics.Observe(req.URL.Host, method, resp.StatusCode, elapsed)
	entry = entry.WithField("status", resp.StatusCode).WithField("duration_ms", elapsed.Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		entry.Debug("request rejected")
		return nil, newHTTPError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		entry.WithError(err).Debug("reading response failed")
		return nil, &NetworkError{Method: method, URL: url, Err: fmt.Errorf("read response body: %w", err)}
	}
	entry.Debug("request done")

	return NewPayload(resp.StatusCode, resp.Header.Get("Content-Type"), data), nil
}

func (g *Gateway) do(req *http.Request) (*http.Response, error) {
	if g.breaker == nil {
		return g.client.Do(req)
	}
	return g.breaker.Execute(func() (*http.Response, error) {
		return g.client.Do(req)
	})
}

func newHTTPError(resp *http.Response) *HTTPError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}

	body := text
	if data, err := io.ReadAll(resp.Body); err == nil {
		body = string(data)
	}

	return &HTTPError{StatusCode: resp.StatusCode, StatusText: text, Body: body}
}

// Fetch runs a request and decodes the JSON answer into T.
func Fetch[T any](ctx context.Context, r Requester, method, url string, body any) (T, error) {
	var out T
	payload, err := r.Request(ctx, method, url, body)
	if err != nil {
		return out, err
	}
	if err := payload.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// Package directory is the HTTP client for the upstream country directory.
package directory

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"atlas/internal/country/metrics"
	"atlas/internal/country/models"
	"atlas/pkg/requestcontext"
)

const (
	opAll    = "all"
	opByCode = "by_code"

	// maxBodyBytes bounds a single upstream response; the full collection is
	// a few hundred kilobytes.
	maxBodyBytes = 16 << 20
)

// collectionFields restricts the collection payload to what the UI renders.
var collectionFields = strings.Join([]string{
	"name", "capital", "alpha3Code", "alpha2Code", "region", "population",
	"flag", "currencies", "languages", "borders",
}, ",")

// Client queries the directory's REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout bounds each upstream call.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithMetrics attaches latency metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// New builds a client for the directory rooted at baseURL, e.g.
// "https://restcountries.com/v2".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse directory base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("directory base URL %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		timeout:    10 * time.Second,
		tracer:     otel.Tracer("atlas/internal/country/directory"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// All fetches every country, in directory order.
func (c *Client) All(ctx context.Context) ([]models.Country, error) {
	endpoint := c.baseURL.JoinPath("all")
	endpoint.RawQuery = url.Values{"fields": {collectionFields}}.Encode()

	var countries []models.Country
	if err := c.get(ctx, opAll, endpoint, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// ByCode fetches a single country by alpha-2 or alpha-3 code.
func (c *Client) ByCode(ctx context.Context, code string) (*models.Country, error) {
	endpoint := c.baseURL.JoinPath("alpha", code)

	var country models.Country
	if err := c.get(ctx, opByCode, endpoint, &country); err != nil {
		return nil, err
	}
	if country.Code == "" {
		return nil, NewError(ErrorNotFound, opByCode, fmt.Sprintf("no country with code %s", code), nil)
	}
	return &country, nil
}

func (c *Client) get(ctx context.Context, op string, endpoint *url.URL, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "directory."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("http.url", endpoint.String()))
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(GetCategory(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		c.metrics.ObserveDirectory(op, outcome, time.Since(start))
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return NewError(ErrorBadData, op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return NewError(ErrorNotFound, op, "directory returned 404", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewError(ErrorRateLimited, op, "directory returned 429", nil)
	case resp.StatusCode >= http.StatusInternalServerError:
		return NewError(ErrorOutage, op, fmt.Sprintf("directory returned %d", resp.StatusCode), nil)
	default:
		return NewError(ErrorBadData, op, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return classifyTransportError(ctx, op, ctxErr)
		}
		return NewError(ErrorBadData, op, "decode response", err)
	}
	return nil
}

func classifyTransportError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return NewError(ErrorCanceled, op, "request canceled", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewError(ErrorTimeout, op, "request timed out", err)
	default:
		return NewError(ErrorOutage, op, "directory unreachable", err)
	}
}

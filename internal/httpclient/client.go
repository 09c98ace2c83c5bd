package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/angeloszaimis/pkghealth/internal/circuitbreaker"
	"github.com/angeloszaimis/pkghealth/internal/metrics"
)

const DefaultUserAgent = "pkghealth/1.0"

// StatusError reports a response whose status code was not 2xx.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
}

// IsStatusError returns the *StatusError in err's chain, if any.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsBreakerSuccess classifies results for the circuit breaker. Any status
// code means the host answered; only transport failures count against it.
func IsBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	_, ok := IsStatusError(err)
	return ok
}

// IsBreakerRejection reports whether err means the request was never sent
// because the host's breaker is open or half-open and busy.
func IsBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

type Options struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	Breakers          *circuitbreaker.Registry
	Metrics           *metrics.Metrics
	Logger            *slog.Logger
	// Transport overrides the default round tripper, mostly for tests.
	Transport http.RoundTripper
}

type Client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	breakers  *circuitbreaker.Registry
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Breakers == nil {
		opts.Breakers = circuitbreaker.NewRegistry(circuitbreaker.Settings{
			Threshold:    5,
			Timeout:      30 * time.Second,
			IsSuccessful: IsBreakerSuccess,
			Logger:       opts.Logger,
		})
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
		breakers:  opts.Breakers,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
}

// GetRaw fetches rawURL and returns the response body.
func (c *Client) GetRaw(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	cb := c.breakers.GetBreaker(u.Host)
	body, err := cb.Execute(func() (interface{}, error) {
		return c.do(ctx, u)
	})
	if err != nil {
		if _, ok := IsStatusError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}

	return body.([]byte), nil
}

func (c *Client) do(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordFetch(u.Host, time.Since(start), 0)
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	c.metrics.RecordFetch(u.Host, time.Since(start), res.StatusCode)

	c.logger.Debug("Fetched",
		slog.String("url", u.String()),
		slog.Int("status", res.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{URL: u.String(), StatusCode: res.StatusCode}
	}
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// Breakers exposes the breaker registry for end-of-run reporting.
func (c *Client) Breakers() *circuitbreaker.Registry {
	return c.breakers
}

// Metrics exposes the fetch statistics for end-of-run reporting.
func (c *Client) Metrics() *metrics.Metrics {
	return c.metrics
}

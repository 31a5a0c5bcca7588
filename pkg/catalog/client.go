package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-selector/pkg/cache"
	"github.com/Sternrassler/catalog-selector/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for catalog requests.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total catalog page requests by status",
	}, []string{"status"})

	catalogRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Catalog page request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total catalog fetch errors by class",
	}, []string{"class"})
)

const (
	// DefaultBaseURL is the Art Institute of Chicago artworks collection.
	DefaultBaseURL = "https://api.artic.edu/api/v1/artworks"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 30 * time.Second
)

// DefaultFields limits the payload to the displayed columns.
var DefaultFields = []string{
	"id", "title", "date_start", "date_end",
	"artist_display", "place_of_origin", "inscriptions",
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the paginated collection endpoint.
	BaseURL string

	// UserAgent identifies this application to the upstream (required).
	UserAgent string

	// Fields projects the record payload; empty sends no fields parameter.
	Fields []string

	// RemotePageSize is sent as limit; 0 leaves the upstream default.
	RemotePageSize int

	// Timeout per request.
	Timeout time.Duration

	// Redis backs the conditional-response cache and the shared rate
	// limit budget. Nil disables both.
	Redis *redis.Client

	// RateLimit thresholds, used only when Redis is set.
	RateLimit ratelimit.Thresholds
}

// DefaultConfig returns a configuration for the default collection.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Fields:    DefaultFields,
		Timeout:   DefaultTimeout,
		RateLimit: ratelimit.DefaultThresholds(),
	}
}

// Client fetches catalog pages. It never retries; failures are returned
// as *FetchError for the caller to handle.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.RemotePageSize < 0 {
		return nil, fmt.Errorf("remote page size must be >= 0 (got %d)", cfg.RemotePageSize)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := log.With().Str("component", "catalog-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  logger,
	}

	if cfg.Redis != nil {
		if err := cfg.RateLimit.Validate(); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, cfg.RateLimit, logger)
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// PageURL returns the request URL for page n.
func (c *Client) PageURL(n int) string {
	u := *c.baseURL
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	if c.config.RemotePageSize > 0 {
		q.Set("limit", strconv.Itoa(c.config.RemotePageSize))
	}
	if len(c.config.Fields) > 0 {
		q.Set("fields", strings.Join(c.config.Fields, ","))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchPage issues one request for page n and decodes it.
func (c *Client) FetchPage(ctx context.Context, n int) (*Page, error) {
	if n < 1 {
		return nil, c.fail(&FetchError{Page: n, Class: ErrorClassClient, Err: ErrInvalidPage})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(n), nil)
	if err != nil {
		return nil, c.fail(&FetchError{Page: n, Class: ErrorClassClient, Err: fmt.Errorf("create request: %w", err)})
	}

	resp, err := c.Do(req)
	if err != nil {
		class := ErrorClassNetwork
		if errors.Is(err, ErrRateLimited) {
			class = ErrorClassRateLimit
		}
		return nil, c.fail(&FetchError{Page: n, Class: class, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(&FetchError{
			Page:       n,
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		})
	}

	page, err := decodePage(resp.Body, n)
	if err != nil {
		c.dropCached(ctx, req.URL)
		return nil, c.fail(&FetchError{Page: n, StatusCode: resp.StatusCode, Class: ErrorClassMalformed, Err: err})
	}

	c.logger.Debug().
		Int("page", n).
		Int("records", len(page.Records)).
		Int("total_pages", page.TotalPages).
		Msg("Fetched catalog page")

	return page, nil
}

// dropCached removes the stored response for u so a body that failed to
// decode is not replayed on the next 304.
func (c *Client) dropCached(ctx context.Context, u *url.URL) {
	if c.cache == nil {
		return
	}
	key := cache.KeyForURL(u)
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to drop malformed cache entry")
	}
}

func (c *Client) fail(err *FetchError) error {
	catalogErrorsTotal.WithLabelValues(string(err.Class)).Inc()
	c.logger.Warn().
		Int("page", err.Page).
		Int("status", err.StatusCode).
		Str("error_class", string(err.Class)).
		Err(err.Err).
		Msg("Catalog page fetch failed")
	return err
}

// Do performs a single HTTP attempt with rate limit gating and conditional
// revalidation. Backend (Redis) failures are logged and bypassed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	startTime := time.Now()
	defer func() {
		catalogRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: rate limit gate
	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.Allow(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, err
		case err != nil:
			c.logger.Warn().Err(err).Msg("Rate limit check failed, continuing ungated")
		case !allowed:
			catalogRequestsTotal.WithLabelValues("rate_limited").Inc()
			return nil, ErrRateLimited
		}
	}

	// Step 2: cached validators
	var cacheKey cache.Key
	var cached *cache.Entry
	if c.cache != nil {
		cacheKey = cache.KeyForURL(req.URL)
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", cacheKey.String()).Msg("Cache get error")
		}
		if entry.HasValidators() {
			cached = entry
			cache.AddConditionalHeaders(req, entry)
			cache.ConditionalRequestsSent.Inc()
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("AIC-User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	// Step 3: single attempt
	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, err
	}
	catalogRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	// Step 4: 304 reuses the cached body
	if resp.StatusCode == http.StatusNotModified && cached != nil {
		cache.NotModified.Inc()
		if expiresStr := resp.Header.Get("Expires"); expiresStr != "" {
			if expires, err := http.ParseTime(expiresStr); err == nil {
				if err := c.cache.Extend(ctx, cacheKey, expires); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to extend cache entry")
				}
			}
		}
		resp.Body.Close()
		c.logger.Debug().Str("url", req.URL.String()).Msg("304 Not Modified - using cached body")
		return &http.Response{
			Status:     "200 OK",
			StatusCode: http.StatusOK,
			Header:     resp.Header,
			Body:       io.NopCloser(bytes.NewReader(cached.Body)),
			Request:    req,
		}, nil
	}

	// Step 5: store fresh bodies
	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.FromResponse(resp)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		if entry.HasValidators() {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			}
		}
	}

	return resp, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Close drops idle upstream connections. The Redis client belongs to the
// caller and stays open.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

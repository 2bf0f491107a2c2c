// Package client is the HTTP transport for the Notion API: request pacing,
// 429 backoff, retries, an optional redis response cache and error
// classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/notion-blog/pkg/cache"
	"github.com/Sternrassler/notion-blog/pkg/notion"
	"github.com/Sternrassler/notion-blog/pkg/pagination"
	"github.com/Sternrassler/notion-blog/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Notion client operations.
var (
	notionRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notion_requests_total",
		Help: "Total Notion requests by endpoint and status",
	}, []string{"endpoint", "status"})

	notionRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notion_request_duration_seconds",
		Help:    "Notion request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	notionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notion_errors_total",
		Help: "Total Notion errors by class",
	}, []string{"class"})

	notionRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notion_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	notionRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notion_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	notionRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notion_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

const (
	// DefaultBaseURL is the public Notion API.
	DefaultBaseURL = "https://api.notion.com"

	// DefaultNotionVersion is the API version sent in the Notion-Version header.
	DefaultNotionVersion = "2022-06-28"

	// DefaultUserAgent identifies this client.
	DefaultUserAgent = "notion-blog/1.0"

	// MaxPageSize is the largest page_size Notion accepts.
	MaxPageSize = 100
)

// Endpoint labels used in metrics and logs.
const (
	endpointQuery    = "query"
	endpointDatabase = "database"
	endpointChildren = "block_children"
)

// Client is a Notion API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Secret is the integration token (REQUIRED).
	Secret string

	// BaseURL overrides DefaultBaseURL, e.g. for tests.
	BaseURL string

	// NotionVersion overrides DefaultNotionVersion.
	NotionVersion string

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64

	// Retry
	Retry RetryConfig

	// Redis enables the response cache when set. The client stores database
	// metadata itself; GetCache hands the store to callers that cache whole
	// drains with cache.LoadAll.
	Redis    *redis.Client
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(secret string) Config {
	return Config{
		Secret:            secret,
		BaseURL:           DefaultBaseURL,
		NotionVersion:     DefaultNotionVersion,
		UserAgent:         DefaultUserAgent,
		Timeout:           30 * time.Second,
		RequestsPerSecond: ratelimit.DefaultRequestsPerSecond,
		Retry:             DefaultRetryConfig(),
		CacheTTL:          cache.DefaultTTL,
	}
}

// New creates a new Notion client.
func New(cfg Config) (*Client, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("notion secret is required")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("max_attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if cfg.NotionVersion == "" {
		cfg.NotionVersion = DefaultNotionVersion
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "notion-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: ratelimit.NewTracker(cfg.RequestsPerSecond, logger),
		config:      cfg,
		logger:      logger,
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return c, nil
}

// QueryDatabase fetches one page of database entries. The cursor replaces
// req.StartCursor; nil requests the first page.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req notion.QueryRequest, cursor *string) (pagination.Page[notion.Page], error) {
	req.StartCursor = cursor
	if req.PageSize <= 0 || req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}

	body, err := json.Marshal(req)
	if err != nil {
		return pagination.Page[notion.Page]{}, fmt.Errorf("marshal query: %w", err)
	}

	var resp notion.ListResponse[notion.Page]
	path := "/v1/databases/" + url.PathEscape(databaseID) + "/query"
	if err := c.do(ctx, endpointQuery, http.MethodPost, path, nil, body, &resp, false); err != nil {
		return pagination.Page[notion.Page]{}, err
	}

	return pagination.Page[notion.Page]{
		Items:      resp.Results,
		HasMore:    resp.HasMore,
		NextCursor: resp.NextCursor,
	}, nil
}

// RetrieveDatabase fetches database metadata.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error) {
	var db notion.Database
	path := "/v1/databases/" + url.PathEscape(databaseID)
	if err := c.do(ctx, endpointDatabase, http.MethodGet, path, nil, nil, &db, true); err != nil {
		return nil, err
	}
	return &db, nil
}

// ListBlockChildren fetches one page of a block's children.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string, pageSize int, cursor *string) (pagination.Page[notion.RawBlock], error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	query := url.Values{}
	query.Set("page_size", strconv.Itoa(pageSize))
	if cursor != nil && *cursor != "" {
		query.Set("start_cursor", *cursor)
	}

	var resp notion.ListResponse[notion.RawBlock]
	path := "/v1/blocks/" + url.PathEscape(blockID) + "/children"
	if err := c.do(ctx, endpointChildren, http.MethodGet, path, query, nil, &resp, false); err != nil {
		return pagination.Page[notion.RawBlock]{}, err
	}

	return pagination.Page[notion.RawBlock]{
		Items:      resp.Results,
		HasMore:    resp.HasMore,
		NextCursor: resp.NextCursor,
	}, nil
}

// do performs one logical request: cache lookup, then paced attempts with
// retries, then decoding into out and storing the raw body in the cache.
// Only requests with cached set use the response cache; pages of a
// paginated endpoint are stored per drain by cache.LoadAll instead.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body []byte, out any, cached bool) error {
	startTime := time.Now()
	defer func() {
		notionRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	useCache := cached && c.cache != nil
	cacheKey := cache.CacheKey{Endpoint: path, Body: body}

	if useCache {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			if err := json.Unmarshal(entry.Data, out); err == nil {
				c.logger.Debug().Str("endpoint", endpoint).Str("key", cacheKey.String()).Msg("Served from cache")
				notionRequestsTotal.WithLabelValues(endpoint, "cached").Inc()
				return nil
			}
			c.logger.Warn().Str("endpoint", endpoint).Msg("Discarding undecodable cache entry")
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var data []byte
	err := retryWithBackoff(ctx, c.config.Retry, func() error {
		var attemptErr error
		data, attemptErr = c.attempt(ctx, endpoint, method, target, body, out)
		return attemptErr
	}, classifyError)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if useCache {
		entry := cache.NewEntry(data, http.StatusOK, c.cache.TTL())
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		}
	}

	return nil
}

// attempt sends a single HTTP request and decodes a 2xx body into out.
func (c *Client) attempt(ctx context.Context, endpoint, method, target string, body []byte, out any) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Secret)
	req.Header.Set("Notion-Version", c.config.NotionVersion)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Str("url", target).
		Msg("Executing Notion request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		notionErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		notionRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, err
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp.StatusCode, resp.Header)
	notionRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		notionErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read body: %w", err)
	}

	if class := classifyStatus(resp.StatusCode); class != "" {
		notionErrorsTotal.WithLabelValues(string(class)).Inc()
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
		var errBody notion.ErrorResponse
		if json.Unmarshal(data, &errBody) == nil && errBody.Message != "" {
			apiErr.Code = errBody.Code
			apiErr.Message = errBody.Message
		}
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Str("code", apiErr.Code).
			Msg("Notion request error")
		return nil, apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		notionErrorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassMalformed,
			Message:    "decode response",
			Err:        err,
		}
	}

	return data, nil
}

// RateLimitState returns the current 429 backoff state.
func (c *Client) RateLimitState() ratelimit.RateLimitState {
	return c.rateLimiter.GetState()
}

// RequestDeadline is the longest one logical request can take: every
// attempt at the full timeout plus the largest backoff between attempts.
func (c *Client) RequestDeadline() time.Duration {
	attempts := c.config.Retry.MaxAttempts
	return c.config.Timeout*time.Duration(attempts) + c.config.Retry.MaxBackoff*time.Duration(attempts-1)
}

// GetCache returns the response cache, nil when redis is not configured.
// Paginated results should be stored through cache.LoadAll with it.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}

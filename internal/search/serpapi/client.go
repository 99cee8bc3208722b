// Package serpapi implements the external job-search API client. The
// provider speaks a single JSON GET endpoint with opaque continuation tokens;
// provider failures are classified into the sentinel errors the engine aborts
// on.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/talentlens/jobcrawler/internal/ingest"
	"github.com/talentlens/jobcrawler/internal/telemetry"
)

// Config captures the client parameters.
type Config struct {
	BaseURL      string
	APIKey       string
	Engine       string
	LanguageCode string
	CountryCode  string
	Timeout      time.Duration
	// RequestsPerSecond throttles outbound calls client-side; <= 0 disables
	// pacing.
	RequestsPerSecond float64
}

// Client issues paginated searches against the provider.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Client. A missing API key is a construction error so
// misconfigured credentials fail before the first run, not mid-crawl.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("search base url is required")
	}
	if cfg.Engine == "" {
		cfg.Engine = "google_jobs"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// apiResponse is the subset of the provider payload the engine needs; the
// raw body is persisted verbatim regardless.
type apiResponse struct {
	JobsResults   []json.RawMessage `json:"jobs_results"`
	NextPageToken string            `json:"next_page_token"`
	Error         string            `json:"error"`
}

// Search executes one provider call. pageToken is empty for the first page.
func (c *Client) Search(ctx context.Context, query, location, pageToken string) (ingest.SearchPage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ingest.SearchPage{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(query, location, pageToken), nil)
	if err != nil {
		return ingest.SearchPage{}, fmt.Errorf("build search request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.ObserveSearchRequest("transport_error", time.Since(start))
		return ingest.SearchPage{}, fmt.Errorf("execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.ObserveSearchRequest("read_error", time.Since(start))
		return ingest.SearchPage{}, fmt.Errorf("read search response: %w", err)
	}

	if err := classifyResponse(resp.StatusCode, body); err != nil {
		telemetry.ObserveSearchRequest("provider_error", time.Since(start))
		return ingest.SearchPage{}, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		telemetry.ObserveSearchRequest("decode_error", time.Since(start))
		return ingest.SearchPage{}, fmt.Errorf("decode search response: %w", err)
	}
	telemetry.ObserveSearchRequest("ok", time.Since(start))

	return ingest.SearchPage{
		Payload:   body,
		Results:   len(parsed.JobsResults),
		NextToken: parsed.NextPageToken,
	}, nil
}

func (c *Client) buildURL(query, location, pageToken string) string {
	params := url.Values{}
	params.Set("engine", c.cfg.Engine)
	params.Set("q", query)
	params.Set("location", location)
	if c.cfg.LanguageCode != "" {
		params.Set("hl", c.cfg.LanguageCode)
	}
	if c.cfg.CountryCode != "" {
		params.Set("gl", c.cfg.CountryCode)
	}
	params.Set("api_key", c.cfg.APIKey)
	if pageToken != "" {
		params.Set("next_page_token", pageToken)
	}
	return c.cfg.BaseURL + "?" + params.Encode()
}

// classifyResponse maps provider failures onto the engine's sentinel errors.
// Quota exhaustion and rate limiting abort the whole run; anything else is an
// item-local failure.
func classifyResponse(statusCode int, body []byte) error {
	var parsed apiResponse
	providerMsg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		providerMsg = parsed.Error
	}
	lowered := strings.ToLower(providerMsg)

	switch {
	case strings.Contains(lowered, "no searches remaining") || strings.Contains(lowered, "run out of searches"):
		return fmt.Errorf("%w: %s", ingest.ErrQuotaExceeded, providerMsg)
	case statusCode == http.StatusTooManyRequests || strings.Contains(lowered, "too many requests"):
		if providerMsg == "" {
			providerMsg = http.StatusText(http.StatusTooManyRequests)
		}
		return fmt.Errorf("%w: %s", ingest.ErrRateLimited, providerMsg)
	case providerMsg != "":
		return fmt.Errorf("provider error: %s", providerMsg)
	case statusCode < 200 || statusCode > 299:
		return fmt.Errorf("unexpected status %d", statusCode)
	case len(body) == 0:
		return fmt.Errorf("empty response from provider")
	default:
		return nil
	}
}

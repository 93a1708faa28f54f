// Package scryfall is a small rate-limited client for the Scryfall card API.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "deckwright/1.0"
	// Scryfall asks for at most 10 requests per second.
	DefaultRateLimit = 100 * time.Millisecond
	requestTimeout   = 20 * time.Second
	maxRetries       = 3
	initialBackoff   = 1 * time.Second
	maxBackoff       = 16 * time.Second
)

// Config configures a Client. Zero values take the defaults.
type Config struct {
	BaseURL   string
	UserAgent string
	RateLimit time.Duration
	Timeout   time.Duration
}

// Client is a Scryfall API client with rate limiting and retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	backoff     time.Duration
	logger      *slog.Logger
}

// NewClient creates a client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = requestTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Every(cfg.RateLimit), 1),
		userAgent:   cfg.UserAgent,
		backoff:     initialBackoff,
		logger:      logger,
	}
}

// Autocomplete returns up to 20 card names starting with or containing q.
func (c *Client) Autocomplete(ctx context.Context, q string) ([]string, error) {
	var cat Catalog
	if err := c.doRequest(ctx, "/cards/autocomplete", url.Values{"q": {q}}, &cat); err != nil {
		return nil, fmt.Errorf("scryfall: autocomplete %q: %w", q, err)
	}
	if cat.Data == nil {
		return []string{}, nil
	}
	return cat.Data, nil
}

// Named looks a card up by name, fuzzily or exactly.
func (c *Client) Named(ctx context.Context, name string, fuzzy bool) (*Card, error) {
	params := url.Values{"exact": {name}}
	if fuzzy {
		params = url.Values{"fuzzy": {name}}
	}
	var card Card
	if err := c.doRequest(ctx, "/cards/named", params, &card); err != nil {
		return nil, fmt.Errorf("scryfall: named %q: %w", name, err)
	}
	return &card, nil
}

// Search runs a full-text Scryfall search and returns one page of cards.
func (c *Client) Search(ctx context.Context, q string, page int) ([]Card, error) {
	if page < 1 {
		page = 1
	}
	var list List
	err := c.doRequest(ctx, "/cards/search", url.Values{"q": {q}, "page": {strconv.Itoa(page)}}, &list)
	if IsNotFound(err) {
		// Scryfall answers 404 for searches without matches.
		return []Card{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scryfall: search %q: %w", q, err)
	}
	return list.Data, nil
}

// doRequest performs a GET with rate limiting and retry on network errors
// and 429/5xx responses.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("scryfall: retrying", slog.String("url", u), slog.Int("attempt", attempt), slog.String("error", lastErr.Error()))
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		wait, err := c.do(ctx, u, result)
		if err == nil {
			return nil
		}
		var retry *retryableError
		if !errors.As(err, &retry) {
			return err
		}
		lastErr = retry.err
		if attempt == maxRetries {
			break
		}
		if wait <= 0 {
			wait = backoff
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		backoff = min(backoff*2, maxBackoff)
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }

// do executes one attempt. A retryable failure may carry the server's
// Retry-After delay.
func (c *Client) do(ctx context.Context, u string, result any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &retryableError{fmt.Errorf("http request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return 0, fmt.Errorf("decode response: %w", err)
		}
		return 0, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		var wait time.Duration
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s > 0 {
			wait = time.Duration(s) * time.Second
		}
		return wait, &retryableError{errors.New("rate limited (HTTP 429)")}

	case resp.StatusCode == http.StatusNotFound:
		return 0, &NotFoundError{URL: u}

	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, &retryableError{fmt.Errorf("server error (HTTP %d)", resp.StatusCode)}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return 0, &apiErr
		}
		return 0, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

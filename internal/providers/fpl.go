package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/stitts-dev/fpl-scout/internal/feed"
)

var (
	ErrNotFound    = errors.New("fpl resource not found")
	ErrUnavailable = errors.New("fpl feed unavailable")
)

const userAgent = "fpl-scout/1.0"

// FPLConfig configures the Fantasy Premier League feed client.
type FPLConfig struct {
	BaseURL           string
	RequestsPerMinute int
	CacheTTL          time.Duration
	Timeout           time.Duration
	FailureThreshold  int
	RetryAttempts     int
	RetryDelay        time.Duration
}

// FPLClient fetches the public FPL endpoints. Responses are cached for
// CacheTTL and calls go through a rate limiter and a circuit breaker.
type FPLClient struct {
	httpClient    *http.Client
	baseURL       string
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker
	logger        *logrus.Logger
	ttl           time.Duration
	retryAttempts int
	retryDelay    time.Duration

	mu    sync.RWMutex
	cache map[string]cachedBody
	now   func() time.Time
}

type cachedBody struct {
	body      []byte
	expiresAt time.Time
}

// statusError carries a non-2xx upstream response.
type statusError struct {
	path string
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fpl %s returned %d: %s", e.path, e.code, e.body)
}

// NewFPLClient creates a feed client. Zero config values fall back to
// conservative defaults.
func NewFPLClient(cfg FPLConfig, logger *logrus.Logger) *FPLClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}

	threshold := uint32(cfg.FailureThreshold)
	settings := gobreaker.Settings{
		Name:        "fpl-feed",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &FPLClient{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		limiter:       rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		breaker:       gobreaker.NewCircuitBreaker(settings),
		logger:        logger,
		ttl:           cfg.CacheTTL,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		cache:         make(map[string]cachedBody),
		now:           time.Now,
	}
}

// GetBootstrap returns the static bootstrap document (players, clubs, events).
func (c *FPLClient) GetBootstrap(ctx context.Context) (*feed.Bootstrap, error) {
	var out *feed.Bootstrap
	err := c.fetch(ctx, "/bootstrap-static/", func(body []byte) (err error) {
		out, err = feed.ParseBootstrap(body)
		return err
	})
	return out, err
}

// GetFixtures returns every fixture of the season.
func (c *FPLClient) GetFixtures(ctx context.Context) ([]feed.Fixture, error) {
	var out []feed.Fixture
	err := c.fetch(ctx, "/fixtures/", func(body []byte) (err error) {
		out, err = feed.ParseFixtures(body)
		return err
	})
	return out, err
}

// GetElementSummary returns per-match history for one player.
func (c *FPLClient) GetElementSummary(ctx context.Context, elementID int) (*feed.ElementSummary, error) {
	var out *feed.ElementSummary
	err := c.fetch(ctx, fmt.Sprintf("/element-summary/%d/", elementID), func(body []byte) (err error) {
		out, err = feed.ParseElementSummary(body)
		return err
	})
	return out, err
}

// ClearCache drops every cached response.
func (c *FPLClient) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cachedBody)
}

// BreakerState reports the circuit breaker state ("closed", "open", "half-open").
func (c *FPLClient) BreakerState() string {
	return c.breaker.State().String()
}

func (c *FPLClient) cached(path string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[path]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.body, true
}

func (c *FPLClient) store(path string, body []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[path] = cachedBody{body: body, expiresAt: c.now().Add(c.ttl)}
}

// fetch hands the body for path to decode. A body is cached only once
// decode accepts it, so a malformed 200 is refetched on the next call.
func (c *FPLClient) fetch(ctx context.Context, path string, decode func([]byte) error) error {
	if body, ok := c.cached(path); ok {
		return decode(body)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchWithRetry(ctx, path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	body := result.([]byte)
	if err := decode(body); err != nil {
		c.logger.WithField("path", path).WithError(err).Warn("Discarding undecodable FPL response")
		return err
	}
	c.store(path, body)
	return nil
}

// fetchWithRetry retries transport failures and 5xx responses with
// exponential backoff. 4xx responses are returned immediately.
func (c *FPLClient) fetchWithRetry(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * c.retryDelay
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt + 1,
				"wait":    wait.String(),
			}).WithError(lastErr).Warn("Retrying FPL request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := c.do(ctx, path)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		var se *statusError
		if errors.As(err, &se) && se.code < http.StatusInternalServerError && se.code != http.StatusTooManyRequests {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *FPLClient) do(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &statusError{path: path, code: resp.StatusCode, body: truncate(body, 200)}
	}
	return body, nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

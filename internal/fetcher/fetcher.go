package fetcher

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"chronam-essays/internal/config"
	"chronam-essays/internal/observability"
)

// UserAgentSource выбирает заголовок User-Agent для очередного запроса
type UserAgentSource interface {
	UserAgent() string
}

// StaticUserAgent всегда отдаёт одно значение
type StaticUserAgent string

func (s StaticUserAgent) UserAgent() string { return string(s) }

type Fetcher struct {
	client      *resty.Client
	cfg         *config.Config
	logger      *observability.Logger
	robotsCache *RobotsCache
	agents      UserAgentSource
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
	UserAgent  string
}

// IsSuccess true для статусов 2xx
func (r *FetchResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewFetcher(cfg *config.Config, logger *observability.Logger, agents UserAgentSource) *Fetcher {
	client := resty.New().
		SetTransport(&http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.HTTP.MaxIdleConnections,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnectionsPerHost,
			IdleConnTimeout:     cfg.GetIdleConnectionTimeout(),
		})

	if agents == nil {
		agents = StaticUserAgent(cfg.HTTP.UserAgent)
	}

	var robots *RobotsCache
	if !cfg.HTTP.IgnoreRobots {
		robots = NewRobotsCache(cfg.GetRobotsCacheTTL(), client)
	}

	return &Fetcher{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		robotsCache: robots,
		agents:      agents,
	}
}

// Fetch выполняет GET. timeout > 0 ограничивает каждую попытку.
// Ответ с любым статусом возвращается без ошибки; ошибка бывает только от транспорта, robots.txt или отмены.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string, timeout time.Duration) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q is not absolute", urlStr)
	}

	userAgent := f.agents.UserAgent()

	// Check robots.txt
	if f.robotsCache != nil {
		allowed, err := f.checkRobots(ctx, parsedURL, userAgent, timeout)
		if err != nil {
			return nil, fmt.Errorf("robots.txt check failed: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("URL disallowed by robots.txt: %s", urlStr)
		}
	}

	// Fetch with retries
	var lastErr error
	for attempt := 0; attempt <= f.cfg.HTTP.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := f.calculateBackoff(attempt)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := f.fetchOnce(ctx, urlStr, userAgent, timeout)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		// Retry on 5xx or 429
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if attempt < f.cfg.HTTP.MaxRetries {
				continue
			}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("fetch failed after %d retries: %w", f.cfg.HTTP.MaxRetries, lastErr)
}

// checkRobots загрузка robots.txt ограничена тем же таймаутом, что и сам запрос
func (f *Fetcher) checkRobots(ctx context.Context, target *url.URL, userAgent string, timeout time.Duration) (bool, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return f.robotsCache.IsAllowed(ctx, target, userAgent)
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr, userAgent string, timeout time.Duration) (*FetchResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/json;q=0.9,*/*;q=0.8").
		Get(urlStr)
	if err != nil {
		return nil, err
	}

	finalURL := urlStr
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	f.logger.Debug("Response received",
		"url", urlStr,
		"status", resp.StatusCode(),
		"content_type", resp.Header().Get("Content-Type"),
		"body_bytes", len(resp.Body()),
		"elapsed", resp.Time(),
	)

	return &FetchResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		URL:        finalURL,
		Headers:    resp.Header(),
		UserAgent:  userAgent,
	}, nil
}

func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	minDelay := f.cfg.GetBackoffMin()
	maxDelay := f.cfg.GetBackoffMax()

	// Exponential backoff: min * 2^(attempt-1), не больше max
	exponential := minDelay * time.Duration(1<<uint(attempt-1))
	if exponential > maxDelay || exponential <= 0 {
		exponential = maxDelay
	}

	// Jitter: ±jitter_pct%
	jitterRange := float64(exponential) * float64(f.cfg.Backoff.JitterPct) / 100
	jitter := (rand.Float64() - 0.5) * 2 * jitterRange
	final := time.Duration(float64(exponential) + jitter)

	return time.Duration(math.Max(float64(final), float64(minDelay)))
}

package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/logger"
)

const (
	DefaultUserAgent = "spielplan/1.0"
	DefaultTimeout   = 30 * time.Second
)

// Fetcher returns the raw bytes behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError is returned for a non-200 response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Client fetches over HTTP with bounded retries
type Client struct {
	client    *http.Client
	userAgent string
	attempts  int
	delay     time.Duration
}

// New creates a Client from the fetch configuration.
func New(cfg config.FetchConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		attempts:  attempts,
		delay:     cfg.Delay,
	}
}

// Fetch downloads url, retrying network errors, 429 and 5xx responses.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), uint64(c.attempts-1)),
		ctx,
	)

	attempt := 0
	return backoff.RetryNotifyWithData(func() ([]byte, error) {
		attempt++
		return c.get(ctx, url)
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("Fetch failed, retrying", logger.Fields{
			"url":     url,
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	})
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	defer body.Close() // nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// decodeBody wraps the response body according to its Content-Encoding.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

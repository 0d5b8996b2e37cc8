// Package httpclient is the transport under the catalog client. It tags
// transport failures with core.ErrNetwork and optionally retries
// idempotent requests.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

const userAgent = "cinegrid/1.0"

// Config holds attempt and timeout configuration.
// Attempts counts the first try, so 1 disables retries.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Timeout   time.Duration
}

// DefaultConfig performs a single attempt: failures go straight to the caller.
func DefaultConfig() Config {
	return Config{
		Attempts:  1,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Timeout:   30 * time.Second,
	}
}

// Client wraps http.Client.
type Client struct {
	http   *http.Client
	config Config
	logger *slog.Logger
}

// New creates a Client with its own http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client around a caller-supplied http.Client.
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Client{
		http:   httpClient,
		config: cfg,
		logger: logger,
	}
}

// retryableStatus is returned from an attempt whose response is worth
// repeating. The last attempt hands its response back instead.
type retryableStatus struct {
	code       int
	path       string
	retryAfter time.Duration
}

func (e *retryableStatus) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.code, e.path)
}

// Do executes an HTTP request. With more than one attempt configured,
// idempotent requests are repeated on 429, gateway errors and transport failures.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	attempt := 0
	resp, err := retry.DoWithData(func() (*http.Response, error) {
		attempt++
		if attempt > 1 {
			if err := rewind(req); err != nil {
				return nil, retry.Unrecoverable(err)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, retry.Unrecoverable(ctxErr)
			}
			return nil, fmt.Errorf("%w: %w", core.ErrNetwork, err)
		}
		if attempt < c.config.Attempts && shouldRetry(resp.StatusCode, req.Method) {
			_ = resp.Body.Close()
			return nil, &retryableStatus{
				code:       resp.StatusCode,
				path:       req.URL.Path,
				retryAfter: retryAfterDelay(resp),
			}
		}
		return resp, nil
	},
		retry.Context(req.Context()),
		retry.Attempts(uint(c.config.Attempts)),
		retry.Delay(c.config.BaseDelay),
		retry.MaxDelay(c.config.MaxDelay),
		retry.MaxJitter(c.config.BaseDelay/5+1),
		retry.DelayType(delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return retry.IsRecoverable(err) && isIdempotent(req.Method)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying request",
				slog.Uint64("attempt", uint64(n)+2),
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()),
			)
		}),
	)
	if err != nil {
		// A caller deadline is a slow catalog; cancellation stays untagged.
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, core.ErrNetwork) {
			err = fmt.Errorf("%w: %w", core.ErrNetwork, err)
		}
		if c.config.Attempts > 1 && attempt > 1 {
			return nil, fmt.Errorf("request failed after %d attempts: %w", attempt, err)
		}
		return nil, err
	}
	return resp, nil
}

// delay honors Retry-After and otherwise backs off exponentially with jitter.
func delay(n uint, err error, cfg *retry.Config) time.Duration {
	var rs *retryableStatus
	if errors.As(err, &rs) && rs.retryAfter > 0 {
		return rs.retryAfter
	}
	return retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)(n, err, cfg)
}

func rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewind request body: %w", err)
	}
	req.Body = body
	return nil
}

func retryAfterDelay(resp *http.Response) time.Duration {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func shouldRetry(statusCode int, method string) bool {
	if !isIdempotent(method) {
		return false
	}
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

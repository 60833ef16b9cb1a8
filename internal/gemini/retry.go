package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// RetryConfig configures retry behavior for completion calls.
type RetryConfig struct {
	MaxRetries      int           // Maximum number of retry attempts
	InitialInterval time.Duration // Initial backoff interval
	MaxInterval     time.Duration // Maximum backoff interval
}

// DefaultRetryConfig retries a failed completion at most once: the
// answer is on the request's critical path, so a second failure is
// surfaced rather than waited out.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      1,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// retryablePatterns groups error substrings by category, matched
// case-insensitively against err.Error().
//
// NOTE: string matching because the SDK does not expose typed errors for
// transient failures. Re-evaluate if it grows structured error types.
var retryablePatterns = [][]string{
	{"rate limit", "quota exceeded", "429"},      // rate limiting
	{"500", "502", "503", "504", "unavailable"},  // transient server errors
	{"connection reset", "timeout", "temporary"}, // network errors
}

// retryableError reports whether err is transient and should trigger a retry.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, group := range retryablePatterns {
		for _, sub := range group {
			if strings.Contains(errStr, sub) {
				return true
			}
		}
	}
	return false
}

// generateWithRetry executes the completion call with exponential
// backoff on transient errors.
func (c *Client) generateWithRetry(
	ctx context.Context,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	var lastErr error
	delay := c.retryConfig.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err == nil {
			c.logger.Debug("completion succeeded",
				"attempts", attempt+1,
				"elapsed", time.Since(start),
			)
			return resp, nil
		}

		lastErr = err

		if !retryableError(err) {
			return nil, fmt.Errorf("completion: %w", err)
		}
		if attempt == c.retryConfig.MaxRetries {
			break
		}

		c.logger.Debug("retrying completion after error",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, c.retryConfig.MaxInterval)
		}
	}

	return nil, fmt.Errorf("completion after %d retries (elapsed: %v): %w",
		c.retryConfig.MaxRetries, time.Since(start), lastErr)
}

package source

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// doWithRetry executes req and retries HTTP 429 responses up to maxRetries
// times. The wait is the server's Retry-After when given, otherwise
// baseDelay doubled per attempt. maxRetries <= 0 sends the request once.
// After the last attempt the 429 response is returned for the caller to
// inspect.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, baseDelay time.Duration) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		wait := retryAfter(resp, backoff(baseDelay, attempt))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// maxBackoff bounds the computed wait between retries.
const maxBackoff = 30 * time.Second

// backoff returns base doubled attempt times, clamped to maxBackoff.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := base << attempt
	if d <= 0 || d > maxBackoff || d>>attempt != base {
		return maxBackoff
	}
	return d
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
